package main

import (
	"log"
	"net/http"
	"roomrent/src/controllers"
	"roomrent/src/middlewares"
	"roomrent/src/types"
	"roomrent/src/utils"

	"github.com/gin-gonic/gin"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	tenant := g.Group("")
	tenant.Use(middlewares.RequireLogin)
	tenant.
		POST("/confirm-payment", func(ctx *gin.Context) {
			var body types.ConfirmPaymentRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError("orderId is required"))
				return
			}
			result, status, err := controllers.ConfirmTenantPayment(ctx.Request.Context(), middlewares.GetAuthContext(ctx), body.OrderID)
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": result})
		}).
		POST("/create-booking-order", func(ctx *gin.Context) {
			var body types.CreateBookingOrderRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			order, status, err := controllers.InitiateBooking(ctx.Request.Context(), middlewares.GetAuthContext(ctx), &body)
			if err != nil {
				log.Printf("[InitiateBooking] error: %s\n", err.Error())
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		}).
		POST("/free-booking/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			var body types.TenantContact
			if err := ctx.ShouldBind(&body); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			booking, status, err := controllers.FreeBooking(ctx.Request.Context(), middlewares.GetAuthContext(ctx), params.ID, &body)
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": booking})
		}).
		POST("/book/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			var body types.TenantContact
			if err := ctx.ShouldBind(&body); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			result, status, err := controllers.RequestViewing(ctx.Request.Context(), middlewares.GetAuthContext(ctx), params.ID, &body)
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": result})
		})

	owner := g.Group("")
	owner.Use(middlewares.RequireRole(types.ROLE_OWNER))
	owner.
		POST("/booking/contacted/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			booking, status, err := controllers.MarkContacted(ctx.Request.Context(), middlewares.GetAuthContext(ctx), params.ID)
			if err != nil {
				log.Printf("[MarkContacted] booking [%d]: %s\n", params.ID, err.Error())
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}
