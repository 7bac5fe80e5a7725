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

func setRoomApproval(approved bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
			return
		}
		status, err := controllers.SetRoomApproval(ctx.Request.Context(), params.ID, approved)
		if err != nil {
			utils.AbortWithError(ctx, status, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"id": params.ID, "approved": approved}})
	}
}

func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	admin := g.Group("")
	admin.Use(middlewares.RequireRole(types.ROLE_ADMIN))
	admin.
		POST("/generate_owner_code", func(ctx *gin.Context) {
			token, status, err := controllers.IssueToken(ctx.Request.Context())
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": token})
		}).
		POST("/delete_user/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			status, err := controllers.DeleteUser(ctx.Request.Context(), middlewares.GetAuthContext(ctx), params.ID)
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			log.Printf("User [%d] deleted\n", params.ID)
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"id": params.ID}})
		}).
		POST("/delete_room/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			status, err := controllers.DeleteRoom(ctx.Request.Context(), params.ID)
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			log.Printf("Room [%d] deleted\n", params.ID)
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"id": params.ID}})
		}).
		GET("/approve_room/:id", setRoomApproval(true)).
		GET("/reject_room/:id", setRoomApproval(false)).
		GET("/admin_dashboard", func(ctx *gin.Context) {
			dash, status, err := controllers.GetAdminDashboard(ctx.Request.Context())
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": dash})
		}).
		GET("/users", func(ctx *gin.Context) {
			users, status, err := controllers.ListUsers(ctx.Request.Context())
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": users, "count": len(users)})
		})
	return g
}
