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

func authHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/register", func(ctx *gin.Context) {
			var body types.RegisterUserRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			user, status, err := controllers.Register(ctx.Request.Context(), &body)
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": user, "redirect": "/login"})
		}).
		POST("/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			result, status, err := controllers.Login(ctx.Request.Context(), &body)
			if err != nil {
				log.Printf("[Login] %s: %s\n", body.Username, err.Error())
				utils.AbortWithError(ctx, status, err)
				return
			}
			middlewares.SetSessionCookie(ctx, result.Token, result.ExpiresAt)
			ctx.JSON(http.StatusOK, gin.H{"data": result.User, "token": result.Token})
		}).
		GET("/logout", func(ctx *gin.Context) {
			status, err := controllers.Logout(ctx.Request.Context(), middlewares.GetClaims(ctx))
			middlewares.ClearSessionCookie(ctx)
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"redirect": "/"})
		})

	profile := g.Group("/profile")
	profile.Use(middlewares.RequireLogin)
	profile.
		GET("", func(ctx *gin.Context) {
			user, status, err := controllers.GetProfile(ctx.Request.Context(), middlewares.GetAuthContext(ctx))
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		POST("", func(ctx *gin.Context) {
			var body types.UpdateProfileRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			user, status, err := controllers.UpdateProfile(ctx.Request.Context(), middlewares.GetAuthContext(ctx), &body)
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		})
	return g
}
