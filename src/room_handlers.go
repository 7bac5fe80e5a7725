package main

import (
	"log"
	"net/http"
	"roomrent/src/config"
	"roomrent/src/controllers"
	"roomrent/src/lib"
	"roomrent/src/middlewares"
	"roomrent/src/types"
	"roomrent/src/utils"

	"github.com/gin-gonic/gin"
)

func limitUpload(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, config.MAX_UPLOAD_SIZE)
}

func roomHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/", func(ctx *gin.Context) {
			var query types.SearchRoomsQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			rooms, status, err := controllers.SearchRooms(ctx.Request.Context(), &query)
			if err != nil {
				log.Printf("[SearchRooms] error: %s\n", err.Error())
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rooms, "count": len(rooms)})
		}).
		GET("/room/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			detail, status, err := controllers.GetRoom(ctx.Request.Context(), params.ID)
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": detail})
		}).
		GET("/uploads/:filename", func(ctx *gin.Context) {
			name := ctx.Param("filename")
			if utils.SecureFilename(name) != name {
				ctx.Status(http.StatusNotFound)
				return
			}
			location, remote, err := lib.GetImageStore().Locate(ctx.Request.Context(), name)
			if err != nil {
				log.Printf("Error locating image %s: %s\n", name, err.Error())
				ctx.Status(http.StatusNotFound)
				return
			}
			if remote {
				ctx.Redirect(http.StatusTemporaryRedirect, location)
				return
			}
			ctx.File(location)
		})

	owner := g.Group("")
	owner.Use(middlewares.RequireRole(types.ROLE_OWNER))
	owner.
		POST("/add-room", limitUpload, func(ctx *gin.Context) {
			var body types.CreateRoomRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			form, err := ctx.MultipartForm()
			if err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError("room images are required"))
				return
			}
			room, status, err := controllers.CreateRoom(ctx.Request.Context(), middlewares.GetAuthContext(ctx), &body, form.File["room_images"])
			if err != nil {
				log.Printf("[CreateRoom] error: %s\n", err.Error())
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": room})
		}).
		POST("/toggle_availability/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			room, status, err := controllers.ToggleAvailability(ctx.Request.Context(), middlewares.GetAuthContext(ctx), params.ID)
			if err != nil {
				log.Printf("[ToggleAvailability] room [%d]: %s\n", params.ID, err.Error())
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": room})
		}).
		GET("/owner", func(ctx *gin.Context) {
			dash, status, err := controllers.GetOwnerDashboard(ctx.Request.Context(), middlewares.GetAuthContext(ctx))
			if err != nil {
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": dash})
		}).
		POST("/upload", limitUpload, func(ctx *gin.Context) {
			var body types.UploadImageRequestBody
			if err := ctx.ShouldBind(&body); err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError(err.Error()))
				return
			}
			file, err := ctx.FormFile("file")
			if err != nil {
				utils.AbortWithError(ctx, http.StatusBadRequest, types.NewValidationError("no file part"))
				return
			}
			image, status, err := controllers.UploadImage(ctx.Request.Context(), middlewares.GetAuthContext(ctx), &body, file)
			if err != nil {
				log.Printf("[UploadImage] error: %s\n", err.Error())
				utils.AbortWithError(ctx, status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": image})
		})
	return g
}
