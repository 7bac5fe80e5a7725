package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"roomrent/src/boot"
	"roomrent/src/config"
	"roomrent/src/middlewares"
	"roomrent/src/types"
	"strconv"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var roleValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	_, err := types.ParseRole(fl.Field().String())
	return err == nil
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("role", roleValidatorFunc)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = config.MAX_UPLOAD_SIZE
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		if mm == "" {
			return
		}
		on, err := strconv.ParseBool(mm)
		if err != nil || on {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
	})
	return g
}

func registerRoutes(router *gin.Engine) {
	stripeWebhookRoute(router.Group(""))

	app := router.Group("")
	app.Use(middlewares.Authenticate)
	roomHandlers(app)
	bookingHandlers(app)
	authHandlers(app)
	adminHandlers(app)
}

func corsMiddleware(apiEnv string) gin.HandlerFunc {
	if apiEnv == string(types.Local) {
		return cors.Default()
	}
	appHost := os.Getenv("APP_HOST")
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "Stripe-Signature")
	cc.AllowOriginFunc = func(origin string) bool {
		if appHost == "" {
			return false
		}
		match, _ := regexp.MatchString(appHost, origin)
		return match
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

func initLogger() {
	cwd, _ := os.Getwd()
	logDir := path.Join(cwd, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("Error creating log directory: %s\n", err.Error())
		return
	}
	serverLogs := path.Join(logDir, "server.log")
	apiLogs := path.Join(logDir, "api.log")
	gin.ForceConsoleColor()

	f, err := os.Create(apiLogs)
	if err == nil {
		gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	}
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == string(types.Local) {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	if os.Getenv("LOG_TO_STDOUT") != "true" {
		initLogger()
	}

	boot.InitDb()
	boot.InitScheduler()
	defer boot.StopScheduler()

	registerValidators()

	router := setupRouter()
	router.Use(corsMiddleware(apiEnv))
	router = maintenanceModeMiddleware(router)
	registerRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
