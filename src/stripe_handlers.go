package main

import (
	"io"
	"log"
	"net/http"
	"roomrent/src/controllers"
	"roomrent/src/lib"

	"github.com/gin-gonic/gin"
)

func stripeWebhookRoute(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		orderId, ok, err := lib.ParsePaymentSucceeded(payload, ctx.GetHeader("Stripe-Signature"))
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		if !ok {
			ctx.Status(http.StatusOK)
			return
		}
		result, status, err := controllers.ConfirmPayment(ctx.Request.Context(), orderId)
		if err != nil {
			log.Printf("[Stripe] error confirming %s: %s\n", orderId, err.Error())
			ctx.Status(status)
			return
		}
		log.Printf("[Stripe] order %s: %s\n", orderId, result.Status)
		ctx.JSON(http.StatusOK, gin.H{"data": result})
	})
	return g
}
