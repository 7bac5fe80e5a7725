package utils

import (
	"errors"
	"net/http"
	"roomrent/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatusFor maps an error to the HTTP status its kind is reported with.
func StatusFor(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	switch types.KindOf(err) {
	case types.KIND_VALIDATION:
		return http.StatusBadRequest
	case types.KIND_UNAUTHENTICATED:
		return http.StatusUnauthorized
	case types.KIND_ACCESS_DENIED:
		return http.StatusForbidden
	case types.KIND_NOT_FOUND:
		return http.StatusNotFound
	case types.KIND_ALREADY_REQUESTED, types.KIND_CONFLICT:
		return http.StatusConflict
	case types.KIND_PAYMENT_INCOMPLETE:
		return http.StatusPaymentRequired
	case types.KIND_GATEWAY_ERROR:
		return http.StatusBadGateway
	case types.KIND_GATEWAY_UNAVAILABLE:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// redirectFor names the page a browser should land on after a failure.
func redirectFor(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "/login"
	case http.StatusForbidden, http.StatusNotFound:
		return "/"
	}
	return ""
}

// AbortWithError writes {error, redirect} and stops the handler chain.
// Internal errors are not echoed to the client.
func AbortWithError(ctx *gin.Context, status int, err error) {
	if status == 0 {
		status = StatusFor(err)
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "something went wrong"
	}
	body := gin.H{"error": msg}
	if kind := types.KindOf(err); kind != "" {
		body["kind"] = kind
	}
	if r := redirectFor(status); r != "" {
		body["redirect"] = r
	}
	ctx.AbortWithStatusJSON(status, body)
}
