package middlewares

import (
	"log"
	"net/http"
	"roomrent/src/config"
	"roomrent/src/db"
	"roomrent/src/lib"
	"roomrent/src/models"
	"roomrent/src/types"
	"roomrent/src/utils"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	authContextKey = "auth"
	claimsKey      = "claims"
)

func sessionToken(ctx *gin.Context) string {
	if c, err := ctx.Cookie(config.SESSION_COOKIE); err == nil && c != "" {
		return c
	}
	bearerToken := ctx.Request.Header.Get("Authorization")
	if strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(bearerToken, "Bearer "))
	}
	return ""
}

// Authenticate resolves the caller's session into a types.AuthContext. It
// never rejects a request; RequireLogin and RequireRole do.
func Authenticate(ctx *gin.Context) {
	reqToken := sessionToken(ctx)
	if reqToken == "" {
		return
	}
	claims, err := ParseSessionToken(reqToken)
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		return
	}
	revoked, err := lib.IsSessionRevoked(ctx.Request.Context(), claims.ID)
	if err != nil {
		log.Printf("Error checking session revocation: %s\n", err.Error())
	}
	if revoked {
		return
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		return
	}
	var user models.User
	err = db.GetDb().
		Model(&models.User{}).
		Select("id", "role").
		Where("id = ?", uid).
		First(&user).
		Error
	if err != nil {
		log.Printf("Session user [%d] not found: %s\n", uid, err.Error())
		return
	}
	ctx.Set(authContextKey, &types.AuthContext{UserID: user.ID, Role: user.Role})
	ctx.Set(claimsKey, claims)
}

// GetAuthContext returns the caller's identity, or nil when unauthenticated.
func GetAuthContext(ctx *gin.Context) *types.AuthContext {
	v, ok := ctx.Get(authContextKey)
	if !ok {
		return nil
	}
	auth, _ := v.(*types.AuthContext)
	return auth
}

func GetClaims(ctx *gin.Context) *types.Claims {
	v, ok := ctx.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*types.Claims)
	return claims
}

func RequireLogin(ctx *gin.Context) {
	if !GetAuthContext(ctx).IsAuthenticated() {
		utils.AbortWithError(ctx, http.StatusUnauthorized, types.ErrUnauthenticated)
		return
	}
}

func RequireRole(roles ...types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		auth := GetAuthContext(ctx)
		if !auth.IsAuthenticated() {
			utils.AbortWithError(ctx, http.StatusUnauthorized, types.ErrUnauthenticated)
			return
		}
		if !auth.HasRole(roles...) {
			utils.AbortWithError(ctx, http.StatusForbidden, types.ErrAccessDenied)
			return
		}
	}
}

func SetSessionCookie(ctx *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(config.SESSION_COOKIE, token, maxAge, "/", "", config.GetAPIEnv() == string(types.Production), true)
}

func ClearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(config.SESSION_COOKIE, "", -1, "/", "", config.GetAPIEnv() == string(types.Production), true)
}
