package middlewares

import (
	"errors"
	"roomrent/src/config"
	"roomrent/src/models"
	"roomrent/src/types"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrMissingSecret = errors.New("JWT_SECRET is not set")

// GenerateSessionToken signs a session for the user and returns it with its
// claims.
func GenerateSessionToken(user *models.User) (string, *types.Claims, error) {
	key := config.GetJWTSecret()
	if len(key) == 0 {
		return "", nil, ErrMissingSecret
	}
	now := time.Now().UTC()
	claims := &types.Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(config.GetSessionTTL())),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func ParseSessionToken(tokenString string) (*types.Claims, error) {
	key := config.GetJWTSecret()
	if len(key) == 0 {
		return nil, ErrMissingSecret
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
