package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"roomrent/src/config"
	"roomrent/src/db"
	"roomrent/src/lib"
	"roomrent/src/middlewares"
	"roomrent/src/models"
	"roomrent/src/types"
	"roomrent/src/utils"
	"strings"
	"time"

	"gorm.io/gorm"
)

var errInvalidOwnerCode = types.NewValidationError("invalid, expired, or already used owner secret code")

var errInvalidCredentials = &types.AppError{Kind: types.KIND_UNAUTHENTICATED, Message: "invalid username or password"}

type LoginResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Register creates an account. Owners must present an unused, unexpired
// owner code; the code is consumed in the same transaction as the insert.
func Register(ctx context.Context, body *types.RegisterUserRequestBody) (*models.User, int, error) {
	body.Username = strings.TrimSpace(body.Username)
	body.Password = strings.TrimSpace(body.Password)
	body.OwnerSecretCode = strings.TrimSpace(body.OwnerSecretCode)
	if body.Username == "" || body.Password == "" || body.Role == "" {
		return nil, http.StatusBadRequest, types.NewValidationError("all fields required")
	}
	if !body.Role.Registrable() {
		return nil, http.StatusBadRequest, types.NewValidationError("invalid role")
	}
	if body.Role == types.ROLE_OWNER && body.OwnerSecretCode == "" {
		return nil, http.StatusBadRequest, types.NewValidationError("owner registration requires a valid secret code")
	}
	hashed, err := utils.HashPassword(body.Password)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	user := models.User{
		Username: body.Username,
		Password: hashed,
		Role:     body.Role,
	}
	err = db.GetDb().Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return types.NewValidationError("username already exists")
		}
		if user.Role == types.ROLE_OWNER {
			if err := RedeemToken(tx, body.OwnerSecretCode); err != nil {
				return err
			}
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.NewValidationError("username already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("[Register] error: %s\n", err.Error())
		if types.KindOf(err) == types.KIND_VALIDATION {
			return nil, http.StatusBadRequest, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return &user, http.StatusCreated, nil
}

// RedeemToken consumes an owner code. It succeeds for exactly one caller:
// the code is marked used by a single conditional update.
func RedeemToken(tx *gorm.DB, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return errInvalidOwnerCode
	}
	res := tx.
		Model(&models.OwnerToken{}).
		Where("token = ? AND is_used = ? AND expiry > ?", code, false, time.Now().UTC()).
		Update("is_used", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return errInvalidOwnerCode
	}
	return nil
}

// IssueToken creates a new owner code valid for config.OWNER_TOKEN_TTL.
func IssueToken(ctx context.Context) (*types.IssuedToken, int, error) {
	db := db.GetDb()
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		t := models.OwnerToken{
			Token:  utils.GenerateOwnerCode(),
			Expiry: time.Now().UTC().Add(config.OWNER_TOKEN_TTL),
		}
		err = db.Create(&t).Error
		if err == nil {
			return &types.IssuedToken{Token: t.Token, Expiry: t.Expiry}, http.StatusCreated, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	log.Printf("Error issuing owner token: %s\n", err.Error())
	return nil, http.StatusInternalServerError, err
}

// PurgeExpiredOwnerTokens deletes unused codes past their expiry.
func PurgeExpiredOwnerTokens() (int64, error) {
	res := db.GetDb().
		Where("is_used = ? AND expiry <= ?", false, time.Now().UTC()).
		Delete(&models.OwnerToken{})
	if res.Error != nil {
		log.Printf("Error purging owner tokens: %s\n", res.Error.Error())
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("Purged %d expired owner tokens\n", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

func Login(ctx context.Context, body *types.LoginRequestBody) (*LoginResult, int, error) {
	username := strings.TrimSpace(body.Username)
	var user models.User
	err := db.GetDb().
		Model(&models.User{}).
		Where("username = ?", username).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusUnauthorized, errInvalidCredentials
		}
		return nil, http.StatusInternalServerError, err
	}
	if !utils.CheckPassword(user.Password, strings.TrimSpace(body.Password)) {
		return nil, http.StatusUnauthorized, errInvalidCredentials
	}
	token, claims, err := middlewares.GenerateSessionToken(&user)
	if err != nil {
		log.Printf("Error generating session for user [%d]: %s\n", user.ID, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	return &LoginResult{User: &user, Token: token, ExpiresAt: claims.ExpiresAt.Time}, http.StatusOK, nil
}

// Logout revokes the session for the rest of its lifetime.
func Logout(ctx context.Context, claims *types.Claims) (int, error) {
	if claims == nil {
		return http.StatusOK, nil
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := lib.RevokeSession(ctx, claims.ID, ttl); err != nil {
		log.Printf("Error revoking session %s: %s\n", claims.ID, err.Error())
		return http.StatusInternalServerError, err
	}
	return http.StatusOK, nil
}
