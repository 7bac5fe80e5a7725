package controllers

import (
	"context"
	"errors"
	"net/http"
	"roomrent/src/db"
	"roomrent/src/models"
	"roomrent/src/types"
	"strings"

	"gorm.io/gorm"
)

func GetProfile(ctx context.Context, auth *types.AuthContext) (*models.User, int, error) {
	if !auth.IsAuthenticated() {
		return nil, http.StatusUnauthorized, types.ErrUnauthenticated
	}
	var user models.User
	if err := db.GetDb().
		Model(&models.User{}).
		Where("id = ?", auth.UserID).
		First(&user).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusNotFound, types.NewNotFoundError("user not found")
		}
		return nil, http.StatusInternalServerError, err
	}
	return &user, http.StatusOK, nil
}

// UpdateProfile replaces the caller's contact details.
func UpdateProfile(ctx context.Context, auth *types.AuthContext, body *types.UpdateProfileRequestBody) (*models.User, int, error) {
	if !auth.IsAuthenticated() {
		return nil, http.StatusUnauthorized, types.ErrUnauthenticated
	}
	var user models.User
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.User{}).
			Where("id = ?", auth.UserID).
			Updates(map[string]any{
				"email":  strings.TrimSpace(body.Email),
				"phone":  strings.TrimSpace(body.Phone),
				"upi_id": strings.TrimSpace(body.UpiID),
			}).
			Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", auth.UserID).First(&user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusNotFound, types.NewNotFoundError("user not found")
		}
		return nil, http.StatusInternalServerError, err
	}
	return &user, http.StatusOK, nil
}
