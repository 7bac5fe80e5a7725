package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"roomrent/src/db"
	"roomrent/src/lib"
	"roomrent/src/models"
	"roomrent/src/models/scopes"
	"roomrent/src/types"

	"gorm.io/gorm"
)

type AdminRoomRow struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Rent       int64  `json:"rent"`
	OwnerName  string `json:"owner_name"`
	Filename   string `json:"filename"`
	IsApproved *bool  `json:"is_approved"`
}

type AdminDashboard struct {
	Rooms  []AdminRoomRow      `json:"rooms"`
	Users  []models.User       `json:"users"`
	Tokens []models.OwnerToken `json:"tokens"`
}

// DeleteUser removes an account and its bookings. Admins cannot delete
// themselves and owners with listed rooms cannot be deleted.
func DeleteUser(ctx context.Context, auth *types.AuthContext, userId uint) (int, error) {
	if auth.IsAuthenticated() && auth.UserID == userId {
		return http.StatusBadRequest, types.NewValidationError("you cannot delete your own account")
	}
	status := http.StatusOK
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Model(&models.User{}).Scopes(scopes.WithID(userId)).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = http.StatusNotFound
				return types.NewNotFoundError("user not found")
			}
			status = http.StatusInternalServerError
			return err
		}
		if user.Role == types.ROLE_OWNER {
			var rooms int64
			if err := tx.Model(&models.Room{}).Scopes(scopes.OwnedBy(userId)).Count(&rooms).Error; err != nil {
				status = http.StatusInternalServerError
				return err
			}
			if rooms > 0 {
				status = http.StatusBadRequest
				return types.NewValidationError("cannot delete an owner with active room listings")
			}
		}
		if err := tx.Where("user_id = ?", userId).Delete(&models.Booking{}).Error; err != nil {
			status = http.StatusInternalServerError
			return err
		}
		if err := tx.Delete(&models.User{}, userId).Error; err != nil {
			status = http.StatusInternalServerError
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("[DeleteUser] user [%d]: %s\n", userId, err.Error())
		return status, err
	}
	return http.StatusOK, nil
}

// DeleteRoom removes a room with its images and bookings, then drops the
// stored image files.
func DeleteRoom(ctx context.Context, roomId uint) (int, error) {
	var filenames []string
	status := http.StatusOK
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Room{}).Scopes(scopes.WithID(roomId)).Count(&n).Error; err != nil {
			status = http.StatusInternalServerError
			return err
		}
		if n == 0 {
			status = http.StatusNotFound
			return types.NewNotFoundError("room not found")
		}
		if err := tx.Model(&models.Image{}).Where("room_id = ?", roomId).Pluck("filename", &filenames).Error; err != nil {
			status = http.StatusInternalServerError
			return err
		}
		for _, m := range []any{&models.Image{}, &models.Booking{}} {
			if err := tx.Where("room_id = ?", roomId).Delete(m).Error; err != nil {
				status = http.StatusInternalServerError
				return err
			}
		}
		if err := tx.Delete(&models.Room{}, roomId).Error; err != nil {
			status = http.StatusInternalServerError
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("[DeleteRoom] room [%d]: %s\n", roomId, err.Error())
		return status, err
	}
	discardImages(ctx, lib.GetImageStore(), filenames)
	return http.StatusOK, nil
}

// SetRoomApproval approves or rejects every image of a room.
func SetRoomApproval(ctx context.Context, roomId uint, approved bool) (int, error) {
	db := db.GetDb()
	var n int64
	if err := db.Model(&models.Room{}).Scopes(scopes.WithID(roomId)).Count(&n).Error; err != nil {
		return http.StatusInternalServerError, err
	}
	if n == 0 {
		return http.StatusNotFound, types.NewNotFoundError("room not found")
	}
	if err := db.
		Model(&models.Image{}).
		Where("room_id = ?", roomId).
		Update("approved", approved).
		Error; err != nil {
		return http.StatusInternalServerError, err
	}
	return http.StatusOK, nil
}

func GetAdminDashboard(ctx context.Context) (*AdminDashboard, int, error) {
	var dash AdminDashboard
	db := db.GetDb().WithContext(ctx)
	if err := db.
		Table("rooms").
		Select("rooms.id, rooms.title, rooms.rent, users.username AS owner_name, rooms.image_filename AS filename, images.approved AS is_approved").
		Joins("JOIN users ON users.id = rooms.owner_id").
		Joins("LEFT JOIN images ON images.filename = rooms.image_filename").
		Order("rooms.id DESC").
		Scan(&dash.Rooms).
		Error; err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if err := db.
		Model(&models.User{}).
		Order("role DESC").
		Order("id ASC").
		Find(&dash.Users).
		Error; err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if err := db.
		Model(&models.OwnerToken{}).
		Order("expiry DESC").
		Find(&dash.Tokens).
		Error; err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return &dash, http.StatusOK, nil
}

// ListUsers returns every account that is not an owner.
func ListUsers(ctx context.Context) ([]models.User, int, error) {
	var users []models.User
	if err := db.GetDb().
		WithContext(ctx).
		Model(&models.User{}).
		Where("role <> ?", types.ROLE_OWNER).
		Order("id ASC").
		Find(&users).
		Error; err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return users, http.StatusOK, nil
}
