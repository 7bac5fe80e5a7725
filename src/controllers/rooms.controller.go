package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"roomrent/src/config"
	"roomrent/src/db"
	"roomrent/src/lib"
	"roomrent/src/models"
	"roomrent/src/models/scopes"
	"roomrent/src/types"
	"roomrent/src/utils"
	"strings"

	"gorm.io/gorm"
)

type RoomDetail struct {
	Room      models.Room    `json:"room"`
	OwnerName string         `json:"owner_name"`
	Images    []models.Image `json:"images"`
}

type OwnerDashboard struct {
	Rooms           []models.Room    `json:"rooms"`
	Bookings        []models.Booking `json:"bookings"`
	NewBookingCount int64            `json:"new_booking_count"`
}

func validImages(files []*multipart.FileHeader) []*multipart.FileHeader {
	var valid []*multipart.FileHeader
	for _, f := range files {
		if f == nil || f.Filename == "" || !config.AllowedImage(f.Filename) {
			continue
		}
		if f.Size > config.MAX_UPLOAD_SIZE {
			log.Printf("Skipping image %s: %d bytes exceeds limit\n", f.Filename, f.Size)
			continue
		}
		valid = append(valid, f)
	}
	return valid
}

func imageContentType(f *multipart.FileHeader) string {
	if ct := f.Header.Get("Content-Type"); strings.HasPrefix(ct, "image/") {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func storeImage(ctx context.Context, store lib.ImageStore, f *multipart.FileHeader) (string, error) {
	src, err := f.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	name := utils.StoredImageName(f.Filename)
	if err := store.Save(ctx, name, src, imageContentType(f)); err != nil {
		return "", err
	}
	return name, nil
}

func discardImages(ctx context.Context, store lib.ImageStore, names []string) {
	for _, name := range names {
		if err := store.Delete(ctx, name); err != nil {
			log.Printf("Could not remove image %s: %s\n", name, err.Error())
		}
	}
}

// CreateRoom lists a new room for the calling owner. At least one image with
// an allowed extension is required; the first stored image becomes the cover.
func CreateRoom(ctx context.Context, auth *types.AuthContext, body *types.CreateRoomRequestBody, files []*multipart.FileHeader) (*models.Room, int, error) {
	if !auth.HasRole(types.ROLE_OWNER) {
		return nil, http.StatusForbidden, types.NewAccessDeniedError("access denied: only owners can add rooms")
	}
	body.Title = strings.TrimSpace(body.Title)
	body.Address = strings.TrimSpace(body.Address)
	if body.Title == "" || body.Address == "" || body.Rent <= 0 {
		return nil, http.StatusBadRequest, types.NewValidationError("title, rent and address are required")
	}
	valid := validImages(files)
	if len(valid) == 0 {
		return nil, http.StatusBadRequest, types.NewValidationError(fmt.Sprintf("at least one image (%s) is required", strings.Join(config.ALLOWED_IMAGE_EXTENSIONS, ", ")))
	}

	store := lib.GetImageStore()
	var names []string
	for _, f := range valid {
		name, err := storeImage(ctx, store, f)
		if err != nil {
			log.Printf("Error storing image %s: %s\n", f.Filename, err.Error())
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, http.StatusInternalServerError, errors.New("could not store any of the uploaded images")
	}

	room := models.Room{
		Title:         body.Title,
		Description:   strings.TrimSpace(body.Description),
		Rent:          body.Rent,
		Address:       body.Address,
		Amenities:     strings.Join(utils.SplitAmenities(body.Amenities), ", "),
		OwnerID:       auth.UserID,
		Availability:  types.ROOM_AVAILABLE,
		ImageFilename: names[0],
	}
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		images := make([]models.Image, 0, len(names))
		for _, name := range names {
			images = append(images, models.Image{Filename: name, RoomID: room.ID, Approved: true})
		}
		if err := tx.Create(&images).Error; err != nil {
			return err
		}
		room.Images = images
		return nil
	})
	if err != nil {
		log.Printf("Error creating room: %s\n", err.Error())
		discardImages(ctx, store, names)
		return nil, http.StatusInternalServerError, err
	}
	return &room, http.StatusCreated, nil
}

// SearchRooms returns available rooms matching the query, newest first.
func SearchRooms(ctx context.Context, query *types.SearchRoomsQuery) ([]models.Room, int, error) {
	if query.MinRent != nil && query.MaxRent != nil && *query.MinRent > *query.MaxRent {
		return nil, http.StatusBadRequest, types.NewValidationError("min_rent cannot exceed max_rent")
	}
	var rooms []models.Room
	err := db.GetDb().
		WithContext(ctx).
		Model(&models.Room{}).
		Scopes(
			scopes.WithAvailability(types.ROOM_AVAILABLE),
			scopes.AddressContains(query.Location),
			scopes.RentBetween(query.MinRent, query.MaxRent),
			scopes.WithAmenities(utils.SplitAmenities(query.Amenities)...),
		).
		Order("id DESC").
		Find(&rooms).
		Error
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return rooms, http.StatusOK, nil
}

// ToggleAvailability flips an owner's room between Available and Not
// Available. A room locked by a paid booking is released to Available. A room
// changed by another request in the meantime is left alone.
func ToggleAvailability(ctx context.Context, auth *types.AuthContext, roomId uint) (*models.Room, int, error) {
	if !auth.IsAuthenticated() {
		return nil, http.StatusUnauthorized, types.ErrUnauthenticated
	}
	var room models.Room
	status := http.StatusOK
	err := db.GetDb().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Room{}).Scopes(scopes.WithID(roomId)).First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = http.StatusNotFound
				return types.NewNotFoundError("room not found")
			}
			status = http.StatusInternalServerError
			return err
		}
		if room.OwnerID != auth.UserID {
			status = http.StatusForbidden
			return types.NewAccessDeniedError("access denied: you do not own this room")
		}
		next := room.Availability.Toggled()
		res := tx.
			Model(&models.Room{}).
			Where("id = ? AND availability = ?", room.ID, room.Availability).
			Update("availability", next)
		if res.Error != nil {
			status = http.StatusInternalServerError
			return res.Error
		}
		if res.RowsAffected == 0 {
			status = http.StatusConflict
			return types.ErrConflict
		}
		room.Availability = next
		return nil
	})
	if err != nil {
		return nil, status, err
	}
	return &room, http.StatusOK, nil
}

// GetRoom returns a room with its owner's name and approved images.
func GetRoom(ctx context.Context, roomId uint) (*RoomDetail, int, error) {
	var detail RoomDetail
	db := db.GetDb().WithContext(ctx)
	if err := db.
		Model(&models.Room{}).
		Preload("Owner", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "username")
		}).
		Scopes(scopes.WithID(roomId)).
		First(&detail.Room).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusNotFound, types.NewNotFoundError("room not found")
		}
		return nil, http.StatusInternalServerError, err
	}
	if detail.Room.Owner != nil {
		detail.OwnerName = detail.Room.Owner.Username
	}
	if err := db.
		Model(&models.Image{}).
		Where("room_id = ? AND approved = ?", roomId, true).
		Order("id ASC").
		Find(&detail.Images).
		Error; err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return &detail, http.StatusOK, nil
}

func GetOwnerDashboard(ctx context.Context, auth *types.AuthContext) (*OwnerDashboard, int, error) {
	if !auth.HasRole(types.ROLE_OWNER) {
		return nil, http.StatusForbidden, types.NewAccessDeniedError("access denied: only owners can view the dashboard")
	}
	var dash OwnerDashboard
	db := db.GetDb().WithContext(ctx)
	if err := db.
		Model(&models.Room{}).
		Scopes(scopes.OwnedBy(auth.UserID)).
		Order("id DESC").
		Find(&dash.Rooms).
		Error; err != nil {
		return nil, http.StatusInternalServerError, err
	}
	ownedRooms := db.Model(&models.Room{}).Select("id").Where("owner_id = ?", auth.UserID)
	if err := db.
		Model(&models.Booking{}).
		Preload("Room").
		Where("room_id IN (?)", ownedRooms).
		Order("created_at DESC").
		Order("id DESC").
		Find(&dash.Bookings).
		Error; err != nil {
		return nil, http.StatusInternalServerError, err
	}
	for _, b := range dash.Bookings {
		if b.Status == types.BOOKING_NEW {
			dash.NewBookingCount++
		}
	}
	return &dash, http.StatusOK, nil
}

// UploadImage adds a captioned image to one of the caller's rooms.
func UploadImage(ctx context.Context, auth *types.AuthContext, body *types.UploadImageRequestBody, file *multipart.FileHeader) (*models.Image, int, error) {
	if !auth.HasRole(types.ROLE_OWNER) {
		return nil, http.StatusForbidden, types.NewAccessDeniedError("access denied: only owners can upload")
	}
	if len(validImages([]*multipart.FileHeader{file})) == 0 {
		return nil, http.StatusBadRequest, types.NewValidationError("invalid file")
	}
	var room models.Room
	if err := db.GetDb().Model(&models.Room{}).Scopes(scopes.WithID(body.RoomID)).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusNotFound, types.NewNotFoundError("room not found")
		}
		return nil, http.StatusInternalServerError, err
	}
	if room.OwnerID != auth.UserID {
		return nil, http.StatusForbidden, types.NewAccessDeniedError("access denied: you do not own this room")
	}
	store := lib.GetImageStore()
	name, err := storeImage(ctx, store, file)
	if err != nil {
		log.Printf("Error storing image %s: %s\n", file.Filename, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	image := models.Image{
		Filename: name,
		Caption:  strings.TrimSpace(body.Caption),
		RoomID:   room.ID,
		Approved: true,
	}
	if err := db.GetDb().Create(&image).Error; err != nil {
		discardImages(ctx, store, []string{name})
		return nil, http.StatusInternalServerError, err
	}
	return &image, http.StatusCreated, nil
}
