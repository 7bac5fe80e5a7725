package models

import (
	"roomrent/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Room struct {
	ID            uint               `gorm:"primarykey" json:"id"`
	Title         string             `gorm:"not null" json:"title"`
	Slug          string             `gorm:"index" json:"slug"`
	Description   string             `json:"description,omitempty"`
	Rent          int64              `gorm:"not null;index" json:"rent"`
	Address       string             `gorm:"not null" json:"address"`
	ImageFilename string             `json:"image_filename,omitempty"`
	OwnerID       uint               `gorm:"not null;index" json:"owner_id"`
	Availability  types.Availability `gorm:"not null;index" json:"availability"`
	Amenities     string             `json:"amenities,omitempty"`

	Owner    *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Images   []Image   `gorm:"foreignKey:RoomID" json:"images,omitempty"`
	Bookings []Booking `gorm:"foreignKey:RoomID" json:"bookings,omitempty"`

	types.Timestamps
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.Slug == "" {
		r.Slug = slug.Make(r.Title)
	}
	if r.Availability == "" {
		r.Availability = types.ROOM_AVAILABLE
	}
	return nil
}
