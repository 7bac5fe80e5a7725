package models

import "roomrent/src/types"

// Booking is a viewing request. A user holds at most one per room.
type Booking struct {
	ID            uint                `gorm:"primarykey" json:"id"`
	RoomID        uint                `gorm:"not null;uniqueIndex:idx_booking_room_user" json:"room_id"`
	UserID        uint                `gorm:"not null;uniqueIndex:idx_booking_room_user" json:"user_id"`
	FullName      string              `json:"full_name"`
	ContactEmail  string              `json:"contact_email"`
	ContactPhone  string              `json:"contact_phone"`
	PreferredTime string              `json:"preferred_time,omitempty"`
	Status        types.BookingStatus `gorm:"not null;index" json:"status"`
	PaymentStatus types.PaymentStatus `gorm:"not null" json:"payment_status"`
	OrderID       *string             `gorm:"uniqueIndex" json:"order_id,omitempty"`

	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	types.Timestamps
}
