package models

import "roomrent/src/types"

type User struct {
	ID       uint       `gorm:"primarykey" json:"id"`
	Username string     `gorm:"uniqueIndex;not null" json:"username"`
	Password string     `gorm:"not null" json:"-"`
	Role     types.Role `gorm:"not null;index" json:"role"`
	Email    string     `json:"email,omitempty"`
	Phone    string     `json:"phone,omitempty"`
	UpiID    string     `json:"upi_id,omitempty"`

	Rooms    []Room    `gorm:"foreignKey:OwnerID" json:"rooms,omitempty"`
	Bookings []Booking `gorm:"foreignKey:UserID" json:"bookings,omitempty"`

	types.Timestamps
}
