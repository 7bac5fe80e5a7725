package models

import "roomrent/src/types"

type Image struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Filename string `gorm:"not null" json:"filename"`
	Caption  string `json:"caption,omitempty"`
	RoomID   uint   `gorm:"not null;index" json:"room_id"`
	Approved bool   `json:"approved"`

	types.Timestamps
}
