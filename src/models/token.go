package models

import (
	"roomrent/src/types"
	"time"

	"gorm.io/gorm"
)

// OwnerToken is a single-use code that allows one Owner registration.
type OwnerToken struct {
	ID      uint      `gorm:"primarykey" json:"id"`
	Token   string    `gorm:"uniqueIndex;size:32;not null" json:"token"`
	Expiry  time.Time `gorm:"not null;index" json:"expiry"`
	IsUsed  bool      `gorm:"not null" json:"is_used"`
	Expired bool      `gorm:"-" json:"expired"`

	types.Timestamps
}

func (t *OwnerToken) AfterFind(tx *gorm.DB) error {
	t.Expired = !t.Expiry.After(time.Now().UTC())
	return nil
}
