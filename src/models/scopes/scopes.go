package scopes

import (
	"roomrent/src/types"
	"strings"

	"gorm.io/gorm"
)

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func WithIDs(ids ...uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", ids)
	}
}

func WithAvailability(a types.Availability) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("availability = ?", a)
	}
}

func OwnedBy(ownerId uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerId)
	}
}

// AbandonedCheckout matches bookings whose viewing fee was never paid.
func AbandonedCheckout() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ? AND payment_status = ?", types.BOOKING_PENDING_PAYMENT, types.PAYMENT_PENDING)
	}
}

func WithOrder(orderId *string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if orderId == nil {
			return db.Where("order_id IS NULL")
		}
		return db.Where("order_id = ?", *orderId)
	}
}

// AddressContains matches a case-insensitive substring of the address.
func AddressContains(location string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		location = strings.TrimSpace(location)
		if location == "" {
			return db
		}
		return db.Where("LOWER(address) LIKE ?", "%"+strings.ToLower(location)+"%")
	}
}

func RentBetween(min, max *int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if min != nil {
			db = db.Where("rent >= ?", *min)
		}
		if max != nil {
			db = db.Where("rent <= ?", *max)
		}
		return db
	}
}

// WithAmenities requires every listed amenity to appear in the room's
// amenities text.
func WithAmenities(amenities ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, a := range amenities {
			a = strings.TrimSpace(a)
			if a == "" {
				continue
			}
			db = db.Where("LOWER(amenities) LIKE ?", "%"+strings.ToLower(a)+"%")
		}
		return db
	}
}
