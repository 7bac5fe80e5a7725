package models

// All lists every table in migration order.
func All() []any {
	return []any{
		&User{},
		&Room{},
		&Image{},
		&Booking{},
		&OwnerToken{},
	}
}
