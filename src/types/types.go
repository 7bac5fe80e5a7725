package types

import (
	"fmt"
	"time"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
}

type AppEnv string

const (
	Local      AppEnv = "local"
	Test       AppEnv = "test"
	Production AppEnv = "production"
)

type Role string

const (
	ROLE_STUDENT       Role = "Student"
	ROLE_ADMIN         Role = "Admin"
	ROLE_GOVT_EMPLOYEE Role = "Govt Employee"
	ROLE_OWNER         Role = "Owner"
	ROLE_USER          Role = "User"
)

var roles = []Role{ROLE_STUDENT, ROLE_ADMIN, ROLE_GOVT_EMPLOYEE, ROLE_OWNER, ROLE_USER}

func (r Role) Valid() bool {
	for _, v := range roles {
		if r == v {
			return true
		}
	}
	return false
}

// Registrable reports whether the role can be chosen at self-registration.
func (r Role) Registrable() bool {
	return r.Valid() && r != ROLE_ADMIN
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return r, nil
}

type Availability string

const (
	ROOM_AVAILABLE          Availability = "Available"
	ROOM_IN_BOOKING_PROCESS Availability = "In Booking Process"
	ROOM_NOT_AVAILABLE      Availability = "Not Available"
)

func (a Availability) Valid() bool {
	switch a {
	case ROOM_AVAILABLE, ROOM_IN_BOOKING_PROCESS, ROOM_NOT_AVAILABLE:
		return true
	}
	return false
}

// Toggled returns the state an owner toggle moves the room to.
func (a Availability) Toggled() Availability {
	if a == ROOM_AVAILABLE {
		return ROOM_NOT_AVAILABLE
	}
	return ROOM_AVAILABLE
}

func ParseAvailability(s string) (Availability, error) {
	a := Availability(s)
	if !a.Valid() {
		return "", fmt.Errorf("invalid availability: %q", s)
	}
	return a, nil
}

type BookingStatus string

const (
	BOOKING_NEW             BookingStatus = "New"
	BOOKING_PENDING_PAYMENT BookingStatus = "Pending Payment"
	BOOKING_CONFIRMED       BookingStatus = "Confirmed"
	BOOKING_CONTACTED       BookingStatus = "Contacted"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BOOKING_NEW, BOOKING_PENDING_PAYMENT, BOOKING_CONFIRMED, BOOKING_CONTACTED:
		return true
	}
	return false
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	v := BookingStatus(s)
	if !v.Valid() {
		return "", fmt.Errorf("invalid booking status: %q", s)
	}
	return v, nil
}

type PaymentStatus string

const (
	PAYMENT_PENDING PaymentStatus = "Pending"
	PAYMENT_PAID    PaymentStatus = "Paid"
	PAYMENT_FREE    PaymentStatus = "Free"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PAYMENT_PENDING, PAYMENT_PAID, PAYMENT_FREE:
		return true
	}
	return false
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	v := PaymentStatus(s)
	if !v.Valid() {
		return "", fmt.Errorf("invalid payment status: %q", s)
	}
	return v, nil
}

// AuthContext is the verified identity of the caller for one request.
type AuthContext struct {
	UserID uint `json:"user_id"`
	Role   Role `json:"role"`
}

func (a *AuthContext) IsAuthenticated() bool {
	return a != nil && a.UserID > 0
}

func (a *AuthContext) HasRole(roles ...Role) bool {
	if !a.IsAuthenticated() {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type RegisterUserRequestBody struct {
	Username        string `json:"username" form:"username" binding:"required"`
	Password        string `json:"password" form:"password" binding:"required"`
	Role            Role   `json:"role" form:"role" binding:"required,role"`
	OwnerSecretCode string `json:"owner_secret_code" form:"owner_secret_code"`
}

type LoginRequestBody struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type UpdateProfileRequestBody struct {
	Email string `json:"email" form:"email" binding:"omitempty,email"`
	Phone string `json:"phone" form:"phone"`
	UpiID string `json:"upi_id" form:"upi_id"`
}

type TenantContact struct {
	FullName      string `json:"full_name" form:"fullName"`
	ContactEmail  string `json:"contact_email" form:"contactEmail"`
	ContactPhone  string `json:"contact_phone" form:"contactPhone"`
	PreferredTime string `json:"preferred_time" form:"preferredTime"`
}

type CreateBookingOrderRequestBody struct {
	RoomID uint `json:"room_id" form:"room_id" binding:"required"`
	TenantContact
}

type ConfirmPaymentRequestBody struct {
	OrderID string `json:"orderId" form:"orderId" binding:"required"`
}

type CreateRoomRequestBody struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description"`
	Rent        int64  `form:"rent" binding:"required,gt=0"`
	Address     string `form:"address" binding:"required"`
	Amenities   string `form:"amenities"`
}

type UploadImageRequestBody struct {
	RoomID  uint   `form:"room_id" binding:"required"`
	Caption string `form:"caption"`
}

type SearchRoomsQuery struct {
	Location  string `form:"location"`
	MinRent   *int64 `form:"min_rent" binding:"omitempty,gte=0"`
	MaxRent   *int64 `form:"max_rent" binding:"omitempty,gte=0"`
	Amenities string `form:"amenities"`
}

type BookingOrder struct {
	BookingID    uint   `json:"bookingId"`
	OrderID      string `json:"orderId"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

type ConfirmStatus string

const (
	CONFIRM_IGNORED           ConfirmStatus = "ignored"
	CONFIRM_CONFIRMED         ConfirmStatus = "confirmed"
	CONFIRM_ALREADY_CONFIRMED ConfirmStatus = "already_confirmed"
)

type ConfirmResult struct {
	Status       ConfirmStatus        `json:"status"`
	BookingID    uint                 `json:"bookingId,omitempty"`
	RoomID       uint                 `json:"roomId,omitempty"`
	TenantNotice *NotificationOutcome `json:"tenantNotice,omitempty"`
	OwnerNotice  *NotificationOutcome `json:"ownerNotice,omitempty"`
}

type NotificationOutcome struct {
	Delivered bool      `json:"delivered"`
	Error     ErrorKind `json:"error,omitempty"`
}

type IssuedToken struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"expiry"`
}
