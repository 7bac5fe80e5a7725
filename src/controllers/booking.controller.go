package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"roomrent/src/config"
	"roomrent/src/db"
	"roomrent/src/lib"
	"roomrent/src/lib/mailer"
	"roomrent/src/models"
	"roomrent/src/models/scopes"
	"roomrent/src/types"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ViewingRequestResult struct {
	Booking     *models.Booking            `json:"booking"`
	OwnerNotice *types.NotificationOutcome `json:"ownerNotice"`
}

func normalizeContact(c *types.TenantContact) error {
	c.FullName = strings.TrimSpace(c.FullName)
	c.ContactEmail = strings.TrimSpace(c.ContactEmail)
	c.ContactPhone = strings.TrimSpace(c.ContactPhone)
	c.PreferredTime = strings.TrimSpace(c.PreferredTime)
	if c.FullName == "" || c.ContactEmail == "" || c.ContactPhone == "" {
		return types.NewValidationError("please fill in your name, email, and phone number")
	}
	if _, err := mail.ParseAddress(c.ContactEmail); err != nil {
		return types.NewValidationError("please provide a valid email address")
	}
	return nil
}

// bookableRoom loads a room and checks it can take a new viewing request.
func bookableRoom(tx *gorm.DB, roomId uint) (*models.Room, int, error) {
	var room models.Room
	if err := tx.Model(&models.Room{}).Where("id = ?", roomId).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusNotFound, types.NewNotFoundError("room not found")
		}
		return nil, http.StatusInternalServerError, err
	}
	if room.Availability != types.ROOM_AVAILABLE {
		return nil, http.StatusBadRequest, types.NewValidationError("cannot book: room is currently not available")
	}
	return &room, http.StatusOK, nil
}

func isAbandonedCheckout(b *models.Booking) bool {
	return b.Status == types.BOOKING_PENDING_PAYMENT && b.PaymentStatus == types.PAYMENT_PENDING
}

// releaseOrder voids orderId at the gateway. It returns false while the order
// may still be paid; the booking holding it must then be kept.
func releaseOrder(ctx context.Context, gw lib.PaymentGateway, orderId string) bool {
	err := gw.CancelOrder(ctx, orderId)
	if err == nil {
		return true
	}
	if order, gerr := gw.GetOrder(ctx, orderId); gerr == nil && order.Status == lib.ORDER_CANCELED {
		return true
	}
	log.Printf("[Payments] order %s was not cancelled: %s\n", orderId, err.Error())
	return false
}

// InitiateBooking creates a payment order for the viewing fee and records a
// booking awaiting payment. A tenant holds one booking per room; retrying an
// unpaid checkout cancels its order and moves the booking onto a new one.
func InitiateBooking(ctx context.Context, auth *types.AuthContext, body *types.CreateBookingOrderRequestBody) (*types.BookingOrder, int, error) {
	if !auth.IsAuthenticated() {
		return nil, http.StatusUnauthorized, types.ErrUnauthenticated
	}
	if err := normalizeContact(&body.TenantContact); err != nil {
		return nil, http.StatusBadRequest, err
	}
	db := db.GetDb()
	room, status, err := bookableRoom(db, body.RoomID)
	if err != nil {
		return nil, status, err
	}
	var existing models.Booking
	if err := db.
		Model(&models.Booking{}).
		Where("room_id = ? AND user_id = ?", room.ID, auth.UserID).
		Limit(1).
		Find(&existing).
		Error; err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if existing.ID > 0 && !isAbandonedCheckout(&existing) {
		return nil, http.StatusConflict, types.ErrAlreadyRequested
	}

	gw := lib.GetPaymentGateway()
	if gw == nil {
		log.Println("[InitiateBooking] payment gateway is not configured")
		return nil, http.StatusServiceUnavailable, types.ErrGatewayUnavailable
	}
	if existing.ID > 0 && existing.OrderID != nil && !releaseOrder(ctx, gw, *existing.OrderID) {
		return nil, http.StatusConflict, types.ErrPaymentInProgress
	}
	order, err := gw.CreateOrder(ctx, config.VIEWING_FEE, config.VIEWING_FEE_CURRENCY, true)
	if err != nil {
		log.Printf("[InitiateBooking] error creating order for room [%d]: %s\n", room.ID, err.Error())
		return nil, http.StatusBadGateway, types.NewGatewayError(err)
	}

	booking := models.Booking{
		RoomID:        room.ID,
		UserID:        auth.UserID,
		FullName:      body.FullName,
		ContactEmail:  body.ContactEmail,
		ContactPhone:  body.ContactPhone,
		PreferredTime: body.PreferredTime,
		Status:        types.BOOKING_PENDING_PAYMENT,
		PaymentStatus: types.PAYMENT_PENDING,
		OrderID:       &order.ID,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if existing.ID == 0 {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&booking)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return types.ErrAlreadyRequested
			}
			return nil
		}
		// only the order cancelled above may be replaced
		res := tx.
			Model(&models.Booking{}).
			Scopes(scopes.WithID(existing.ID), scopes.AbandonedCheckout(), scopes.WithOrder(existing.OrderID)).
			Updates(map[string]any{
				"order_id":       order.ID,
				"full_name":      body.FullName,
				"contact_email":  body.ContactEmail,
				"contact_phone":  body.ContactPhone,
				"preferred_time": body.PreferredTime,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrAlreadyRequested
		}
		return tx.Model(&models.Booking{}).Scopes(scopes.WithID(existing.ID)).First(&booking).Error
	})
	if err != nil {
		log.Printf("[InitiateBooking] order %s not recorded: %s\n", order.ID, err.Error())
		releaseOrder(ctx, gw, order.ID)
		if errors.Is(err, types.ErrAlreadyRequested) {
			return nil, http.StatusConflict, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return &types.BookingOrder{
		BookingID:    booking.ID,
		OrderID:      order.ID,
		Amount:       order.Amount,
		Currency:     order.Currency,
		ClientSecret: order.ClientSecret,
	}, http.StatusOK, nil
}

// ConfirmPayment marks the booking behind orderId as paid and locks its room.
// Unknown orders are ignored. Only the call that performs the transition
// notifies tenant and owner; delivery failures are reported, never returned.
func ConfirmPayment(ctx context.Context, orderId string) (*types.ConfirmResult, int, error) {
	orderId = strings.TrimSpace(orderId)
	if orderId == "" {
		return nil, http.StatusBadRequest, types.NewValidationError("orderId is required")
	}
	db := db.GetDb()
	var booking models.Booking
	transitioned := false
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Where("order_id = ?", orderId).
			Limit(1).
			Find(&booking).
			Error; err != nil {
			return err
		}
		if booking.ID == 0 {
			return nil
		}
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND payment_status <> ?", booking.ID, types.PAYMENT_PAID).
			Updates(map[string]any{
				"status":         types.BOOKING_NEW,
				"payment_status": types.PAYMENT_PAID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		transitioned = true
		return tx.
			Model(&models.Room{}).
			Where("id = ?", booking.RoomID).
			Update("availability", types.ROOM_IN_BOOKING_PROCESS).
			Error
	})
	if err != nil {
		log.Printf("[ConfirmPayment] error confirming order %s: %s\n", orderId, err.Error())
		return nil, http.StatusInternalServerError, err
	}
	if booking.ID == 0 {
		log.Printf("[ConfirmPayment] no booking for order %s\n", orderId)
		return &types.ConfirmResult{Status: types.CONFIRM_IGNORED}, http.StatusOK, nil
	}
	result := &types.ConfirmResult{
		Status:    types.CONFIRM_ALREADY_CONFIRMED,
		BookingID: booking.ID,
		RoomID:    booking.RoomID,
	}
	if !transitioned {
		return result, http.StatusOK, nil
	}
	result.Status = types.CONFIRM_CONFIRMED
	result.TenantNotice, result.OwnerNotice = notifyPaymentConfirmed(ctx, booking.ID)
	return result, http.StatusOK, nil
}

// ConfirmTenantPayment confirms an order reported paid by the tenant's
// browser. The order must belong to one of the tenant's bookings and the
// gateway must report it succeeded.
func ConfirmTenantPayment(ctx context.Context, auth *types.AuthContext, orderId string) (*types.ConfirmResult, int, error) {
	if !auth.IsAuthenticated() {
		return nil, http.StatusUnauthorized, types.ErrUnauthenticated
	}
	orderId = strings.TrimSpace(orderId)
	if orderId == "" {
		return nil, http.StatusBadRequest, types.NewValidationError("orderId is required")
	}
	var n int64
	if err := db.GetDb().
		Model(&models.Booking{}).
		Where("order_id = ? AND user_id = ?", orderId, auth.UserID).
		Count(&n).
		Error; err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if n == 0 {
		log.Printf("[ConfirmPayment] user [%d] has no booking for order %s\n", auth.UserID, orderId)
		return &types.ConfirmResult{Status: types.CONFIRM_IGNORED}, http.StatusOK, nil
	}
	gw := lib.GetPaymentGateway()
	if gw == nil {
		return nil, http.StatusServiceUnavailable, types.ErrGatewayUnavailable
	}
	order, err := gw.GetOrder(ctx, orderId)
	if err != nil {
		return nil, http.StatusBadGateway, types.NewGatewayError(err)
	}
	if order.Status != lib.ORDER_SUCCEEDED {
		log.Printf("[ConfirmPayment] order %s is %s\n", orderId, order.Status)
		return nil, http.StatusPaymentRequired, types.ErrPaymentIncomplete
	}
	return ConfirmPayment(ctx, orderId)
}

func bookingMessage(b *models.Booking) *mailer.BookingMessage {
	m := &mailer.BookingMessage{
		TenantName:    b.FullName,
		TenantEmail:   b.ContactEmail,
		TenantPhone:   b.ContactPhone,
		PreferredTime: b.PreferredTime,
		Amount:        mailer.FormatAmount(config.VIEWING_FEE, config.VIEWING_FEE_CURRENCY),
	}
	if b.OrderID != nil {
		m.OrderID = *b.OrderID
	}
	if b.Room != nil {
		m.RoomTitle = b.Room.Title
		m.RoomAddress = b.Room.Address
		if b.Room.Owner != nil {
			m.OwnerName = b.Room.Owner.Username
			m.OwnerEmail = b.Room.Owner.Email
			m.OwnerPhone = b.Room.Owner.Phone
		}
	}
	return m
}

func sendTemplate(ctx context.Context, to string, compose func(*mailer.BookingMessage) (string, string, error), m *mailer.BookingMessage) *types.NotificationOutcome {
	subject, body, err := compose(m)
	if err != nil {
		log.Printf("[mailer] error rendering %q: %s\n", subject, err.Error())
		return &types.NotificationOutcome{Delivered: false, Error: types.KIND_VALIDATION}
	}
	out := mailer.GetNotifier().Send(ctx, to, subject, body)
	return &out
}

func notifyPaymentConfirmed(ctx context.Context, bookingId uint) (tenant, owner *types.NotificationOutcome) {
	var b models.Booking
	if err := db.GetDb().
		Model(&models.Booking{}).
		Preload("Room.Owner").
		Where("id = ?", bookingId).
		First(&b).
		Error; err != nil {
		log.Printf("[ConfirmPayment] error loading booking [%d] for notification: %s\n", bookingId, err.Error())
		failed := &types.NotificationOutcome{Delivered: false, Error: types.KIND_NOT_FOUND}
		return failed, failed
	}
	m := bookingMessage(&b)
	tenant = sendTemplate(ctx, m.TenantEmail, mailer.TenantReceipt, m)
	owner = sendTemplate(ctx, m.OwnerEmail, mailer.OwnerPaymentAlert, m)
	if !tenant.Delivered || !owner.Delivered {
		log.Printf("[ConfirmPayment] booking [%d] confirmed, notification incomplete: tenant=%v owner=%v\n", bookingId, tenant.Delivered, owner.Delivered)
	}
	return tenant, owner
}

// createFreeBooking inserts a booking that needs no payment. A second
// request for the same room by the same user is rejected.
func createFreeBooking(auth *types.AuthContext, roomId uint, contact *types.TenantContact) (*models.Booking, int, error) {
	if !auth.IsAuthenticated() {
		return nil, http.StatusUnauthorized, types.ErrUnauthenticated
	}
	if err := normalizeContact(contact); err != nil {
		return nil, http.StatusBadRequest, err
	}
	db := db.GetDb()
	var booking models.Booking
	status := http.StatusOK
	err := db.Transaction(func(tx *gorm.DB) error {
		room, s, err := bookableRoom(tx, roomId)
		if err != nil {
			status = s
			return err
		}
		booking = models.Booking{
			RoomID:        room.ID,
			UserID:        auth.UserID,
			FullName:      contact.FullName,
			ContactEmail:  contact.ContactEmail,
			ContactPhone:  contact.ContactPhone,
			PreferredTime: contact.PreferredTime,
			Status:        types.BOOKING_NEW,
			PaymentStatus: types.PAYMENT_FREE,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&booking)
		if res.Error != nil {
			status = http.StatusInternalServerError
			return res.Error
		}
		if res.RowsAffected == 0 {
			status = http.StatusConflict
			return types.ErrAlreadyRequested
		}
		booking.Room = room
		return nil
	})
	if err != nil {
		return nil, status, err
	}
	return &booking, http.StatusCreated, nil
}

// FreeBooking records a viewing request without payment.
func FreeBooking(ctx context.Context, auth *types.AuthContext, roomId uint, contact *types.TenantContact) (*models.Booking, int, error) {
	booking, status, err := createFreeBooking(auth, roomId, contact)
	if err != nil {
		log.Printf("[FreeBooking] room [%d]: %s\n", roomId, err.Error())
	}
	return booking, status, err
}

// RequestViewing records a free viewing request and emails the room owner.
func RequestViewing(ctx context.Context, auth *types.AuthContext, roomId uint, contact *types.TenantContact) (*ViewingRequestResult, int, error) {
	booking, status, err := createFreeBooking(auth, roomId, contact)
	if err != nil {
		log.Printf("[RequestViewing] room [%d]: %s\n", roomId, err.Error())
		return nil, status, err
	}
	var owner models.User
	if err := db.GetDb().
		Model(&models.User{}).
		Where("id = ?", booking.Room.OwnerID).
		First(&owner).
		Error; err != nil {
		log.Printf("[RequestViewing] error loading owner of room [%d]: %s\n", roomId, err.Error())
	}
	booking.Room.Owner = &owner
	result := &ViewingRequestResult{Booking: booking}
	if owner.Email == "" {
		log.Printf("[RequestViewing] owner of room [%d] has no email\n", roomId)
		result.OwnerNotice = &types.NotificationOutcome{Delivered: false, Error: types.KIND_VALIDATION}
		return result, status, nil
	}
	result.OwnerNotice = sendTemplate(ctx, owner.Email, mailer.OwnerViewingRequest, bookingMessage(booking))
	return result, status, nil
}

// MarkContacted lets a room owner record that a tenant has been contacted.
func MarkContacted(ctx context.Context, auth *types.AuthContext, bookingId uint) (*models.Booking, int, error) {
	if !auth.HasRole(types.ROLE_OWNER) {
		return nil, http.StatusForbidden, types.ErrAccessDenied
	}
	db := db.GetDb()
	var booking models.Booking
	status := http.StatusOK
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Preload("Room").
			Where("id = ?", bookingId).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = http.StatusNotFound
				return types.NewNotFoundError("booking not found")
			}
			status = http.StatusInternalServerError
			return err
		}
		if booking.Room == nil || booking.Room.OwnerID != auth.UserID {
			status = http.StatusForbidden
			return types.NewAccessDeniedError("access denied: you cannot modify this booking")
		}
		booking.Status = types.BOOKING_CONTACTED
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Update("status", types.BOOKING_CONTACTED).
			Error; err != nil {
			status = http.StatusInternalServerError
			return err
		}
		return nil
	})
	if err != nil {
		return nil, status, err
	}
	return &booking, http.StatusOK, nil
}

// PurgeAbandonedBookings removes unpaid checkouts untouched for longer than
// olderThan. A booking is removed only once its order has been cancelled, so a
// late payment on a kept booking still confirms it.
func PurgeAbandonedBookings(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	db := db.GetDb()
	var stale []models.Booking
	if err := db.
		Model(&models.Booking{}).
		Scopes(scopes.AbandonedCheckout()).
		Where("updated_at < ?", cutoff).
		Find(&stale).
		Error; err != nil {
		log.Printf("Error loading abandoned bookings: %s\n", err.Error())
		return 0, err
	}
	gw := lib.GetPaymentGateway()
	var purged int64
	for _, b := range stale {
		if b.OrderID != nil {
			if gw == nil {
				log.Printf("Keeping abandoned booking [%d]: payment gateway is not configured\n", b.ID)
				continue
			}
			if !releaseOrder(ctx, gw, *b.OrderID) {
				continue
			}
		}
		res := db.
			Scopes(scopes.WithID(b.ID), scopes.AbandonedCheckout(), scopes.WithOrder(b.OrderID)).
			Delete(&models.Booking{})
		if res.Error != nil {
			log.Printf("Error purging abandoned booking [%d]: %s\n", b.ID, res.Error.Error())
			return purged, res.Error
		}
		purged += res.RowsAffected
	}
	if purged > 0 {
		log.Printf("Purged %d abandoned bookings\n", purged)
	}
	return purged, nil
}
