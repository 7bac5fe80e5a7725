package controllers

import (
	"context"
	"fmt"
	"net/http"
	"roomrent/src/config"
	"roomrent/src/lib"
	"roomrent/src/models"
	"roomrent/src/types"
	"sync"
	"time"
)

func (s *ControllersSuite) initiate(u *models.User, roomId uint) (*types.BookingOrder, int, error) {
	return InitiateBooking(context.Background(), authOf(u), &types.CreateBookingOrderRequestBody{
		RoomID:        roomId,
		TenantContact: contact(),
	})
}

func (s *ControllersSuite) TestInitiateAndConfirm() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)

	order, status, err := s.initiate(s.Tenant, room.ID)
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Equal("order_1", order.OrderID)
	s.Equal(config.VIEWING_FEE, order.Amount)
	s.Equal(config.VIEWING_FEE_CURRENCY, order.Currency)
	s.NotEmpty(order.ClientSecret)

	var booking models.Booking
	s.Require().Nil(s.DB.First(&booking, order.BookingID).Error)
	s.Equal(types.BOOKING_PENDING_PAYMENT, booking.Status)
	s.Equal(types.PAYMENT_PENDING, booking.PaymentStatus)
	s.Equal(types.ROOM_AVAILABLE, s.roomAvailability(room.ID))

	result, status, err := ConfirmPayment(context.Background(), "order_1")
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Equal(types.CONFIRM_CONFIRMED, result.Status)
	s.Equal(room.ID, result.RoomID)
	s.True(result.TenantNotice.Delivered)
	s.True(result.OwnerNotice.Delivered)
	s.Equal(types.ROOM_IN_BOOKING_PROCESS, s.roomAvailability(room.ID))
	s.Equal(2, s.Notifier.count())
	s.Equal("asha@example.com", s.Notifier.sent[0].To)
	s.Equal("owner1@example.com", s.Notifier.sent[1].To)

	s.Require().Nil(s.DB.First(&booking, order.BookingID).Error)
	s.Equal(types.BOOKING_NEW, booking.Status)
	s.Equal(types.PAYMENT_PAID, booking.PaymentStatus)

	result, status, err = ConfirmPayment(context.Background(), "order_1")
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Equal(types.CONFIRM_ALREADY_CONFIRMED, result.Status)
	s.Nil(result.TenantNotice)
	s.Equal(types.ROOM_IN_BOOKING_PROCESS, s.roomAvailability(room.ID))
	s.Equal(2, s.Notifier.count())
}

func (s *ControllersSuite) TestConfirmUnknownOrder() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)

	result, status, err := ConfirmPayment(context.Background(), "order_missing")
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Equal(types.CONFIRM_IGNORED, result.Status)
	s.Equal(types.ROOM_AVAILABLE, s.roomAvailability(room.ID))
	s.Equal(0, s.Notifier.count())

	_, status, err = ConfirmPayment(context.Background(), "  ")
	s.Equal(http.StatusBadRequest, status)
	s.ErrorIs(err, types.ErrValidation)
}

func (s *ControllersSuite) TestConfirmReportsNotificationFailure() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	_, _, err := s.initiate(s.Tenant, room.ID)
	s.Require().Nil(err)
	s.Notifier.fail = true

	result, status, err := ConfirmPayment(context.Background(), "order_1")
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Equal(types.CONFIRM_CONFIRMED, result.Status)
	s.False(result.TenantNotice.Delivered)
	s.Equal(types.KIND_GATEWAY_ERROR, result.OwnerNotice.Error)
	s.Equal(types.ROOM_IN_BOOKING_PROCESS, s.roomAvailability(room.ID))
}

func (s *ControllersSuite) TestInitiateGatewayFailures() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)

	s.Gateway.err = errDeclined
	_, status, err := s.initiate(s.Tenant, room.ID)
	s.Equal(http.StatusBadGateway, status)
	s.ErrorIs(err, types.ErrGatewayError)

	s.T().Setenv("STRIPE_SECRET_KEY", "")
	lib.NewPaymentGateway(nil)
	_, status, err = s.initiate(s.Tenant, room.ID)
	s.Equal(http.StatusServiceUnavailable, status)
	s.ErrorIs(err, types.ErrGatewayUnavailable)

	var n int64
	s.Require().Nil(s.DB.Model(&models.Booking{}).Count(&n).Error)
	s.Zero(n)
}

func (s *ControllersSuite) TestInitiateRejections() {
	available := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	locked := s.createRoom(s.Owner, "Studio B", 9000, "Pune", types.ROOM_NOT_AVAILABLE)

	_, status, err := InitiateBooking(context.Background(), nil, &types.CreateBookingOrderRequestBody{RoomID: available.ID, TenantContact: contact()})
	s.Equal(http.StatusUnauthorized, status)
	s.ErrorIs(err, types.ErrUnauthenticated)

	_, status, err = s.initiate(s.Tenant, locked.ID)
	s.Equal(http.StatusBadRequest, status)
	s.ErrorIs(err, types.ErrValidation)

	_, status, err = s.initiate(s.Tenant, 9999)
	s.Equal(http.StatusNotFound, status)
	s.ErrorIs(err, types.ErrNotFound)

	bad := contact()
	bad.ContactEmail = "not-an-email"
	_, status, err = InitiateBooking(context.Background(), authOf(s.Tenant), &types.CreateBookingOrderRequestBody{RoomID: available.ID, TenantContact: bad})
	s.Equal(http.StatusBadRequest, status)
	s.ErrorIs(err, types.ErrValidation)
	s.Zero(s.Gateway.orders)
}

func (s *ControllersSuite) TestInitiateRetryReusesAbandonedCheckout() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)

	first, _, err := s.initiate(s.Tenant, room.ID)
	s.Require().Nil(err)
	second, status, err := s.initiate(s.Tenant, room.ID)
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Equal("order_2", second.OrderID)
	s.Equal(first.BookingID, second.BookingID)

	// the superseded checkout can no longer take money
	s.Equal(lib.ORDER_CANCELED, s.Gateway.statusOf("order_1"))
	s.False(s.Gateway.pay("order_1"))

	s.True(s.Gateway.pay("order_2"))
	result, _, err := ConfirmPayment(context.Background(), "order_2")
	s.Require().Nil(err)
	s.Equal(types.CONFIRM_CONFIRMED, result.Status)
	s.Equal(first.BookingID, result.BookingID)

	_, status, err = s.initiate(s.Tenant, room.ID)
	s.Equal(http.StatusBadRequest, status)
	s.ErrorIs(err, types.ErrValidation)
}

func (s *ControllersSuite) TestRetryAfterEarlierOrderWasPaid() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)

	first, _, err := s.initiate(s.Tenant, room.ID)
	s.Require().Nil(err)
	s.True(s.Gateway.pay(first.OrderID))

	_, status, err := s.initiate(s.Tenant, room.ID)
	s.Equal(http.StatusConflict, status)
	s.ErrorIs(err, types.ErrAlreadyRequested)
	s.Equal(1, s.Gateway.orders)

	result, _, err := ConfirmPayment(context.Background(), first.OrderID)
	s.Require().Nil(err)
	s.Equal(types.CONFIRM_CONFIRMED, result.Status)
	s.Equal(first.BookingID, result.BookingID)
	s.Equal(types.ROOM_IN_BOOKING_PROCESS, s.roomAvailability(room.ID))
}

func (s *ControllersSuite) TestConfirmTenantPayment() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	order, _, err := s.initiate(s.Tenant, room.ID)
	s.Require().Nil(err)

	_, status, err := ConfirmTenantPayment(context.Background(), nil, order.OrderID)
	s.Equal(http.StatusUnauthorized, status)
	s.ErrorIs(err, types.ErrUnauthenticated)

	stranger := s.createUser("tenant2", types.ROLE_STUDENT, "tenant2@example.com")
	result, status, err := ConfirmTenantPayment(context.Background(), authOf(stranger), order.OrderID)
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Equal(types.CONFIRM_IGNORED, result.Status)

	_, status, err = ConfirmTenantPayment(context.Background(), authOf(s.Tenant), order.OrderID)
	s.Equal(http.StatusPaymentRequired, status)
	s.ErrorIs(err, types.ErrPaymentIncomplete)
	s.Equal(types.ROOM_AVAILABLE, s.roomAvailability(room.ID))
	s.Equal(0, s.Notifier.count())

	s.True(s.Gateway.pay(order.OrderID))
	result, status, err = ConfirmTenantPayment(context.Background(), authOf(s.Tenant), order.OrderID)
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Equal(types.CONFIRM_CONFIRMED, result.Status)
	s.Equal(types.ROOM_IN_BOOKING_PROCESS, s.roomAvailability(room.ID))

	s.T().Setenv("STRIPE_SECRET_KEY", "")
	lib.NewPaymentGateway(nil)
	_, status, err = ConfirmTenantPayment(context.Background(), authOf(s.Tenant), order.OrderID)
	s.Equal(http.StatusServiceUnavailable, status)
	s.ErrorIs(err, types.ErrGatewayUnavailable)
}

func (s *ControllersSuite) TestConcurrentFreeBookings() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)

	var wg sync.WaitGroup
	var mu sync.Mutex
	statuses := map[int]int{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := contact()
			_, status, _ := FreeBooking(context.Background(), authOf(s.Tenant), room.ID, &c)
			mu.Lock()
			statuses[status]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Equal(map[int]int{http.StatusCreated: 1, http.StatusConflict: 7}, statuses)
	var n int64
	s.Require().Nil(s.DB.Model(&models.Booking{}).Where("room_id = ?", room.ID).Count(&n).Error)
	s.Equal(int64(1), n)
}

func (s *ControllersSuite) TestConcurrentInitiateLeavesOnePayableOrder() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)

	var wg sync.WaitGroup
	var mu sync.Mutex
	statuses := map[int]int{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, status, _ := s.initiate(s.Tenant, room.ID)
			mu.Lock()
			statuses[status]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.NotZero(statuses[http.StatusOK])
	s.Equal(8, statuses[http.StatusOK]+statuses[http.StatusConflict])

	var bookings []models.Booking
	s.Require().Nil(s.DB.Where("room_id = ?", room.ID).Find(&bookings).Error)
	s.Require().Len(bookings, 1)
	s.Require().NotNil(bookings[0].OrderID)
	current := *bookings[0].OrderID

	// every order but the booking's own was cancelled
	for i := 1; i <= s.Gateway.orders; i++ {
		id := fmt.Sprintf("order_%d", i)
		if id == current {
			s.NotEqual(lib.ORDER_CANCELED, s.Gateway.statusOf(id))
			continue
		}
		s.Equal(lib.ORDER_CANCELED, s.Gateway.statusOf(id), id)
	}

	s.True(s.Gateway.pay(current))
	result, _, err := ConfirmPayment(context.Background(), current)
	s.Require().Nil(err)
	s.Equal(types.CONFIRM_CONFIRMED, result.Status)
}

func (s *ControllersSuite) TestSecondRequestIsRejected() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	c := contact()

	booking, status, err := FreeBooking(context.Background(), authOf(s.Tenant), room.ID, &c)
	s.Require().Nil(err)
	s.Equal(http.StatusCreated, status)
	s.Equal(types.PAYMENT_FREE, booking.PaymentStatus)
	s.Equal(types.BOOKING_NEW, booking.Status)

	c = contact()
	_, status, err = FreeBooking(context.Background(), authOf(s.Tenant), room.ID, &c)
	s.Equal(http.StatusConflict, status)
	s.ErrorIs(err, types.ErrAlreadyRequested)

	_, status, err = s.initiate(s.Tenant, room.ID)
	s.Equal(http.StatusConflict, status)
	s.ErrorIs(err, types.ErrAlreadyRequested)
	s.Zero(s.Gateway.orders)

	var n int64
	s.Require().Nil(s.DB.Model(&models.Booking{}).Where("room_id = ?", room.ID).Count(&n).Error)
	s.Equal(int64(1), n)
}

func (s *ControllersSuite) TestRequestViewingNotifiesOwner() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	c := contact()

	result, status, err := RequestViewing(context.Background(), authOf(s.Tenant), room.ID, &c)
	s.Require().Nil(err)
	s.Equal(http.StatusCreated, status)
	s.True(result.OwnerNotice.Delivered)
	s.Equal(1, s.Notifier.count())
	s.Equal("owner1@example.com", s.Notifier.sent[0].To)

	silent := s.createUser("owner2", types.ROLE_OWNER, "")
	other := s.createRoom(silent, "Studio C", 7000, "Mumbai", types.ROOM_AVAILABLE)
	c = contact()
	result, status, err = RequestViewing(context.Background(), authOf(s.Tenant), other.ID, &c)
	s.Require().Nil(err)
	s.Equal(http.StatusCreated, status)
	s.False(result.OwnerNotice.Delivered)
	s.Equal(types.KIND_VALIDATION, result.OwnerNotice.Error)
	s.Equal(1, s.Notifier.count())
}

func (s *ControllersSuite) TestMarkContacted() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	c := contact()
	booking, _, err := FreeBooking(context.Background(), authOf(s.Tenant), room.ID, &c)
	s.Require().Nil(err)

	_, status, err := MarkContacted(context.Background(), authOf(s.Tenant), booking.ID)
	s.Equal(http.StatusForbidden, status)
	s.ErrorIs(err, types.ErrAccessDenied)

	stranger := s.createUser("owner2", types.ROLE_OWNER, "owner2@example.com")
	_, status, err = MarkContacted(context.Background(), authOf(stranger), booking.ID)
	s.Equal(http.StatusForbidden, status)
	s.ErrorIs(err, types.ErrAccessDenied)

	updated, status, err := MarkContacted(context.Background(), authOf(s.Owner), booking.ID)
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Equal(types.BOOKING_CONTACTED, updated.Status)

	_, status, _ = MarkContacted(context.Background(), authOf(s.Owner), 9999)
	s.Equal(http.StatusNotFound, status)
}

func (s *ControllersSuite) ageBookings() {
	old := time.Now().UTC().Add(-48 * time.Hour)
	s.Require().Nil(s.DB.Model(&models.Booking{}).Where("1 = 1").UpdateColumn("updated_at", old).Error)
}

func (s *ControllersSuite) TestPurgeAbandonedBookings() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	paidRoom := s.createRoom(s.Owner, "Studio B", 9000, "Pune", types.ROOM_AVAILABLE)

	stale, _, err := s.initiate(s.Tenant, room.ID)
	s.Require().Nil(err)
	paid, _, err := s.initiate(s.Tenant, paidRoom.ID)
	s.Require().Nil(err)
	s.True(s.Gateway.pay(paid.OrderID))
	_, _, err = ConfirmPayment(context.Background(), paid.OrderID)
	s.Require().Nil(err)
	s.ageBookings()

	n, err := PurgeAbandonedBookings(context.Background(), 24*time.Hour)
	s.Require().Nil(err)
	s.Equal(int64(1), n)
	s.Equal(lib.ORDER_CANCELED, s.Gateway.statusOf(stale.OrderID))
	s.False(s.Gateway.pay(stale.OrderID))

	var remaining []models.Booking
	s.Require().Nil(s.DB.Find(&remaining).Error)
	s.Require().Len(remaining, 1)
	s.NotEqual(stale.BookingID, remaining[0].ID)
	s.Equal(types.PAYMENT_PAID, remaining[0].PaymentStatus)
}

func (s *ControllersSuite) TestPurgeKeepsCheckoutPaidLate() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	order, _, err := s.initiate(s.Tenant, room.ID)
	s.Require().Nil(err)
	s.True(s.Gateway.pay(order.OrderID))
	s.ageBookings()

	n, err := PurgeAbandonedBookings(context.Background(), 24*time.Hour)
	s.Require().Nil(err)
	s.Zero(n)

	result, _, err := ConfirmPayment(context.Background(), order.OrderID)
	s.Require().Nil(err)
	s.Equal(types.CONFIRM_CONFIRMED, result.Status)
	s.Equal(order.BookingID, result.BookingID)
	s.Equal(types.ROOM_IN_BOOKING_PROCESS, s.roomAvailability(room.ID))
}

func (s *ControllersSuite) TestPurgeWithoutGatewayKeepsCheckouts() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	_, _, err := s.initiate(s.Tenant, room.ID)
	s.Require().Nil(err)
	s.ageBookings()

	s.T().Setenv("STRIPE_SECRET_KEY", "")
	lib.NewPaymentGateway(nil)
	n, err := PurgeAbandonedBookings(context.Background(), 24*time.Hour)
	s.Require().Nil(err)
	s.Zero(n)

	var count int64
	s.Require().Nil(s.DB.Model(&models.Booking{}).Count(&count).Error)
	s.Equal(int64(1), count)
}
