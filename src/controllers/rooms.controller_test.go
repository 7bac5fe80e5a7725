package controllers

import (
	"context"
	"net/http"
	"roomrent/src/models"
	"roomrent/src/types"

	"gorm.io/gorm"
)

func rent(v int64) *int64 {
	return &v
}

func (s *ControllersSuite) TestOwnerListsAndHidesRoom() {
	room, status, err := CreateRoom(context.Background(), authOf(s.Owner), &types.CreateRoomRequestBody{
		Title:     "Studio A",
		Rent:      8000,
		Address:   "Pune",
		Amenities: "wifi, AC",
	}, fileHeaders(s.T(), "room_images", "front.png", "notes.txt", "side.jpg"))
	s.Require().Nil(err)
	s.Equal(http.StatusCreated, status)
	s.Equal(types.ROOM_AVAILABLE, room.Availability)
	s.Equal("studio-a", room.Slug)
	s.Len(room.Images, 2)
	s.Equal(room.Images[0].Filename, room.ImageFilename)

	query := &types.SearchRoomsQuery{Location: "pune", MaxRent: rent(9000)}
	rooms, status, err := SearchRooms(context.Background(), query)
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Require().Len(rooms, 1)
	s.Equal(room.ID, rooms[0].ID)

	toggled, status, err := ToggleAvailability(context.Background(), authOf(s.Owner), room.ID)
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Equal(types.ROOM_NOT_AVAILABLE, toggled.Availability)

	rooms, _, err = SearchRooms(context.Background(), query)
	s.Require().Nil(err)
	s.Empty(rooms)
}

func (s *ControllersSuite) TestCreateRoomValidation() {
	body := &types.CreateRoomRequestBody{Title: "Studio A", Rent: 8000, Address: "Pune"}

	_, status, err := CreateRoom(context.Background(), authOf(s.Tenant), body, fileHeaders(s.T(), "room_images", "a.png"))
	s.Equal(http.StatusForbidden, status)
	s.ErrorIs(err, types.ErrAccessDenied)

	_, status, err = CreateRoom(context.Background(), authOf(s.Owner), body, fileHeaders(s.T(), "room_images", "a.exe"))
	s.Equal(http.StatusBadRequest, status)
	s.ErrorIs(err, types.ErrValidation)

	_, status, err = CreateRoom(context.Background(), authOf(s.Owner), &types.CreateRoomRequestBody{Title: " ", Rent: 8000, Address: "Pune"}, fileHeaders(s.T(), "room_images", "a.png"))
	s.Equal(http.StatusBadRequest, status)
	s.ErrorIs(err, types.ErrValidation)

	var n int64
	s.Require().Nil(s.DB.Model(&models.Room{}).Count(&n).Error)
	s.Zero(n)
}

func (s *ControllersSuite) TestSearchFilters() {
	s.createRoom(s.Owner, "Cheap", 4000, "Kothrud, Pune", types.ROOM_AVAILABLE)
	mid := s.createRoom(s.Owner, "Mid", 8000, "Baner, PUNE", types.ROOM_AVAILABLE)
	s.createRoom(s.Owner, "Locked", 8000, "Pune", types.ROOM_IN_BOOKING_PROCESS)
	s.createRoom(s.Owner, "Hidden", 8000, "Pune", types.ROOM_NOT_AVAILABLE)
	s.createRoom(s.Owner, "Far", 8000, "Mumbai", types.ROOM_AVAILABLE)
	s.Require().Nil(s.DB.Model(&models.Room{}).Where("id = ?", mid.ID).Update("amenities", "WiFi, Parking").Error)

	rooms, _, err := SearchRooms(context.Background(), &types.SearchRoomsQuery{})
	s.Require().Nil(err)
	s.Len(rooms, 3)
	for _, r := range rooms {
		s.Equal(types.ROOM_AVAILABLE, r.Availability)
	}

	rooms, _, err = SearchRooms(context.Background(), &types.SearchRoomsQuery{Location: "pune", MinRent: rent(5000)})
	s.Require().Nil(err)
	s.Require().Len(rooms, 1)
	s.Equal(mid.ID, rooms[0].ID)

	rooms, _, err = SearchRooms(context.Background(), &types.SearchRoomsQuery{Amenities: "wifi"})
	s.Require().Nil(err)
	s.Require().Len(rooms, 1)
	s.Equal(mid.ID, rooms[0].ID)

	_, status, err := SearchRooms(context.Background(), &types.SearchRoomsQuery{MinRent: rent(9000), MaxRent: rent(1000)})
	s.Equal(http.StatusBadRequest, status)
	s.ErrorIs(err, types.ErrValidation)
}

func (s *ControllersSuite) TestToggleByNonOwnerDoesNotMutate() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	other := s.createUser("owner2", types.ROLE_OWNER, "owner2@example.com")

	for _, u := range []*models.User{other, s.Tenant, s.Admin} {
		_, status, err := ToggleAvailability(context.Background(), authOf(u), room.ID)
		s.Equal(http.StatusForbidden, status)
		s.ErrorIs(err, types.ErrAccessDenied)
	}
	s.Equal(types.ROOM_AVAILABLE, s.roomAvailability(room.ID))

	_, status, err := ToggleAvailability(context.Background(), nil, room.ID)
	s.Equal(http.StatusUnauthorized, status)
	s.ErrorIs(err, types.ErrUnauthenticated)
}

func (s *ControllersSuite) TestToggleReleasesLockedRoom() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_IN_BOOKING_PROCESS)

	toggled, _, err := ToggleAvailability(context.Background(), authOf(s.Owner), room.ID)
	s.Require().Nil(err)
	s.Equal(types.ROOM_AVAILABLE, toggled.Availability)

	toggled, _, err = ToggleAvailability(context.Background(), authOf(s.Owner), room.ID)
	s.Require().Nil(err)
	s.Equal(types.ROOM_NOT_AVAILABLE, toggled.Availability)
}

func (s *ControllersSuite) TestToggleAfterConcurrentChange() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)

	// a payment locks the room between the toggle's read and its write
	locked := false
	s.Require().Nil(s.DB.Callback().Update().Before("gorm:update").Register("test:lock_room", func(tx *gorm.DB) {
		if locked || tx.Statement.Table != "rooms" {
			return
		}
		locked = true
		tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE rooms SET availability = ? WHERE id = ?", types.ROOM_IN_BOOKING_PROCESS, room.ID)
	}))

	_, status, err := ToggleAvailability(context.Background(), authOf(s.Owner), room.ID)
	s.True(locked)
	s.Equal(http.StatusConflict, status)
	s.ErrorIs(err, types.ErrConflict)
	s.Equal(types.ROOM_IN_BOOKING_PROCESS, s.roomAvailability(room.ID))
}

func (s *ControllersSuite) TestGetRoom() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	s.Require().Nil(s.DB.Create(&models.Image{Filename: "pending.png", RoomID: room.ID, Approved: false}).Error)

	detail, status, err := GetRoom(context.Background(), room.ID)
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Equal("owner1", detail.OwnerName)
	s.Require().Len(detail.Images, 1)
	s.Equal("cover.png", detail.Images[0].Filename)

	_, status, err = GetRoom(context.Background(), 9999)
	s.Equal(http.StatusNotFound, status)
	s.ErrorIs(err, types.ErrNotFound)
}

func (s *ControllersSuite) TestOwnerDashboard() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	other := s.createUser("owner2", types.ROLE_OWNER, "owner2@example.com")
	foreign := s.createRoom(other, "Studio B", 8000, "Pune", types.ROOM_AVAILABLE)

	c := contact()
	_, _, err := FreeBooking(context.Background(), authOf(s.Tenant), room.ID, &c)
	s.Require().Nil(err)
	c = contact()
	_, _, err = FreeBooking(context.Background(), authOf(s.Tenant), foreign.ID, &c)
	s.Require().Nil(err)

	dash, status, err := GetOwnerDashboard(context.Background(), authOf(s.Owner))
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Len(dash.Rooms, 1)
	s.Require().Len(dash.Bookings, 1)
	s.Equal(room.ID, dash.Bookings[0].RoomID)
	s.Equal(int64(1), dash.NewBookingCount)

	_, status, err = GetOwnerDashboard(context.Background(), authOf(s.Tenant))
	s.Equal(http.StatusForbidden, status)
	s.ErrorIs(err, types.ErrAccessDenied)
}

func (s *ControllersSuite) TestUploadImage() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	file := fileHeaders(s.T(), "file", "balcony.webp")[0]

	image, status, err := UploadImage(context.Background(), authOf(s.Owner), &types.UploadImageRequestBody{RoomID: room.ID, Caption: " Balcony "}, file)
	s.Require().Nil(err)
	s.Equal(http.StatusCreated, status)
	s.Equal("Balcony", image.Caption)
	s.Contains(image.Filename, "balcony.webp")

	other := s.createUser("owner2", types.ROLE_OWNER, "owner2@example.com")
	_, status, err = UploadImage(context.Background(), authOf(other), &types.UploadImageRequestBody{RoomID: room.ID}, file)
	s.Equal(http.StatusForbidden, status)
	s.ErrorIs(err, types.ErrAccessDenied)

	bad := fileHeaders(s.T(), "file", "script.sh")[0]
	_, status, err = UploadImage(context.Background(), authOf(s.Owner), &types.UploadImageRequestBody{RoomID: room.ID}, bad)
	s.Equal(http.StatusBadRequest, status)
	s.ErrorIs(err, types.ErrValidation)
}
