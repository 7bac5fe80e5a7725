package controllers

import (
	"context"
	"net/http"
	"roomrent/src/models"
	"roomrent/src/types"
)

func (s *ControllersSuite) TestDeleteUser() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)
	c := contact()
	_, _, err := FreeBooking(context.Background(), authOf(s.Tenant), room.ID, &c)
	s.Require().Nil(err)

	status, err := DeleteUser(context.Background(), authOf(s.Admin), s.Admin.ID)
	s.Equal(http.StatusBadRequest, status)
	s.ErrorIs(err, types.ErrValidation)

	status, err = DeleteUser(context.Background(), authOf(s.Admin), s.Owner.ID)
	s.Equal(http.StatusBadRequest, status)
	s.ErrorIs(err, types.ErrValidation)

	status, err = DeleteUser(context.Background(), authOf(s.Admin), s.Tenant.ID)
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)

	var n int64
	s.Require().Nil(s.DB.Model(&models.Booking{}).Count(&n).Error)
	s.Zero(n)
	s.Require().Nil(s.DB.Model(&models.User{}).Where("id = ?", s.Tenant.ID).Count(&n).Error)
	s.Zero(n)

	status, err = DeleteUser(context.Background(), authOf(s.Admin), s.Tenant.ID)
	s.Equal(http.StatusNotFound, status)
	s.ErrorIs(err, types.ErrNotFound)
}

func (s *ControllersSuite) TestDeleteRoom() {
	room, _, err := CreateRoom(context.Background(), authOf(s.Owner), &types.CreateRoomRequestBody{
		Title:   "Studio A",
		Rent:    8000,
		Address: "Pune",
	}, fileHeaders(s.T(), "room_images", "front.png"))
	s.Require().Nil(err)
	c := contact()
	_, _, err = FreeBooking(context.Background(), authOf(s.Tenant), room.ID, &c)
	s.Require().Nil(err)

	status, err := DeleteRoom(context.Background(), room.ID)
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)

	for _, m := range []any{&models.Room{}, &models.Image{}, &models.Booking{}} {
		var n int64
		s.Require().Nil(s.DB.Model(m).Count(&n).Error)
		s.Zero(n)
	}

	status, err = DeleteRoom(context.Background(), room.ID)
	s.Equal(http.StatusNotFound, status)
	s.ErrorIs(err, types.ErrNotFound)
}

func (s *ControllersSuite) TestRoomApproval() {
	room := s.createRoom(s.Owner, "Studio A", 8000, "Pune", types.ROOM_AVAILABLE)

	status, err := SetRoomApproval(context.Background(), room.ID, false)
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	detail, _, err := GetRoom(context.Background(), room.ID)
	s.Require().Nil(err)
	s.Empty(detail.Images)

	dash, _, err := GetAdminDashboard(context.Background())
	s.Require().Nil(err)
	s.Require().Len(dash.Rooms, 1)
	s.Equal("owner1", dash.Rooms[0].OwnerName)
	s.Require().NotNil(dash.Rooms[0].IsApproved)
	s.False(*dash.Rooms[0].IsApproved)

	_, err = SetRoomApproval(context.Background(), room.ID, true)
	s.Require().Nil(err)
	detail, _, err = GetRoom(context.Background(), room.ID)
	s.Require().Nil(err)
	s.Len(detail.Images, 1)

	status, err = SetRoomApproval(context.Background(), 9999, true)
	s.Equal(http.StatusNotFound, status)
	s.ErrorIs(err, types.ErrNotFound)
}

func (s *ControllersSuite) TestAdminListings() {
	s.issue()

	dash, status, err := GetAdminDashboard(context.Background())
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Len(dash.Users, 3)
	s.Require().Len(dash.Tokens, 1)
	s.False(dash.Tokens[0].Expired)

	users, status, err := ListUsers(context.Background())
	s.Require().Nil(err)
	s.Equal(http.StatusOK, status)
	s.Len(users, 2)
	for _, u := range users {
		s.NotEqual(types.ROLE_OWNER, u.Role)
	}
}
