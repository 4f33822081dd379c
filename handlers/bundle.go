// File: handlers/bundle.go
package handlers

import (
	"time"

	reservationRepoPkg "roombooking/database/repository/reservation"
	userRepoPkg "roombooking/database/repository/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the simulated API's endpoint handlers into one struct.
type HandlerBundle struct {
	UserRepo        userRepoPkg.UserRepository
	ReservationRepo reservationRepoPkg.ReservationRepository

	// Session endpoints
	LoginHandler  gin.HandlerFunc
	LogoutHandler gin.HandlerFunc

	// Availability endpoints
	AvailabilityHandler gin.HandlerFunc

	// Reservation endpoints
	ListReservationsHandler  gin.HandlerFunc
	CreateReservationHandler gin.HandlerFunc
	UpdateReservationHandler gin.HandlerFunc
	CancelReservationHandler gin.HandlerFunc
}

func NewHandlerBundle(users userRepoPkg.UserRepository, reservations reservationRepoPkg.ReservationRepository, sessionTTL time.Duration) *HandlerBundle {
	sh := &SessionHandler{Users: users, TTL: sessionTTL}
	ah := &AvailabilityHandler{Reservations: reservations}
	rh := &ReservationHandler{Reservations: reservations}
	return &HandlerBundle{
		UserRepo:        users,
		ReservationRepo: reservations,

		LoginHandler:  sh.LoginHandler,
		LogoutHandler: sh.LogoutHandler,

		AvailabilityHandler: ah.GetAvailabilityHandler,

		ListReservationsHandler:  rh.ListReservationsHandler,
		CreateReservationHandler: rh.CreateReservationHandler,
		UpdateReservationHandler: rh.UpdateReservationHandler,
		CancelReservationHandler: rh.CancelReservationHandler,
	}
}
