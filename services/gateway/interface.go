package gateway

import (
	"context"
	"net/http"

	"roombooking/models"
)

// Gateway is the single path to the availability API. It attaches the
// anti-forgery token on unsafe methods and normalizes responses.
type Gateway interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// AvailabilityAPI is what the load paths need.
type AvailabilityAPI interface {
	FetchAvailability(ctx context.Context, q AvailabilityQuery) (*models.AvailabilityPayload, error)
}

// ReservationAPI is what the reservation workflow needs.
type ReservationAPI interface {
	CreateReservation(ctx context.Context, in models.ReservationInput) (*models.Reservation, error)
	UpdateReservation(ctx context.Context, reservationID int, in models.ReservationInput) (*models.Reservation, error)
	CancelReservation(ctx context.Context, reservationID int) error
}

// ReservationLister lists the signed-in user's reservations.
type ReservationLister interface {
	ListReservations(ctx context.Context) ([]models.Reservation, error)
}

// Request mirrors a fetch call: Body, when non-nil, is sent as JSON.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   interface{}
}
