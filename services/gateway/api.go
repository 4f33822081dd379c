package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"roombooking/models"
)

// AvailabilityQuery maps onto GET /api/availability/.
type AvailabilityQuery struct {
	Date                 string
	RoomTypeID           int  // 0 means every room type
	Summary              bool // counts only, no per-slot detail
	ExcludeReservationID int  // reservation being edited, 0 for none
}

func (q AvailabilityQuery) Path() string {
	v := url.Values{}
	v.Set("date", q.Date)
	if q.RoomTypeID > 0 {
		v.Set("room_type_id", strconv.Itoa(q.RoomTypeID))
	}
	if q.Summary {
		v.Set("summary", "1")
	}
	if q.ExcludeReservationID > 0 {
		v.Set("exclude_reservation_id", strconv.Itoa(q.ExcludeReservationID))
	}
	return "/api/availability/?" + v.Encode()
}

func (g *DefaultGateway) FetchAvailability(ctx context.Context, q AvailabilityQuery) (*models.AvailabilityPayload, error) {
	resp, err := g.Do(ctx, http.MethodGet, q.Path(), nil)
	if err != nil {
		return nil, err
	}
	var payload models.AvailabilityPayload
	if err := resp.Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (g *DefaultGateway) CreateReservation(ctx context.Context, in models.ReservationInput) (*models.Reservation, error) {
	resp, err := g.Do(ctx, http.MethodPost, "/api/reservations/", in)
	if err != nil {
		return nil, err
	}
	return decodeReservation(resp)
}

func (g *DefaultGateway) UpdateReservation(ctx context.Context, reservationID int, in models.ReservationInput) (*models.Reservation, error) {
	resp, err := g.Do(ctx, http.MethodPost, fmt.Sprintf("/api/reservations/%d/update/", reservationID), in)
	if err != nil {
		return nil, err
	}
	return decodeReservation(resp)
}

func (g *DefaultGateway) CancelReservation(ctx context.Context, reservationID int) error {
	_, err := g.Do(ctx, http.MethodPost, fmt.Sprintf("/api/reservations/%d/cancel/", reservationID), nil)
	return err
}

// ListReservations returns the signed-in user's reservations.
func (g *DefaultGateway) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	resp, err := g.Do(ctx, http.MethodGet, "/api/reservations/", nil)
	if err != nil {
		return nil, err
	}
	var out []models.Reservation
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login opens a session on the API; the jar keeps the session and csrf cookies.
func (g *DefaultGateway) Login(ctx context.Context, username, password string) error {
	_, err := g.Do(ctx, http.MethodPost, "/api/session/", map[string]string{
		"username": username,
		"password": password,
	})
	return err
}

// decodeReservation tolerates bodiless success responses.
func decodeReservation(resp *Response) (*models.Reservation, error) {
	if !resp.IsJSON || len(resp.Raw) == 0 {
		return nil, nil
	}
	var r models.Reservation
	if err := resp.Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}
