package reservationRepo

import (
	"errors"

	"roombooking/models"
)

var (
	ErrSlotTaken   = errors.New("slot already reserved")
	ErrNotFound    = errors.New("reservation not found")
	ErrForbidden   = errors.New("reservation belongs to another user")
	ErrPast        = errors.New("slot is in the past")
	ErrInvalidSlot = errors.New("invalid time slot")
	ErrUnknownRoom = errors.New("unknown room type")
	ErrInvalidDate = errors.New("invalid date")

	// ErrPastReservation refuses changes to a reservation whose slot has ended.
	ErrPastReservation = errors.New("reservation is in the past")
)

// ReservationRepository stores reservations. At most one reservation exists
// per (room type, date, slot).
type ReservationRepository interface {
	// RoomTypes lists active room types in display order.
	RoomTypes() []models.RoomType
	// TimeSlots lists the slots of every day in time order.
	TimeSlots() []models.TimeSlot
	// ReservedSlots maps each of roomTypeIDs to its reserved slots on date,
	// leaving out excludeID.
	ReservedSlots(date string, roomTypeIDs []int, excludeID int) map[int][]int
	Create(userID string, in models.ReservationInput) (*models.Reservation, error)
	Update(userID string, id int, in models.ReservationInput) (*models.Reservation, error)
	Cancel(userID string, id int) error
	GetByID(id int) (*models.Reservation, error)
	ListByUser(userID string) []models.Reservation
}
