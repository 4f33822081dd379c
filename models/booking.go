package models

import "time"

// ReservationInput is the body of the create and update endpoints.
type ReservationInput struct {
	RoomTypeID int    `json:"room_type_id"`
	Date       string `json:"date"`
	Slot       int    `json:"slot"`
}

// Reservation is what the API returns for a created or updated reservation.
type Reservation struct {
	ID         int       `json:"id"`
	RoomTypeID int       `json:"room_type_id"`
	RoomName   string    `json:"room_name,omitempty"`
	Date       string    `json:"date"`
	Slot       int       `json:"slot"`
	SlotLabel  string    `json:"slot_label,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Selection is the tentatively chosen (room, slot) pair.
type Selection struct {
	RoomTypeID int
	Slot       int
}

// Equal treats two nil selections as equal.
func (s *Selection) Equal(o *Selection) bool {
	if s == nil || o == nil {
		return s == nil && o == nil
	}
	return s.RoomTypeID == o.RoomTypeID && s.Slot == o.Slot
}
