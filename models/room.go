package models

import "fmt"

// RoomType is a bookable room category.
type RoomType struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

// HourlySlots returns one-hour slots valued by their starting hour, from
// first up to and including last.
func HourlySlots(first, last int) []TimeSlot {
	slots := make([]TimeSlot, 0, last-first+1)
	for h := first; h <= last; h++ {
		slots = append(slots, TimeSlot{Value: h, Label: fmt.Sprintf("%02d:00–%02d:00", h, h+1)})
	}
	return slots
}
