// Package render turns availability payloads into view descriptions. Every
// function is pure: the same payload, filter and selection always produce the
// same view, so callers may redraw from scratch on any change.
package render

import (
	"strings"

	"roombooking/models"
)

const (
	NoMatchPlaceholder = "No matching room types."
	NoDataPlaceholder  = "No availability loaded."
	NoSelectionText    = "No slot selected"
)

// FilterRooms keeps rooms whose name contains filter, ignoring case.
// Server order is preserved.
func FilterRooms(rooms []models.RoomAvailability, filter string) []models.RoomAvailability {
	q := strings.ToLower(strings.TrimSpace(filter))
	out := make([]models.RoomAvailability, 0, len(rooms))
	for _, rt := range rooms {
		if q == "" || strings.Contains(strings.ToLower(rt.Name), q) {
			out = append(out, rt)
		}
	}
	return out
}

// SlotStateFor derives a cell's state from reservation data and the selection only.
func SlotStateFor(reserved map[int]bool, roomTypeID, slot int, sel *models.Selection) models.SlotState {
	if reserved[slot] {
		return models.SlotReserved
	}
	if sel != nil && sel.RoomTypeID == roomTypeID && sel.Slot == slot {
		return models.SlotSelected
	}
	return models.SlotAvailable
}

func slotCells(p *models.AvailabilityPayload, rt models.RoomAvailability, sel *models.Selection) []models.SlotCell {
	if !rt.HasSlotDetail() {
		return nil
	}
	reserved := rt.Reserved()
	cells := make([]models.SlotCell, 0, len(p.TimeSlots))
	for _, s := range p.TimeSlots {
		cells = append(cells, models.SlotCell{
			RoomTypeID: rt.ID,
			Slot:       s.Value,
			Label:      s.Label,
			State:      SlotStateFor(reserved, rt.ID, s.Value, sel),
		})
	}
	return cells
}

// Summary is the one-line "what is selected" text shared by every view.
func Summary(p *models.AvailabilityPayload, sel *models.Selection) string {
	if sel == nil {
		return NoSelectionText
	}
	rt, ok := p.Room(sel.RoomTypeID)
	if !ok {
		return NoSelectionText
	}
	label, ok := p.SlotLabel(sel.Slot)
	if !ok {
		return NoSelectionText
	}
	return "Selected: " + rt.Name + " · " + label
}
