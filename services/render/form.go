package render

import (
	"fmt"

	"roombooking/models"
)

const (
	NoSlotsPlaceholder    = "No slots available"
	PickFirstPlaceholder  = "Select room type and date first"
	LoadingPlaceholder    = "Loading…"
	LoadFailedPlaceholder = "Error loading slots"
)

// SlotOptions lists the available slots of roomTypeID for the form picker.
// previous stays chosen while it is still available; otherwise the first
// available slot is.
func SlotOptions(p *models.AvailabilityPayload, roomTypeID, previous int) models.SlotOptionsView {
	rt, _ := p.Room(roomTypeID)
	if p != nil && rt.ID == 0 && len(p.RoomTypes) > 0 {
		rt = p.RoomTypes[0]
	}
	reserved := rt.Reserved()

	view := models.SlotOptionsView{}
	if p != nil {
		available := len(p.TimeSlots) - len(reserved)
		view.Help = fmt.Sprintf("%d of %d slots available for the selected room type and date.", available, len(p.TimeSlots))
		for _, s := range p.TimeSlots {
			if !reserved[s.Value] {
				view.Options = append(view.Options, models.SlotOption{Value: s.Value, Label: s.Label})
			}
		}
	}
	if len(view.Options) == 0 {
		view.Disabled = true
		view.Placeholder = NoSlotsPlaceholder
		return view
	}

	view.Selected = view.Options[0].Value
	for _, o := range view.Options {
		if o.Value == previous {
			view.Selected = previous
			break
		}
	}
	return view
}

// PendingOptions is the disabled picker shown while nothing can be chosen.
func PendingOptions(placeholder, help string) models.SlotOptionsView {
	return models.SlotOptionsView{Disabled: true, Placeholder: placeholder, Help: help}
}

// Badges lists every slot of a room with its reserved flag.
func Badges(p *models.AvailabilityPayload, roomTypeID int) []models.SlotBadge {
	if p == nil {
		return nil
	}
	rt, _ := p.Room(roomTypeID)
	reserved := rt.Reserved()
	out := make([]models.SlotBadge, 0, len(p.TimeSlots))
	for _, s := range p.TimeSlots {
		b := models.SlotBadge{Reserved: reserved[s.Value]}
		if b.Reserved {
			b.Label = "Reserved · " + s.Label
		} else {
			b.Label = "Available · " + s.Label
		}
		out = append(out, b)
	}
	return out
}
