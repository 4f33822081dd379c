package render

import (
	"fmt"

	"roombooking/models"
)

// Cards renders one card per room matching filter.
func Cards(p *models.AvailabilityPayload, filter string, sel *models.Selection, busy bool) models.CardsView {
	if p == nil {
		return models.CardsView{Placeholder: NoDataPlaceholder}
	}
	rooms := FilterRooms(p.RoomTypes, filter)
	if len(rooms) == 0 {
		return models.CardsView{Placeholder: NoMatchPlaceholder}
	}
	view := models.CardsView{Cards: make([]models.RoomCard, 0, len(rooms))}
	for _, rt := range rooms {
		view.Cards = append(view.Cards, Card(p, rt, sel, busy))
	}
	return view
}

// Card renders a single room. The reserve action is only enabled on the card
// holding the selection, and never while busy.
func Card(p *models.AvailabilityPayload, rt models.RoomAvailability, sel *models.Selection, busy bool) models.RoomCard {
	card := models.RoomCard{
		RoomTypeID:    rt.ID,
		Name:          rt.Name,
		Status:        "Updated for " + p.Date,
		Slots:         slotCells(p, rt, sel),
		SelectionText: NoSelectionText,
		ReserveText:   "Reserve",
	}
	reserved, known := rt.Counts()
	card.Badge, card.BadgeText, card.BadgeTitle = badge(reserved, p.Total(), known)

	if sel != nil && sel.RoomTypeID == rt.ID {
		if label, ok := p.SlotLabel(sel.Slot); ok {
			card.SelectionText = "Selected: " + label
			card.ReserveText = "Reserve " + label
			card.ReserveEnabled = !busy
		}
	}
	return card
}

func badge(reserved, total int, known bool) (models.BadgeKind, string, string) {
	switch {
	case !known || total <= 0:
		return models.BadgeUnknown, "—", "Availability unknown"
	case reserved == 0:
		return models.BadgeAvailable, "Fully Available", fmt.Sprintf("0/%d reserved", total)
	case reserved >= total:
		return models.BadgeFull, "Fully Booked", fmt.Sprintf("%d/%d reserved", total, total)
	default:
		return models.BadgePartial, "Partially Booked", fmt.Sprintf("%d/%d reserved", reserved, total)
	}
}
