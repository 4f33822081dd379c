package render

import "roombooking/models"

// Matrix renders the rooms-by-slots grid.
func Matrix(p *models.AvailabilityPayload, filter string, sel *models.Selection) models.MatrixView {
	if p == nil {
		return models.MatrixView{Placeholder: NoDataPlaceholder}
	}
	view := models.MatrixView{Header: make([]string, 0, len(p.TimeSlots))}
	for _, s := range p.TimeSlots {
		view.Header = append(view.Header, s.Label)
	}

	rooms := FilterRooms(p.RoomTypes, filter)
	if len(rooms) == 0 {
		view.Placeholder = NoMatchPlaceholder
		return view
	}
	for _, rt := range rooms {
		view.Rows = append(view.Rows, models.MatrixRow{
			RoomTypeID: rt.ID,
			RoomName:   rt.Name,
			Cells:      slotCells(p, rt, sel),
		})
	}
	return view
}
