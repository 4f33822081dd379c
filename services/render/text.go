package render

import (
	"fmt"
	"strings"

	"roombooking/models"
)

var cellGlyph = map[models.SlotState]string{
	models.SlotAvailable: "[ ]",
	models.SlotReserved:  "[x]",
	models.SlotSelected:  "[*]",
}

// Text renders a board screen for a terminal.
func Text(s models.Screen) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s  Filter: %q  Status: %s", s.Date, s.Filter, s.Status)
	if s.Busy {
		b.WriteString("  (busy)")
	}
	b.WriteString("\n")

	if s.Matrix.Placeholder != "" && len(s.Matrix.Header) == 0 {
		b.WriteString(s.Matrix.Placeholder + "\n")
	} else {
		fmt.Fprintf(&b, "%-20s", "Room")
		for _, h := range s.Matrix.Header {
			fmt.Fprintf(&b, " %-12s", h)
		}
		b.WriteString("\n")
		if s.Matrix.Placeholder != "" {
			b.WriteString(s.Matrix.Placeholder + "\n")
		}
		for _, row := range s.Matrix.Rows {
			fmt.Fprintf(&b, "%-20s", fmt.Sprintf("%s (%d)", row.RoomName, row.RoomTypeID))
			for _, c := range row.Cells {
				fmt.Fprintf(&b, " %-12s", fmt.Sprintf("%s %d", cellGlyph[c.State], c.Slot))
			}
			b.WriteString("\n")
		}
	}

	if s.Cards.Placeholder != "" {
		b.WriteString(s.Cards.Placeholder + "\n")
	}
	for _, c := range s.Cards.Cards {
		fmt.Fprintf(&b, "- %s: %s (%s) | %s | %s\n", c.Name, c.BadgeText, c.BadgeTitle, c.SelectionText, reserveText(c))
	}
	if s.Focus != nil {
		fmt.Fprintf(&b, "Room %s: %s\n", s.Focus.Name, s.Focus.Status)
		for _, c := range s.Focus.Slots {
			fmt.Fprintf(&b, "  %s %d %s\n", cellGlyph[c.State], c.Slot, c.Label)
		}
	}
	b.WriteString(s.Summary + "\n")
	return b.String()
}

// FormText renders a reservation form screen for a terminal.
func FormText(s models.FormScreen) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Room: %d  Date: %s  Status: %s\n", s.RoomTypeID, s.Date, s.Status)
	if s.Slots.Placeholder != "" {
		fmt.Fprintf(&b, "Slots: %s\n", s.Slots.Placeholder)
	}
	for _, o := range s.Slots.Options {
		mark := " "
		if o.Value == s.Slots.Selected {
			mark = ">"
		}
		fmt.Fprintf(&b, " %s %d %s\n", mark, o.Value, o.Label)
	}
	for _, badge := range s.Badges {
		b.WriteString("  " + badge.Label + "\n")
	}
	if s.Slots.Help != "" {
		b.WriteString(s.Slots.Help + "\n")
	}
	return b.String()
}

func reserveText(c models.RoomCard) string {
	if c.ReserveEnabled {
		return c.ReserveText
	}
	return c.ReserveText + " (disabled)"
}
