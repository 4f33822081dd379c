package render

import (
	"testing"

	"roombooking/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func scenarioPayload(reserved ...int) *models.AvailabilityPayload {
	if reserved == nil {
		reserved = []int{}
	}
	return &models.AvailabilityPayload{
		Date:      "2024-06-01",
		TimeSlots: []models.TimeSlot{{Value: 1, Label: "09:00"}, {Value: 2, Label: "13:00"}},
		RoomTypes: []models.RoomAvailability{
			{ID: 7, Name: "Lagoon Suite", ReservedSlots: reserved},
			{ID: 9, Name: "Garden View", ReservedSlots: []int{1}},
		},
	}
}

func TestFilterIsCaseInsensitiveSubstring(t *testing.T) {
	p := scenarioPayload()

	got := FilterRooms(p.RoomTypes, "lagoon")
	require.Len(t, got, 1)
	assert.Equal(t, "Lagoon Suite", got[0].Name)

	assert.Len(t, FilterRooms(p.RoomTypes, ""), 2)
	assert.Len(t, FilterRooms(p.RoomTypes, "  VIEW "), 1)
}

func TestNoMatchRendersPlaceholder(t *testing.T) {
	p := scenarioPayload()

	m := Matrix(p, "zzz", nil)
	assert.Empty(t, m.Rows)
	assert.Equal(t, NoMatchPlaceholder, m.Placeholder)
	assert.Equal(t, []string{"09:00", "13:00"}, m.Header)

	c := Cards(p, "zzz", nil, false)
	assert.Empty(t, c.Cards)
	assert.Equal(t, NoMatchPlaceholder, c.Placeholder)
}

func TestSlotStatesFollowReservationsAndSelection(t *testing.T) {
	p := scenarioPayload()
	sel := &models.Selection{RoomTypeID: 7, Slot: 2}

	m := Matrix(p, "", sel)
	require.Len(t, m.Rows, 2)
	assert.Equal(t, models.SlotAvailable, m.Rows[0].Cells[0].State)
	assert.Equal(t, models.SlotSelected, m.Rows[0].Cells[1].State)
	assert.Equal(t, models.SlotReserved, m.Rows[1].Cells[0].State)
	assert.False(t, m.Rows[1].Cells[0].State.Interactive())
	// same slot value in another room is not selected
	assert.Equal(t, models.SlotAvailable, m.Rows[1].Cells[1].State)
}

func TestRenderIsIdempotent(t *testing.T) {
	p := scenarioPayload(1)
	sel := &models.Selection{RoomTypeID: 7, Slot: 2}

	assert.Equal(t, Matrix(p, "a", sel), Matrix(p, "a", sel))
	assert.Equal(t, Cards(p, "a", sel, true), Cards(p, "a", sel, true))
	screen := models.Screen{Date: p.Date, Matrix: Matrix(p, "", sel), Cards: Cards(p, "", sel, false), Summary: Summary(p, sel)}
	assert.Equal(t, Text(screen), Text(screen))
}

func TestCardBadgesAndReserveButton(t *testing.T) {
	p := scenarioPayload()
	p.RoomTypes = append(p.RoomTypes, models.RoomAvailability{ID: 11, Name: "Loft", ReservedSlots: []int{1, 2}})
	sel := &models.Selection{RoomTypeID: 7, Slot: 2}

	cards := Cards(p, "", sel, false).Cards
	require.Len(t, cards, 3)

	assert.Equal(t, models.BadgeAvailable, cards[0].Badge)
	assert.Equal(t, "0/2 reserved", cards[0].BadgeTitle)
	assert.Equal(t, "Selected: 13:00", cards[0].SelectionText)
	assert.Equal(t, "Reserve 13:00", cards[0].ReserveText)
	assert.True(t, cards[0].ReserveEnabled)

	assert.Equal(t, models.BadgePartial, cards[1].Badge)
	assert.Equal(t, "1/2 reserved", cards[1].BadgeTitle)
	assert.Equal(t, NoSelectionText, cards[1].SelectionText)
	assert.False(t, cards[1].ReserveEnabled)

	assert.Equal(t, models.BadgeFull, cards[2].Badge)
	assert.Equal(t, "Fully Booked", cards[2].BadgeText)

	busy := Cards(p, "", sel, true).Cards
	assert.False(t, busy[0].ReserveEnabled)
}

func TestSummaryOnlyPayloadUsesCounts(t *testing.T) {
	p := &models.AvailabilityPayload{
		Date:       "2024-06-01",
		TimeSlots:  []models.TimeSlot{{Value: 1, Label: "09:00"}, {Value: 2, Label: "13:00"}},
		RoomTypes:  []models.RoomAvailability{{ID: 7, Name: "Lagoon Suite", ReservedCount: intPtr(1)}},
		TotalSlots: intPtr(2),
	}
	card := Cards(p, "", nil, false).Cards[0]
	assert.Equal(t, models.BadgePartial, card.Badge)
	assert.Nil(t, card.Slots)

	empty := &models.AvailabilityPayload{Date: "2024-06-01", RoomTypes: []models.RoomAvailability{{ID: 7, Name: "Lagoon Suite"}}}
	assert.Equal(t, models.BadgeUnknown, Cards(empty, "", nil, false).Cards[0].Badge)
}

func TestMissingReservedListCountsAsAvailable(t *testing.T) {
	p := &models.AvailabilityPayload{
		Date:      "2024-06-01",
		TimeSlots: []models.TimeSlot{{Value: 1, Label: "09:00"}, {Value: 2, Label: "13:00"}},
		RoomTypes: []models.RoomAvailability{{ID: 7, Name: "Lagoon Suite"}},
	}
	n, known := p.RoomTypes[0].Counts()
	assert.True(t, known)
	assert.Equal(t, 0, n)

	card := Cards(p, "", nil, false).Cards[0]
	assert.Equal(t, models.BadgeAvailable, card.Badge)
	assert.Equal(t, "Fully Available", card.BadgeText)
	require.Len(t, card.Slots, 2)
	for _, cell := range card.Slots {
		assert.Equal(t, models.SlotAvailable, cell.State)
	}
}

func TestSummaryText(t *testing.T) {
	p := scenarioPayload()
	assert.Equal(t, "Selected: Lagoon Suite · 13:00", Summary(p, &models.Selection{RoomTypeID: 7, Slot: 2}))
	assert.Equal(t, NoSelectionText, Summary(p, nil))
	assert.Equal(t, NoSelectionText, Summary(p, &models.Selection{RoomTypeID: 99, Slot: 2}))
}

func TestSlotOptions(t *testing.T) {
	p := &models.AvailabilityPayload{
		Date:      "2024-06-01",
		TimeSlots: []models.TimeSlot{{Value: 9, Label: "09:00–10:00"}, {Value: 10, Label: "10:00–11:00"}, {Value: 11, Label: "11:00–12:00"}},
		RoomTypes: []models.RoomAvailability{{ID: 7, Name: "Lagoon Suite", ReservedSlots: []int{9}}},
	}

	v := SlotOptions(p, 7, 11)
	assert.Equal(t, []models.SlotOption{{Value: 10, Label: "10:00–11:00"}, {Value: 11, Label: "11:00–12:00"}}, v.Options)
	assert.Equal(t, 11, v.Selected)
	assert.False(t, v.Disabled)
	assert.Equal(t, "2 of 3 slots available for the selected room type and date.", v.Help)

	// previous choice got reserved: fall back to first available
	assert.Equal(t, 10, SlotOptions(p, 7, 9).Selected)

	full := *p
	full.RoomTypes = []models.RoomAvailability{{ID: 7, Name: "Lagoon Suite", ReservedSlots: []int{9, 10, 11}}}
	none := SlotOptions(&full, 7, 10)
	assert.True(t, none.Disabled)
	assert.Equal(t, NoSlotsPlaceholder, none.Placeholder)
	assert.Zero(t, none.Selected)
}

func TestBadges(t *testing.T) {
	p := scenarioPayload(2)
	assert.Equal(t, []models.SlotBadge{
		{Label: "Available · 09:00"},
		{Label: "Reserved · 13:00", Reserved: true},
	}, Badges(p, 7))
}
