package availability

import (
	"context"
	"testing"
	"time"

	"roombooking/models"
	"roombooking/services/cache"
	"roombooking/services/render"
	"roombooking/services/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestForm(t *testing.T, server *fakeServer, host *fakeHost, reservationID int, initial models.ReservationInput) *Form {
	t.Helper()
	f := NewForm(FormOptions{
		Availability:  server,
		Reservations:  server,
		Cache:         cache.NewMemoryCache(),
		Notifier:      host,
		Confirmer:     host,
		Navigator:     host,
		Debounce:      20 * time.Millisecond,
		ReservationID: reservationID,
		Initial:       initial,
		Logger:        zap.NewNop(),
	})
	t.Cleanup(f.Close)
	return f
}

func waitLoaded(t *testing.T, f *Form) models.FormScreen {
	t.Helper()
	require.Eventually(t, func() bool {
		s := f.Screen()
		return !s.Busy && s.Status != "" && s.Status != StatusLoading
	}, time.Second, time.Millisecond)
	return f.Screen()
}

func TestFormAsksForRoomAndDateFirst(t *testing.T) {
	form := newTestForm(t, newFakeServer(), &fakeHost{answer: true}, 0, models.ReservationInput{})
	s := form.Screen()
	assert.True(t, s.Slots.Disabled)
	assert.Equal(t, render.PickFirstPlaceholder, s.Slots.Placeholder)
	assert.False(t, s.CanSubmit)
}

func TestFormListsOnlyAvailableSlots(t *testing.T) {
	server := newFakeServer()
	server.take(testDate, 7, 1)
	form := newTestForm(t, server, &fakeHost{answer: true}, 0, models.ReservationInput{})

	require.NoError(t, form.SetRoom(7))
	require.NoError(t, form.SetDate(testDate))
	s := waitLoaded(t, form)

	assert.Equal(t, []models.SlotOption{{Value: 2, Label: "13:00"}}, s.Slots.Options)
	assert.Equal(t, 2, s.Slots.Selected)
	assert.Equal(t, "1 of 2 slots available for the selected room type and date.", s.Slots.Help)
	assert.Equal(t, []models.SlotBadge{{Label: "Reserved · 09:00", Reserved: true}, {Label: "Available · 13:00"}}, s.Badges)
	assert.True(t, s.CanSubmit)

	assert.ErrorIs(t, form.SetSlot(1), ErrSlotReserved)
	assert.ErrorIs(t, form.SetSlot(8), ErrUnknownSlot)
}

func TestFormNoSlotsAvailable(t *testing.T) {
	server := newFakeServer()
	server.take(testDate, 7, 1)
	server.take(testDate, 7, 2)
	form := newTestForm(t, server, &fakeHost{answer: true}, 0, models.ReservationInput{RoomTypeID: 7, Date: testDate})

	form.Reload(context.Background(), false)
	s := form.Screen()
	assert.True(t, s.Slots.Disabled)
	assert.Equal(t, render.NoSlotsPlaceholder, s.Slots.Placeholder)
	assert.False(t, s.CanSubmit)
}

func TestFormCreateSubmit(t *testing.T) {
	server := newFakeServer()
	host := &fakeHost{answer: true}
	form := newTestForm(t, server, host, 0, models.ReservationInput{RoomTypeID: 7, Date: testDate})

	form.Reload(context.Background(), false)
	require.NoError(t, form.SetSlot(2))
	out := form.Submit(context.Background())

	require.NoError(t, out.Err)
	assert.Equal(t, workflow.Success, out.State)
	assert.Equal(t, "Reserve Lagoon Suite on 2024-06-01 at 13:00?", host.prompts[0].Body)
	s := form.Screen()
	assert.Equal(t, []models.SlotOption{{Value: 1, Label: "09:00"}}, s.Slots.Options, "the forced reload drops the reserved slot")
}

func TestFormEditExcludesOwnReservation(t *testing.T) {
	server := newFakeServer()
	id := server.take(testDate, 7, 2)
	host := &fakeHost{answer: true}
	form := newTestForm(t, server, host, id, models.ReservationInput{RoomTypeID: 7, Date: testDate, Slot: 2})

	form.Reload(context.Background(), false)
	form.Reload(context.Background(), false)

	qs := server.Queries()
	require.Len(t, qs, 2, "edit mode never reads the cache")
	assert.Equal(t, id, qs[0].ExcludeReservationID)

	s := form.Screen()
	assert.Equal(t, 2, s.Slots.Selected, "the reservation's own slot stays chosen")
	assert.Len(t, s.Slots.Options, 2)
}

func TestFormEditSubmitRedirects(t *testing.T) {
	server := newFakeServer()
	id := server.take(testDate, 7, 2)
	host := &fakeHost{answer: true}
	form := newTestForm(t, server, host, id, models.ReservationInput{RoomTypeID: 7, Date: testDate, Slot: 2})

	form.Reload(context.Background(), false)
	require.NoError(t, form.SetSlot(1))
	out := form.Submit(context.Background())

	assert.Equal(t, workflow.Success, out.State)
	assert.Equal(t, "Confirm changes", host.prompts[0].Title)
	assert.Equal(t, "Update reservation to Lagoon Suite on 2024-06-01 at 09:00?", host.prompts[0].Body)
	assert.Equal(t, []toast{{"Reservation updated successfully.", workflow.VariantSuccess}}, host.Toasts())
	assert.Equal(t, []string{"/my-reservations/"}, host.redirects)
}

func TestFormEditConflictReloadsSlots(t *testing.T) {
	server := newFakeServer()
	id := server.take(testDate, 7, 2)
	host := &fakeHost{answer: true}
	form := newTestForm(t, server, host, id, models.ReservationInput{RoomTypeID: 7, Date: testDate, Slot: 2})

	form.Reload(context.Background(), false)
	require.NoError(t, form.SetSlot(1))
	server.take(testDate, 7, 1)

	out := form.Submit(context.Background())

	assert.Equal(t, workflow.Conflict, out.State)
	assert.Equal(t, "That time slot is already reserved.", out.Message)
	s := form.Screen()
	assert.Equal(t, []models.SlotOption{{Value: 2, Label: "13:00"}}, s.Slots.Options)
	assert.Equal(t, 2, s.Slots.Selected)
	assert.Empty(t, host.redirects)
}

func TestFormKeepsPreviousSlotAcrossDates(t *testing.T) {
	server := newFakeServer()
	server.take("2024-06-02", 7, 1)
	form := newTestForm(t, server, &fakeHost{answer: true}, 0, models.ReservationInput{RoomTypeID: 7, Date: testDate})

	form.Reload(context.Background(), false)
	require.NoError(t, form.SetSlot(1))

	require.NoError(t, form.SetDate("2024-06-02"))
	s := waitLoaded(t, form)
	assert.Equal(t, "Updated for 2024-06-02", s.Status)
	assert.Equal(t, 2, s.Slots.Selected, "slot 1 is taken on the new date")
}
