package routes

import (
	"context"
	"sync"
	"testing"
	"time"

	"roombooking/models"
	"roombooking/services/availability"
	"roombooking/services/cache"
	"roombooking/services/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type host struct {
	mu     sync.Mutex
	toasts []string
}

func (h *host) Notify(msg string, _ workflow.Variant) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.toasts = append(h.toasts, msg)
}

func (h *host) Confirm(context.Context, workflow.ConfirmOptions) bool { return true }

func (h *host) Redirect(string) {}

func (h *host) last() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.toasts) == 0 {
		return ""
	}
	return h.toasts[len(h.toasts)-1]
}

func cellState(s models.Screen, room, slot int) (models.SlotState, bool) {
	for _, row := range s.Matrix.Rows {
		if row.RoomTypeID != room {
			continue
		}
		for _, c := range row.Cells {
			if c.Slot == slot {
				return c.State, true
			}
		}
	}
	return 0, false
}

func openBoard(t *testing.T, sim *simulator, user string) (*availability.Board, *host) {
	t.Helper()
	g := sim.login(t, user)
	h := &host{}
	b := availability.NewBoard(availability.BoardOptions{
		Availability: g,
		Reservations: g,
		Cache:        cache.NewMemoryCache(),
		Notifier:     h,
		Confirmer:    h,
		Navigator:    h,
		Debounce:     10 * time.Millisecond,
		Logger:       zap.NewNop(),
	})
	t.Cleanup(b.Close)
	require.NoError(t, b.SetDate(futureDate))
	require.Eventually(t, func() bool {
		return b.Screen().Status == "Updated for "+futureDate
	}, 2*time.Second, 5*time.Millisecond)
	return b, h
}

func TestBoardConvergesAfterLostRace(t *testing.T) {
	sim := newSimulator(t, Options{})
	board, h := openBoard(t, sim, "alice")
	bob := sim.login(t, "bob")

	require.NoError(t, board.Select(1, 10))
	_, err := bob.CreateReservation(context.Background(), models.ReservationInput{RoomTypeID: 1, Date: futureDate, Slot: 10})
	require.NoError(t, err)

	state, _ := cellState(board.Screen(), 1, 10)
	assert.Equal(t, models.SlotSelected, state)

	out := board.Reserve(context.Background())
	assert.Equal(t, workflow.Conflict, out.State)
	assert.Equal(t, "That time slot is already reserved.", h.last())

	state, ok := cellState(board.Screen(), 1, 10)
	require.True(t, ok)
	assert.Equal(t, models.SlotReserved, state)
	assert.False(t, board.Busy())
}

func TestBoardReserveThenCancel(t *testing.T) {
	sim := newSimulator(t, Options{})
	board, h := openBoard(t, sim, "alice")

	require.NoError(t, board.Select(2, 13))
	out := board.Reserve(context.Background())
	require.Equal(t, workflow.Success, out.State)
	require.NotNil(t, out.Reservation)
	assert.Equal(t, "Reservation created successfully.", h.last())

	state, _ := cellState(board.Screen(), 2, 13)
	assert.Equal(t, models.SlotReserved, state)

	out = board.Cancel(context.Background(), *out.Reservation)
	require.Equal(t, workflow.Success, out.State)
	assert.Equal(t, "Reservation cancelled.", h.last())
	state, _ = cellState(board.Screen(), 2, 13)
	assert.Equal(t, models.SlotAvailable, state)
}
