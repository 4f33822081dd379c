package selection

import (
	"testing"

	"roombooking/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectToggleAndReplace(t *testing.T) {
	s := NewStore()

	got := s.Select(7, 2)
	require.NotNil(t, got)
	assert.Equal(t, models.Selection{RoomTypeID: 7, Slot: 2}, *s.Current())

	// another room replaces it
	s.Select(9, 1)
	assert.Equal(t, models.Selection{RoomTypeID: 9, Slot: 1}, *s.Current())

	// same pair toggles off
	assert.Nil(t, s.Select(9, 1))
	assert.Nil(t, s.Current())
}

func TestAtMostOneSelectionAndViewsAgree(t *testing.T) {
	s := NewStore()
	var viewA, viewB *models.Selection
	s.Subscribe(func(sel *models.Selection) { viewA = sel })
	s.Subscribe(func(sel *models.Selection) { viewB = sel })

	steps := [][2]int{{7, 1}, {7, 2}, {9, 2}, {9, 2}, {7, 1}, {7, 1}, {3, 4}}
	for _, st := range steps {
		s.Select(st[0], st[1])
		assert.True(t, viewA.Equal(s.Current()))
		assert.True(t, viewB.Equal(s.Current()))
	}
	assert.Equal(t, models.Selection{RoomTypeID: 3, Slot: 4}, *s.Current())
}

func TestClearNotifiesOnlyOnChange(t *testing.T) {
	s := NewStore()
	calls := 0
	s.Subscribe(func(*models.Selection) { calls++ })

	s.Clear()
	assert.Zero(t, calls)
	s.Select(7, 2)
	s.Clear()
	assert.Equal(t, 2, calls)
	assert.Nil(t, s.Current())
}

func TestInvalidateIfReserved(t *testing.T) {
	s := NewStore()
	s.Select(7, 2)

	assert.False(t, s.InvalidateIfReserved(9, map[int]bool{2: true}), "other room")
	assert.False(t, s.InvalidateIfReserved(7, map[int]bool{1: true}), "other slot")
	assert.NotNil(t, s.Current())

	assert.True(t, s.InvalidateIfReserved(7, map[int]bool{2: true}))
	assert.Nil(t, s.Current())
}

func TestUnsubscribe(t *testing.T) {
	s := NewStore()
	calls := 0
	stop := s.Subscribe(func(*models.Selection) { calls++ })
	s.Select(7, 2)
	stop()
	s.Select(7, 1)
	assert.Equal(t, 1, calls)
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Select(7, 2)
	c := s.Current()
	c.Slot = 99
	assert.Equal(t, 2, s.Current().Slot)
}
