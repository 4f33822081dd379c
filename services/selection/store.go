// Package selection holds the one (room, slot) pair tentatively chosen on a
// page. Every view reads it from here; subscribers are told about each change
// and are expected to redraw everything that shows it.
package selection

import (
	"sync"

	"roombooking/models"
)

// Listener receives the new selection, nil when cleared. Listeners run
// synchronously on the goroutine that changed the selection.
type Listener func(sel *models.Selection)

type Store struct {
	mu        sync.Mutex
	current   *models.Selection
	listeners []Listener
}

func NewStore() *Store {
	return &Store{}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
	idx := len(s.listeners) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.listeners) {
			s.listeners[idx] = nil
		}
	}
}

// Current returns a copy of the selection, or nil.
func (s *Store) Current() *models.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.current)
}

// Select toggles off when (roomTypeID, slot) is already selected, otherwise
// replaces whatever was selected, in any room.
func (s *Store) Select(roomTypeID, slot int) *models.Selection {
	next := &models.Selection{RoomTypeID: roomTypeID, Slot: slot}
	s.mu.Lock()
	if s.current.Equal(next) {
		next = nil
	}
	s.current = next
	s.mu.Unlock()
	s.notify(next)
	return clone(next)
}

// Clear drops the selection. Listeners are only told when something changed.
func (s *Store) Clear() {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()
	if had {
		s.notify(nil)
	}
}

// InvalidateIfReserved clears the selection when it points at a slot of
// roomTypeID that is now reserved. It reports whether it cleared.
func (s *Store) InvalidateIfReserved(roomTypeID int, reserved map[int]bool) bool {
	s.mu.Lock()
	stale := s.current != nil && s.current.RoomTypeID == roomTypeID && reserved[s.current.Slot]
	if stale {
		s.current = nil
	}
	s.mu.Unlock()
	if stale {
		s.notify(nil)
	}
	return stale
}

func (s *Store) notify(sel *models.Selection) {
	s.mu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		if l != nil {
			ls = append(ls, l)
		}
	}
	s.mu.Unlock()
	for _, l := range ls {
		l(clone(sel))
	}
}

func clone(sel *models.Selection) *models.Selection {
	if sel == nil {
		return nil
	}
	c := *sel
	return &c
}
