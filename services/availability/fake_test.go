package availability

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"

	"roombooking/models"
	"roombooking/services/gateway"
	"roombooking/services/workflow"
)

// fakeServer is an in-memory availability API. Reservations made through it,
// or through take, show up in later loads.
type fakeServer struct {
	mu        sync.Mutex
	rooms     []models.RoomAvailability
	slots     []models.TimeSlot
	reserved  map[string]map[int]map[int]int // date -> room -> slot -> reservation id
	queries   []gateway.AvailabilityQuery
	gates     map[int]chan struct{} // room id -> gate held by the next detail fetch
	loadErr   error
	createErr error
	nextID    int
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		rooms:    []models.RoomAvailability{{ID: 7, Name: "Lagoon Suite"}, {ID: 9, Name: "Garden View"}},
		slots:    []models.TimeSlot{{Value: 1, Label: "09:00"}, {Value: 2, Label: "13:00"}},
		reserved: make(map[string]map[int]map[int]int),
		gates:    make(map[int]chan struct{}),
		nextID:   100,
	}
}

func (s *fakeServer) take(date string, room, slot int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.takeLocked(date, room, slot)
}

func (s *fakeServer) takeLocked(date string, room, slot int) int {
	if s.reserved[date] == nil {
		s.reserved[date] = make(map[int]map[int]int)
	}
	if s.reserved[date][room] == nil {
		s.reserved[date][room] = make(map[int]int)
	}
	s.nextID++
	s.reserved[date][room][slot] = s.nextID
	return s.nextID
}

func (s *fakeServer) failLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

func (s *fakeServer) failCreates(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createErr = err
}

func (s *fakeServer) hold(room int) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := make(chan struct{})
	s.gates[room] = g
	return g
}

func (s *fakeServer) Queries() []gateway.AvailabilityQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]gateway.AvailabilityQuery(nil), s.queries...)
}

func (s *fakeServer) FetchAvailability(_ context.Context, q gateway.AvailabilityQuery) (*models.AvailabilityPayload, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	gate := s.gates[q.RoomTypeID]
	delete(s.gates, q.RoomTypeID)
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	p := &models.AvailabilityPayload{Date: q.Date, TimeSlots: append([]models.TimeSlot(nil), s.slots...)}
	for _, rt := range s.rooms {
		if q.RoomTypeID != 0 && rt.ID != q.RoomTypeID {
			continue
		}
		slots := []int{}
		for slot, id := range s.reserved[q.Date][rt.ID] {
			if id != q.ExcludeReservationID {
				slots = append(slots, slot)
			}
		}
		sort.Ints(slots)
		p.RoomTypes = append(p.RoomTypes, models.RoomAvailability{ID: rt.ID, Name: rt.Name, ReservedSlots: slots})
	}
	return p, nil
}

func (s *fakeServer) CreateReservation(_ context.Context, in models.ReservationInput) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, taken := s.reserved[in.Date][in.RoomTypeID][in.Slot]; taken {
		return nil, conflict("That time slot is already reserved.")
	}
	id := s.takeLocked(in.Date, in.RoomTypeID, in.Slot)
	return &models.Reservation{ID: id, RoomTypeID: in.RoomTypeID, Date: in.Date, Slot: in.Slot}, nil
}

func (s *fakeServer) UpdateReservation(_ context.Context, id int, in models.ReservationInput) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if other, taken := s.reserved[in.Date][in.RoomTypeID][in.Slot]; taken && other != id {
		return nil, conflict("That time slot is already reserved.")
	}
	s.releaseLocked(id)
	if s.reserved[in.Date] == nil {
		s.reserved[in.Date] = make(map[int]map[int]int)
	}
	if s.reserved[in.Date][in.RoomTypeID] == nil {
		s.reserved[in.Date][in.RoomTypeID] = make(map[int]int)
	}
	s.reserved[in.Date][in.RoomTypeID][in.Slot] = id
	return &models.Reservation{ID: id, RoomTypeID: in.RoomTypeID, Date: in.Date, Slot: in.Slot}, nil
}

func (s *fakeServer) CancelReservation(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.releaseLocked(id) {
		return &gateway.RequestFailed{Status: http.StatusNotFound, Data: map[string]interface{}{"error": "Reservation not found."}}
	}
	return nil
}

func (s *fakeServer) releaseLocked(id int) bool {
	for _, rooms := range s.reserved {
		for _, slots := range rooms {
			for slot, rid := range slots {
				if rid == id {
					delete(slots, slot)
					return true
				}
			}
		}
	}
	return false
}

func conflict(msg string) error {
	return &gateway.RequestFailed{Status: http.StatusConflict, Data: map[string]interface{}{"error": msg}}
}

type toast struct {
	Message string
	Variant workflow.Variant
}

type fakeHost struct {
	mu        sync.Mutex
	answer    bool
	prompts   []workflow.ConfirmOptions
	toasts    []toast
	redirects []string
}

func (h *fakeHost) Confirm(_ context.Context, opts workflow.ConfirmOptions) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prompts = append(h.prompts, opts)
	return h.answer
}

func (h *fakeHost) Notify(msg string, v workflow.Variant) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.toasts = append(h.toasts, toast{msg, v})
}

func (h *fakeHost) Redirect(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.redirects = append(h.redirects, url)
}

func (h *fakeHost) Toasts() []toast {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]toast(nil), h.toasts...)
}

// screens records everything a board publishes.
type screens struct {
	mu  sync.Mutex
	all []models.Screen
}

func (r *screens) Render(s models.Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, s)
}

func (r *screens) All() []models.Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Screen(nil), r.all...)
}

func cellState(t *testing.T, s models.Screen, room, slot int) models.SlotState {
	t.Helper()
	for _, row := range s.Matrix.Rows {
		if row.RoomTypeID != room {
			continue
		}
		for _, c := range row.Cells {
			if c.Slot == slot {
				return c.State
			}
		}
	}
	t.Fatalf("no cell for room %d slot %d", room, slot)
	return 0
}
