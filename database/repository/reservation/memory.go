// File: database/repository/reservation/memory.go
package reservationRepo

import (
	"sort"
	"sync"
	"time"

	"roombooking/models"
)

const dateLayout = "2006-01-02"

type slotKey struct {
	roomTypeID int
	date       string
	slot       int
}

// MemoryReservationRepo keeps everything in process memory. The slot index
// plays the part of a unique constraint on (room type, date, slot).
type MemoryReservationRepo struct {
	// Now is the clock used to refuse past slots.
	Now      func() time.Time
	Location *time.Location

	mu     sync.RWMutex
	rooms  []models.RoomType
	slots  []models.TimeSlot
	byID   map[int]*models.Reservation
	bySlot map[slotKey]int
	nextID int
}

func NewMemoryReservationRepo(rooms []models.RoomType, slots []models.TimeSlot) *MemoryReservationRepo {
	sorted := append([]models.RoomType(nil), rooms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DisplayOrder != sorted[j].DisplayOrder {
			return sorted[i].DisplayOrder < sorted[j].DisplayOrder
		}
		return sorted[i].Name < sorted[j].Name
	})
	return &MemoryReservationRepo{
		Now:      time.Now,
		Location: time.Local,
		rooms:    sorted,
		slots:    append([]models.TimeSlot(nil), slots...),
		byID:     make(map[int]*models.Reservation),
		bySlot:   make(map[slotKey]int),
	}
}

// SeedRoomTypes is the default catalogue.
func SeedRoomTypes() []models.RoomType {
	return []models.RoomType{
		{ID: 1, Name: "Lecture Hall", DisplayOrder: 1, IsActive: true},
		{ID: 2, Name: "Lab", DisplayOrder: 2, IsActive: true},
		{ID: 3, Name: "Seminar Room", DisplayOrder: 3, IsActive: true},
		{ID: 4, Name: "Conference Room", DisplayOrder: 4, IsActive: true},
	}
}

func (r *MemoryReservationRepo) RoomTypes() []models.RoomType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.RoomType, 0, len(r.rooms))
	for _, rt := range r.rooms {
		if rt.IsActive {
			out = append(out, rt)
		}
	}
	return out
}

func (r *MemoryReservationRepo) TimeSlots() []models.TimeSlot {
	return append([]models.TimeSlot(nil), r.slots...)
}

func (r *MemoryReservationRepo) ReservedSlots(date string, roomTypeIDs []int, excludeID int) map[int][]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int][]int, len(roomTypeIDs))
	for _, id := range roomTypeIDs {
		reserved := []int{}
		for _, s := range r.slots {
			rid, ok := r.bySlot[slotKey{id, date, s.Value}]
			if ok && rid != excludeID {
				reserved = append(reserved, s.Value)
			}
		}
		out[id] = reserved
	}
	return out
}

func (r *MemoryReservationRepo) Create(userID string, in models.ReservationInput) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.validate(in); err != nil {
		return nil, err
	}
	key := slotKey{in.RoomTypeID, in.Date, in.Slot}
	if _, taken := r.bySlot[key]; taken {
		return nil, ErrSlotTaken
	}
	r.nextID++
	now := r.Now()
	res := &models.Reservation{
		ID:         r.nextID,
		RoomTypeID: in.RoomTypeID,
		Date:       in.Date,
		Slot:       in.Slot,
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.byID[res.ID] = res
	r.bySlot[key] = res.ID
	return r.describe(res), nil
}

func (r *MemoryReservationRepo) Update(userID string, id int, in models.ReservationInput) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, err := r.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if r.ended(res.Date, res.Slot) {
		return nil, ErrPastReservation
	}
	if err := r.validate(in); err != nil {
		return nil, err
	}
	key := slotKey{in.RoomTypeID, in.Date, in.Slot}
	if other, taken := r.bySlot[key]; taken && other != id {
		return nil, ErrSlotTaken
	}
	delete(r.bySlot, slotKey{res.RoomTypeID, res.Date, res.Slot})
	res.RoomTypeID, res.Date, res.Slot = in.RoomTypeID, in.Date, in.Slot
	res.UpdatedAt = r.Now()
	r.bySlot[key] = id
	return r.describe(res), nil
}

func (r *MemoryReservationRepo) Cancel(userID string, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, err := r.owned(userID, id)
	if err != nil {
		return err
	}
	if r.ended(res.Date, res.Slot) {
		return ErrPastReservation
	}
	delete(r.bySlot, slotKey{res.RoomTypeID, res.Date, res.Slot})
	delete(r.byID, id)
	return nil
}

func (r *MemoryReservationRepo) GetByID(id int) (*models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.describe(res), nil
}

// ListByUser returns the user's reservations, soonest first.
func (r *MemoryReservationRepo) ListByUser(userID string) []models.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Reservation
	for _, res := range r.byID {
		if res.UserID == userID {
			out = append(out, *r.describe(res))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Slot != out[j].Slot {
			return out[i].Slot < out[j].Slot
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *MemoryReservationRepo) owned(userID string, id int) (*models.Reservation, error) {
	res, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if res.UserID != userID {
		return nil, ErrForbidden
	}
	return res, nil
}

func (r *MemoryReservationRepo) validate(in models.ReservationInput) error {
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return ErrInvalidDate
	}
	if !r.knownSlot(in.Slot) {
		return ErrInvalidSlot
	}
	if _, ok := r.room(in.RoomTypeID); !ok {
		return ErrUnknownRoom
	}
	if r.ended(in.Date, in.Slot) {
		return ErrPast
	}
	return nil
}

// ended reports whether the one-hour slot starting at hour slot on date is over.
func (r *MemoryReservationRepo) ended(date string, slot int) bool {
	day, err := time.ParseInLocation(dateLayout, date, r.Location)
	if err != nil {
		return false
	}
	end := day.Add(time.Duration(slot+1) * time.Hour)
	return !end.After(r.Now())
}

func (r *MemoryReservationRepo) knownSlot(v int) bool {
	for _, s := range r.slots {
		if s.Value == v {
			return true
		}
	}
	return false
}

func (r *MemoryReservationRepo) room(id int) (models.RoomType, bool) {
	for _, rt := range r.rooms {
		if rt.ID == id && rt.IsActive {
			return rt, true
		}
	}
	return models.RoomType{}, false
}

// describe returns a copy with the display fields filled in.
func (r *MemoryReservationRepo) describe(res *models.Reservation) *models.Reservation {
	out := *res
	if rt, ok := r.room(res.RoomTypeID); ok {
		out.RoomName = rt.Name
	}
	for _, s := range r.slots {
		if s.Value == res.Slot {
			out.SlotLabel = s.Label
		}
	}
	return &out
}
