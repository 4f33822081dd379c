package models

// TimeSlot is one bookable interval of a day. Value is unique within a payload.
type TimeSlot struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// RoomAvailability is the reservation state of one room type for a date.
// Slots missing from ReservedSlots are available.
type RoomAvailability struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ReservedSlots []int  `json:"reserved_slots"`
	ReservedCount *int   `json:"reserved_count,omitempty"` // only set on summary=1 responses
}

// AvailabilityPayload is the server snapshot for a date, optionally scoped to one room.
// Payloads are never mutated after they are decoded.
type AvailabilityPayload struct {
	Date       string             `json:"date"`
	TimeSlots  []TimeSlot         `json:"time_slots"`
	RoomTypes  []RoomAvailability `json:"room_types"`
	TotalSlots *int               `json:"total_slots,omitempty"`
}

// Reserved returns the room's reserved slots as a set.
func (r RoomAvailability) Reserved() map[int]bool {
	set := make(map[int]bool, len(r.ReservedSlots))
	for _, s := range r.ReservedSlots {
		set[s] = true
	}
	return set
}

// Counts reports how many slots are reserved and whether the number is known.
// Detail payloads carry the slot list; summary payloads carry only the count.
// A missing slot list counts as nothing reserved.
func (r RoomAvailability) Counts() (int, bool) {
	if r.ReservedCount != nil {
		return *r.ReservedCount, true
	}
	return len(r.ReservedSlots), true
}

// HasSlotDetail is false for summary-only payloads.
func (r RoomAvailability) HasSlotDetail() bool {
	return r.ReservedCount == nil || r.ReservedSlots != nil
}

// Room looks up a room type by id.
func (p *AvailabilityPayload) Room(id int) (RoomAvailability, bool) {
	if p == nil {
		return RoomAvailability{}, false
	}
	for _, rt := range p.RoomTypes {
		if rt.ID == id {
			return rt, true
		}
	}
	return RoomAvailability{}, false
}

// SlotLabel returns the display label for a slot value.
func (p *AvailabilityPayload) SlotLabel(value int) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, s := range p.TimeSlots {
		if s.Value == value {
			return s.Label, true
		}
	}
	return "", false
}

// Total is the number of slots in the day, preferring the server-sent total.
func (p *AvailabilityPayload) Total() int {
	if p == nil {
		return 0
	}
	if p.TotalSlots != nil {
		return *p.TotalSlots
	}
	return len(p.TimeSlots)
}
