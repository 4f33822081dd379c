package models

// SlotState is the visual state of one slot button or cell.
type SlotState int

const (
	SlotAvailable SlotState = iota
	SlotReserved
	SlotSelected
)

func (s SlotState) String() string {
	switch s {
	case SlotReserved:
		return "reserved"
	case SlotSelected:
		return "selected"
	default:
		return "available"
	}
}

// Interactive is false only for reserved slots.
func (s SlotState) Interactive() bool {
	return s != SlotReserved
}

type SlotCell struct {
	RoomTypeID int       `json:"room_type_id"`
	Slot       int       `json:"slot"`
	Label      string    `json:"label"`
	State      SlotState `json:"state"`
}

type MatrixRow struct {
	RoomTypeID int        `json:"room_type_id"`
	RoomName   string     `json:"room_name"`
	Cells      []SlotCell `json:"cells"`
}

// MatrixView is the rooms-by-slots grid. Placeholder is set instead of Rows
// when nothing matched the filter.
type MatrixView struct {
	Header      []string    `json:"header"`
	Rows        []MatrixRow `json:"rows"`
	Placeholder string      `json:"placeholder,omitempty"`
}

// BadgeKind classifies a room's day at a glance.
type BadgeKind int

const (
	BadgeUnknown BadgeKind = iota
	BadgeAvailable
	BadgePartial
	BadgeFull
)

type RoomCard struct {
	RoomTypeID     int        `json:"room_type_id"`
	Name           string     `json:"name"`
	Badge          BadgeKind  `json:"badge"`
	BadgeText      string     `json:"badge_text"`
	BadgeTitle     string     `json:"badge_title"`
	Status         string     `json:"status"`
	Slots          []SlotCell `json:"slots"`
	SelectionText  string     `json:"selection_text"`
	ReserveText    string     `json:"reserve_text"`
	ReserveEnabled bool       `json:"reserve_enabled"`
}

type CardsView struct {
	Cards       []RoomCard `json:"cards"`
	Placeholder string     `json:"placeholder,omitempty"`
}

type SlotOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// SlotOptionsView is the slot picker of the create and edit forms.
// Selected is 0 when no option can be chosen.
type SlotOptionsView struct {
	Options     []SlotOption `json:"options"`
	Selected    int          `json:"selected"`
	Disabled    bool         `json:"disabled"`
	Placeholder string       `json:"placeholder,omitempty"`
	Help        string       `json:"help"`
}

type SlotBadge struct {
	Label    string `json:"label"`
	Reserved bool   `json:"reserved"`
}

// Screen is everything a board publishes to its displays in one pass.
type Screen struct {
	Date    string     `json:"date"`
	Filter  string     `json:"filter"`
	Status  string     `json:"status"`
	Busy    bool       `json:"busy"`
	Summary string     `json:"summary"`
	Matrix  MatrixView `json:"matrix"`
	Cards   CardsView  `json:"cards"`
	Focus   *RoomCard  `json:"focus,omitempty"`
}

// FormScreen is what a reservation form publishes.
type FormScreen struct {
	RoomTypeID int             `json:"room_type_id"`
	Date       string          `json:"date"`
	Status     string          `json:"status"`
	Busy       bool            `json:"busy"`
	Slots      SlotOptionsView `json:"slots"`
	Badges     []SlotBadge     `json:"badges,omitempty"`
	CanSubmit  bool            `json:"can_submit"`
}
