package availability

import "errors"

var (
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
	ErrUnknownSlot  = errors.New("unknown room or slot")
	ErrSlotReserved = errors.New("slot is already reserved")
	ErrClosed       = errors.New("controller closed")
)

const (
	StatusLoading    = "Loading…"
	StatusReserving  = "Reserving…"
	StatusSaving     = "Saving…"
	StatusCancelling = "Cancelling…"
	StatusFailed     = "Failed"

	loadFailedMessage     = "Failed to load availability. Please try again."
	formLoadFailedMessage = "Failed to load availability."
)
