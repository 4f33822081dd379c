package workflow

import "errors"

var (
	// ErrBusy rejects a submission while another one, or a load, is in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrNoSelection rejects a submission with no room, slot or date chosen.
	ErrNoSelection = errors.New("no slot selected")
)

const (
	SessionExpiredMessage = "Your session expired. Please login again."

	createdMessage   = "Reservation created successfully."
	updatedMessage   = "Reservation updated successfully."
	cancelledMessage = "Reservation cancelled."

	createFailedMessage = "Failed to reserve. Please try again."
	updateFailedMessage = "Failed to update reservation. Please try again."
	cancelFailedMessage = "Failed to cancel reservation. Please try again."
)
