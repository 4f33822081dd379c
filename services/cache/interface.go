// Package cache memoizes availability payloads for the lifetime of a session.
package cache

import (
	"context"
	"fmt"

	"roombooking/models"
)

// Key addresses one cache entry. RoomTypeID 0 is the date-level summary entry.
type Key struct {
	Date       string
	RoomTypeID int
}

func (k Key) String() string {
	if k.RoomTypeID == 0 {
		return k.Date
	}
	return fmt.Sprintf("%s:%d", k.Date, k.RoomTypeID)
}

// AvailabilityCache has no expiry; entries only leave through Evict or EvictDate.
type AvailabilityCache interface {
	Get(ctx context.Context, key Key) (*models.AvailabilityPayload, bool)
	Set(ctx context.Context, key Key, payload *models.AvailabilityPayload)
	Evict(ctx context.Context, key Key)
	// EvictDate drops the summary entry for date and every room entry under it.
	EvictDate(ctx context.Context, date string)
}
