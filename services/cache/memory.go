package cache

import (
	"context"
	"sync"

	"roombooking/models"
)

// MemoryCache is a two-level store: date, then room type (0 for the summary).
type MemoryCache struct {
	mu     sync.RWMutex
	byDate map[string]map[int]*models.AvailabilityPayload
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{byDate: make(map[string]map[int]*models.AvailabilityPayload)}
}

func (c *MemoryCache) Get(_ context.Context, key Key) (*models.AvailabilityPayload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byDate[key.Date][key.RoomTypeID]
	return p, ok
}

func (c *MemoryCache) Set(_ context.Context, key Key, payload *models.AvailabilityPayload) {
	if payload == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms, ok := c.byDate[key.Date]
	if !ok {
		rooms = make(map[int]*models.AvailabilityPayload)
		c.byDate[key.Date] = rooms
	}
	rooms[key.RoomTypeID] = payload
}

func (c *MemoryCache) Evict(_ context.Context, key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rooms, ok := c.byDate[key.Date]
	if !ok {
		return
	}
	delete(rooms, key.RoomTypeID)
	if len(rooms) == 0 {
		delete(c.byDate, key.Date)
	}
}

func (c *MemoryCache) EvictDate(_ context.Context, date string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byDate, date)
}

// Len is the number of entries across all dates.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, rooms := range c.byDate {
		n += len(rooms)
	}
	return n
}
