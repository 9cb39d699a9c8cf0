package state

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Clock is the logical clock stamped onto every replicated operation.
type Clock struct {
	counter uint64
	mu      sync.Mutex
}

// Tick increments the clock and returns the new value.
func (c *Clock) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return c.counter
}

// Update advances the clock past a timestamp received from another site.
func (c *Clock) Update(timestamp uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timestamp > c.counter {
		c.counter = timestamp
	}
}

// NewSiteID returns a unique ID for this participant's session.
func NewSiteID() string {
	return uuid.NewString()
}

// NewLayerID returns a globally unique, stable ID for a new layer.
func NewLayerID() string {
	return fmt.Sprintf("layer-%s", uuid.NewString())
}
