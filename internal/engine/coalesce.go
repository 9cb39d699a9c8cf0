package engine

import (
	"sync"

	"canvasboard/internal/state"
)

// Coalescer bounds the work done for high-frequency pointer-move streams:
// moves are collapsed to at most one engine update per display frame (the
// host calls Flush from its frame callback). Note-bearing drags and drags
// of connector-anchored layers bypass coalescing and apply live, since
// their visual feedback must reflect connector geometry precisely.
type Coalescer struct {
	engine *Engine

	mu      sync.Mutex
	pending *PointerEvent
}

// NewCoalescer wraps an engine's PointerMove path.
func NewCoalescer(e *Engine) *Coalescer {
	return &Coalescer{engine: e}
}

// Offer submits a pointer-move. Live-update interactions are applied
// immediately; everything else waits for the next Flush, keeping only the
// latest event.
func (c *Coalescer) Offer(ev PointerEvent) {
	if c.engine.requiresLiveUpdates() {
		c.Flush()
		c.engine.PointerMove(ev)
		return
	}
	c.mu.Lock()
	cp := ev
	c.pending = &cp
	c.mu.Unlock()
}

// Flush applies the most recent coalesced move, if any. Call once per
// display frame.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	ev := c.pending
	c.pending = nil
	c.mu.Unlock()
	if ev != nil {
		c.engine.PointerMove(*ev)
	}
}

// requiresLiveUpdates reports whether the current interaction must bypass
// coalescing: a translate whose selection contains a note, a connector, or
// a layer some connector is anchored to.
func (e *Engine) requiresLiveUpdates() bool {
	if e.st.Mode != ModeTranslating {
		return false
	}
	selected := e.sel.Selection()
	if len(selected) == 0 {
		return false
	}
	inSelection := make(map[string]bool, len(selected))
	for _, id := range selected {
		inSelection[id] = true
		l, ok := e.doc.Get(id)
		if !ok {
			continue
		}
		if l.Type == state.TypeNote || l.Type.IsConnector() {
			return true
		}
	}
	for _, l := range e.doc.Layers() {
		if !l.Type.IsConnector() {
			continue
		}
		if inSelection[l.SourceNoteID] || inSelection[l.TargetNoteID] {
			return true
		}
	}
	return false
}
