// Package presence holds the local participant's ephemeral state: the
// selection set shared with collaborators and the history-stack bracket the
// engine uses so intermediate drag states are not individually undo-able.
// Both are external collaborators from the engine's point of view; this
// package is the in-process realization.
package presence

import "sync"

// History brackets a sequence of mutations so only the final state of an
// interactive drag is recorded by the undo stack.
type History interface {
	Pause()
	Resume()
}

// NopHistory is the default history collaborator: it records nothing.
type NopHistory struct{}

func (NopHistory) Pause()  {}
func (NopHistory) Resume() {}

// Channel is the local selection channel. The engine reads and writes it;
// an optional OnChange hook broadcasts it to other participants.
type Channel struct {
	mu        sync.RWMutex
	selection []string
	onChange  func(ids []string, recordHistory bool)
}

// NewChannel returns an empty selection channel.
func NewChannel() *Channel {
	return &Channel{}
}

// SetOnChange installs the broadcast hook, invoked after every selection
// change with the new selection.
func (c *Channel) SetOnChange(fn func(ids []string, recordHistory bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Selection returns the ordered list of selected layer ids.
func (c *Channel) Selection() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.selection...)
}

// SetSelection replaces the selection. recordHistory is passed through to
// the broadcast hook; live marquee updates use false so only the committed
// selection is history-worthy.
func (c *Channel) SetSelection(ids []string, recordHistory bool) {
	c.mu.Lock()
	c.selection = append([]string(nil), ids...)
	fn := c.onChange
	snapshot := append([]string(nil), ids...)
	c.mu.Unlock()

	if fn != nil {
		fn(snapshot, recordHistory)
	}
}

// Contains reports whether the id is currently selected.
func (c *Channel) Contains(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.selection {
		if s == id {
			return true
		}
	}
	return false
}
