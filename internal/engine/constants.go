package engine

import (
	"time"

	"canvasboard/internal/geometry"
)

// Interaction tuning constants. These are deliberate magic numbers carried
// over from hand-tuning; they are variables so a host can override them,
// but the defaults are the supported values.
var (
	// SnapThreshold is the snapping distance in pixels, independent of zoom.
	SnapThreshold = 5.0
	// DragStartDistance is the Manhattan distance a pressed pointer must
	// travel before a marquee drag starts.
	DragStartDistance = 5.0
	// HandleSize is the hit radius of a resize handle.
	HandleSize = 8.0
	// ResolveDelay defers the frame-containment pass after an edit commits,
	// so the just-committed geometry is visible to the resolver and
	// resolution never blocks the interactive frame.
	ResolveDelay = 50 * time.Millisecond
	// ReconcileInterval is the period of the background connector sweep.
	ReconcileInterval = 2 * time.Second
)

// Default dimensions for click-inserted layers.
var (
	DefaultShapeSize = geometry.Point{X: 100, Y: 100}
	DefaultNoteSize  = geometry.Point{X: 140, Y: 140}
	DefaultTextSize  = geometry.Point{X: 160, Y: 32}
	DefaultFrameSize = geometry.Point{X: 400, Y: 300}
)

// FramePresets maps a named frame preset to its fixed dimensions, used when
// a frame is click-inserted with a preset armed.
var FramePresets = map[string]geometry.Point{
	"16:9": {X: 1600, Y: 900},
	"4:3":  {X: 1200, Y: 900},
	"a4":   {X: 595, Y: 842},
}
