package engine

import (
	"canvasboard/internal/geometry"
	"canvasboard/internal/state"
)

// Mode is the active interaction mode. Exactly one is active at a time and
// the whole CanvasState is replaced on every transition, never partially
// mutated across mode boundaries.
type Mode int

const (
	ModeNone Mode = iota
	ModePressing
	ModeSelectionNet
	ModeTranslating
	ModeResizing
	ModeGroupResizing
	ModeInserting
	ModeDrawing
	ModePencil
)

// String returns the mode name for logging.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModePressing:
		return "pressing"
	case ModeSelectionNet:
		return "selection_net"
	case ModeTranslating:
		return "translating"
	case ModeResizing:
		return "resizing"
	case ModeGroupResizing:
		return "group_resizing"
	case ModeInserting:
		return "inserting"
	case ModeDrawing:
		return "drawing"
	case ModePencil:
		return "pencil"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of one layer's geometry captured when an
// interactive operation starts. All resize math during the operation is
// computed against it, never against live values, so repeated small moves
// do not compound rounding error.
type Snapshot struct {
	Bounds geometry.Rect
	Start  geometry.Point
	End    geometry.Point
	Points []state.PathPoint
}

// CanvasState is the engine's current interaction state, consumed by the
// rendering collaborator for marquee/preview drawing.
type CanvasState struct {
	Mode    Mode
	Origin  geometry.Point
	Current geometry.Point

	// Translating
	LastPoint geometry.Point

	// Resizing / GroupResizing
	Handle      geometry.Side
	Snapshots   map[string]Snapshot
	GroupBounds geometry.Rect

	// Inserting / Drawing
	PendingType state.LayerType
	FramePreset string

	// Pencil
	Stroke []state.PathPoint
}

// Marquee returns the live selection-net rectangle.
func (s CanvasState) Marquee() geometry.Rect {
	return geometry.FromPoints(s.Origin, s.Current)
}
