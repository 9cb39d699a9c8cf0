// Package gesture classifies raw touch sequences into camera gestures or
// layer manipulation before the canvas state machine ever sees them. It is
// a pure reducer: feed it the previous state and a touch event, get the
// next state plus any pointer events to synthesize for the engine. Mouse
// and pen input bypass this package entirely.
package gesture

import "canvasboard/internal/geometry"

// TouchDragThreshold is the cumulative movement, in pixels, after which a
// touched layer starts dragging instead of just being selected. Overridable.
var TouchDragThreshold = 8.0

// Mode is the classified gesture.
type Mode int

const (
	Idle Mode = iota
	CameraPan
	CameraPinch
	LayerSelect
	LayerDrag
)

// String returns the mode name for logging.
func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case CameraPan:
		return "camera_pan"
	case CameraPinch:
		return "camera_pinch"
	case LayerSelect:
		return "layer_select"
	case LayerDrag:
		return "layer_drag"
	default:
		return "unknown"
	}
}

// IsCamera reports whether the mode manipulates the camera rather than
// layers.
func (m Mode) IsCamera() bool { return m == CameraPan || m == CameraPinch }

// Phase is the lifecycle stage of a touch event.
type Phase int

const (
	PhaseBegin Phase = iota
	PhaseMove
	PhaseEnd
	PhaseCancel
)

// Event is one raw touch update. TouchCount is the number of touches on
// the surface after this event; LayerID names the layer under the touch at
// begin time ("" over empty canvas).
type Event struct {
	Phase      Phase
	TouchCount int
	Point      geometry.Point
	LayerID    string
}

// State is the arbiter's whole memory between events.
type State struct {
	Mode          Mode
	TouchCount    int
	StartPoint    geometry.Point
	LastPoint     geometry.Point
	TargetLayerID string
	Moved         float64
}

// ActionKind is a pointer event the arbiter asks the host to synthesize
// for the canvas engine.
type ActionKind int

const (
	SynthPointerDown ActionKind = iota
	SynthPointerMove
	SynthPointerUp
)

// Action is one synthesized pointer event.
type Action struct {
	Kind  ActionKind
	Point geometry.Point
}

// Reduce advances the arbiter by one touch event. Transitioning from a
// layer mode to a camera mode always synthesizes a pointer-up first, so an
// in-progress layer mutation is finalized, never silently abandoned.
func Reduce(s State, e Event) (State, []Action) {
	switch e.Phase {
	case PhaseBegin:
		return reduceBegin(s, e)
	case PhaseMove:
		return reduceMove(s, e)
	case PhaseEnd, PhaseCancel:
		return reduceEnd(s, e)
	default:
		return s, nil
	}
}

func reduceBegin(s State, e Event) (State, []Action) {
	var actions []Action

	// Two or more simultaneous touches always win the gesture for the
	// camera, regardless of prior mode.
	if e.TouchCount >= 2 {
		if s.Mode == LayerSelect || s.Mode == LayerDrag {
			actions = append(actions, Action{Kind: SynthPointerUp, Point: s.LastPoint})
		}
		return State{
			Mode:       CameraPinch,
			TouchCount: e.TouchCount,
			StartPoint: e.Point,
			LastPoint:  e.Point,
		}, actions
	}

	next := State{
		TouchCount: e.TouchCount,
		StartPoint: e.Point,
		LastPoint:  e.Point,
	}
	if e.LayerID != "" {
		next.Mode = LayerSelect
		next.TargetLayerID = e.LayerID
		actions = append(actions, Action{Kind: SynthPointerDown, Point: e.Point})
	} else {
		next.Mode = CameraPan
	}
	return next, actions
}

func reduceMove(s State, e Event) (State, []Action) {
	next := s
	next.Moved += abs(e.Point.X-s.LastPoint.X) + abs(e.Point.Y-s.LastPoint.Y)
	next.LastPoint = e.Point

	switch s.Mode {
	case LayerSelect:
		if next.Moved > TouchDragThreshold {
			next.Mode = LayerDrag
			return next, []Action{{Kind: SynthPointerMove, Point: e.Point}}
		}
		return next, nil
	case LayerDrag:
		return next, []Action{{Kind: SynthPointerMove, Point: e.Point}}
	case CameraPan, CameraPinch, Idle:
		// Camera deltas are the host's concern; nothing to synthesize.
		return next, nil
	default:
		return next, nil
	}
}

func reduceEnd(s State, e Event) (State, []Action) {
	var actions []Action

	if e.TouchCount <= 0 {
		if s.Mode == LayerSelect || s.Mode == LayerDrag {
			actions = append(actions, Action{Kind: SynthPointerUp, Point: e.Point})
		}
		return State{Mode: Idle}, actions
	}

	// A pinch losing one finger continues as a pan, not a fresh gesture.
	if s.Mode == CameraPinch && e.TouchCount == 1 {
		next := s
		next.Mode = CameraPan
		next.TouchCount = e.TouchCount
		next.LastPoint = e.Point
		return next, nil
	}

	next := s
	next.TouchCount = e.TouchCount
	next.LastPoint = e.Point
	return next, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
