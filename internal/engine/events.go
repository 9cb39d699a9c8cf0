package engine

import "canvasboard/internal/geometry"

// PointerKind distinguishes the input device that produced an event.
type PointerKind int

const (
	PointerMouse PointerKind = iota
	PointerPen
	PointerTouch
)

// Button bitmask values for PointerEvent.Buttons.
const (
	ButtonPrimary = 1 << iota
	ButtonSecondary
)

// PointerEvent is the single canonical input shape the engine consumes.
// Coordinates are already in canvas space (the camera collaborator converts
// before dispatch) and modifier keys are captured at the input boundary;
// the engine never reads ambient global key state.
type PointerEvent struct {
	X        float64
	Y        float64
	Pressure float64
	Shift    bool
	Alt      bool
	Kind     PointerKind
	Buttons  int
}

// Point returns the event position as a geometry point.
func (ev PointerEvent) Point() geometry.Point {
	return geometry.Point{X: ev.X, Y: ev.Y}
}
