package state

import (
	"canvasboard/internal/geometry"
)

// LayerType identifies the kind of canvas object a Layer holds. The set is
// closed: every component that branches on it switches over all of these
// constants.
type LayerType string

const (
	TypeRectangle LayerType = "rectangle"
	TypeEllipse   LayerType = "ellipse"
	TypeText      LayerType = "text"
	TypeNote      LayerType = "note"
	TypePath      LayerType = "path"
	TypeArrow     LayerType = "arrow"
	TypeLine      LayerType = "line"
	TypeFrame     LayerType = "frame"
	TypeImage     LayerType = "image"
	TypeVideo     LayerType = "video"
	TypeFile      LayerType = "file"
	TypeTodo      LayerType = "todo"
	TypeTable     LayerType = "table"
)

// IsConnector reports whether the type is an arrow or line.
func (t LayerType) IsConnector() bool {
	return t == TypeArrow || t == TypeLine
}

// ForcesSquareAspect reports whether the type always keeps a 1:1 aspect
// ratio when resized (card-like layers).
func (t LayerType) ForcesSquareAspect() bool {
	return t == TypeNote || t == TypeTodo
}

// Color is an RGB fill color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Side names one edge of a layer's bounds, used for connector anchoring.
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// PathPoint is one freehand sample in layer-local coordinates.
type PathPoint struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure"`
}

// Layer is the single canvas object record. It is a tagged union keyed by
// Type; fields past the common block are only meaningful for the types noted
// in their comments.
type Layer struct {
	ID     string    `json:"id"`
	Type   LayerType `json:"type"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Fill   Color     `json:"fill"`

	// StrokeWidth is the outline/line width. Zero means the default; see
	// LineWidth.
	StrokeWidth float64 `json:"strokeWidth,omitempty"`

	// Text, Note, Todo
	Value string `json:"value,omitempty"`

	// Frame. ChildIDs is a derived cache rebuilt by the frame resolver from
	// geometry; it is never the source of truth for containment.
	ChildIDs   []string `json:"children,omitempty"`
	AutoResize bool     `json:"autoResize,omitempty"`
	Title      string   `json:"title,omitempty"`

	// Arrow, Line. The endpoints are independent of the bounding box, which
	// is inflated around them to contain stroke width and arrowhead.
	StartX          float64 `json:"startX,omitempty"`
	StartY          float64 `json:"startY,omitempty"`
	EndX            float64 `json:"endX,omitempty"`
	EndY            float64 `json:"endY,omitempty"`
	SourceNoteID    string  `json:"sourceNoteId,omitempty"`
	TargetNoteID    string  `json:"targetNoteId,omitempty"`
	SourceSide      Side    `json:"sourceSide,omitempty"`
	TargetSide      Side    `json:"targetSide,omitempty"`
	SnappedToSource bool    `json:"isSnappedToSource,omitempty"`
	SnappedToTarget bool    `json:"isSnappedToTarget,omitempty"`
	Curved          bool    `json:"curved,omitempty"`
	Control1X       float64 `json:"c1x,omitempty"`
	Control1Y       float64 `json:"c1y,omitempty"`
	Control2X       float64 `json:"c2x,omitempty"`
	Control2Y       float64 `json:"c2y,omitempty"`

	// Path
	Points []PathPoint `json:"points,omitempty"`

	// Image, Video, File
	URL string `json:"url,omitempty"`
}

// DefaultStrokeWidth is used when a layer carries no explicit width.
const DefaultStrokeWidth = 2.0

// LineWidth returns the stroke width to draw the layer with, falling back
// to the default for layers saved before widths were stored.
func (l Layer) LineWidth() float64 {
	if l.StrokeWidth > 0 {
		return l.StrokeWidth
	}
	return DefaultStrokeWidth
}

// Bounds returns the layer's axis-aligned bounding box.
func (l Layer) Bounds() geometry.Rect {
	return geometry.Rect{X: l.X, Y: l.Y, Width: l.Width, Height: l.Height}
}

// SetBounds replaces the layer's bounding box.
func (l *Layer) SetBounds(r geometry.Rect) {
	l.X, l.Y, l.Width, l.Height = r.X, r.Y, r.Width, r.Height
}

// Start returns a connector's start endpoint.
func (l Layer) Start() geometry.Point { return geometry.Point{X: l.StartX, Y: l.StartY} }

// End returns a connector's end endpoint.
func (l Layer) End() geometry.Point { return geometry.Point{X: l.EndX, Y: l.EndY} }

// AnchorPoint returns the midpoint of the named side of the layer's bounds,
// the point a connector endpoint snaps to.
func (l Layer) AnchorPoint(side Side) geometry.Point {
	b := l.Bounds()
	switch side {
	case SideTop:
		return geometry.Point{X: b.CenterX(), Y: b.Y}
	case SideRight:
		return geometry.Point{X: b.Right(), Y: b.CenterY()}
	case SideBottom:
		return geometry.Point{X: b.CenterX(), Y: b.Bottom()}
	case SideLeft:
		return geometry.Point{X: b.X, Y: b.CenterY()}
	default:
		return b.Center()
	}
}

// Valid reports whether every coordinate in the layer is finite and sizes
// are non-negative. Mutations writing an invalid layer are rejected before
// any state changes.
func (l Layer) Valid() bool {
	if !l.Bounds().Finite() || l.Width < 0 || l.Height < 0 {
		return false
	}
	switch l.Type {
	case TypeArrow, TypeLine:
		if !l.Start().Finite() || !l.End().Finite() {
			return false
		}
		if l.Curved {
			c1 := geometry.Point{X: l.Control1X, Y: l.Control1Y}
			c2 := geometry.Point{X: l.Control2X, Y: l.Control2Y}
			if !c1.Finite() || !c2.Finite() {
				return false
			}
		}
	case TypePath:
		for _, p := range l.Points {
			if !(geometry.Point{X: p.X, Y: p.Y}).Finite() {
				return false
			}
		}
	case TypeRectangle, TypeEllipse, TypeText, TypeNote, TypeFrame,
		TypeImage, TypeVideo, TypeFile, TypeTodo, TypeTable:
		// Common fields only.
	}
	return true
}

// Clone returns a deep copy of the layer, including point and child slices.
func (l Layer) Clone() Layer {
	c := l
	if l.ChildIDs != nil {
		c.ChildIDs = append([]string(nil), l.ChildIDs...)
	}
	if l.Points != nil {
		c.Points = append([]PathPoint(nil), l.Points...)
	}
	return c
}
