// Package geometry provides the pure bounding-box math used by the canvas
// engine: anchored resizes, aspect/angle/square constraints and the
// rectangle predicates everything else is built on. All functions operate in
// canvas-space float coordinates; rounding to pixels is left to callers so
// repeated calls never compound rounding error.
package geometry

import "math"

// Point represents a 2D point or vector in canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect represents an axis-aligned rectangle in canvas space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Side is a bitmask of resize handles: a corner is the combination of a
// horizontal and a vertical side.
type Side uint8

const (
	SideLeft Side = 1 << iota
	SideRight
	SideTop
	SideBottom
)

// Has reports whether the mask contains the given side.
func (s Side) Has(o Side) bool { return s&o == o }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool { return finite(p.X) && finite(p.Y) }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Dist returns the Euclidean distance between two points.
func Dist(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func (r Rect) Right() float64   { return r.X + r.Width }
func (r Rect) Bottom() float64  { return r.Y + r.Height }
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point { return Point{r.CenterX(), r.CenterY()} }

// Area returns the rectangle's area.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Finite reports whether every coordinate of the rectangle is finite.
func (r Rect) Finite() bool {
	return finite(r.X) && finite(r.Y) && finite(r.Width) && finite(r.Height)
}

// Contains reports whether the point lies inside the rectangle, edges
// included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() &&
		p.Y >= r.Y && p.Y <= r.Bottom()
}

// ContainsRect reports whether the other rectangle lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Right() <= r.Right() &&
		o.Y >= r.Y && o.Bottom() <= r.Bottom()
}

// Overlaps reports whether the two rectangles intersect. Touching edges
// count as overlapping.
func (r Rect) Overlaps(o Rect) bool {
	return !(r.Right() < o.X || o.Right() < r.X ||
		r.Bottom() < o.Y || o.Bottom() < r.Y)
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.Right(), o.Right())
	maxY := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Inflate grows the rectangle by the margin on every side.
func (r Rect) Inflate(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, Width: r.Width + 2*m, Height: r.Height + 2*m}
}

// Translate shifts the rectangle by the given offset.
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// FromPoints returns the normalized rectangle spanned by two corner points.
func FromPoints(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(a.X - b.X),
		Height: math.Abs(a.Y - b.Y),
	}
}

// BoundsOf returns the bounding box of a set of points. An empty slice
// yields the zero rectangle.
func BoundsOf(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// ResizeBounds returns the bounds produced by dragging the given corner or
// edge of the initial bounds to the target point. The opposite corner/edge
// stays anchored; dragging past it flips the rectangle rather than producing
// a negative size.
func ResizeBounds(initial Rect, corner Side, target Point) Rect {
	result := initial
	if corner.Has(SideLeft) {
		result.X = math.Min(target.X, initial.Right())
		result.Width = math.Abs(initial.Right() - target.X)
	}
	if corner.Has(SideRight) {
		result.X = math.Min(target.X, initial.X)
		result.Width = math.Abs(target.X - initial.X)
	}
	if corner.Has(SideTop) {
		result.Y = math.Min(target.Y, initial.Bottom())
		result.Height = math.Abs(initial.Bottom() - target.Y)
	}
	if corner.Has(SideBottom) {
		result.Y = math.Min(target.Y, initial.Y)
		result.Height = math.Abs(target.Y - initial.Y)
	}
	return result
}

// ConstrainResizeToAspectRatio resizes like ResizeBounds but keeps the
// result at the given width/height ratio. The dominant drag axis wins and
// the other dimension is derived from it, so the anchored corner never
// moves.
func ConstrainResizeToAspectRatio(initial Rect, corner Side, target Point, ratio float64) Rect {
	if ratio <= 0 {
		ratio = 1
	}
	free := ResizeBounds(initial, corner, target)

	scaleX, scaleY := math.Inf(1), math.Inf(1)
	if initial.Width > 0 {
		scaleX = free.Width / initial.Width
	}
	if initial.Height > 0 {
		scaleY = free.Height / initial.Height
	}

	w, h := free.Width, free.Height
	if scaleX >= scaleY {
		h = w / ratio
	} else {
		w = h * ratio
	}

	result := Rect{Width: w, Height: h}
	switch {
	case corner.Has(SideLeft):
		result.X = initial.Right() - w
	case corner.Has(SideRight):
		result.X = initial.X
	default:
		result.X = initial.CenterX() - w/2
	}
	switch {
	case corner.Has(SideTop):
		result.Y = initial.Bottom() - h
	case corner.Has(SideBottom):
		result.Y = initial.Y
	default:
		result.Y = initial.CenterY() - h/2
	}
	return result
}

// ConstrainToAngle snaps the vector origin→point to the nearest 45 degree
// increment, preserving its length.
func ConstrainToAngle(origin, point Point) Point {
	dx := point.X - origin.X
	dy := point.Y - origin.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return point
	}
	step := math.Pi / 4
	angle := math.Round(math.Atan2(dy, dx)/step) * step
	return Point{
		X: origin.X + length*math.Cos(angle),
		Y: origin.Y + length*math.Sin(angle),
	}
}

// ConstrainToSquare forces the vector origin→point to equal magnitude on
// both axes, preserving direction. The larger component wins.
func ConstrainToSquare(origin, point Point) Point {
	dx := point.X - origin.X
	dy := point.Y - origin.Y
	size := math.Max(math.Abs(dx), math.Abs(dy))
	return Point{
		X: origin.X + math.Copysign(size, dx),
		Y: origin.Y + math.Copysign(size, dy),
	}
}
