// Package snap computes alignment snapping for a layer being dragged:
// given the moving bounds and the bounds of every non-moving layer, it
// proposes a corrected position within a pixel threshold and emits the
// guide lines the renderer draws for feedback. The two axes are resolved
// independently; a snap on one never suppresses a snap on the other.
package snap

import (
	"math"

	"canvasboard/internal/geometry"
)

// Axis identifies the direction a guide constrains.
type Axis int

const (
	// AxisX guides are vertical lines constraining the X coordinate.
	AxisX Axis = iota
	// AxisY guides are horizontal lines constraining the Y coordinate.
	AxisY
)

// Kind reports which features aligned.
type Kind string

const (
	KindEdge   Kind = "edge"
	KindCenter Kind = "center"
)

// Guide is one active alignment line, used only for visual feedback.
type Guide struct {
	Axis     Axis
	Kind     Kind
	Position float64
	From     geometry.Point
	To       geometry.Point
	SourceID string
}

// Candidate is the bounds of one non-moving layer.
type Candidate struct {
	ID     string
	Bounds geometry.Rect
}

// Result is the corrected position plus any guides that produced it.
type Result struct {
	X      float64
	Y      float64
	Guides []Guide
}

// Adjust snaps the moving bounds against the candidates and, when given,
// the enclosing frame's bounds. For each axis the nearest edge-or-center
// candidate within threshold wins; coordinates outside the threshold are
// left unchanged.
func Adjust(moving geometry.Rect, candidates []Candidate, parent *geometry.Rect, threshold float64) Result {
	result := Result{X: moving.X, Y: moving.Y}

	all := candidates
	if parent != nil {
		all = append(append([]Candidate(nil), candidates...), Candidate{ID: "", Bounds: *parent})
	}

	movingX := [3]axisFeature{
		{moving.X, KindEdge},
		{moving.CenterX(), KindCenter},
		{moving.Right(), KindEdge},
	}
	movingY := [3]axisFeature{
		{moving.Y, KindEdge},
		{moving.CenterY(), KindCenter},
		{moving.Bottom(), KindEdge},
	}

	bestX := bestMatch{dist: math.Inf(1)}
	bestY := bestMatch{dist: math.Inf(1)}

	for _, c := range all {
		candX := [3]axisFeature{
			{c.Bounds.X, KindEdge},
			{c.Bounds.CenterX(), KindCenter},
			{c.Bounds.Right(), KindEdge},
		}
		candY := [3]axisFeature{
			{c.Bounds.Y, KindEdge},
			{c.Bounds.CenterY(), KindCenter},
			{c.Bounds.Bottom(), KindEdge},
		}
		for _, m := range movingX {
			for _, t := range candX {
				consider(&bestX, m, t, c, threshold)
			}
		}
		for _, m := range movingY {
			for _, t := range candY {
				consider(&bestY, m, t, c, threshold)
			}
		}
	}

	if bestX.dist <= threshold {
		result.X = moving.X - bestX.delta
		snapped := moving
		snapped.X = result.X
		result.Guides = append(result.Guides, verticalGuide(bestX, snapped))
	}
	if bestY.dist <= threshold {
		result.Y = moving.Y - bestY.delta
		snapped := moving
		snapped.Y = result.Y
		result.Guides = append(result.Guides, horizontalGuide(bestY, snapped))
	}
	return result
}

type axisFeature struct {
	pos  float64
	kind Kind
}

type bestMatch struct {
	delta    float64
	dist     float64
	position float64
	kind     Kind
	source   Candidate
}

func consider(best *bestMatch, moving, target axisFeature, source Candidate, threshold float64) {
	// Center features only align with center features, edges with edges.
	if moving.kind != target.kind {
		return
	}
	delta := moving.pos - target.pos
	dist := math.Abs(delta)
	if dist > threshold || dist >= best.dist {
		return
	}
	*best = bestMatch{delta: delta, dist: dist, position: target.pos, kind: target.kind, source: source}
}

func verticalGuide(m bestMatch, moving geometry.Rect) Guide {
	top := math.Min(moving.Y, m.source.Bounds.Y)
	bottom := math.Max(moving.Bottom(), m.source.Bounds.Bottom())
	return Guide{
		Axis:     AxisX,
		Kind:     m.kind,
		Position: m.position,
		From:     geometry.Point{X: m.position, Y: top},
		To:       geometry.Point{X: m.position, Y: bottom},
		SourceID: m.source.ID,
	}
}

func horizontalGuide(m bestMatch, moving geometry.Rect) Guide {
	left := math.Min(moving.X, m.source.Bounds.X)
	right := math.Max(moving.Right(), m.source.Bounds.Right())
	return Guide{
		Axis:     AxisY,
		Kind:     m.kind,
		Position: m.position,
		From:     geometry.Point{X: left, Y: m.position},
		To:       geometry.Point{X: right, Y: m.position},
		SourceID: m.source.ID,
	}
}
