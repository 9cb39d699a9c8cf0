// Package connector keeps arrow and line layers synchronized with the
// shapes their endpoints are anchored to: re-anchoring endpoints when an
// anchored shape moves, recomputing Bezier control points for curved
// connectors and inflating the bounding box around the result. Every
// operation here is idempotent so the periodic reconciliation sweep is safe
// to run redundantly.
package connector

import (
	"context"
	"log"
	"math"
	"time"

	"canvasboard/internal/geometry"
	"canvasboard/internal/state"
)

// Tunable connector constants. Overridable.
var (
	// ReanchorTolerance is the endpoint drift, in canvas units, below which
	// a recomputed anchor point is not written back.
	ReanchorTolerance = 1.0
	// CurveFactor and CurveMax control how far Bezier control points extend
	// from an anchored endpoint: min(distance*CurveFactor, CurveMax).
	CurveFactor = 0.4
	CurveMax    = 150.0
	// BoundsMargin inflates a connector's bounding box to contain stroke
	// width and arrowhead.
	BoundsMargin = 12.0
	// AutoSnapRadius is how far outside a shape's bounds a drag-released
	// connector endpoint may land and still snap to it.
	AutoSnapRadius = 8.0
)

// MaintainTx recomputes one connector inside a transaction: anchored
// endpoints, curvature and bounding box. Missing anchor targets are skipped
// silently; the shape may have been deleted by another participant.
func MaintainTx(tx *state.Tx, id string) {
	l, ok := tx.Get(id)
	if !ok || !l.Type.IsConnector() {
		return
	}
	updated := recompute(tx, l)
	if connectorEqual(l, updated) {
		return
	}
	tx.Set(id, updated)
}

func recompute(tx *state.Tx, l state.Layer) state.Layer {
	if l.SourceNoteID != "" {
		if anchor, ok := tx.Get(l.SourceNoteID); ok {
			p := anchor.AnchorPoint(l.SourceSide)
			if geometry.Dist(p, l.Start()) > ReanchorTolerance {
				l.StartX, l.StartY = p.X, p.Y
			}
			l.SnappedToSource = true
		}
	}
	if l.TargetNoteID != "" {
		if anchor, ok := tx.Get(l.TargetNoteID); ok {
			p := anchor.AnchorPoint(l.TargetSide)
			if geometry.Dist(p, l.End()) > ReanchorTolerance {
				l.EndX, l.EndY = p.X, p.Y
			}
			l.SnappedToTarget = true
		}
	}

	anchored := l.SourceNoteID != "" || l.TargetNoteID != ""
	if anchored {
		distance := geometry.Dist(l.Start(), l.End())
		reach := math.Min(distance*CurveFactor, CurveMax)
		c1 := controlPoint(l.Start(), l.End(), l.SourceSide, reach)
		c2 := controlPoint(l.End(), l.Start(), l.TargetSide, reach)
		l.Curved = true
		l.Control1X, l.Control1Y = c1.X, c1.Y
		l.Control2X, l.Control2Y = c2.X, c2.Y
	} else {
		l.Curved = false
		l.Control1X, l.Control1Y = 0, 0
		l.Control2X, l.Control2Y = 0, 0
	}

	points := []geometry.Point{l.Start(), l.End()}
	if l.Curved {
		points = append(points,
			geometry.Point{X: l.Control1X, Y: l.Control1Y},
			geometry.Point{X: l.Control2X, Y: l.Control2Y})
	}
	l.SetBounds(geometry.BoundsOf(points).Inflate(BoundsMargin))
	return l
}

// controlPoint extends from an endpoint along its anchor side; an endpoint
// without a side extends toward the opposite endpoint instead, keeping the
// curve flat on that end.
func controlPoint(from, toward geometry.Point, side state.Side, reach float64) geometry.Point {
	var dx, dy float64
	switch side {
	case state.SideTop:
		dx, dy = 0, -1
	case state.SideRight:
		dx, dy = 1, 0
	case state.SideBottom:
		dx, dy = 0, 1
	case state.SideLeft:
		dx, dy = -1, 0
	default:
		length := geometry.Dist(from, toward)
		if length == 0 {
			return from
		}
		dx = (toward.X - from.X) / length
		dy = (toward.Y - from.Y) / length
	}
	return geometry.Point{X: from.X + dx*reach, Y: from.Y + dy*reach}
}

func connectorEqual(a, b state.Layer) bool {
	return a.StartX == b.StartX && a.StartY == b.StartY &&
		a.EndX == b.EndX && a.EndY == b.EndY &&
		a.Curved == b.Curved &&
		a.Control1X == b.Control1X && a.Control1Y == b.Control1Y &&
		a.Control2X == b.Control2X && a.Control2Y == b.Control2Y &&
		a.SnappedToSource == b.SnappedToSource && a.SnappedToTarget == b.SnappedToTarget &&
		a.Bounds() == b.Bounds()
}

// OnLayerChanged re-anchors every connector bound to the given layer. Call
// after the layer moved or resized, inside the same transaction.
func OnLayerChanged(tx *state.Tx, layerID string) {
	for _, id := range tx.IDs() {
		l, ok := tx.Get(id)
		if !ok || !l.Type.IsConnector() {
			continue
		}
		if l.SourceNoteID == layerID || l.TargetNoteID == layerID {
			MaintainTx(tx, id)
		}
	}
}

// Translate moves a connector by an offset through its endpoints rather
// than its bounding box, keeping endpoints, control points and bounds
// consistent. Anchored endpoints are left to the maintainer pass that
// follows the move.
func Translate(tx *state.Tx, id string, dx, dy float64) {
	tx.Update(id, func(l *state.Layer) {
		l.StartX += dx
		l.StartY += dy
		l.EndX += dx
		l.EndY += dy
		if l.Curved {
			l.Control1X += dx
			l.Control1Y += dy
			l.Control2X += dx
			l.Control2Y += dy
		}
		l.SetBounds(l.Bounds().Translate(dx, dy))
	})
}

// TrySnapEnds attempts to anchor both endpoints of a freshly drawn
// connector to nearby shapes: an endpoint landing on (or within
// AutoSnapRadius of) a non-connector layer binds to its nearest side. The
// topmost matching layer wins.
func TrySnapEnds(tx *state.Tx, id string) {
	l, ok := tx.Get(id)
	if !ok || !l.Type.IsConnector() {
		return
	}

	if target, side, ok := findAnchor(tx, l.Start(), id); ok {
		l.SourceNoteID = target
		l.SourceSide = side
		l.SnappedToSource = true
	}
	if target, side, ok := findAnchor(tx, l.End(), id); ok {
		l.TargetNoteID = target
		l.TargetSide = side
		l.SnappedToTarget = true
	}
	tx.Set(id, l)
	MaintainTx(tx, id)
}

func findAnchor(tx *state.Tx, p geometry.Point, exclude string) (string, state.Side, bool) {
	ids := tx.IDs()
	// Front to back so the topmost shape wins.
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		if id == exclude {
			continue
		}
		l, ok := tx.Get(id)
		if !ok || l.Type.IsConnector() {
			continue
		}
		if !l.Bounds().Inflate(AutoSnapRadius).Contains(p) {
			continue
		}
		return id, nearestSide(l.Bounds(), p), true
	}
	return "", "", false
}

// nearestSide picks the bounds edge closest to the point; horizontal sides
// win ties.
func nearestSide(b geometry.Rect, p geometry.Point) state.Side {
	left := math.Abs(p.X - b.X)
	right := math.Abs(p.X - b.Right())
	top := math.Abs(p.Y - b.Y)
	bottom := math.Abs(p.Y - b.Bottom())

	side := state.SideLeft
	best := left
	if right < best {
		side, best = state.SideRight, right
	}
	if top < best {
		side, best = state.SideTop, top
	}
	if bottom < best {
		side, best = state.SideBottom, bottom
	}
	return side
}

// ReconcileAll runs the maintainer over every connector in one transaction.
// It is a no-op when nothing has moved.
func ReconcileAll(doc *state.Document) {
	doc.Transaction(func(tx *state.Tx) {
		for _, id := range tx.IDs() {
			MaintainTx(tx, id)
		}
	})
}

// StartReconciler runs ReconcileAll on a fixed interval until the context
// is cancelled, catching connectors whose per-mutation trigger was missed.
func StartReconciler(ctx context.Context, doc *state.Document, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Printf("[CONNECTOR] reconciler stopped")
				return
			case <-ticker.C:
				ReconcileAll(doc)
			}
		}
	}()
}
