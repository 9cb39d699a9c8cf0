package connector

import (
	"math"
	"testing"

	"canvasboard/internal/geometry"
	"canvasboard/internal/state"
)

func addNote(doc *state.Document, id string, x, y, w, h float64) {
	doc.Transaction(func(tx *state.Tx) {
		tx.Set(id, state.Layer{Type: state.TypeNote, X: x, Y: y, Width: w, Height: h})
		tx.Push(id)
	})
}

func addArrow(doc *state.Document, id string, sx, sy, ex, ey float64) {
	doc.Transaction(func(tx *state.Tx) {
		l := state.Layer{Type: state.TypeArrow, StartX: sx, StartY: sy, EndX: ex, EndY: ey}
		l.SetBounds(geometry.BoundsOf([]geometry.Point{{X: sx, Y: sy}, {X: ex, Y: ey}}).Inflate(BoundsMargin))
		tx.Set(id, l)
		tx.Push(id)
	})
}

func TestTrySnapEndsAnchorsToNearestSide(t *testing.T) {
	doc := state.NewDocument()
	addNote(doc, "note", 300, 100, 120, 80)
	// End lands 2px left of the note's left edge, at mid height.
	addArrow(doc, "arrow", 100, 140, 298, 140)

	doc.Transaction(func(tx *state.Tx) {
		TrySnapEnds(tx, "arrow")
	})

	arrow, _ := doc.Get("arrow")
	if arrow.TargetNoteID != "note" {
		t.Fatalf("TargetNoteID = %q, want note", arrow.TargetNoteID)
	}
	if arrow.TargetSide != state.SideLeft {
		t.Fatalf("TargetSide = %q, want left", arrow.TargetSide)
	}
	if !arrow.SnappedToTarget {
		t.Error("SnappedToTarget not set")
	}
	// The endpoint moves onto the left edge midpoint.
	if arrow.EndX != 300 || arrow.EndY != 140 {
		t.Errorf("end = (%v,%v), want (300,140)", arrow.EndX, arrow.EndY)
	}
	// The start is over empty canvas and stays loose.
	if arrow.SourceNoteID != "" {
		t.Errorf("SourceNoteID = %q, want empty", arrow.SourceNoteID)
	}
	// An anchored connector becomes curved.
	if !arrow.Curved {
		t.Error("anchored connector should be curved")
	}
}

func TestTrySnapEndsMissesDistantShapes(t *testing.T) {
	doc := state.NewDocument()
	addNote(doc, "note", 300, 100, 120, 80)
	addArrow(doc, "arrow", 100, 140, 280, 140) // 20px short of the note

	doc.Transaction(func(tx *state.Tx) {
		TrySnapEnds(tx, "arrow")
	})

	arrow, _ := doc.Get("arrow")
	if arrow.TargetNoteID != "" {
		t.Errorf("TargetNoteID = %q, want empty", arrow.TargetNoteID)
	}
	if arrow.Curved {
		t.Error("unanchored connector must stay straight")
	}
}

func TestTopmostShapeWinsAnchor(t *testing.T) {
	doc := state.NewDocument()
	addNote(doc, "below", 0, 0, 200, 200)
	addNote(doc, "above", 0, 0, 200, 200)
	addArrow(doc, "arrow", 500, 500, 100, 100)

	doc.Transaction(func(tx *state.Tx) {
		TrySnapEnds(tx, "arrow")
	})

	arrow, _ := doc.Get("arrow")
	if arrow.TargetNoteID != "above" {
		t.Errorf("TargetNoteID = %q, want above (topmost)", arrow.TargetNoteID)
	}
}

func TestOnLayerChangedReanchors(t *testing.T) {
	doc := state.NewDocument()
	addNote(doc, "note", 300, 100, 120, 80)
	addArrow(doc, "arrow", 100, 140, 298, 140)
	doc.Transaction(func(tx *state.Tx) {
		TrySnapEnds(tx, "arrow")
	})

	// Move the note; the anchored end follows, the free end does not.
	doc.Transaction(func(tx *state.Tx) {
		tx.Update("note", func(l *state.Layer) {
			l.X += 100
			l.Y += 50
		})
		OnLayerChanged(tx, "note")
	})

	arrow, _ := doc.Get("arrow")
	if arrow.EndX != 400 || arrow.EndY != 190 {
		t.Errorf("end = (%v,%v), want (400,190)", arrow.EndX, arrow.EndY)
	}
	if arrow.StartX != 100 || arrow.StartY != 140 {
		t.Errorf("free start moved: (%v,%v)", arrow.StartX, arrow.StartY)
	}
}

func TestMaintainIdempotent(t *testing.T) {
	doc := state.NewDocument()
	addNote(doc, "note", 300, 100, 120, 80)
	addArrow(doc, "arrow", 100, 140, 298, 140)
	doc.Transaction(func(tx *state.Tx) {
		TrySnapEnds(tx, "arrow")
	})
	ReconcileAll(doc)

	var ops int
	doc.SetBroadcast(func(state.Op) { ops++ })
	ReconcileAll(doc)
	ReconcileAll(doc)
	if ops != 0 {
		t.Fatalf("reconcile on settled document emitted %d ops, want 0", ops)
	}
}

func TestMaintainSkipsDeletedAnchor(t *testing.T) {
	doc := state.NewDocument()
	addNote(doc, "note", 300, 100, 120, 80)
	addArrow(doc, "arrow", 100, 140, 298, 140)
	doc.Transaction(func(tx *state.Tx) {
		TrySnapEnds(tx, "arrow")
	})
	doc.Transaction(func(tx *state.Tx) {
		tx.Delete("note")
	})

	// The sweep must not fail or corrupt the connector.
	ReconcileAll(doc)
	arrow, ok := doc.Get("arrow")
	if !ok {
		t.Fatal("arrow vanished")
	}
	if !arrow.Bounds().Finite() {
		t.Errorf("bounds corrupt: %+v", arrow.Bounds())
	}
}

func TestCurveReachIsCapped(t *testing.T) {
	doc := state.NewDocument()
	addNote(doc, "note", 5000, 100, 120, 80)
	addArrow(doc, "arrow", 0, 140, 4998, 140)
	doc.Transaction(func(tx *state.Tx) {
		TrySnapEnds(tx, "arrow")
	})

	arrow, _ := doc.Get("arrow")
	reach := geometry.Dist(arrow.End(), geometry.Point{X: arrow.Control2X, Y: arrow.Control2Y})
	if reach > CurveMax+1e-9 {
		t.Errorf("control reach = %v, exceeds cap %v", reach, CurveMax)
	}
}

func TestTranslateMovesEndpointsAndControls(t *testing.T) {
	doc := state.NewDocument()
	addNote(doc, "note", 300, 100, 120, 80)
	addArrow(doc, "arrow", 100, 140, 298, 140)
	doc.Transaction(func(tx *state.Tx) {
		TrySnapEnds(tx, "arrow")
	})
	before, _ := doc.Get("arrow")

	doc.Transaction(func(tx *state.Tx) {
		Translate(tx, "arrow", 10, -5)
	})

	after, _ := doc.Get("arrow")
	if after.StartX != before.StartX+10 || after.StartY != before.StartY-5 {
		t.Errorf("start = (%v,%v)", after.StartX, after.StartY)
	}
	if after.EndX != before.EndX+10 || after.EndY != before.EndY-5 {
		t.Errorf("end = (%v,%v)", after.EndX, after.EndY)
	}
	if after.Control1X != before.Control1X+10 || after.Control2Y != before.Control2Y-5 {
		t.Errorf("controls did not follow")
	}
	if after.X != before.X+10 || after.Y != before.Y-5 {
		t.Errorf("bounds did not follow")
	}
}

func TestBoundsContainEverything(t *testing.T) {
	doc := state.NewDocument()
	addNote(doc, "note", 300, 100, 120, 80)
	addArrow(doc, "arrow", 100, 300, 298, 140)
	doc.Transaction(func(tx *state.Tx) {
		TrySnapEnds(tx, "arrow")
	})

	arrow, _ := doc.Get("arrow")
	b := arrow.Bounds()
	for _, p := range []geometry.Point{
		arrow.Start(), arrow.End(),
		{X: arrow.Control1X, Y: arrow.Control1Y},
		{X: arrow.Control2X, Y: arrow.Control2Y},
	} {
		if !b.Contains(p) {
			t.Errorf("bounds %+v do not contain %+v", b, p)
		}
	}
	if b.Width < BoundsMargin || b.Height < BoundsMargin {
		t.Errorf("bounds too tight: %+v", b)
	}
}

func TestNearestSideTieGoesHorizontal(t *testing.T) {
	b := geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	// Equidistant from the left and top edges.
	if got := nearestSide(b, geometry.Point{X: 10, Y: 10}); got != state.SideLeft {
		t.Errorf("nearestSide = %q, want left on tie", got)
	}
	if got := nearestSide(b, geometry.Point{X: 95, Y: 50}); got != state.SideRight {
		t.Errorf("nearestSide = %q, want right", got)
	}
	if got := nearestSide(b, geometry.Point{X: 50, Y: math.Nextafter(0, -1)}); got != state.SideTop {
		t.Errorf("nearestSide = %q, want top", got)
	}
}
