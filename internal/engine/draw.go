package engine

import (
	"canvasboard/internal/connector"
	"canvasboard/internal/geometry"
	"canvasboard/internal/state"
)

// defaultFill is the fill assigned to newly created layers until the
// toolbar picks another one.
var defaultFill = state.Color{R: 252, G: 225, B: 156}

// SetInsertFill changes the fill used for subsequently inserted layers.
func (e *Engine) SetInsertFill(c state.Color) {
	e.insertFill = c
}

// InsertFill returns the fill used for newly inserted layers.
func (e *Engine) InsertFill() state.Color { return e.insertFill }

// SetInsertStrokeWidth changes the outline width used for subsequently
// inserted layers.
func (e *Engine) SetInsertStrokeWidth(w float64) {
	if w > 0 {
		e.insertStroke = w
	}
}

// InsertStrokeWidth returns the outline width used for newly inserted
// layers.
func (e *Engine) InsertStrokeWidth() float64 { return e.insertStroke }

// moveDrawing updates the live endpoint of a drag insertion, applying the
// angle constraint for connectors or the square constraint for shapes when
// the modifier is held.
func (e *Engine) moveDrawing(ev PointerEvent) {
	p := ev.Point()
	if ev.Shift {
		switch e.st.PendingType {
		case state.TypeArrow, state.TypeLine:
			p = geometry.ConstrainToAngle(e.st.Origin, p)
		case state.TypeRectangle, state.TypeEllipse, state.TypeFrame:
			p = geometry.ConstrainToSquare(e.st.Origin, p)
		case state.TypeText, state.TypeNote, state.TypePath, state.TypeImage,
			state.TypeVideo, state.TypeFile, state.TypeTodo, state.TypeTable:
		}
	}
	e.st.Current = p
}

// finishDrawing commits the drag insertion: drag-derived bounds when the
// pointer moved, otherwise a default-sized layer at the origin. Connectors
// attempt an automatic snap-to-shape at both endpoints before commit.
func (e *Engine) finishDrawing(ev PointerEvent) {
	origin := e.st.Origin
	current := e.st.Current
	dragged := current != origin
	pending := e.st.PendingType
	preset := e.st.FramePreset

	id := state.NewLayerID()
	committed := e.doc.Transaction(func(tx *state.Tx) {
		l := state.Layer{Type: pending, Fill: e.insertFill, StrokeWidth: e.insertStroke}

		switch pending {
		case state.TypeArrow, state.TypeLine:
			end := current
			if !dragged {
				end = geometry.Point{X: origin.X + DefaultShapeSize.X, Y: origin.Y}
			}
			l.StartX, l.StartY = origin.X, origin.Y
			l.EndX, l.EndY = end.X, end.Y
			l.SetBounds(geometry.BoundsOf([]geometry.Point{origin, end}).Inflate(connector.BoundsMargin))
			tx.Set(id, l)
			tx.Push(id)
			connector.TrySnapEnds(tx, id)
			return
		case state.TypeFrame:
			l.SetBounds(frameInsertBounds(origin, current, dragged, preset))
		case state.TypeRectangle, state.TypeEllipse, state.TypeText, state.TypeNote,
			state.TypePath, state.TypeImage, state.TypeVideo, state.TypeFile,
			state.TypeTodo, state.TypeTable:
			if dragged {
				l.SetBounds(geometry.FromPoints(origin, current))
			} else {
				l.SetBounds(defaultBounds(pending, origin))
			}
		}
		tx.Set(id, l)
		tx.Push(id)
	})

	// A rejected mutation leaves the document untouched and the mode as-is.
	if !committed {
		return
	}
	e.sel.SetSelection([]string{id}, true)
	e.st = CanvasState{Mode: ModeNone}
	e.scheduleResolve()
}

// finishClickInsert creates a click-insert layer (Text, Note) directly from
// Inserting on pointer-up, without entering Drawing.
func (e *Engine) finishClickInsert(ev PointerEvent) {
	p := ev.Point()
	if !p.Finite() {
		return
	}
	pending := e.st.PendingType
	id := state.NewLayerID()
	committed := e.doc.Transaction(func(tx *state.Tx) {
		l := state.Layer{Type: pending, Fill: e.insertFill, StrokeWidth: e.insertStroke}
		l.SetBounds(defaultBounds(pending, p))
		tx.Set(id, l)
		tx.Push(id)
	})
	if !committed {
		return
	}
	e.sel.SetSelection([]string{id}, true)
	e.st = CanvasState{Mode: ModeNone}
	e.scheduleResolve()
}

// movePencil appends a freehand sample while the primary button is held,
// skipping exact duplicates of the previous point.
func (e *Engine) movePencil(ev PointerEvent) {
	if len(e.st.Stroke) == 0 || ev.Buttons&ButtonPrimary == 0 {
		return
	}
	p := ev.Point()
	last := e.st.Stroke[len(e.st.Stroke)-1]
	if last.X == p.X && last.Y == p.Y {
		return
	}
	e.st.Stroke = append(e.st.Stroke, state.PathPoint{X: p.X, Y: p.Y, Pressure: ev.Pressure})
}

// finishPencil commits the stroke as a Path layer when it has at least two
// points, otherwise discards it.
func (e *Engine) finishPencil() {
	stroke := e.st.Stroke
	e.st = CanvasState{Mode: ModeNone}
	if len(stroke) < 2 {
		return
	}

	points := make([]geometry.Point, len(stroke))
	for i, p := range stroke {
		points[i] = geometry.Point{X: p.X, Y: p.Y}
	}
	bounds := geometry.BoundsOf(points)

	// Points are stored layer-local so resize can rescale them.
	local := make([]state.PathPoint, len(stroke))
	for i, p := range stroke {
		local[i] = state.PathPoint{X: p.X - bounds.X, Y: p.Y - bounds.Y, Pressure: p.Pressure}
	}

	id := state.NewLayerID()
	committed := e.doc.Transaction(func(tx *state.Tx) {
		l := state.Layer{Type: state.TypePath, Fill: e.insertFill, StrokeWidth: e.insertStroke, Points: local}
		l.SetBounds(bounds)
		tx.Set(id, l)
		tx.Push(id)
	})
	if committed {
		e.scheduleResolve()
	}
}

func frameInsertBounds(origin, current geometry.Point, dragged bool, preset string) geometry.Rect {
	if dragged {
		return geometry.FromPoints(origin, current)
	}
	if size, ok := FramePresets[preset]; ok {
		return geometry.Rect{X: origin.X, Y: origin.Y, Width: size.X, Height: size.Y}
	}
	return geometry.Rect{X: origin.X, Y: origin.Y, Width: DefaultFrameSize.X, Height: DefaultFrameSize.Y}
}

func defaultBounds(t state.LayerType, origin geometry.Point) geometry.Rect {
	size := DefaultShapeSize
	switch t {
	case state.TypeNote, state.TypeTodo:
		size = DefaultNoteSize
	case state.TypeText:
		size = DefaultTextSize
	case state.TypeFrame:
		size = DefaultFrameSize
	case state.TypeRectangle, state.TypeEllipse, state.TypePath,
		state.TypeArrow, state.TypeLine, state.TypeImage, state.TypeVideo,
		state.TypeFile, state.TypeTable:
	}
	return geometry.Rect{X: origin.X, Y: origin.Y, Width: size.X, Height: size.Y}
}
