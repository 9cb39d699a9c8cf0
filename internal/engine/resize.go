package engine

import (
	"canvasboard/internal/connector"
	"canvasboard/internal/geometry"
	"canvasboard/internal/snap"
	"canvasboard/internal/state"
)

// beginResize captures a full geometric snapshot of every selected layer
// and enters Resizing or GroupResizing. All subsequent resize math is
// computed against the snapshot, never against live values.
func (e *Engine) beginResize(handle geometry.Side, origin geometry.Point) {
	selected := e.sel.Selection()
	if len(selected) == 0 {
		return
	}

	snapshots := make(map[string]Snapshot, len(selected))
	var group geometry.Rect
	first := true
	for _, id := range selected {
		l, ok := e.doc.Get(id)
		if !ok {
			continue
		}
		snapshots[id] = Snapshot{
			Bounds: l.Bounds(),
			Start:  l.Start(),
			End:    l.End(),
			Points: append([]state.PathPoint(nil), l.Points...),
		}
		if first {
			group = l.Bounds()
			first = false
		} else {
			group = group.Union(l.Bounds())
		}
	}
	if first {
		return
	}

	mode := ModeResizing
	if len(snapshots) > 1 {
		mode = ModeGroupResizing
	}
	e.history.Pause()
	e.st = CanvasState{
		Mode:        mode,
		Origin:      origin,
		Current:     origin,
		Handle:      handle,
		Snapshots:   snapshots,
		GroupBounds: group,
	}
}

// moveResizing recomputes bounds from the snapshot and the live target
// point, snapping the target against non-selected layers first.
func (e *Engine) moveResizing(ev PointerEvent) {
	target := ev.Point()
	selected := e.sel.Selection()
	if len(selected) == 0 {
		return
	}

	var guides []snap.Guide
	committed := e.doc.Transaction(func(tx *state.Tx) {
		inSelection := make(map[string]bool, len(e.st.Snapshots))
		for id := range e.st.Snapshots {
			inSelection[id] = true
		}
		res := snap.Adjust(geometry.Rect{X: target.X, Y: target.Y}, snapCandidates(tx, inSelection), nil, SnapThreshold)
		target = geometry.Point{X: res.X, Y: res.Y}
		guides = res.Guides

		if e.st.Mode == ModeResizing {
			e.resizeSingle(tx, selected[0], target, ev)
		} else {
			e.resizeGroup(tx, target, ev)
		}

		for id := range e.st.Snapshots {
			connector.OnLayerChanged(tx, id)
		}
	})
	if committed {
		e.guides = guides
		e.st.Current = target
	}
}

func (e *Engine) resizeSingle(tx *state.Tx, id string, target geometry.Point, ev PointerEvent) {
	snapshot, ok := e.st.Snapshots[id]
	if !ok {
		return
	}
	l, exists := tx.Get(id)
	if !exists {
		return
	}

	var bounds geometry.Rect
	switch {
	case l.Type.ForcesSquareAspect():
		bounds = geometry.ConstrainResizeToAspectRatio(snapshot.Bounds, e.st.Handle, target, 1)
	case ev.Shift && snapshot.Bounds.Height > 0:
		ratio := snapshot.Bounds.Width / snapshot.Bounds.Height
		bounds = geometry.ConstrainResizeToAspectRatio(snapshot.Bounds, e.st.Handle, target, ratio)
	default:
		bounds = geometry.ResizeBounds(snapshot.Bounds, e.st.Handle, target)
	}
	applyResize(tx, id, snapshot, bounds)
}

// resizeGroup scales every selected layer proportionally from its snapshot
// by the overall group scale factor.
func (e *Engine) resizeGroup(tx *state.Tx, target geometry.Point, ev PointerEvent) {
	old := e.st.GroupBounds
	var group geometry.Rect
	if ev.Shift && old.Height > 0 {
		group = geometry.ConstrainResizeToAspectRatio(old, e.st.Handle, target, old.Width/old.Height)
	} else {
		group = geometry.ResizeBounds(old, e.st.Handle, target)
	}

	sx, sy := 1.0, 1.0
	if old.Width > 0 {
		sx = group.Width / old.Width
	}
	if old.Height > 0 {
		sy = group.Height / old.Height
	}

	for id, snapshot := range e.st.Snapshots {
		bounds := geometry.Rect{
			X:      group.X + (snapshot.Bounds.X-old.X)*sx,
			Y:      group.Y + (snapshot.Bounds.Y-old.Y)*sy,
			Width:  snapshot.Bounds.Width * sx,
			Height: snapshot.Bounds.Height * sy,
		}
		applyResize(tx, id, snapshot, bounds)
	}
}

// applyResize writes the new bounds derived from a snapshot onto a layer,
// rescaling freehand points and connector endpoints by the same per-axis
// factors as the bounding box. A vanished layer is a silent no-op.
func applyResize(tx *state.Tx, id string, snapshot Snapshot, bounds geometry.Rect) {
	sx, sy := 1.0, 1.0
	if snapshot.Bounds.Width > 0 {
		sx = bounds.Width / snapshot.Bounds.Width
	}
	if snapshot.Bounds.Height > 0 {
		sy = bounds.Height / snapshot.Bounds.Height
	}

	tx.Update(id, func(l *state.Layer) {
		switch l.Type {
		case state.TypePath:
			points := make([]state.PathPoint, len(snapshot.Points))
			for i, p := range snapshot.Points {
				points[i] = state.PathPoint{X: p.X * sx, Y: p.Y * sy, Pressure: p.Pressure}
			}
			l.Points = points
		case state.TypeArrow, state.TypeLine:
			l.StartX = bounds.X + (snapshot.Start.X-snapshot.Bounds.X)*sx
			l.StartY = bounds.Y + (snapshot.Start.Y-snapshot.Bounds.Y)*sy
			l.EndX = bounds.X + (snapshot.End.X-snapshot.Bounds.X)*sx
			l.EndY = bounds.Y + (snapshot.End.Y-snapshot.Bounds.Y)*sy
		case state.TypeRectangle, state.TypeEllipse, state.TypeText, state.TypeNote,
			state.TypeFrame, state.TypeImage, state.TypeVideo, state.TypeFile,
			state.TypeTodo, state.TypeTable:
		}
		l.SetBounds(bounds)
	})
}
