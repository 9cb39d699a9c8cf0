package engine

import (
	"canvasboard/internal/connector"
	"canvasboard/internal/frames"
	"canvasboard/internal/geometry"
	"canvasboard/internal/snap"
	"canvasboard/internal/state"
)

// moveTranslating applies one incremental translate step: offset from the
// last anchor point, snapped via the first moved layer, applied to the
// selection plus every descendant of each selected frame.
func (e *Engine) moveTranslating(ev PointerEvent) {
	p := ev.Point()
	dx := p.X - e.st.LastPoint.X
	dy := p.Y - e.st.LastPoint.Y
	if dx == 0 && dy == 0 {
		return
	}
	selected := e.sel.Selection()
	if len(selected) == 0 {
		e.st.LastPoint = p
		return
	}

	var guides []snap.Guide
	committed := e.doc.Transaction(func(tx *state.Tx) {
		movedIDs, moved := movedSet(tx, selected)
		selectedSet := make(map[string]bool, len(selected))
		for _, id := range selected {
			selectedSet[id] = true
		}

		// Only the first layer in the drag is snapped; the rest carry the
		// same corrected offset.
		adjDX, adjDY := dx, dy
		if first, ok := tx.Get(selected[0]); ok {
			proposed := first.Bounds().Translate(dx, dy)
			res := snap.Adjust(proposed, snapCandidates(tx, moved), parentFrameBounds(tx, selected[0], moved), SnapThreshold)
			adjDX += res.X - proposed.X
			adjDY += res.Y - proposed.Y
			guides = res.Guides
		}

		for _, id := range movedIDs {
			l, ok := tx.Get(id)
			if !ok {
				continue
			}
			if l.Type.IsConnector() {
				// Endpoint-preserving path, not naive bbox translation.
				connector.Translate(tx, id, adjDX, adjDY)
				continue
			}
			tx.Update(id, func(l *state.Layer) {
				l.X += adjDX
				l.Y += adjDY
			})
		}

		for _, id := range movedIDs {
			connector.OnLayerChanged(tx, id)
		}

		// Auto-fit moved frames whose contents were dragged along wholesale.
		for _, id := range movedIDs {
			l, ok := tx.Get(id)
			if !ok || l.Type != state.TypeFrame || !l.AutoResize {
				continue
			}
			if hasSelectedChild(tx, id, selectedSet) {
				continue
			}
			frames.FitToChildren(tx, id)
		}
	})

	// An aborted mutation leaves the document unchanged and the anchor
	// where it was: no partial offset is ever observable.
	if committed {
		e.guides = guides
		e.st.LastPoint = p
	}
}

// movedSet returns the layers a translate moves: the selection plus, for
// every selected frame, all of its descendants recursively. A frame that
// merely contains a selected child but is not itself selected (and is not
// a descendant of a selected frame) never enters the set.
func movedSet(tx *state.Tx, selected []string) ([]string, map[string]bool) {
	moved := make(map[string]bool, len(selected))
	var ids []string
	add := func(id string) {
		if !moved[id] {
			moved[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range selected {
		add(id)
	}
	for _, id := range selected {
		l, ok := tx.Get(id)
		if !ok || l.Type != state.TypeFrame {
			continue
		}
		for _, desc := range frames.Descendants(tx, id) {
			add(desc)
		}
	}
	return ids, moved
}

// snapCandidates returns the bounds of every layer not taking part in the
// move.
func snapCandidates(tx *state.Tx, moved map[string]bool) []snap.Candidate {
	var out []snap.Candidate
	for _, id := range tx.IDs() {
		if moved[id] {
			continue
		}
		l, ok := tx.Get(id)
		if !ok {
			continue
		}
		out = append(out, snap.Candidate{ID: id, Bounds: l.Bounds()})
	}
	return out
}

// parentFrameBounds returns the enclosing frame's bounds for snapping,
// unless that frame is itself moving.
func parentFrameBounds(tx *state.Tx, layerID string, moved map[string]bool) *geometry.Rect {
	parentID := frames.ParentFrame(tx, layerID)
	if parentID == "" || moved[parentID] {
		return nil
	}
	parent, ok := tx.Get(parentID)
	if !ok {
		return nil
	}
	b := parent.Bounds()
	return &b
}

func hasSelectedChild(tx *state.Tx, frameID string, selected map[string]bool) bool {
	frame, ok := tx.Get(frameID)
	if !ok {
		return false
	}
	for _, child := range frame.ChildIDs {
		if selected[child] {
			return true
		}
	}
	return false
}
