// Package engine is the canvas interaction controller: it interprets
// canonical pointer events into editing modes (marquee select, translate,
// resize, draw-insert, freehand) and applies the resulting mutations to the
// shared document through atomic transactions, consulting the snap engine
// and triggering the frame resolver and connector maintainer as post-passes.
package engine

import (
	"log"
	"time"

	"canvasboard/internal/frames"
	"canvasboard/internal/geometry"
	"canvasboard/internal/presence"
	"canvasboard/internal/snap"
	"canvasboard/internal/state"
)

// Engine runs the canvas mode state machine. All methods must be called
// from the UI thread; the engine never blocks.
type Engine struct {
	doc     *state.Document
	sel     *presence.Channel
	history presence.History

	st           CanvasState
	guides       []snap.Guide
	insertFill   state.Color
	insertStroke float64
	resolveTimer *time.Timer
}

// New creates an engine over the shared document and selection channel.
// A nil history uses the no-op recorder.
func New(doc *state.Document, sel *presence.Channel, history presence.History) *Engine {
	if history == nil {
		history = presence.NopHistory{}
	}
	return &Engine{
		doc:          doc,
		sel:          sel,
		history:      history,
		st:           CanvasState{Mode: ModeNone},
		insertFill:   defaultFill,
		insertStroke: state.DefaultStrokeWidth,
	}
}

// State returns the current interaction state for rendering.
func (e *Engine) State() CanvasState { return e.st }

// Guides returns the active snap guide lines for rendering.
func (e *Engine) Guides() []snap.Guide { return e.guides }

// Document returns the engine's document.
func (e *Engine) Document() *state.Document { return e.doc }

// Selection returns the engine's selection channel.
func (e *Engine) Selection() *presence.Channel { return e.sel }

// ArmInsert arms the insertion tool with a pending layer type; the next
// pointer-down starts a drag insertion (or, for click-insert types, the
// next pointer-up creates the layer directly).
func (e *Engine) ArmInsert(t state.LayerType) {
	logTransition(e.st.Mode, ModeInserting)
	e.st = CanvasState{Mode: ModeInserting, PendingType: t}
}

// ArmFrameInsert arms frame insertion with a named size preset. An unknown
// preset name falls back to drag/default sizing.
func (e *Engine) ArmFrameInsert(preset string) {
	logTransition(e.st.Mode, ModeInserting)
	e.st = CanvasState{Mode: ModeInserting, PendingType: state.TypeFrame, FramePreset: preset}
}

// ArmPencil arms the freehand tool.
func (e *Engine) ArmPencil() {
	logTransition(e.st.Mode, ModePencil)
	e.st = CanvasState{Mode: ModePencil}
}

// CancelTool disarms any armed tool and returns to idle.
func (e *Engine) CancelTool() {
	logTransition(e.st.Mode, ModeNone)
	e.st = CanvasState{Mode: ModeNone}
	e.guides = nil
}

// DeleteSelection removes every selected layer and reruns the frame
// containment pass so deleted ids do not linger in frame child lists.
func (e *Engine) DeleteSelection() {
	ids := e.sel.Selection()
	if len(ids) == 0 {
		return
	}
	committed := e.doc.Transaction(func(tx *state.Tx) {
		for _, id := range ids {
			tx.Delete(id)
		}
	})
	if !committed {
		return
	}
	e.sel.SetSelection(nil, true)
	e.ResolveNow()
}

// PointerDown feeds a pointer-down event into the state machine.
func (e *Engine) PointerDown(ev PointerEvent) {
	p := ev.Point()
	if !p.Finite() {
		return
	}

	switch e.st.Mode {
	case ModeInserting:
		if clickInsertType(e.st.PendingType) {
			// Created on pointer-up without entering Drawing.
			e.st.Origin = p
			return
		}
		e.st = CanvasState{
			Mode:        ModeDrawing,
			Origin:      p,
			Current:     p,
			PendingType: e.st.PendingType,
			FramePreset: e.st.FramePreset,
		}

	case ModePencil:
		e.st.Origin = p
		e.st.Stroke = []state.PathPoint{{X: p.X, Y: p.Y, Pressure: ev.Pressure}}

	case ModeNone:
		if handle, ok := e.handleAt(p); ok {
			e.beginResize(handle, p)
			return
		}
		if id, ok := e.hitTest(p); ok {
			if !e.sel.Contains(id) {
				if ev.Shift {
					e.sel.SetSelection(append(e.sel.Selection(), id), true)
				} else {
					e.sel.SetSelection([]string{id}, true)
				}
			}
			e.history.Pause()
			e.st = CanvasState{Mode: ModeTranslating, Origin: p, LastPoint: p}
			return
		}
		e.st = CanvasState{Mode: ModePressing, Origin: p, Current: p}

	case ModePressing, ModeSelectionNet, ModeTranslating,
		ModeResizing, ModeGroupResizing, ModeDrawing:
		// A second pointer-down mid-interaction is ignored; the gesture
		// arbiter synthesizes an up first when handing off.
	}
}

// PointerMove feeds a pointer-move event into the state machine.
func (e *Engine) PointerMove(ev PointerEvent) {
	p := ev.Point()
	if !p.Finite() {
		return
	}

	switch e.st.Mode {
	case ModePressing:
		manhattan := abs(p.X-e.st.Origin.X) + abs(p.Y-e.st.Origin.Y)
		if manhattan > DragStartDistance {
			e.st = CanvasState{Mode: ModeSelectionNet, Origin: e.st.Origin, Current: p}
			e.updateSelectionNet()
		}
	case ModeSelectionNet:
		e.st.Current = p
		e.updateSelectionNet()
	case ModeTranslating:
		e.moveTranslating(ev)
	case ModeResizing, ModeGroupResizing:
		e.moveResizing(ev)
	case ModeDrawing:
		e.moveDrawing(ev)
	case ModePencil:
		e.movePencil(ev)
	case ModeNone, ModeInserting:
	}
}

// PointerUp feeds a pointer-up event into the state machine, committing
// whatever interaction is in progress.
func (e *Engine) PointerUp(ev PointerEvent) {
	switch e.st.Mode {
	case ModePressing:
		if !ev.Shift {
			e.sel.SetSelection(nil, true)
		}
		e.st = CanvasState{Mode: ModeNone}
	case ModeSelectionNet:
		// Selection was updated live; committing is just leaving the mode.
		e.sel.SetSelection(e.sel.Selection(), true)
		e.st = CanvasState{Mode: ModeNone}
	case ModeTranslating:
		e.history.Resume()
		e.guides = nil
		e.st = CanvasState{Mode: ModeNone}
		e.scheduleResolve()
	case ModeResizing, ModeGroupResizing:
		e.history.Resume()
		e.guides = nil
		e.st = CanvasState{Mode: ModeNone}
		e.scheduleResolve()
	case ModeInserting:
		if clickInsertType(e.st.PendingType) {
			e.finishClickInsert(ev)
		}
	case ModeDrawing:
		e.finishDrawing(ev)
	case ModePencil:
		e.finishPencil()
	case ModeNone:
	}
}

// PointerCancel is treated identically to pointer-up: the interaction is
// finalized at its last known state, never left dangling.
func (e *Engine) PointerCancel(ev PointerEvent) {
	e.PointerUp(ev)
}

func clickInsertType(t state.LayerType) bool {
	return t == state.TypeText || t == state.TypeNote
}

func (e *Engine) updateSelectionNet() {
	marquee := e.st.Marquee()
	var ids []string
	for _, l := range e.doc.Layers() {
		if marquee.Overlaps(l.Bounds()) {
			ids = append(ids, l.ID)
		}
	}
	// Live updates are not history-worthy; only the commit on pointer-up is.
	e.sel.SetSelection(ids, false)
}

// hitTest returns the topmost layer containing the point.
func (e *Engine) hitTest(p geometry.Point) (string, bool) {
	layers := e.doc.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i].Bounds().Contains(p) {
			return layers[i].ID, true
		}
	}
	return "", false
}

// selectionBounds returns the union of the selected layers' bounds.
func (e *Engine) selectionBounds() (geometry.Rect, bool) {
	var bounds geometry.Rect
	found := false
	for _, id := range e.sel.Selection() {
		l, ok := e.doc.Get(id)
		if !ok {
			continue
		}
		if !found {
			bounds = l.Bounds()
			found = true
		} else {
			bounds = bounds.Union(l.Bounds())
		}
	}
	return bounds, found
}

// handleAt reports which resize handle of the selection bounds, if any,
// lies under the point.
func (e *Engine) handleAt(p geometry.Point) (geometry.Side, bool) {
	bounds, ok := e.selectionBounds()
	if !ok {
		return 0, false
	}
	handles := []struct {
		side geometry.Side
		at   geometry.Point
	}{
		{geometry.SideLeft | geometry.SideTop, geometry.Point{X: bounds.X, Y: bounds.Y}},
		{geometry.SideRight | geometry.SideTop, geometry.Point{X: bounds.Right(), Y: bounds.Y}},
		{geometry.SideLeft | geometry.SideBottom, geometry.Point{X: bounds.X, Y: bounds.Bottom()}},
		{geometry.SideRight | geometry.SideBottom, geometry.Point{X: bounds.Right(), Y: bounds.Bottom()}},
		{geometry.SideTop, geometry.Point{X: bounds.CenterX(), Y: bounds.Y}},
		{geometry.SideBottom, geometry.Point{X: bounds.CenterX(), Y: bounds.Bottom()}},
		{geometry.SideLeft, geometry.Point{X: bounds.X, Y: bounds.CenterY()}},
		{geometry.SideRight, geometry.Point{X: bounds.Right(), Y: bounds.CenterY()}},
	}
	for _, h := range handles {
		if abs(p.X-h.at.X) <= HandleSize && abs(p.Y-h.at.Y) <= HandleSize {
			return h.side, true
		}
	}
	return 0, false
}

// scheduleResolve runs the frame containment pass after a short delay, so
// the just-committed geometry is visible to the resolver and resolution
// never blocks the interactive frame.
func (e *Engine) scheduleResolve() {
	if e.resolveTimer != nil {
		e.resolveTimer.Stop()
	}
	doc := e.doc
	e.resolveTimer = time.AfterFunc(ResolveDelay, func() {
		frames.Resolve(doc)
	})
}

// ResolveNow runs the frame containment pass immediately. Used by tests
// and by hosts that want deterministic resolution.
func (e *Engine) ResolveNow() {
	if e.resolveTimer != nil {
		e.resolveTimer.Stop()
		e.resolveTimer = nil
	}
	frames.Resolve(e.doc)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func logTransition(from, to Mode) {
	if from != to {
		log.Printf("[ENGINE] %s -> %s", from, to)
	}
}
