// Package frames maintains the spatial parent/child hierarchy among frame
// layers. Containment is derived purely from geometry: a frame's child list
// is a cache recomputed here after every structural change, never authored
// directly. The derived graph is always a forest.
package frames

import (
	"sort"

	"canvasboard/internal/geometry"
	"canvasboard/internal/state"
)

// Tunable layout constants for frame auto-fit. Overridable.
var (
	// FramePadding is the base padding added around a frame's content when
	// auto-fitting.
	FramePadding = 16.0
	// FrameHeaderClearance is the extra room reserved at the top of a frame
	// for its title header.
	FrameHeaderClearance = 28.0
	// DensePaddingFactor scales the padding up once a frame holds more than
	// DenseChildCount children.
	DensePaddingFactor = 1.5
	DenseChildCount    = 4
)

// Resolve runs a full containment recompute in its own transaction. It is
// idempotent: running it twice on an unchanged document is a no-op.
func Resolve(doc *state.Document) {
	doc.Transaction(func(tx *state.Tx) {
		ResolveTx(tx)
	})
}

// ResolveTx recomputes every frame's child list inside an existing
// transaction. Assignment is speculative until the single commit pass at
// the end, so partial state is never observable.
func ResolveTx(tx *state.Tx) {
	ids := tx.IDs()

	type record struct {
		id     string
		bounds geometry.Rect
		zIndex int
	}
	var frames []record
	var others []record
	for z, id := range ids {
		l, ok := tx.Get(id)
		if !ok {
			continue
		}
		rec := record{id: id, bounds: l.Bounds(), zIndex: z}
		if l.Type == state.TypeFrame {
			frames = append(frames, rec)
		} else {
			others = append(others, rec)
		}
	}

	// Largest frames claim first: outside-in assignment order.
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].bounds.Area() > frames[j].bounds.Area()
	})

	children := make(map[string][]record, len(frames))
	parentOf := make(map[string]string, len(frames))

	// Non-frame layers attach to the smallest-area frame whose bounds
	// overlap them; partial overlap counts.
	for _, layer := range others {
		best := ""
		bestArea := 0.0
		for _, f := range frames {
			if !f.bounds.Overlaps(layer.bounds) {
				continue
			}
			if best == "" || f.bounds.Area() < bestArea {
				best = f.id
				bestArea = f.bounds.Area()
			}
		}
		if best != "" {
			children[best] = append(children[best], layer)
		}
	}

	// Frames nest under the smallest strictly-larger overlapping frame,
	// unless that assignment would close a cycle. A rejected assignment
	// leaves the frame as a root.
	for _, f := range frames {
		best := ""
		bestArea := 0.0
		for _, candidate := range frames {
			if candidate.id == f.id {
				continue
			}
			if candidate.bounds.Area() <= f.bounds.Area() {
				continue
			}
			if !candidate.bounds.Overlaps(f.bounds) {
				continue
			}
			if best == "" || candidate.bounds.Area() < bestArea {
				best = candidate.id
				bestArea = candidate.bounds.Area()
			}
		}
		if best == "" {
			continue
		}
		if createsCycle(parentOf, f.id, best) {
			continue
		}
		parentOf[f.id] = best
		children[best] = append(children[best], f)
	}

	// Single commit pass. Children are ordered by document z-order, and a
	// frame is only written when its list actually changed.
	for _, f := range frames {
		kids := children[f.id]
		sort.Slice(kids, func(i, j int) bool { return kids[i].zIndex < kids[j].zIndex })
		kidIDs := make([]string, len(kids))
		for i, k := range kids {
			kidIDs[i] = k.id
		}
		current, ok := tx.Get(f.id)
		if !ok {
			continue
		}
		if equalIDs(current.ChildIDs, kidIDs) {
			continue
		}
		current.ChildIDs = kidIDs
		tx.Set(f.id, current)
	}
}

// createsCycle reports whether putting child under parent would make parent
// a descendant of itself in the in-progress assignment map.
func createsCycle(parentOf map[string]string, child, parent string) bool {
	for cur := parent; cur != ""; cur = parentOf[cur] {
		if cur == child {
			return true
		}
	}
	return false
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Descendants returns every layer contained in the frame, recursively,
// following the resolved child lists. The frame itself is not included.
func Descendants(tx *state.Tx, frameID string) []string {
	var out []string
	seen := map[string]bool{frameID: true}
	queue := []string{frameID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		l, ok := tx.Get(id)
		if !ok {
			continue
		}
		for _, child := range l.ChildIDs {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

// ParentFrame returns the id of the resolved frame containing the layer, or
// "" when the layer is a root.
func ParentFrame(tx *state.Tx, layerID string) string {
	for _, id := range tx.IDs() {
		l, ok := tx.Get(id)
		if !ok || l.Type != state.TypeFrame {
			continue
		}
		for _, child := range l.ChildIDs {
			if child == layerID {
				return id
			}
		}
	}
	return ""
}

// FitToChildren expands an auto-resizing frame to the bounding box of its
// children plus density-adjusted padding and header clearance. Frames with
// no children are left alone.
func FitToChildren(tx *state.Tx, frameID string) {
	frame, ok := tx.Get(frameID)
	if !ok || frame.Type != state.TypeFrame || len(frame.ChildIDs) == 0 {
		return
	}

	var content geometry.Rect
	first := true
	count := 0
	for _, childID := range frame.ChildIDs {
		child, ok := tx.Get(childID)
		if !ok {
			continue
		}
		count++
		if first {
			content = child.Bounds()
			first = false
		} else {
			content = content.Union(child.Bounds())
		}
	}
	if first {
		return
	}

	padding := FramePadding
	if count > DenseChildCount {
		padding *= DensePaddingFactor
	}
	fitted := content.Inflate(padding)
	fitted.Y -= FrameHeaderClearance
	fitted.Height += FrameHeaderClearance

	if fitted == frame.Bounds() {
		return
	}
	frame.SetBounds(fitted)
	tx.Set(frameID, frame)
}
