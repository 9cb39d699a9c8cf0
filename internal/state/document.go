package state

import (
	"encoding/json"
	"io"
	"log"
	"sync"
)

// Document is the shared mutable board: an id→Layer map plus a z-order
// sequence (back to front). It is guarded by a single lock; all writes go
// through Transaction so a mutation either fully applies or has no effect.
// Remote participants mutate it concurrently through ApplyRemote, so readers
// treat "layer no longer exists" as a normal, silent case.
type Document struct {
	siteID string
	clock  Clock

	mu         sync.RWMutex
	layers     map[string]Layer
	order      []string
	seen       map[string]stamp
	orderStamp stamp

	onOp func(Op)
}

// NewDocument creates an empty document with a fresh site ID.
func NewDocument() *Document {
	return &Document{
		siteID: NewSiteID(),
		layers: make(map[string]Layer),
		seen:   make(map[string]stamp),
	}
}

// SiteID returns this participant's session ID.
func (d *Document) SiteID() string { return d.siteID }

// SetBroadcast installs the hook invoked with every locally committed op,
// used by the network layer to relay mutations to peers.
func (d *Document) SetBroadcast(fn func(Op)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onOp = fn
}

// Get returns the layer with the given id, if present.
func (d *Document) Get(id string) (Layer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	l, ok := d.layers[id]
	if !ok {
		return Layer{}, false
	}
	return l.Clone(), true
}

// IDs returns a copy of the z-order sequence, back to front.
func (d *Document) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.order...)
}

// Layers returns all layers in z-order.
func (d *Document) Layers() []Layer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Layer, 0, len(d.order))
	for _, id := range d.order {
		if l, ok := d.layers[id]; ok {
			out = append(out, l.Clone())
		}
	}
	return out
}

// Len returns the number of layers in the document.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.layers)
}

// Tx stages mutations inside a transaction. Nothing staged is visible to
// other components until commit, and an invalid write aborts the whole
// transaction.
type Tx struct {
	doc     *Document
	sets    map[string]Layer
	deletes map[string]bool
	order   []string // staged z-order; nil when untouched
	aborted bool
}

// Get returns the layer as seen by this transaction, staged writes included.
func (tx *Tx) Get(id string) (Layer, bool) {
	if tx.deletes[id] {
		return Layer{}, false
	}
	if l, ok := tx.sets[id]; ok {
		return l.Clone(), true
	}
	l, ok := tx.doc.layers[id]
	if !ok {
		return Layer{}, false
	}
	return l.Clone(), true
}

// IDs returns the z-order as seen by this transaction.
func (tx *Tx) IDs() []string {
	var base []string
	if tx.order != nil {
		base = tx.order
	} else {
		base = tx.doc.order
	}
	out := make([]string, 0, len(base))
	for _, id := range base {
		if !tx.deletes[id] {
			out = append(out, id)
		}
	}
	return out
}

// Set stages a full layer write. An invalid layer (non-finite coordinate,
// negative size) aborts the transaction; the document stays unchanged.
func (tx *Tx) Set(id string, l Layer) {
	if !l.Valid() {
		log.Printf("[DOC] rejecting invalid geometry for layer %s", id)
		tx.aborted = true
		return
	}
	l.ID = id
	delete(tx.deletes, id)
	tx.sets[id] = l.Clone()
}

// Update applies fn to the layer if it still exists. A missing id is a
// silent no-op: the layer may have been deleted by another participant.
func (tx *Tx) Update(id string, fn func(*Layer)) {
	l, ok := tx.Get(id)
	if !ok {
		return
	}
	fn(&l)
	tx.Set(id, l)
}

// Delete stages removal of a layer and its z-order entry.
func (tx *Tx) Delete(id string) {
	delete(tx.sets, id)
	tx.deletes[id] = true
}

// Push stages appending an id at the top of the z-order.
func (tx *Tx) Push(id string) {
	tx.stageOrder()
	tx.order = append(tx.removeFromOrder(id), id)
}

// Insert stages placing an id at the given z-order index.
func (tx *Tx) Insert(id string, index int) {
	tx.stageOrder()
	order := tx.removeFromOrder(id)
	if index < 0 {
		index = 0
	}
	if index > len(order) {
		index = len(order)
	}
	order = append(order, "")
	copy(order[index+1:], order[index:])
	order[index] = id
	tx.order = order
}

// Abort marks the transaction as failed; commit becomes a no-op.
func (tx *Tx) Abort() { tx.aborted = true }

func (tx *Tx) stageOrder() {
	if tx.order == nil {
		tx.order = append([]string(nil), tx.doc.order...)
	}
}

func (tx *Tx) removeFromOrder(id string) []string {
	out := tx.order[:0]
	for _, existing := range tx.order {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// Transaction runs fn against a staged view of the document and commits all
// staged mutations atomically. It returns false when the transaction was
// aborted, in which case no state changed. Committed ops are handed to the
// broadcast hook after the lock is released.
func (d *Document) Transaction(fn func(tx *Tx)) bool {
	d.mu.Lock()
	tx := &Tx{
		doc:     d,
		sets:    make(map[string]Layer),
		deletes: make(map[string]bool),
	}
	fn(tx)
	if tx.aborted {
		d.mu.Unlock()
		return false
	}
	ops := d.commitLocked(tx)
	onOp := d.onOp
	d.mu.Unlock()

	if onOp != nil {
		for _, op := range ops {
			onOp(op)
		}
	}
	return true
}

func (d *Document) commitLocked(tx *Tx) []Op {
	var ops []Op

	for id, l := range tx.sets {
		ts := stamp{Lamport: d.clock.Tick(), Site: d.siteID}
		d.layers[id] = l
		d.seen[id] = ts
		cp := l.Clone()
		ops = append(ops, Op{Type: OpSetLayer, Layer: &cp, Lamport: ts.Lamport, Site: ts.Site})
	}
	for id := range tx.deletes {
		if _, ok := d.layers[id]; !ok {
			continue
		}
		ts := stamp{Lamport: d.clock.Tick(), Site: d.siteID}
		delete(d.layers, id)
		d.seen[id] = ts
		ops = append(ops, Op{Type: OpDeleteLayer, Target: id, Lamport: ts.Lamport, Site: ts.Site})
	}

	orderChanged := tx.order != nil
	if len(tx.deletes) > 0 {
		// Deletions prune the committed order even when no explicit order
		// op was staged.
		if tx.order == nil {
			tx.order = append([]string(nil), d.order...)
		}
		pruned := tx.order[:0]
		for _, id := range tx.order {
			if !tx.deletes[id] {
				pruned = append(pruned, id)
			}
		}
		tx.order = pruned
		orderChanged = true
	}
	if orderChanged {
		ts := stamp{Lamport: d.clock.Tick(), Site: d.siteID}
		d.order = append([]string(nil), tx.order...)
		d.orderStamp = ts
		ops = append(ops, Op{Type: OpSetOrder, Order: append([]string(nil), d.order...), Lamport: ts.Lamport, Site: ts.Site})
	}
	return ops
}

// ApplyRemote merges an operation received from another participant.
// Last-writer-wins per layer id; duplicates and stale writes are ignored.
// It returns true when the op changed local state and should be re-rendered
// (and, on a host, relayed).
func (d *Document) ApplyRemote(op Op) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clock.Update(op.Lamport)
	ts := stamp{Lamport: op.Lamport, Site: op.Site}

	switch op.Type {
	case OpSetLayer:
		if op.Layer == nil {
			return false
		}
		id := op.Layer.ID
		if prev, ok := d.seen[id]; ok && !ts.newer(prev) {
			return false
		}
		d.layers[id] = op.Layer.Clone()
		d.seen[id] = ts
		if !d.inOrder(id) {
			d.order = append(d.order, id)
		}
		return true
	case OpDeleteLayer:
		if prev, ok := d.seen[op.Target]; ok && !ts.newer(prev) {
			return false
		}
		d.seen[op.Target] = ts
		if _, ok := d.layers[op.Target]; !ok {
			return false
		}
		delete(d.layers, op.Target)
		d.order = removeID(d.order, op.Target)
		return true
	case OpSetOrder:
		if !ts.newer(d.orderStamp) {
			return false
		}
		d.orderStamp = ts
		order := make([]string, 0, len(op.Order))
		for _, id := range op.Order {
			if _, ok := d.layers[id]; ok {
				order = append(order, id)
			}
		}
		d.order = order
		return true
	default:
		log.Printf("[DOC] ignoring unknown op type %q from site %s", op.Type, op.Site)
		return false
	}
}

func (d *Document) inOrder(id string) bool {
	for _, existing := range d.order {
		if existing == id {
			return true
		}
	}
	return false
}

func removeID(order []string, id string) []string {
	out := order[:0]
	for _, existing := range order {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// boardFile is the JSON save format: layers plus their z-order.
type boardFile struct {
	Layers []Layer  `json:"layers"`
	Order  []string `json:"order"`
}

// Save writes the document as JSON.
func (d *Document) Save(w io.Writer) error {
	d.mu.RLock()
	file := boardFile{Order: append([]string(nil), d.order...)}
	for _, id := range d.order {
		if l, ok := d.layers[id]; ok {
			file.Layers = append(file.Layers, l.Clone())
		}
	}
	d.mu.RUnlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}

// Load replaces the document contents with layers read from JSON. Invalid
// layers in the file are skipped rather than failing the whole load.
func (d *Document) Load(r io.Reader) error {
	var file boardFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.layers = make(map[string]Layer, len(file.Layers))
	d.seen = make(map[string]stamp, len(file.Layers))
	d.order = nil
	for _, l := range file.Layers {
		if !l.Valid() || l.ID == "" {
			log.Printf("[DOC] skipping invalid layer %q in loaded file", l.ID)
			continue
		}
		d.layers[l.ID] = l.Clone()
	}
	for _, id := range file.Order {
		if _, ok := d.layers[id]; ok {
			d.order = append(d.order, id)
		}
	}
	for id := range d.layers {
		if !d.inOrder(id) {
			d.order = append(d.order, id)
		}
	}
	return nil
}
