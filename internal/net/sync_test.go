package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"canvasboard/internal/state"
)

func TestSnapshotOpsCoverWholeDocument(t *testing.T) {
	doc := state.NewDocument()
	doc.Transaction(func(tx *state.Tx) {
		tx.Set("a", state.Layer{Type: state.TypeRectangle, Width: 10, Height: 10})
		tx.Push("a")
		tx.Set("b", state.Layer{Type: state.TypeNote, Width: 140, Height: 140})
		tx.Push("b")
	})

	h := NewHost(doc)
	ops := h.snapshotOps()

	if len(ops) != 3 {
		t.Fatalf("ops = %d, want 2 sets + 1 order", len(ops))
	}
	seen := map[string]bool{}
	for _, op := range ops[:2] {
		if op.Type != state.OpSetLayer || op.Layer == nil {
			t.Fatalf("op = %+v, want set_layer", op)
		}
		seen[op.Layer.ID] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("snapshot missing layers: %v", seen)
	}
	last := ops[len(ops)-1]
	if last.Type != state.OpSetOrder || len(last.Order) != 2 {
		t.Errorf("final op = %+v, want the z-order", last)
	}

	// Applying the snapshot to a fresh document reproduces it.
	replica := state.NewDocument()
	for _, op := range ops {
		replica.ApplyRemote(op)
	}
	if replica.Len() != 2 {
		t.Errorf("replica Len = %d, want 2", replica.Len())
	}
	ids := replica.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("replica order = %v", ids)
	}
}

func TestDialAppliesInitialSnapshotWithCallback(t *testing.T) {
	hostDoc := state.NewDocument()
	hostDoc.Transaction(func(tx *state.Tx) {
		tx.Set("a", state.Layer{Type: state.TypeRectangle, Width: 10, Height: 10})
		tx.Push("a")
	})
	h := NewHost(hostDoc)

	srv := httptest.NewServer(http.HandlerFunc(h.handleSync))
	defer srv.Close()

	applied := make(chan struct{}, 8)
	clientDoc := state.NewDocument()
	addr := strings.TrimPrefix(srv.URL, "http://")
	c, err := Dial(context.Background(), addr, clientDoc, func() {
		select {
		case applied <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	// The callback fires for the snapshot ops merged right after connect,
	// not only for later live traffic.
	deadline := time.After(2 * time.Second)
	for clientDoc.Len() != 1 {
		select {
		case <-applied:
		case <-deadline:
			t.Fatalf("snapshot never applied: len = %d", clientDoc.Len())
		}
	}
}
