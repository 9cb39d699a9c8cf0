// Package net replicates document operations between participants on the
// local network: the host relays every op to all connected clients over
// websockets, and sessions are discoverable via mDNS.
package net

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"canvasboard/internal/state"
)

const (
	// DefaultPort is the board session port.
	DefaultPort = 8888
	syncPath    = "/sync"
)

// Host accepts client connections and relays ops between them. The host's
// own local commits are broadcast through the document's broadcast hook.
type Host struct {
	doc       *state.Document
	OnApplied func()

	mu    sync.RWMutex
	conns map[*websocket.Conn]bool

	upgrader websocket.Upgrader
	server   *http.Server
}

// NewHost creates a host for the given document.
func NewHost(doc *state.Document) *Host {
	h := &Host{
		doc:   doc,
		conns: make(map[*websocket.Conn]bool),
	}
	doc.SetBroadcast(func(op state.Op) {
		h.broadcast(op, nil)
	})
	return h
}

// Start listens for clients on the given port. It does not block.
func (h *Host) Start(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc(syncPath, h.handleSync)
	h.server = &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	ln := h.server
	go func() {
		log.Printf("[HOST] listening on port %d", port)
		if err := ln.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[HOST] server stopped: %v", err)
		}
	}()
	return nil
}

// Close shuts the host down and drops all client connections.
func (h *Host) Close() error {
	h.mu.Lock()
	for conn := range h.conns {
		conn.Close()
	}
	h.conns = make(map[*websocket.Conn]bool)
	h.mu.Unlock()
	if h.server != nil {
		return h.server.Close()
	}
	return nil
}

func (h *Host) handleSync(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HOST] upgrade failed: %v", err)
		return
	}
	h.add(conn)
	defer h.remove(conn)

	// A new client gets the whole document as set ops before live traffic.
	for _, op := range h.snapshotOps() {
		if err := conn.WriteJSON(op); err != nil {
			log.Printf("[HOST] initial sync to %s failed: %v", conn.RemoteAddr(), err)
			return
		}
	}

	for {
		var op state.Op
		if err := conn.ReadJSON(&op); err != nil {
			log.Printf("[HOST] client %s disconnected: %v", conn.RemoteAddr(), err)
			return
		}
		if h.doc.ApplyRemote(op) {
			h.broadcast(op, conn)
			if h.OnApplied != nil {
				h.OnApplied()
			}
		}
	}
}

func (h *Host) snapshotOps() []state.Op {
	layers := h.doc.Layers()
	ops := make([]state.Op, 0, len(layers)+1)
	for i := range layers {
		l := layers[i]
		ops = append(ops, state.Op{Type: state.OpSetLayer, Layer: &l, Site: h.doc.SiteID()})
	}
	ops = append(ops, state.Op{Type: state.OpSetOrder, Order: h.doc.IDs(), Site: h.doc.SiteID()})
	return ops
}

func (h *Host) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
	log.Printf("[HOST] client connected from %s", conn.RemoteAddr())
}

func (h *Host) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	conn.Close()
	log.Printf("[HOST] client removed: %s", conn.RemoteAddr())
}

func (h *Host) broadcast(op state.Op, exclude *websocket.Conn) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns {
		if conn == exclude {
			continue
		}
		if err := conn.WriteJSON(op); err != nil {
			log.Printf("[HOST] send to %s failed: %v", conn.RemoteAddr(), err)
		}
	}
}

// Client connects to a host session and keeps the local document merged
// with the host's op stream.
type Client struct {
	doc       *state.Document
	conn      *websocket.Conn
	onApplied func()

	writeMu sync.Mutex
}

// Dial connects to a host at addr ("ip:port") and starts the receive loop.
// onApplied, when non-nil, runs after every merged op, including the ops of
// the initial snapshot; it is installed before the receive loop starts.
func Dial(ctx context.Context, addr string, doc *state.Document, onApplied func()) (*Client, error) {
	url := fmt.Sprintf("ws://%s%s", addr, syncPath)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial host %s: %w", addr, err)
	}

	c := &Client{doc: doc, conn: conn, onApplied: onApplied}
	doc.SetBroadcast(c.send)
	go c.readLoop()
	log.Printf("[SYNC] connected to host %s", addr)
	return c, nil
}

// Close drops the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) send(op state.Op) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteJSON(op); err != nil {
		log.Printf("[SYNC] send failed: %v", err)
	}
}

func (c *Client) readLoop() {
	for {
		var op state.Op
		if err := c.conn.ReadJSON(&op); err != nil {
			log.Printf("[SYNC] disconnected from host: %v", err)
			return
		}
		if c.doc.ApplyRemote(op) && c.onApplied != nil {
			c.onApplied()
		}
	}
}
