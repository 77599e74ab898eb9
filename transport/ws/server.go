// Package ws carries the client-server protocol over websockets: clients
// send intents, the authoritative server answers with typed rejections and
// broadcasts every committed entry to all connected clients in timeline
// order.
package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/saltmarsh/skirmish/engine"
	"github.com/saltmarsh/skirmish/event"
)

// broadcastSinkID names the handler's sink registration on the engine server.
const broadcastSinkID = "ws.broadcast"

// Handler bridges websocket connections to an authoritative engine server.
// Register it on an HTTP mux; clients connect with their player id in the
// "player" query parameter.
type Handler struct {
	server   *engine.Server
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*conn]struct{}
}

type conn struct {
	ws     *websocket.Conn
	player engine.PlayerID
	// writeMu serializes broadcast writes with read-loop replies.
	writeMu sync.Mutex
}

// NewHandler creates a handler and subscribes its broadcast sink to the
// engine server.
func NewHandler(server *engine.Server, log *slog.Logger) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		server: server,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns: make(map[*conn]struct{}),
	}
	sink := engine.SinkFunc(func(e engine.Entry) error {
		h.broadcast(e)
		return nil
	})
	if err := server.RegisterSink(broadcastSinkID, sink); err != nil {
		return nil, err
	}
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	player := engine.PlayerID(r.URL.Query().Get("player"))
	if player == "" {
		http.Error(w, "missing player", http.StatusBadRequest)
		return
	}
	if !h.server.HasPlayer(player) {
		http.Error(w, "unknown player", http.StatusForbidden)
		return
	}
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "player", string(player), "error", err)
		return
	}
	c := &conn{ws: ws, player: player}
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("client connected", "player", string(player))

	h.readLoop(c)

	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	ws.Close()
	h.log.Info("client disconnected", "player", string(player))
}

func (h *Handler) readLoop(c *conn) {
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var msg message
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.log.Warn("discarding malformed message", "player", string(c.player), "error", err)
			continue
		}
		switch msg.Type {
		case TypeSubmit:
			h.handleSubmit(c, msg)
		case TypeSyncRequest:
			h.handleSyncRequest(c, msg)
		default:
			h.log.Warn("unknown message type", "type", msg.Type, "player", string(c.player))
		}
	}
}

// handleSubmit verifies a client intent. Committed entries reach the client
// through the broadcast sink; only rejections are answered directly.
func (h *Handler) handleSubmit(c *conn, msg message) {
	ev, err := event.Unmarshal(msg.Event)
	if err != nil {
		h.writeJSON(c, message{Type: TypeRejected, Code: string(engine.CodeValidationRejected), Reason: err.Error()})
		return
	}
	if _, err := h.server.SubmitClient(c.player, ev); err != nil {
		reply := message{Type: TypeRejected, Reason: err.Error()}
		var typed *engine.Error
		if errors.As(err, &typed) {
			reply.Code = string(typed.Code)
			reply.Reason = typed.Reason
		}
		h.writeJSON(c, reply)
	}
}

// handleSyncRequest answers with every entry after the client's position.
func (h *Handler) handleSyncRequest(c *conn, msg message) {
	entries := h.server.Processor().Timeline().EntriesAfter(event.ID(msg.After))
	encoded := make([]entryMessage, 0, len(entries))
	for _, e := range entries {
		em, err := encodeEntry(e)
		if err != nil {
			h.log.Error("failed to encode entry", "event", e.Event.String(), "error", err)
			return
		}
		encoded = append(encoded, em)
	}
	h.writeJSON(c, message{Type: TypeSync, After: msg.After, Entries: encoded})
}

// broadcast fans one committed entry out to every connected client.
func (h *Handler) broadcast(e engine.Entry) {
	em, err := encodeEntry(e)
	if err != nil {
		h.log.Error("failed to encode entry", "event", e.Event.String(), "error", err)
		return
	}
	msg := message{Type: TypeApplied, Entry: &em}
	h.mu.Lock()
	conns := make([]*conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		if err := h.writeJSON(c, msg); err != nil {
			h.log.Warn("broadcast failed", "player", string(c.player), "error", err)
		}
	}
}

func (h *Handler) writeJSON(c *conn, msg message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Close disconnects every client and unsubscribes the broadcast sink.
func (h *Handler) Close() error {
	h.server.RemoveSink(broadcastSinkID)
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		c.ws.Close()
	}
	h.conns = make(map[*conn]struct{})
	return nil
}
