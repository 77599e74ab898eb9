package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/saltmarsh/skirmish/engine"
	"github.com/saltmarsh/skirmish/event"
)

// Link is the client side of the websocket protocol. It implements
// engine.ServerLink, so an engine.Client built over it submits intents
// through the socket and mirrors the entries the server broadcasts.
type Link struct {
	ws  *websocket.Conn
	log *slog.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	client   *engine.Client
	rejected func(code, reason string)
	done     chan struct{}
}

// Dial connects to a handler. The url must carry the ws scheme and the
// player query parameter, e.g. ws://host/battle?player=<id>.
func Dial(url string, log *slog.Logger) (*Link, error) {
	if log == nil {
		log = slog.Default()
	}
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Link{ws: ws, log: log, done: make(chan struct{})}, nil
}

// Attach binds the mirror that receives broadcast entries and starts the
// read loop. OnRejected, when non-nil, observes server-side rejections.
func (l *Link) Attach(client *engine.Client, onRejected func(code, reason string)) {
	l.mu.Lock()
	l.client = client
	l.rejected = onRejected
	l.mu.Unlock()
	go l.readLoop()
}

// SubmitIntent implements engine.ServerLink.
func (l *Link) SubmitIntent(ev event.Event) error {
	raw, err := event.Marshal(ev)
	if err != nil {
		return err
	}
	return l.writeJSON(message{Type: TypeSubmit, Event: raw})
}

// RequestSync asks the server for every entry after the given position.
func (l *Link) RequestSync(after event.ID) error {
	return l.writeJSON(message{Type: TypeSyncRequest, After: int64(after)})
}

// Done closes when the read loop ends, usually because the connection
// dropped.
func (l *Link) Done() <-chan struct{} { return l.done }

// Close drops the connection.
func (l *Link) Close() error { return l.ws.Close() }

func (l *Link) readLoop() {
	defer close(l.done)
	for {
		_, payload, err := l.ws.ReadMessage()
		if err != nil {
			return
		}
		var msg message
		if err := json.Unmarshal(payload, &msg); err != nil {
			l.log.Warn("discarding malformed message", "error", err)
			continue
		}
		switch msg.Type {
		case TypeApplied:
			if msg.Entry == nil {
				continue
			}
			l.receive(*msg.Entry)
		case TypeSync:
			for _, em := range msg.Entries {
				l.receive(em)
			}
		case TypeRejected:
			l.mu.Lock()
			rejected := l.rejected
			l.mu.Unlock()
			if rejected != nil {
				rejected(msg.Code, msg.Reason)
			}
		default:
			l.log.Warn("unknown message type", "type", msg.Type)
		}
	}
}

func (l *Link) receive(em entryMessage) {
	entry, err := decodeEntry(em)
	if err != nil {
		l.log.Error("failed to decode entry", "error", err)
		return
	}
	l.mu.Lock()
	client := l.client
	l.mu.Unlock()
	if client == nil {
		return
	}
	if entry.Event.ID < client.NextID() {
		// A broadcast racing a sync answer can repeat entries the mirror
		// already holds.
		return
	}
	if err := client.Receive(entry); err != nil {
		// The mirror refused the entry; ask for a fresh tail so a missed
		// broadcast heals itself.
		l.log.Warn("mirror refused entry, requesting sync",
			"event", entry.Event.String(),
			"error", err,
		)
		if err := l.RequestSync(client.NextID() - 1); err != nil {
			l.log.Error("sync request failed", "error", err)
		}
	}
}

func (l *Link) writeJSON(msg message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.ws.WriteMessage(websocket.TextMessage, data)
}
