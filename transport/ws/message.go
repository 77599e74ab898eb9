package ws

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/saltmarsh/skirmish/engine"
	"github.com/saltmarsh/skirmish/event"
)

// Message types of the wire protocol. Every frame is one JSON message.
const (
	// TypeSubmit is a client intent: an event for server verification.
	TypeSubmit = "submit"
	// TypeApplied broadcasts one committed entry to every client.
	TypeApplied = "applied"
	// TypeRejected answers a failed submit with the typed rejection.
	TypeRejected = "rejected"
	// TypeSyncRequest asks for the entries after a known position.
	TypeSyncRequest = "sync_request"
	// TypeSync carries a batch of entries answering a sync request.
	TypeSync = "sync"
)

type message struct {
	Type string `json:"type"`

	// TypeSubmit
	Event json.RawMessage `json:"event,omitempty"`

	// TypeApplied
	Entry *entryMessage `json:"entry,omitempty"`

	// TypeRejected
	Code   string `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`

	// TypeSyncRequest carries After; TypeSync carries Entries.
	After   int64          `json:"after,omitempty"`
	Entries []entryMessage `json:"entries,omitempty"`
}

type entryMessage struct {
	Event    json.RawMessage `json:"event"`
	Checksum string          `json:"checksum"`
}

func encodeEntry(e engine.Entry) (entryMessage, error) {
	raw, err := event.Marshal(e.Event)
	if err != nil {
		return entryMessage{}, err
	}
	return entryMessage{Event: raw, Checksum: e.Checksum.String()}, nil
}

func decodeEntry(m entryMessage) (engine.Entry, error) {
	ev, err := event.Unmarshal(m.Event)
	if err != nil {
		return engine.Entry{}, err
	}
	sum, err := strconv.ParseUint(m.Checksum, 16, 64)
	if err != nil {
		return engine.Entry{}, fmt.Errorf("bad checksum %q: %w", m.Checksum, err)
	}
	return engine.Entry{Event: ev, Checksum: engine.Checksum(sum)}, nil
}
