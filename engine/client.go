package engine

import (
	"log/slog"
	"sync"

	"github.com/saltmarsh/skirmish/event"
	"github.com/saltmarsh/skirmish/rules"
)

// ServerLink is the client's view of the authoritative server: intents go
// up, committed entries come back through Receive.
type ServerLink interface {
	// SubmitIntent forwards an event for server-side verification.
	SubmitIntent(ev event.Event) error
}

// Client mirrors an authoritative battle. It applies the entries the server
// broadcasts, verifying each checksum against its own rebuilt state, and
// forwards local intents through the server link without touching the mirror.
//
// A checksum mismatch means the mirror diverged (usually a different rules
// build); the client reports the integrity violation and expects a Resync.
type Client struct {
	mu     sync.Mutex
	proc   *Processor
	bundle rules.Bundle
	opts   []Option
	link   ServerLink
	log    *slog.Logger
}

// NewClient creates a client mirror over an empty battle.
func NewClient(bundle rules.Bundle, link ServerLink, opts ...Option) (*Client, error) {
	proc, err := New(bundle, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{
		proc:   proc,
		bundle: bundle,
		opts:   opts,
		link:   link,
		log:    slog.Default(),
	}, nil
}

// Processor exposes the mirror for reads. Resync replaces it; do not retain
// the pointer across calls.
func (c *Client) Processor() *Processor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proc
}

// NextID returns the id the mirror expects next, for reconnection requests.
func (c *Client) NextID() event.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proc.Timeline().NextID()
}

// Submit forwards an intent to the server. The mirror changes only when the
// committed entry comes back through Receive.
func (c *Client) Submit(ev event.Event) error {
	if c.link == nil {
		return integrityf("client has no server link")
	}
	return c.link.SubmitIntent(ev)
}

// Receive applies one committed entry to the mirror.
func (c *Client) Receive(e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.proc.replayEntry(e); err != nil {
		c.log.Error("mirror diverged from server",
			"event", e.Event.String(),
			"error", err,
		)
		return err
	}
	return nil
}

// Resync rebuilds the mirror from a full timeline snapshot, discarding the
// current mirror. Used after a divergence or a server-side undo.
func (c *Client) Resync(entries []Entry) error {
	rebuilt, err := Replay(c.bundle, entries, c.opts...)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proc = rebuilt
	c.log.Info("mirror resynced", "entries", len(entries))
	return nil
}
