package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/event"
)

// recordingLink captures intents instead of sending them anywhere.
type recordingLink struct {
	sent []event.Event
	err  error
}

func (l *recordingLink) SubmitIntent(ev event.Event) error {
	if l.err != nil {
		return l.err
	}
	l.sent = append(l.sent, ev)
	return nil
}

func newTestClient(t *testing.T, link ServerLink) *Client {
	t.Helper()
	c, err := NewClient(gridBundle(), link, WithLogger(quietLogger()))
	require.NoError(t, err)
	return c
}

func TestClientMirrorsServerEntries(t *testing.T) {
	server := playSkirmish(t)
	client := newTestClient(t, nil)

	for _, e := range server.Timeline().Entries() {
		require.NoError(t, client.Receive(e))
	}

	assert.Equal(t, server.Timeline().Len(), client.Processor().Timeline().Len())

	want, err := json.Marshal(server.State().Snapshot())
	require.NoError(t, err)
	got, err := json.Marshal(client.Processor().State().Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestClientSubmitForwardsIntent(t *testing.T) {
	link := &recordingLink{}
	client := newTestClient(t, link)

	ev := event.New(event.CreateTeam{Team: "alpha"})
	require.NoError(t, client.Submit(ev))

	// The intent goes up untouched; the mirror waits for the committed entry.
	require.Len(t, link.sent, 1)
	assert.Equal(t, ev, link.sent[0])
	assert.Equal(t, 0, client.Processor().Timeline().Len())
}

func TestClientSubmitWithoutLink(t *testing.T) {
	client := newTestClient(t, nil)
	err := client.Submit(event.New(event.Dummy{}))
	require.Error(t, err)
	assert.True(t, IsIntegrityViolation(err))
}

func TestClientDetectsDivergence(t *testing.T) {
	server := playSkirmish(t)
	client := newTestClient(t, nil)

	entries := server.Timeline().Entries()
	for _, e := range entries[:3] {
		require.NoError(t, client.Receive(e))
	}

	tampered := entries[3]
	tampered.Checksum++
	err := client.Receive(tampered)
	require.Error(t, err)
	assert.True(t, IsIntegrityViolation(err))

	// The bad entry left no trace; the mirror still expects its id.
	assert.Equal(t, entries[3].Event.ID, client.NextID())
}

func TestClientResyncHealsDivergence(t *testing.T) {
	server := playSkirmish(t)
	client := newTestClient(t, nil)

	entries := server.Timeline().Entries()
	tampered := entries[2]
	tampered.Checksum++
	require.NoError(t, client.Receive(entries[0]))
	require.NoError(t, client.Receive(entries[1]))
	require.Error(t, client.Receive(tampered))

	require.NoError(t, client.Resync(entries))
	assert.Equal(t, server.Timeline().Len(), client.Processor().Timeline().Len())

	head, _ := server.Timeline().Head()
	mirrorHead, _ := client.Processor().Timeline().Head()
	assert.Equal(t, head.Checksum, mirrorHead.Checksum)
}

func TestClientResyncRejectsTamperedHistory(t *testing.T) {
	server := playSkirmish(t)
	client := newTestClient(t, nil)

	entries := server.Timeline().Entries()
	entries[1].Checksum++
	err := client.Resync(entries)
	require.Error(t, err)
	assert.True(t, IsIntegrityViolation(err))
}

func TestClientNextID(t *testing.T) {
	server := newTestProcessor(t, gridBundle())
	mustSubmit(t, server, event.New(event.CreateTeam{Team: "alpha"}))
	mustSubmit(t, server, event.New(event.CreateCreature{
		Creature: "hero", Team: "alpha", Position: battle.Position{X: 0, Y: 0},
	}))

	client := newTestClient(t, nil)
	assert.Equal(t, event.ID(0), client.NextID())
	for _, e := range server.Timeline().Entries() {
		require.NoError(t, client.Receive(e))
	}
	assert.Equal(t, event.ID(2), client.NextID())
}
