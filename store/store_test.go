package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/engine"
	"github.com/saltmarsh/skirmish/event"
	"github.com/saltmarsh/skirmish/rules/empty"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "battle.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func entryAt(id event.ID) engine.Entry {
	ev := event.New(event.CreateTeam{Team: battle.TeamID("team-" + string(rune('a'+id)))})
	ev.ID = id
	ev.Origin = event.BySubmitter("server")
	return engine.Entry{Event: ev, Checksum: engine.Checksum(uint64(id) + 100)}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battle.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteEntry(context.Background(), entryAt(0)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := []engine.Entry{entryAt(0), entryAt(1), entryAt(2)}
	// Out of order writes are fine; reads come back sorted by id.
	for _, i := range []int{2, 0, 1} {
		require.NoError(t, s.WriteEntry(ctx, want[i]))
	}

	got, err := s.ReadEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteEntryIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := entryAt(0)
	require.NoError(t, s.WriteEntry(ctx, e))
	require.NoError(t, s.WriteEntry(ctx, e))

	got, err := s.ReadEntries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e, got[0])
}

func TestDerivedOriginSurvivesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ev := event.New(event.ClearStatus{
		Entity: battle.CreatureEntity("ogre"),
		Status: "venom",
	}).WithOrigin(event.ByEvent(4))
	ev.ID = 5
	want := engine.Entry{Event: ev, Checksum: 42}

	require.NoError(t, s.WriteEntry(ctx, want))
	got, err := s.ReadEntries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, event.ByEvent(4), got[0].Event.Origin)
	assert.Equal(t, want, got[0])
}

func TestTruncateAfter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for id := event.ID(0); id < 5; id++ {
		require.NoError(t, s.WriteEntry(ctx, entryAt(id)))
	}

	require.NoError(t, s.TruncateAfter(ctx, 2))
	got, err := s.ReadEntries(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, event.ID(2), got[2].Event.ID)

	require.NoError(t, s.TruncateAfter(ctx, battle.NoEvent))
	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSinkPersistsCommittedEntries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sink := NewSink(ctx, s)

	require.NoError(t, sink.Notify(entryAt(0)))
	require.NoError(t, sink.Notify(entryAt(1)))

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSinkFollowsServerRollback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	server, err := engine.NewServer(empty.Bundle(), nil)
	require.NoError(t, err)
	require.NoError(t, server.RegisterSink("store", NewSink(ctx, s)))

	submit := func(ev event.Event) {
		_, err := server.Submit(ev)
		require.NoError(t, err)
	}
	submit(event.New(event.CreateTeam{Team: "alpha"}))
	submit(event.New(event.CreateCreature{Creature: "hero", Team: "alpha"}))
	submit(event.New(event.ResetRounds{}))
	submit(event.New(event.StartRound{Actor: battle.CreatureEntity("hero")}))
	submit(event.New(event.EndRound{}))
	submit(event.New(event.Dummy{}))

	require.NoError(t, server.Undo())
	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	// The freed id must be rewritable; idempotent inserts would otherwise
	// keep the undone entry under it.
	submit(event.New(event.CreateTeam{Team: "bravo"}))
	persisted, err := s.ReadEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, server.Processor().Timeline().Entries(), persisted)
}

func TestSinkMirrorsLiveBattle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	proc, err := engine.New(empty.Bundle())
	require.NoError(t, err)
	require.NoError(t, proc.RegisterSink("store", NewSink(ctx, s)))

	_, err = proc.Submit(event.New(event.CreateTeam{Team: "alpha"}))
	require.NoError(t, err)
	_, err = proc.Submit(event.New(event.Dummy{}))
	require.NoError(t, err)

	persisted, err := s.ReadEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, proc.Timeline().Entries(), persisted)

	// The persisted log replays to the same head.
	rebuilt, err := engine.Replay(empty.Bundle(), persisted)
	require.NoError(t, err)
	wantHead, _ := proc.Timeline().Head()
	gotHead, _ := rebuilt.Timeline().Head()
	assert.Equal(t, wantHead.Checksum, gotHead.Checksum)
}
