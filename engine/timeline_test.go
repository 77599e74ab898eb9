package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/event"
)

func entryWithID(id event.ID, kind event.Kind) Entry {
	ev := event.New(event.Dummy{})
	ev.ID = id
	ev.Kind = kind
	return Entry{Event: ev, Checksum: Checksum(uint64(id) + 1)}
}

func TestTimelineAppendRequiresContiguousIDs(t *testing.T) {
	tl := NewTimeline()
	require.NoError(t, tl.Append(entryWithID(0, event.KindDummy)))
	require.NoError(t, tl.Append(entryWithID(1, event.KindDummy)))

	err := tl.Append(entryWithID(3, event.KindDummy))
	require.Error(t, err)
	assert.True(t, IsIntegrityViolation(err))

	err = tl.Append(entryWithID(1, event.KindDummy))
	require.Error(t, err)
	assert.True(t, IsIntegrityViolation(err))

	assert.Equal(t, 2, tl.Len())
	assert.Equal(t, event.ID(2), tl.NextID())
}

func TestTimelineEntriesAreCopies(t *testing.T) {
	tl := NewTimeline()
	require.NoError(t, tl.Append(entryWithID(0, event.KindDummy)))

	entries := tl.Entries()
	entries[0].Checksum = 99

	got, ok := tl.Entry(0)
	require.True(t, ok)
	assert.Equal(t, Checksum(1), got.Checksum)
}

func TestTimelineTruncateAfter(t *testing.T) {
	tl := NewTimeline()
	for i := 0; i < 5; i++ {
		require.NoError(t, tl.Append(entryWithID(event.ID(i), event.KindDummy)))
	}

	removed := tl.TruncateAfter(2)
	require.Len(t, removed, 2)
	assert.Equal(t, event.ID(3), removed[0].Event.ID)
	assert.Equal(t, event.ID(4), removed[1].Event.ID)
	assert.Equal(t, 3, tl.Len())

	// Truncating at the head is a no-op.
	assert.Nil(t, tl.TruncateAfter(2))

	// NoEvent clears the whole log.
	removed = tl.TruncateAfter(battle.NoEvent)
	assert.Len(t, removed, 3)
	assert.Equal(t, 0, tl.Len())
}

func TestTimelineLastCheckpoint(t *testing.T) {
	tl := NewTimeline()
	kinds := []event.Kind{
		event.KindStartRound, // 0
		event.KindEndRound,   // 1
		event.KindStartRound, // 2
		event.KindEndRound,   // 3
		event.KindStartRound, // 4
	}
	for i, k := range kinds {
		require.NoError(t, tl.Append(entryWithID(event.ID(i), k)))
	}

	assert.Equal(t, event.ID(3), tl.LastCheckpoint(event.KindEndRound, 4))
	assert.Equal(t, event.ID(1), tl.LastCheckpoint(event.KindEndRound, 2))
	assert.Equal(t, battle.NoEvent, tl.LastCheckpoint(event.KindEndRound, 0))
	// A limit past the head clamps to the head.
	assert.Equal(t, event.ID(3), tl.LastCheckpoint(event.KindEndRound, 99))
}

func TestTimelineEntriesAfter(t *testing.T) {
	tl := NewTimeline()
	for i := 0; i < 4; i++ {
		require.NoError(t, tl.Append(entryWithID(event.ID(i), event.KindDummy)))
	}

	tail := tl.EntriesAfter(1)
	require.Len(t, tail, 2)
	assert.Equal(t, event.ID(2), tail[0].Event.ID)

	assert.Nil(t, tl.EntriesAfter(3))
	assert.Len(t, tl.EntriesAfter(battle.NoEvent), 4)
}
