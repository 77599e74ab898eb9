package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltmarsh/skirmish/battle"
)

func TestStateChecksumEqualStates(t *testing.T) {
	build := func() *battle.State {
		s := battle.NewState()
		require.NoError(t, s.Entities().AddTeam(&battle.Team{ID: "alpha"}))
		require.NoError(t, s.Entities().AddCreature(&battle.Creature{
			ID:         "hero",
			Team:       "alpha",
			Statistics: []battle.Statistic{{ID: "hp", Base: 10, Value: 10}},
		}))
		s.SetPosition(battle.CreatureEntity("hero"), battle.Position{X: 1, Y: 1})
		return s
	}

	a, err := StateChecksum(build())
	require.NoError(t, err)
	b, err := StateChecksum(build())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStateChecksumDetectsDifferences(t *testing.T) {
	s := battle.NewState()
	require.NoError(t, s.Entities().AddTeam(&battle.Team{ID: "alpha"}))
	before, err := StateChecksum(s)
	require.NoError(t, err)

	s.Metrics().AddSystem(battle.MetricEventsProcessed, 1)
	after, err := StateChecksum(s)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestChecksumString(t *testing.T) {
	assert.Equal(t, "00000000000000ff", Checksum(255).String())
	assert.Len(t, Checksum(0).String(), 16)
}
