package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltmarsh/skirmish/battle"
	"github.com/saltmarsh/skirmish/event"
)

func testConfig() Config {
	return Config{
		Width:  4,
		Height: 4,
		CreatureStatistics: []battle.Statistic{
			{ID: "speed", Base: 5},
			{ID: "hp", Base: 10},
		},
		CreatureAbilities: []battle.Ability{
			{ID: "smite", Power: 2},
		},
		InitiativeStatistic: "speed",
	}
}

// testState places hero (alpha) at (0,0) and ogre (bravo) at (3,3).
func testState(t *testing.T) *battle.State {
	t.Helper()
	cfg := testConfig()
	char := Character{cfg: cfg}
	s := battle.NewState()
	require.NoError(t, s.Entities().AddTeam(&battle.Team{ID: "alpha"}))
	require.NoError(t, s.Entities().AddTeam(&battle.Team{ID: "bravo"}))
	for _, c := range []struct {
		id   battle.CreatureID
		team battle.TeamID
		pos  battle.Position
	}{
		{"hero", "alpha", battle.Position{X: 0, Y: 0}},
		{"ogre", "bravo", battle.Position{X: 3, Y: 3}},
	} {
		stats, abilities := char.GenerateCreature(s, c.id)
		require.NoError(t, s.Entities().AddCreature(&battle.Creature{
			ID:         c.id,
			Team:       c.team,
			Statistics: stats,
			Abilities:  abilities,
		}))
		s.SetPosition(battle.CreatureEntity(c.id), c.pos)
	}
	return s
}

func TestBundleIsComplete(t *testing.T) {
	assert.NoError(t, Bundle(testConfig()).Validate())
}

func TestCheckRemoveTeam(t *testing.T) {
	s := testState(t)
	team := Team{}
	assert.Error(t, team.CheckRemoveTeam(s, "alpha"))

	require.NoError(t, s.Entities().AddTeam(&battle.Team{ID: "empty"}))
	assert.NoError(t, team.CheckRemoveTeam(s, "empty"))
	assert.NoError(t, team.CheckRemoveTeam(s, "missing"))
}

func TestCheckClaim(t *testing.T) {
	s := testState(t)
	space := Space{cfg: testConfig()}
	hero := battle.CreatureEntity("hero")

	tests := []struct {
		name    string
		claim   battle.Claim
		wantErr string
	}{
		{
			name:  "free square",
			claim: battle.Claim{Kind: battle.ClaimMove, Entity: hero, To: battle.Position{X: 1, Y: 1}},
		},
		{
			name:  "own square",
			claim: battle.Claim{Kind: battle.ClaimMove, Entity: hero, To: battle.Position{X: 0, Y: 0}},
		},
		{
			name:    "occupied square",
			claim:   battle.Claim{Kind: battle.ClaimMove, Entity: hero, To: battle.Position{X: 3, Y: 3}},
			wantErr: "occupied by creature:ogre",
		},
		{
			name:    "negative coordinate",
			claim:   battle.Claim{Kind: battle.ClaimMove, Entity: hero, To: battle.Position{X: -1, Y: 0}},
			wantErr: "out of bounds",
		},
		{
			name:    "past the edge",
			claim:   battle.Claim{Kind: battle.ClaimSpawn, Entity: battle.CreatureEntity("imp"), To: battle.Position{X: 4, Y: 0}},
			wantErr: "out of bounds",
		},
		{
			name:  "free always allowed",
			claim: battle.Claim{Kind: battle.ClaimFree, Entity: hero, From: battle.Position{X: 0, Y: 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := space.CheckClaim(s, tt.claim)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestUnboundedAxes(t *testing.T) {
	space := Space{cfg: Config{}}
	s := battle.NewState()
	err := space.CheckClaim(s, battle.Claim{
		Kind:   battle.ClaimSpawn,
		Entity: battle.CreatureEntity("hero"),
		To:     battle.Position{X: 1000, Y: 1000},
	})
	assert.NoError(t, err)
}

func TestGenerateCreatureClonesStatistics(t *testing.T) {
	char := Character{cfg: testConfig()}
	a, _ := char.GenerateCreature(battle.NewState(), "hero")
	b, _ := char.GenerateCreature(battle.NewState(), "ogre")
	require.Len(t, a, 2)
	assert.Equal(t, int64(5), a[0].Value)

	a[0].Value = 99
	assert.Equal(t, int64(5), b[0].Value)
}

func TestAlterStatistics(t *testing.T) {
	s := testState(t)
	char := Character{cfg: testConfig()}
	hero := battle.CreatureEntity("hero")

	require.Error(t, char.CheckAlterStatistics(s, hero, battle.StatisticsAlteration{"mana": 1}))

	alt := battle.StatisticsAlteration{"hp": -3, "speed": 1}
	require.NoError(t, char.CheckAlterStatistics(s, hero, alt))
	derived := char.AlterStatistics(s, hero, alt)
	assert.Empty(t, derived)

	hp, _ := s.Statistic(hero, "hp")
	assert.Equal(t, int64(7), hp.Value)
	speed, _ := s.Statistic(hero, "speed")
	assert.Equal(t, int64(6), speed.Value)
}

func TestActivateAbilitySpendsCharges(t *testing.T) {
	s := testState(t)
	char := Character{cfg: testConfig()}
	hero := battle.CreatureEntity("hero")

	require.Error(t, char.CheckActivateAbility(s, hero, "fly"))

	require.NoError(t, char.CheckActivateAbility(s, hero, "smite"))
	derived := char.ActivateAbility(s, hero, "smite")
	assert.Empty(t, derived)
	char.ActivateAbility(s, hero, "smite")

	smite, ok := s.Ability(hero, "smite")
	require.True(t, ok)
	assert.Zero(t, smite.Power)
	require.Error(t, char.CheckActivateAbility(s, hero, "smite"))

	// Charges on one creature never leak onto another.
	require.NoError(t, char.CheckActivateAbility(s, battle.CreatureEntity("ogre"), "smite"))
}

func TestAlterAbilities(t *testing.T) {
	s := testState(t)
	char := Character{cfg: testConfig()}
	hero := battle.CreatureEntity("hero")

	require.Error(t, char.CheckAlterAbilities(s, hero, battle.AbilitiesAlteration{"fly": 1}))

	alt := battle.AbilitiesAlteration{"smite": 3}
	require.NoError(t, char.CheckAlterAbilities(s, hero, alt))
	derived := char.AlterAbilities(s, hero, alt)
	assert.Empty(t, derived)

	smite, _ := s.Ability(hero, "smite")
	assert.Equal(t, int64(5), smite.Power)

	// An exhausted ability fires again once something recharges it.
	char.AlterAbilities(s, hero, battle.AbilitiesAlteration{"smite": -5})
	require.Error(t, char.CheckActivateAbility(s, hero, "smite"))
	char.AlterAbilities(s, hero, battle.AbilitiesAlteration{"smite": 1})
	assert.NoError(t, char.CheckActivateAbility(s, hero, "smite"))
}

func TestStatusLifecycle(t *testing.T) {
	s := testState(t)
	char := Character{cfg: testConfig()}
	ogre := battle.CreatureEntity("ogre")
	venom := battle.Status{ID: "hp", Potency: -2, RoundsLeft: 2}

	require.NoError(t, char.CheckInflictStatus(s, ogre, venom))
	char.InflictStatus(s, ogre, venom)

	hp, _ := s.Statistic(ogre, "hp")
	assert.Equal(t, int64(8), hp.Value)

	// Duplicate status and statuses without a backing statistic are refused.
	assert.Error(t, char.CheckInflictStatus(s, ogre, venom))
	assert.Error(t, char.CheckInflictStatus(s, ogre, battle.Status{ID: "mana"}))

	require.NoError(t, char.CheckClearStatus(s, ogre, "hp"))
	char.ClearStatus(s, ogre, "hp")
	hp, _ = s.Statistic(ogre, "hp")
	assert.Equal(t, int64(10), hp.Value)

	assert.Error(t, char.CheckClearStatus(s, ogre, "hp"))
}

func TestUpdateStatusesExpiry(t *testing.T) {
	s := testState(t)
	char := Character{cfg: testConfig()}
	ogre := battle.CreatureEntity("ogre")

	char.InflictStatus(s, ogre, battle.Status{ID: "hp", Potency: -2, RoundsLeft: 2})
	char.InflictStatus(s, ogre, battle.Status{ID: "speed", Potency: -1, RoundsLeft: 0})

	// First tick: the counted status drops to one round, the permanent one
	// never ticks.
	derived := char.UpdateStatuses(s, ogre)
	assert.Empty(t, derived)

	derived = char.UpdateStatuses(s, ogre)
	require.Len(t, derived, 1)
	expired, ok := derived[0].Payload.(event.ClearStatus)
	require.True(t, ok)
	assert.Equal(t, "hp", expired.Status)
	assert.Equal(t, ogre, expired.Entity)

	derived = char.UpdateStatuses(s, ogre)
	assert.Empty(t, derived)
}

func TestInitiativeOrdersBySpeed(t *testing.T) {
	s := testState(t)
	rounds := Rounds{cfg: testConfig()}

	fast, _ := s.Statistic(battle.CreatureEntity("ogre"), "speed")
	fast.Value = 9

	order := rounds.Initiative(s)
	require.Len(t, order, 2)
	assert.Equal(t, battle.CreatureEntity("ogre"), order[0])
	assert.Equal(t, battle.CreatureEntity("hero"), order[1])
}

func TestInitiativeTiesKeepRegistryOrder(t *testing.T) {
	s := testState(t)
	rounds := Rounds{cfg: testConfig()}

	order := rounds.Initiative(s)
	require.Len(t, order, 2)
	assert.Equal(t, battle.CreatureEntity("hero"), order[0])
	assert.Equal(t, battle.CreatureEntity("ogre"), order[1])
}

func TestInitiativeWithoutStatistic(t *testing.T) {
	s := testState(t)
	rounds := Rounds{cfg: Config{}}

	order := rounds.Initiative(s)
	require.Len(t, order, 2)
	assert.Equal(t, battle.CreatureEntity("hero"), order[0])
}

func TestCheckStartRoundEnforcesTurn(t *testing.T) {
	s := testState(t)
	rounds := Rounds{cfg: testConfig()}
	s.Rounds().Reset(rounds.Initiative(s))

	assert.Error(t, rounds.CheckStartRound(s, battle.ObjectEntity("rock")))
	assert.Error(t, rounds.CheckStartRound(s, battle.CreatureEntity("ogre")))
	assert.NoError(t, rounds.CheckStartRound(s, battle.CreatureEntity("hero")))
}

func TestOnActorRemoved(t *testing.T) {
	s := testState(t)
	rounds := Rounds{cfg: testConfig()}
	s.Rounds().Reset(rounds.Initiative(s))
	s.Rounds().Start(battle.CreatureEntity("hero"))

	// Removing a waiting actor just drops it from the ordering.
	derived := rounds.OnActorRemoved(s, battle.CreatureEntity("ogre"))
	assert.Empty(t, derived)
	assert.Len(t, s.Rounds().Order(), 1)

	// Removing the acting actor ends its round.
	derived = rounds.OnActorRemoved(s, battle.CreatureEntity("hero"))
	require.Len(t, derived, 1)
	assert.Equal(t, event.KindEndRound, derived[0].Kind)
}

func TestUserEventsRejected(t *testing.T) {
	user := User{}
	assert.Error(t, user.CheckUserEvent(battle.NewState(), event.Dummy{}))
}

func TestMetrics(t *testing.T) {
	s := testState(t)
	user := User{}

	creatures, ok := user.Metric(s, "grid.creatures")
	require.True(t, ok)
	assert.Equal(t, int64(2), creatures)

	teams, ok := user.Metric(s, "grid.teams")
	require.True(t, ok)
	assert.Equal(t, int64(2), teams)

	_, ok = user.Metric(s, "grid.unknown")
	assert.False(t, ok)
}
