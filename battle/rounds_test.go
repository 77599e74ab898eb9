package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundsCursor(t *testing.T) {
	r := NewRounds()
	assert.Equal(t, int64(0), r.Completed())
	_, acting := r.Acting()
	assert.False(t, acting)

	hero := CreatureEntity("hero")
	mage := CreatureEntity("mage")
	r.Reset([]EntityID{hero, mage})

	next, ok := r.Next()
	assert.True(t, ok)
	assert.Equal(t, hero, next)

	r.Start(hero)
	assert.True(t, r.IsActing(hero))
	assert.False(t, r.IsActing(mage))

	r.End()
	assert.Equal(t, int64(1), r.Completed())
	_, acting = r.Acting()
	assert.False(t, acting)

	next, _ = r.Next()
	assert.Equal(t, mage, next)

	r.Start(mage)
	r.End()
	next, _ = r.Next()
	assert.Equal(t, hero, next)
}

func TestRoundsDropActor(t *testing.T) {
	hero := CreatureEntity("hero")
	mage := CreatureEntity("mage")
	ogre := CreatureEntity("ogre")

	r := NewRounds()
	r.Reset([]EntityID{hero, mage, ogre})

	// Dropping an earlier actor keeps the cursor on the same entity.
	r.Start(hero)
	r.End()
	r.DropActor(hero)
	next, _ := r.Next()
	assert.Equal(t, mage, next)

	r.DropActor(mage)
	next, _ = r.Next()
	assert.Equal(t, ogre, next)

	r.DropActor(ogre)
	_, ok := r.Next()
	assert.False(t, ok)
}

func TestRoundsResetRewindsStep(t *testing.T) {
	hero := CreatureEntity("hero")
	mage := CreatureEntity("mage")

	r := NewRounds()
	r.Reset([]EntityID{hero, mage})
	r.Start(hero)
	r.End()

	r.Reset([]EntityID{mage, hero})
	next, _ := r.Next()
	assert.Equal(t, mage, next)
	assert.Equal(t, int64(1), r.Completed())
}
