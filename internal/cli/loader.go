package cli

import (
	"context"

	"github.com/saltmarsh/skirmish/engine"
	"github.com/saltmarsh/skirmish/internal/scenario"
	"github.com/saltmarsh/skirmish/rules"
	"github.com/saltmarsh/skirmish/rules/empty"
	"github.com/saltmarsh/skirmish/store"
)

// loadBundle resolves the rules bundle for replay commands. A timeline only
// replays correctly under the bundle that produced it, so commands accept the
// originating scenario file; without one the permissive empty bundle is used.
func loadBundle(scenarioPath string) (rules.Bundle, error) {
	if scenarioPath == "" {
		return empty.Bundle(), nil
	}
	s, err := scenario.Load(scenarioPath)
	if err != nil {
		return rules.Bundle{}, err
	}
	return s.Bundle()
}

// loadEntries reads a persisted timeline.
func loadEntries(dbPath string) ([]engine.Entry, error) {
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return db.ReadEntries(context.Background())
}
