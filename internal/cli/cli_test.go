package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duelScenario = "../scenario/testdata/duel.yaml"

// execute runs the CLI with the given args and captures stdout.
func execute(args ...string) (string, error) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunScenarioText(t *testing.T) {
	out, err := execute("run", duelScenario)
	require.NoError(t, err)
	assert.Contains(t, out, "scenario duel: 8 events applied, 2 rejected")
	assert.Contains(t, out, "round.end")
	assert.Contains(t, out, "VALIDATION_REJECTED")
	assert.Contains(t, out, "final: phase=started round=1 teams=2 creatures=2 objects=0")
}

func TestRunScenarioJSON(t *testing.T) {
	out, err := execute("--format", "json", "run", duelScenario)
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "duel", data["scenario_name"])
}

func TestRunMissingScenario(t *testing.T) {
	_, err := execute("run", "does-not-exist.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute("--format", "xml", "run", duelScenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRunPersistsAndTraces(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "battle.db")

	_, err := execute("run", duelScenario, "--db", dbPath)
	require.NoError(t, err)

	out, err := execute("trace", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "8 events")
	assert.Contains(t, out, "team.create")
	assert.Contains(t, out, "submitter:local")
}

func TestVerifyRecordedTimeline(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "battle.db")
	_, err := execute("run", duelScenario, "--db", dbPath)
	require.NoError(t, err)

	out, err := execute("verify", dbPath, "--scenario", duelScenario)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 8 events verified")
}

func TestVerifyUnderWrongRulesFails(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "battle.db")
	_, err := execute("run", duelScenario, "--db", dbPath)
	require.NoError(t, err)

	// Without the originating scenario the empty bundle is used and the
	// rebuilt checksums diverge.
	_, err = execute("verify", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestReplayRecordedTimeline(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "battle.db")
	_, err := execute("run", duelScenario, "--db", dbPath)
	require.NoError(t, err)

	out, err := execute("replay", dbPath, "--scenario", duelScenario)
	require.NoError(t, err)
	assert.Contains(t, out, "replayed 8 events")
	assert.Contains(t, out, "phase=started round=1")
	assert.Contains(t, out, "creature hero team=alpha position=(3,3)")
}

func TestTraceMissingDatabase(t *testing.T) {
	_, err := execute("trace", filepath.Join(t.TempDir(), "missing", "battle.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "boom", nil)))
}
