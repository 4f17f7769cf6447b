package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanModel = `
package model

program: vesting: {
	instruction: withdraw: {
		accounts: [
			{name: "admin", kind: "signer"},
			{
				name: "config", kind: "typed_data", mutable: true
				constraints: [{has_one: "admin"}]
			},
			{name: "destination", kind: "typed_data", mutable: true},
			{
				name: "guard", kind: "typed_data"
				constraints: [{
					expr: "config.mint == destination.mint"
					pred: "mint_equality"
					refs: [{slot: "config", field: "mint"}, {slot: "destination", field: "mint"}]
				}]
			},
		]
		effects: [
			{transfer: {from: "config", to: "destination"}},
		]
	}
}
`

const vulnerableModel = `
package model

program: vesting: {
	instruction: withdraw: {
		accounts: [
			{name: "config", kind: "typed_data", mutable: true},
			{name: "destination", kind: "typed_data", mutable: true},
		]
		effects: [
			{transfer: {from: "config", to: "destination"}},
		]
	}
}
`

func writeModelDir(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.cue"), []byte(src), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestScan_CleanModel(t *testing.T) {
	dir := writeModelDir(t, cleanModel)

	out, err := execute(t, "scan", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "withdraw: ok")
	assert.Contains(t, out, "0 critical")
}

func TestScan_VulnerableModelFails(t *testing.T) {
	dir := writeModelDir(t, vulnerableModel)

	out, err := execute(t, "scan", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "ACC001")
	assert.Contains(t, out, "ACC003")
}

func TestScan_JSONOutput(t *testing.T) {
	dir := writeModelDir(t, vulnerableModel)

	out, err := execute(t, "--format", "json", "scan", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	var payload struct {
		Program string `json:"program"`
		Summary struct {
			Critical int `json:"critical"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &payload))
	assert.Equal(t, "vesting", payload.Program)
	assert.Equal(t, 2, payload.Summary.Critical)
}

func TestScan_MissingDirectory(t *testing.T) {
	_, err := execute(t, "scan", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestScan_ConfigDisablesRule(t *testing.T) {
	dir := writeModelDir(t, vulnerableModel)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sealint.yaml"), []byte(`
disabled_rules:
  - ACC001
severity_overrides:
  ACC003: warning
`), 0o644))

	out, err := execute(t, "scan", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "ACC001")
	assert.Contains(t, out, "warning")
}

func TestScan_BadConfigIsCommandError(t *testing.T) {
	dir := writeModelDir(t, cleanModel)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sealint.yaml"), []byte("disabled_rules: [ACC999]\n"), 0o644))

	_, err := execute(t, "scan", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestScan_RecordsRunInDatabase(t *testing.T) {
	dir := writeModelDir(t, vulnerableModel)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	_, err := execute(t, "scan", "--db", dbPath, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(t, "runs", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "vesting")
	assert.Contains(t, out, "2 critical")
}

func TestValidate_ValidModel(t *testing.T) {
	dir := writeModelDir(t, cleanModel)

	out, err := execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ model valid")
	assert.Contains(t, out, "program vesting")
}

func TestValidate_BrokenModelFails(t *testing.T) {
	dir := writeModelDir(t, `
package model

program: demo: instruction: bad: accounts: [{name: "x", kind: "mystery"}]
`)

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "mystery")
}

func TestValidate_DuplicateSlotFails(t *testing.T) {
	dir := writeModelDir(t, `
package model

program: demo: instruction: dup: accounts: [
	{name: "x", kind: "signer"},
	{name: "x", kind: "typed_data"},
]
`)

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "duplicate slot")
}

func TestRules_ListsAllRules(t *testing.T) {
	out, err := execute(t, "rules")
	require.NoError(t, err)
	for _, id := range []string{"ACC001", "ACC002", "ACC003", "ACC004", "ACC005", "ACC006"} {
		assert.Contains(t, out, id)
	}
	assert.NotContains(t, out, "disabled")
}

func TestRules_MarksDisabled(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("disabled_rules: [ACC004]\n"), 0o644))

	out, err := execute(t, "rules", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ACC004")
	assert.Contains(t, out, "disabled")
}

func TestRuns_UnknownRunID(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	// Create an empty database first.
	_, err := execute(t, "runs", "--db", dbPath)
	require.NoError(t, err)

	_, err = execute(t, "runs", "--db", dbPath, "not-a-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRoot_RejectsInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "rules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
