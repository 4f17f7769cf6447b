package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealint/sealint/internal/model"
)

func TestLoad_MissingFileIsZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFile))
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Empty(t, opts.DisabledRules)
	assert.Empty(t, opts.SeverityOverrides)
}

func TestLoad_FullConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(`
disabled_rules:
  - ACC004
  - ACC006
severity_overrides:
  ACC003: warning
  ACC005: info
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, []model.RuleID{model.RulePDADerivation, model.RuleReinitGuard}, opts.DisabledRules)
	assert.Equal(t, map[model.RuleID]model.Severity{
		model.RuleOwnershipConstraint: model.SeverityWarning,
		model.RuleInputValidation:     model.SeverityInfo,
	}, opts.SeverityOverrides)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("disable_rules: [ACC001]\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disable_rules")
}

func TestOptions_RejectsUnknownRuleID(t *testing.T) {
	cfg := &Config{DisabledRules: []string{"ACC999"}}
	_, err := cfg.Options()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACC999")
}

func TestOptions_RejectsUnknownSeverity(t *testing.T) {
	cfg := &Config{SeverityOverrides: map[string]string{"ACC001": "catastrophic"}}
	_, err := cfg.Options()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catastrophic")
}
