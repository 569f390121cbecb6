package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Feyenoord", cfg.ClubName)
	assert.Equal(t, 15, cfg.Context.RecentWindow)
	assert.Equal(t, 1, cfg.Workflow.MaxFixAttempts)
	assert.True(t, cfg.Workflow.FormatOutput)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
club_name: Ajax
database:
  path: /data/matches.sqlite
llm:
  provider: openai
  model: gpt-4o-mini
workflow:
  max_fix_attempts: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Ajax", cfg.ClubName)
	assert.Equal(t, "/data/matches.sqlite", cfg.Database.Path)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Workflow.MaxFixAttempts)
	// Untouched sections keep their defaults.
	assert.Equal(t, 3000, cfg.Context.OlderCharThreshold)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("club_name: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MATCHDAY_DB_PATH", "/env/matches.sqlite")
	t.Setenv("MATCHDAY_API_KEY", "env-key")
	t.Setenv("MATCHDAY_MAX_FIX_ATTEMPTS", "2")
	t.Setenv("GEMINI_API_KEY", "should-lose")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/env/matches.sqlite", cfg.Database.Path)
	assert.Equal(t, "env-key", cfg.LLM.APIKey, "explicit key beats provider key")
	assert.Equal(t, 2, cfg.Workflow.MaxFixAttempts)
}

func TestProviderKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("MATCHDAY_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gem-key", cfg.LLM.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "key"
	assert.NoError(t, cfg.Validate())

	missingKey := DefaultConfig()
	assert.Error(t, missingKey.Validate())

	noDB := DefaultConfig()
	noDB.LLM.APIKey = "key"
	noDB.Database.Path = ""
	assert.Error(t, noDB.Validate())

	badAttempts := DefaultConfig()
	badAttempts.LLM.APIKey = "key"
	badAttempts.Workflow.MaxFixAttempts = 5
	assert.Error(t, badAttempts.Validate())
}
