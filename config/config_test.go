package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv はテスト中に外部の環境変数の影響を受けないようにします
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PT_CONFIG", "PT_API_TOKEN", "PT_PROJECT_ID", "PT_USERNAMES", "PT_BASE_URL", "PT_LOG_LEVEL", "DISABLE_MARKDOWN"} {
		t.Setenv(k, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "api_token: TOKEN\nproject_id: \"42\"\nusernames: [A, B]\n")

	cfg, doc, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "TOKEN", cfg.APIToken)
	assert.Equal(t, "42", cfg.ProjectID)
	assert.Equal(t, []string{"A", "B"}, cfg.Usernames)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.DisableMarkdown)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, path, doc.Path())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "api_token: TOKEN\nproject_id: \"42\"\nusernames: [A]\n")
	t.Setenv("PT_API_TOKEN", "ENV_TOKEN")
	t.Setenv("PT_USERNAMES", "X, Y")
	t.Setenv("PT_BASE_URL", "http://localhost:9999/services/v5/")
	t.Setenv("DISABLE_MARKDOWN", "true")

	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ENV_TOKEN", cfg.APIToken)
	assert.Equal(t, "42", cfg.ProjectID)
	assert.Equal(t, []string{"X", "Y"}, cfg.Usernames)
	assert.Equal(t, "http://localhost:9999/services/v5", cfg.BaseURL)
	assert.True(t, cfg.DisableMarkdown)
}

func TestLoadConfigPathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "api_token: TOKEN\nproject_id: \"42\"\nusername: LEGACY\n")
	t.Setenv("PT_CONFIG", path)

	cfg, doc, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, SchemaLegacy, doc.Version())
	assert.Equal(t, []string{"LEGACY"}, cfg.Usernames)
}

func TestLoadConfigDefaultPath(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PT_API_TOKEN", "TOKEN")
	t.Setenv("PT_PROJECT_ID", "42")

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DefaultFileName), cfg.Path)
}

func TestLoadConfigMissingSettings(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "project_id: \"42\"\n")
	_, _, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrMissingSetting)

	path = writeFile(t, "api_token: TOKEN\n")
	_, _, err = LoadConfig(path)
	assert.ErrorIs(t, err, ErrMissingSetting)
}
