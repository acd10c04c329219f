package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, 10, cfg.MaxArticles)
	assert.Equal(t, 300, cfg.ChunkMaxWords)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 4, cfg.ArticleConcurrency)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("MAX_ARTICLES", "5")
	t.Setenv("CHUNK_MAX_WORDS", "120")
	t.Setenv("MODEL_TIMEOUT_SECONDS", "90")
	t.Setenv("SEARCH_LOCALE", "dk")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxArticles)
	assert.Equal(t, 120, cfg.ChunkMaxWords)
	assert.Equal(t, 90*time.Second, cfg.ModelTimeout)
	assert.Equal(t, "dk", cfg.Locale)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadLocales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locales.yaml")
	content := "locales:\n  in:\n    region: IN\n    language: en-IN\n  dk:\n    region: DK\n    language: da\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	locales, err := LoadLocales(path)
	require.NoError(t, err)
	require.Len(t, locales, 2)
	assert.Equal(t, "da", locales["dk"].Language)
}

func TestLoadLocalesMissingFile(t *testing.T) {
	_, err := LoadLocales(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestResolveLocaleFallback(t *testing.T) {
	locales := map[string]Locale{"dk": {Region: "DK", Language: "da"}}

	assert.Equal(t, Locale{Region: "DK", Language: "da"}, ResolveLocale(locales, "dk"))
	assert.Equal(t, Locale{Region: "IN", Language: "en-IN"}, ResolveLocale(locales, "nope"))
	assert.Equal(t, Locale{Region: "IN", Language: "en-IN"}, ResolveLocale(nil, "dk"))
}
