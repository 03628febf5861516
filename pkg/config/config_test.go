package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/tapdict/pkg/keys"
	"github.com/bastiangx/tapdict/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[engine]
typed_letter_multiplier = 3

[query]
max_words = 5
completions = true

[cli]
layout = "azerty"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Engine.TypedLetterMultiplier)
	assert.Equal(t, 2, cfg.Engine.FullWordMultiplier)
	assert.Equal(t, 5, cfg.Query.MaxWords)
	assert.True(t, cfg.Query.Completions)
	assert.Equal(t, "azerty", cfg.CLI.Layout)
	assert.True(t, cfg.Server.Watch)
	assert.Equal(t, 200*time.Millisecond, cfg.Server.Debounce())
}

func TestPartialRecovery(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "mistyped key keeps its siblings",
			body: `
[query]
max_words = "plenty"
max_alternatives = 3

[server]
watch = false
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, suggest.DefaultMaxWords, cfg.Query.MaxWords)
				assert.Equal(t, 3, cfg.Query.MaxAlternatives)
				assert.False(t, cfg.Server.Watch)
			},
		},
		{
			name: "broken syntax uses defaults",
			body: "[query\nmax_words = 3",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultConfig(), cfg)
			},
		},
		{
			name: "out of range values are reset",
			body: `
[engine]
typed_letter_multiplier = 0
max_blob_size = 99999999999

[query]
max_word_length = 100
max_words = 1000000000
`,
			check: func(t *testing.T, cfg *Config) {
				def := DefaultConfig()
				assert.Equal(t, def.Engine, cfg.Engine)
				assert.Equal(t, suggest.DefaultMaxWordLength, cfg.Query.MaxWordLength)
				assert.Equal(t, suggest.DefaultMaxWords, cfg.Query.MaxWords)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.body))
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigWithPriority(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	custom := writeConfig(t, "[cli]\ndefault_limit = 4\n")
	cfg, path, err := LoadConfigWithPriority(custom)
	require.NoError(t, err)
	assert.Equal(t, custom, path)
	assert.Equal(t, 4, cfg.CLI.DefaultLimit)

	cfg, path, err = LoadConfigWithPriority(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	if path != "" {
		assert.FileExists(t, path)
	}
}

func TestUpdateAndQuery(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	words, corrections, completions := 7, -1, true
	require.NoError(t, cfg.Update(path, &words, nil, &corrections, &completions))

	saved, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, saved.Query.MaxWords)
	assert.Equal(t, -1, saved.Query.MaxCorrections)

	q := saved.Query.NewQuery(keys.FromString("cat"))
	assert.Equal(t, 7, q.MaxWords)
	assert.Equal(t, suggest.NoSkip, q.SkipPos)
	assert.True(t, q.Completions)
	assert.NoError(t, q.Validate())
}
