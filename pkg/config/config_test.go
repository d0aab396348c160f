package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1.0, cfg.Classifier.Alpha)
	assert.True(t, cfg.Classifier.FitPrior)
	assert.True(t, cfg.Tokenizer.Lowercase)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whowrote.yaml")
	data := `corpus:
  backend: file
  path: data/friends.yaml
tokenizer:
  stop_words: english
  stem: true
classifier:
  alpha: 0.5
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data/friends.yaml"), cfg.Corpus.Path)
	assert.Equal(t, "english", cfg.Tokenizer.StopWords)
	assert.True(t, cfg.Tokenizer.Stem)
	assert.True(t, cfg.Tokenizer.Lowercase, "unset fields keep their defaults")
	assert.Equal(t, 0.5, cfg.Classifier.Alpha)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("corpus: ["), 0644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("classifier:\n  alpha: -2\n"), 0644))
	_, err = LoadConfig(invalid)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Corpus.Backend = "s3" }},
		{"empty file path", func(c *Config) { c.Corpus.Path = "" }},
		{"empty redis url", func(c *Config) { c.Corpus.Backend = BackendRedis; c.Corpus.Redis.RedisURL = "" }},
		{"empty sqlite path", func(c *Config) { c.Corpus.Backend = BackendSQLite; c.Corpus.SQLite.Path = "" }},
		{"bad token pattern", func(c *Config) { c.Tokenizer.Pattern = "(" }},
		{"negative alpha", func(c *Config) { c.Classifier.Alpha = -1 }},
		{"one fold", func(c *Config) { c.Evaluation.Folds = 1 }},
		{"output format", func(c *Config) { c.Output.Format = "xml" }},
		{"precision", func(c *Config) { c.Output.Precision = 40 }},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"log format", func(c *Config) { c.Logging.Format = "text" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "whowrote.yaml")
	cfg := DefaultConfig()
	cfg.Classifier.Alpha = 0.25

	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, loaded.Classifier.Alpha)
}

func TestCorpusOptions(t *testing.T) {
	cfg := DefaultConfig()

	opts := cfg.Corpus.Options()
	assert.Equal(t, BackendFile, opts.Backend)
	assert.Equal(t, "corpus.yaml", opts.Path)

	cfg.Corpus.Backend = BackendSQLite
	opts = cfg.Corpus.Options()
	assert.Equal(t, "whowrote.db", opts.Path)

	cfg.Corpus.Backend = BackendRedis
	opts = cfg.Corpus.Options()
	assert.Equal(t, "redis://localhost:6379", opts.Redis.RedisURL)
	assert.Equal(t, "whowrote:corpus", opts.Redis.KeyPrefix)
}
