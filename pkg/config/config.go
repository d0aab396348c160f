package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/whowrote/authorship/pkg/corpus"
	"github.com/whowrote/authorship/pkg/tokenizer"
)

// Corpus backends
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config represents whowrote configuration
type Config struct {
	// Where the labeled writing samples come from
	Corpus CorpusConfig `yaml:"corpus"`

	// Text normalization and token boundaries
	Tokenizer tokenizer.Policy `yaml:"tokenizer"`

	// Naive Bayes parameters
	Classifier ClassifierConfig `yaml:"classifier"`

	// Evaluation settings
	Evaluation EvaluationConfig `yaml:"evaluation"`

	// Result printing
	Output OutputConfig `yaml:"output"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// CorpusConfig selects and configures the corpus backend
type CorpusConfig struct {
	// Backend selection: "file", "redis" or "sqlite"
	Backend string `yaml:"backend"`

	// YAML corpus file for the file backend
	Path string `yaml:"path"`

	// Redis backend settings
	Redis corpus.RedisConfig `yaml:"redis"`

	// SQLite backend settings
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// Options converts the section into options for corpus.Open.
func (c CorpusConfig) Options() corpus.Options {
	opts := corpus.Options{Backend: c.Backend, Path: c.Path, Redis: c.Redis}
	if c.Backend == BackendSQLite {
		opts.Path = c.SQLite.Path
	}
	return opts
}

// SQLiteConfig contains SQLite backend settings
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ClassifierConfig contains multinomial Naive Bayes parameters
type ClassifierConfig struct {
	Alpha    float64 `yaml:"alpha"`     // additive smoothing
	FitPrior bool    `yaml:"fit_prior"` // false = uniform class priors
}

// EvaluationConfig contains cross-validation settings
type EvaluationConfig struct {
	Folds int `yaml:"folds"`
}

// OutputConfig contains result formatting settings
type OutputConfig struct {
	Format    string `yaml:"format"`    // text, json
	Precision int    `yaml:"precision"` // decimals for probabilities
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	File   string `yaml:"file"`   // log file path, empty = stderr
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Backend: BackendFile,
			Path:    "corpus.yaml",
			Redis: corpus.RedisConfig{
				RedisURL:    "redis://localhost:6379",
				KeyPrefix:   "whowrote:corpus",
				DatabaseNum: 0,
			},
			SQLite: SQLiteConfig{
				Path: "whowrote.db",
			},
		},
		Tokenizer: tokenizer.DefaultPolicy(),
		Classifier: ClassifierConfig{
			Alpha:    1.0,
			FitPrior: true,
		},
		Evaluation: EvaluationConfig{
			Folds: 5,
		},
		Output: OutputConfig{
			Format:    "text",
			Precision: 4,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			File:   "",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If no config file specified, return defaults
	if configPath == "" {
		return config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	// Relative corpus paths are resolved against the config file
	base := filepath.Dir(configPath)
	config.Corpus.Path = resolvePath(base, config.Corpus.Path)
	config.Corpus.SQLite.Path = resolvePath(base, config.Corpus.SQLite.Path)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}

	return config, nil
}

func resolvePath(base, path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	err = os.WriteFile(configPath, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Corpus.Backend {
	case BackendFile:
		if c.Corpus.Path == "" {
			return fmt.Errorf("corpus path cannot be empty for the file backend")
		}
	case BackendRedis:
		if c.Corpus.Redis.RedisURL == "" {
			return fmt.Errorf("redis_url cannot be empty for the redis backend")
		}
	case BackendSQLite:
		if c.Corpus.SQLite.Path == "" {
			return fmt.Errorf("sqlite path cannot be empty for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown corpus backend: %s", c.Corpus.Backend)
	}

	if err := c.Tokenizer.Validate(); err != nil {
		return fmt.Errorf("tokenizer: %v", err)
	}

	if math.IsNaN(c.Classifier.Alpha) || c.Classifier.Alpha < 0 {
		return fmt.Errorf("alpha must be >= 0")
	}

	if c.Evaluation.Folds < 2 {
		return fmt.Errorf("evaluation folds must be >= 2")
	}

	if c.Output.Format != "text" && c.Output.Format != "json" {
		return fmt.Errorf("output format must be 'text' or 'json'")
	}
	if c.Output.Precision < 0 || c.Output.Precision > 17 {
		return fmt.Errorf("output precision must be between 0 and 17")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	validLevel := false
	for _, level := range validLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console'")
	}

	return nil
}
