package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/whowrote/authorship/pkg/config"
	"github.com/whowrote/authorship/pkg/corpus"
	"github.com/whowrote/authorship/pkg/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "whowrote",
	Short: "whowrote - Authorship attribution with Naive Bayes",
	Long: `whowrote guesses who wrote an anonymous text by comparing its word usage
against labeled writing samples from known authors.

Documents are turned into word counts over a fixed vocabulary and scored by a
multinomial Naive Bayes classifier. The result is a probability per author.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("whowrote - Authorship attribution")
		fmt.Println("Use 'whowrote --help' for usage information")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads --config and applies --log-level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger from it.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.FromConfig(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %v", err)
	}
	return cfg, logger, nil
}

// loadCorpus reads the corpus from the configured backend.
func loadCorpus(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*corpus.Corpus, error) {
	log := logger.WithBackend(cfg.Corpus.Backend)

	store, err := corpus.Open(ctx, cfg.Corpus.Options())
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer store.Close()

	c, err := store.Load(ctx)
	if err != nil {
		logger.WithError(err).Error("corpus load failed", zap.String("backend", cfg.Corpus.Backend))
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	for i, a := range c.Authors {
		logger.WithAuthor(a.Name, i+1).Debug("author loaded")
	}
	log.Info("corpus loaded", zap.Int("documents", c.Size()))
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging level (debug, info, warn, error)")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(corpusCmd)
	rootCmd.AddCommand(configCmd)
}
