package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whowrote/authorship/pkg/attribution"
)

var (
	statsTop  int
	statsJSON bool
)

type authorStats struct {
	Label     int                       `json:"label"`
	Author    string                    `json:"author"`
	Documents int                       `json:"documents"`
	Prior     float64                   `json:"prior"`
	TopTokens []attribution.TokenWeight `json:"top_tokens"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and model statistics",
	Long: `Train on the configured corpus and show per-author sizes, class priors,
the vocabulary size and the tokens most characteristic of each author.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		c, err := loadCorpus(context.Background(), cfg, logger)
		if err != nil {
			return err
		}

		attributor, err := attribution.New(cfg, logger.Logger)
		if err != nil {
			return err
		}
		if err := attributor.Train(c); err != nil {
			return err
		}

		summary, err := attributor.Summary()
		if err != nil {
			return err
		}

		authors := make([]authorStats, len(summary.Authors))
		for i, name := range summary.Authors {
			top, err := attributor.TopTokens(i+1, statsTop)
			if err != nil {
				return err
			}
			authors[i] = authorStats{
				Label:     i + 1,
				Author:    name,
				Documents: summary.Documents[i],
				Prior:     summary.Priors[i],
				TopTokens: top,
			}
		}

		if statsJSON || cfg.Output.Format == "json" {
			return printJSON(map[string]interface{}{
				"vocabulary_size":   summary.VocabularySize,
				"alpha":             summary.Alpha,
				"training_accuracy": summary.TrainingAccuracy,
				"authors":           authors,
			})
		}

		printHeader("📚 Corpus Statistics")
		fmt.Printf("🗄️  Backend: %s\n", cfg.Corpus.Backend)
		fmt.Printf("📖 Vocabulary size: %d\n", summary.VocabularySize)
		fmt.Printf("🧮 Smoothing alpha: %g\n", summary.Alpha)
		fmt.Printf("🎯 Training accuracy: %.1f%%\n", summary.TrainingAccuracy*100)

		for _, a := range authors {
			fmt.Printf("\n✍️  %d %s: %d documents, prior %s\n", a.Label, a.Author, a.Documents,
				formatProbability(a.Prior, cfg.Output.Precision))
			for _, tw := range a.TopTokens {
				fmt.Printf("  %-16s count %-4d log P %8.3f  ratio %+.3f\n",
					tw.Token, tw.Count, tw.LogProb, tw.LogRatio)
			}
		}

		return nil
	},
}

func init() {
	statsCmd.Flags().IntVarP(&statsTop, "top", "n", 10, "Number of top tokens per author")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")
}
