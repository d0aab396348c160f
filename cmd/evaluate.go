package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whowrote/authorship/pkg/attribution"
)

var (
	evaluateFolds int
	evaluateJSON  bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Estimate accuracy with k-fold cross-validation",
	Long: `Split every author's documents round-robin into k folds, train on k-1 of
them and score the held-out fold, for each fold in turn.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		folds := cfg.Evaluation.Folds
		if cmd.Flags().Changed("folds") {
			folds = evaluateFolds
		}

		c, err := loadCorpus(context.Background(), cfg, logger)
		if err != nil {
			return err
		}

		attributor, err := attribution.New(cfg, logger.Logger)
		if err != nil {
			return err
		}

		eval, err := attributor.CrossValidate(c, folds)
		if err != nil {
			return fmt.Errorf("evaluation failed: %v", err)
		}

		if evaluateJSON || cfg.Output.Format == "json" {
			return printJSON(eval)
		}

		printHeader("📊 Cross-Validation")
		fmt.Printf("👥 Authors: %d\n", len(c.Authors))
		fmt.Printf("📄 Documents: %d\n", c.Size())
		fmt.Printf("🔀 Folds: %d\n\n", folds)

		for _, f := range eval.Folds {
			fmt.Printf("  Fold %d: %d/%d correct (%.1f%%), trained on %d\n",
				f.Fold, f.Correct, f.Test, f.Accuracy*100, f.Train)
		}

		fmt.Printf("\n🎯 Accuracy: %d/%d (%.1f%%)\n", eval.Correct, eval.Tested, eval.Accuracy*100)

		fmt.Printf("\n📋 Confusion (rows = true author, columns = predicted label):\n")
		for i, row := range eval.Confusion {
			fmt.Printf("  %d %-12s", i+1, c.Authors[i].Name)
			for _, n := range row {
				fmt.Printf(" %4d", n)
			}
			fmt.Println()
		}

		return nil
	},
}

func init() {
	evaluateCmd.Flags().IntVarP(&evaluateFolds, "folds", "k", 5, "Number of folds (default from config)")
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "Print the evaluation as JSON")
}
