package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/whowrote/authorship/pkg/attribution"
)

var (
	benchmarkIterations int
	benchmarkQuery      string
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Time the fit, transform and predict stages",
	Long: `Repeatedly train on the configured corpus and score documents, then report
per-stage timings. Every corpus document is scored unless --query names a
file to score instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if benchmarkIterations < 1 {
			return fmt.Errorf("iterations must be at least 1")
		}

		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		c, err := loadCorpus(context.Background(), cfg, logger)
		if err != nil {
			return err
		}

		queries := c.Documents()
		if benchmarkQuery != "" {
			data, err := os.ReadFile(benchmarkQuery)
			if err != nil {
				return fmt.Errorf("failed to read query: %v", err)
			}
			queries = []string{string(data)}
		}

		attributor, err := attribution.New(cfg, logger.Logger)
		if err != nil {
			return err
		}

		fmt.Printf("🚀 whowrote Benchmark\n")
		fmt.Printf("👥 Authors: %d\n", len(c.Authors))
		fmt.Printf("📄 Training documents: %d\n", c.Size())
		fmt.Printf("🔎 Queries per run: %d\n", len(queries))
		fmt.Printf("🔄 Iterations: %d\n\n", benchmarkIterations)

		start := time.Now()
		for i := 0; i < benchmarkIterations; i++ {
			if err := attributor.Train(c); err != nil {
				return err
			}
			if _, err := attributor.AttributeAll(queries); err != nil {
				return err
			}
		}
		elapsed := time.Since(start)

		attributor.Profiler().WriteReport(os.Stdout)

		perRun := elapsed / time.Duration(benchmarkIterations)
		fmt.Printf("\n⏱️  Total: %v (%v per run)\n", elapsed.Round(time.Microsecond), perRun.Round(time.Microsecond))
		if elapsed > 0 {
			docs := float64(len(queries) * benchmarkIterations)
			fmt.Printf("⚡ Throughput: %.0f queries/second\n", docs/elapsed.Seconds())
		}

		return nil
	},
}

func init() {
	benchmarkCmd.Flags().IntVarP(&benchmarkIterations, "iterations", "n", 100, "Number of train and score runs")
	benchmarkCmd.Flags().StringVarP(&benchmarkQuery, "query", "q", "", "Score this file instead of the corpus documents")
}
