package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whowrote/authorship/pkg/config"
	"github.com/whowrote/authorship/pkg/corpus"
)

var (
	corpusBackend string
	corpusPreview int
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Corpus management",
	Long:  `Seed corpus backends and inspect the configured corpus`,
}

var corpusImportCmd = &cobra.Command{
	Use:   "import <corpus-file>",
	Short: "Copy a YAML corpus into a backend",
	Long: `Read a YAML corpus file and store it in the Redis or SQLite backend named by
--backend (default: the configured backend), replacing what was there.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if corpusBackend != "" {
			cfg.Corpus.Backend = corpusBackend
		}
		if cfg.Corpus.Backend == config.BackendFile {
			return fmt.Errorf("import needs a redis or sqlite backend, got %q", cfg.Corpus.Backend)
		}

		c, err := corpus.LoadFile(args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		store, err := corpus.Open(ctx, cfg.Corpus.Options())
		if err != nil {
			return fmt.Errorf("failed to open corpus backend: %w", err)
		}
		defer store.Close()

		if err := store.Save(ctx, c); err != nil {
			return fmt.Errorf("failed to store corpus: %v", err)
		}
		logger.WithBackend(cfg.Corpus.Backend).Info("corpus imported")

		fmt.Printf("✅ Imported %d authors and %d documents into %s\n", len(c.Authors), c.Size(), cfg.Corpus.Backend)
		return nil
	},
}

var corpusShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured corpus",
	Long:  `Load the corpus from the configured backend and list its authors and label blocks`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if corpusBackend != "" {
			cfg.Corpus.Backend = corpusBackend
		}

		c, err := loadCorpus(context.Background(), cfg, logger)
		if err != nil {
			return err
		}

		printHeader("📚 Corpus")
		fmt.Printf("🗄️  Backend: %s\n", cfg.Corpus.Backend)
		fmt.Printf("📄 Documents: %d\n", c.Size())

		first := 0
		for i, a := range c.Authors {
			last := first + len(a.Documents) - 1
			fmt.Printf("\n✍️  Label %d: %s (%d documents, rows %d-%d)\n", i+1, a.Name, len(a.Documents), first, last)
			for j, doc := range a.Documents {
				if j >= corpusPreview {
					fmt.Printf("  ... %d more\n", len(a.Documents)-corpusPreview)
					break
				}
				fmt.Printf("  - %s\n", preview(doc, 60))
			}
			first = last + 1
		}
		return nil
	},
}

// preview shortens doc to one line of at most n runes.
func preview(doc string, n int) string {
	r := []rune(doc)
	for i, ch := range r {
		if ch == '\n' || ch == '\r' {
			r = r[:i]
			break
		}
	}
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-3]) + "..."
}

func init() {
	corpusCmd.PersistentFlags().StringVar(&corpusBackend, "backend", "", "Corpus backend (file, redis, sqlite)")
	corpusShowCmd.Flags().IntVar(&corpusPreview, "preview", 3, "Documents to preview per author")

	corpusCmd.AddCommand(corpusImportCmd)
	corpusCmd.AddCommand(corpusShowCmd)
}
