package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/whowrote/authorship/pkg/attribution"
)

var (
	classifyText string
	classifyHard bool
	classifyJSON bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [query-file]",
	Short: "Attribute a document to one of the corpus authors",
	Long: `Train on the configured corpus and score a query document.

The query is read from the given file, from stdin when the file is "-", or
from --text. By default one probability per author is printed in ascending
label order; --hard prints only the most probable label.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := readQuery(cmd.InOrStdin(), args, cmd.Flags().Changed("text"))
		if err != nil {
			return err
		}

		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx := context.Background()
		c, err := loadCorpus(ctx, cfg, logger)
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

		result, err := attributor.Attribute(query)
		if err != nil {
			return fmt.Errorf("attribution failed: %v", err)
		}

		switch {
		case classifyHard && (classifyJSON || cfg.Output.Format == "json"):
			return printJSON(map[string]interface{}{
				"label":  result.Label,
				"author": result.Author,
			})
		case classifyHard:
			fmt.Println(result.Label)
			return nil
		case classifyJSON || cfg.Output.Format == "json":
			return printJSON(result)
		}

		displayResult(result, cfg.Output.Precision)
		return nil
	},
}

// readQuery picks the query text from --text, a file or stdin. An empty
// --text is a valid query and scores as the class priors.
func readQuery(stdin io.Reader, args []string, textSet bool) (string, error) {
	if textSet {
		if len(args) > 0 {
			return "", fmt.Errorf("use either --text or a query file, not both")
		}
		return classifyText, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("a query file or --text is required")
	}

	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read query: %v", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func displayResult(result *attribution.Result, precision int) {
	printHeader("🔎 Authorship Attribution")

	width := 0
	for _, p := range result.Probabilities {
		if len(p.Author) > width {
			width = len(p.Author)
		}
	}

	for _, p := range result.Probabilities {
		marker := "  "
		if p.Label == result.Label {
			marker = "👉"
		}
		fmt.Printf("%s %d  %-*s  %s  %s\n", marker, p.Label, width, p.Author,
			formatProbability(p.Probability, precision), probabilityBar(p.Probability, 20))
	}

	fmt.Printf("\n✍️  Most likely author: %s (label %d)\n", result.Author, result.Label)
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyText, "text", "t", "", "Query text")
	classifyCmd.Flags().BoolVar(&classifyHard, "hard", false, "Print only the predicted label")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print the result as JSON")
}
