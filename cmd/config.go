package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/whowrote/authorship/pkg/config"
	"github.com/whowrote/authorship/pkg/tokenizer"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Generate and manage whowrote configuration files`,
}

var configGenCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Long:  `Generate a default configuration file with all options`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "whowrote.yaml"
		if len(args) > 0 {
			path = args[0]
		}

		// Check if file already exists
		if _, err := os.Stat(path); err == nil {
			overwrite, _ := cmd.Flags().GetBool("force")
			if !overwrite {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}
		}

		if err := config.DefaultConfig().SaveConfig(path); err != nil {
			return fmt.Errorf("failed to save config: %v", err)
		}

		fmt.Printf("✅ Configuration file generated: %s\n", path)
		fmt.Printf("📝 Edit the file to point at your corpus and tune the tokenizer\n")
		fmt.Printf("🚀 Use 'whowrote classify --config %s' to use the configuration\n", path)

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Validate configuration file",
	Long:  `Validate a configuration file for syntax and logical errors`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("❌ Configuration validation failed: %v", err)
		}

		warnings := validateConfigLogic(cfg)

		fmt.Printf("✅ Configuration is valid: %s\n", path)

		if len(warnings) > 0 {
			fmt.Printf("\n⚠️  Warnings:\n")
			for _, warning := range warnings {
				fmt.Printf("  - %s\n", warning)
			}
		}

		fmt.Printf("\n📊 Configuration Summary:\n")
		fmt.Printf("  Corpus backend: %s\n", cfg.Corpus.Backend)
		fmt.Printf("  Token pattern: %s\n", cfg.Tokenizer.Pattern)
		fmt.Printf("  Alpha: %g\n", cfg.Classifier.Alpha)
		fmt.Printf("  Folds: %d\n", cfg.Evaluation.Folds)

		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [config-file]",
	Short: "Show current configuration",
	Long:  `Display the configuration with all values, defaults filled in`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *config.Config
		var err error

		if len(args) > 0 {
			cfg, err = config.LoadConfig(args[0])
			if err != nil {
				return fmt.Errorf("failed to load config: %v", err)
			}
			fmt.Printf("# Configuration: %s\n", args[0])
		} else {
			cfg = config.DefaultConfig()
			fmt.Printf("# Default configuration\n")
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %v", err)
		}
		fmt.Print(string(data))

		return nil
	},
}

// validateConfigLogic flags settings that are valid but probably unintended
func validateConfigLogic(cfg *config.Config) []string {
	var warnings []string

	if cfg.Classifier.Alpha == 0 {
		warnings = append(warnings, "Alpha 0 disables smoothing; unseen tokens give near-zero likelihoods")
	}

	if cfg.Classifier.Alpha > 10 {
		warnings = append(warnings, "Large alpha flattens likelihoods toward uniform")
	}

	if !cfg.Tokenizer.Lowercase && cfg.Tokenizer.Stem {
		warnings = append(warnings, "Stemming expects lowercase input")
	}

	if cfg.Tokenizer.StopWords == tokenizer.StopWordsEnglish {
		builtin := make(map[string]bool)
		for _, w := range tokenizer.EnglishStopWords() {
			builtin[w] = true
		}
		for _, w := range cfg.Tokenizer.ExtraStopWords {
			if builtin[strings.ToLower(w)] {
				warnings = append(warnings, fmt.Sprintf("Extra stop word %q is already in the english list", w))
			}
		}
	}

	if cfg.Tokenizer.MaxLength > 0 && cfg.Tokenizer.MaxLength < 3 {
		warnings = append(warnings, "Very small max_length drops most words")
	}

	if cfg.Evaluation.Folds > 20 {
		warnings = append(warnings, "Many folds leave few test documents per fold")
	}

	if cfg.Corpus.Backend == config.BackendRedis && cfg.Corpus.Redis.KeyPrefix == "" {
		warnings = append(warnings, "Empty Redis key prefix falls back to whowrote:corpus")
	}

	return warnings
}

func init() {
	configGenCmd.Flags().BoolP("force", "f", false, "Overwrite existing configuration file")

	configCmd.AddCommand(configGenCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
