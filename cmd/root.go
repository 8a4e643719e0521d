package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/lotcataloger/internal/config"
	"github.com/lehigh-university-libraries/lotcataloger/internal/providers"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string

	// provider replaces the configured LLM provider when set
	provider providers.Provider
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(opts *rootOptions) *cobra.Command {

	cmd := &cobra.Command{
		Use:   "lotcataloger",
		Short: "Auction lot cataloging with LLM-generated descriptions",
		Long: `Lotcataloger groups uploaded auction lot images by lot number, asks a
vision-capable LLM to describe each lot, and appends the descriptions to a
downloadable CSV catalog.

Images are named <lot>-<n>.<ext>; every image sharing a lot prefix is sent
to the model in a single request.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return setupLogging(opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL or info")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newExportCmd(opts))

	return cmd
}

func setupLogging(level string) error {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadConfig reads the config file and environment, then applies any
// generation flags the user set on the command line
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Generation.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("model") {
		cfg.Generation.Model, _ = flags.GetString("model")
	}
	if flags.Changed("mode") {
		cfg.Generation.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("uploads") {
		cfg.UploadDir, _ = flags.GetString("uploads")
	}
	if flags.Changed("catalog") {
		cfg.CatalogPath, _ = flags.GetString("catalog")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func addGenerationFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "LLM provider (openai, ollama, gemini, or vertex)")
	cmd.Flags().String("model", "", "Model name (defaults to provider's default)")
	cmd.Flags().String("mode", "", "Grouping mode (lot or image)")
	addPathFlags(cmd)
}

func addPathFlags(cmd *cobra.Command) {
	cmd.Flags().String("uploads", "", "Upload directory")
	cmd.Flags().String("catalog", "", "Catalog CSV file or SQLite database")
}
