// Package main provides the star_coach command: the coaching proxy server
// and a terminal client for STAR interview answers and work tickets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonathan/star-coach/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	configPath string
	serverURL  string
	dbPath     string

	settings config.Config
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "star_coach",
	Short: "STAR interview and work ticket coach",
	Long: `star_coach guides you through a STAR interview answer or a work ticket one
section at a time, extracting the structured document from the conversation.

Run "star_coach serve" to start the proxy that holds the model credential, or
point the client commands at one with --server / STAR_COACH_SERVER. Without a
proxy the client calls the model directly using GEMINI_API_KEY.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		settings = cfg

		// the terminal UI owns the screen, so its logs go to a file
		var outputs []string
		if cmd.Name() == "coach" {
			outputs = []string{logFilePath(settings.DBPath)}
		}
		logger, err = newLogger(settings.Verbose, outputs...)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Proxy base URL (overrides STAR_COACH_SERVER)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Local session database (overrides STAR_COACH_DB)")
}

// loadSettings resolves the configuration. Flags win over the config file,
// which wins over the environment, which wins over built-in defaults.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	cfg := config.FromEnv()
	if configPath != "" {
		fileCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}
	cfg = cfg.MergeWithDefaults(config.Defaults())

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = serverURL
	}
	if flags.Changed("db") {
		cfg.DBPath = dbPath
	}
	cfg.Verbose = cfg.Verbose || verbose

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds a production logger, at debug level when verbose. Empty
// outputs log to stderr.
func newLogger(verbose bool, outputs ...string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if len(outputs) > 0 {
		cfg.OutputPaths = outputs
		cfg.ErrorOutputPaths = outputs
	}
	return cfg.Build()
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
