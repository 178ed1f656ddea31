package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicore/modgrammar/internal/logging"
	"github.com/cognicore/modgrammar/pkg/modgrammar"
	"github.com/cognicore/modgrammar/pkg/modgrammar/config"
	"github.com/cognicore/modgrammar/pkg/modgrammar/grammar"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "modgrammar",
	Short: "Recognize item modifier text against the trade stats catalog",
	Long: `modgrammar compiles the trade stats catalog into a grammar, matches item
modifier lines against it and aggregates the matches across characters.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg = config.Default()
		if configPath != "" {
			if cfg, err = config.Load(configPath); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
		}
		opts := logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development}
		if verbose {
			opts.Level = "debug"
		}
		logger, err = logging.New(opts)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config YAML")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	statsCmd.AddCommand(statsImportCmd)
	rootCmd.AddCommand(buildCmd, matchCmd, indexCmd, verifyCmd, statsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadEngine loads the configured catalog and compiles it into a new engine.
func loadEngine(opts modgrammar.Options) (*modgrammar.Engine, *config.Components, []grammar.Diagnostic, error) {
	loader := &config.Loader{Config: cfg}
	comps, err := loader.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	opts.Logger = logger
	opts.Workers = cfg.Workers
	opts.Eligibility = comps.Eligibility
	engine := modgrammar.New(opts)
	diags := engine.Build(comps.Catalog)
	return engine, comps, diags, nil
}
