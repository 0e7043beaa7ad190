// Command fftwplan plans and runs DFT jobs and benchmarks the available
// engines.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cwbudde/algo-fftw/internal/config"
)

// app holds state shared by the subcommands.
type app struct {
	verbose    bool
	configPath string
	engineName string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "fftwplan",
		Short: "Plan, run and benchmark DFT transforms",
		Long: `fftwplan drives algofftw plans from the command line.

Jobs are read from a YAML file (--config) and may be overridden with flags.
The engine is the build default unless --engine selects another one.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Job configuration file (YAML)")
	root.PersistentFlags().StringVarP(&a.engineName, "engine", "e", "", "Engine to load (default, go"+fftwEngineHelp+")")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newBenchCmd(a))
	root.AddCommand(newInfoCmd(a))

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()

	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}

		cfg = loaded
	}

	if cmd.Flags().Changed("engine") {
		cfg.Engine = a.engineName
	}

	a.cfg = cfg

	level, err := cfg.Logging.ZapLevel()
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if a.verbose {
		level = zapcore.DebugLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.logger = logger

	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
