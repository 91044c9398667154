// Package cmd provides the CLI commands for travel-mate.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"travel-mate/core/rates"
	"travel-mate/core/ui"
	"travel-mate/db/snapshots"
	"travel-mate/internal/config"
	"travel-mate/internal/errors"
	"travel-mate/internal/logging"
)

// Version is the CLI version, set at build time
var Version = "0.1.0"

// globalFlags are shared by every subcommand
type globalFlags struct {
	cfgFile string
	verbose bool
	noColor bool
}

// Execute runs the CLI
func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	if err != nil {
		printError(root.ErrOrStderr(), err)
	}
	logging.Sync()
	return err
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "travel-mate",
		Short: "Calculate German travel per diem allowances",
		Long: `travel-mate calculates per diem (Verpflegungsmehraufwand) allowances for
business trips, with meal deductions and a full audit trail.

Every result is stamped with the rule version it was calculated under and can
be stored as an immutable snapshot.

Examples:
  travel-mate calculate trips.json
  travel-mate calculate --format json --persist trips.json
  travel-mate rates
  travel-mate history --trip berlin-2026-02`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "config file (JSON, YAML or TOML)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newCalculateCmd(),
		newRatesCmd(),
		newHistoryCmd(),
		newShowCmd(),
		newVersionCmd(),
	)
	return root
}

func initConfig(flags *globalFlags) error {
	cfg, err := config.Load(flags.cfgFile)
	if err != nil {
		return err
	}
	if flags.verbose {
		cfg.Logging.Level = "debug"
	}
	if flags.noColor {
		cfg.Output.Color = false
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		return errors.Config("initializing logging", err)
	}
	logging.L().Debug("configuration loaded",
		zap.String("config_file", flags.cfgFile),
		zap.String("rates_file", cfg.Rates.File),
		zap.String("store_path", cfg.Store.Path),
	)
	return nil
}

// loadRateTable returns the configured table, falling back to the built-in one
func loadRateTable(cfg *config.Config) (*rates.Table, error) {
	if cfg.Rates.File == "" {
		return rates.DefaultTable(), nil
	}
	return rates.LoadFile(cfg.Rates.File)
}

func openStore(cfg *config.Config) (*snapshots.BoltStore, error) {
	return snapshots.Open(cfg.Store.Path, snapshots.WithLogger(logging.Named("snapshots")))
}

func newWriter(w io.Writer) *ui.Writer {
	return ui.NewWriter(w, !config.Get().Output.Color)
}

// printError shows an error with the identifiers it carries
func printError(w io.Writer, err error) {
	tw := newWriter(w)
	e, ok := errors.As(err)
	if !ok {
		tw.Error("%v", err)
		return
	}

	switch e.Type {
	case errors.TypePrecondition:
		tw.Error("Invalid trip data: %s", e.Message)
	default:
		tw.Error("%s", e.Error())
	}
	if details := e.Details(); details != "" {
		tw.Println("  %s", details)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "travel-mate version %s (rules %s)\n", Version, rates.RuleVersion)
		},
	}
}

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Input("opening "+path, err)
	}
	return f, nil
}
