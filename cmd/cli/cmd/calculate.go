// Package cmd - calculate command
package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"travel-mate/api/v1/mapping"
	"travel-mate/core/engine"
	"travel-mate/core/output"
	"travel-mate/internal/config"
	"travel-mate/internal/errors"
	"travel-mate/internal/logging"
)

type calculateOptions struct {
	format  string
	persist bool
	trace   bool
}

func newCalculateCmd() *cobra.Command {
	opts := &calculateOptions{}

	cmd := &cobra.Command{
		Use:   "calculate <file>",
		Short: "Calculate per diem allowances for a batch of trips",
		Long: `Read trip segments as JSON and calculate gross allowances, meal deductions
and net allowances. Use "-" to read from stdin.

The whole batch is rejected if any segment is invalid, overlaps another
segment, reuses a receipt id or travels to an unsupported country.

Examples:
  travel-mate calculate trips.json
  travel-mate calculate --format json --trace trips.json
  cat trips.json | travel-mate calculate --persist -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalculate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (text, json); defaults to output.format")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "store the result as an immutable snapshot")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "include structured trace steps in JSON output")
	return cmd
}

func runCalculate(cmd *cobra.Command, path string, opts *calculateOptions) error {
	cfg := config.Get()
	log := logging.Named("calculate")

	format := opts.format
	if format == "" {
		format = cfg.Output.Format
	}
	formatter, err := output.NewRegistry(cfg.Output.Color).Get(format)
	if err != nil {
		return err
	}

	in, err := openInput(cmd, path)
	if err != nil {
		return err
	}
	defer in.Close()

	req, err := mapping.DecodeRequest(in)
	if err != nil {
		return err
	}
	segments, err := mapping.MapRequest(req)
	if err != nil {
		return err
	}

	table, err := loadRateTable(cfg)
	if err != nil {
		return err
	}
	eng := engine.New(engine.WithRateTable(table), engine.WithLogger(logging.Named("engine")))

	var res *engine.Result
	if opts.persist {
		res, err = eng.CalculateAndPersist(segments)
	} else {
		res, err = eng.Calculate(segments)
	}
	if err != nil {
		if formatter.Format() == output.FormatJSON {
			writeJSONError(cmd, err)
		}
		return err
	}

	resp := mapping.MapResponse(res, mapping.ResponseOptions{IncludeTrace: opts.trace})
	if err := formatter.Render(cmd.OutOrStdout(), resp); err != nil {
		return errors.Internal("rendering result", err)
	}

	if !opts.persist {
		return nil
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return errors.Internal("encoding snapshot payload", err)
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	snap, err := store.Create(cmd.Context(), res.RuleVersion, res.TripIDs(), payload)
	if err != nil {
		return err
	}
	log.Info("snapshot stored", zap.String("snapshot_id", snap.ID.String()), zap.Strings("trip_ids", snap.TripIDs))
	newWriter(cmd.ErrOrStderr()).Success("Saved snapshot %s", snap.ID)
	return nil
}

func writeJSONError(cmd *cobra.Command, err error) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	_ = enc.Encode(mapping.MapError(err))
}
