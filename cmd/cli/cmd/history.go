// Package cmd - snapshot history commands
package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"travel-mate/api/v1/types"
	"travel-mate/core/output"
	"travel-mate/db/snapshots"
	"travel-mate/internal/config"
	"travel-mate/internal/errors"
)

func newHistoryCmd() *cobra.Command {
	var tripID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored calculation snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(config.Get())
			if err != nil {
				return err
			}
			defer store.Close()

			var snaps []*snapshots.Snapshot
			if tripID != "" {
				snaps, err = store.ListByTrip(cmd.Context(), tripID)
			} else {
				snaps, err = store.List(cmd.Context())
			}
			if err != nil {
				return err
			}

			w := newWriter(cmd.OutOrStdout())
			if len(snaps) == 0 {
				w.Info("No snapshots stored.")
				return nil
			}

			tbl := w.NewTable("Snapshot", "Created", "Rule version", "Trips", "Net").AlignRight(4)
			for _, s := range snaps {
				tbl.AddRow(
					s.ID.String(),
					s.CreatedAt.Local().Format(time.DateTime),
					s.RuleVersion,
					strings.Join(s.TripIDs, ", "),
					payloadNet(s),
				)
			}
			tbl.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&tripID, "trip", "", "only list snapshots that include this trip id")
	return cmd
}

func newShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <snapshot-id>",
		Short: "Show a stored snapshot after verifying its hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return errors.Input("invalid snapshot id "+args[0], err)
			}

			cfg := config.Get()
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Verify(cmd.Context(), id); err != nil {
				return err
			}
			snap, err := store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			if format == "" {
				format = cfg.Output.Format
			}
			if strings.EqualFold(format, string(output.FormatJSON)) {
				// The payload is printed exactly as stored.
				_, err := cmd.OutOrStdout().Write(append(bytes.TrimRight(snap.Payload, "\n"), '\n'))
				return err
			}

			formatter, err := output.NewRegistry(cfg.Output.Color).Get(format)
			if err != nil {
				return err
			}
			resp, err := decodePayload(snap)
			if err != nil {
				return err
			}
			w := newWriter(cmd.OutOrStdout())
			w.Info("Snapshot %s, created %s", snap.ID, snap.CreatedAt.Local().Format(time.DateTime))
			return formatter.Render(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (text, json); defaults to output.format")
	return cmd
}

func decodePayload(s *snapshots.Snapshot) (types.CalculateResponse, error) {
	var resp types.CalculateResponse
	if err := json.Unmarshal(s.Payload, &resp); err != nil {
		return resp, errors.Wrapf(errors.TypeInternal, err, "decoding snapshot %s", s.ID)
	}
	return resp, nil
}

func payloadNet(s *snapshots.Snapshot) string {
	resp, err := decodePayload(s)
	if err != nil {
		return "?"
	}
	return resp.Totals.NetAllowance
}
