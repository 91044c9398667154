// Package cmd - rates command
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"travel-mate/core/rates"
	"travel-mate/internal/config"
)

func newRatesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "List the effective per diem rate table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadRateTable(config.Get())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					RuleVersion string        `json:"rule_version"`
					Source      string        `json:"source"`
					Rates       []rates.Entry `json:"rates"`
				}{rates.RuleVersion, table.Source(), table.Entries()})
			}

			w := newWriter(cmd.OutOrStdout())
			w.Header("Per Diem Rates")
			tbl := w.NewTable("Country", "Type", "Full day", "Partial day").AlignRight(2, 3)
			for _, e := range table.Entries() {
				kind := "international"
				if e.Domestic {
					kind = "domestic"
				}
				tbl.AddRow(e.Code, kind, e.Rates.FullDay.Fixed(), e.Rates.PartialDay.Fixed())
			}
			tbl.Render()
			w.Println("")
			w.Info("Rule version %s, source %s", rates.RuleVersion, table.Source())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, fmt.Sprintf("print the table as JSON (rule version %s)", rates.RuleVersion))
	return cmd
}
