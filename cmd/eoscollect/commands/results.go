package commands

import (
	"eoscollect/internal/results"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var resultsFailedOnly *bool

func init() {
	resultsFailedOnly = resultsCmd.Flags().Bool("failed", false, "Only show rows without a risk at birth.")
	rootCmd.AddCommand(resultsCmd)
}

var resultsCmd = &cobra.Command{
	Use:   "results [--failed] <results.csv>",
	Short: "Prints a results file as a table.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		header, rows, err := results.ReadCSV(args[0])
		if err != nil {
			fatal("failed to read results", err)
		}

		riskColumn := -1
		for i, name := range header {
			if name == "RiskAtBirth" {
				riskColumn = i
			}
		}

		t := newTable()
		headerRow := make(table.Row, len(header))
		for i, name := range header {
			headerRow[i] = name
		}
		t.AppendHeader(headerRow)
		for _, row := range rows {
			if *resultsFailedOnly && (riskColumn < 0 || riskColumn >= len(row) || row[riskColumn] != results.ErrorValue) {
				continue
			}
			out := make(table.Row, len(row))
			for i, cell := range row {
				out[i] = cell
			}
			t.AppendRow(out)
		}
		t.Render()
	},
}
