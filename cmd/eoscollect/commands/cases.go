package commands

import (
	"eoscollect/internal/catalog"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var casesFile *string
var casesTest *bool

func init() {
	casesFile = casesCmd.Flags().String("cases", "", "A json5 file of cases to list instead of the built-in ones.")
	casesTest = casesCmd.Flags().Bool("test", false, "Only list the cases a test run collects.")
	rootCmd.AddCommand(casesCmd)
}

var casesCmd = &cobra.Command{
	Use:   "cases [--cases <cases.json5>] [--test]",
	Short: "Lists the cases a run would collect.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cases, err := catalog.Select(*casesFile, *casesTest)
		if err != nil {
			fatal("failed to read cases", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{
			"#", "Model", "GA", "Temp (F)", "ROM (h)", "GBS", "Abx", "Abx duration", "Clinical", "Incidence",
		})
		for i, c := range cases {
			t.AppendRow(table.Row{
				i + 1,
				c.Mode,
				fmt.Sprintf("%dw%dd", c.GAWeeks, c.GADays),
				fmt.Sprintf("%.1f", c.TempF),
				c.ROMHours,
				c.GBS,
				c.AbxType,
				c.AbxDuration,
				c.Clinical,
				c.Incidence,
			})
		}
		t.Render()
	},
}
