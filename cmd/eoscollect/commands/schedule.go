package commands

import (
	"context"
	"eoscollect/internal/catalog"
	"eoscollect/internal/components/chrono"
	"eoscollect/internal/components/telemetry"
	"eoscollect/internal/scrapers/eoscalc"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
)

var scheduleOpts collectFlags
var scheduleSpec *string
var scheduleMaxRuns *int
var scheduleOutputDir *string

func init() {
	scheduleOpts.register(scheduleCmd.Flags())
	scheduleSpec = scheduleCmd.Flags().String("cron", "0 2 * * *", "When to start a run, in cron syntax.")
	scheduleMaxRuns = scheduleCmd.Flags().Int("max-runs", 10, "Exit after this many complete runs.")
	scheduleOutputDir = scheduleCmd.Flags().String("output-dir", "runs", "The directory every run writes its own csv file to.")
	rootCmd.AddCommand(scheduleCmd)
}

// runOutputPath is the results file of a scheduled run started at `t`.
func runOutputPath(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("kp-eos-data-%s.csv", t.Format("20060102-150405")))
}

// scheduledTarget is where a run starting now writes to, `db` is suffixed
// with the same timestamp as the csv file.
func scheduledTarget(clock chrono.TimeAPI, dir, db string) collectTarget {
	started := clock.Now()
	if db != "" {
		db = strings.TrimSuffix(db, filepath.Ext(db)) + started.Format("-20060102-150405") + filepath.Ext(db)
	}
	return collectTarget{output: runOutputPath(dir, started), db: db}
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [--cron <spec>] [--max-runs <n>] [--output-dir <dir>]",
	Short: "Collects every case on a schedule, each complete run into its own csv file.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if *scheduleMaxRuns <= 0 {
			fatal("invalid flags", fmt.Errorf("max-runs must be positive"))
		}
		cfg, err := scheduleOpts.readConfig(cmd.Flags())
		if err != nil {
			fatal("failed to read config", err)
		}
		flush := setupTracing(ctx, cfg)
		defer flush()

		cases, err := catalog.Select(scheduleOpts.cases, scheduleOpts.test)
		if err != nil {
			fatal("failed to read cases", err)
		}

		clock := chrono.NewStandardTime()
		var mutex sync.Mutex
		completeRuns := 0
		job := func() {
			target := scheduledTarget(clock, *scheduleOutputDir, scheduleOpts.db)
			summary, err := collect(ctx, cfg, cases, target, clock)
			if err != nil {
				slog.Error("scheduled run aborted", "err", err, "fatal", eoscalc.IsFatal(err))
			}
			printSummary(summary, err, target.output)

			mutex.Lock()
			defer mutex.Unlock()
			if err == nil && !summary.Cancelled {
				completeRuns++
			}
			slog.Info("scheduled run finished", "complete_runs", completeRuns, "max_runs", *scheduleMaxRuns)
			if completeRuns >= *scheduleMaxRuns {
				cancel()
			}
		}

		cron := chrono.NewStandardCron(telemetry.NewSlogAPI(nil), time.Local)
		err = cron.Cron(*scheduleSpec, job)
		if err != nil {
			fatal("invalid cron spec", err)
		}
		slog.Info("waiting for the schedule", "cron", *scheduleSpec)

		<-ctx.Done()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second*30)
		defer stopCancel()
		err = cron.Stop(stopCtx)
		if err != nil {
			slog.Warn("a run was still going when the schedule stopped", "err", err)
		}
	},
}
