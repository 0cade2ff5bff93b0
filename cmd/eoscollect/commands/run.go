package commands

import (
	"context"
	"eoscollect/internal/catalog"
	"eoscollect/internal/collector"
	"eoscollect/internal/components/chrono"
	"eoscollect/internal/components/telemetry"
	"eoscollect/internal/results"
	"eoscollect/internal/scrapers/eoscalc"
	"eoscollect/pkg/configutil"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// collectFlags are shared by every command that collects.
type collectFlags struct {
	config   string
	test     bool
	delay    int
	db       string
	cases    string
	debugDir string
	insecure bool
}

func (f *collectFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.config, "config", "config.json5", "The config file, a missing file means the defaults.")
	flags.BoolVar(&f.test, "test", false, fmt.Sprintf("Only collect the first %d cases.", catalog.TestCaseCount))
	flags.IntVar(&f.delay, "delay", 15, "Seconds between two computes, overrides the config.")
	flags.StringVar(&f.db, "db", "", "A sqlite db to also write results to.")
	flags.StringVar(&f.cases, "cases", "", "A json5 file of cases to collect instead of the built-in ones.")
	flags.StringVar(&f.debugDir, "debug-dir", "", "Dump every http exchange into this directory, overrides the config.")
	flags.BoolVar(&f.insecure, "insecure", false, "Do not verify the calculator's tls certificate.")
}

func (f *collectFlags) readConfig(flags *pflag.FlagSet) (collector.Config, error) {
	cfg, err := collector.ReadConfig(f.config)
	if err != nil {
		return cfg, err
	}
	if flags.Changed("delay") {
		if f.delay < 0 {
			return cfg, fmt.Errorf("delay must not be negative")
		}
		cfg.Delay = configutil.Duration(time.Duration(f.delay) * time.Second)
	}
	if flags.Changed("debug-dir") {
		cfg.DebugDir = f.debugDir
	}
	if flags.Changed("insecure") {
		cfg.InsecureSkipVerify = f.insecure
	}
	return cfg, nil
}

// setupTracing installs the tracer provider of the config, the returned
// function flushes it.
func setupTracing(ctx context.Context, cfg collector.Config) func() {
	tracing, err := telemetry.SetupTracing(ctx, "eoscollect", cfg.Otlp)
	if err != nil {
		fatal("failed to setup tracing", err)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		err := tracing.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush traces", "err", err)
		}
	}
}

type collectTarget struct {
	output string
	db     string
	resume bool
}

func openSinks(ctx context.Context, cfg collector.Config, target collectTarget, caseCount int, now time.Time) (results.Sink, error) {
	csvSink, err := results.OpenCSV(target.output, target.resume)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", target.output, err)
	}
	if target.db == "" {
		return csvSink, nil
	}
	dbSink, err := results.OpenSQLite(ctx, target.db, target.resume, results.RunInfo{
		StartedAt: now,
		BaseURL:   cfg.BaseURL,
		CaseCount: caseCount,
	})
	if err != nil {
		csvSink.Close()
		return nil, fmt.Errorf("open %s: %w", target.db, err)
	}
	slog.Info("writing to db", "path", target.db, "run", dbSink.RunID())
	return results.Multi{csvSink, dbSink}, nil
}

// collect runs every case once against a fresh calculator session.
func collect(ctx context.Context, cfg collector.Config, cases []eoscalc.ParameterSet, target collectTarget, clock chrono.TimeAPI) (collector.Summary, error) {
	var output telemetry.InstrumentOutput
	if cfg.DebugDir != "" {
		fsOutput, err := telemetry.NewFilesystemOutput(cfg.DebugDir)
		if err != nil {
			return collector.Summary{}, fmt.Errorf("create debug dir: %w", err)
		}
		output = fsOutput
	}

	tel := telemetry.NewSlogAPI(nil)
	driver, err := eoscalc.NewDriver(cfg.DriverOptions(output), clock, tel)
	if err != nil {
		return collector.Summary{}, fmt.Errorf("create calculator driver: %w", err)
	}

	sink, err := openSinks(ctx, cfg, target, len(cases), clock.Now())
	if err != nil {
		return collector.Summary{}, err
	}
	defer func() {
		err := sink.Close()
		if err != nil {
			slog.Error("failed to close results", "err", err)
		}
	}()

	printBanner(cfg, len(cases))
	return collector.Run(ctx, collector.Options{
		Cases:      cases,
		Calculator: driver,
		Sink:       sink,
		Time:       clock,
		Tel:        tel,
	})
}

func printBanner(cfg collector.Config, caseCount int) {
	rule := strings.Repeat("=", 50)
	fmt.Println(rule)
	fmt.Println("EOS Calculator Collection")
	fmt.Println("Target:", cfg.BaseURL)
	fmt.Printf("Rate Limit: 1 request per %s\n", cfg.Delay.Std())
	fmt.Println("Total cases:", caseCount)
	fmt.Println(rule)
}

// summaryStatus describes how a run ended, `err` is what collect returned.
func summaryStatus(summary collector.Summary, err error) string {
	switch {
	case err != nil:
		return "aborted"
	case summary.Cancelled:
		return "cancelled, resume with --resume"
	default:
		return "complete"
	}
}

func printSummary(summary collector.Summary, err error, output string) {
	t := newTable()
	t.AppendHeader(table.Row{"Total", "Skipped", "Collected", "Failed", "Elapsed", "Status"})
	status := summaryStatus(summary, err)
	t.AppendRow(table.Row{
		summary.Total,
		summary.Skipped,
		summary.Collected,
		summary.Failed,
		summary.Elapsed.Round(time.Second),
		status,
	})
	t.Render()
	fmt.Println("Data saved to:", output)
}

var runOpts collectFlags
var runOutput *string
var runResume *bool

func init() {
	runOpts.register(runCmd.Flags())
	runOutput = runCmd.Flags().String("output", "kp-eos-data.csv", "The csv file to write results to.")
	runResume = runCmd.Flags().Bool("resume", false, "Skip the cases already in the output instead of starting over.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--test] [--resume] [--delay <seconds>] [--output <results.csv>]",
	Short: "Collects every case from the calculator into a csv file.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := runOpts.readConfig(cmd.Flags())
		if err != nil {
			fatal("failed to read config", err)
		}
		flush := setupTracing(ctx, cfg)
		defer flush()

		cases, err := catalog.Select(runOpts.cases, runOpts.test)
		if err != nil {
			fatal("failed to read cases", err)
		}

		summary, err := collect(ctx, cfg, cases, collectTarget{
			output: *runOutput,
			db:     runOpts.db,
			resume: *runResume,
		}, chrono.NewStandardTime())
		printSummary(summary, err, *runOutput)
		if err != nil {
			flush()
			fatal("run aborted", err)
		}
	},
}
