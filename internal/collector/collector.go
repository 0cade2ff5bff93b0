package collector

import (
	"context"
	"eoscollect/internal/components/assert"
	"eoscollect/internal/components/chrono"
	"eoscollect/internal/components/telemetry"
	"eoscollect/internal/results"
	"eoscollect/internal/scrapers/eoscalc"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("eoscollect/collector")

const (
	report_collector_run    = "collector.run"
	report_collector_failed = "collector.failed"
)

// Calculator is the part of the calculator driver the collector needs.
//
// note: fault injection point
type Calculator interface {
	Initialize(ctx context.Context) (eoscalc.Session, error)
	Compute(ctx context.Context, session eoscalc.Session, params eoscalc.ParameterSet) (eoscalc.Session, eoscalc.ExchangeResult)
}

type Options struct {
	Cases      []eoscalc.ParameterSet
	Calculator Calculator
	Sink       results.Sink
	Time       chrono.TimeAPI
	Tel        telemetry.API
}

// Summary describes what a run did.
type Summary struct {
	Total int
	// Skipped is how many cases were already completed before the run.
	Skipped   int
	Collected int
	// Failed is how many of the collected records have no values.
	Failed    int
	Cancelled bool
	Elapsed   time.Duration
}

// Run collects every case that is not completed yet, in order, writing
// exactly one record per case. It stops between cases when ctx is done, a
// case interrupted by cancellation is not written so a resumed run collects
// it again. The only errors are fatal ones: failing to start a session or to
// write a record.
func Run(ctx context.Context, opts Options) (Summary, error) {
	assert.NotNil(opts.Calculator)
	assert.NotNil(opts.Sink)
	assert.NotNil(opts.Time)
	assert.NotNil(opts.Tel)

	ctx, span := tracer.Start(ctx, "collector:Run")
	defer span.End()

	start := opts.Time.Now()
	summary := Summary{Total: len(opts.Cases)}
	fail := func(err error) (Summary, error) {
		opts.Tel.ReportBroken(report_collector_run, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		summary.Elapsed = opts.Time.Now().Sub(start)
		return summary, err
	}

	completed, err := opts.Sink.Completed(ctx)
	if err != nil {
		return fail(fmt.Errorf("count completed cases: %w", err))
	}
	if completed > len(opts.Cases) {
		completed = len(opts.Cases)
	}
	summary.Skipped = completed
	span.SetAttributes(
		attribute.Int("total", summary.Total),
		attribute.Int("skipped", summary.Skipped),
	)
	if completed > 0 {
		slog.InfoContext(ctx, "resuming", "from", completed+1, "total", len(opts.Cases))
	}
	if completed == len(opts.Cases) {
		slog.InfoContext(ctx, "nothing left to collect")
		return summary, nil
	}

	session, err := opts.Calculator.Initialize(ctx)
	if err != nil {
		return fail(err)
	}

	for i := completed; i < len(opts.Cases); i++ {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		params := opts.Cases[i]
		caseNum := i + 1
		slog.InfoContext(ctx, fmt.Sprintf("[%d/%d] %s", caseNum, len(opts.Cases), params.String()))

		var result eoscalc.ExchangeResult
		session, result = opts.Calculator.Compute(ctx, session, params)
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		err = opts.Sink.Write(ctx, results.Record{
			CaseNum:   caseNum,
			Params:    params,
			Result:    result,
			Timestamp: opts.Time.Now(),
		})
		if err != nil {
			return fail(err)
		}
		summary.Collected++

		if result.Empty() {
			summary.Failed++
			opts.Tel.ReportCount(report_collector_failed, int64(summary.Failed))
			slog.WarnContext(ctx, "  -> no values", "diagnostic", result.Diagnostic)
			continue
		}
		slog.InfoContext(
			ctx, "  -> collected",
			"at_birth", results.FormatValue(result.RiskAtBirth),
			"well_appearing", results.FormatValue(result.RiskWellAppearing),
			"equivocal", results.FormatValue(result.RiskEquivocal),
			"clinical_illness", results.FormatValue(result.RiskClinicalIllness),
		)
	}

	summary.Elapsed = opts.Time.Now().Sub(start)
	return summary, nil
}
