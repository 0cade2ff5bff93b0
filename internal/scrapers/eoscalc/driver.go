package eoscalc

import (
	"context"
	"eoscollect/internal/components/assert"
	"eoscollect/internal/components/chrono"
	"eoscollect/internal/components/telemetry"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	report_driver_switch_mode = "driver.switch-mode"
	report_driver_compute     = "driver.compute"
	report_driver_incidence   = "driver.resolve-incidence"
)

const DefaultFallbackIncidence = "0.5"

type DriverOptions struct {
	Client ClientOptions
	// Delay is the minimum time between two postbacks, model switches
	// included.
	Delay time.Duration
	// SettleDelay is waited after a model switch before computing.
	SettleDelay time.Duration
	// FallbackIncidence is used in place of incidence categories the model's
	// table does not have.
	FallbackIncidence string
}

// Driver performs calculator exchanges. It is not safe for concurrent use,
// every exchange depends on the tokens of the previous one.
type Driver struct {
	client   *client
	sessions SessionManager
	time     chrono.TimeAPI
	tel      telemetry.API
	limiter  *rate.Limiter

	settleDelay       time.Duration
	fallbackIncidence string
}

func NewDriver(opts DriverOptions, time chrono.TimeAPI, tel telemetry.API) (*Driver, error) {
	assert.NotNil(time)
	assert.NotNil(tel)
	assert.NonNegative(opts.Delay)
	assert.NonNegative(opts.SettleDelay)

	tel = telemetry.NewScopedAPI("eoscalc", tel)

	c, err := newClient(opts.Client, tel)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	fallback := opts.FallbackIncidence
	if fallback == "" {
		fallback = DefaultFallbackIncidence
	}

	return &Driver{
		client:            c,
		sessions:          newSessionManager(c, tel),
		time:              time,
		tel:               tel,
		limiter:           rate.NewLimiter(limit, 1),
		settleDelay:       opts.SettleDelay,
		fallbackIncidence: fallback,
	}, nil
}

// Sessions exposes the session manager of the driver.
func (d *Driver) Sessions() SessionManager {
	return d.sessions
}

// Initialize starts a session, see SessionManager.Initialize.
func (d *Driver) Initialize(ctx context.Context) (Session, error) {
	return d.sessions.Initialize(ctx)
}

// exchange sends a request and always returns a session, refreshed from the
// response if there was one.
func (d *Driver) exchange(ctx context.Context, session Session, req request) (Session, string, error) {
	body, err := d.client.post(ctx, req.fields, req.async)
	if err != nil {
		return session, "", err
	}
	session.State = d.sessions.Refresh(session.State, body, req.encoding())
	return session, body, nil
}

// wait sleeps until the limiter allows another postback.
func (d *Driver) wait(ctx context.Context) error {
	now := d.time.Now()
	reservation := d.limiter.ReserveN(now, 1)
	err := d.time.Sleep(ctx, reservation.DelayFrom(now))
	if err != nil {
		reservation.CancelAt(d.time.Now())
		return err
	}
	return nil
}

func (d *Driver) switchMode(ctx context.Context, session Session, v Variant) (Session, error) {
	ctx, span := tracer.Start(ctx, "driver:switchMode")
	defer span.End()
	span.SetAttributes(
		attribute.String("from", string(session.Mode)),
		attribute.String("to", string(v.Mode)),
	)

	err := d.wait(ctx)
	if err != nil {
		return session, err
	}

	req := switchRequest(session.State, session.Mode, v)
	next, _, err := d.exchange(ctx, session, req)
	if err != nil {
		err = &ExchangeError{Stage: "switch", Err: err}
		d.tel.ReportBroken(report_driver_switch_mode, err, string(v.Mode))
		span.RecordError(err)
		span.SetStatus(codes.Error, "switch failed")
		return session, err
	}
	next.Mode = v.Mode
	d.tel.ReportDebug(report_driver_switch_mode, string(v.Mode), req.encoding().String())

	err = d.time.Sleep(ctx, d.settleDelay)
	if err != nil {
		return next, err
	}
	return next, nil
}

// resolveIncidence looks up the intercept in the table of `v` only, two models
// never share a table.
func (d *Driver) resolveIncidence(v Variant, category string) (string, error) {
	value, ok := v.Intercept(category)
	if ok {
		return value, nil
	}
	fallback, ok := v.Intercept(d.fallbackIncidence)
	if !ok {
		return "", fmt.Errorf(
			"%w: incidence %q and fallback %q are both unknown to model %s (known: %s)",
			ErrInvalidParameters, category, d.fallbackIncidence, v.Mode, strings.Join(v.Incidences(), ", "),
		)
	}
	d.tel.ReportWarning(report_driver_incidence, "unknown incidence, using fallback", category, d.fallbackIncidence, string(v.Mode))
	return fallback, nil
}

// Compute runs one parameter set, switching the form's model first if needed.
// It never returns an error, failures are reported in the result's
// diagnostic and the returned session can be used for the next parameter set.
func (d *Driver) Compute(ctx context.Context, session Session, params ParameterSet) (Session, ExchangeResult) {
	ctx, span := tracer.Start(ctx, "driver:Compute")
	defer span.End()
	span.SetAttributes(attribute.String("params", params.String()))

	fail := func(session Session, err error) (Session, ExchangeResult) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compute failed")
		return session, failedResult(err)
	}

	if session.Phase != PHASE_READY || !session.State.complete() {
		return fail(session, fmt.Errorf("session is not ready (%s)", session.Phase))
	}

	v, err := VariantOf(params.Mode)
	if err != nil {
		return fail(session, err)
	}
	err = validateParams(v, params)
	if err != nil {
		return fail(session, err)
	}
	intercept, err := d.resolveIncidence(v, params.Incidence)
	if err != nil {
		return fail(session, err)
	}

	if session.Mode != v.Mode {
		session, err = d.switchMode(ctx, session, v)
		if err != nil {
			return fail(session, err)
		}
	}

	req, err := computeRequest(session.State, v, params, intercept)
	if err != nil {
		return fail(session, err)
	}

	err = d.wait(ctx)
	if err != nil {
		return fail(session, err)
	}

	next, body, err := d.exchange(ctx, session, req)
	if err != nil {
		err = &ExchangeError{Stage: "compute", Err: err}
		d.tel.ReportBroken(report_driver_compute, err, params.String())
		return fail(next, err)
	}

	result := ParseResponse(body, req.encoding())
	if result.Empty() {
		d.tel.ReportWarning(report_driver_compute, "no values in response", params.String(), result.Diagnostic)
	}
	return next, result
}

// IsFatal reports whether err ends the run.
func IsFatal(err error) bool {
	var initErr *InitializationError
	return errors.As(err, &initErr)
}
