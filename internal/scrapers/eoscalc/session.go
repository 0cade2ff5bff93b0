package eoscalc

import (
	"context"
	"eoscollect/internal/components/telemetry"
	"eoscollect/pkg/htmlutil"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_session_initialize = "session.initialize"
	report_session_refresh    = "session.refresh"
)

var tokenFields = []string{
	field_viewstate,
	field_viewstate_generator,
	field_event_validation,
}

// SessionManager owns the token handshake with the calculator.
type SessionManager struct {
	client *client
	tel    telemetry.API
}

func newSessionManager(c *client, tel telemetry.API) SessionManager {
	return SessionManager{client: c, tel: tel}
}

// Initialize loads the landing page and captures the tokens from it. Every
// error it returns is an *InitializationError, no exchange can succeed after one.
func (m SessionManager) Initialize(ctx context.Context) (Session, error) {
	ctx, span := tracer.Start(ctx, "session:Initialize")
	defer span.End()

	fatal := func(err *InitializationError) (Session, error) {
		m.tel.ReportBroken(report_session_initialize, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Reason)
		return Session{Phase: PHASE_FATAL}, err
	}

	body, err := m.client.get(ctx)
	if err != nil {
		return fatal(&InitializationError{Reason: "fetch landing page", Err: err})
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return fatal(&InitializationError{Reason: "parse landing page", Err: err})
	}

	values := make(map[string]string, len(tokenFields))
	var missing []string
	for _, name := range tokenFields {
		value, found := htmlutil.InputValue(doc, name)
		if !found || value == "" {
			missing = append(missing, name)
			continue
		}
		values[name] = value
	}
	if len(missing) > 0 {
		return fatal(&InitializationError{
			Reason: fmt.Sprintf("landing page is missing %s", strings.Join(missing, ", ")),
		})
	}

	state := SessionState{
		ViewState:          values[field_viewstate],
		ViewStateGenerator: values[field_viewstate_generator],
		EventValidation:    values[field_event_validation],
	}
	m.tel.ReportDebug(report_session_initialize, "viewstate length", len(state.ViewState))

	return Session{
		State: state,
		Mode:  ModeUnset,
		Phase: PHASE_READY,
	}, nil
}

// Refresh reads the tokens out of an exchange's response. Tokens missing from
// the response keep their previous value, the same body always yields the same
// state.
func (m SessionManager) Refresh(prev SessionState, body string, encoding Encoding) SessionState {
	var found map[string]string
	switch encoding {
	case ENCODING_DELTA:
		found = deltaTokens(body)
	default:
		found = markupTokens(body)
	}

	next := prev
	assign := func(name string, target *string) {
		value, ok := found[name]
		if !ok {
			m.tel.ReportDebug(report_session_refresh, "retained previous token", name, encoding.String())
			return
		}
		*target = value
	}
	assign(field_viewstate, &next.ViewState)
	assign(field_viewstate_generator, &next.ViewStateGenerator)
	assign(field_event_validation, &next.EventValidation)

	return next
}

func markupTokens(body string) map[string]string {
	found := map[string]string{}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return found
	}
	for _, name := range tokenFields {
		value, ok := htmlutil.InputValue(doc, name)
		if ok && value != "" {
			found[name] = value
		}
	}
	return found
}

var deltaTokenRegexes = func() map[string]*regexp.Regexp {
	out := map[string]*regexp.Regexp{}
	for _, name := range tokenFields {
		out[name] = regexp.MustCompile(`\|hiddenField\|` + regexp.QuoteMeta(name) + `\|([^|]*)\|`)
	}
	return out
}()

func deltaTokens(body string) map[string]string {
	found := map[string]string{}
	for name, re := range deltaTokenRegexes {
		groups := re.FindStringSubmatch(body)
		if len(groups) < 2 || groups[1] == "" {
			continue
		}
		found[name] = groups[1]
	}
	return found
}
