package eoscalc

import "fmt"

// SubMode is one of the two calculator models offered by the form, each has its
// own field names and intercept table.
type SubMode string

const (
	// ModeUnset is the mode of a session that has not selected a model yet.
	ModeUnset SubMode = ""
	Mode2017  SubMode = "2017"
	Mode2024  SubMode = "2024"
)

func ParseSubMode(text string) (SubMode, error) {
	switch SubMode(text) {
	case Mode2017, Mode2024:
		return SubMode(text), nil
	}
	return ModeUnset, fmt.Errorf("unknown model %q", text)
}

// Encoding is the body format of a response.
type Encoding int

const (
	// ENCODING_MARKUP is a full html page, returned by full postbacks and GETs.
	ENCODING_MARKUP Encoding = iota
	// ENCODING_DELTA is a pipe-delimited update frame, returned by partial postbacks.
	ENCODING_DELTA
)

func (e Encoding) String() string {
	switch e {
	case ENCODING_MARKUP:
		return "markup"
	case ENCODING_DELTA:
		return "delta"
	}
	return fmt.Sprintf("encoding(%d)", int(e))
}

// SessionState is the token triplet the server needs to accept a postback as
// the continuation of the exchange it was read from.
type SessionState struct {
	ViewState          string
	ViewStateGenerator string
	EventValidation    string
}

func (s SessionState) complete() bool {
	return s.ViewState != "" && s.ViewStateGenerator != "" && s.EventValidation != ""
}

type Phase int

const (
	PHASE_AWAITING_TOKEN Phase = iota
	PHASE_READY
	PHASE_FATAL
)

func (p Phase) String() string {
	switch p {
	case PHASE_AWAITING_TOKEN:
		return "awaiting-token"
	case PHASE_READY:
		return "ready"
	case PHASE_FATAL:
		return "fatal"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Session is threaded explicitly through every exchange, each exchange takes
// one and returns its successor.
type Session struct {
	State SessionState
	// Mode is the model the remote form currently has selected.
	Mode  SubMode
	Phase Phase
}

// ParameterSet is one combination of calculator inputs.
type ParameterSet struct {
	Mode        SubMode `json:"model"`
	GAWeeks     int     `json:"ga_weeks"`
	GADays      int     `json:"ga_days"`
	TempF       float64 `json:"temp_f"`
	ROMHours    float64 `json:"rom_hours"`
	GBS         string  `json:"gbs"`
	AbxType     string  `json:"abx_type"`
	AbxDuration string  `json:"abx_duration"`
	Clinical    string  `json:"clinical"`
	// Incidence is the EOS incidence per 1000 live births, ex. "0.5".
	Incidence string `json:"incidence"`
}

func (p ParameterSet) String() string {
	return fmt.Sprintf(
		"Model=%s GA=%dw%dd Temp=%.1fF ROM=%gh GBS=%s Abx=%s Clinical=%s Incidence=%s",
		p.Mode, p.GAWeeks, p.GADays, p.TempF, p.ROMHours, p.GBS, p.AbxType, p.Clinical, p.Incidence,
	)
}

// ExchangeResult is what could be read out of a single compute response, a nil
// value means the value could not be read (which is distinct from 0).
type ExchangeResult struct {
	RiskAtBirth         *float64
	RiskWellAppearing   *float64
	RiskEquivocal       *float64
	RiskClinicalIllness *float64
	Diagnostic          string
}

// Values returns the four risk values in column order.
func (r ExchangeResult) Values() [4]*float64 {
	return [4]*float64{
		r.RiskAtBirth,
		r.RiskWellAppearing,
		r.RiskEquivocal,
		r.RiskClinicalIllness,
	}
}

// Empty is true if no value at all could be read.
func (r ExchangeResult) Empty() bool {
	for _, v := range r.Values() {
		if v != nil {
			return false
		}
	}
	return true
}

func failedResult(err error) ExchangeResult {
	return ExchangeResult{Diagnostic: err.Error()}
}
