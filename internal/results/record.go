package results

import (
	"context"
	"eoscollect/internal/scrapers/eoscalc"
	"strconv"
	"time"
)

// ErrorValue is written in place of a value that could not be read.
const ErrorValue = "ERROR"

// TimestampLayout is the layout of the timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

// Columns is the header of every results table, in order.
var Columns = []string{
	"CaseNum", "Model", "GA_Weeks", "GA_Days", "Temp_F", "ROM_Hours",
	"GBS_Status", "Abx_Type", "Abx_Duration", "Clinical_Exam", "Incidence",
	"RiskAtBirth", "RiskWellAppearing", "RiskEquivocal", "RiskClinicalIllness",
	"Diagnostic", "Timestamp",
}

// Record is the outcome of one parameter set.
type Record struct {
	// CaseNum is the 1-based position of the parameter set in the run.
	CaseNum   int
	Params    eoscalc.ParameterSet
	Result    eoscalc.ExchangeResult
	Timestamp time.Time
}

// Row formats the record as the cells of a results table.
func (r Record) Row() []string {
	p := r.Params
	row := []string{
		strconv.Itoa(r.CaseNum),
		string(p.Mode),
		strconv.Itoa(p.GAWeeks),
		strconv.Itoa(p.GADays),
		strconv.FormatFloat(p.TempF, 'f', 1, 64),
		strconv.FormatFloat(p.ROMHours, 'f', -1, 64),
		p.GBS,
		p.AbxType,
		p.AbxDuration,
		p.Clinical,
		p.Incidence,
	}
	for _, v := range r.Result.Values() {
		row = append(row, FormatValue(v))
	}
	return append(row, r.Result.Diagnostic, r.Timestamp.Format(TimestampLayout))
}

// FormatValue formats a risk value, nil becomes ErrorValue.
func FormatValue(v *float64) string {
	if v == nil {
		return ErrorValue
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Sink stores records.
type Sink interface {
	// Completed is the number of records already stored, a resumed run skips
	// that many parameter sets.
	Completed(ctx context.Context) (int, error)
	Write(ctx context.Context, record Record) error
	Close() error
}

// Multi writes to every sink, the first one is the primary: it decides how
// many records are completed.
type Multi []Sink

func (m Multi) Completed(ctx context.Context) (int, error) {
	if len(m) == 0 {
		return 0, nil
	}
	return m[0].Completed(ctx)
}

func (m Multi) Write(ctx context.Context, record Record) error {
	for _, sink := range m {
		err := sink.Write(ctx, record)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, sink := range m {
		err := sink.Close()
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
