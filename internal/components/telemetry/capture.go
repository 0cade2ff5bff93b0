package telemetry

import (
	"strings"
	"sync"
)

type Level int

const (
	LEVEL_DEBUG Level = iota
	LEVEL_WARNING
	LEVEL_BROKEN
	LEVEL_COUNT
)

// Report is a single call made against a CaptureAPI.
type Report struct {
	Level  Level
	ID     string
	Params []any
	Count  int64
}

// CaptureAPI records every report it receives, it is meant to be used in tests
// to assert that something was (or was not) reported.
type CaptureAPI struct {
	mutex   *sync.Mutex
	reports *[]Report
}

func NewCaptureAPI() CaptureAPI {
	return CaptureAPI{
		mutex:   &sync.Mutex{},
		reports: &[]Report{},
	}
}

func (c CaptureAPI) push(r Report) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	*c.reports = append(*c.reports, r)
}

func (c CaptureAPI) ReportBroken(id string, params ...any) {
	c.push(Report{Level: LEVEL_BROKEN, ID: id, Params: params})
}

func (c CaptureAPI) ReportWarning(id string, params ...any) {
	c.push(Report{Level: LEVEL_WARNING, ID: id, Params: params})
}

func (c CaptureAPI) ReportDebug(msg string, params ...any) {
	c.push(Report{Level: LEVEL_DEBUG, ID: msg, Params: params})
}

func (c CaptureAPI) ReportCount(id string, count int64) {
	c.push(Report{Level: LEVEL_COUNT, ID: id, Count: count})
}

// Reports returns a copy of everything reported so far.
func (c CaptureAPI) Reports() []Report {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	out := make([]Report, len(*c.reports))
	copy(out, *c.reports)
	return out
}

// Find returns all the reports of a level whose id contains `substr`.
func (c CaptureAPI) Find(level Level, substr string) []Report {
	var out []Report
	for _, r := range c.Reports() {
		if r.Level == level && strings.Contains(r.ID, substr) {
			out = append(out, r)
		}
	}
	return out
}
