package results

import (
	"context"
	"eoscollect/internal/scrapers/eoscalc"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 2, 5, 9, 30, 0, 0, time.UTC)

func ptr(f float64) *float64 {
	return &f
}

func testRecord(caseNum int, result eoscalc.ExchangeResult) Record {
	return Record{
		CaseNum: caseNum,
		Params: eoscalc.ParameterSet{
			Mode:      eoscalc.Mode2017,
			GAWeeks:   40,
			TempF:     98,
			ROMHours:  18.5,
			GBS:       "Negative",
			AbxType:   "None",
			Clinical:  "Well Appearing",
			Incidence: "0.5",
		},
		Result:    result,
		Timestamp: testTime,
	}
}

func TestRecordRow(t *testing.T) {
	row := testRecord(3, eoscalc.ExchangeResult{
		RiskAtBirth:       ptr(0.52),
		RiskWellAppearing: ptr(0),
	}).Row()

	require.Len(t, row, len(Columns))
	require.Equal(t, []string{
		"3", "2017", "40", "0", "98.0", "18.5",
		"Negative", "None", "", "Well Appearing", "0.5",
		"0.52", "0", ErrorValue, ErrorValue,
		"", "2026-02-05 09:30:00",
	}, row)
}

func TestCSVSink(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out", "results.csv")

	sink, err := OpenCSV(path, false)
	require.NoError(t, err)
	completed, err := sink.Completed(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, completed)

	require.NoError(t, sink.Write(ctx, testRecord(1, eoscalc.ExchangeResult{RiskAtBirth: ptr(0.52)})))
	require.NoError(t, sink.Write(ctx, testRecord(2, eoscalc.ExchangeResult{
		Diagnostic: "compute exchange: timeout, \"deadline\"\nexceeded",
	})))
	require.NoError(t, sink.Close())

	header, rows, err := ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, Columns, header)
	require.Len(t, rows, 2)
	require.Equal(t, "0.52", rows[0][11])
	for _, cell := range rows[1][11:15] {
		require.Equal(t, ErrorValue, cell)
	}
	require.Equal(t, "compute exchange: timeout, \"deadline\"\nexceeded", rows[1][15])

	// resuming keeps and counts the rows, a quoted newline is not a row
	sink, err = OpenCSV(path, true)
	require.NoError(t, err)
	completed, err = sink.Completed(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, completed)
	require.NoError(t, sink.Write(ctx, testRecord(3, eoscalc.ExchangeResult{})))
	completed, _ = sink.Completed(ctx)
	require.Equal(t, 3, completed)
	require.NoError(t, sink.Close())

	header, rows, err = ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, Columns, header)
	require.Len(t, rows, 3)
	require.Equal(t, "3", rows[2][0])

	// not resuming starts over
	sink, err = OpenCSV(path, false)
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	_, rows, err = ReadCSV(path)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestCSVResumeMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	sink, err := OpenCSV(path, true)
	require.NoError(t, err)
	defer sink.Close()

	completed, err := sink.Completed(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, completed)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "CaseNum,Model")
}

func TestSQLiteSink(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")
	run := RunInfo{StartedAt: testTime, BaseURL: "https://example.test/calc", CaseCount: 3}

	sink, err := OpenSQLite(ctx, path, false, run)
	require.NoError(t, err)
	require.NotEmpty(t, sink.RunID())
	require.NoError(t, sink.Write(ctx, testRecord(1, eoscalc.ExchangeResult{RiskAtBirth: ptr(0.52), RiskClinicalIllness: ptr(0)})))
	require.NoError(t, sink.Write(ctx, testRecord(2, eoscalc.ExchangeResult{Diagnostic: "boom"})))
	firstRun := sink.RunID()
	require.NoError(t, sink.Close())

	sink, err = OpenSQLite(ctx, path, true, run)
	require.NoError(t, err)
	require.NotEqual(t, firstRun, sink.RunID())
	completed, err := sink.Completed(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, completed)

	// collecting a case again replaces it
	require.NoError(t, sink.Write(ctx, testRecord(2, eoscalc.ExchangeResult{RiskAtBirth: ptr(1.5)})))
	records, err := sink.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.True(t, records[0].RiskAtBirth.Valid)
	require.Equal(t, 0.52, records[0].RiskAtBirth.Float64)
	require.False(t, records[0].RiskWellAppearing.Valid)
	require.True(t, records[0].RiskClinicalIllness.Valid)
	require.Equal(t, firstRun, records[0].RunID)

	require.Equal(t, 1.5, records[1].RiskAtBirth.Float64)
	require.Equal(t, sink.RunID(), records[1].RunID)
	require.Equal(t, testTime.Unix(), records[1].RecordedAt)
	require.NoError(t, sink.Close())

	sink, err = OpenSQLite(ctx, path, false, run)
	require.NoError(t, err)
	defer sink.Close()
	completed, err = sink.Completed(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, completed)
}

type memorySink struct {
	records   []Record
	completed int
	closed    bool
}

func (m *memorySink) Completed(ctx context.Context) (int, error) { return m.completed, nil }
func (m *memorySink) Write(ctx context.Context, r Record) error {
	m.records = append(m.records, r)
	return nil
}
func (m *memorySink) Close() error {
	m.closed = true
	return nil
}

func TestMulti(t *testing.T) {
	ctx := context.Background()
	primary := &memorySink{completed: 4}
	secondary := &memorySink{completed: 1}
	sink := Multi{primary, secondary}

	completed, err := sink.Completed(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, completed)

	require.NoError(t, sink.Write(ctx, testRecord(5, eoscalc.ExchangeResult{})))
	require.Len(t, primary.records, 1)
	require.Len(t, secondary.records, 1)

	require.NoError(t, sink.Close())
	require.True(t, primary.closed)
	require.True(t, secondary.closed)
}
