package results

import (
	"context"
	"database/sql"
	"eoscollect/internal/results/db"
	"eoscollect/pkg/migrations"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteSink stores records in a sqlite db, one row per case number. A resumed
// run overwrites the rows of the cases it collects again.
type SQLiteSink struct {
	db    *sql.DB
	qry   *db.Queries
	runID string
}

// RunInfo describes the run records are written for.
type RunInfo struct {
	StartedAt time.Time
	BaseURL   string
	CaseCount int
}

// OpenSQLite opens (and creates if needed) the results db at `path`. Unless
// resuming, records of earlier runs are deleted.
func OpenSQLite(ctx context.Context, path string, resume bool, run RunInfo) (*SQLiteSink, error) {
	database, err := migrations.OpenAndMigrateDB(db.Schema, path)
	if err != nil {
		return nil, err
	}
	sink, err := newSQLiteSink(ctx, database, resume, run)
	if err != nil {
		database.Close()
		return nil, err
	}
	return sink, nil
}

func newSQLiteSink(ctx context.Context, database *sql.DB, resume bool, run RunInfo) (*SQLiteSink, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	txqry := db.New(database).WithTx(tx)

	if !resume {
		err = txqry.DeleteAllRecords(ctx)
		if err != nil {
			return nil, fmt.Errorf("delete previous records: %w", err)
		}
	}

	runID := uuid.NewString()
	err = txqry.CreateRun(ctx, db.CreateRunParams{
		ID:        runID,
		StartedAt: run.StartedAt.Unix(),
		BaseUrl:   run.BaseURL,
		CaseCount: int64(run.CaseCount),
	})
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}
	return &SQLiteSink{
		db:    database,
		qry:   db.New(database),
		runID: runID,
	}, nil
}

// RunID is the id of the run record this sink writes under.
func (s *SQLiteSink) RunID() string {
	return s.runID
}

func (s *SQLiteSink) Completed(ctx context.Context) (int, error) {
	count, err := s.qry.CountRecords(ctx)
	return int(count), err
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func (s *SQLiteSink) Write(ctx context.Context, record Record) error {
	p := record.Params
	r := record.Result
	err := s.qry.NoteRecord(ctx, db.NoteRecordParams{
		CaseNum:             int64(record.CaseNum),
		RunID:               s.runID,
		Model:               string(p.Mode),
		GaWeeks:             int64(p.GAWeeks),
		GaDays:              int64(p.GADays),
		TempF:               p.TempF,
		RomHours:            p.ROMHours,
		GbsStatus:           p.GBS,
		AbxType:             p.AbxType,
		AbxDuration:         p.AbxDuration,
		ClinicalExam:        p.Clinical,
		Incidence:           p.Incidence,
		RiskAtBirth:         nullable(r.RiskAtBirth),
		RiskWellAppearing:   nullable(r.RiskWellAppearing),
		RiskEquivocal:       nullable(r.RiskEquivocal),
		RiskClinicalIllness: nullable(r.RiskClinicalIllness),
		Diagnostic:          r.Diagnostic,
		RecordedAt:          record.Timestamp.Unix(),
	})
	if err != nil {
		return fmt.Errorf("note case %d: %w", record.CaseNum, err)
	}
	return nil
}

// Records returns everything stored, ordered by case number.
func (s *SQLiteSink) Records(ctx context.Context) ([]db.Record, error) {
	return s.qry.GetRecords(ctx)
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
