package db

import (
	"context"
	"database/sql"
)

const createRun = `-- name: CreateRun :exec
insert into run (id, started_at, base_url, case_count)
values (?, ?, ?, ?)
`

type CreateRunParams struct {
	ID        string
	StartedAt int64
	BaseUrl   string
	CaseCount int64
}

func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) error {
	_, err := q.db.ExecContext(ctx, createRun,
		arg.ID,
		arg.StartedAt,
		arg.BaseUrl,
		arg.CaseCount,
	)
	return err
}

const noteRecord = `-- name: NoteRecord :exec
insert or replace into record (
    case_num, run_id, model, ga_weeks, ga_days, temp_f, rom_hours,
    gbs_status, abx_type, abx_duration, clinical_exam, incidence,
    risk_at_birth, risk_well_appearing, risk_equivocal, risk_clinical_illness,
    diagnostic, recorded_at
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type NoteRecordParams struct {
	CaseNum             int64
	RunID               string
	Model               string
	GaWeeks             int64
	GaDays              int64
	TempF               float64
	RomHours            float64
	GbsStatus           string
	AbxType             string
	AbxDuration         string
	ClinicalExam        string
	Incidence           string
	RiskAtBirth         sql.NullFloat64
	RiskWellAppearing   sql.NullFloat64
	RiskEquivocal       sql.NullFloat64
	RiskClinicalIllness sql.NullFloat64
	Diagnostic          string
	RecordedAt          int64
}

func (q *Queries) NoteRecord(ctx context.Context, arg NoteRecordParams) error {
	_, err := q.db.ExecContext(ctx, noteRecord,
		arg.CaseNum,
		arg.RunID,
		arg.Model,
		arg.GaWeeks,
		arg.GaDays,
		arg.TempF,
		arg.RomHours,
		arg.GbsStatus,
		arg.AbxType,
		arg.AbxDuration,
		arg.ClinicalExam,
		arg.Incidence,
		arg.RiskAtBirth,
		arg.RiskWellAppearing,
		arg.RiskEquivocal,
		arg.RiskClinicalIllness,
		arg.Diagnostic,
		arg.RecordedAt,
	)
	return err
}

const countRecords = `-- name: CountRecords :one
select count(*) from record
`

func (q *Queries) CountRecords(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRecords)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteAllRecords = `-- name: DeleteAllRecords :exec
delete from record
`

func (q *Queries) DeleteAllRecords(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllRecords)
	return err
}

const getRecords = `-- name: GetRecords :many
select case_num, run_id, model, ga_weeks, ga_days, temp_f, rom_hours, gbs_status, abx_type, abx_duration, clinical_exam, incidence, risk_at_birth, risk_well_appearing, risk_equivocal, risk_clinical_illness, diagnostic, recorded_at from record order by case_num
`

func (q *Queries) GetRecords(ctx context.Context) ([]Record, error) {
	rows, err := q.db.QueryContext(ctx, getRecords)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Record
	for rows.Next() {
		var i Record
		if err := rows.Scan(
			&i.CaseNum,
			&i.RunID,
			&i.Model,
			&i.GaWeeks,
			&i.GaDays,
			&i.TempF,
			&i.RomHours,
			&i.GbsStatus,
			&i.AbxType,
			&i.AbxDuration,
			&i.ClinicalExam,
			&i.Incidence,
			&i.RiskAtBirth,
			&i.RiskWellAppearing,
			&i.RiskEquivocal,
			&i.RiskClinicalIllness,
			&i.Diagnostic,
			&i.RecordedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
