package db

import "database/sql"

type Run struct {
	ID        string
	StartedAt int64
	BaseUrl   string
	CaseCount int64
}

type Record struct {
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
