package model

import "time"

// UnknownBenefitCategory is the bucket for transactions whose procedure code
// has no benefit mapping. Spend under it is kept in usage totals but can
// never match a plan limit, so it is excluded from exceedance checks.
const UnknownBenefitCategory int64 = 0

// UnknownBenefitName labels the unknown bucket in reports.
const UnknownBenefitName = "UNKNOWN"

// Transaction is the normalized form shared by PA and Claims records once
// dates, amounts, and plan membership have been resolved. The two systems do
// not share record identifiers; a real-world procedure that appears in both
// streams is correlated by (PatientID, ProcedureCode) only.
type Transaction struct {
	RecordID      string    `json:"record_id"`
	PatientID     string    `json:"patient_id"`
	GroupName     string    `json:"group_name"`
	PlanID        int64     `json:"plan_id"`
	ProviderID    string    `json:"provider_id"`
	ProcedureCode string    `json:"procedure_code"`
	RequestDate   time.Time `json:"request_date"`
	Granted       float64   `json:"granted"`
}

// UsageRecord is aggregated spend per patient, plan, and benefit category.
// Always recomputed from source tables, never persisted.
type UsageRecord struct {
	PatientID         string  `json:"patient_id"`
	PlanID            int64   `json:"plan_id"`
	BenefitCategoryID int64   `json:"benefit_category_id"`
	BenefitName       string  `json:"benefit_name"`
	TotalGranted      float64 `json:"total_granted"`
}

// ExceedanceRecord is a UsageRecord that has reached or passed its plan
// limit. ExceededBy is always >= 0.
type ExceedanceRecord struct {
	UsageRecord
	MaxLimit   float64 `json:"max_limit"`
	ExceededBy float64 `json:"exceeded_by"`
}

// Window is a closed date interval, used for contract envelopes.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
