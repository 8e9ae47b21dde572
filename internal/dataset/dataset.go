// Package dataset holds the in-memory tabular data store: one immutable
// bundle of source tables, recreated wholesale on every refresh cycle.
package dataset

import (
	"time"

	"github.com/nholabs/claimsight/internal/model"
)

// Dataset bundles every source table for one load cycle. Loaders populate
// it; derived computations treat it as read-only.
type Dataset struct {
	PA                []model.PARow
	Claims            []model.ClaimRow
	Providers         []model.ProviderRow
	Groups            []model.GroupRow
	Plans             []model.PlanRow
	GroupPlans        []model.GroupPlanRow
	Contracts         []model.ContractRow
	Coverage          []model.CoverageRow
	Enrollees         []model.EnrolleeRow
	MemberPlans       []model.MemberPlanRow
	BenefitProcedures []model.BenefitProcedureRow
	PlanLimits        []model.PlanLimitRow
	DebitNotes        []model.DebitNoteRow
	Ledger            []model.LedgerRow
	AccountSetup      []model.AccountSetupRow
	CompanyAccounts   []model.CompanyAccountRow

	LoadedAt time.Time
}

// Len returns the row count of the named table, or -1 for an unknown name.
func (d *Dataset) Len(table string) int {
	switch table {
	case "pa_procedures":
		return len(d.PA)
	case "claims":
		return len(d.Claims)
	case "providers":
		return len(d.Providers)
	case "groups":
		return len(d.Groups)
	case "plans":
		return len(d.Plans)
	case "group_plans":
		return len(d.GroupPlans)
	case "group_contracts":
		return len(d.Contracts)
	case "group_coverage":
		return len(d.Coverage)
	case "enrollees":
		return len(d.Enrollees)
	case "member_plans":
		return len(d.MemberPlans)
	case "benefit_procedures":
		return len(d.BenefitProcedures)
	case "plan_benefit_limits":
		return len(d.PlanLimits)
	case "debit_notes":
		return len(d.DebitNotes)
	case "ledger_entries":
		return len(d.Ledger)
	case "account_setup":
		return len(d.AccountSetup)
	case "company_accounts":
		return len(d.CompanyAccounts)
	}
	return -1
}

// RowCounts returns the per-table row counts, for load summaries and the
// status API.
func (d *Dataset) RowCounts() map[string]int64 {
	counts := make(map[string]int64, len(model.AllExtracts))
	for _, e := range model.AllExtracts {
		counts[e.Name] = int64(d.Len(e.Name))
	}
	return counts
}

// Validate fails fast when a required table is absent or empty. Derived
// computations must never substitute empty results for a load-bearing
// input; an empty required table here is an error, not a zero-row report.
func (d *Dataset) Validate() error {
	for _, name := range model.RequiredExtracts() {
		if d.Len(name) == 0 {
			return &MissingSourceError{Table: name}
		}
	}
	return nil
}

// Require fails with a MissingSourceError unless every named table has rows.
// Computations that need optional tables (ledger, debit notes) call this for
// their own inputs.
func (d *Dataset) Require(tables ...string) error {
	for _, name := range tables {
		if d.Len(name) == 0 {
			return &MissingSourceError{Table: name}
		}
	}
	return nil
}
