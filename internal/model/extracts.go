package model

// Extract describes one source table of the tabular data store.
type Extract struct {
	Name     string // logical table name, e.g. "pa_procedures"
	File     string // file name inside a Parquet extract directory
	Required bool   // reconciliation fails fast when a required table is absent or empty
}

// AllExtracts lists every source table in canonical order. The file names
// follow the nightly extract-dump convention.
var AllExtracts = []Extract{
	{Name: "pa_procedures", File: "pa_procedures.parquet", Required: true},
	{Name: "claims", File: "claims.parquet", Required: true},
	{Name: "providers", File: "providers.parquet", Required: true},
	{Name: "groups", File: "groups.parquet", Required: true},
	{Name: "plans", File: "plans.parquet", Required: false},
	{Name: "group_plans", File: "group_plans.parquet", Required: false},
	{Name: "group_contracts", File: "group_contracts.parquet", Required: true},
	{Name: "group_coverage", File: "group_coverage.parquet", Required: true},
	{Name: "enrollees", File: "enrollees.parquet", Required: true},
	{Name: "member_plans", File: "member_plans.parquet", Required: true},
	{Name: "benefit_procedures", File: "benefit_procedures.parquet", Required: true},
	{Name: "plan_benefit_limits", File: "plan_benefit_limits.parquet", Required: true},
	{Name: "debit_notes", File: "debit_notes.parquet", Required: false},
	{Name: "ledger_entries", File: "ledger_entries.parquet", Required: false},
	{Name: "account_setup", File: "account_setup.parquet", Required: false},
	{Name: "company_accounts", File: "company_accounts.parquet", Required: false},
}

// ExtractByName returns the Extract for the given logical name, or ok=false.
func ExtractByName(name string) (Extract, bool) {
	for _, e := range AllExtracts {
		if e.Name == name {
			return e, true
		}
	}
	return Extract{}, false
}

// RequiredExtracts returns just the names of tables reconciliation cannot
// run without.
func RequiredExtracts() []string {
	var names []string
	for _, e := range AllExtracts {
		if e.Required {
			names = append(names, e.Name)
		}
	}
	return names
}
