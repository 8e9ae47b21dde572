// Package recon implements the benefit reconciliation engine: it merges
// pre-authorization and claims records against plan benefit limits,
// deduplicates cross-source overlap, and computes per-customer exceedances.
package recon

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/nholabs/claimsight/internal/dataset"
	"github.com/nholabs/claimsight/internal/model"
	"github.com/nholabs/claimsight/internal/normalize"
)

// requiredTables are the inputs the engine refuses to run without. An empty
// table here previously produced silent zero-exceedance reports; now it is a
// hard error surfaced at the refresh boundary.
var requiredTables = []string{
	"pa_procedures",
	"claims",
	"groups",
	"group_contracts",
	"enrollees",
	"member_plans",
	"benefit_procedures",
	"plan_benefit_limits",
}

// Ambiguities counts rows that could not be fully joined. These are
// advisory: the rows are excluded from limit-aware calculations (or bucketed
// under the unknown benefit category) but never abort the run.
type Ambiguities struct {
	UnknownBenefitCodes   int64 `json:"unknown_benefit_codes"`
	UnresolvedClaimGroups int64 `json:"unresolved_claim_groups"`
	UnresolvedClaimPlans  int64 `json:"unresolved_claim_plans"`
	UnparsableDates       int64 `json:"unparsable_dates"`
	UnparsableAmounts     int64 `json:"unparsable_amounts"`
}

// Result is the full output of one reconciliation run over a static dataset.
// Reconciling the same dataset twice yields identical results.
type Result struct {
	Usage       map[model.Source][]model.UsageRecord      `json:"usage"`
	Exceedances map[model.Source][]model.ExceedanceRecord `json:"exceedances"`

	// Envelopes maps each contracted group to its bounding window,
	// min(startdate)..max(enddate) across all of the group's contracts.
	Envelopes map[string]model.Window `json:"envelopes"`

	// SkippedGroups are groups seen in transactions but absent from the
	// contract table; their activity cannot be bounded to a period.
	SkippedGroups []string `json:"skipped_groups"`

	Ambiguities Ambiguities `json:"ambiguities"`
}

// Run reconciles the dataset for all three source selectors.
func Run(ds *dataset.Dataset, log zerolog.Logger) (*Result, error) {
	if err := ds.Require(requiredTables...); err != nil {
		return nil, err
	}

	amb := &Ambiguities{}
	envelopes := Envelopes(ds.Contracts)
	benefits := benefitMap(ds.BenefitProcedures)
	limits := limitMap(ds.PlanLimits)

	pa := paTransactions(ds, amb)
	claims := claimTransactions(ds, amb)

	paIn, skippedPA := filterToEnvelopes(pa, envelopes)
	claimsIn, skippedClaims := filterToEnvelopes(claims, envelopes)
	skipped := distinctSorted(append(skippedPA, skippedClaims...))

	amb.UnknownBenefitCodes = countUnknownCodes(append(paIn, claimsIn...), benefits)

	res := &Result{
		Usage:         make(map[model.Source][]model.UsageRecord, len(model.AllSources)),
		Exceedances:   make(map[model.Source][]model.ExceedanceRecord, len(model.AllSources)),
		Envelopes:     envelopes,
		SkippedGroups: skipped,
		Ambiguities:   *amb,
	}

	for _, src := range model.AllSources {
		usage := Usage(paIn, claimsIn, benefits, src)
		res.Usage[src] = usage
		res.Exceedances[src] = Exceedances(usage, limits)
	}

	log.Info().
		Int("pa_transactions", len(paIn)).
		Int("claim_transactions", len(claimsIn)).
		Int("groups_skipped", len(skipped)).
		Int64("unknown_codes", amb.UnknownBenefitCodes).
		Int("combined_exceedances", len(res.Exceedances[model.SourceCombined])).
		Msg("reconciliation complete")

	return res, nil
}

// Benefit is a procedure code's resolved benefit category.
type Benefit struct {
	CategoryID int64
	Name       string
}

func benefitMap(rows []model.BenefitProcedureRow) map[string]Benefit {
	m := make(map[string]Benefit, len(rows))
	for _, r := range rows {
		code := normalize.Code(r.ProcedureCode)
		if code == "" {
			continue
		}
		m[code] = Benefit{CategoryID: r.BenefitCategoryID, Name: r.BenefitName}
	}
	return m
}

// LimitKey identifies one plan+benefit ceiling.
type LimitKey struct {
	PlanID            int64
	BenefitCategoryID int64
}

func limitMap(rows []model.PlanLimitRow) map[LimitKey]float64 {
	m := make(map[LimitKey]float64, len(rows))
	for _, r := range rows {
		m[LimitKey{r.PlanID, r.BenefitCategoryID}] = r.MaxLimit
	}
	return m
}

func countUnknownCodes(txns []model.Transaction, benefits map[string]Benefit) int64 {
	unknown := make(map[string]struct{})
	for _, t := range txns {
		if _, ok := benefits[t.ProcedureCode]; !ok {
			unknown[t.ProcedureCode] = struct{}{}
		}
	}
	return int64(len(unknown))
}

func distinctSorted(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
