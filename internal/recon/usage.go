package recon

import (
	"sort"

	"github.com/nholabs/claimsight/internal/model"
)

// pairKey correlates records across the two transaction streams. The PA and
// Claims systems share no record identifier; (patient, procedure code) is
// the only available join key.
type pairKey struct {
	patientID string
	code      string
}

// usageKey identifies one usage aggregate.
type usageKey struct {
	patientID  string
	planID     int64
	categoryID int64
}

// Usage aggregates granted amounts per (patient, plan, benefit category) for
// the selected source. For SourceCombined the two streams are deduplicated
// first: a (patient, code) pair present in both streams counts once, with
// the Claims amount taken as authoritative (the PA grant for the same
// procedure is a provisional figure superseded by adjudication, not extra
// spend).
func Usage(pa, claims []model.Transaction, benefits map[string]Benefit, src model.Source) []model.UsageRecord {
	var txns []model.Transaction
	switch src {
	case model.SourcePA:
		txns = pa
	case model.SourceClaims:
		txns = claims
	case model.SourceCombined:
		common, claimsOnly, paOnly := dedupCombined(pa, claims)
		txns = make([]model.Transaction, 0, len(common)+len(claimsOnly)+len(paOnly))
		txns = append(txns, common...)
		txns = append(txns, claimsOnly...)
		txns = append(txns, paOnly...)
	}
	return aggregate(txns, benefits)
}

// dedupCombined splits the two streams into the three disjoint buckets the
// combined view is built from:
//
//	common     — claim rows whose (patient, code) also appears in PA
//	claimsOnly — claim rows with no PA counterpart
//	paOnly     — PA rows with no Claims counterpart
//
// The paOnly anti-join runs against the Claims side; an earlier report
// generation anti-joined PA against itself, which silently emptied the
// bucket and understated combined usage.
func dedupCombined(pa, claims []model.Transaction) (common, claimsOnly, paOnly []model.Transaction) {
	paKeys := make(map[pairKey]struct{}, len(pa))
	for _, t := range pa {
		paKeys[pairKey{t.PatientID, t.ProcedureCode}] = struct{}{}
	}
	claimKeys := make(map[pairKey]struct{}, len(claims))
	for _, t := range claims {
		claimKeys[pairKey{t.PatientID, t.ProcedureCode}] = struct{}{}
	}

	for _, t := range claims {
		if _, ok := paKeys[pairKey{t.PatientID, t.ProcedureCode}]; ok {
			common = append(common, t)
		} else {
			claimsOnly = append(claimsOnly, t)
		}
	}
	for _, t := range pa {
		if _, ok := claimKeys[pairKey{t.PatientID, t.ProcedureCode}]; !ok {
			paOnly = append(paOnly, t)
		}
	}
	return common, claimsOnly, paOnly
}

// aggregate sums granted amounts per usage key. Codes with no benefit
// mapping land in the unknown bucket: their spend stays visible in usage
// totals but can never match a plan limit.
func aggregate(txns []model.Transaction, benefits map[string]Benefit) []model.UsageRecord {
	totals := make(map[usageKey]*model.UsageRecord)
	for _, t := range txns {
		b, ok := benefits[t.ProcedureCode]
		if !ok {
			b = Benefit{CategoryID: model.UnknownBenefitCategory, Name: model.UnknownBenefitName}
		}
		k := usageKey{t.PatientID, t.PlanID, b.CategoryID}
		rec, ok := totals[k]
		if !ok {
			rec = &model.UsageRecord{
				PatientID:         t.PatientID,
				PlanID:            t.PlanID,
				BenefitCategoryID: b.CategoryID,
				BenefitName:       b.Name,
			}
			totals[k] = rec
		}
		rec.TotalGranted += t.Granted
	}

	out := make([]model.UsageRecord, 0, len(totals))
	for _, rec := range totals {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PatientID != out[j].PatientID {
			return out[i].PatientID < out[j].PatientID
		}
		if out[i].PlanID != out[j].PlanID {
			return out[i].PlanID < out[j].PlanID
		}
		return out[i].BenefitCategoryID < out[j].BenefitCategoryID
	})
	return out
}
