package recon

import (
	"sort"

	"github.com/nholabs/claimsight/internal/model"
)

// Exceedances emits a record for every usage aggregate that has reached or
// passed its plan limit. Hitting the limit exactly counts as exceeded (by
// zero). A missing or zero limit means "no limit defined", not zero
// tolerance; such rows are excluded.
func Exceedances(usage []model.UsageRecord, limits map[LimitKey]float64) []model.ExceedanceRecord {
	var out []model.ExceedanceRecord
	for _, u := range usage {
		maxLimit := limits[LimitKey{u.PlanID, u.BenefitCategoryID}]
		if maxLimit <= 0 {
			continue
		}
		if u.TotalGranted < maxLimit {
			continue
		}
		out = append(out, model.ExceedanceRecord{
			UsageRecord: u,
			MaxLimit:    maxLimit,
			ExceededBy:  u.TotalGranted - maxLimit,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExceededBy != out[j].ExceededBy {
			return out[i].ExceededBy > out[j].ExceededBy
		}
		return out[i].PatientID < out[j].PatientID
	})
	return out
}
