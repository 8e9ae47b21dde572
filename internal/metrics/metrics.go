// Package metrics computes the dashboard's headline KPIs. Every function is
// a pure reduction over the tabular store: same dataset in, same numbers out.
package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/nholabs/claimsight/internal/dataset"
	"github.com/nholabs/claimsight/internal/normalize"
)

// adminCategoryID is the provider category for internal maintenance/admin
// facilities; these are not care providers and are excluded from provider
// counts and the state pivot.
const adminCategoryID = "12"

// Summary is the KPI bundle published with each snapshot. Cost figures cover
// the current calendar year only.
type Summary struct {
	ActiveEnrollees int64   `json:"active_enrollees"`
	Providers       int64   `json:"providers"`
	ActiveContracts int64   `json:"active_contracts"`
	ActivePolicies  int64   `json:"active_policies"`
	TotalPACost     float64 `json:"total_pa_cost"`
	TotalClaimsCost float64 `json:"total_claims_cost"`
	TotalDeniedCost float64 `json:"total_denied_cost"`
	DenialRate      float64 `json:"denial_rate"`
	CostPerEnrollee float64 `json:"cost_per_enrollee"`

	// LossRatio is claims-related cost as a percentage of booked premium.
	LossRatio float64 `json:"loss_ratio"`

	ProviderPivot []PivotRow     `json:"provider_pivot"`
	Monthly       []MonthlyCost  `json:"monthly"`
	Premiums      []GroupPremium `json:"premiums"`
}

// PivotRow is one cell of the state × provider-category pivot.
type PivotRow struct {
	State    string `json:"state"`
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// MonthlyCost compares authorized against adjudicated spend for one month.
// Unclaimed is the PA cost never followed by a claim; persistently large
// values flag providers authorizing services they do not render.
type MonthlyCost struct {
	Month      string  `json:"month"` // YYYY-MM
	PACost     float64 `json:"pa_cost"`
	ClaimsCost float64 `json:"claims_cost"`
	Unclaimed  float64 `json:"unclaimed"`
}

// GroupPremium is the annualized premium booked for one client group, summed
// over its plans from headcounts and unit prices.
type GroupPremium struct {
	GroupName string  `json:"group_name"`
	Premium   float64 `json:"premium"`
}

// Compute reduces the dataset to the KPI summary. now anchors the "current
// year" window and the active-contract check.
func Compute(ds *dataset.Dataset, now time.Time) Summary {
	year := now.Year()
	s := Summary{
		ActiveEnrollees: uniqueEnrollees(ds),
		ActivePolicies:  uniquePolicies(ds),
	}

	s.Providers, s.ProviderPivot = providerPivot(ds)
	s.ActiveContracts = activeContracts(ds, now)

	monthlyPA := make(map[string]float64)
	monthlyClaims := make(map[string]float64)

	for _, r := range ds.PA {
		d := normalize.ParseDate(r.RequestDate)
		if d == nil || d.Year() != year {
			continue
		}
		granted, err := normalize.Amount(r.Granted)
		if err != nil {
			continue
		}
		s.TotalPACost += granted
		monthlyPA[monthKey(*d)] += granted
	}

	var approved float64
	for _, r := range ds.Claims {
		d := normalize.ParseDate(r.EncounterDate)
		if d == nil || d.Year() != year {
			continue
		}
		approved += r.ApprovedAmount
		s.TotalClaimsCost += r.ApprovedAmount
		s.TotalDeniedCost += r.DeniedAmount
		monthlyClaims[monthKey(*d)] += r.ApprovedAmount
	}

	if approved > 0 {
		s.DenialRate = normalize.Round2(s.TotalDeniedCost / approved * 100)
	}
	if s.ActiveEnrollees > 0 {
		s.CostPerEnrollee = normalize.Round2((s.TotalPACost + s.TotalClaimsCost) / float64(s.ActiveEnrollees))
	}
	s.TotalPACost = normalize.Round2(s.TotalPACost)
	s.TotalClaimsCost = normalize.Round2(s.TotalClaimsCost)
	s.TotalDeniedCost = normalize.Round2(s.TotalDeniedCost)

	s.Monthly = monthlyComparison(monthlyPA, monthlyClaims)
	s.Premiums = groupPremiums(ds)

	var totalPremium float64
	for _, p := range s.Premiums {
		totalPremium += p.Premium
	}
	if totalPremium > 0 {
		s.LossRatio = normalize.Round2(s.TotalClaimsCost / totalPremium * 100)
	}
	return s
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

func uniqueEnrollees(ds *dataset.Dataset) int64 {
	seen := make(map[int64]struct{}, len(ds.Enrollees))
	for _, e := range ds.Enrollees {
		seen[e.MemberID] = struct{}{}
	}
	return int64(len(seen))
}

func uniquePolicies(ds *dataset.Dataset) int64 {
	type policy struct{ groupID, planID int64 }
	seen := make(map[policy]struct{}, len(ds.Coverage))
	for _, c := range ds.Coverage {
		seen[policy{c.GroupID, c.PlanID}] = struct{}{}
	}
	return int64(len(seen))
}

// activeContracts counts groups whose contract envelope covers now.
func activeContracts(ds *dataset.Dataset, now time.Time) int64 {
	active := make(map[string]struct{})
	for _, c := range ds.Contracts {
		start := normalize.ParseDate(c.StartDate)
		end := normalize.ParseDate(c.EndDate)
		if start == nil || end == nil {
			continue
		}
		if now.Before(*start) || now.After(*end) {
			continue
		}
		active[c.GroupName] = struct{}{}
	}
	return int64(len(active))
}

// providerPivot counts distinct providers overall and per (state, category),
// skipping the admin category.
func providerPivot(ds *dataset.Dataset) (int64, []PivotRow) {
	type cell struct{ state, category string }
	counts := make(map[cell]map[string]struct{})
	all := make(map[string]struct{})

	for _, p := range ds.Providers {
		if p.CategoryID == adminCategoryID {
			continue
		}
		all[p.ProviderID] = struct{}{}
		k := cell{p.State, p.CategoryName}
		if counts[k] == nil {
			counts[k] = make(map[string]struct{})
		}
		counts[k][p.ProviderID] = struct{}{}
	}

	rows := make([]PivotRow, 0, len(counts))
	for k, ids := range counts {
		rows = append(rows, PivotRow{State: k.state, Category: k.category, Count: int64(len(ids))})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].State != rows[j].State {
			return rows[i].State < rows[j].State
		}
		return rows[i].Category < rows[j].Category
	})
	return int64(len(all)), rows
}

func monthlyComparison(pa, claims map[string]float64) []MonthlyCost {
	months := make(map[string]struct{}, len(pa)+len(claims))
	for m := range pa {
		months[m] = struct{}{}
	}
	for m := range claims {
		months[m] = struct{}{}
	}

	out := make([]MonthlyCost, 0, len(months))
	for m := range months {
		unclaimed := pa[m] - claims[m]
		if unclaimed < 0 {
			unclaimed = 0
		}
		out = append(out, MonthlyCost{
			Month:      m,
			PACost:     normalize.Round2(pa[m]),
			ClaimsCost: normalize.Round2(claims[m]),
			Unclaimed:  normalize.Round2(unclaimed),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// groupPremiums sums family and individual premium per group across its
// plans.
func groupPremiums(ds *dataset.Dataset) []GroupPremium {
	names := make(map[int64]string, len(ds.Groups))
	for _, g := range ds.Groups {
		names[g.GroupID] = g.GroupName
	}

	totals := make(map[string]float64)
	for _, gp := range ds.GroupPlans {
		name, ok := names[gp.GroupID]
		if !ok {
			continue
		}
		totals[name] += float64(gp.CountOfFamily)*gp.FamilyPrice +
			float64(gp.CountOfIndividual)*gp.IndividualPrice
	}

	out := make([]GroupPremium, 0, len(totals))
	for name, total := range totals {
		out = append(out, GroupPremium{GroupName: name, Premium: normalize.Round2(total)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GroupName < out[j].GroupName })
	return out
}
