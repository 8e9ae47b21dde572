package recon

import (
	"strconv"
	"strings"

	"github.com/nholabs/claimsight/internal/dataset"
	"github.com/nholabs/claimsight/internal/model"
	"github.com/nholabs/claimsight/internal/normalize"
)

// Envelopes computes each group's contract envelope: the window from the
// earliest start date to the latest end date across all of the group's
// contract rows. Rows with unparsable dates are ignored; a group with no
// parsable row gets no envelope and is skipped downstream.
func Envelopes(contracts []model.ContractRow) map[string]model.Window {
	out := make(map[string]model.Window)
	for _, c := range contracts {
		start := normalize.ParseDate(c.StartDate)
		end := normalize.ParseDate(c.EndDate)
		if start == nil || end == nil {
			continue
		}
		w, ok := out[c.GroupName]
		if !ok {
			out[c.GroupName] = model.Window{Start: *start, End: *end}
			continue
		}
		if start.Before(w.Start) {
			w.Start = *start
		}
		if end.After(w.End) {
			w.End = *end
		}
		out[c.GroupName] = w
	}
	return out
}

// paTransactions normalizes the PA extract into the shared transaction form.
// Rows whose date or amount cannot be parsed are dropped and counted.
func paTransactions(ds *dataset.Dataset, amb *Ambiguities) []model.Transaction {
	out := make([]model.Transaction, 0, len(ds.PA))
	for _, r := range ds.PA {
		date := normalize.ParseDate(r.RequestDate)
		if date == nil {
			amb.UnparsableDates++
			continue
		}
		granted, err := normalize.Amount(r.Granted)
		if err != nil {
			amb.UnparsableAmounts++
			continue
		}
		out = append(out, model.Transaction{
			RecordID:      r.PANumber,
			PatientID:     strings.TrimSpace(r.PatientID),
			GroupName:     r.GroupName,
			PlanID:        r.PlanID,
			ProviderID:    r.ProviderID,
			ProcedureCode: normalize.Code(r.Code),
			RequestDate:   *date,
			Granted:       granted,
		})
	}
	return out
}

// claimTransactions normalizes the Claims extract. Claims carry a numeric
// group id instead of a group name and no plan id at all; the group resolves
// through the groups table and the plan through the enrollee → current
// member-plan chain. A claim with an unresolvable group is dropped (its
// activity cannot be bounded by a contract); an unresolvable plan keeps the
// row with plan id 0, so its spend stays visible in usage but never matches
// a limit.
func claimTransactions(ds *dataset.Dataset, amb *Ambiguities) []model.Transaction {
	groupNames := make(map[int64]string, len(ds.Groups))
	for _, g := range ds.Groups {
		groupNames[g.GroupID] = g.GroupName
	}

	members := make(map[string]int64, len(ds.Enrollees))
	for _, e := range ds.Enrollees {
		members[normalize.EnrolleeID(e.LegacyCode)] = e.MemberID
	}

	currentPlans := make(map[int64]int64, len(ds.MemberPlans))
	for _, mp := range ds.MemberPlans {
		if strings.EqualFold(strings.TrimSpace(mp.IsCurrent), "true") {
			currentPlans[mp.MemberID] = mp.PlanID
		}
	}

	out := make([]model.Transaction, 0, len(ds.Claims))
	for _, r := range ds.Claims {
		date := normalize.ParseDate(r.EncounterDate)
		if date == nil {
			amb.UnparsableDates++
			continue
		}

		groupID, err := strconv.ParseInt(strings.TrimSpace(r.GroupID), 10, 64)
		if err != nil {
			amb.UnresolvedClaimGroups++
			continue
		}
		groupName, ok := groupNames[groupID]
		if !ok {
			amb.UnresolvedClaimGroups++
			continue
		}

		patient := strings.TrimSpace(r.LegacyNumber)
		var planID int64
		if memberID, ok := members[normalize.EnrolleeID(patient)]; ok {
			planID = currentPlans[memberID]
		}
		if planID == 0 {
			amb.UnresolvedClaimPlans++
		}

		recordID := r.PANumber
		if recordID == "" {
			recordID = patient + "/" + r.ProcedureCode
		}

		out = append(out, model.Transaction{
			RecordID:      recordID,
			PatientID:     patient,
			GroupName:     groupName,
			PlanID:        planID,
			ProcedureCode: normalize.Code(r.ProcedureCode),
			RequestDate:   *date,
			Granted:       r.ApprovedAmount,
		})
	}
	return out
}

// filterToEnvelopes keeps transactions dated inside their group's contract
// envelope. Transactions for groups without an envelope are dropped; the
// group names come back in skipped for reporting.
func filterToEnvelopes(txns []model.Transaction, envelopes map[string]model.Window) (kept []model.Transaction, skipped []string) {
	kept = make([]model.Transaction, 0, len(txns))
	for _, t := range txns {
		w, ok := envelopes[t.GroupName]
		if !ok {
			skipped = append(skipped, t.GroupName)
			continue
		}
		if !w.Contains(t.RequestDate) {
			continue
		}
		kept = append(kept, t)
	}
	return kept, skipped
}
