// Package ledger reconciles issued debit notes against general-ledger cash
// postings. Invoices and ledger entries are recorded in independent systems
// with no shared transaction key; amount/date matching inside a group's
// contract window is the only available correlation.
package ledger

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nholabs/claimsight/internal/dataset"
	"github.com/nholabs/claimsight/internal/model"
	"github.com/nholabs/claimsight/internal/normalize"
)

// matchTolerance is the allowed residual when a receivable and its clearing
// cash entry are compared; the finance system rounds the two legs
// independently.
const matchTolerance = 0.01

// Entry is a ledger row with its company and account description resolved.
type Entry struct {
	AccCode     string
	AccountType string
	AccountDesc string
	Company     string
	Date        time.Time
	Amount      float64
}

// Posting is one reconciled double-entry pair: a receivable cleared by a
// cash entry for the same account, company, and date.
type Posting struct {
	Company string    `json:"company"`
	Date    time.Time `json:"date"`
	Amount  float64   `json:"amount"`
}

// CompanyBalance compares what was invoiced against what the ledger shows as
// collected inside the company's contract window.
type CompanyBalance struct {
	Company      string  `json:"company"`
	DebitAmount  float64 `json:"debit_amount"`
	LedgerAmount float64 `json:"ledger_amount"`
	Balance      float64 `json:"balance"`
}

// Resolve joins raw ledger rows to the company-account map and the account
// setup table. Rows with an unmapped company code keep an empty Company and
// fall out of per-company matching.
func Resolve(rows []model.LedgerRow, accounts []model.CompanyAccountRow, setup []model.AccountSetupRow) []Entry {
	companies := make(map[string]string, len(accounts))
	for _, a := range accounts {
		companies[strings.TrimSpace(a.CompanyID)] = a.CompanyName
	}
	descs := make(map[string]string, len(setup))
	for _, s := range setup {
		descs[strings.TrimSpace(s.AccCode)] = s.Description
	}

	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		date := normalize.ParseDate(r.Date)
		if date == nil {
			continue
		}
		acc := strings.TrimSuffix(strings.TrimSpace(r.AccCode), ".0")
		out = append(out, Entry{
			AccCode:     acc,
			AccountType: strings.ToUpper(strings.TrimSpace(r.AccountType)),
			AccountDesc: descs[acc],
			Company:     companies[strings.TrimSpace(r.CompanyCode)],
			Date:        *date,
			Amount:      r.Amount,
		})
	}
	return out
}

type postingKey struct {
	accCode string
	company string
	date    time.Time
}

// MatchPostings identifies matched double-entry pairs: groups of exactly two
// entries for the same account, company, and date whose account types are
// the {CURRENT ASSETS, CASH} pair and whose signed amounts cancel within
// tolerance. The reconciled amount is the magnitude of the pair.
func MatchPostings(entries []Entry) []Posting {
	groups := make(map[postingKey][]Entry)
	for _, e := range entries {
		if e.AccountType != "CURRENT ASSETS" && e.AccountType != "CASH" {
			continue
		}
		k := postingKey{e.AccCode, e.Company, e.Date}
		groups[k] = append(groups[k], e)
	}

	var out []Posting
	for k, g := range groups {
		if len(g) != 2 {
			continue
		}
		if g[0].AccountType == g[1].AccountType {
			continue
		}
		if math.Abs(g[0].Amount+g[1].Amount) >= matchTolerance {
			continue
		}
		out = append(out, Posting{
			Company: k.company,
			Date:    k.date,
			Amount:  math.Max(math.Abs(g[0].Amount), math.Abs(g[1].Amount)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Company != out[j].Company {
			return out[i].Company < out[j].Company
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// CompanyBalances computes, per contracted company, the debit-note total for
// billing periods equal to or inside the contract window, the reconciled
// ledger total for dates inside the window, and the balance between them.
// Company names are matched in normalized form; the finance and clinical
// systems hand-enter them differently.
func CompanyBalances(notes []model.DebitNoteRow, postings []Posting, envelopes map[string]model.Window) []CompanyBalance {
	type parsedNote struct {
		company string
		amount  float64
		from    time.Time
		to      time.Time
	}
	var parsed []parsedNote
	for _, n := range notes {
		from := normalize.ParseDate(n.PeriodFrom)
		to := normalize.ParseDate(n.PeriodTo)
		if from == nil || to == nil {
			continue
		}
		parsed = append(parsed, parsedNote{
			company: normalize.CompanyName(n.CompanyName),
			amount:  n.Amount,
			from:    *from,
			to:      *to,
		})
	}

	out := make([]CompanyBalance, 0, len(envelopes))
	for company, w := range envelopes {
		norm := normalize.CompanyName(company)

		var debit float64
		for _, n := range parsed {
			if n.company != norm {
				continue
			}
			exact := n.from.Equal(w.Start) && n.to.Equal(w.End)
			within := !n.from.Before(w.Start) && !n.to.After(w.End)
			if exact || within {
				debit += n.amount
			}
		}

		var collected float64
		for _, p := range postings {
			if normalize.CompanyName(p.Company) != norm {
				continue
			}
			if w.Contains(p.Date) {
				collected += p.Amount
			}
		}

		out = append(out, CompanyBalance{
			Company:      company,
			DebitAmount:  normalize.Round2(debit),
			LedgerAmount: normalize.Round2(collected),
			Balance:      normalize.Round2(collected - debit),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Company < out[j].Company })
	return out
}

// Reconcile runs the full revenue reconciliation over a dataset. The ledger
// tables are optional extracts: when absent the result is an explicit
// MissingSourceError, never a silently empty report.
func Reconcile(ds *dataset.Dataset, envelopes map[string]model.Window, log zerolog.Logger) ([]CompanyBalance, error) {
	if err := ds.Require("ledger_entries", "debit_notes", "company_accounts"); err != nil {
		return nil, err
	}
	entries := Resolve(ds.Ledger, ds.CompanyAccounts, ds.AccountSetup)
	postings := MatchPostings(entries)
	balances := CompanyBalances(ds.DebitNotes, postings, envelopes)

	log.Info().
		Int("ledger_entries", len(entries)).
		Int("matched_postings", len(postings)).
		Int("companies", len(balances)).
		Msg("revenue reconciliation complete")
	return balances, nil
}
