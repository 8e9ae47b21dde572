package ledger

import (
	"testing"
	"time"

	"github.com/nholabs/claimsight/internal/model"
)

func window(start, end string) model.Window {
	s, _ := time.Parse("2006-01-02", start)
	e, _ := time.Parse("2006-01-02", end)
	return model.Window{Start: s, End: e}
}

func acmeEntries(date string, amount float64) []model.LedgerRow {
	return []model.LedgerRow{
		{AccCode: "4100", AccountType: "CURRENT ASSETS", Date: date, Amount: -amount, CompanyCode: "101"},
		{AccCode: "4100", AccountType: "CASH", Date: date, Amount: amount, CompanyCode: "101"},
	}
}

var acmeAccounts = []model.CompanyAccountRow{{CompanyID: "101", CompanyName: "Acme Ltd"}}

func TestMatchPostings_PairClears(t *testing.T) {
	entries := Resolve(acmeEntries("2024-03-01", 500), acmeAccounts, nil)
	postings := MatchPostings(entries)

	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	p := postings[0]
	if p.Company != "Acme Ltd" {
		t.Errorf("company = %q, want Acme Ltd", p.Company)
	}
	if p.Amount != 500 {
		t.Errorf("amount = %v, want 500", p.Amount)
	}
}

func TestMatchPostings_ResidualOverToleranceRejected(t *testing.T) {
	rows := []model.LedgerRow{
		{AccCode: "4100", AccountType: "CURRENT ASSETS", Date: "2024-03-01", Amount: -500, CompanyCode: "101"},
		{AccCode: "4100", AccountType: "CASH", Date: "2024-03-01", Amount: 500.02, CompanyCode: "101"},
	}
	postings := MatchPostings(Resolve(rows, acmeAccounts, nil))
	if len(postings) != 0 {
		t.Fatalf("residual 0.02 should not match, got %d postings", len(postings))
	}
}

func TestMatchPostings_ResidualWithinToleranceAccepted(t *testing.T) {
	rows := []model.LedgerRow{
		{AccCode: "4100", AccountType: "CURRENT ASSETS", Date: "2024-03-01", Amount: -500, CompanyCode: "101"},
		{AccCode: "4100", AccountType: "CASH", Date: "2024-03-01", Amount: 500.005, CompanyCode: "101"},
	}
	postings := MatchPostings(Resolve(rows, acmeAccounts, nil))
	if len(postings) != 1 {
		t.Fatalf("residual 0.005 should match, got %d postings", len(postings))
	}
	if postings[0].Amount != 500.005 {
		t.Errorf("amount = %v, want the larger magnitude 500.005", postings[0].Amount)
	}
}

func TestMatchPostings_RequiresExactPair(t *testing.T) {
	// Three entries on the same key never match, even if subsets cancel.
	rows := append(acmeEntries("2024-03-01", 500), model.LedgerRow{
		AccCode: "4100", AccountType: "CASH", Date: "2024-03-01", Amount: 0, CompanyCode: "101",
	})
	if postings := MatchPostings(Resolve(rows, acmeAccounts, nil)); len(postings) != 0 {
		t.Fatalf("triple group matched, want none, got %d", len(postings))
	}

	// Two entries of the same type never match either.
	rows = []model.LedgerRow{
		{AccCode: "4100", AccountType: "CASH", Date: "2024-03-01", Amount: -500, CompanyCode: "101"},
		{AccCode: "4100", AccountType: "CASH", Date: "2024-03-01", Amount: 500, CompanyCode: "101"},
	}
	if postings := MatchPostings(Resolve(rows, acmeAccounts, nil)); len(postings) != 0 {
		t.Fatalf("same-type pair matched, want none, got %d", len(postings))
	}
}

func TestMatchPostings_OtherAccountTypesIgnored(t *testing.T) {
	rows := []model.LedgerRow{
		{AccCode: "4100", AccountType: "EXPENSES", Date: "2024-03-01", Amount: -500, CompanyCode: "101"},
		{AccCode: "4100", AccountType: "CASH", Date: "2024-03-01", Amount: 500, CompanyCode: "101"},
	}
	if postings := MatchPostings(Resolve(rows, acmeAccounts, nil)); len(postings) != 0 {
		t.Fatalf("expense pairing matched, want none, got %d", len(postings))
	}
}

func TestCompanyBalances_InvoiceFullyCollected(t *testing.T) {
	entries := Resolve(acmeEntries("2024-03-01", 500), acmeAccounts, nil)
	postings := MatchPostings(entries)
	notes := []model.DebitNoteRow{
		{CompanyName: "Acme Ltd", Amount: 500, PeriodFrom: "2024-01-01", PeriodTo: "2024-12-31"},
	}
	envelopes := map[string]model.Window{"Acme Ltd": window("2024-01-01", "2024-12-31")}

	balances := CompanyBalances(notes, postings, envelopes)
	if len(balances) != 1 {
		t.Fatalf("expected 1 balance row, got %d", len(balances))
	}
	b := balances[0]
	if b.DebitAmount != 500 || b.LedgerAmount != 500 {
		t.Errorf("debit = %v, ledger = %v, want 500 both", b.DebitAmount, b.LedgerAmount)
	}
	if b.Balance != 0 {
		t.Errorf("balance = %v, want 0", b.Balance)
	}
}

func TestCompanyBalances_NormalizedNameMatching(t *testing.T) {
	entries := Resolve(acmeEntries("2024-03-01", 500), acmeAccounts, nil)
	postings := MatchPostings(entries)
	notes := []model.DebitNoteRow{
		{CompanyName: "ACME LTD.", Amount: 300, PeriodFrom: "2024-01-01", PeriodTo: "2024-12-31"},
	}
	envelopes := map[string]model.Window{"Acme Ltd": window("2024-01-01", "2024-12-31")}

	balances := CompanyBalances(notes, postings, envelopes)
	if balances[0].DebitAmount != 300 {
		t.Errorf("debit = %v, want 300 (name should match case/punct-insensitively)", balances[0].DebitAmount)
	}
	if balances[0].Balance != 200 {
		t.Errorf("balance = %v, want 200", balances[0].Balance)
	}
}

func TestCompanyBalances_NoteOutsideWindowExcluded(t *testing.T) {
	notes := []model.DebitNoteRow{
		{CompanyName: "Acme Ltd", Amount: 500, PeriodFrom: "2023-01-01", PeriodTo: "2023-12-31"},
	}
	envelopes := map[string]model.Window{"Acme Ltd": window("2024-01-01", "2024-12-31")}

	balances := CompanyBalances(notes, nil, envelopes)
	if balances[0].DebitAmount != 0 {
		t.Errorf("debit = %v, want 0 for note outside the contract window", balances[0].DebitAmount)
	}
}

func TestCompanyBalances_LedgerOutsideWindowExcluded(t *testing.T) {
	entries := Resolve(acmeEntries("2023-03-01", 500), acmeAccounts, nil)
	postings := MatchPostings(entries)
	envelopes := map[string]model.Window{"Acme Ltd": window("2024-01-01", "2024-12-31")}

	balances := CompanyBalances(nil, postings, envelopes)
	if balances[0].LedgerAmount != 0 {
		t.Errorf("ledger = %v, want 0 for posting outside the contract window", balances[0].LedgerAmount)
	}
}

func TestResolve_AccountDescriptionAndTrailingDecimal(t *testing.T) {
	rows := []model.LedgerRow{
		{AccCode: "4100.0", AccountType: "cash", Date: "2024-03-01", Amount: 500, CompanyCode: "101"},
	}
	setup := []model.AccountSetupRow{{AccCode: "4100", Description: "Premium receivable"}}

	entries := Resolve(rows, acmeAccounts, setup)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].AccCode != "4100" {
		t.Errorf("acc code = %q, want 4100 (trailing .0 stripped)", entries[0].AccCode)
	}
	if entries[0].AccountDesc != "Premium receivable" {
		t.Errorf("desc = %q, want Premium receivable", entries[0].AccountDesc)
	}
	if entries[0].AccountType != "CASH" {
		t.Errorf("type = %q, want CASH", entries[0].AccountType)
	}
}

func TestDebitTriage(t *testing.T) {
	notes := []model.DebitNoteRow{
		{CompanyName: "Acme Ltd", Amount: 500, PeriodFrom: "2024-01-01", PeriodTo: "2024-06-30"},
		{CompanyName: "Nobody Plc", Amount: 100, PeriodFrom: "2024-01-01", PeriodTo: "2024-06-30"},
	}
	envelopes := map[string]model.Window{
		"Acme Ltd":    window("2024-01-01", "2024-12-31"),
		"Beta Energy": window("2024-01-01", "2024-12-31"),
	}

	tr := DebitTriage(notes, envelopes)
	if len(tr.Valid) != 1 || tr.Valid[0].CompanyName != "Acme Ltd" {
		t.Errorf("valid = %+v, want single Acme note", tr.Valid)
	}
	if len(tr.Invalid) != 1 || tr.Invalid[0].CompanyName != "Nobody Plc" {
		t.Errorf("invalid = %+v, want single Nobody note", tr.Invalid)
	}
	if len(tr.Uninvoiced) != 1 || tr.Uninvoiced[0] != "Beta Energy" {
		t.Errorf("uninvoiced = %v, want [Beta Energy]", tr.Uninvoiced)
	}
}
