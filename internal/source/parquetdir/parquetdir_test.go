package parquetdir

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goparquet "github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/nholabs/claimsight/internal/dataset"
	"github.com/nholabs/claimsight/internal/model"
)

func writeParquet[T any](t *testing.T, dir, table string, rows []T) {
	t.Helper()
	e, ok := model.ExtractByName(table)
	if !ok {
		t.Fatalf("unknown table %q", table)
	}
	f, err := os.Create(filepath.Join(dir, e.File))
	if err != nil {
		t.Fatalf("create %s: %v", e.File, err)
	}
	defer f.Close()

	w := goparquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatalf("write %s: %v", e.File, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close %s: %v", e.File, err)
	}
}

// writeExtractDir writes every required extract with one coherent row.
func writeExtractDir(t *testing.T, dir string) {
	t.Helper()
	writeParquet(t, dir, "pa_procedures", []model.PARow{{
		PANumber: "PA-1", PatientID: "P1", GroupName: "Acme Ltd",
		PlanID: 10, RequestDate: "2024-03-10", Code: "C1", Granted: "60",
	}})
	writeParquet(t, dir, "claims", []model.ClaimRow{{
		LegacyNumber: "P1", GroupID: "1", EncounterDate: "2024-03-12",
		ProcedureCode: "C1", ApprovedAmount: 60,
	}})
	writeParquet(t, dir, "providers", []model.ProviderRow{{
		ProviderID: "T1", Name: "Hospital 1", State: "Lagos", CategoryID: "1", CategoryName: "Band 1",
	}})
	writeParquet(t, dir, "groups", []model.GroupRow{{GroupID: 1, GroupName: "Acme Ltd"}})
	writeParquet(t, dir, "group_contracts", []model.ContractRow{{
		GroupID: 1, GroupName: "Acme Ltd", StartDate: "2024-01-01", EndDate: "2024-12-31",
	}})
	writeParquet(t, dir, "group_coverage", []model.CoverageRow{{GroupID: 1, PlanID: 10}})
	writeParquet(t, dir, "enrollees", []model.EnrolleeRow{{MemberID: 1, LegacyCode: "P1", GroupID: 1}})
	writeParquet(t, dir, "member_plans", []model.MemberPlanRow{{MemberID: 1, PlanID: 10, IsCurrent: "true"}})
	writeParquet(t, dir, "benefit_procedures", []model.BenefitProcedureRow{{
		ProcedureCode: "C1", BenefitName: "DIALYSIS", BenefitCategoryID: 5,
	}})
	writeParquet(t, dir, "plan_benefit_limits", []model.PlanLimitRow{{
		PlanID: 10, BenefitCategoryID: 5, MaxLimit: 100,
	}})
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeExtractDir(t, dir)

	ds, err := New(dir, 2, zerolog.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := ds.Validate(); err != nil {
		t.Fatalf("loaded dataset invalid: %v", err)
	}
	if len(ds.PA) != 1 || ds.PA[0].PANumber != "PA-1" {
		t.Errorf("pa rows = %+v", ds.PA)
	}
	if len(ds.Claims) != 1 || ds.Claims[0].ApprovedAmount != 60 {
		t.Errorf("claim rows = %+v", ds.Claims)
	}
	if ds.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
	// Optional tables absent from the directory load as empty, not as errors.
	if len(ds.Ledger) != 0 {
		t.Errorf("ledger rows = %d, want 0", len(ds.Ledger))
	}
}

func TestLoad_OptionalTablePresent(t *testing.T) {
	dir := t.TempDir()
	writeExtractDir(t, dir)
	writeParquet(t, dir, "ledger_entries", []model.LedgerRow{{
		AccCode: "4100", AccountType: "CASH", Date: "2024-03-01", Amount: 500, CompanyCode: "101",
	}})

	ds, err := New(dir, 2, zerolog.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Ledger) != 1 || ds.Ledger[0].Amount != 500 {
		t.Errorf("ledger rows = %+v", ds.Ledger)
	}
}

func TestLoad_MissingRequiredFilesListedTogether(t *testing.T) {
	dir := t.TempDir()
	writeExtractDir(t, dir)
	os.Remove(filepath.Join(dir, "claims.parquet"))
	os.Remove(filepath.Join(dir, "enrollees.parquet"))

	_, err := New(dir, 2, zerolog.Nop()).Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing required files")
	}
	msg := err.Error()
	if !strings.Contains(msg, "claims.parquet") || !strings.Contains(msg, "enrollees.parquet") {
		t.Errorf("error should list every missing file, got: %v", err)
	}
}

func TestLoad_SchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	writeExtractDir(t, dir)
	// Overwrite the claims file with a completely different row shape.
	f, err := os.Create(filepath.Join(dir, "claims.parquet"))
	if err != nil {
		t.Fatal(err)
	}
	w := goparquet.NewGenericWriter[model.GroupRow](f)
	if _, err := w.Write([]model.GroupRow{{GroupID: 1, GroupName: "x"}}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, err = New(dir, 2, zerolog.Nop()).Load(context.Background())
	var serr *dataset.SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want SchemaError", err)
	}
	if serr.Table != "claims" {
		t.Errorf("table = %q, want claims", serr.Table)
	}
	if serr.Column == "" {
		t.Error("schema error should name the missing column")
	}
}
