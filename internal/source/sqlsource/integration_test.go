package sqlsource_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/nholabs/claimsight/internal/source/sqlsource"
)

const (
	testPort     = 15433
	testDB       = "claimsighttest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var (
	testDSN string
	pg      *embeddedpostgres.EmbeddedPostgres
)

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(0)
	}

	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg = embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(testPort).
		Database(testDB).
		Username(testUser).
		Password(testPassword).
		StartTimeout(60 * time.Second))
	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "SKIP: embedded postgres failed to start: %v\n", err)
		os.Exit(0)
	}

	code := m.Run()
	pg.Stop()
	os.Exit(code)
}

// schema creates the extract views as plain tables; the loader only SELECTs.
const schema = `
CREATE TABLE vw_pa_procedures (panumber text, iid text, groupname text, planid bigint, providerid text, requestdate date, code text, granted text);
CREATE TABLE vw_claims (nhislegacynumber text, nhisgroupid text, panumber text, encounterdatefrom date, procedurecode text, approvedamount float8, deniedamount float8, chargeamount float8);
CREATE TABLE vw_providers (providertin text, providername text, statename text, provcatid text, categoryname text);
CREATE TABLE vw_groups (groupid bigint, groupname text);
CREATE TABLE vw_plans (planid bigint, planname text);
CREATE TABLE vw_group_plans (groupid bigint, planid bigint, countoffamily bigint, familyprice float8, countofindividual bigint, individualprice float8);
CREATE TABLE vw_group_contracts (groupid bigint, groupname text, startdate date, enddate date);
CREATE TABLE vw_group_coverage (groupid bigint, planid bigint);
CREATE TABLE vw_enrollees (memberid bigint, legacycode text, groupid bigint);
CREATE TABLE vw_member_plans (memberid bigint, planid bigint, iscurrent text);
CREATE TABLE vw_benefit_procedures (procedurecode text, benefitcodedesc text, benefitcodeid bigint);
CREATE TABLE vw_plan_benefit_limits (planid bigint, benefitcodeid bigint, maxlimit float8);
CREATE TABLE vw_debit_notes (companyname text, amount float8, periodfrom date, periodto date);
CREATE TABLE vw_ledger_entries (acccode text, acctype text, gldesc text, gldate date, glamount float8, code text);
CREATE TABLE vw_account_setup (acccode text, accdesc text);
CREATE TABLE vw_company_accounts (id_company text, companyname text);
`

const seed = `
INSERT INTO vw_pa_procedures VALUES ('PA-1', 'P1', 'Acme Ltd', 10, 'T1', '2024-03-10', 'C1', '60');
INSERT INTO vw_claims VALUES ('P1', '1', 'PA-1', '2024-03-12', 'C1', 60, 0, 65);
INSERT INTO vw_providers VALUES ('T1', 'Hospital 1', 'Lagos', '1', 'Band 1');
INSERT INTO vw_groups VALUES (1, 'Acme Ltd');
INSERT INTO vw_group_contracts VALUES (1, 'Acme Ltd', '2024-01-01', '2024-12-31');
INSERT INTO vw_group_coverage VALUES (1, 10);
INSERT INTO vw_enrollees VALUES (1, 'P1', 1);
INSERT INTO vw_member_plans VALUES (1, 10, 'true');
INSERT INTO vw_benefit_procedures VALUES ('C1', 'DIALYSIS', 5);
INSERT INTO vw_plan_benefit_limits VALUES (10, 5, 100);
INSERT INTO vw_ledger_entries VALUES ('4100', 'CASH', 'Premium received', '2024-03-01', 500, '101');
INSERT INTO vw_company_accounts VALUES ('101', 'Acme Ltd');
`

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()
	pool, err := sqlsource.NewPool(ctx, testDSN)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		pool.Exec(context.Background(), `
			DROP TABLE vw_pa_procedures, vw_claims, vw_providers, vw_groups, vw_plans,
				vw_group_plans, vw_group_contracts, vw_group_coverage, vw_enrollees,
				vw_member_plans, vw_benefit_procedures, vw_plan_benefit_limits,
				vw_debit_notes, vw_ledger_entries, vw_account_setup, vw_company_accounts`)
	})
	if _, err := pool.Exec(ctx, seed); err != nil {
		t.Fatalf("seed data: %v", err)
	}
	return pool
}

func TestLoad_AllTables(t *testing.T) {
	pool := setupPool(t)
	loader := sqlsource.New(pool, 2, zerolog.Nop())

	ds, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(ds.PA) != 1 {
		t.Fatalf("pa rows = %d, want 1", len(ds.PA))
	}
	pa := ds.PA[0]
	if pa.PANumber != "PA-1" || pa.PatientID != "P1" || pa.Granted != "60" {
		t.Errorf("pa row = %+v", pa)
	}
	if pa.RequestDate != "2024-03-10" {
		t.Errorf("request date = %q, want 2024-03-10 (date cast to text)", pa.RequestDate)
	}

	if len(ds.Claims) != 1 || ds.Claims[0].ApprovedAmount != 60 {
		t.Errorf("claim rows = %+v", ds.Claims)
	}
	if len(ds.Ledger) != 1 || ds.Ledger[0].CompanyCode != "101" {
		t.Errorf("ledger rows = %+v", ds.Ledger)
	}
	// Unseeded optional tables come back empty, not as errors.
	if len(ds.DebitNotes) != 0 {
		t.Errorf("debit notes = %d, want 0", len(ds.DebitNotes))
	}

	if err := ds.Validate(); err != nil {
		t.Fatalf("loaded dataset invalid: %v", err)
	}
}
