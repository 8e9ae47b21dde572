// mkextract generates a small synthetic extract directory for development
// and testing: every source table, internally coherent (claims reference
// real enrollees and groups, ledger pairs match debit notes), deterministic
// for a given seed.
// Usage: go run ./cmd/mkextract --out testdata/extract --groups 4 --seed 1
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	goparquet "github.com/parquet-go/parquet-go"

	"github.com/nholabs/claimsight/internal/model"
)

var states = []string{"Lagos", "Abuja", "Rivers", "Kano"}

var benefitCategories = []struct {
	id   int64
	name string
}{
	{1, "DIALYSIS"},
	{2, "MATERNITY"},
	{3, "OPTICAL"},
	{4, "DENTAL"},
	{5, "SURGERY"},
}

func main() {
	out := flag.String("out", "testdata/extract", "output directory")
	nGroups := flag.Int("groups", 4, "number of client groups")
	nMembers := flag.Int("members", 25, "enrollees per group")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	rng := rand.New(rand.NewSource(*seed))

	var (
		groups      []model.GroupRow
		contracts   []model.ContractRow
		plans       []model.PlanRow
		groupPlans  []model.GroupPlanRow
		coverage    []model.CoverageRow
		enrollees   []model.EnrolleeRow
		memberPlans []model.MemberPlanRow
		providers   []model.ProviderRow
		benefits    []model.BenefitProcedureRow
		limits      []model.PlanLimitRow
		paRows      []model.PARow
		claimRows   []model.ClaimRow
		ledgerRows  []model.LedgerRow
		setupRows   []model.AccountSetupRow
		companyRows []model.CompanyAccountRow
		debitNotes  []model.DebitNoteRow
	)

	for p := int64(1); p <= 3; p++ {
		plans = append(plans, model.PlanRow{PlanID: p, PlanName: fmt.Sprintf("Plan %c", 'A'+p-1)})
		for _, bc := range benefitCategories {
			limits = append(limits, model.PlanLimitRow{
				PlanID:            p,
				BenefitCategoryID: bc.id,
				MaxLimit:          float64(50_000 * p * (bc.id + 1)),
			})
		}
	}

	// One procedure catalog shared by PA and Claims; three codes per
	// benefit category.
	var codes []string
	for _, bc := range benefitCategories {
		for i := 1; i <= 3; i++ {
			code := fmt.Sprintf("C%d%02d", bc.id, i)
			codes = append(codes, code)
			benefits = append(benefits, model.BenefitProcedureRow{
				ProcedureCode:     code,
				BenefitName:       bc.name,
				BenefitCategoryID: bc.id,
			})
		}
	}

	for i := 0; i < 12; i++ {
		providers = append(providers, model.ProviderRow{
			ProviderID:   fmt.Sprintf("TIN-%04d", 1000+i),
			Name:         fmt.Sprintf("Hospital %02d", i+1),
			State:        states[i%len(states)],
			CategoryID:   fmt.Sprintf("%d", 1+i%3),
			CategoryName: fmt.Sprintf("Band %d", 1+i%3),
		})
	}

	memberID := int64(1)
	for g := 1; g <= *nGroups; g++ {
		gid := int64(g)
		name := fmt.Sprintf("Group %02d Ltd", g)
		groups = append(groups, model.GroupRow{GroupID: gid, GroupName: name})

		// Two back-to-back half-year contracts; the envelope spans the year.
		contracts = append(contracts,
			model.ContractRow{GroupID: gid, GroupName: name, StartDate: "2026-01-01", EndDate: "2026-06-30"},
			model.ContractRow{GroupID: gid, GroupName: name, StartDate: "2026-07-01", EndDate: "2026-12-31"},
		)

		planID := int64(1 + g%3)
		groupPlans = append(groupPlans, model.GroupPlanRow{
			GroupID:           gid,
			PlanID:            planID,
			CountOfFamily:     int64(5 + rng.Intn(10)),
			FamilyPrice:       120_000,
			CountOfIndividual: int64(*nMembers),
			IndividualPrice:   45_000,
		})
		coverage = append(coverage, model.CoverageRow{GroupID: gid, PlanID: planID})

		companyRows = append(companyRows, model.CompanyAccountRow{
			CompanyID:   fmt.Sprintf("%d", 100+g),
			CompanyName: name,
		})

		for m := 0; m < *nMembers; m++ {
			legacy := fmt.Sprintf("ENR/%02d/%04d", g, m+1)
			enrollees = append(enrollees, model.EnrolleeRow{
				MemberID:   memberID,
				LegacyCode: legacy,
				GroupID:    gid,
			})
			memberPlans = append(memberPlans, model.MemberPlanRow{
				MemberID:  memberID,
				PlanID:    planID,
				IsCurrent: "true",
			})
			memberID++

			// A few PA lines per member; roughly half get a matching claim
			// so the combined dedup path has real overlap.
			for n := 0; n < 1+rng.Intn(3); n++ {
				code := codes[rng.Intn(len(codes))]
				date := fmt.Sprintf("2026-%02d-%02d", 1+rng.Intn(12), 1+rng.Intn(28))
				granted := float64(5_000 + rng.Intn(40_000))
				provider := providers[rng.Intn(len(providers))]

				paRows = append(paRows, model.PARow{
					PANumber:    fmt.Sprintf("PA-%06d", len(paRows)+1),
					PatientID:   legacy,
					GroupName:   name,
					PlanID:      planID,
					ProviderID:  provider.ProviderID,
					RequestDate: date,
					Code:        code,
					Granted:     fmt.Sprintf("%.2f", granted),
				})

				if rng.Intn(2) == 0 {
					claimRows = append(claimRows, model.ClaimRow{
						LegacyNumber:   legacy,
						GroupID:        fmt.Sprintf("%d", gid),
						PANumber:       paRows[len(paRows)-1].PANumber,
						EncounterDate:  date,
						ProcedureCode:  code,
						ApprovedAmount: granted,
						DeniedAmount:   float64(rng.Intn(3_000)),
						ChargeAmount:   granted + float64(rng.Intn(5_000)),
					})
				}
			}
		}

		// Ledger: three matched receivable/cash pairs per group, and a debit
		// note invoicing their total for the contract period.
		var collected float64
		acc := fmt.Sprintf("41%02d", g)
		setupRows = append(setupRows, model.AccountSetupRow{
			AccCode:     acc,
			Description: fmt.Sprintf("Premium receivable - %s", name),
		})
		for n := 0; n < 3; n++ {
			amount := float64(200_000 + rng.Intn(300_000))
			date := fmt.Sprintf("2026-%02d-15", 2+n*3)
			collected += amount
			ledgerRows = append(ledgerRows,
				model.LedgerRow{AccCode: acc, AccountType: "CURRENT ASSETS", Description: "Premium due", Date: date, Amount: -amount, CompanyCode: fmt.Sprintf("%d", 100+g)},
				model.LedgerRow{AccCode: acc, AccountType: "CASH", Description: "Premium received", Date: date, Amount: amount, CompanyCode: fmt.Sprintf("%d", 100+g)},
			)
		}
		debitNotes = append(debitNotes, model.DebitNoteRow{
			CompanyName: name,
			Amount:      collected,
			PeriodFrom:  "2026-01-01",
			PeriodTo:    "2026-12-31",
		})
	}

	writeAll := func() error {
		if err := write(*out, "pa_procedures", paRows); err != nil {
			return err
		}
		if err := write(*out, "claims", claimRows); err != nil {
			return err
		}
		if err := write(*out, "providers", providers); err != nil {
			return err
		}
		if err := write(*out, "groups", groups); err != nil {
			return err
		}
		if err := write(*out, "plans", plans); err != nil {
			return err
		}
		if err := write(*out, "group_plans", groupPlans); err != nil {
			return err
		}
		if err := write(*out, "group_contracts", contracts); err != nil {
			return err
		}
		if err := write(*out, "group_coverage", coverage); err != nil {
			return err
		}
		if err := write(*out, "enrollees", enrollees); err != nil {
			return err
		}
		if err := write(*out, "member_plans", memberPlans); err != nil {
			return err
		}
		if err := write(*out, "benefit_procedures", benefits); err != nil {
			return err
		}
		if err := write(*out, "plan_benefit_limits", limits); err != nil {
			return err
		}
		if err := write(*out, "debit_notes", debitNotes); err != nil {
			return err
		}
		if err := write(*out, "ledger_entries", ledgerRows); err != nil {
			return err
		}
		if err := write(*out, "account_setup", setupRows); err != nil {
			return err
		}
		return write(*out, "company_accounts", companyRows)
	}
	if err := writeAll(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote extract dir %s: %d groups, %d enrollees, %d PA rows, %d claims\n",
		*out, len(groups), len(enrollees), len(paRows), len(claimRows))
}

func write[T any](dir, table string, rows []T) error {
	e, ok := model.ExtractByName(table)
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	f, err := os.Create(filepath.Join(dir, e.File))
	if err != nil {
		return fmt.Errorf("create %s: %w", e.File, err)
	}
	defer f.Close()

	w := goparquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("write %s: %w", e.File, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", e.File, err)
	}
	return nil
}
