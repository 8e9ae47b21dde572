package model

// Source-extract row types. Column names mirror the upstream systems
// (Medicloud for clinical/operational tables, EAccount for financial ones),
// so the same structs can be read from Parquet extract files and from SQL
// via pgx row scanning. Dates travel as strings because the upstream
// extracts are inconsistent about date encoding; normalize.ParseDate handles
// the known formats at the point of use.

// PARow is one pre-authorization procedure line.
type PARow struct {
	PANumber    string `parquet:"panumber" db:"panumber" json:"pa_number"`
	PatientID   string `parquet:"iid" db:"iid" json:"patient_id"`
	GroupName   string `parquet:"groupname" db:"groupname" json:"group_name"`
	PlanID      int64  `parquet:"planid" db:"planid" json:"plan_id"`
	ProviderID  string `parquet:"providerid" db:"providerid" json:"provider_id"`
	RequestDate string `parquet:"requestdate" db:"requestdate" json:"request_date"`
	Code        string `parquet:"code" db:"code" json:"code"`
	// Granted arrives as text: some extracts include thousands separators.
	Granted string `parquet:"granted" db:"granted" json:"granted"`
}

// ClaimRow is one adjudicated claim encounter line. Claims carry no plan id;
// the plan is resolved through the enrollee → current member-plan chain.
type ClaimRow struct {
	LegacyNumber   string  `parquet:"nhislegacynumber" db:"nhislegacynumber" json:"legacy_number"`
	GroupID        string  `parquet:"nhisgroupid" db:"nhisgroupid" json:"group_id"`
	PANumber       string  `parquet:"panumber" db:"panumber" json:"pa_number"`
	EncounterDate  string  `parquet:"encounterdatefrom" db:"encounterdatefrom" json:"encounter_date"`
	ProcedureCode  string  `parquet:"procedurecode" db:"procedurecode" json:"procedure_code"`
	ApprovedAmount float64 `parquet:"approvedamount" db:"approvedamount" json:"approved_amount"`
	DeniedAmount   float64 `parquet:"deniedamount" db:"deniedamount" json:"denied_amount"`
	ChargeAmount   float64 `parquet:"chargeamount" db:"chargeamount" json:"charge_amount"`
}

// ProviderRow is one contracted care provider.
type ProviderRow struct {
	ProviderID   string `parquet:"providertin" db:"providertin" json:"provider_id"`
	Name         string `parquet:"providername" db:"providername" json:"name"`
	State        string `parquet:"statename" db:"statename" json:"state"`
	CategoryID   string `parquet:"provcatid" db:"provcatid" json:"category_id"`
	CategoryName string `parquet:"categoryname" db:"categoryname" json:"category_name"`
}

// GroupRow maps a numeric group id to its client (company) name.
type GroupRow struct {
	GroupID   int64  `parquet:"groupid" db:"groupid" json:"group_id"`
	GroupName string `parquet:"groupname" db:"groupname" json:"group_name"`
}

// PlanRow names a benefit plan.
type PlanRow struct {
	PlanID   int64  `parquet:"planid" db:"planid" json:"plan_id"`
	PlanName string `parquet:"planname" db:"planname" json:"plan_name"`
}

// GroupPlanRow is a plan sold to a group, with headcounts and unit prices
// used for premium computation.
type GroupPlanRow struct {
	GroupID           int64   `parquet:"groupid" db:"groupid" json:"group_id"`
	PlanID            int64   `parquet:"planid" db:"planid" json:"plan_id"`
	CountOfFamily     int64   `parquet:"countoffamily" db:"countoffamily" json:"count_of_family"`
	FamilyPrice       float64 `parquet:"familyprice" db:"familyprice" json:"family_price"`
	CountOfIndividual int64   `parquet:"countofindividual" db:"countofindividual" json:"count_of_individual"`
	IndividualPrice   float64 `parquet:"individualprice" db:"individualprice" json:"individual_price"`
}

// ContractRow is one contract period for a group. Groups renew mid-year, so
// a group may hold several overlapping rows; reconciliation uses the
// min(start)..max(end) envelope.
type ContractRow struct {
	GroupID   int64  `parquet:"groupid" db:"groupid" json:"group_id"`
	GroupName string `parquet:"groupname" db:"groupname" json:"group_name"`
	StartDate string `parquet:"startdate" db:"startdate" json:"start_date"`
	EndDate   string `parquet:"enddate" db:"enddate" json:"end_date"`
}

// CoverageRow is one active policy under a group.
type CoverageRow struct {
	GroupID int64 `parquet:"groupid" db:"groupid" json:"group_id"`
	PlanID  int64 `parquet:"planid" db:"planid" json:"plan_id"`
}

// EnrolleeRow is one active member. LegacyCode is the patient identifier the
// PA and Claims systems key on (IID / nhislegacynumber).
type EnrolleeRow struct {
	MemberID   int64  `parquet:"memberid" db:"memberid" json:"member_id"`
	LegacyCode string `parquet:"legacycode" db:"legacycode" json:"legacy_code"`
	GroupID    int64  `parquet:"groupid" db:"groupid" json:"group_id"`
}

// MemberPlanRow links a member to a plan; only rows with IsCurrent == "true"
// count (the upstream system stores the flag as text).
type MemberPlanRow struct {
	MemberID  int64  `parquet:"memberid" db:"memberid" json:"member_id"`
	PlanID    int64  `parquet:"planid" db:"planid" json:"plan_id"`
	IsCurrent string `parquet:"iscurrent" db:"iscurrent" json:"is_current"`
}

// BenefitProcedureRow maps a raw procedure code to its benefit category.
type BenefitProcedureRow struct {
	ProcedureCode     string `parquet:"procedurecode" db:"procedurecode" json:"procedure_code"`
	BenefitName       string `parquet:"benefitcodedesc" db:"benefitcodedesc" json:"benefit_name"`
	BenefitCategoryID int64  `parquet:"benefitcodeid" db:"benefitcodeid" json:"benefit_category_id"`
}

// PlanLimitRow is the ceiling on cumulative granted amount for one
// plan + benefit category. A limit of zero means no limit is defined.
type PlanLimitRow struct {
	PlanID            int64   `parquet:"planid" db:"planid" json:"plan_id"`
	BenefitCategoryID int64   `parquet:"benefitcodeid" db:"benefitcodeid" json:"benefit_category_id"`
	MaxLimit          float64 `parquet:"maxlimit" db:"maxlimit" json:"max_limit"`
}

// LedgerRow is one general-ledger posting from the finance system.
type LedgerRow struct {
	AccCode     string  `parquet:"acccode" db:"acccode" json:"acc_code"`
	AccountType string  `parquet:"acctype" db:"acctype" json:"account_type"`
	Description string  `parquet:"gldesc" db:"gldesc" json:"description"`
	Date        string  `parquet:"gldate" db:"gldate" json:"date"`
	Amount      float64 `parquet:"glamount" db:"glamount" json:"amount"`
	CompanyCode string  `parquet:"code" db:"code" json:"company_code"`
}

// AccountSetupRow maps a GL account code to its description.
type AccountSetupRow struct {
	AccCode     string `parquet:"acccode" db:"acccode" json:"acc_code"`
	Description string `parquet:"accdesc" db:"accdesc" json:"description"`
}

// DebitNoteRow is one invoice issued to a client company for a billing period.
type DebitNoteRow struct {
	CompanyName string  `parquet:"companyname" db:"companyname" json:"company_name"`
	Amount      float64 `parquet:"amount" db:"amount" json:"amount"`
	PeriodFrom  string  `parquet:"periodfrom" db:"periodfrom" json:"period_from"`
	PeriodTo    string  `parquet:"periodto" db:"periodto" json:"period_to"`
}

// CompanyAccountRow maps a finance-system company code to the company name
// used by the clinical side.
type CompanyAccountRow struct {
	CompanyID   string `parquet:"id_company" db:"id_company" json:"company_id"`
	CompanyName string `parquet:"companyname" db:"companyname" json:"company_name"`
}
