// internal/models/lender.go
package models

import "time"

// LoanType identifies a loan product and therefore which lender table the
// catalog row comes from.
type LoanType string

const (
	LoanTypeMCA         LoanType = "MCA"
	LoanTypeBusinessLOC LoanType = "Business LOC"
	LoanTypeTermLoan    LoanType = "Term Loan"
	LoanTypeSBA         LoanType = "SBA"
	LoanTypeDSCR        LoanType = "DSCR"
	LoanTypeEquipment   LoanType = "Equipment"
	LoanTypeFixFlip     LoanType = "Fix & Flip"
	LoanTypeCRE         LoanType = "CRE"
)

// LenderStatus mirrors the status column shared by every lender table.
type LenderStatus string

const (
	LenderStatusActive   LenderStatus = "active"
	LenderStatusInactive LenderStatus = "inactive"
	LenderStatusArchived LenderStatus = "archived"
)

// LenderRow is one catalog row from a loan-product table. The eligibility
// columns are free text maintained by brokers in spreadsheets, so they stay
// raw strings here; normalization happens in the matching package.
//
// Column names differ between product tables (the MCA sheet and the LOC sheet
// were imported separately), so both alias groups are present and at most one
// of each pair is populated per row.
type LenderRow struct {
	ID         string       `json:"id"`
	LenderName string       `json:"lender_name"`
	LoanType   LoanType     `json:"loan_type"`
	Status     LenderStatus `json:"status"`

	// MCA-style eligibility columns.
	MinimumCreditRequirement *int    `json:"minimum_credit_requirement,omitempty"`
	MinimumMonthlyRevenue    *string `json:"minimum_monthly_revenue,omitempty"`
	MinimumTimeInBusiness    *string `json:"minimum_time_in_business,omitempty"`
	StatesRestrictions       *string `json:"states_restrictions,omitempty"`

	// LOC-style aliases for the same four criteria.
	CreditRequirement       *int    `json:"credit_requirement,omitempty"`
	MinMonthlyRevenueAmount *string `json:"min_monthly_revenue_amount,omitempty"`
	MinTimeInBusiness       *string `json:"min_time_in_business,omitempty"`
	IneligibleStates        *string `json:"ineligible_states,omitempty"`

	// Display-only terms shown on the match grid and used in submissions.
	RatesRange             *string `json:"rates_range,omitempty"`
	TermsRange             *string `json:"terms_range,omitempty"`
	SubmissionRequirements *string `json:"submission_requirements,omitempty"`
	ContactEmail           *string `json:"contact_email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
