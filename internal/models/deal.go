// internal/models/deal.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DealStatus string

const (
	DealStatusNew       DealStatus = "New"
	DealStatusAnalyzing DealStatus = "Analyzing"
	DealStatusMatched   DealStatus = "Matched"
	DealStatusSubmitted DealStatus = "Submitted"
	DealStatusPending   DealStatus = "Pending"
	DealStatusApproved  DealStatus = "Approved"
	DealStatusFunded    DealStatus = "Funded"
	DealStatusDeclined  DealStatus = "Declined"
)

// ValidDealStatus reports whether s is one of the pipeline statuses.
func ValidDealStatus(s DealStatus) bool {
	switch s {
	case DealStatusNew, DealStatusAnalyzing, DealStatusMatched, DealStatusSubmitted,
		DealStatusPending, DealStatusApproved, DealStatusFunded, DealStatusDeclined:
		return true
	}
	return false
}

// Deal is one loan application moving through the pipeline.
type Deal struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LegalBusinessName string  `json:"legal_business_name"`
	DBAName           *string `json:"dba_name,omitempty"`
	EIN               string  `json:"ein"`
	BusinessType      *string `json:"business_type,omitempty"`

	Address string  `json:"address"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	Zip     string  `json:"zip"`
	Phone   *string `json:"phone,omitempty"`

	BusinessStartDate    *time.Time `json:"business_start_date,omitempty"`
	TimeInBusinessMonths *int       `json:"time_in_business_months,omitempty"`

	AverageMonthlySales   *decimal.Decimal `json:"average_monthly_sales,omitempty"`
	DesiredLoanAmount     decimal.Decimal  `json:"desired_loan_amount"`
	ReasonForLoan         *string          `json:"reason_for_loan,omitempty"`
	CreditScore           *int             `json:"credit_score,omitempty"`

	LoanType LoanType   `json:"loan_type"`
	Status   DealStatus `json:"status"`

	SubmissionDate *time.Time `json:"submission_date,omitempty"`
	BrokerEmail    *string    `json:"broker_email,omitempty"`
}

// DealBankStatement is one parsed monthly bank statement attached to a deal.
// Credits is the monthly credit total the applicant-profile derivation feeds
// on; nil means the parser could not extract it.
type DealBankStatement struct {
	ID             string `json:"id"`
	DealID         string `json:"deal_id"`
	BankName       string `json:"bank_name"`
	StatementMonth string `json:"statement_month"` // YYYY-MM

	Credits             *float64 `json:"credits,omitempty"`
	Debits              *float64 `json:"debits,omitempty"`
	NSFs                int      `json:"nsfs"`
	Overdrafts          int      `json:"overdrafts"`
	AverageDailyBalance *float64 `json:"average_daily_balance,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type PaymentFrequency string

const (
	FrequencyDaily   PaymentFrequency = "daily"
	FrequencyWeekly  PaymentFrequency = "weekly"
	FrequencyMonthly PaymentFrequency = "monthly"
)

// DealFundingPosition is an existing advance detected on a bank statement.
type DealFundingPosition struct {
	ID         string           `json:"id"`
	DealID     string           `json:"deal_id"`
	LenderName string           `json:"lender_name"`
	Amount     decimal.Decimal  `json:"amount"`
	Frequency  PaymentFrequency `json:"frequency"`
	CreatedAt  time.Time        `json:"created_at"`
}
