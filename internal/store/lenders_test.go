package store

import (
	"context"
	"testing"
	"time"

	"lending-ops/internal/common/logger"
	"lending-ops/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableForLoanType(t *testing.T) {
	tests := []struct {
		loanType models.LoanType
		table    string
	}{
		{models.LoanTypeMCA, "lenders_mca"},
		{models.LoanTypeBusinessLOC, "lenders_business_line_of_credit"},
		{models.LoanTypeTermLoan, "lenders_term_loans"},
		{models.LoanTypeSBA, "lenders_sba"},
		{models.LoanTypeDSCR, "lenders_dscr"},
		{models.LoanTypeEquipment, "lenders_equipment_financing"},
		{models.LoanTypeFixFlip, "lenders_fix_flip"},
		{models.LoanTypeCRE, "lenders_commercial_real_estate"},
	}

	for _, tt := range tests {
		t.Run(string(tt.loanType), func(t *testing.T) {
			table, ok := TableForLoanType(tt.loanType)
			require.True(t, ok)
			assert.Equal(t, tt.table, table)
		})
	}

	_, ok := TableForLoanType("Payroll")
	assert.False(t, ok)
}

func TestLenderStoreListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	columns := []string{
		"id", "lender_name", "status",
		"minimum_credit_requirement", "minimum_monthly_revenue", "minimum_time_in_business", "states_restrictions",
		"rates_range", "terms_range", "submission_requirements", "contact_email",
		"created_at", "updated_at",
	}
	mock.ExpectQuery(`SELECT id, lender_name, status, minimum_credit_requirement, minimum_monthly_revenue, minimum_time_in_business, states_restrictions, rates_range, terms_range, submission_requirements, contact_email, created_at, updated_at FROM lenders_mca WHERE status = \$1 ORDER BY lender_name ASC`).
		WithArgs(models.LenderStatusActive).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("l-1", "Apex Capital", "active", 600, "$10,000", "6 months", "CA, NY", "1.2-1.4", "3-18 months", nil, "deals@apex.example", now, now).
			AddRow("l-2", "Bluestone Funding", "active", nil, nil, nil, nil, nil, nil, nil, nil, now, now))

	s := NewLenderStore(db, logger.NewNoOpLogger())
	rows, err := s.ListActive(context.Background(), models.LoanTypeMCA)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Apex Capital", rows[0].LenderName)
	assert.Equal(t, models.LoanTypeMCA, rows[0].LoanType)
	require.NotNil(t, rows[0].MinimumCreditRequirement)
	assert.Equal(t, 600, *rows[0].MinimumCreditRequirement)
	require.NotNil(t, rows[0].MinimumMonthlyRevenue)
	assert.Equal(t, "$10,000", *rows[0].MinimumMonthlyRevenue)
	assert.Nil(t, rows[0].CreditRequirement, "MCA dialect must not populate the LOC aliases")

	assert.Nil(t, rows[1].MinimumCreditRequirement)
	assert.Nil(t, rows[1].MinimumMonthlyRevenue)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLenderStoreListActiveAliasedDialect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	columns := []string{
		"id", "lender_name", "status",
		"credit_requirement", "min_monthly_revenue_amount", "min_time_in_business", "ineligible_states",
		"rates_range", "terms_range", "submission_requirements", "contact_email",
		"created_at", "updated_at",
	}
	mock.ExpectQuery(`SELECT id, lender_name, status, credit_requirement, min_monthly_revenue_amount, min_time_in_business, ineligible_states, rates_range, terms_range, submission_requirements, contact_email, created_at, updated_at FROM lenders_business_line_of_credit WHERE status = \$1 ORDER BY lender_name ASC`).
		WithArgs(models.LenderStatusActive).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("l-9", "Crest Line", "active", 650, "25k", "2 years", "ND, SD", nil, nil, nil, nil, now, now))

	s := NewLenderStore(db, logger.NewNoOpLogger())
	rows, err := s.ListActive(context.Background(), models.LoanTypeBusinessLOC)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NotNil(t, rows[0].CreditRequirement)
	assert.Equal(t, 650, *rows[0].CreditRequirement)
	require.NotNil(t, rows[0].MinMonthlyRevenueAmount)
	assert.Equal(t, "25k", *rows[0].MinMonthlyRevenueAmount)
	require.NotNil(t, rows[0].IneligibleStates)
	assert.Equal(t, "ND, SD", *rows[0].IneligibleStates)
	assert.Nil(t, rows[0].MinimumCreditRequirement)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLenderStoreListUnknownLoanType(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewLenderStore(db, logger.NewNoOpLogger())
	_, err = s.ListActive(context.Background(), "Payroll")
	assert.Error(t, err)
}

func TestLenderStoreCreateWritesDialectColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	credit := 600
	revenue := "$15,000"
	mock.ExpectExec(`INSERT INTO lenders_mca \(id, lender_name, status, minimum_credit_requirement, minimum_monthly_revenue, minimum_time_in_business, states_restrictions, rates_range, terms_range, submission_requirements, contact_email, created_at, updated_at\)`).
		WithArgs(sqlmock.AnyArg(), "Apex Capital", models.LenderStatusActive,
			&credit, &revenue, nil, nil,
			nil, nil, nil, nil,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewLenderStore(db, logger.NewNoOpLogger())
	created, err := s.Create(context.Background(), models.LenderRow{
		LenderName:               "Apex Capital",
		LoanType:                 models.LoanTypeMCA,
		MinimumCreditRequirement: &credit,
		MinimumMonthlyRevenue:    &revenue,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.LenderStatusActive, created.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLenderStoreDeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM lenders_sba WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewLenderStore(db, logger.NewNoOpLogger())
	err = s.Delete(context.Background(), models.LoanTypeSBA, "missing")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
