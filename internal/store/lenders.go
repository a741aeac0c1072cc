// internal/store/lenders.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"lending-ops/internal/common/logger"
	"lending-ops/internal/models"

	"github.com/google/uuid"
)

// tableSpec describes one loan-product table. The catalog tables were
// imported from separate broker spreadsheets, so two column dialects exist
// for the same four eligibility criteria. aliased marks tables using the
// short LOC-style names (credit_requirement, min_monthly_revenue_amount,
// min_time_in_business, ineligible_states).
type tableSpec struct {
	name    string
	aliased bool
}

var lenderTables = map[models.LoanType]tableSpec{
	models.LoanTypeMCA:         {name: "lenders_mca"},
	models.LoanTypeBusinessLOC: {name: "lenders_business_line_of_credit", aliased: true},
	models.LoanTypeTermLoan:    {name: "lenders_term_loans"},
	models.LoanTypeSBA:         {name: "lenders_sba"},
	models.LoanTypeDSCR:        {name: "lenders_dscr", aliased: true},
	models.LoanTypeEquipment:   {name: "lenders_equipment_financing"},
	models.LoanTypeFixFlip:     {name: "lenders_fix_flip", aliased: true},
	models.LoanTypeCRE:         {name: "lenders_commercial_real_estate", aliased: true},
}

// TableForLoanType returns the catalog table backing a loan type.
func TableForLoanType(loanType models.LoanType) (string, bool) {
	spec, ok := lenderTables[loanType]
	return spec.name, ok
}

// LoanTypes lists every loan type with a catalog table, in display order.
func LoanTypes() []models.LoanType {
	return []models.LoanType{
		models.LoanTypeMCA,
		models.LoanTypeBusinessLOC,
		models.LoanTypeTermLoan,
		models.LoanTypeSBA,
		models.LoanTypeDSCR,
		models.LoanTypeEquipment,
		models.LoanTypeFixFlip,
		models.LoanTypeCRE,
	}
}

func (s tableSpec) creditCol() string {
	if s.aliased {
		return "credit_requirement"
	}
	return "minimum_credit_requirement"
}

func (s tableSpec) revenueCol() string {
	if s.aliased {
		return "min_monthly_revenue_amount"
	}
	return "minimum_monthly_revenue"
}

func (s tableSpec) timeInBusinessCol() string {
	if s.aliased {
		return "min_time_in_business"
	}
	return "minimum_time_in_business"
}

func (s tableSpec) statesCol() string {
	if s.aliased {
		return "ineligible_states"
	}
	return "states_restrictions"
}

func (s tableSpec) selectColumns() string {
	return fmt.Sprintf(
		"id, lender_name, status, %s, %s, %s, %s, rates_range, terms_range, submission_requirements, contact_email, created_at, updated_at",
		s.creditCol(), s.revenueCol(), s.timeInBusinessCol(), s.statesCol(),
	)
}

type LenderStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewLenderStore(db *sql.DB, log logger.Logger) *LenderStore {
	return &LenderStore{db: db, log: log}
}

func (s *LenderStore) scanRow(spec tableSpec, loanType models.LoanType, scan func(dest ...interface{}) error) (models.LenderRow, error) {
	var (
		row     models.LenderRow
		credit  sql.NullInt64
		revenue sql.NullString
		tib     sql.NullString
		states  sql.NullString
		rates   sql.NullString
		terms   sql.NullString
		subReqs sql.NullString
		email   sql.NullString
	)

	err := scan(&row.ID, &row.LenderName, &row.Status,
		&credit, &revenue, &tib, &states,
		&rates, &terms, &subReqs, &email,
		&row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		return models.LenderRow{}, err
	}

	row.LoanType = loanType
	if spec.aliased {
		row.CreditRequirement = nullInt(credit)
		row.MinMonthlyRevenueAmount = nullStr(revenue)
		row.MinTimeInBusiness = nullStr(tib)
		row.IneligibleStates = nullStr(states)
	} else {
		row.MinimumCreditRequirement = nullInt(credit)
		row.MinimumMonthlyRevenue = nullStr(revenue)
		row.MinimumTimeInBusiness = nullStr(tib)
		row.StatesRestrictions = nullStr(states)
	}
	row.RatesRange = nullStr(rates)
	row.TermsRange = nullStr(terms)
	row.SubmissionRequirements = nullStr(subReqs)
	row.ContactEmail = nullStr(email)

	return row, nil
}

// ListActive returns every active catalog row for one loan product, ordered
// by lender name so the default grid order is stable.
func (s *LenderStore) ListActive(ctx context.Context, loanType models.LoanType) ([]models.LenderRow, error) {
	return s.list(ctx, loanType, true)
}

// List returns every catalog row for one loan product regardless of status.
func (s *LenderStore) List(ctx context.Context, loanType models.LoanType) ([]models.LenderRow, error) {
	return s.list(ctx, loanType, false)
}

func (s *LenderStore) list(ctx context.Context, loanType models.LoanType, activeOnly bool) ([]models.LenderRow, error) {
	spec, ok := lenderTables[loanType]
	if !ok {
		return nil, fmt.Errorf("unknown loan type %q", loanType)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", spec.selectColumns(), spec.name)
	var args []interface{}
	if activeOnly {
		query += " WHERE status = $1"
		args = append(args, models.LenderStatusActive)
	}
	query += " ORDER BY lender_name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", spec.name, err)
	}
	defer rows.Close()

	var out []models.LenderRow
	for rows.Next() {
		row, err := s.scanRow(spec, loanType, rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", spec.name, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", spec.name, err)
	}

	return out, nil
}

// Get fetches a single catalog row by ID.
func (s *LenderStore) Get(ctx context.Context, loanType models.LoanType, id string) (models.LenderRow, error) {
	spec, ok := lenderTables[loanType]
	if !ok {
		return models.LenderRow{}, fmt.Errorf("unknown loan type %q", loanType)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", spec.selectColumns(), spec.name)
	row, err := s.scanRow(spec, loanType, s.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		return models.LenderRow{}, err
	}
	return row, nil
}

// Create inserts a catalog row into the table for its loan type. The
// eligibility values are written to whichever column dialect the table uses,
// reading from either alias group on the input.
func (s *LenderStore) Create(ctx context.Context, lender models.LenderRow) (models.LenderRow, error) {
	spec, ok := lenderTables[lender.LoanType]
	if !ok {
		return models.LenderRow{}, fmt.Errorf("unknown loan type %q", lender.LoanType)
	}

	if lender.ID == "" {
		lender.ID = uuid.New().String()
	}
	if lender.Status == "" {
		lender.Status = models.LenderStatusActive
	}
	now := time.Now().UTC()
	lender.CreatedAt = now
	lender.UpdatedAt = now

	query := fmt.Sprintf(
		`INSERT INTO %s (id, lender_name, status, %s, %s, %s, %s, rates_range, terms_range, submission_requirements, contact_email, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		spec.name, spec.creditCol(), spec.revenueCol(), spec.timeInBusinessCol(), spec.statesCol(),
	)

	_, err := s.db.ExecContext(ctx, query,
		lender.ID, lender.LenderName, lender.Status,
		coalescedCredit(lender), coalescedRevenue(lender), coalescedTimeInBusiness(lender), coalescedStates(lender),
		lender.RatesRange, lender.TermsRange, lender.SubmissionRequirements, lender.ContactEmail,
		lender.CreatedAt, lender.UpdatedAt,
	)
	if err != nil {
		return models.LenderRow{}, fmt.Errorf("insert %s: %w", spec.name, err)
	}

	s.log.Info("lender created", map[string]interface{}{
		"lenderId":   lender.ID,
		"lenderName": lender.LenderName,
		"loanType":   lender.LoanType,
	})
	return lender, nil
}

// Update rewrites an existing catalog row.
func (s *LenderStore) Update(ctx context.Context, lender models.LenderRow) (models.LenderRow, error) {
	spec, ok := lenderTables[lender.LoanType]
	if !ok {
		return models.LenderRow{}, fmt.Errorf("unknown loan type %q", lender.LoanType)
	}

	lender.UpdatedAt = time.Now().UTC()

	query := fmt.Sprintf(
		`UPDATE %s SET lender_name = $2, status = $3, %s = $4, %s = $5, %s = $6, %s = $7,
		 rates_range = $8, terms_range = $9, submission_requirements = $10, contact_email = $11, updated_at = $12
		 WHERE id = $1`,
		spec.name, spec.creditCol(), spec.revenueCol(), spec.timeInBusinessCol(), spec.statesCol(),
	)

	res, err := s.db.ExecContext(ctx, query,
		lender.ID, lender.LenderName, lender.Status,
		coalescedCredit(lender), coalescedRevenue(lender), coalescedTimeInBusiness(lender), coalescedStates(lender),
		lender.RatesRange, lender.TermsRange, lender.SubmissionRequirements, lender.ContactEmail,
		lender.UpdatedAt,
	)
	if err != nil {
		return models.LenderRow{}, fmt.Errorf("update %s: %w", spec.name, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.LenderRow{}, sql.ErrNoRows
	}

	return lender, nil
}

// Delete removes a catalog row.
func (s *LenderStore) Delete(ctx context.Context, loanType models.LoanType, id string) error {
	spec, ok := lenderTables[loanType]
	if !ok {
		return fmt.Errorf("unknown loan type %q", loanType)
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", spec.name), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", spec.name, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SearchByName does a case-insensitive substring search over one product
// table. The Elasticsearch index handles full search; this is the fallback
// used when search is disabled.
func (s *LenderStore) SearchByName(ctx context.Context, loanType models.LoanType, term string) ([]models.LenderRow, error) {
	spec, ok := lenderTables[loanType]
	if !ok {
		return nil, fmt.Errorf("unknown loan type %q", loanType)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE lender_name ILIKE $1 ORDER BY lender_name ASC",
		spec.selectColumns(), spec.name,
	)

	rows, err := s.db.QueryContext(ctx, query, "%"+strings.TrimSpace(term)+"%")
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", spec.name, err)
	}
	defer rows.Close()

	var out []models.LenderRow
	for rows.Next() {
		row, err := s.scanRow(spec, loanType, rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", spec.name, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// coalescedCredit picks whichever credit alias is populated.
func coalescedCredit(l models.LenderRow) *int {
	if l.MinimumCreditRequirement != nil {
		return l.MinimumCreditRequirement
	}
	return l.CreditRequirement
}

func coalescedRevenue(l models.LenderRow) *string {
	if l.MinimumMonthlyRevenue != nil {
		return l.MinimumMonthlyRevenue
	}
	return l.MinMonthlyRevenueAmount
}

func coalescedTimeInBusiness(l models.LenderRow) *string {
	if l.MinimumTimeInBusiness != nil {
		return l.MinimumTimeInBusiness
	}
	return l.MinTimeInBusiness
}

func coalescedStates(l models.LenderRow) *string {
	if l.StatesRestrictions != nil {
		return l.StatesRestrictions
	}
	return l.IneligibleStates
}
