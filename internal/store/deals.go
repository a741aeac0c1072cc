// internal/store/deals.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lending-ops/internal/common/logger"
	"lending-ops/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DealStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewDealStore(db *sql.DB, log logger.Logger) *DealStore {
	return &DealStore{db: db, log: log}
}

const dealColumns = `id, created_at, updated_at, legal_business_name, dba_name, ein, business_type,
	address, city, state, zip, phone, business_start_date, time_in_business_months,
	average_monthly_sales, desired_loan_amount, reason_for_loan, credit_score,
	loan_type, status, submission_date, broker_email`

func scanDeal(scan func(dest ...interface{}) error) (models.Deal, error) {
	var (
		d          models.Deal
		dba        sql.NullString
		bizType    sql.NullString
		phone      sql.NullString
		startDate  sql.NullTime
		tibMonths  sql.NullInt64
		avgSales   sql.NullString
		desired    string
		reason     sql.NullString
		credit     sql.NullInt64
		submitted  sql.NullTime
		brokerMail sql.NullString
	)

	err := scan(&d.ID, &d.CreatedAt, &d.UpdatedAt, &d.LegalBusinessName, &dba, &d.EIN, &bizType,
		&d.Address, &d.City, &d.State, &d.Zip, &phone, &startDate, &tibMonths,
		&avgSales, &desired, &reason, &credit,
		&d.LoanType, &d.Status, &submitted, &brokerMail)
	if err != nil {
		return models.Deal{}, err
	}

	d.DBAName = nullStr(dba)
	d.BusinessType = nullStr(bizType)
	d.Phone = nullStr(phone)
	d.BusinessStartDate = nullTime(startDate)
	d.TimeInBusinessMonths = nullInt(tibMonths)
	d.ReasonForLoan = nullStr(reason)
	d.CreditScore = nullInt(credit)
	d.SubmissionDate = nullTime(submitted)
	d.BrokerEmail = nullStr(brokerMail)

	d.DesiredLoanAmount, err = decimal.NewFromString(desired)
	if err != nil {
		return models.Deal{}, fmt.Errorf("parse desired_loan_amount: %w", err)
	}
	if avgSales.Valid {
		amt, err := decimal.NewFromString(avgSales.String)
		if err != nil {
			return models.Deal{}, fmt.Errorf("parse average_monthly_sales: %w", err)
		}
		d.AverageMonthlySales = &amt
	}

	return d, nil
}

// Create inserts a new deal with status New.
func (s *DealStore) Create(ctx context.Context, deal models.Deal) (models.Deal, error) {
	if deal.ID == "" {
		deal.ID = uuid.New().String()
	}
	if deal.Status == "" {
		deal.Status = models.DealStatusNew
	}
	now := time.Now().UTC()
	deal.CreatedAt = now
	deal.UpdatedAt = now

	var avgSales interface{}
	if deal.AverageMonthlySales != nil {
		avgSales = deal.AverageMonthlySales.String()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO deals (`+dealColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`,
		deal.ID, deal.CreatedAt, deal.UpdatedAt, deal.LegalBusinessName, deal.DBAName, deal.EIN, deal.BusinessType,
		deal.Address, deal.City, deal.State, deal.Zip, deal.Phone, deal.BusinessStartDate, deal.TimeInBusinessMonths,
		avgSales, deal.DesiredLoanAmount.String(), deal.ReasonForLoan, deal.CreditScore,
		deal.LoanType, deal.Status, deal.SubmissionDate, deal.BrokerEmail,
	)
	if err != nil {
		return models.Deal{}, fmt.Errorf("insert deal: %w", err)
	}

	s.log.Info("deal created", map[string]interface{}{
		"dealId":   deal.ID,
		"business": deal.LegalBusinessName,
		"loanType": deal.LoanType,
	})
	return deal, nil
}

// Get fetches one deal by ID.
func (s *DealStore) Get(ctx context.Context, id string) (models.Deal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id)
	return scanDeal(row.Scan)
}

// List returns deals ordered newest first, optionally filtered by status.
func (s *DealStore) List(ctx context.Context, status models.DealStatus) ([]models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deals: %w", err)
	}
	defer rows.Close()

	var out []models.Deal
	for rows.Next() {
		d, err := scanDeal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a deal.
func (s *DealStore) Update(ctx context.Context, deal models.Deal) (models.Deal, error) {
	deal.UpdatedAt = time.Now().UTC()

	var avgSales interface{}
	if deal.AverageMonthlySales != nil {
		avgSales = deal.AverageMonthlySales.String()
	}

	res, err := s.db.ExecContext(ctx, `UPDATE deals SET updated_at = $2, legal_business_name = $3, dba_name = $4,
		ein = $5, business_type = $6, address = $7, city = $8, state = $9, zip = $10, phone = $11,
		business_start_date = $12, time_in_business_months = $13, average_monthly_sales = $14,
		desired_loan_amount = $15, reason_for_loan = $16, credit_score = $17, loan_type = $18,
		status = $19, submission_date = $20, broker_email = $21
		WHERE id = $1`,
		deal.ID, deal.UpdatedAt, deal.LegalBusinessName, deal.DBAName,
		deal.EIN, deal.BusinessType, deal.Address, deal.City, deal.State, deal.Zip, deal.Phone,
		deal.BusinessStartDate, deal.TimeInBusinessMonths, avgSales,
		deal.DesiredLoanAmount.String(), deal.ReasonForLoan, deal.CreditScore, deal.LoanType,
		deal.Status, deal.SubmissionDate, deal.BrokerEmail,
	)
	if err != nil {
		return models.Deal{}, fmt.Errorf("update deal: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.Deal{}, sql.ErrNoRows
	}
	return deal, nil
}

// UpdateStatus moves a deal to a new pipeline status. Moving to Submitted
// stamps the submission date.
func (s *DealStore) UpdateStatus(ctx context.Context, id string, status models.DealStatus) error {
	if !models.ValidDealStatus(status) {
		return fmt.Errorf("invalid deal status %q", status)
	}

	now := time.Now().UTC()
	var res sql.Result
	var err error
	if status == models.DealStatusSubmitted {
		res, err = s.db.ExecContext(ctx,
			`UPDATE deals SET status = $2, submission_date = $3, updated_at = $3 WHERE id = $1`,
			id, status, now)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE deals SET status = $2, updated_at = $3 WHERE id = $1`,
			id, status, now)
	}
	if err != nil {
		return fmt.Errorf("update deal status: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a deal and its attachments via ON DELETE CASCADE.
func (s *DealStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete deal: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AddStatement attaches a parsed monthly bank statement to a deal.
func (s *DealStore) AddStatement(ctx context.Context, st models.DealBankStatement) (models.DealBankStatement, error) {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	st.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `INSERT INTO deal_bank_statements
		(id, deal_id, bank_name, statement_month, credits, debits, nsfs, overdrafts, average_daily_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		st.ID, st.DealID, st.BankName, st.StatementMonth,
		st.Credits, st.Debits, st.NSFs, st.Overdrafts, st.AverageDailyBalance, st.CreatedAt,
	)
	if err != nil {
		return models.DealBankStatement{}, fmt.Errorf("insert bank statement: %w", err)
	}
	return st, nil
}

// ListStatements returns a deal's bank statements, most recent month first.
func (s *DealStore) ListStatements(ctx context.Context, dealID string) ([]models.DealBankStatement, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, deal_id, bank_name, statement_month,
		credits, debits, nsfs, overdrafts, average_daily_balance, created_at
		FROM deal_bank_statements WHERE deal_id = $1 ORDER BY statement_month DESC`, dealID)
	if err != nil {
		return nil, fmt.Errorf("query bank statements: %w", err)
	}
	defer rows.Close()

	var out []models.DealBankStatement
	for rows.Next() {
		var (
			st      models.DealBankStatement
			credits sql.NullFloat64
			debits  sql.NullFloat64
			adb     sql.NullFloat64
		)
		if err := rows.Scan(&st.ID, &st.DealID, &st.BankName, &st.StatementMonth,
			&credits, &debits, &st.NSFs, &st.Overdrafts, &adb, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bank statement: %w", err)
		}
		st.Credits = nullFloat(credits)
		st.Debits = nullFloat(debits)
		st.AverageDailyBalance = nullFloat(adb)
		out = append(out, st)
	}
	return out, rows.Err()
}

// AddFundingPosition records an existing advance detected on a statement.
func (s *DealStore) AddFundingPosition(ctx context.Context, fp models.DealFundingPosition) (models.DealFundingPosition, error) {
	if fp.ID == "" {
		fp.ID = uuid.New().String()
	}
	fp.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `INSERT INTO deal_funding_positions
		(id, deal_id, lender_name, amount, frequency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		fp.ID, fp.DealID, fp.LenderName, fp.Amount.String(), fp.Frequency, fp.CreatedAt,
	)
	if err != nil {
		return models.DealFundingPosition{}, fmt.Errorf("insert funding position: %w", err)
	}
	return fp, nil
}

// ListFundingPositions returns a deal's recorded funding positions.
func (s *DealStore) ListFundingPositions(ctx context.Context, dealID string) ([]models.DealFundingPosition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, deal_id, lender_name, amount, frequency, created_at
		FROM deal_funding_positions WHERE deal_id = $1 ORDER BY created_at ASC`, dealID)
	if err != nil {
		return nil, fmt.Errorf("query funding positions: %w", err)
	}
	defer rows.Close()

	var out []models.DealFundingPosition
	for rows.Next() {
		var (
			fp     models.DealFundingPosition
			amount string
		)
		if err := rows.Scan(&fp.ID, &fp.DealID, &fp.LenderName, &amount, &fp.Frequency, &fp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan funding position: %w", err)
		}
		fp.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse funding amount: %w", err)
		}
		out = append(out, fp)
	}
	return out, rows.Err()
}
