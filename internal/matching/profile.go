// internal/matching/profile.go
package matching

import (
	"math"
	"sort"
	"strings"

	"lending-ops/internal/models"
)

// MonthlyRevenueFromStatements derives average monthly revenue as the mean
// of the most recent three monthly credit totals. Statements without a
// known credit total are skipped; nil when none remain.
func MonthlyRevenueFromStatements(statements []models.DealBankStatement) *float64 {
	withCredits := make([]models.DealBankStatement, 0, len(statements))
	for _, s := range statements {
		if s.Credits != nil {
			withCredits = append(withCredits, s)
		}
	}
	if len(withCredits) == 0 {
		return nil
	}

	sort.Slice(withCredits, func(i, j int) bool {
		return withCredits[i].StatementMonth > withCredits[j].StatementMonth
	})
	if len(withCredits) > 3 {
		withCredits = withCredits[:3]
	}

	total := 0.0
	for _, s := range withCredits {
		total += *s.Credits
	}
	avg := math.Round(total / float64(len(withCredits)))
	return &avg
}

// ProfileFromDeal builds the applicant profile the engine matches on from
// a deal record and its parsed bank statements.
func ProfileFromDeal(deal models.Deal, statements []models.DealBankStatement) ApplicantProfile {
	return ApplicantProfile{
		MonthlyRevenue:       MonthlyRevenueFromStatements(statements),
		TimeInBusinessMonths: deal.TimeInBusinessMonths,
		State:                strings.ToUpper(strings.TrimSpace(deal.State)),
		CreditScore:          deal.CreditScore,
	}
}
