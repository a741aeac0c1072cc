// internal/matching/normalize.go
package matching

import (
	"regexp"
	"strconv"
	"strings"

	"lending-ops/internal/models"
)

// NormalizedCriteria is the typed form of one lender row's free-text
// eligibility columns. A nil field means the lender states no requirement
// for that criterion (or the text was unparseable, which is treated the
// same way since the upstream data is uncontrolled spreadsheet input).
type NormalizedCriteria struct {
	MinMonthlyRevenue       *float64
	MinTimeInBusinessMonths *int
	MinCreditScore          *int
	RestrictedStates        *StateRestriction
}

var (
	moneyStripRe    = regexp.MustCompile(`[^0-9.kKmM]`)
	magnitudeStrip  = regexp.MustCompile(`[kKmM]`)
	thousandsRe     = regexp.MustCompile(`(?i)k`)
	millionsRe      = regexp.MustCompile(`(?i)m`)
	firstDigitRunRe = regexp.MustCompile(`\d+`)
)

// ParseMoney converts spreadsheet money text like "$10,000", "10k" or
// "$1.2M" to a dollar amount. Magnitude suffixes are detected against the
// original string, not the stripped digits, so "$1.2M" scales even though
// the stripping keeps the M. Returns nil when no numeric core survives.
func ParseMoney(raw string) *float64 {
	if raw == "" {
		return nil
	}
	cleaned := moneyStripRe.ReplaceAllString(raw, "")
	if cleaned == "" {
		return nil
	}

	num, err := strconv.ParseFloat(magnitudeStrip.ReplaceAllString(cleaned, ""), 64)
	if err != nil {
		return nil
	}

	if thousandsRe.MatchString(raw) {
		num *= 1_000
	}
	if millionsRe.MatchString(raw) {
		num *= 1_000_000
	}
	return &num
}

// ParseDurationMonths converts text like "6 months", "1 Year" or "12 mo"
// to a month count. Only the first run of digits is read, so a range like
// "1-2 years" collapses to its lower bound. Returns nil when no digits
// are present.
func ParseDurationMonths(raw string) *int {
	if raw == "" {
		return nil
	}
	lower := strings.ToLower(raw)

	digits := firstDigitRunRe.FindString(lower)
	if digits == "" {
		return nil
	}
	num, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}

	if strings.Contains(lower, "year") || strings.Contains(lower, "yr") {
		num *= 12
	}
	return &num
}

// StateRestriction holds a lender's restricted-states text and answers
// membership queries for two-letter state codes.
type StateRestriction struct {
	raw string
}

// NewStateRestriction returns nil for empty input, meaning no restriction.
func NewStateRestriction(raw string) *StateRestriction {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return &StateRestriction{raw: strings.ToUpper(raw)}
}

// Restricted reports whether the two-letter code appears in the restriction
// text on a word boundary. Boundary matching keeps "IN" from matching
// inside "FINANCING", though a code that collides with an ordinary English
// word can still false-positive. Mirrors how brokers list states: "CA, NY,
// TX", "CA NY TX", or full names mixed with codes.
func (r *StateRestriction) Restricted(code string) bool {
	if r == nil {
		return false
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return false
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(code) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(r.raw)
}

// Raw returns the original (upper-cased) restriction text, for display.
func (r *StateRestriction) Raw() string {
	if r == nil {
		return ""
	}
	return r.raw
}

// Normalize coalesces the two alias column groups of a lender row and
// parses the free-text fields into comparable values.
func Normalize(row models.LenderRow) NormalizedCriteria {
	return NormalizedCriteria{
		MinMonthlyRevenue:       ParseMoney(coalesce(row.MinimumMonthlyRevenue, row.MinMonthlyRevenueAmount)),
		MinTimeInBusinessMonths: ParseDurationMonths(coalesce(row.MinimumTimeInBusiness, row.MinTimeInBusiness)),
		MinCreditScore:          coalesceInt(row.MinimumCreditRequirement, row.CreditRequirement),
		RestrictedStates:        NewStateRestriction(coalesce(row.StatesRestrictions, row.IneligibleStates)),
	}
}

func coalesce(vals ...*string) string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}

func coalesceInt(vals ...*int) *int {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
