// internal/matching/evaluate.go
package matching

import "strings"

// TriState is a per-criterion verdict. NotApplicable means the lender has
// no stated requirement, or the applicant value needed to test it is
// unknown; it never blocks qualification.
type TriState string

const (
	Pass          TriState = "pass"
	Fail          TriState = "fail"
	NotApplicable TriState = "not_applicable"
)

// ApplicantProfile is the financial snapshot a catalog is matched against.
// Nil/empty fields mean the value is unknown. CreditScore is the one field
// a broker may legitimately leave out.
type ApplicantProfile struct {
	MonthlyRevenue       *float64 `json:"monthly_revenue,omitempty"`
	TimeInBusinessMonths *int     `json:"time_in_business_months,omitempty"`
	State                string   `json:"state,omitempty"`
	CreditScore          *int     `json:"credit_score,omitempty"`
}

// MatchVerdict is the four-criterion outcome for one lender.
type MatchVerdict struct {
	Revenue        TriState `json:"revenue"`
	TimeInBusiness TriState `json:"time_in_business"`
	State          TriState `json:"state"`
	CreditScore    TriState `json:"credit_score"`
	Qualifies      bool     `json:"qualifies"`
}

// Evaluate tests one applicant profile against one lender's normalized
// criteria. Pure computation: malformed or missing inputs degrade to
// NotApplicable per criterion, never an error.
func Evaluate(profile ApplicantProfile, criteria NormalizedCriteria) MatchVerdict {
	v := MatchVerdict{
		Revenue:        thresholdVerdict(profile.MonthlyRevenue, criteria.MinMonthlyRevenue),
		TimeInBusiness: intThresholdVerdict(profile.TimeInBusinessMonths, criteria.MinTimeInBusinessMonths),
		State:          stateVerdict(profile.State, criteria.RestrictedStates),
		CreditScore:    intThresholdVerdict(profile.CreditScore, criteria.MinCreditScore),
	}
	v.Qualifies = aggregate(v)
	return v
}

// aggregate is Fail-dominant: any explicit Fail disqualifies, any mix of
// Pass and NotApplicable qualifies.
func aggregate(v MatchVerdict) bool {
	for _, t := range []TriState{v.Revenue, v.TimeInBusiness, v.State, v.CreditScore} {
		if t == Fail {
			return false
		}
	}
	return true
}

func thresholdVerdict(have *float64, min *float64) TriState {
	if min == nil || have == nil {
		return NotApplicable
	}
	if *have >= *min {
		return Pass
	}
	return Fail
}

func intThresholdVerdict(have *int, min *int) TriState {
	if min == nil || have == nil {
		return NotApplicable
	}
	if *have >= *min {
		return Pass
	}
	return Fail
}

func stateVerdict(state string, restriction *StateRestriction) TriState {
	if restriction == nil || strings.TrimSpace(state) == "" {
		return NotApplicable
	}
	if restriction.Restricted(state) {
		return Fail
	}
	return Pass
}
