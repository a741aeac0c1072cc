// internal/matching/rank.go
package matching

import (
	"sort"
	"strings"

	"lending-ops/internal/models"
)

// LenderMatch pairs one catalog row with its verdict.
type LenderMatch struct {
	Lender  models.LenderRow `json:"lender"`
	Verdict MatchVerdict     `json:"verdict"`
}

// Rank orders matches in place: qualifying lenders first, then lender name
// ascending within each group. Lender names are unique per catalog in
// practice, so the order is total.
func Rank(matches []LenderMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Verdict.Qualifies != b.Verdict.Qualifies {
			return a.Verdict.Qualifies
		}
		return strings.Compare(a.Lender.LenderName, b.Lender.LenderName) < 0
	})
}

// Match runs the full pipeline over an immutable catalog snapshot:
// normalize each row, evaluate it against the profile, and rank the result.
// Pure and idempotent; the caller owns fetching (and any caching of) rows.
func Match(profile ApplicantProfile, rows []models.LenderRow) []LenderMatch {
	matches := make([]LenderMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, LenderMatch{
			Lender:  row,
			Verdict: Evaluate(profile, Normalize(row)),
		})
	}
	Rank(matches)
	return matches
}

// QualifyingCount reports how many matches qualify.
func QualifyingCount(matches []LenderMatch) int {
	n := 0
	for _, m := range matches {
		if m.Verdict.Qualifies {
			n++
		}
	}
	return n
}
