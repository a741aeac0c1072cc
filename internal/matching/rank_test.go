package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-ops/internal/models"
)

func namedMatch(name string, qualifies bool) LenderMatch {
	return LenderMatch{
		Lender:  models.LenderRow{LenderName: name},
		Verdict: MatchVerdict{Qualifies: qualifies},
	}
}

func names(matches []LenderMatch) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Lender.LenderName
	}
	return out
}

func TestRank_QualifyingFirstThenAlphabetical(t *testing.T) {
	matches := []LenderMatch{
		namedMatch("Zeta", true),
		namedMatch("Alpha", false),
		namedMatch("Beta", true),
	}

	Rank(matches)

	assert.Equal(t, []string{"Beta", "Zeta", "Alpha"}, names(matches))
}

func TestRank_AlphabeticalWithinGroups(t *testing.T) {
	matches := []LenderMatch{
		namedMatch("Delta", false),
		namedMatch("Charlie", false),
		namedMatch("Bravo", true),
		namedMatch("Alpha", true),
	}

	Rank(matches)

	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie", "Delta"}, names(matches))
}

func TestRank_FailingLenderSortsAfterQualifiersRegardlessOfName(t *testing.T) {
	matches := []LenderMatch{
		namedMatch("Aardvark Funding", false),
		namedMatch("Zenith Capital", true),
	}

	Rank(matches)

	assert.Equal(t, []string{"Zenith Capital", "Aardvark Funding"}, names(matches))
}

func TestMatch_FullPipeline(t *testing.T) {
	rows := []models.LenderRow{
		{
			LenderName:               "Zeta Advance",
			MinimumMonthlyRevenue:    strPtr("$10,000"),
			MinimumTimeInBusiness:    strPtr("6 months"),
			StatesRestrictions:       strPtr("NY, TX"),
			MinimumCreditRequirement: intPtr(650),
		},
		{
			LenderName:            "Alpha Capital",
			MinimumMonthlyRevenue: strPtr("$50,000"),
		},
		{
			LenderName: "Beta Funding",
		},
	}

	profile := ApplicantProfile{
		MonthlyRevenue:       f64Ptr(15000),
		TimeInBusinessMonths: intPtr(8),
		State:                "CA",
	}

	matches := Match(profile, rows)
	require.Len(t, matches, 3)

	// Beta (all N/A) and Zeta (all pass, credit N/A) qualify; Alpha fails
	// revenue and sorts last despite its name.
	assert.Equal(t, []string{"Beta Funding", "Zeta Advance", "Alpha Capital"}, names(matches))

	assert.True(t, matches[0].Verdict.Qualifies)
	assert.True(t, matches[1].Verdict.Qualifies)
	assert.False(t, matches[2].Verdict.Qualifies)
	assert.Equal(t, Fail, matches[2].Verdict.Revenue)
	assert.Equal(t, 2, QualifyingCount(matches))
}

func TestMatch_EmptyCatalog(t *testing.T) {
	matches := Match(ApplicantProfile{}, nil)
	assert.Empty(t, matches)
}

func TestMatch_DoesNotMutateInput(t *testing.T) {
	rows := []models.LenderRow{
		{LenderName: "Zed"},
		{LenderName: "Abe"},
	}

	Match(ApplicantProfile{}, rows)

	assert.Equal(t, "Zed", rows[0].LenderName)
	assert.Equal(t, "Abe", rows[1].LenderName)
}
