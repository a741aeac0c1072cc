package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-ops/internal/models"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *float64
	}{
		{name: "plain with dollar and commas", raw: "$10,000", want: f64Ptr(10000)},
		{name: "lowercase k suffix", raw: "10k", want: f64Ptr(10000)},
		{name: "uppercase K with dollar", raw: "$10K", want: f64Ptr(10000)},
		{name: "decimal with M suffix", raw: "$1.2M", want: f64Ptr(1200000)},
		{name: "bare number", raw: "10000", want: f64Ptr(10000)},
		{name: "decimal without suffix", raw: "7500.50", want: f64Ptr(7500.50)},
		{name: "empty", raw: "", want: nil},
		{name: "not applicable text", raw: "N/A", want: nil},
		{name: "pure noise", raw: "$,,", want: nil},
		{name: "suffix only no digits", raw: "k", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMoney(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.001)
		})
	}
}

func TestParseDurationMonths(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *int
	}{
		{name: "months spelled out", raw: "6 months", want: intPtr(6)},
		{name: "single year", raw: "1 Year", want: intPtr(12)},
		{name: "mo abbreviation", raw: "12 mo", want: intPtr(12)},
		{name: "yr abbreviation", raw: "2 yrs", want: intPtr(24)},
		{name: "bare number defaults to months", raw: "9", want: intPtr(9)},
		{name: "range takes first number", raw: "1-2 years", want: intPtr(12)},
		{name: "empty", raw: "", want: nil},
		{name: "no digits", raw: "established", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDurationMonths(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestStateRestriction(t *testing.T) {
	t.Run("empty text means no restriction", func(t *testing.T) {
		assert.Nil(t, NewStateRestriction(""))
		assert.Nil(t, NewStateRestriction("   "))
	})

	t.Run("comma separated codes", func(t *testing.T) {
		r := NewStateRestriction("CA, NY, TX")
		require.NotNil(t, r)
		assert.True(t, r.Restricted("NY"))
		assert.True(t, r.Restricted("ny")) // case-insensitive on input
		assert.True(t, r.Restricted("TX"))
		assert.False(t, r.Restricted("FL"))
	})

	t.Run("space separated codes", func(t *testing.T) {
		r := NewStateRestriction("CA NY TX")
		require.NotNil(t, r)
		assert.True(t, r.Restricted("CA"))
		assert.False(t, r.Restricted("WA"))
	})

	t.Run("word boundary rejects partial overlap", func(t *testing.T) {
		// "IN" must not match inside "FINANCING".
		r := NewStateRestriction("Financing Restricted")
		require.NotNil(t, r)
		assert.False(t, r.Restricted("IN"))
	})

	t.Run("nil receiver restricts nothing", func(t *testing.T) {
		var r *StateRestriction
		assert.False(t, r.Restricted("CA"))
	})

	t.Run("blank code never restricted", func(t *testing.T) {
		r := NewStateRestriction("CA, NY")
		assert.False(t, r.Restricted(""))
	})
}

func TestNormalize_AliasColumns(t *testing.T) {
	t.Run("mca style columns", func(t *testing.T) {
		row := models.LenderRow{
			LenderName:               "Rapid Capital",
			MinimumMonthlyRevenue:    strPtr("$10,000"),
			MinimumTimeInBusiness:    strPtr("6 months"),
			MinimumCreditRequirement: intPtr(650),
			StatesRestrictions:       strPtr("NY, TX"),
		}
		c := Normalize(row)
		require.NotNil(t, c.MinMonthlyRevenue)
		assert.InDelta(t, 10000, *c.MinMonthlyRevenue, 0.001)
		require.NotNil(t, c.MinTimeInBusinessMonths)
		assert.Equal(t, 6, *c.MinTimeInBusinessMonths)
		require.NotNil(t, c.MinCreditScore)
		assert.Equal(t, 650, *c.MinCreditScore)
		require.NotNil(t, c.RestrictedStates)
		assert.True(t, c.RestrictedStates.Restricted("TX"))
	})

	t.Run("loc style aliases are equivalent", func(t *testing.T) {
		row := models.LenderRow{
			LenderName:              "Credit Line Co",
			MinMonthlyRevenueAmount: strPtr("25k"),
			MinTimeInBusiness:       strPtr("1 year"),
			CreditRequirement:       intPtr(680),
			IneligibleStates:        strPtr("CA"),
		}
		c := Normalize(row)
		require.NotNil(t, c.MinMonthlyRevenue)
		assert.InDelta(t, 25000, *c.MinMonthlyRevenue, 0.001)
		require.NotNil(t, c.MinTimeInBusinessMonths)
		assert.Equal(t, 12, *c.MinTimeInBusinessMonths)
		require.NotNil(t, c.MinCreditScore)
		assert.Equal(t, 680, *c.MinCreditScore)
		assert.True(t, c.RestrictedStates.Restricted("ca"))
	})

	t.Run("blank row normalizes to no requirements", func(t *testing.T) {
		c := Normalize(models.LenderRow{LenderName: "No Criteria Lender"})
		assert.Nil(t, c.MinMonthlyRevenue)
		assert.Nil(t, c.MinTimeInBusinessMonths)
		assert.Nil(t, c.MinCreditScore)
		assert.Nil(t, c.RestrictedStates)
	})

	t.Run("garbage free text degrades to nil", func(t *testing.T) {
		row := models.LenderRow{
			LenderName:            "Messy Sheet Lender",
			MinimumMonthlyRevenue: strPtr("call for details"),
			MinimumTimeInBusiness: strPtr("varies"),
		}
		c := Normalize(row)
		assert.Nil(t, c.MinMonthlyRevenue)
		assert.Nil(t, c.MinTimeInBusinessMonths)
	})
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func f64Ptr(f float64) *float64 {
	return &f
}
