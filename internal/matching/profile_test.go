package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-ops/internal/models"
)

func stmt(month string, credits *float64) models.DealBankStatement {
	return models.DealBankStatement{StatementMonth: month, Credits: credits}
}

func TestMonthlyRevenueFromStatements(t *testing.T) {
	t.Run("mean of most recent three", func(t *testing.T) {
		got := MonthlyRevenueFromStatements([]models.DealBankStatement{
			stmt("2025-04", f64Ptr(10000)),
			stmt("2025-07", f64Ptr(18000)),
			stmt("2025-06", f64Ptr(15000)),
			stmt("2025-05", f64Ptr(12000)),
		})
		require.NotNil(t, got)
		// Most recent three: 18000, 15000, 12000.
		assert.Equal(t, float64(15000), *got)
	})

	t.Run("fewer than three statements", func(t *testing.T) {
		got := MonthlyRevenueFromStatements([]models.DealBankStatement{
			stmt("2025-07", f64Ptr(9000)),
			stmt("2025-06", f64Ptr(11000)),
		})
		require.NotNil(t, got)
		assert.Equal(t, float64(10000), *got)
	})

	t.Run("statements without credits are skipped", func(t *testing.T) {
		got := MonthlyRevenueFromStatements([]models.DealBankStatement{
			stmt("2025-07", nil),
			stmt("2025-06", f64Ptr(8000)),
		})
		require.NotNil(t, got)
		assert.Equal(t, float64(8000), *got)
	})

	t.Run("no usable statements", func(t *testing.T) {
		assert.Nil(t, MonthlyRevenueFromStatements(nil))
		assert.Nil(t, MonthlyRevenueFromStatements([]models.DealBankStatement{
			stmt("2025-07", nil),
		}))
	})

	t.Run("result is rounded", func(t *testing.T) {
		got := MonthlyRevenueFromStatements([]models.DealBankStatement{
			stmt("2025-07", f64Ptr(100)),
			stmt("2025-06", f64Ptr(101)),
			stmt("2025-05", f64Ptr(101)),
		})
		require.NotNil(t, got)
		assert.Equal(t, float64(101), *got)
	})
}

func TestProfileFromDeal(t *testing.T) {
	deal := models.Deal{
		State:                " ca ",
		TimeInBusinessMonths: intPtr(14),
		CreditScore:          intPtr(700),
	}
	statements := []models.DealBankStatement{
		stmt("2025-07", f64Ptr(20000)),
	}

	p := ProfileFromDeal(deal, statements)

	assert.Equal(t, "CA", p.State)
	require.NotNil(t, p.TimeInBusinessMonths)
	assert.Equal(t, 14, *p.TimeInBusinessMonths)
	require.NotNil(t, p.CreditScore)
	assert.Equal(t, 700, *p.CreditScore)
	require.NotNil(t, p.MonthlyRevenue)
	assert.Equal(t, float64(20000), *p.MonthlyRevenue)
}

func TestProfileFromDeal_MissingEverything(t *testing.T) {
	p := ProfileFromDeal(models.Deal{}, nil)
	assert.Nil(t, p.MonthlyRevenue)
	assert.Nil(t, p.TimeInBusinessMonths)
	assert.Empty(t, p.State)
	assert.Nil(t, p.CreditScore)
}
