package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"lending-ops/internal/common/config"
	"lending-ops/internal/common/database"
	"lending-ops/internal/common/logger"
	"lending-ops/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *database.RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })
	return mr, rc
}

func TestCatalogCacheMissThenHit(t *testing.T) {
	mr, rc := newTestRedis(t)

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
	// Postgres must be hit exactly once: the second call is served from Redis.
	mock.ExpectQuery(`SELECT .+ FROM lenders_mca WHERE status = \$1 ORDER BY lender_name ASC`).
		WithArgs(models.LenderStatusActive).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("l-1", "Apex Capital", "active", 600, "$10,000", "6 months", nil, nil, nil, nil, nil, now, now))

	lenders := NewLenderStore(db, logger.NewNoOpLogger())
	cache := NewCatalogCache(rc, lenders, 5*time.Minute, logger.NewNoOpLogger())

	ctx := context.Background()
	rows, err := cache.ActiveCatalog(ctx, models.LoanTypeMCA)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Apex Capital", rows[0].LenderName)

	require.True(t, mr.Exists("lender_catalog:MCA"))

	again, err := cache.ActiveCatalog(ctx, models.LoanTypeMCA)
	require.NoError(t, err)
	assert.Equal(t, rows, again)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogCacheCorruptSnapshotFallsBack(t *testing.T) {
	mr, rc := newTestRedis(t)
	require.NoError(t, mr.Set("lender_catalog:SBA", "{not json"))

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
	mock.ExpectQuery(`SELECT .+ FROM lenders_sba`).
		WithArgs(models.LenderStatusActive).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("l-7", "Harbor SBA", "active", nil, nil, nil, nil, nil, nil, nil, nil, now, now))

	lenders := NewLenderStore(db, logger.NewNoOpLogger())
	cache := NewCatalogCache(rc, lenders, time.Minute, logger.NewNoOpLogger())

	rows, err := cache.ActiveCatalog(context.Background(), models.LoanTypeSBA)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Harbor SBA", rows[0].LenderName)

	// The rewritten snapshot must be valid JSON now.
	snapshot, err := mr.Get("lender_catalog:SBA")
	require.NoError(t, err)
	var decoded []models.LenderRow
	assert.NoError(t, json.Unmarshal([]byte(snapshot), &decoded))
}

func TestCatalogCacheInvalidate(t *testing.T) {
	mr, rc := newTestRedis(t)
	require.NoError(t, mr.Set("lender_catalog:MCA", "[]"))
	require.NoError(t, mr.Set("lender_catalog:SBA", "[]"))

	cache := NewCatalogCache(rc, nil, time.Minute, logger.NewNoOpLogger())
	ctx := context.Background()

	require.NoError(t, cache.Invalidate(ctx, models.LoanTypeMCA))
	assert.False(t, mr.Exists("lender_catalog:MCA"))
	assert.True(t, mr.Exists("lender_catalog:SBA"))

	require.NoError(t, cache.InvalidateAll(ctx))
	assert.False(t, mr.Exists("lender_catalog:SBA"))
}
