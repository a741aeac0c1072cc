// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lending-ops/internal/common/database"
	"lending-ops/internal/common/logger"
	"lending-ops/internal/common/metrics"
	"lending-ops/internal/models"

	"github.com/redis/go-redis/v9"
)

// CatalogCache keeps per-product snapshots of the active lender catalog in
// Redis so the match grid does not hit all eight tables on every request.
// The cache is read-through: a miss falls back to Postgres and the snapshot
// is written back with a TTL. Writes to the catalog invalidate the snapshot.
type CatalogCache struct {
	redis   *database.RedisClient
	lenders *LenderStore
	ttl     time.Duration
	log     logger.Logger
}

func NewCatalogCache(rc *database.RedisClient, lenders *LenderStore, ttl time.Duration, log logger.Logger) *CatalogCache {
	return &CatalogCache{
		redis:   rc,
		lenders: lenders,
		ttl:     ttl,
		log:     log,
	}
}

func catalogKey(loanType models.LoanType) string {
	return fmt.Sprintf("lender_catalog:%s", loanType)
}

// ActiveCatalog returns the active lender rows for one loan product,
// serving from the Redis snapshot when present.
func (c *CatalogCache) ActiveCatalog(ctx context.Context, loanType models.LoanType) ([]models.LenderRow, error) {
	key := catalogKey(loanType)

	if cached, err := c.redis.Get(ctx, key); err == nil {
		var rows []models.LenderRow
		if err := json.Unmarshal([]byte(cached), &rows); err == nil {
			metrics.CatalogCacheHits.WithLabelValues("hit").Inc()
			return rows, nil
		}
		// Corrupt snapshot: drop it and fall through to Postgres.
		_ = c.redis.Del(ctx, key)
	} else if err != redis.Nil {
		c.log.WithError(err).Warn("catalog cache read failed", map[string]interface{}{
			"loanType": loanType,
		})
	}

	metrics.CatalogCacheHits.WithLabelValues("miss").Inc()

	rows, err := c.lenders.ListActive(ctx, loanType)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(rows); err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl); err != nil {
			c.log.WithError(err).Warn("catalog cache write failed", map[string]interface{}{
				"loanType": loanType,
			})
		}
	}

	return rows, nil
}

// Invalidate drops the snapshot for one loan product. Call after any catalog
// write for that product.
func (c *CatalogCache) Invalidate(ctx context.Context, loanType models.LoanType) error {
	return c.redis.Del(ctx, catalogKey(loanType))
}

// InvalidateAll drops every product snapshot.
func (c *CatalogCache) InvalidateAll(ctx context.Context) error {
	keys := make([]string, 0, len(lenderTables))
	for loanType := range lenderTables {
		keys = append(keys, catalogKey(loanType))
	}
	return c.redis.Del(ctx, keys...)
}
