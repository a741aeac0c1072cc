// Package store implements Postgres persistence for the lending-ops domain:
// the per-product lender catalog tables, the deal pipeline, the operations
// task tracker and the content calendar.
package store

import (
	"database/sql"
	"time"

	"lending-ops/internal/common/database"
	"lending-ops/internal/common/logger"
)

// Store bundles the per-domain stores behind one Postgres connection.
type Store struct {
	Lenders *LenderStore
	Deals   *DealStore
	Tasks   *TaskStore
	Content *ContentStore
}

func New(pg *database.PostgresClient, log logger.Logger) *Store {
	db := pg.GetDB()
	return &Store{
		Lenders: NewLenderStore(db, log),
		Deals:   NewDealStore(db, log),
		Tasks:   NewTaskStore(db, log),
		Content: NewContentStore(db, log),
	}
}

// nullStr converts sql.NullString to a *string.
func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// nullInt converts sql.NullInt64 to a *int.
func nullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}

// nullFloat converts sql.NullFloat64 to a *float64.
func nullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

// nullTime converts sql.NullTime to a *time.Time.
func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
