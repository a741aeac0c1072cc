// internal/store/content.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lending-ops/internal/common/logger"
	"lending-ops/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ContentStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewContentStore(db *sql.DB, log logger.Logger) *ContentStore {
	return &ContentStore{db: db, log: log}
}

const contentColumns = `id, person_name, platform, content, tags, status, scheduled_for, published_at, publish_error, created_at, updated_at`

func scanContent(scan func(dest ...interface{}) error) (models.ContentPost, error) {
	var (
		p          models.ContentPost
		tags       pq.StringArray
		scheduled  sql.NullTime
		published  sql.NullTime
		publishErr sql.NullString
	)

	err := scan(&p.ID, &p.PersonName, &p.Platform, &p.Content, &tags, &p.Status,
		&scheduled, &published, &publishErr, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.ContentPost{}, err
	}

	p.Tags = []string(tags)
	p.ScheduledFor = nullTime(scheduled)
	p.PublishedAt = nullTime(published)
	p.PublishError = nullStr(publishErr)
	return p, nil
}

func (s *ContentStore) Create(ctx context.Context, post models.ContentPost) (models.ContentPost, error) {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	if post.Status == "" {
		post.Status = models.ContentStatusDraft
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `INSERT INTO content_posts (`+contentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		post.ID, post.PersonName, post.Platform, post.Content, pq.Array(post.Tags), post.Status,
		post.ScheduledFor, post.PublishedAt, post.PublishError, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return models.ContentPost{}, fmt.Errorf("insert content post: %w", err)
	}
	return post, nil
}

func (s *ContentStore) Get(ctx context.Context, id string) (models.ContentPost, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content_posts WHERE id = $1`, id)
	return scanContent(row.Scan)
}

// List returns posts ordered by schedule, optionally filtered by status.
func (s *ContentStore) List(ctx context.Context, status models.ContentStatus) ([]models.ContentPost, error) {
	query := `SELECT ` + contentColumns + ` FROM content_posts`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY scheduled_for ASC NULLS LAST, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query content posts: %w", err)
	}
	defer rows.Close()

	var out []models.ContentPost
	for rows.Next() {
		p, err := scanContent(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan content post: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ContentStore) Update(ctx context.Context, post models.ContentPost) (models.ContentPost, error) {
	post.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `UPDATE content_posts SET person_name = $2, platform = $3, content = $4,
		tags = $5, status = $6, scheduled_for = $7, published_at = $8, publish_error = $9, updated_at = $10
		WHERE id = $1`,
		post.ID, post.PersonName, post.Platform, post.Content,
		pq.Array(post.Tags), post.Status, post.ScheduledFor, post.PublishedAt, post.PublishError, post.UpdatedAt,
	)
	if err != nil {
		return models.ContentPost{}, fmt.Errorf("update content post: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.ContentPost{}, sql.ErrNoRows
	}
	return post, nil
}

// MarkPublished records a successful publish.
func (s *ContentStore) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE content_posts SET status = $2, published_at = $3, publish_error = NULL, updated_at = $3
		WHERE id = $1`,
		id, models.ContentStatusPublished, publishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark content published: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkFailed records a failed publish attempt with its error.
func (s *ContentStore) MarkFailed(ctx context.Context, id string, publishErr string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE content_posts SET status = $2, publish_error = $3, updated_at = $4
		WHERE id = $1`,
		id, models.ContentStatusFailed, publishErr, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark content failed: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *ContentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content post: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
