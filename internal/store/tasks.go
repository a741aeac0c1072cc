// internal/store/tasks.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lending-ops/internal/common/logger"
	"lending-ops/internal/models"

	"github.com/google/uuid"
)

type TaskStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewTaskStore(db *sql.DB, log logger.Logger) *TaskStore {
	return &TaskStore{db: db, log: log}
}

const taskColumns = `id, name, notes, status, priority, assignee, due_date, completed_at, created_at, updated_at`

func scanTask(scan func(dest ...interface{}) error) (models.Task, error) {
	var (
		t         models.Task
		notes     sql.NullString
		assignee  sql.NullString
		dueDate   sql.NullTime
		completed sql.NullTime
	)

	err := scan(&t.ID, &t.Name, &notes, &t.Status, &t.Priority, &assignee, &dueDate, &completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}

	t.Notes = nullStr(notes)
	t.Assignee = nullStr(assignee)
	t.DueDate = nullTime(dueDate)
	t.CompletedAt = nullTime(completed)
	return t, nil
}

func (s *TaskStore) Create(ctx context.Context, task models.Task) (models.Task, error) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = models.TaskStatusNotStarted
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		task.ID, task.Name, task.Notes, task.Status, task.Priority,
		task.Assignee, task.DueDate, task.CompletedAt, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

func (s *TaskStore) Get(ctx context.Context, id string) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row.Scan)
}

// List returns tasks ordered by priority then due date.
func (s *TaskStore) List(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY priority DESC, due_date ASC NULLS LAST`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites a task. Moving to Completed stamps completed_at; moving
// away clears it.
func (s *TaskStore) Update(ctx context.Context, task models.Task) (models.Task, error) {
	now := time.Now().UTC()
	task.UpdatedAt = now
	if task.Status == models.TaskStatusCompleted {
		if task.CompletedAt == nil {
			task.CompletedAt = &now
		}
	} else {
		task.CompletedAt = nil
	}

	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET name = $2, notes = $3, status = $4, priority = $5,
		assignee = $6, due_date = $7, completed_at = $8, updated_at = $9 WHERE id = $1`,
		task.ID, task.Name, task.Notes, task.Status, task.Priority,
		task.Assignee, task.DueDate, task.CompletedAt, task.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return models.Task{}, sql.ErrNoRows
	}
	return task, nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
