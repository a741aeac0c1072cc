// internal/models/task.go
package models

import "time"

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "Not Started"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// Task is one row in the operations task tracker.
type Task struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Notes       *string    `json:"notes,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    int        `json:"priority"`
	Assignee    *string    `json:"assignee,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
