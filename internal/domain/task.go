package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "backlog"
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
)

// TaskStatuses lists all statuses in workflow order. Kanban columns and
// progress mapping rely on this order.
var TaskStatuses = []TaskStatus{
	TaskStatusBacklog,
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusReview,
	TaskStatusDone,
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusBacklog, TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID             uuid.UUID    `json:"id"`
	ProjectID      uuid.UUID    `json:"project_id"`
	ParentID       *uuid.UUID   `json:"parent_id"` // nullable, subtask parent
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	Color          string       `json:"color,omitempty"` // override, falls back to project color
	StartDate      *time.Time   `json:"start_date"`
	DueDate        *time.Time   `json:"due_date"`
	CompletedAt    *time.Time   `json:"completed_at"`
	EstimatedHours *int         `json:"estimated_hours,omitempty"`
	Position       int          `json:"position"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	// Edge sets, loaded from the association tables. DependencyIDs are the
	// tasks that must complete before this one; the dependents relation is
	// the transpose and is rebuilt in memory, never stored.
	AssigneeIDs   []uuid.UUID `json:"assignee_ids"`
	DependencyIDs []uuid.UUID `json:"dependency_ids"`
}

// SetStatus transitions the task status and keeps CompletedAt in sync:
// entering done stamps it, leaving done clears it, any other transition
// leaves it untouched.
func (t *Task) SetStatus(to TaskStatus, now time.Time) {
	switch {
	case to == TaskStatusDone && t.Status != TaskStatusDone:
		t.CompletedAt = &now
	case to != TaskStatusDone && t.Status == TaskStatusDone:
		t.CompletedAt = nil
	}
	t.Status = to
}

// TaskFilter narrows ListByProject / List queries. Nil pointer fields are
// ignored. An explicit ParentID wins over TopLevelOnly when both are set.
type TaskFilter struct {
	ProjectID    *uuid.UUID
	Status       *TaskStatus
	Priority     *TaskPriority
	ParentID     *uuid.UUID
	TopLevelOnly bool
}

// DateShift is one entry of a cascade batch: the new dates to persist for a
// task. Nil means the task had no such date and it stays null.
type DateShift struct {
	TaskID    uuid.UUID
	StartDate *time.Time
	DueDate   *time.Time
}

// PositionUpdate is one entry of a reorder batch.
type PositionUpdate struct {
	ID       uuid.UUID   `json:"id"`
	Position *int        `json:"position" required:"false"`
	Status   *TaskStatus `json:"status" required:"false"`
	ParentID *uuid.UUID  `json:"parent_id" required:"false"`
}

// TaskRepository persists tasks scoped to a project owner. Every lookup joins
// through the owning project so foreign tasks surface as ErrNotFound.
type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Task, error)
	List(ctx context.Context, ownerID uuid.UUID, filter TaskFilter) ([]*Task, error)
	ListByProject(ctx context.Context, ownerID, projectID uuid.UUID) ([]*Task, error)
	Update(ctx context.Context, ownerID uuid.UUID, t *Task) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	ReplaceAssignees(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error
	ReplaceDependencies(ctx context.Context, taskID uuid.UUID, dependsOn []uuid.UUID) error

	// ShiftDates applies a cascade batch in one transaction. Either every
	// shift commits or none do.
	ShiftDates(ctx context.Context, ownerID uuid.UUID, shifts []DateShift) error

	// ListDueBetween returns unfinished tasks with a due date inside
	// [from, to], ordered by due date ascending.
	ListDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*Task, error)
	// ListOverlapping returns tasks whose dates overlap [from, to]: due in
	// range, start in range, or the [start, due] interval spanning it.
	ListOverlapping(ctx context.Context, ownerID uuid.UUID, from, to time.Time, projectID *uuid.UUID) ([]*Task, error)
}
