package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Reminder struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	UserID    uuid.UUID `json:"user_id"`
	RemindAt  time.Time `json:"remind_at"`
	Message   string    `json:"message,omitempty"`
	IsSent    bool      `json:"is_sent"`
	CreatedAt time.Time `json:"created_at"`
}

type ReminderRepository interface {
	Create(ctx context.Context, r *Reminder) error
	// ListByTask returns the user's reminders for a task, remind_at ascending.
	ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]*Reminder, error)
	// Delete removes a reminder owned by the user.
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// DeleteByTask removes all reminders of a task (task deletion cascade).
	DeleteByTask(ctx context.Context, taskID uuid.UUID) error
}
