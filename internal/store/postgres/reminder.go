package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/plank/internal/domain"
)

type ReminderRepo struct {
	pool *pgxpool.Pool
}

func NewReminderRepo(pool *pgxpool.Pool) *ReminderRepo {
	return &ReminderRepo{pool: pool}
}

func (r *ReminderRepo) Create(ctx context.Context, rem *domain.Reminder) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reminders (id, task_id, user_id, remind_at, message, is_sent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rem.ID, rem.TaskID, rem.UserID, rem.RemindAt, rem.Message, rem.IsSent, rem.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("reminderRepo.Create: %w", err)
	}

	return nil
}

func (r *ReminderRepo) ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.Reminder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, task_id, user_id, remind_at, message, is_sent, created_at
		 FROM reminders WHERE user_id = $1 AND task_id = $2
		 ORDER BY remind_at
		 LIMIT 1000`,
		userID, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("reminderRepo.ListByTask: %w", err)
	}
	defer rows.Close()

	var reminders []*domain.Reminder
	for rows.Next() {
		var rem domain.Reminder
		if err := rows.Scan(
			&rem.ID, &rem.TaskID, &rem.UserID, &rem.RemindAt,
			&rem.Message, &rem.IsSent, &rem.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("reminderRepo.ListByTask: scan: %w", err)
		}
		reminders = append(reminders, &rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reminderRepo.ListByTask: rows: %w", err)
	}

	return reminders, nil
}

func (r *ReminderRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM reminders WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("reminderRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reminderRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *ReminderRepo) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM reminders WHERE task_id = $1`, taskID)
	if err != nil {
		return fmt.Errorf("reminderRepo.DeleteByTask: %w", err)
	}

	return nil
}
