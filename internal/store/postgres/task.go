package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/plank/internal/domain"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

const taskColumns = `t.id, t.project_id, t.parent_id, t.title, t.description, t.status, t.priority,
	        t.color, t.start_date, t.due_date, t.completed_at, t.estimated_hours, t.position,
	        t.created_at, t.updated_at`

// ownerJoin scopes every task query to the owning project. Cross-owner ids
// fall out of the result set and surface as ErrNotFound, never as forbidden.
const ownerJoin = ` FROM tasks t JOIN projects p ON p.id = t.project_id WHERE p.owner_id = $1`

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (id, project_id, parent_id, title, description, status, priority,
		         color, start_date, due_date, completed_at, estimated_hours, position, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.ID, t.ProjectID, t.ParentID, t.Title, t.Description, t.Status, t.Priority,
		t.Color, t.StartDate, t.DueDate, t.CompletedAt, t.EstimatedHours, t.Position,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Create: %w", err)
	}

	if len(t.AssigneeIDs) > 0 {
		if err := r.ReplaceAssignees(ctx, t.ID, t.AssigneeIDs); err != nil {
			return fmt.Errorf("taskRepo.Create: %w", err)
		}
	}
	if len(t.DependencyIDs) > 0 {
		if err := r.ReplaceDependencies(ctx, t.ID, t.DependencyIDs); err != nil {
			return fmt.Errorf("taskRepo.Create: %w", err)
		}
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+ownerJoin+` AND t.id = $2`,
		ownerID, id,
	)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	if err := r.attachEdges(ctx, []*domain.Task{t}); err != nil {
		return nil, fmt.Errorf("taskRepo.GetByID: %w", err)
	}

	return t, nil
}

func (r *TaskRepo) List(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ownerJoin
	args := []any{ownerID}

	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND t.project_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND t.status = $%d", len(args))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		query += fmt.Sprintf(" AND t.priority = $%d", len(args))
	}
	switch {
	case filter.ParentID != nil:
		args = append(args, *filter.ParentID)
		query += fmt.Sprintf(" AND t.parent_id = $%d", len(args))
	case filter.TopLevelOnly:
		query += " AND t.parent_id IS NULL"
	}

	query += " ORDER BY t.position, t.created_at LIMIT 1000"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.List: %w", err)
	}
	defer rows.Close()

	tasks, err := scanTasks(rows, "taskRepo.List")
	if err != nil {
		return nil, err
	}

	if err := r.attachEdges(ctx, tasks); err != nil {
		return nil, fmt.Errorf("taskRepo.List: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepo) ListByProject(ctx context.Context, ownerID, projectID uuid.UUID) ([]*domain.Task, error) {
	return r.List(ctx, ownerID, domain.TaskFilter{ProjectID: &projectID})
}

func (r *TaskRepo) Update(ctx context.Context, ownerID uuid.UUID, t *domain.Task) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET parent_id = $3, title = $4, description = $5, status = $6, priority = $7,
		        color = $8, start_date = $9, due_date = $10, completed_at = $11,
		        estimated_hours = $12, position = $13, updated_at = now()
		 FROM projects p
		 WHERE p.id = tasks.project_id AND p.owner_id = $1 AND tasks.id = $2`,
		ownerID, t.ID, t.ParentID, t.Title, t.Description, t.Status, t.Priority,
		t.Color, t.StartDate, t.DueDate, t.CompletedAt, t.EstimatedHours, t.Position,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	// Subtasks, edge rows, and reminders go with the task via ON DELETE CASCADE.
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks USING projects p
		 WHERE p.id = tasks.project_id AND p.owner_id = $1 AND tasks.id = $2`,
		ownerID, id,
	)
	if err != nil {
		return fmt.Errorf("taskRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) ReplaceAssignees(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	return r.replaceEdges(ctx, "task_assignees", "user_id", taskID, userIDs, "taskRepo.ReplaceAssignees")
}

func (r *TaskRepo) ReplaceDependencies(ctx context.Context, taskID uuid.UUID, dependsOn []uuid.UUID) error {
	return r.replaceEdges(ctx, "task_dependencies", "depends_on_id", taskID, dependsOn, "taskRepo.ReplaceDependencies")
}

// replaceEdges wholesale-replaces a task's rows in one of the two
// association tables inside a transaction.
func (r *TaskRepo) replaceEdges(ctx context.Context, table, column string, taskID uuid.UUID, targets []uuid.UUID, caller string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", caller, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE task_id = $1`, table), taskID); err != nil {
		return fmt.Errorf("%s: delete: %w", caller, err)
	}

	for _, target := range targets {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (task_id, %s) VALUES ($1, $2)`, table, column),
			taskID, target); err != nil {
			return fmt.Errorf("%s: insert: %w", caller, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", caller, err)
	}

	return nil
}

// ShiftDates persists a cascade batch atomically: either every task's dates
// move or the transaction rolls back and nothing is observable.
func (r *TaskRepo) ShiftDates(ctx context.Context, ownerID uuid.UUID, shifts []domain.DateShift) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskRepo.ShiftDates: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, s := range shifts {
		tag, err := tx.Exec(ctx,
			`UPDATE tasks SET start_date = $3, due_date = $4, updated_at = now()
			 FROM projects p
			 WHERE p.id = tasks.project_id AND p.owner_id = $1 AND tasks.id = $2`,
			ownerID, s.TaskID, s.StartDate, s.DueDate,
		)
		if err != nil {
			return fmt.Errorf("taskRepo.ShiftDates: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("taskRepo.ShiftDates: task %s: %w", s.TaskID, domain.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskRepo.ShiftDates: commit: %w", err)
	}

	return nil
}

func (r *TaskRepo) ListDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+ownerJoin+`
		   AND t.due_date >= $2 AND t.due_date <= $3 AND t.status <> 'done'
		 ORDER BY t.due_date
		 LIMIT 1000`,
		ownerID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListDueBetween: %w", err)
	}
	defer rows.Close()

	tasks, err := scanTasks(rows, "taskRepo.ListDueBetween")
	if err != nil {
		return nil, err
	}

	if err := r.attachEdges(ctx, tasks); err != nil {
		return nil, fmt.Errorf("taskRepo.ListDueBetween: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepo) ListOverlapping(ctx context.Context, ownerID uuid.UUID, from, to time.Time, projectID *uuid.UUID) ([]*domain.Task, error) {
	// Overlap: due in range, start in range, or [start, due] spanning it.
	query := `SELECT ` + taskColumns + ownerJoin + `
	   AND ((t.due_date >= $2 AND t.due_date <= $3)
	     OR (t.start_date >= $2 AND t.start_date <= $3)
	     OR (t.start_date <= $2 AND t.due_date >= $3))`
	args := []any{ownerID, from, to}

	if projectID != nil {
		args = append(args, *projectID)
		query += fmt.Sprintf(" AND t.project_id = $%d", len(args))
	}

	query += " LIMIT 1000"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("taskRepo.ListOverlapping: %w", err)
	}
	defer rows.Close()

	tasks, err := scanTasks(rows, "taskRepo.ListOverlapping")
	if err != nil {
		return nil, err
	}

	if err := r.attachEdges(ctx, tasks); err != nil {
		return nil, fmt.Errorf("taskRepo.ListOverlapping: %w", err)
	}

	return tasks, nil
}

// attachEdges batch-loads assignee and dependency ids for the task set.
func (r *TaskRepo) attachEdges(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Task, len(tasks))
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		t.AssigneeIDs = []uuid.UUID{}
		t.DependencyIDs = []uuid.UUID{}
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT task_id, user_id FROM task_assignees WHERE task_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("attachEdges: assignees: %w", err)
	}
	if err := collectEdges(rows, byID, func(t *domain.Task, id uuid.UUID) {
		t.AssigneeIDs = append(t.AssigneeIDs, id)
	}); err != nil {
		return fmt.Errorf("attachEdges: assignees: %w", err)
	}

	rows, err = r.pool.Query(ctx,
		`SELECT task_id, depends_on_id FROM task_dependencies WHERE task_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("attachEdges: dependencies: %w", err)
	}
	if err := collectEdges(rows, byID, func(t *domain.Task, id uuid.UUID) {
		t.DependencyIDs = append(t.DependencyIDs, id)
	}); err != nil {
		return fmt.Errorf("attachEdges: dependencies: %w", err)
	}

	return nil
}

func collectEdges(rows pgx.Rows, byID map[uuid.UUID]*domain.Task, add func(*domain.Task, uuid.UUID)) error {
	defer rows.Close()

	for rows.Next() {
		var taskID, target uuid.UUID
		if err := rows.Scan(&taskID, &target); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if t, ok := byID[taskID]; ok {
			add(t, target)
		}
	}

	return rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.ParentID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.Color, &t.StartDate, &t.DueDate, &t.CompletedAt, &t.EstimatedHours, &t.Position,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTasks(rows pgx.Rows, caller string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tasks, nil
}
