package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/plank/internal/api/ws"
	"github.com/gosuda/plank/internal/domain"
	"github.com/gosuda/plank/internal/planner"
	"github.com/gosuda/plank/internal/server/middleware"
)

type CreateTaskInput struct {
	Body struct {
		ProjectID      uuid.UUID   `json:"project_id" doc:"Project ID"`
		Title          string      `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Description    string      `json:"description,omitempty" doc:"Task description"`
		Status         string      `json:"status,omitempty" doc:"Initial status (default todo)"`
		Priority       string      `json:"priority,omitempty" doc:"Priority (default medium)"`
		ParentID       *uuid.UUID  `json:"parent_id,omitempty" doc:"Parent task ID for subtasks"`
		Color          string      `json:"color,omitempty" doc:"Color override"`
		StartDate      *time.Time  `json:"start_date,omitempty" doc:"Start date"`
		DueDate        *time.Time  `json:"due_date,omitempty" doc:"Due date"`
		EstimatedHours *int        `json:"estimated_hours,omitempty" doc:"Estimated hours"`
		Position       int         `json:"position,omitempty" doc:"Board position"`
		AssigneeIDs    []uuid.UUID `json:"assignee_ids,omitempty" doc:"Assigned user IDs"`
		DependencyIDs  []uuid.UUID `json:"dependency_ids,omitempty" doc:"IDs of tasks this one depends on"`
	}
}

type TaskOutput struct {
	Body planner.TaskDetail
}

type ListTasksInput struct {
	ProjectID       uuid.UUID `query:"project_id" doc:"Filter by project"`
	Status          string    `query:"status" doc:"Filter by status"`
	Priority        string    `query:"priority" doc:"Filter by priority"`
	ParentID        uuid.UUID `query:"parent_id" doc:"Filter by parent task"`
	IncludeSubtasks bool      `query:"include_subtasks" default:"true" doc:"Include subtasks in the listing"`
}

type ListTasksOutput struct {
	Body []planner.TaskDetail
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		Title          *string      `json:"title,omitempty" maxLength:"500" doc:"Task title"`
		Description    *string      `json:"description,omitempty" doc:"Task description"`
		Status         *string      `json:"status,omitempty" doc:"Target status"`
		Priority       *string      `json:"priority,omitempty" doc:"Priority"`
		ParentID       *uuid.UUID   `json:"parent_id,omitempty" doc:"Parent task ID"`
		Color          *string      `json:"color,omitempty" doc:"Color override"`
		StartDate      *time.Time   `json:"start_date,omitempty" doc:"Start date"`
		DueDate        *time.Time   `json:"due_date,omitempty" doc:"Due date"`
		EstimatedHours *int         `json:"estimated_hours,omitempty" doc:"Estimated hours"`
		Position       *int         `json:"position,omitempty" doc:"Board position"`
		AssigneeIDs    *[]uuid.UUID `json:"assignee_ids,omitempty" doc:"Replacement assignee set"`
		DependencyIDs  *[]uuid.UUID `json:"dependency_ids,omitempty" doc:"Replacement dependency set"`
	}
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type ReorderTasksInput struct {
	Body struct {
		Tasks []domain.PositionUpdate `json:"tasks" doc:"Position updates to apply"`
	}
}

type ReorderTasksOutput struct {
	Body struct {
		Updated int `json:"updated"`
	}
}

type AdjustDatesInput struct {
	ID         uuid.UUID `path:"id" doc:"Task ID"`
	NewEndDate time.Time `query:"new_end_date" required:"true" doc:"New due date for the task"`
}

type AdjustDatesOutput struct {
	Body struct {
		ShiftedCount int         `json:"shifted_count"`
		ShiftedIDs   []uuid.UUID `json:"shifted_ids"`
		NewEndDate   time.Time   `json:"new_end_date"`
	}
}

func RegisterTaskRoutes(api huma.API, store DataStore, hub BoardPublisher) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a new task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*TaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if _, err := store.Projects().GetByID(ctx, userID, input.Body.ProjectID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to validate project", err)
		}

		if input.Body.ParentID != nil {
			if _, err := store.Tasks().GetByID(ctx, userID, *input.Body.ParentID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, huma.Error404NotFound("parent task not found")
				}
				return nil, huma.Error500InternalServerError("failed to validate parent task", err)
			}
		}

		status := domain.TaskStatusTodo
		if input.Body.Status != "" {
			status = domain.TaskStatus(input.Body.Status)
			if !status.Valid() {
				return nil, huma.Error400BadRequest("unknown task status: " + input.Body.Status)
			}
		}
		priority := domain.TaskPriorityMedium
		if input.Body.Priority != "" {
			priority = domain.TaskPriority(input.Body.Priority)
			if !priority.Valid() {
				return nil, huma.Error400BadRequest("unknown task priority: " + input.Body.Priority)
			}
		}

		assigneeIDs, err := knownUserIDs(ctx, store, input.Body.AssigneeIDs)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to resolve assignees", err)
		}
		dependencyIDs, err := ownedTaskIDs(ctx, store, userID, input.Body.DependencyIDs)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to resolve dependencies", err)
		}

		now := time.Now()
		t := &domain.Task{
			ID:             uuid.New(),
			ProjectID:      input.Body.ProjectID,
			ParentID:       input.Body.ParentID,
			Title:          input.Body.Title,
			Description:    input.Body.Description,
			Priority:       priority,
			Color:          input.Body.Color,
			StartDate:      input.Body.StartDate,
			DueDate:        input.Body.DueDate,
			EstimatedHours: input.Body.EstimatedHours,
			Position:       input.Body.Position,
			CreatedAt:      now,
			UpdatedAt:      now,
			AssigneeIDs:    assigneeIDs,
			DependencyIDs:  dependencyIDs,
		}
		t.SetStatus(status, now)

		if err := store.Tasks().Create(ctx, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		publishBoard(ctx, hub, "task_created", t.ProjectID, []uuid.UUID{t.ID})

		return taskDetailResponse(ctx, store, userID, t)
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks with optional filters",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		filter := domain.TaskFilter{}
		if input.ProjectID != uuid.Nil {
			projectID := input.ProjectID
			filter.ProjectID = &projectID
		}
		if input.ParentID != uuid.Nil {
			parentID := input.ParentID
			filter.ParentID = &parentID
		} else if !input.IncludeSubtasks {
			// An explicit parent filter takes precedence over the
			// top-level restriction.
			filter.TopLevelOnly = true
		}
		if input.Status != "" {
			status := domain.TaskStatus(input.Status)
			if !status.Valid() {
				return nil, huma.Error400BadRequest("unknown task status: " + input.Status)
			}
			filter.Status = &status
		}
		if input.Priority != "" {
			priority := domain.TaskPriority(input.Priority)
			if !priority.Valid() {
				return nil, huma.Error400BadRequest("unknown task priority: " + input.Priority)
			}
			filter.Priority = &priority
		}

		tasks, err := store.Tasks().List(ctx, userID, filter)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		// Subtask counts and dependency briefs resolve against the full
		// task set of every project involved, so a filtered list still
		// reports them for tasks whose relatives the filter excluded.
		projectIDs := make([]uuid.UUID, 0, 1)
		if filter.ProjectID != nil {
			projectIDs = append(projectIDs, *filter.ProjectID)
		} else {
			seen := make(map[uuid.UUID]struct{})
			for _, t := range tasks {
				if _, ok := seen[t.ProjectID]; !ok {
					seen[t.ProjectID] = struct{}{}
					projectIDs = append(projectIDs, t.ProjectID)
				}
			}
		}

		var graphTasks []*domain.Task
		for _, projectID := range projectIDs {
			projectTasks, err := store.Tasks().ListByProject(ctx, userID, projectID)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to load project tasks", err)
			}
			graphTasks = append(graphTasks, projectTasks...)
		}

		g := planner.NewGraph(graphTasks)
		users, err := userBriefs(ctx, store, graphTasks)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to resolve assignees", err)
		}

		details := make([]planner.TaskDetail, 0, len(tasks))
		for _, t := range tasks {
			details = append(details, planner.BuildTaskDetail(g, t, users))
		}

		return &ListTasksOutput{Body: details}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*TaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		t, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		return taskDetailResponse(ctx, store, userID, t)
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Update a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*TaskOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		t, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		if input.Body.Title != nil {
			if *input.Body.Title == "" {
				return nil, huma.Error400BadRequest("task title cannot be empty")
			}
			t.Title = *input.Body.Title
		}
		if input.Body.Description != nil {
			t.Description = *input.Body.Description
		}
		if input.Body.Status != nil {
			status := domain.TaskStatus(*input.Body.Status)
			if !status.Valid() {
				return nil, huma.Error400BadRequest("unknown task status: " + *input.Body.Status)
			}
			t.SetStatus(status, time.Now())
		}
		if input.Body.Priority != nil {
			priority := domain.TaskPriority(*input.Body.Priority)
			if !priority.Valid() {
				return nil, huma.Error400BadRequest("unknown task priority: " + *input.Body.Priority)
			}
			t.Priority = priority
		}
		if input.Body.ParentID != nil {
			t.ParentID = input.Body.ParentID
		}
		if input.Body.Color != nil {
			t.Color = *input.Body.Color
		}
		if input.Body.StartDate != nil {
			t.StartDate = input.Body.StartDate
		}
		if input.Body.DueDate != nil {
			t.DueDate = input.Body.DueDate
		}
		if input.Body.EstimatedHours != nil {
			t.EstimatedHours = input.Body.EstimatedHours
		}
		if input.Body.Position != nil {
			t.Position = *input.Body.Position
		}
		t.UpdatedAt = time.Now()

		if err := store.Tasks().Update(ctx, userID, t); err != nil {
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}

		if input.Body.AssigneeIDs != nil {
			assigneeIDs, err := knownUserIDs(ctx, store, *input.Body.AssigneeIDs)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to resolve assignees", err)
			}
			if err := store.Tasks().ReplaceAssignees(ctx, t.ID, assigneeIDs); err != nil {
				return nil, huma.Error500InternalServerError("failed to update assignees", err)
			}
			t.AssigneeIDs = assigneeIDs
		}
		if input.Body.DependencyIDs != nil {
			dependencyIDs, err := ownedTaskIDs(ctx, store, userID, *input.Body.DependencyIDs)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to resolve dependencies", err)
			}
			if err := store.Tasks().ReplaceDependencies(ctx, t.ID, dependencyIDs); err != nil {
				return nil, huma.Error500InternalServerError("failed to update dependencies", err)
			}
			t.DependencyIDs = dependencyIDs
		}

		publishBoard(ctx, hub, "task_updated", t.ProjectID, []uuid.UUID{t.ID})

		return taskDetailResponse(ctx, store, userID, t)
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		t, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		if err := store.Reminders().DeleteByTask(ctx, t.ID); err != nil {
			return nil, huma.Error500InternalServerError("failed to delete task reminders", err)
		}

		if err := store.Tasks().Delete(ctx, userID, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		publishBoard(ctx, hub, "task_deleted", t.ProjectID, []uuid.UUID{t.ID})

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reorder-tasks",
		Method:      http.MethodPost,
		Path:        "/tasks/reorder",
		Summary:     "Apply a batch of board position updates",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ReorderTasksInput) (*ReorderTasksOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		// Best effort: entries referencing unknown or foreign tasks are
		// skipped so a stale client cannot fail the whole batch.
		updatedByProject := make(map[uuid.UUID][]uuid.UUID)
		updated := 0
		for _, pu := range input.Body.Tasks {
			t, err := store.Tasks().GetByID(ctx, userID, pu.ID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return nil, huma.Error500InternalServerError("failed to load task", err)
			}

			if pu.Position != nil {
				t.Position = *pu.Position
			}
			if pu.Status != nil {
				if !pu.Status.Valid() {
					return nil, huma.Error400BadRequest("unknown task status: " + string(*pu.Status))
				}
				t.SetStatus(*pu.Status, time.Now())
			}
			if pu.ParentID != nil {
				t.ParentID = pu.ParentID
			}
			t.UpdatedAt = time.Now()

			if err := store.Tasks().Update(ctx, userID, t); err != nil {
				return nil, huma.Error500InternalServerError("failed to update task", err)
			}
			updatedByProject[t.ProjectID] = append(updatedByProject[t.ProjectID], t.ID)
			updated++
		}

		for projectID, ids := range updatedByProject {
			publishBoard(ctx, hub, "tasks_reordered", projectID, ids)
		}

		out := &ReorderTasksOutput{}
		out.Body.Updated = updated
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "adjust-task-dates",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/adjust-dates",
		Summary:     "Move a task's due date and cascade the shift to dependents",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *AdjustDatesInput) (*AdjustDatesOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		t, err := store.Tasks().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to get task", err)
		}

		projectTasks, err := store.Tasks().ListByProject(ctx, userID, t.ProjectID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load project tasks", err)
		}

		g := planner.NewGraph(projectTasks)
		shifts, err := planner.PlanDueDateShift(g, input.ID, input.NewEndDate)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidState):
				return nil, huma.Error400BadRequest("task has no due date to shift")
			case errors.Is(err, domain.ErrNotFound):
				return nil, huma.Error404NotFound("task not found")
			default:
				return nil, huma.Error500InternalServerError("failed to plan date shift", err)
			}
		}

		if err := store.Tasks().ShiftDates(ctx, userID, shifts); err != nil {
			return nil, huma.Error500InternalServerError("failed to apply date shift", err)
		}

		shiftedIDs := planner.ShiftedIDs(shifts)
		publishBoard(ctx, hub, "dates_cascaded", t.ProjectID, shiftedIDs)

		out := &AdjustDatesOutput{}
		out.Body.ShiftedCount = len(shifts)
		out.Body.ShiftedIDs = shiftedIDs
		out.Body.NewEndDate = input.NewEndDate
		return out, nil
	})
}

// taskDetailResponse projects a single task against its project graph so
// subtask counts and dependency briefs are populated.
func taskDetailResponse(ctx context.Context, store DataStore, userID uuid.UUID, t *domain.Task) (*TaskOutput, error) {
	projectTasks, err := store.Tasks().ListByProject(ctx, userID, t.ProjectID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load project tasks", err)
	}

	g := planner.NewGraph(projectTasks)
	users, err := userBriefs(ctx, store, projectTasks)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to resolve assignees", err)
	}

	// The graph copy may be stale relative to t when called right after a
	// write, so project t itself rather than the graph's copy.
	return &TaskOutput{Body: planner.BuildTaskDetail(g, t, users)}, nil
}

// knownUserIDs narrows an assignee list to ids of existing users. Unknown
// ids and duplicates are dropped rather than failing the write.
func knownUserIDs(ctx context.Context, store DataStore, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return ids, nil
	}

	users, err := store.Users().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	known := make(map[uuid.UUID]struct{}, len(users))
	for _, u := range users {
		known[u.ID] = struct{}{}
	}

	kept := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; ok {
			kept = append(kept, id)
			delete(known, id)
		}
	}

	return kept, nil
}

// ownedTaskIDs narrows a dependency list to tasks the principal owns.
// Unknown and foreign ids and duplicates are dropped rather than failing
// the write.
func ownedTaskIDs(ctx context.Context, store DataStore, userID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return ids, nil
	}

	kept := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if _, err := store.Tasks().GetByID(ctx, userID, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		kept = append(kept, id)
	}

	return kept, nil
}

// userBriefs loads the briefs of every assignee referenced by tasks.
func userBriefs(ctx context.Context, store DataStore, tasks []*domain.Task) (map[uuid.UUID]domain.UserBrief, error) {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, t := range tasks {
		for _, id := range t.AssigneeIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]domain.UserBrief{}, nil
	}

	users, err := store.Users().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	briefs := make(map[uuid.UUID]domain.UserBrief, len(users))
	for _, u := range users {
		briefs[u.ID] = u.Brief()
	}
	return briefs, nil
}

// publishBoard fans out a board event. Failures are logged and swallowed;
// a dead Redis must not fail task writes.
func publishBoard(ctx context.Context, hub BoardPublisher, eventType string, projectID uuid.UUID, taskIDs []uuid.UUID) {
	if hub == nil {
		return
	}
	event := ws.BoardEvent{
		Type:      eventType,
		ProjectID: projectID,
		TaskIDs:   taskIDs,
		At:        time.Now(),
	}
	if err := hub.PublishBoardEvent(ctx, event); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("board event publish")
	}
}
