package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/domain"
	"github.com/gosuda/plank/internal/planner"
	"github.com/gosuda/plank/internal/server/middleware"
)

type GetKanbanInput struct {
	ProjectID uuid.UUID `path:"projectID" doc:"Project ID"`
}

type GetKanbanOutput struct {
	Body planner.KanbanBoard
}

type GetGanttInput struct {
	ProjectID uuid.UUID `path:"projectID" doc:"Project ID"`
}

type GetGanttOutput struct {
	Body []planner.GanttRow
}

func RegisterViewRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "get-kanban",
		Method:      http.MethodGet,
		Path:        "/tasks/kanban/{projectID}",
		Summary:     "Get the kanban board for a project",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *GetKanbanInput) (*GetKanbanOutput, error) {
		_, g, users, err := projectGraph(ctx, store, input.ProjectID)
		if err != nil {
			return nil, err
		}

		return &GetKanbanOutput{Body: planner.BuildKanban(input.ProjectID, g, users)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-gantt",
		Method:      http.MethodGet,
		Path:        "/tasks/gantt/{projectID}",
		Summary:     "Get gantt chart rows for a project",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *GetGanttInput) (*GetGanttOutput, error) {
		project, g, users, err := projectGraph(ctx, store, input.ProjectID)
		if err != nil {
			return nil, err
		}

		return &GetGanttOutput{Body: planner.BuildGantt(project, g, users)}, nil
	})
}

// projectGraph loads a project (enforcing ownership) along with its task
// dependency graph and resolved assignee briefs.
func projectGraph(ctx context.Context, store DataStore, projectID uuid.UUID) (*domain.Project, *planner.Graph, map[uuid.UUID]domain.UserBrief, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, nil, nil, huma.Error403Forbidden("missing user context")
	}

	project, err := store.Projects().GetByID(ctx, userID, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, huma.Error404NotFound("project not found")
		}
		return nil, nil, nil, huma.Error500InternalServerError("failed to get project", err)
	}

	tasks, err := store.Tasks().ListByProject(ctx, userID, projectID)
	if err != nil {
		return nil, nil, nil, huma.Error500InternalServerError("failed to load project tasks", err)
	}

	users, err := userBriefs(ctx, store, tasks)
	if err != nil {
		return nil, nil, nil, huma.Error500InternalServerError("failed to resolve assignees", err)
	}

	return project, planner.NewGraph(tasks), users, nil
}
