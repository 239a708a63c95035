package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/domain"
	"github.com/gosuda/plank/internal/planner"
	"github.com/gosuda/plank/internal/server/middleware"
)

type CalendarTasksInput struct {
	StartDate time.Time `query:"start_date" required:"true" doc:"Window start"`
	EndDate   time.Time `query:"end_date" required:"true" doc:"Window end"`
	ProjectID uuid.UUID `query:"project_id" doc:"Optional project filter"`
}

type CalendarTasksOutput struct {
	Body []planner.CalendarEvent
}

type UpcomingInput struct {
	Days int `query:"days" minimum:"1" maximum:"90" default:"7" doc:"Window size in days"`
}

type UpcomingOutput struct {
	Body []planner.UpcomingDeadline
}

func RegisterCalendarRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "calendar-tasks",
		Method:      http.MethodGet,
		Path:        "/calendar/tasks",
		Summary:     "List tasks whose dates overlap a window",
		Tags:        []string{"Calendar"},
	}, func(ctx context.Context, input *CalendarTasksInput) (*CalendarTasksOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if input.EndDate.Before(input.StartDate) {
			return nil, huma.Error400BadRequest("end_date must not precede start_date")
		}

		var projectID *uuid.UUID
		if input.ProjectID != uuid.Nil {
			id := input.ProjectID
			projectID = &id
		}

		tasks, err := store.Tasks().ListOverlapping(ctx, userID, input.StartDate, input.EndDate, projectID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list calendar tasks", err)
		}

		projects, err := projectsByID(ctx, store, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load projects", err)
		}

		users, err := userBriefs(ctx, store, tasks)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to resolve assignees", err)
		}

		return &CalendarTasksOutput{Body: planner.BuildCalendarEvents(tasks, projects, users)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "calendar-upcoming",
		Method:      http.MethodGet,
		Path:        "/calendar/upcoming",
		Summary:     "List unfinished tasks due within the next days",
		Tags:        []string{"Calendar"},
	}, func(ctx context.Context, input *UpcomingInput) (*UpcomingOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		now := time.Now()
		until := now.AddDate(0, 0, input.Days)

		tasks, err := store.Tasks().ListDueBetween(ctx, userID, now, until)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list upcoming tasks", err)
		}

		projects, err := projectsByID(ctx, store, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load projects", err)
		}

		return &UpcomingOutput{Body: planner.BuildUpcoming(tasks, projects, now)}, nil
	})
}

// projectsByID loads the user's projects, archived included, keyed by id.
func projectsByID(ctx context.Context, store DataStore, userID uuid.UUID) (map[uuid.UUID]*domain.Project, error) {
	projects, err := store.Projects().List(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*domain.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}
	return byID, nil
}
