package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/domain"
	"github.com/gosuda/plank/internal/server/middleware"
)

// ProjectSummary is a project plus its top-level task counts.
type ProjectSummary struct {
	domain.Project
	domain.ProjectCounts
}

type CreateProjectInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Project name"`
		Description string `json:"description,omitempty" doc:"Project description"`
		Color       string `json:"color,omitempty" doc:"Project hex color"`
		Icon        string `json:"icon,omitempty" doc:"Project icon name"`
	}
}

type CreateProjectOutput struct {
	Body *domain.Project
}

type ListProjectsInput struct {
	IncludeArchived bool `query:"include_archived" doc:"Include archived projects"`
}

type ListProjectsOutput struct {
	Body []ProjectSummary
}

type GetProjectInput struct {
	ID uuid.UUID `path:"id" doc:"Project ID"`
}

type GetProjectOutput struct {
	Body ProjectSummary
}

type UpdateProjectInput struct {
	ID   uuid.UUID `path:"id" doc:"Project ID"`
	Body struct {
		Name        *string `json:"name,omitempty" maxLength:"255" doc:"Project name"`
		Description *string `json:"description,omitempty" doc:"Project description"`
		Color       *string `json:"color,omitempty" doc:"Project hex color"`
		Icon        *string `json:"icon,omitempty" doc:"Project icon name"`
		IsArchived  *bool   `json:"is_archived,omitempty" doc:"Archive flag"`
	}
}

type UpdateProjectOutput struct {
	Body *domain.Project
}

type DeleteProjectInput struct {
	ID uuid.UUID `path:"id" doc:"Project ID"`
}

func RegisterProjectRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-project",
		Method:      http.MethodPost,
		Path:        "/projects",
		Summary:     "Create a new project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *CreateProjectInput) (*CreateProjectOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		p, err := domain.NewProject(userID, input.Body.Name, input.Body.Description, input.Body.Color, input.Body.Icon)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if err := store.Projects().Create(ctx, p); err != nil {
			return nil, huma.Error500InternalServerError("failed to create project", err)
		}

		return &CreateProjectOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-projects",
		Method:      http.MethodGet,
		Path:        "/projects",
		Summary:     "List the user's projects with task counts",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *ListProjectsInput) (*ListProjectsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		projects, err := store.Projects().List(ctx, userID, input.IncludeArchived)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list projects", err)
		}

		summaries := make([]ProjectSummary, 0, len(projects))
		for _, p := range projects {
			counts, err := store.Projects().Counts(ctx, p.ID)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to count project tasks", err)
			}
			summaries = append(summaries, ProjectSummary{Project: *p, ProjectCounts: counts})
		}

		return &ListProjectsOutput{Body: summaries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-project",
		Method:      http.MethodGet,
		Path:        "/projects/{id}",
		Summary:     "Get a project by ID",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *GetProjectInput) (*GetProjectOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		p, err := store.Projects().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to get project", err)
		}

		counts, err := store.Projects().Counts(ctx, p.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to count project tasks", err)
		}

		return &GetProjectOutput{Body: ProjectSummary{Project: *p, ProjectCounts: counts}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-project",
		Method:      http.MethodPut,
		Path:        "/projects/{id}",
		Summary:     "Update a project",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *UpdateProjectInput) (*UpdateProjectOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		p, err := store.Projects().GetByID(ctx, userID, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to get project", err)
		}

		if input.Body.Name != nil {
			if *input.Body.Name == "" {
				return nil, huma.Error400BadRequest("project name cannot be empty")
			}
			p.Name = *input.Body.Name
		}
		if input.Body.Description != nil {
			p.Description = *input.Body.Description
		}
		if input.Body.Color != nil {
			p.Color = *input.Body.Color
		}
		if input.Body.Icon != nil {
			p.Icon = *input.Body.Icon
		}
		if input.Body.IsArchived != nil {
			p.IsArchived = *input.Body.IsArchived
		}
		p.UpdatedAt = time.Now()

		if err := store.Projects().Update(ctx, p); err != nil {
			return nil, huma.Error500InternalServerError("failed to update project", err)
		}

		return &UpdateProjectOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-project",
		Method:      http.MethodDelete,
		Path:        "/projects/{id}",
		Summary:     "Delete a project and its tasks",
		Tags:        []string{"Projects"},
	}, func(ctx context.Context, input *DeleteProjectInput) (*struct{}, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if err := store.Projects().Delete(ctx, userID, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("project not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete project", err)
		}

		return nil, nil
	})
}
