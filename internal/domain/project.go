package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultColor is the fallback hex color for projects and avatars.
const DefaultColor = "#4F46E5"

type Project struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProject creates a Project with validated required fields and defaults.
func NewProject(ownerID uuid.UUID, name, description, color, icon string) (*Project, error) {
	if ownerID == uuid.Nil {
		return nil, errors.New("project: owner ID is required")
	}
	if name == "" {
		return nil, errors.New("project: name is required")
	}
	if color == "" {
		color = DefaultColor
	}
	if icon == "" {
		icon = "folder"
	}
	now := time.Now()
	return &Project{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Color:       color,
		Icon:        icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ProjectCounts summarizes top-level tasks of a project. Subtasks are
// excluded from both counts.
type ProjectCounts struct {
	TaskCount      int `json:"task_count"`
	CompletedCount int `json:"completed_count"`
}

type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Project, error)
	List(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]*Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Counts(ctx context.Context, projectID uuid.UUID) (ProjectCounts, error)
}
