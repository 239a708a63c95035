package planner

import (
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/domain"
)

// GanttRow is one bar of the gantt chart. Dependencies are id references
// rather than full objects; the client resolves them against the row set.
type GanttRow struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	StartDate    *time.Time          `json:"start_date"`
	DueDate      *time.Time          `json:"due_date"`
	Status       domain.TaskStatus   `json:"status"`
	Priority     domain.TaskPriority `json:"priority"`
	Color        string              `json:"color"`
	Progress     float64             `json:"progress"`
	Dependencies []uuid.UUID         `json:"dependencies"`
	Assignees    []domain.UserBrief  `json:"assignees"`
	ParentID     *uuid.UUID          `json:"parent_id"`
}

// BuildGantt emits one row per task, subtasks included, in the graph's fetch
// order (position-sorted by the caller). Row color is the task override or
// the project color; progress follows Progress.
func BuildGantt(project *domain.Project, g *Graph, users map[uuid.UUID]domain.UserBrief) []GanttRow {
	rows := make([]GanttRow, 0, g.Len())

	for _, t := range g.Tasks() {
		color := t.Color
		if color == "" {
			color = project.Color
		}

		deps := make([]uuid.UUID, 0, len(t.DependencyIDs))
		deps = append(deps, t.DependencyIDs...)

		rows = append(rows, GanttRow{
			ID:           t.ID,
			Title:        t.Title,
			StartDate:    t.StartDate,
			DueDate:      t.DueDate,
			Status:       t.Status,
			Priority:     t.Priority,
			Color:        color,
			Progress:     Progress(t, g.Subtasks(t.ID)),
			Dependencies: deps,
			Assignees:    resolveBriefs(t.AssigneeIDs, users),
			ParentID:     t.ParentID,
		})
	}

	return rows
}
