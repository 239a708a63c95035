package planner

import (
	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/domain"
)

// inProgressWIPLimit is advisory display metadata on the in_progress column;
// writes are never rejected for exceeding it.
var inProgressWIPLimit = 3

// columnConfig fixes the five board columns in workflow order.
var columnConfig = []struct {
	status   domain.TaskStatus
	title    string
	wipLimit *int
}{
	{domain.TaskStatusBacklog, "Backlog", nil},
	{domain.TaskStatusTodo, "To Do", nil},
	{domain.TaskStatusInProgress, "In Progress", &inProgressWIPLimit},
	{domain.TaskStatusReview, "Review", nil},
	{domain.TaskStatusDone, "Done", nil},
}

type KanbanColumn struct {
	Status   domain.TaskStatus `json:"status"`
	Title    string            `json:"title"`
	Tasks    []TaskDetail      `json:"tasks"`
	WIPLimit *int              `json:"wip_limit"`
}

type KanbanBoard struct {
	ProjectID uuid.UUID      `json:"project_id"`
	Columns   []KanbanColumn `json:"columns"`
}

// BuildKanban partitions a project's top-level tasks into the five fixed
// columns. The graph must be built from tasks fetched in position order;
// that order is preserved within each column. Subtasks are excluded from
// columns but still feed the per-card subtask counts.
func BuildKanban(projectID uuid.UUID, g *Graph, users map[uuid.UUID]domain.UserBrief) KanbanBoard {
	board := KanbanBoard{
		ProjectID: projectID,
		Columns:   make([]KanbanColumn, 0, len(columnConfig)),
	}

	for _, cfg := range columnConfig {
		col := KanbanColumn{
			Status:   cfg.status,
			Title:    cfg.title,
			Tasks:    make([]TaskDetail, 0),
			WIPLimit: cfg.wipLimit,
		}
		for _, t := range g.Tasks() {
			if t.ParentID != nil || t.Status != cfg.status {
				continue
			}
			col.Tasks = append(col.Tasks, BuildTaskDetail(g, t, users))
		}
		board.Columns = append(board.Columns, col)
	}

	return board
}
