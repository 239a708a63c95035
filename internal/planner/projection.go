package planner

import (
	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/domain"
)

// TaskBrief is the compact task projection embedded in detail responses.
type TaskBrief struct {
	ID       uuid.UUID           `json:"id"`
	Title    string              `json:"title"`
	Status   domain.TaskStatus   `json:"status"`
	Priority domain.TaskPriority `json:"priority"`
}

// TaskDetail is the full task projection returned by list endpoints and
// kanban columns: the task itself plus resolved assignee/subtask/dependency
// briefs and subtask completion counts.
type TaskDetail struct {
	domain.Task

	Assignees        []domain.UserBrief `json:"assignees"`
	Subtasks         []TaskBrief        `json:"subtasks"`
	Dependencies     []TaskBrief        `json:"dependencies"`
	SubtaskCount     int                `json:"subtask_count"`
	SubtaskCompleted int                `json:"subtask_completed"`
}

func brief(t *domain.Task) TaskBrief {
	return TaskBrief{ID: t.ID, Title: t.Title, Status: t.Status, Priority: t.Priority}
}

// BuildTaskDetail projects one task against the graph it was loaded with.
// users resolves assignee ids to briefs; unknown ids are skipped.
func BuildTaskDetail(g *Graph, t *domain.Task, users map[uuid.UUID]domain.UserBrief) TaskDetail {
	subtasks := g.Subtasks(t.ID)
	total, completed := SubtaskCounts(subtasks)

	d := TaskDetail{
		Task:             *t,
		Assignees:        resolveBriefs(t.AssigneeIDs, users),
		Subtasks:         make([]TaskBrief, 0, len(subtasks)),
		Dependencies:     make([]TaskBrief, 0, len(t.DependencyIDs)),
		SubtaskCount:     total,
		SubtaskCompleted: completed,
	}

	for _, s := range subtasks {
		d.Subtasks = append(d.Subtasks, brief(s))
	}
	for _, depID := range t.DependencyIDs {
		if dep := g.Task(depID); dep != nil {
			d.Dependencies = append(d.Dependencies, brief(dep))
		}
	}

	return d
}

func resolveBriefs(ids []uuid.UUID, users map[uuid.UUID]domain.UserBrief) []domain.UserBrief {
	out := make([]domain.UserBrief, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out
}
