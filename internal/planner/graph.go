// Package planner holds the in-memory task graph and the derived views built
// on it: date cascades, progress aggregation, and the kanban/gantt/calendar
// projections. A Graph is rebuilt from the store on every request; nothing
// here is cached across requests.
package planner

import (
	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/domain"
)

// Graph is a project's tasks viewed as nodes with two edge sets: the subtask
// tree (ParentID) and the depends-on DAG (DependencyIDs). The dependents
// relation is the transpose of depends-on and is derived here rather than
// stored. The depends-on relation is not validated, so cycles are possible;
// traversals must stay termination-safe.
type Graph struct {
	tasks      map[uuid.UUID]*domain.Task
	order      []uuid.UUID // insertion order, as fetched
	dependents map[uuid.UUID][]uuid.UUID
	children   map[uuid.UUID][]uuid.UUID
}

// NewGraph indexes tasks by id and builds the dependents and children
// transposes. Edges pointing at tasks outside the slice are ignored.
func NewGraph(tasks []*domain.Task) *Graph {
	g := &Graph{
		tasks:      make(map[uuid.UUID]*domain.Task, len(tasks)),
		order:      make([]uuid.UUID, 0, len(tasks)),
		dependents: make(map[uuid.UUID][]uuid.UUID),
		children:   make(map[uuid.UUID][]uuid.UUID),
	}

	for _, t := range tasks {
		g.tasks[t.ID] = t
		g.order = append(g.order, t.ID)
	}

	for _, t := range tasks {
		for _, dep := range t.DependencyIDs {
			if _, ok := g.tasks[dep]; !ok {
				continue
			}
			g.dependents[dep] = append(g.dependents[dep], t.ID)
		}
		if t.ParentID != nil {
			if _, ok := g.tasks[*t.ParentID]; ok {
				g.children[*t.ParentID] = append(g.children[*t.ParentID], t.ID)
			}
		}
	}

	return g
}

// Task returns the task with the given id, or nil.
func (g *Graph) Task(id uuid.UUID) *domain.Task {
	return g.tasks[id]
}

// Tasks returns all tasks in fetch order.
func (g *Graph) Tasks() []*domain.Task {
	out := make([]*domain.Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id])
	}
	return out
}

// Dependents returns the ids of tasks that list id as a dependency.
func (g *Graph) Dependents(id uuid.UUID) []uuid.UUID {
	return g.dependents[id]
}

// Subtasks returns the direct children of id in the parent tree, in fetch
// order.
func (g *Graph) Subtasks(id uuid.UUID) []*domain.Task {
	ids := g.children[id]
	if len(ids) == 0 {
		return nil
	}
	out := make([]*domain.Task, 0, len(ids))
	for _, cid := range ids {
		out = append(out, g.tasks[cid])
	}
	return out
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int {
	return len(g.tasks)
}
