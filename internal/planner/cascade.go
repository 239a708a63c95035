package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/domain"
)

// PlanDueDateShift computes the cascade for moving a task's due date. The
// origin's due date becomes newDue and its start date (when set) moves by the
// same delta; every task transitively reachable over the dependents relation
// has both dates (when set) moved by that delta too.
//
// The traversal is an explicit breadth-first worklist with a visited set
// seeded with the origin, so diamonds are shifted once and cycles terminate.
// The returned slice is the persistence batch, origin first; nothing is
// mutated here.
func PlanDueDateShift(g *Graph, taskID uuid.UUID, newDue time.Time) ([]domain.DateShift, error) {
	origin := g.Task(taskID)
	if origin == nil {
		return nil, fmt.Errorf("planner.PlanDueDateShift: %w", domain.ErrNotFound)
	}
	if origin.DueDate == nil {
		return nil, fmt.Errorf("planner.PlanDueDateShift: task has no due date: %w", domain.ErrInvalidState)
	}

	shift := newDue.Sub(*origin.DueDate)

	shifts := []domain.DateShift{shiftedDates(origin, shift, &newDue)}

	visited := map[uuid.UUID]bool{taskID: true}
	queue := append([]uuid.UUID(nil), g.Dependents(taskID)...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		t := g.Task(id)
		if t == nil {
			continue
		}

		shifts = append(shifts, shiftedDates(t, shift, nil))
		queue = append(queue, g.Dependents(id)...)
	}

	return shifts, nil
}

// shiftedDates builds the DateShift for one task. dueOverride replaces the
// shifted due date when set (used for the origin, whose due date is pinned to
// the caller-supplied value).
func shiftedDates(t *domain.Task, shift time.Duration, dueOverride *time.Time) domain.DateShift {
	s := domain.DateShift{TaskID: t.ID}

	if t.StartDate != nil {
		moved := t.StartDate.Add(shift)
		s.StartDate = &moved
	}
	switch {
	case dueOverride != nil:
		due := *dueOverride
		s.DueDate = &due
	case t.DueDate != nil:
		moved := t.DueDate.Add(shift)
		s.DueDate = &moved
	}

	return s
}

// ShiftedIDs extracts the task ids of a cascade batch.
func ShiftedIDs(shifts []domain.DateShift) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(shifts))
	for _, s := range shifts {
		ids = append(ids, s.TaskID)
	}
	return ids
}
