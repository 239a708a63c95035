package planner

import "github.com/gosuda/plank/internal/domain"

// statusProgress maps a status to the completion percentage used when a task
// has no subtasks to aggregate over.
var statusProgress = map[domain.TaskStatus]float64{
	domain.TaskStatusBacklog:    0,
	domain.TaskStatusTodo:       10,
	domain.TaskStatusInProgress: 50,
	domain.TaskStatusReview:     80,
	domain.TaskStatusDone:       100,
}

// Progress returns the completion percentage of a task in [0, 100]. With
// subtasks it is the done fraction scaled to 100; without, it comes from the
// fixed status mapping. Unknown statuses count as 0.
func Progress(t *domain.Task, subtasks []*domain.Task) float64 {
	if len(subtasks) > 0 {
		done := 0
		for _, s := range subtasks {
			if s.Status == domain.TaskStatusDone {
				done++
			}
		}
		return float64(done) / float64(len(subtasks)) * 100
	}
	return statusProgress[t.Status]
}

// SubtaskCounts returns the total and done subtask counts used by the task
// detail projection.
func SubtaskCounts(subtasks []*domain.Task) (total, completed int) {
	for _, s := range subtasks {
		if s.Status == domain.TaskStatusDone {
			completed++
		}
	}
	return len(subtasks), completed
}
