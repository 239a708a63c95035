package planner

import (
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/domain"
)

// CalendarEvent is a task rendered for the calendar view. Start falls back
// to the due date (and vice versa) when only one of the two is set.
type CalendarEvent struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Start       *time.Time          `json:"start"`
	End         *time.Time          `json:"end"`
	Color       string              `json:"color"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	ProjectID   uuid.UUID           `json:"project_id"`
	ProjectName string              `json:"project_name"`
	Assignees   []domain.UserBrief  `json:"assignees"`
}

// BuildCalendarEvents projects date-range tasks into calendar events. The
// caller selects the overlapping tasks (store-side range query); projects
// resolves project linkage and the color fallback.
func BuildCalendarEvents(tasks []*domain.Task, projects map[uuid.UUID]*domain.Project, users map[uuid.UUID]domain.UserBrief) []CalendarEvent {
	events := make([]CalendarEvent, 0, len(tasks))

	for _, t := range tasks {
		p := projects[t.ProjectID]
		if p == nil {
			continue
		}

		color := t.Color
		if color == "" {
			color = p.Color
		}

		start, end := t.StartDate, t.DueDate
		if start == nil {
			start = t.DueDate
		}
		if end == nil {
			end = t.StartDate
		}

		events = append(events, CalendarEvent{
			ID:          t.ID,
			Title:       t.Title,
			Start:       start,
			End:         end,
			Color:       color,
			Status:      t.Status,
			Priority:    t.Priority,
			ProjectID:   t.ProjectID,
			ProjectName: p.Name,
			Assignees:   resolveBriefs(t.AssigneeIDs, users),
		})
	}

	return events
}

// UpcomingDeadline annotates a due task with the whole days remaining until
// its due date.
type UpcomingDeadline struct {
	ID           uuid.UUID           `json:"id"`
	Title        string              `json:"title"`
	DueDate      time.Time           `json:"due_date"`
	Priority     domain.TaskPriority `json:"priority"`
	ProjectName  string              `json:"project_name"`
	ProjectColor string              `json:"project_color"`
	DaysUntil    int                 `json:"days_until"`
}

// BuildUpcoming projects tasks from a due-date window query. days_until is
// calendar-day distance (due date's date minus today), not elapsed hours.
func BuildUpcoming(tasks []*domain.Task, projects map[uuid.UUID]*domain.Project, now time.Time) []UpcomingDeadline {
	today := truncateToDay(now)
	out := make([]UpcomingDeadline, 0, len(tasks))

	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		p := projects[t.ProjectID]
		if p == nil {
			continue
		}

		due := truncateToDay(*t.DueDate)
		out = append(out, UpcomingDeadline{
			ID:           t.ID,
			Title:        t.Title,
			DueDate:      *t.DueDate,
			Priority:     t.Priority,
			ProjectName:  p.Name,
			ProjectColor: p.Color,
			DaysUntil:    int(due.Sub(today).Hours() / 24),
		})
	}

	return out
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
