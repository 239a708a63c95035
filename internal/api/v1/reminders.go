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

type CreateReminderInput struct {
	TaskID uuid.UUID `path:"id" doc:"Task ID"`
	Body   struct {
		RemindAt time.Time `json:"remind_at" doc:"When to remind"`
		Message  string    `json:"message,omitempty" maxLength:"500" doc:"Reminder note"`
	}
}

type CreateReminderOutput struct {
	Body *domain.Reminder
}

type ListRemindersInput struct {
	TaskID uuid.UUID `path:"id" doc:"Task ID"`
}

type ListRemindersOutput struct {
	Body []*domain.Reminder
}

type DeleteReminderInput struct {
	ID uuid.UUID `path:"id" doc:"Reminder ID"`
}

func RegisterReminderRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-reminder",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/reminders",
		Summary:     "Create a reminder for a task",
		Tags:        []string{"Reminders"},
	}, func(ctx context.Context, input *CreateReminderInput) (*CreateReminderOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if _, err := store.Tasks().GetByID(ctx, userID, input.TaskID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to validate task", err)
		}

		r := &domain.Reminder{
			ID:        uuid.New(),
			TaskID:    input.TaskID,
			UserID:    userID,
			RemindAt:  input.Body.RemindAt,
			Message:   input.Body.Message,
			CreatedAt: time.Now(),
		}

		if err := store.Reminders().Create(ctx, r); err != nil {
			return nil, huma.Error500InternalServerError("failed to create reminder", err)
		}

		return &CreateReminderOutput{Body: r}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-reminders",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}/reminders",
		Summary:     "List the user's reminders for a task",
		Tags:        []string{"Reminders"},
	}, func(ctx context.Context, input *ListRemindersInput) (*ListRemindersOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if _, err := store.Tasks().GetByID(ctx, userID, input.TaskID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to validate task", err)
		}

		reminders, err := store.Reminders().ListByTask(ctx, userID, input.TaskID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list reminders", err)
		}

		return &ListRemindersOutput{Body: reminders}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-reminder",
		Method:      http.MethodDelete,
		Path:        "/tasks/reminders/{id}",
		Summary:     "Delete a reminder",
		Tags:        []string{"Reminders"},
	}, func(ctx context.Context, input *DeleteReminderInput) (*struct{}, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if err := store.Reminders().Delete(ctx, userID, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("reminder not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete reminder", err)
		}

		return nil, nil
	})
}
