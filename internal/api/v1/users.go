package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/auth"
	"github.com/gosuda/plank/internal/domain"
	"github.com/gosuda/plank/internal/server/middleware"
)

type ListUsersOutput struct {
	Body []domain.UserBrief
}

type GetUserInput struct {
	ID uuid.UUID `path:"id" doc:"User ID"`
}

type GetUserOutput struct {
	Body domain.UserBrief
}

type UpdateMeInput struct {
	Body struct {
		FullName    *string `json:"full_name,omitempty" maxLength:"255" doc:"Display name"`
		AvatarColor *string `json:"avatar_color,omitempty" doc:"Avatar hex color"`
		Email       *string `json:"email,omitempty" maxLength:"255" doc:"Email"`
	}
}

type UpdateMeOutput struct {
	Body *domain.User
}

type CreateUserInput struct {
	Body struct {
		Email       string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Username    string `json:"username" minLength:"1" maxLength:"64" doc:"Username"`
		Password    string `json:"password" minLength:"8" maxLength:"128" doc:"Initial password"` //nolint:gosec // G117: provisioning DTO
		FullName    string `json:"full_name,omitempty" maxLength:"255" doc:"Display name"`
		AvatarColor string `json:"avatar_color,omitempty" doc:"Avatar hex color"`
	}
}

type CreateUserOutput struct {
	Body *domain.User
}

func RegisterUserRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List active users",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
		users, err := store.Users().ListActive(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list users", err)
		}

		briefs := make([]domain.UserBrief, 0, len(users))
		for _, u := range users {
			briefs = append(briefs, u.Brief())
		}

		return &ListUsersOutput{Body: briefs}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/users/{id}",
		Summary:     "Get a user by ID",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *GetUserInput) (*GetUserOutput, error) {
		u, err := store.Users().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to get user", err)
		}

		return &GetUserOutput{Body: u.Brief()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-me",
		Method:      http.MethodPut,
		Path:        "/users/me",
		Summary:     "Update the authenticated user's profile",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *UpdateMeInput) (*UpdateMeOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		u, err := store.Users().GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to get user", err)
		}

		if input.Body.FullName != nil {
			u.FullName = *input.Body.FullName
		}
		if input.Body.AvatarColor != nil {
			u.AvatarColor = *input.Body.AvatarColor
		}
		if input.Body.Email != nil {
			u.Email = *input.Body.Email
		}
		u.UpdatedAt = time.Now()

		if err := store.Users().Update(ctx, u); err != nil {
			return nil, huma.Error500InternalServerError("failed to update user", err)
		}

		return &UpdateMeOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-user",
		Method:      http.MethodPost,
		Path:        "/users",
		Summary:     "Provision a team member",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
		exists, err := store.Users().ExistsByEmailOrUsername(ctx, input.Body.Email, input.Body.Username)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to check existing users", err)
		}
		if exists {
			return nil, huma.Error409Conflict("email or username already registered")
		}

		hash, err := auth.HashPassword(input.Body.Password)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to hash password", err)
		}

		color := input.Body.AvatarColor
		if color == "" {
			color = domain.DefaultColor
		}

		now := time.Now()
		u := &domain.User{
			ID:           uuid.New(),
			Email:        input.Body.Email,
			Username:     input.Body.Username,
			FullName:     input.Body.FullName,
			AvatarColor:  color,
			PasswordHash: hash,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := store.Users().Create(ctx, u); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("email or username already registered")
			}
			return nil, huma.Error500InternalServerError("failed to create user", err)
		}

		return &CreateUserOutput{Body: u}, nil
	})
}
