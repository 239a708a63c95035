package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/api/ws"
	"github.com/gosuda/plank/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Projects() domain.ProjectRepository
	Tasks() domain.TaskRepository
	Reminders() domain.ReminderRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, username, password, fullName, avatarColor string) (*domain.User, error)
	Login(ctx context.Context, login, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	ForgotPassword(ctx context.Context, login string) (*domain.User, string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// BoardPublisher abstracts board event fan-out for handler testing.
// *ws.Hub satisfies this interface.
type BoardPublisher interface {
	PublishBoardEvent(ctx context.Context, event ws.BoardEvent) error
}
