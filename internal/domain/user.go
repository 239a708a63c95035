package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name,omitempty"`
	AvatarColor  string    `json:"avatar_color"`
	PasswordHash string    `json:"-"` // argon2id
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserBrief is the compact projection embedded in task and view responses.
type UserBrief struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name,omitempty"`
	AvatarColor string    `json:"avatar_color"`
}

// Brief returns the compact projection of u.
func (u *User) Brief() UserBrief {
	return UserBrief{
		ID:          u.ID,
		Username:    u.Username,
		FullName:    u.FullName,
		AvatarColor: u.AvatarColor,
	}
}

// PasswordResetToken is a single-use token for the self-hosted password
// reset flow.
type PasswordResetToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetByLogin matches either email or username.
	GetByLogin(ctx context.Context, login string) (*User, error)
	// ExistsByEmailOrUsername reports whether another user already claims
	// either identifier.
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Update(ctx context.Context, u *User) error
	ListActive(ctx context.Context) ([]*User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)

	// Password reset tokens.
	CreateResetToken(ctx context.Context, t *PasswordResetToken) error
	// GetValidResetToken returns an unused, unexpired token.
	GetValidResetToken(ctx context.Context, token string, now time.Time) (*PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, id uuid.UUID) error
	// InvalidateResetTokens marks all unused tokens of a user as used.
	InvalidateResetTokens(ctx context.Context, userID uuid.UUID) error
}
