package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/gosuda/plank/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrInvalidResetToken  = errors.New("auth: invalid or expired reset token")
)

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

const resetTokenTTL = time.Hour

// Service provides authentication operations: registration, login, token
// refresh, and the self-hosted password reset flow.
type Service struct {
	userRepo   domain.UserRepository
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a new auth service.
func NewService(userRepo domain.UserRepository, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register creates a new user. Email and username must both be unclaimed;
// a duplicate surfaces as ErrUserAlreadyExists (conflict, not server error).
// The password is hashed with argon2id before storage.
func (s *Service) Register(ctx context.Context, email, username, password, fullName, avatarColor string) (*domain.User, error) {
	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("auth.Register: %w", ErrUserAlreadyExists)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	if avatarColor == "" {
		avatarColor = domain.DefaultColor
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		FullName:     fullName,
		AvatarColor:  avatarColor,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	return user, nil
}

// Login validates credentials (email or username) and returns access +
// refresh JWT tokens.
func (s *Service) Login(ctx context.Context, login, password string) (accessToken, refreshToken string, err error) {
	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !user.IsActive || !verifyPassword(password, user.PasswordHash) {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	accessToken, err = IssueAccessToken(s.jwtSecret, user.ID, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	refreshToken, err = IssueRefreshToken(s.jwtSecret, user.ID, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	return accessToken, refreshToken, nil
}

// RefreshToken validates a refresh token and issues a new access token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	if claims.TokenType != tokenTypeRefresh {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: invalid user id: %w", err)
	}

	// Verify the user still exists and is active.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrUserNotFound)
	}

	newAccess, err := IssueAccessToken(s.jwtSecret, user.ID, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	return newAccess, nil
}

// ForgotPassword invalidates the user's outstanding reset tokens and issues
// a fresh single-use token with a one hour expiry. The token is returned to
// the caller directly (self-hosted deployments have no mail delivery).
func (s *Service) ForgotPassword(ctx context.Context, login string) (*domain.User, string, error) {
	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil {
		return nil, "", fmt.Errorf("auth.ForgotPassword: %w", ErrUserNotFound)
	}

	if err := s.userRepo.InvalidateResetTokens(ctx, user.ID); err != nil {
		return nil, "", fmt.Errorf("auth.ForgotPassword: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return nil, "", fmt.Errorf("auth.ForgotPassword: %w", err)
	}

	now := time.Now()
	reset := &domain.PasswordResetToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: now.Add(resetTokenTTL),
		CreatedAt: now,
	}

	if err := s.userRepo.CreateResetToken(ctx, reset); err != nil {
		return nil, "", fmt.Errorf("auth.ForgotPassword: %w", err)
	}

	return user, token, nil
}

// ResetPassword consumes a valid reset token and replaces the user's
// password hash.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	reset, err := s.userRepo.GetValidResetToken(ctx, token, time.Now())
	if err != nil {
		return fmt.Errorf("auth.ResetPassword: %w", ErrInvalidResetToken)
	}

	user, err := s.userRepo.GetByID(ctx, reset.UserID)
	if err != nil {
		return fmt.Errorf("auth.ResetPassword: %w", ErrUserNotFound)
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth.ResetPassword: %w", err)
	}
	user.PasswordHash = hash

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("auth.ResetPassword: %w", err)
	}

	if err := s.userRepo.MarkResetTokenUsed(ctx, reset.ID); err != nil {
		return fmt.Errorf("auth.ResetPassword: %w", err)
	}

	return nil
}

// GetUser returns a user by ID (for the /auth/me endpoint).
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("auth.GetUser: %w", err)
	}

	return user, nil
}

// HashPassword exposes the argon2id hash for user creation outside the
// register flow (team member provisioning).
func HashPassword(password string) (string, error) {
	return hashPassword(password)
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against an argon2id hash.
func verifyPassword(password, encoded string) bool {
	// Split salt$hash
	var saltHex, hashHex string
	for i := range len(encoded) {
		if encoded[i] == '$' {
			saltHex = encoded[:i]
			hashHex = encoded[i+1:]
			break
		}
	}

	if saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expectedHash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	// Constant-time comparison to prevent timing attacks.
	if len(computed) != len(expectedHash) {
		return false
	}

	var diff byte
	for i := range computed {
		diff |= computed[i] ^ expectedHash[i]
	}

	return diff == 0
}
