package v1_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/plank/internal/api/ws"
	"github.com/gosuda/plank/internal/domain"
	"github.com/gosuda/plank/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the authenticated user into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserID, userID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users     domain.UserRepository
	projects  domain.ProjectRepository
	tasks     domain.TaskRepository
	reminders domain.ReminderRepository
}

func (m *mockDataStore) Users() domain.UserRepository         { return m.users }
func (m *mockDataStore) Projects() domain.ProjectRepository   { return m.projects }
func (m *mockDataStore) Tasks() domain.TaskRepository         { return m.tasks }
func (m *mockDataStore) Reminders() domain.ReminderRepository { return m.reminders }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc                  func(ctx context.Context, u *domain.User) error
	getByIDFunc                 func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByLoginFunc              func(ctx context.Context, login string) (*domain.User, error)
	existsByEmailOrUsernameFunc func(ctx context.Context, email, username string) (bool, error)
	updateFunc                  func(ctx context.Context, u *domain.User) error
	listActiveFunc              func(ctx context.Context) ([]*domain.User, error)
	listByIDsFunc               func(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error)
	createResetTokenFunc        func(ctx context.Context, t *domain.PasswordResetToken) error
	getValidResetTokenFunc      func(ctx context.Context, token string, now time.Time) (*domain.PasswordResetToken, error)
	markResetTokenUsedFunc      func(ctx context.Context, id uuid.UUID) error
	invalidateResetTokensFunc   func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	return m.getByLoginFunc(ctx, login)
}

func (m *mockUserRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	return m.existsByEmailOrUsernameFunc(ctx, email, username)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.updateFunc(ctx, u)
}

func (m *mockUserRepo) ListActive(ctx context.Context) ([]*domain.User, error) {
	return m.listActiveFunc(ctx)
}

func (m *mockUserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	return m.listByIDsFunc(ctx, ids)
}

func (m *mockUserRepo) CreateResetToken(ctx context.Context, t *domain.PasswordResetToken) error {
	return m.createResetTokenFunc(ctx, t)
}

func (m *mockUserRepo) GetValidResetToken(ctx context.Context, token string, now time.Time) (*domain.PasswordResetToken, error) {
	return m.getValidResetTokenFunc(ctx, token, now)
}

func (m *mockUserRepo) MarkResetTokenUsed(ctx context.Context, id uuid.UUID) error {
	return m.markResetTokenUsedFunc(ctx, id)
}

func (m *mockUserRepo) InvalidateResetTokens(ctx context.Context, userID uuid.UUID) error {
	return m.invalidateResetTokensFunc(ctx, userID)
}

// ---------------------------------------------------------------------------
// Mock ProjectRepository
// ---------------------------------------------------------------------------

type mockProjectRepo struct {
	createFunc  func(ctx context.Context, p *domain.Project) error
	getByIDFunc func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Project, error)
	listFunc    func(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]*domain.Project, error)
	updateFunc  func(ctx context.Context, p *domain.Project) error
	deleteFunc  func(ctx context.Context, ownerID, id uuid.UUID) error
	countsFunc  func(ctx context.Context, projectID uuid.UUID) (domain.ProjectCounts, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	return m.createFunc(ctx, p)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Project, error) {
	return m.getByIDFunc(ctx, ownerID, id)
}

func (m *mockProjectRepo) List(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]*domain.Project, error) {
	return m.listFunc(ctx, ownerID, includeArchived)
}

func (m *mockProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	return m.updateFunc(ctx, p)
}

func (m *mockProjectRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.deleteFunc(ctx, ownerID, id)
}

func (m *mockProjectRepo) Counts(ctx context.Context, projectID uuid.UUID) (domain.ProjectCounts, error) {
	return m.countsFunc(ctx, projectID)
}

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc              func(ctx context.Context, t *domain.Task) error
	getByIDFunc             func(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)
	listFunc                func(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error)
	listByProjectFunc       func(ctx context.Context, ownerID, projectID uuid.UUID) ([]*domain.Task, error)
	updateFunc              func(ctx context.Context, ownerID uuid.UUID, t *domain.Task) error
	deleteFunc              func(ctx context.Context, ownerID, id uuid.UUID) error
	replaceAssigneesFunc    func(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error
	replaceDependenciesFunc func(ctx context.Context, taskID uuid.UUID, dependsOn []uuid.UUID) error
	shiftDatesFunc          func(ctx context.Context, ownerID uuid.UUID, shifts []domain.DateShift) error
	listDueBetweenFunc      func(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*domain.Task, error)
	listOverlappingFunc     func(ctx context.Context, ownerID uuid.UUID, from, to time.Time, projectID *uuid.UUID) ([]*domain.Task, error)
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, ownerID, id)
}

func (m *mockTaskRepo) List(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, error) {
	return m.listFunc(ctx, ownerID, filter)
}

func (m *mockTaskRepo) ListByProject(ctx context.Context, ownerID, projectID uuid.UUID) ([]*domain.Task, error) {
	return m.listByProjectFunc(ctx, ownerID, projectID)
}

func (m *mockTaskRepo) Update(ctx context.Context, ownerID uuid.UUID, t *domain.Task) error {
	return m.updateFunc(ctx, ownerID, t)
}

func (m *mockTaskRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return m.deleteFunc(ctx, ownerID, id)
}

func (m *mockTaskRepo) ReplaceAssignees(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	return m.replaceAssigneesFunc(ctx, taskID, userIDs)
}

func (m *mockTaskRepo) ReplaceDependencies(ctx context.Context, taskID uuid.UUID, dependsOn []uuid.UUID) error {
	return m.replaceDependenciesFunc(ctx, taskID, dependsOn)
}

func (m *mockTaskRepo) ShiftDates(ctx context.Context, ownerID uuid.UUID, shifts []domain.DateShift) error {
	return m.shiftDatesFunc(ctx, ownerID, shifts)
}

func (m *mockTaskRepo) ListDueBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*domain.Task, error) {
	return m.listDueBetweenFunc(ctx, ownerID, from, to)
}

func (m *mockTaskRepo) ListOverlapping(ctx context.Context, ownerID uuid.UUID, from, to time.Time, projectID *uuid.UUID) ([]*domain.Task, error) {
	return m.listOverlappingFunc(ctx, ownerID, from, to, projectID)
}

// ---------------------------------------------------------------------------
// Mock ReminderRepository
// ---------------------------------------------------------------------------

type mockReminderRepo struct {
	createFunc       func(ctx context.Context, r *domain.Reminder) error
	listByTaskFunc   func(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.Reminder, error)
	deleteFunc       func(ctx context.Context, userID, id uuid.UUID) error
	deleteByTaskFunc func(ctx context.Context, taskID uuid.UUID) error
}

func (m *mockReminderRepo) Create(ctx context.Context, r *domain.Reminder) error {
	return m.createFunc(ctx, r)
}

func (m *mockReminderRepo) ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]*domain.Reminder, error) {
	return m.listByTaskFunc(ctx, userID, taskID)
}

func (m *mockReminderRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.deleteFunc(ctx, userID, id)
}

func (m *mockReminderRepo) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	return m.deleteByTaskFunc(ctx, taskID)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc       func(ctx context.Context, email, username, password, fullName, avatarColor string) (*domain.User, error)
	loginFunc          func(ctx context.Context, login, password string) (string, string, error)
	refreshTokenFunc   func(ctx context.Context, refreshToken string) (string, error)
	forgotPasswordFunc func(ctx context.Context, login string) (*domain.User, string, error)
	resetPasswordFunc  func(ctx context.Context, token, newPassword string) error
	getUserFunc        func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, username, password, fullName, avatarColor string) (*domain.User, error) {
	return m.registerFunc(ctx, email, username, password, fullName, avatarColor)
}

func (m *mockAuthService) Login(ctx context.Context, login, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, login, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, login string) (*domain.User, string, error) {
	return m.forgotPasswordFunc(ctx, login)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.resetPasswordFunc(ctx, token, newPassword)
}

func (m *mockAuthService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return m.getUserFunc(ctx, userID)
}

// ---------------------------------------------------------------------------
// Mock BoardPublisher
// ---------------------------------------------------------------------------

type mockBoardPublisher struct {
	events []ws.BoardEvent
	err    error
}

func (m *mockBoardPublisher) PublishBoardEvent(_ context.Context, event ws.BoardEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}
