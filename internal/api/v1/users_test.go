package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/plank/internal/api/v1"
	"github.com/gosuda/plank/internal/domain"
)

func TestListUsers(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	_, api := humatest.New(t)
	store := &mockDataStore{
		users: &mockUserRepo{
			listActiveFunc: func(_ context.Context) ([]*domain.User, error) {
				return []*domain.User{
					{ID: uuid.New(), Username: "dana", PasswordHash: "secret", AvatarColor: "#111111"},
					{ID: uuid.New(), Username: "sam", PasswordHash: "secret", AvatarColor: "#222222"},
				}, nil
			},
		},
	}
	v1.RegisterUserRoutes(api, store)

	resp := api.GetCtx(userCtx(userID), "/users")

	require.Equal(t, http.StatusOK, resp.Code)
	var body []domain.UserBrief
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, "dana", body[0].Username)
	// Briefs never expose credentials.
	assert.NotContains(t, resp.Body.String(), "secret")
}

func TestUpdateMe(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("partial_update", func(t *testing.T) {
		t.Parallel()

		existing := &domain.User{ID: userID, Username: "dana", FullName: "Dana", AvatarColor: "#111111"}
		var updated *domain.User
		_, api := humatest.New(t)
		store := &mockDataStore{
			users: &mockUserRepo{
				getByIDFunc: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
					assert.Equal(t, userID, id)
					return existing, nil
				},
				updateFunc: func(_ context.Context, u *domain.User) error {
					updated = u
					return nil
				},
			},
		}
		v1.RegisterUserRoutes(api, store)

		resp := api.PutCtx(userCtx(userID), "/users/me", map[string]any{
			"avatar_color": "#ABCDEF",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		require.NotNil(t, updated)
		assert.Equal(t, "#ABCDEF", updated.AvatarColor)
		assert.Equal(t, "Dana", updated.FullName, "untouched fields survive")
	})

	t.Run("missing_user_context", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, &mockDataStore{users: &mockUserRepo{}})

		resp := api.PutCtx(context.Background(), "/users/me", map[string]any{
			"full_name": "Nobody",
		})

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		var created *domain.User
		_, api := humatest.New(t)
		store := &mockDataStore{
			users: &mockUserRepo{
				existsByEmailOrUsernameFunc: func(_ context.Context, email, username string) (bool, error) {
					assert.Equal(t, "sam@example.com", email)
					assert.Equal(t, "sam", username)
					return false, nil
				},
				createFunc: func(_ context.Context, u *domain.User) error {
					created = u
					return nil
				},
			},
		}
		v1.RegisterUserRoutes(api, store)

		resp := api.PostCtx(userCtx(userID), "/users", map[string]any{
			"email":    "sam@example.com",
			"username": "sam",
			"password": "initial-password",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		require.NotNil(t, created)
		assert.True(t, created.IsActive)
		assert.Equal(t, domain.DefaultColor, created.AvatarColor)
		assert.NotEmpty(t, created.PasswordHash)
		assert.NotEqual(t, "initial-password", created.PasswordHash)
	})

	t.Run("duplicate_is_conflict", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			users: &mockUserRepo{
				existsByEmailOrUsernameFunc: func(_ context.Context, _, _ string) (bool, error) {
					return true, nil
				},
			},
		}
		v1.RegisterUserRoutes(api, store)

		resp := api.PostCtx(userCtx(userID), "/users", map[string]any{
			"email":    "sam@example.com",
			"username": "sam",
			"password": "initial-password",
		})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})
}
