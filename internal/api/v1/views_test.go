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
	"github.com/gosuda/plank/internal/planner"
)

func TestGetKanban(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	projectID := uuid.New()

	t.Run("partitions_into_five_columns", func(t *testing.T) {
		t.Parallel()

		tasks := []*domain.Task{
			{ID: uuid.New(), ProjectID: projectID, Title: "One", Status: domain.TaskStatusTodo, Position: 0},
			{ID: uuid.New(), ProjectID: projectID, Title: "Two", Status: domain.TaskStatusInProgress, Position: 1},
			{ID: uuid.New(), ProjectID: projectID, Title: "Three", Status: domain.TaskStatusDone, Position: 2},
		}

		_, api := humatest.New(t)
		store := &mockDataStore{
			projects: &mockProjectRepo{
				getByIDFunc: func(_ context.Context, oid, pid uuid.UUID) (*domain.Project, error) {
					assert.Equal(t, userID, oid)
					assert.Equal(t, projectID, pid)
					return &domain.Project{ID: projectID, OwnerID: userID, Name: "Alpha"}, nil
				},
			},
			tasks: &mockTaskRepo{
				listByProjectFunc: func(_ context.Context, _, _ uuid.UUID) ([]*domain.Task, error) {
					return tasks, nil
				},
			},
		}
		v1.RegisterViewRoutes(api, store)

		resp := api.GetCtx(userCtx(userID), "/tasks/kanban/"+projectID.String())

		require.Equal(t, http.StatusOK, resp.Code)
		var board planner.KanbanBoard
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&board))
		require.Len(t, board.Columns, 5)
		assert.Equal(t, projectID, board.ProjectID)

		titles := make([]string, 0, 5)
		total := 0
		for _, col := range board.Columns {
			titles = append(titles, col.Title)
			total += len(col.Tasks)
		}
		assert.Equal(t, []string{"Backlog", "To Do", "In Progress", "Review", "Done"}, titles)
		assert.Equal(t, len(tasks), total, "each task lands in exactly one column")

		// WIP limit only advertised on the in-progress column.
		require.NotNil(t, board.Columns[2].WIPLimit)
		assert.Equal(t, 3, *board.Columns[2].WIPLimit)
		assert.Nil(t, board.Columns[0].WIPLimit)
	})

	t.Run("foreign_project_is_404", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			projects: &mockProjectRepo{
				getByIDFunc: func(_ context.Context, _, _ uuid.UUID) (*domain.Project, error) {
					return nil, domain.ErrNotFound
				},
			},
		}
		v1.RegisterViewRoutes(api, store)

		resp := api.GetCtx(userCtx(userID), "/tasks/kanban/"+projectID.String())

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestGetGantt(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	projectID := uuid.New()

	t.Run("rows_inherit_project_color", func(t *testing.T) {
		t.Parallel()

		tasks := []*domain.Task{
			{ID: uuid.New(), ProjectID: projectID, Title: "Uncolored", Status: domain.TaskStatusTodo},
			{ID: uuid.New(), ProjectID: projectID, Title: "Colored", Status: domain.TaskStatusTodo, Color: "#FF0000"},
		}

		_, api := humatest.New(t)
		store := &mockDataStore{
			projects: &mockProjectRepo{
				getByIDFunc: func(_ context.Context, _, _ uuid.UUID) (*domain.Project, error) {
					return &domain.Project{ID: projectID, OwnerID: userID, Name: "Alpha", Color: "#00FF00"}, nil
				},
			},
			tasks: &mockTaskRepo{
				listByProjectFunc: func(_ context.Context, _, _ uuid.UUID) ([]*domain.Task, error) {
					return tasks, nil
				},
			},
		}
		v1.RegisterViewRoutes(api, store)

		resp := api.GetCtx(userCtx(userID), "/tasks/gantt/"+projectID.String())

		require.Equal(t, http.StatusOK, resp.Code)
		var rows []planner.GanttRow
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "#00FF00", rows[0].Color)
		assert.Equal(t, "#FF0000", rows[1].Color)
	})

	t.Run("progress_follows_subtasks", func(t *testing.T) {
		t.Parallel()

		parentID := uuid.New()
		tasks := []*domain.Task{
			{ID: parentID, ProjectID: projectID, Title: "Parent", Status: domain.TaskStatusInProgress},
			{ID: uuid.New(), ProjectID: projectID, ParentID: &parentID, Title: "Sub done", Status: domain.TaskStatusDone},
			{ID: uuid.New(), ProjectID: projectID, ParentID: &parentID, Title: "Sub open", Status: domain.TaskStatusTodo},
		}

		_, api := humatest.New(t)
		store := &mockDataStore{
			projects: &mockProjectRepo{
				getByIDFunc: func(_ context.Context, _, _ uuid.UUID) (*domain.Project, error) {
					return &domain.Project{ID: projectID, OwnerID: userID, Name: "Alpha"}, nil
				},
			},
			tasks: &mockTaskRepo{
				listByProjectFunc: func(_ context.Context, _, _ uuid.UUID) ([]*domain.Task, error) {
					return tasks, nil
				},
			},
		}
		v1.RegisterViewRoutes(api, store)

		resp := api.GetCtx(userCtx(userID), "/tasks/gantt/"+projectID.String())

		require.Equal(t, http.StatusOK, resp.Code)
		var rows []planner.GanttRow
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
		require.Len(t, rows, 3)
		// One of two subtasks done.
		assert.InDelta(t, 50.0, rows[0].Progress, 0.001)
	})
}
