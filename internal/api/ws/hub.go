// Package ws streams board change events to WebSocket clients. Events are
// fanned out through Redis pub/sub so multiple server instances stay in sync.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	redisstore "github.com/gosuda/plank/internal/store/redis"
)

// BoardEvent is the payload published on task mutations. Clients use it to
// refresh the affected board; it carries ids, not full task bodies.
type BoardEvent struct {
	Type      string      `json:"type"` // task_created, task_updated, task_deleted, tasks_reordered, dates_cascaded
	ProjectID uuid.UUID   `json:"project_id"`
	TaskIDs   []uuid.UUID `json:"task_ids,omitempty"`
	At        time.Time   `json:"at"`
}

// Hub manages WebSocket connections backed by Redis pub/sub.
type Hub struct {
	pubsub *redisstore.PubSub
}

// NewHub creates a new WebSocket hub.
func NewHub(pubsub *redisstore.PubSub) *Hub {
	return &Hub{pubsub: pubsub}
}

// ServeBoard handles WebSocket connections for board updates. Subscribes to
// the project's Redis channel and forwards events until the client goes away.
func (h *Hub) ServeBoard(w http.ResponseWriter, r *http.Request) {
	projectIDStr := chi.URLParam(r, "projectID")
	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	channel := redisstore.BoardChannel(projectID)

	messages, cleanup, err := h.pubsub.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}

// PublishBoardEvent sends a board event for a project. Publishing is
// best-effort: callers log failures but never fail the request over them.
func (h *Hub) PublishBoardEvent(ctx context.Context, event BoardEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ws.Hub.PublishBoardEvent: marshal: %w", err)
	}

	if err := h.pubsub.Publish(ctx, redisstore.BoardChannel(event.ProjectID), payload); err != nil {
		return fmt.Errorf("ws.Hub.PublishBoardEvent: %w", err)
	}

	return nil
}
