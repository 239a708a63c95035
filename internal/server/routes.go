package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/plank/internal/api/v1"
	"github.com/gosuda/plank/internal/api/ws"
	"github.com/gosuda/plank/internal/auth"
	"github.com/gosuda/plank/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, authSvc *auth.Service) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, authSvc *auth.Service, hub *ws.Hub) {
	v1.RegisterMeRoute(api, authSvc)
	v1.RegisterUserRoutes(api, store)
	v1.RegisterProjectRoutes(api, store)
	v1.RegisterTaskRoutes(api, store, hub)
	v1.RegisterReminderRoutes(api, store)
	v1.RegisterViewRoutes(api, store)
	v1.RegisterCalendarRoutes(api, store)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/board/{projectID}", hub.ServeBoard)
}
