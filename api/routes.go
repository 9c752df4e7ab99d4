package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) routes(r chi.Router) {
	h := s.newRouteHandlers()

	r.Route("/api", func(r chi.Router) {
		r.MethodFunc(http.MethodGet, "/health", h.health.Health)

		r.MethodFunc(http.MethodPost, "/incidents", h.incidents.Create)
		r.MethodFunc(http.MethodGet, "/incidents", h.incidents.List)
		r.MethodFunc(http.MethodPut, "/incidents", h.incidents.Update)
		r.MethodFunc(http.MethodGet, "/incidents/{id}", h.incidents.Get)
		r.MethodFunc(http.MethodPut, "/incidents/{id}", h.incidents.Update)
		r.MethodFunc(http.MethodDelete, "/incidents/{id}", h.incidents.Delete)

		r.MethodFunc(http.MethodGet, "/tasks", h.tasks.List)
		r.MethodFunc(http.MethodPost, "/tasks", h.tasks.Create)
		r.MethodFunc(http.MethodPut, "/tasks", h.tasks.Toggle)

		r.MethodFunc(http.MethodGet, "/audit", h.audit.List)
		r.MethodFunc(http.MethodPost, "/audit", h.audit.Create)

		r.MethodFunc(http.MethodGet, "/dashboard", h.incidents.Dashboard)
	})
}
