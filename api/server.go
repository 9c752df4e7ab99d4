package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"soporte-itsm/api/handlers"
	"soporte-itsm/config"
	"soporte-itsm/core/incidents"
	"soporte-itsm/core/store"
	"soporte-itsm/core/tasks"
	"soporte-itsm/core/utils"
)

type ServerDeps struct {
	Cfg          *config.AppConfig
	Logger       *utils.Logger
	DB           *store.DB
	IncidentsSvc *incidents.Service
	TasksSvc     *tasks.Service
	Audits       store.AuditStore
}

type Server struct {
	cfg          *config.AppConfig
	logger       *utils.Logger
	db           *store.DB
	incidentsSvc *incidents.Service
	tasksSvc     *tasks.Service
	audits       store.AuditStore
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		cfg:          deps.Cfg,
		logger:       deps.Logger,
		db:           deps.DB,
		incidentsSvc: deps.IncidentsSvc,
		tasksSvc:     deps.TasksSvc,
		audits:       deps.Audits,
	}
}

type routeHandlers struct {
	incidents *handlers.IncidentsHandler
	tasks     *handlers.TasksHandler
	audit     *handlers.AuditHandler
	health    *handlers.HealthHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		incidents: handlers.NewIncidentsHandler(s.cfg, s.incidentsSvc, s.logger),
		tasks:     handlers.NewTasksHandler(s.tasksSvc, s.logger),
		audit:     handlers.NewAuditHandler(s.audits, s.logger),
		health:    handlers.NewHealthHandler(s.db),
	}
}

// Handler builds the full HTTP stack: middleware plus the JSON API mounted
// under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.loggingMiddleware)
	s.routes(r)
	return r
}
