package incidents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"soporte-itsm/config"
	"soporte-itsm/core/audit"
	"soporte-itsm/core/faults"
	"soporte-itsm/core/status"
	"soporte-itsm/core/store"
	"soporte-itsm/core/utils"
)

const (
	PriorityLow    = "baja"
	PriorityMedium = "media"
	PriorityHigh   = "alta"
)

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Service owns the incident lifecycle: creation with the priority-based
// technician rule, partial updates with manual status override, deletion and
// the dashboard counters.
type Service struct {
	cfg      *config.AppConfig
	store    store.IncidentsStore
	audits   *audit.Recorder
	validate *validator.Validate
	logger   *utils.Logger
}

func NewService(cfg *config.AppConfig, s store.IncidentsStore, audits *audit.Recorder, logger *utils.Logger) *Service {
	return &Service{
		cfg:      cfg,
		store:    s,
		audits:   audits,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

type CreateParams struct {
	Title       string `json:"titulo" validate:"required"`
	Description string `json:"descripcion" validate:"required"`
	Priority    string `json:"prioridad" validate:"required,oneof=baja media alta"`
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*store.Incident, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Priority = strings.ToLower(strings.TrimSpace(p.Priority))
	if err := s.validate.Struct(p); err != nil {
		return nil, faults.Validationf("Faltan campos obligatorios")
	}
	incident := &store.Incident{
		Title:       p.Title,
		Description: p.Description,
		Priority:    p.Priority,
		Status:      string(status.Open),
		CreatedAt:   time.Now().UTC(),
		ClosedAt:    nil,
	}
	if p.Priority == PriorityHigh {
		incident.Technician = s.cfg.PrincipalTechnician()
	}
	if err := s.store.CreateIncident(ctx, incident); err != nil {
		return nil, err
	}
	s.audits.Record(ctx, incident.ID, "", fmt.Sprintf("Incidencia creada: %s", incident.Title))
	return incident, nil
}

func (s *Service) Get(ctx context.Context, id string) (*store.Incident, error) {
	id = strings.TrimSpace(id)
	if !store.ValidID(id) {
		return nil, faults.Validationf("Identificador no válido")
	}
	incident, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if incident == nil {
		return nil, faults.NotFoundf("Incidencia no encontrada")
	}
	return incident, nil
}

func (s *Service) List(ctx context.Context, filter store.IncidentFilter) ([]store.Incident, error) {
	return s.store.ListIncidents(ctx, filter)
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Title       *string `json:"titulo"`
	Description *string `json:"descripcion"`
	Priority    *string `json:"prioridad"`
	Status      *string `json:"estado"`
	Technician  *string `json:"tecnico"`
}

func (p UpdateParams) empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.Status == nil && p.Technician == nil
}

func (s *Service) Update(ctx context.Context, id string, p UpdateParams) (*store.Incident, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, faults.Validationf("Falta el identificador")
	}
	if !store.ValidID(id) {
		return nil, faults.Validationf("Identificador no válido")
	}
	if p.empty() {
		return nil, faults.Validationf("No hay datos para actualizar")
	}
	incident, err := s.store.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if incident == nil {
		return nil, faults.NotFoundf("Incidencia no encontrada")
	}
	updated := *incident
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, faults.Validationf("Faltan campos obligatorios")
		}
		updated.Title = title
	}
	if p.Description != nil {
		desc := strings.TrimSpace(*p.Description)
		if desc == "" {
			return nil, faults.Validationf("Faltan campos obligatorios")
		}
		updated.Description = desc
	}
	if p.Priority != nil {
		priority := strings.ToLower(strings.TrimSpace(*p.Priority))
		if !ValidPriority(priority) {
			return nil, faults.Validationf("Prioridad no válida")
		}
		updated.Priority = priority
		// Raising to alta without an explicit technician assigns the
		// principal; lowering never clears an assignment on its own.
		if priority == PriorityHigh && p.Technician == nil && strings.TrimSpace(updated.Technician) == "" {
			updated.Technician = s.cfg.PrincipalTechnician()
		}
	}
	if p.Technician != nil {
		updated.Technician = strings.TrimSpace(*p.Technician)
	}
	if p.Status != nil {
		st := strings.ToLower(strings.TrimSpace(*p.Status))
		if !status.Valid(st) {
			return nil, faults.Validationf("Estado no válido")
		}
		// Manual override: bypasses derivation, keeps the close
		// timestamp in lockstep with the status.
		updated.Status = st
		updated.ClosedAt = status.ClosedAt(status.Status(st), time.Now().UTC())
	}
	if err := s.store.UpdateIncident(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if !store.ValidID(id) {
		return faults.Validationf("Identificador no válido")
	}
	return s.store.DeleteIncident(ctx, id)
}

// DashboardCounts summarizes incidents by status for the dashboard cards.
type DashboardCounts struct {
	Total      int `json:"total"`
	Open       int `json:"abiertas"`
	InProgress int `json:"enCurso"`
	Closed     int `json:"cerradas"`
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardCounts, error) {
	counts, err := s.store.CountIncidentsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	d := &DashboardCounts{
		Open:       counts[string(status.Open)],
		InProgress: counts[string(status.InProgress)],
		Closed:     counts[string(status.Closed)],
	}
	for _, n := range counts {
		d.Total += n
	}
	return d, nil
}
