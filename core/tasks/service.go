package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"soporte-itsm/core/audit"
	"soporte-itsm/core/faults"
	"soporte-itsm/core/status"
	"soporte-itsm/core/store"
	"soporte-itsm/core/utils"
)

// Service owns task creation and completion toggling, including the incident
// status side effects: every mutation audits what happened and moves the
// owning incident through the status state machine.
type Service struct {
	store     store.TasksStore
	incidents store.IncidentsStore
	audits    *audit.Recorder
	validate  *validator.Validate
	logger    *utils.Logger
	locks     *incidentLocks
}

func NewService(s store.TasksStore, incidents store.IncidentsStore, audits *audit.Recorder, logger *utils.Logger) *Service {
	return &Service{
		store:     s,
		incidents: incidents,
		audits:    audits,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
		locks:     newIncidentLocks(),
	}
}

type CreateParams struct {
	IncidentID  string `json:"incidenciaId" validate:"required"`
	Title       string `json:"titulo" validate:"required"`
	Description string `json:"descripcion"`
}

// Create inserts a task and forces the owning incident into "en curso".
// Unlike the derivation rule, the forced transition fires regardless of
// completion counts; the close timestamp is cleared with it.
func (s *Service) Create(ctx context.Context, p CreateParams) (*store.Task, error) {
	p.IncidentID = strings.TrimSpace(p.IncidentID)
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	if err := s.validate.Struct(p); err != nil {
		return nil, faults.Validationf("Faltan campos obligatorios")
	}
	if !store.ValidID(p.IncidentID) {
		return nil, faults.Validationf("Identificador no válido")
	}
	incident, err := s.incidents.GetIncident(ctx, p.IncidentID)
	if err != nil {
		return nil, err
	}
	if incident == nil {
		return nil, faults.NotFoundf("Incidencia no encontrada")
	}
	task := &store.Task{
		IncidentID:  p.IncidentID,
		Title:       p.Title,
		Description: p.Description,
		Completed:   false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	s.audits.Record(ctx, p.IncidentID, "", fmt.Sprintf("Tarea creada: %s", task.Title))

	unlock := s.locks.lock(p.IncidentID)
	defer unlock()
	next := status.Next(status.EventTaskCreated, 0, 0)
	if err := s.incidents.SetIncidentStatus(ctx, p.IncidentID, string(next), status.ClosedAt(next, time.Now().UTC())); err != nil {
		return nil, err
	}
	s.audits.Record(ctx, p.IncidentID, "", fmt.Sprintf("Estado cambiado a '%s'", next))
	return task, nil
}

// Toggle sets a task's completion flag, then re-derives and persists the
// owning incident's status from the full task set. Returns the updated task
// and the resulting incident status. Calling it twice with the same flag
// leaves task and incident state unchanged.
func (s *Service) Toggle(ctx context.Context, taskID string, completed bool) (*store.Task, string, error) {
	taskID = strings.TrimSpace(taskID)
	if !store.ValidID(taskID) {
		return nil, "", faults.Validationf("Identificador no válido")
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, "", err
	}
	if task == nil {
		return nil, "", faults.NotFoundf("Tarea no encontrada")
	}
	now := time.Now().UTC()
	var completedAt *time.Time
	if completed {
		if task.Completed && task.CompletedAt != nil {
			completedAt = task.CompletedAt
		} else {
			completedAt = &now
		}
	}
	if err := s.store.SetTaskCompleted(ctx, taskID, completed, completedAt); err != nil {
		return nil, "", err
	}
	task.Completed = completed
	task.CompletedAt = completedAt

	if completed {
		s.audits.Record(ctx, task.IncidentID, "", fmt.Sprintf("Tarea completada: %s", task.Title))
	} else {
		s.audits.Record(ctx, task.IncidentID, "", fmt.Sprintf("Tarea marcada pendiente: %s", task.Title))
	}

	unlock := s.locks.lock(task.IncidentID)
	defer unlock()
	total, done, err := s.store.CountTasks(ctx, task.IncidentID)
	if err != nil {
		return nil, "", err
	}
	ev := status.EventTaskUncompleted
	if completed {
		ev = status.EventTaskCompleted
	}
	next := status.Next(ev, total, done)
	if err := s.incidents.SetIncidentStatus(ctx, task.IncidentID, string(next), status.ClosedAt(next, now)); err != nil {
		return nil, "", err
	}
	s.audits.Record(ctx, task.IncidentID, "", fmt.Sprintf("Estado cambiado a '%s'", next))
	return task, string(next), nil
}

// ListByIncident returns the tasks of one incident, oldest first. An empty
// or malformed id yields an empty list rather than an error, matching the
// listing endpoint's contract.
func (s *Service) ListByIncident(ctx context.Context, incidentID string) ([]store.Task, error) {
	incidentID = strings.TrimSpace(incidentID)
	if incidentID == "" || !store.ValidID(incidentID) {
		return []store.Task{}, nil
	}
	return s.store.ListTasksByIncident(ctx, incidentID)
}

// incidentLocks serializes the recompute-and-persist step per incident so
// concurrent toggles on one incident cannot interleave between the count and
// the status write.
type incidentLocks struct {
	mu sync.Mutex
	m  map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newIncidentLocks() *incidentLocks {
	return &incidentLocks{m: map[string]*lockEntry{}}
}

func (l *incidentLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.m[id]
	if !ok {
		entry = &lockEntry{}
		l.m[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.m, id)
		}
		l.mu.Unlock()
	}
}
