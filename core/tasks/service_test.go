package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"soporte-itsm/config"
	"soporte-itsm/core/audit"
	"soporte-itsm/core/faults"
	"soporte-itsm/core/store"
)

type serviceEnv struct {
	ctx       context.Context
	svc       *Service
	incidents store.IncidentsStore
	tasks     store.TasksStore
	audits    store.AuditStore
}

func setupServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	cfg := &config.AppConfig{DBDriver: store.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := store.NewDB(cfg, nil)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	incidentsStore := store.NewIncidentsStore(db)
	tasksStore := store.NewTasksStore(db)
	auditStore := store.NewAuditStore(db)
	return &serviceEnv{
		ctx:       context.Background(),
		svc:       NewService(tasksStore, incidentsStore, audit.NewRecorder(auditStore, nil), nil),
		incidents: incidentsStore,
		tasks:     tasksStore,
		audits:    auditStore,
	}
}

func (e *serviceEnv) seedIncident(t *testing.T) *store.Incident {
	t.Helper()
	inc := &store.Incident{
		Title:       "Caída de red",
		Description: "Sin acceso desde la planta 2",
		Priority:    "media",
		Status:      "abierta",
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.incidents.CreateIncident(e.ctx, inc); err != nil {
		t.Fatalf("seed incident: %v", err)
	}
	return inc
}

func (e *serviceEnv) incidentState(t *testing.T, id string) *store.Incident {
	t.Helper()
	inc, err := e.incidents.GetIncident(e.ctx, id)
	if err != nil {
		t.Fatalf("get incident: %v", err)
	}
	if inc == nil {
		t.Fatalf("incident %s vanished", id)
	}
	return inc
}

func (e *serviceEnv) auditActions(t *testing.T, incidentID string) []string {
	t.Helper()
	entries, err := e.audits.ListAuditByIncident(e.ctx, incidentID)
	if err != nil {
		t.Fatalf("audit list: %v", err)
	}
	actions := make([]string, len(entries))
	for i, entry := range entries {
		actions[i] = entry.Action
	}
	return actions
}

func containsAction(actions []string, want string) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}

func TestCreateForcesIncidentInProgress(t *testing.T) {
	env := setupServiceEnv(t)
	inc := env.seedIncident(t)

	task, err := env.svc.Create(env.ctx, CreateParams{IncidentID: inc.ID, Title: "Revisar switch", Description: "Planta 2"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID == "" || task.Completed {
		t.Fatalf("fresh task: %+v", task)
	}

	got := env.incidentState(t, inc.ID)
	if got.Status != "en curso" || got.ClosedAt != nil {
		t.Fatalf("incident after task: status=%q closedAt=%v", got.Status, got.ClosedAt)
	}

	actions := env.auditActions(t, inc.ID)
	if !containsAction(actions, "Tarea creada: Revisar switch") {
		t.Fatalf("missing task creation audit: %v", actions)
	}
	if !containsAction(actions, "Estado cambiado a 'en curso'") {
		t.Fatalf("missing status audit: %v", actions)
	}
}

func TestCreateReopensClosedIncident(t *testing.T) {
	env := setupServiceEnv(t)
	inc := env.seedIncident(t)
	now := time.Now().UTC()
	if err := env.incidents.SetIncidentStatus(env.ctx, inc.ID, "cerrada", &now); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := env.svc.Create(env.ctx, CreateParams{IncidentID: inc.ID, Title: "Trabajo extra"}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got := env.incidentState(t, inc.ID)
	if got.Status != "en curso" {
		t.Fatalf("closed incident not reopened: %q", got.Status)
	}
	if got.ClosedAt != nil {
		t.Fatalf("close timestamp survived reopening: %v", got.ClosedAt)
	}
}

func TestCreateRejectsUnknownIncident(t *testing.T) {
	env := setupServiceEnv(t)
	_, err := env.svc.Create(env.ctx, CreateParams{IncidentID: store.NewID(), Title: "x"})
	if !errors.Is(err, faults.ErrNotFound) || err.Error() != "Incidencia no encontrada" {
		t.Fatalf("unknown incident: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	env := setupServiceEnv(t)
	inc := env.seedIncident(t)

	if _, err := env.svc.Create(env.ctx, CreateParams{IncidentID: inc.ID, Title: "   "}); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("blank title: %v", err)
	}
	if _, err := env.svc.Create(env.ctx, CreateParams{IncidentID: "", Title: "x"}); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("missing incident id: %v", err)
	}
	_, err := env.svc.Create(env.ctx, CreateParams{IncidentID: "nope", Title: "x"})
	if !errors.Is(err, faults.ErrValidation) || err.Error() != "Identificador no válido" {
		t.Fatalf("malformed incident id: %v", err)
	}
}

func TestToggleLifecycleDrivesIncidentStatus(t *testing.T) {
	env := setupServiceEnv(t)
	inc := env.seedIncident(t)

	taskA, err := env.svc.Create(env.ctx, CreateParams{IncidentID: inc.ID, Title: "Tarea A"})
	if err != nil {
		t.Fatalf("create A: %v", err)
	}

	// Completing the only task closes the incident.
	got, st, err := env.svc.Toggle(env.ctx, taskA.ID, true)
	if err != nil {
		t.Fatalf("complete A: %v", err)
	}
	if st != "cerrada" || !got.Completed || got.CompletedAt == nil {
		t.Fatalf("complete A: status=%q task=%+v", st, got)
	}
	state := env.incidentState(t, inc.ID)
	if state.Status != "cerrada" || state.ClosedAt == nil {
		t.Fatalf("incident after closing: status=%q closedAt=%v", state.Status, state.ClosedAt)
	}

	// A new task reopens it and clears the close timestamp.
	taskB, err := env.svc.Create(env.ctx, CreateParams{IncidentID: inc.ID, Title: "Tarea B"})
	if err != nil {
		t.Fatalf("create B: %v", err)
	}
	state = env.incidentState(t, inc.ID)
	if state.Status != "en curso" || state.ClosedAt != nil {
		t.Fatalf("incident after new task: status=%q closedAt=%v", state.Status, state.ClosedAt)
	}

	// Completing the second task closes it again.
	if _, st, err = env.svc.Toggle(env.ctx, taskB.ID, true); err != nil || st != "cerrada" {
		t.Fatalf("complete B: status=%q err=%v", st, err)
	}

	// Reopening one task leaves the other done: partial completion.
	if _, st, err = env.svc.Toggle(env.ctx, taskA.ID, false); err != nil || st != "en curso" {
		t.Fatalf("reopen A: status=%q err=%v", st, err)
	}

	// Reopening both returns the incident to abierta.
	if _, st, err = env.svc.Toggle(env.ctx, taskB.ID, false); err != nil || st != "abierta" {
		t.Fatalf("reopen B: status=%q err=%v", st, err)
	}
	state = env.incidentState(t, inc.ID)
	if state.ClosedAt != nil {
		t.Fatalf("reopened incident kept close timestamp: %v", state.ClosedAt)
	}

	actions := env.auditActions(t, inc.ID)
	for _, want := range []string{
		"Tarea completada: Tarea A",
		"Tarea completada: Tarea B",
		"Tarea marcada pendiente: Tarea A",
		"Tarea marcada pendiente: Tarea B",
		"Estado cambiado a 'cerrada'",
		"Estado cambiado a 'abierta'",
	} {
		if !containsAction(actions, want) {
			t.Fatalf("missing audit %q in %v", want, actions)
		}
	}
}

func TestToggleIsIdempotent(t *testing.T) {
	env := setupServiceEnv(t)
	inc := env.seedIncident(t)
	task, err := env.svc.Create(env.ctx, CreateParams{IncidentID: inc.ID, Title: "Única"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := env.svc.Toggle(env.ctx, task.ID, true); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	first, err := env.tasks.GetTask(env.ctx, task.ID)
	if err != nil || first.CompletedAt == nil {
		t.Fatalf("task after first toggle: %+v, %v", first, err)
	}

	_, st, err := env.svc.Toggle(env.ctx, task.ID, true)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if st != "cerrada" {
		t.Fatalf("repeated toggle changed status: %q", st)
	}
	second, err := env.tasks.GetTask(env.ctx, task.ID)
	if err != nil {
		t.Fatalf("get after second toggle: %v", err)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("repeated toggle moved completion timestamp: %v vs %v", second.CompletedAt, first.CompletedAt)
	}
}

func TestToggleRejectsUnknownAndMalformedTasks(t *testing.T) {
	env := setupServiceEnv(t)
	_, _, err := env.svc.Toggle(env.ctx, store.NewID(), true)
	if !errors.Is(err, faults.ErrNotFound) || err.Error() != "Tarea no encontrada" {
		t.Fatalf("unknown task: %v", err)
	}
	if _, _, err := env.svc.Toggle(env.ctx, "garbage", true); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("malformed task id: %v", err)
	}
}

func TestListByIncident(t *testing.T) {
	env := setupServiceEnv(t)
	inc := env.seedIncident(t)
	for _, title := range []string{"Primera", "Segunda"} {
		if _, err := env.svc.Create(env.ctx, CreateParams{IncidentID: inc.ID, Title: title}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	items, err := env.svc.ListByIncident(env.ctx, inc.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("list returned %d tasks, want 2", len(items))
	}

	empty, err := env.svc.ListByIncident(env.ctx, "not-a-uuid")
	if err != nil {
		t.Fatalf("malformed list: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("malformed id should yield empty list, got %v", empty)
	}
}
