package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"soporte-itsm/core/faults"
)

// Task is a unit of work attached to exactly one incident.
type Task struct {
	ID          string     `json:"id"`
	IncidentID  string     `json:"incidenciaId"`
	Title       string     `json:"titulo"`
	Description string     `json:"descripcion,omitempty"`
	Completed   bool       `json:"completada"`
	CreatedAt   time.Time  `json:"fecha_creacion"`
	CompletedAt *time.Time `json:"fecha_completada,omitempty"`
}

type TasksStore interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	ListTasksByIncident(ctx context.Context, incidentID string) ([]Task, error)
	// SetTaskCompleted writes the completion flag and timestamp together so
	// the completed-at invariant holds after every write.
	SetTaskCompleted(ctx context.Context, id string, completed bool, completedAt *time.Time) error
	// CountTasks returns the total and completed task counts for one
	// incident, the inputs of status derivation.
	CountTasks(ctx context.Context, incidentID string) (total, completed int, err error)
}

type tasksStore struct {
	db *DB
}

func NewTasksStore(db *DB) TasksStore {
	return &tasksStore{db: db}
}

func (s *tasksStore) CreateTask(ctx context.Context, task *Task) error {
	if strings.TrimSpace(task.ID) == "" {
		task.ID = NewID()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.db.rebind(`
		INSERT INTO tasks(id, incident_id, title, description, completed, created_at, completed_at)
		VALUES(?,?,?,?,?,?,?)`),
		task.ID, task.IncidentID, task.Title, task.Description, task.Completed, task.CreatedAt, nullableTime(task.CompletedAt))
	return err
}

func (s *tasksStore) GetTask(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, s.db.rebind(`
		SELECT id, incident_id, title, description, completed, created_at, completed_at
		FROM tasks WHERE id=?`), id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return task, err
}

func (s *tasksStore) ListTasksByIncident(ctx context.Context, incidentID string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, s.db.rebind(`
		SELECT id, incident_id, title, description, completed, created_at, completed_at
		FROM tasks WHERE incident_id=? ORDER BY created_at ASC, id ASC`), incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *task)
	}
	return items, rows.Err()
}

func (s *tasksStore) SetTaskCompleted(ctx context.Context, id string, completed bool, completedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, s.db.rebind(`
		UPDATE tasks SET completed=?, completed_at=? WHERE id=?`),
		completed, nullableTime(completedAt), id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return faults.NotFoundf("Tarea no encontrada")
	}
	return nil
}

func (s *tasksStore) CountTasks(ctx context.Context, incidentID string) (int, int, error) {
	row := s.db.QueryRowContext(ctx, s.db.rebind(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0)
		FROM tasks WHERE incident_id=?`), incidentID)
	var total, completed int
	if err := row.Scan(&total, &completed); err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

func scanTask(row rowScanner) (*Task, error) {
	var task Task
	var completedAt sql.NullTime
	if err := row.Scan(&task.ID, &task.IncidentID, &task.Title, &task.Description, &task.Completed, &task.CreatedAt, &completedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		task.CompletedAt = &t
	}
	return &task, nil
}
