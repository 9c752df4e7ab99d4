package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"soporte-itsm/core/faults"
)

// Incident is the persisted incident record. JSON tags carry the wire
// vocabulary of the tracker.
type Incident struct {
	ID          string     `json:"id"`
	Title       string     `json:"titulo"`
	Description string     `json:"descripcion"`
	Priority    string     `json:"prioridad"`
	Status      string     `json:"estado"`
	Technician  string     `json:"tecnico,omitempty"`
	CreatedAt   time.Time  `json:"fecha_creacion"`
	ClosedAt    *time.Time `json:"fecha_cierre"`
}

type IncidentFilter struct {
	Status   string
	Priority string
	Search   string
	Limit    int
	Offset   int
}

type IncidentsStore interface {
	CreateIncident(ctx context.Context, incident *Incident) error
	GetIncident(ctx context.Context, id string) (*Incident, error)
	ListIncidents(ctx context.Context, filter IncidentFilter) ([]Incident, error)
	UpdateIncident(ctx context.Context, incident *Incident) error
	// SetIncidentStatus writes status and close timestamp in one statement
	// so the closed-at invariant cannot be observed half-applied.
	SetIncidentStatus(ctx context.Context, id string, status string, closedAt *time.Time) error
	DeleteIncident(ctx context.Context, id string) error
	CountIncidentsByStatus(ctx context.Context) (map[string]int, error)
}

type incidentsStore struct {
	db *DB
}

func NewIncidentsStore(db *DB) IncidentsStore {
	return &incidentsStore{db: db}
}

func (s *incidentsStore) CreateIncident(ctx context.Context, incident *Incident) error {
	if strings.TrimSpace(incident.ID) == "" {
		incident.ID = NewID()
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.db.rebind(`
		INSERT INTO incidents(id, title, description, priority, status, technician, created_at, closed_at)
		VALUES(?,?,?,?,?,?,?,?)`),
		incident.ID, incident.Title, incident.Description, incident.Priority, incident.Status, incident.Technician, incident.CreatedAt, nullableTime(incident.ClosedAt))
	return err
}

func (s *incidentsStore) GetIncident(ctx context.Context, id string) (*Incident, error) {
	row := s.db.QueryRowContext(ctx, s.db.rebind(`
		SELECT id, title, description, priority, status, technician, created_at, closed_at
		FROM incidents WHERE id=?`), id)
	return scanIncident(row)
}

func (s *incidentsStore) ListIncidents(ctx context.Context, filter IncidentFilter) ([]Incident, error) {
	var clauses []string
	var args []any
	if st := strings.TrimSpace(filter.Status); st != "" {
		clauses = append(clauses, "status=?")
		args = append(args, st)
	}
	if pr := strings.TrimSpace(filter.Priority); pr != "" {
		clauses = append(clauses, "priority=?")
		args = append(args, pr)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		clauses = append(clauses, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		like := "%" + strings.ToLower(q) + "%"
		args = append(args, like, like)
	}
	query := `SELECT id, title, description, priority, status, technician, created_at, closed_at FROM incidents`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}
	rows, err := s.db.QueryContext(ctx, s.db.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Incident
	for rows.Next() {
		inc, err := scanIncidentRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *inc)
	}
	return items, rows.Err()
}

func (s *incidentsStore) UpdateIncident(ctx context.Context, incident *Incident) error {
	res, err := s.db.ExecContext(ctx, s.db.rebind(`
		UPDATE incidents SET title=?, description=?, priority=?, status=?, technician=?, closed_at=?
		WHERE id=?`),
		incident.Title, incident.Description, incident.Priority, incident.Status, incident.Technician, nullableTime(incident.ClosedAt), incident.ID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return faults.NotFoundf("Incidencia no encontrada")
	}
	return nil
}

func (s *incidentsStore) SetIncidentStatus(ctx context.Context, id string, status string, closedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx, s.db.rebind(`
		UPDATE incidents SET status=?, closed_at=? WHERE id=?`),
		status, nullableTime(closedAt), id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return faults.NotFoundf("Incidencia no encontrada")
	}
	return nil
}

func (s *incidentsStore) DeleteIncident(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.rebind(`DELETE FROM incidents WHERE id=?`), id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return faults.NotFoundf("Incidencia no encontrada")
	}
	return nil
}

func (s *incidentsStore) CountIncidentsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM incidents GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		counts[st] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row *sql.Row) (*Incident, error) {
	inc, err := scanIncidentRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return inc, err
}

func scanIncidentRow(row rowScanner) (*Incident, error) {
	var inc Incident
	var closedAt sql.NullTime
	if err := row.Scan(&inc.ID, &inc.Title, &inc.Description, &inc.Priority, &inc.Status, &inc.Technician, &inc.CreatedAt, &closedAt); err != nil {
		return nil, err
	}
	if closedAt.Valid {
		t := closedAt.Time
		inc.ClosedAt = &t
	}
	return &inc, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
