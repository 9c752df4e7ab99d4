package store

import (
	"context"
	"strings"
	"time"
)

// AuditEntry is an append-only record of an action taken against an
// incident. Entries are never updated or deleted by the application.
type AuditEntry struct {
	ID         string    `json:"id"`
	IncidentID string    `json:"incidenciaId"`
	User       string    `json:"usuario"`
	Action     string    `json:"accion"`
	CreatedAt  time.Time `json:"fecha"`
}

type AuditStore interface {
	AppendAudit(ctx context.Context, entry *AuditEntry) error
	// ListAuditByIncident returns all entries for an incident, newest
	// first.
	ListAuditByIncident(ctx context.Context, incidentID string) ([]AuditEntry, error)
}

type auditStore struct {
	db *DB
}

func NewAuditStore(db *DB) AuditStore {
	return &auditStore{db: db}
}

func (s *auditStore) AppendAudit(ctx context.Context, entry *AuditEntry) error {
	if strings.TrimSpace(entry.ID) == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.db.rebind(`
		INSERT INTO audit_log(id, incident_id, username, action, created_at)
		VALUES(?,?,?,?,?)`),
		entry.ID, entry.IncidentID, entry.User, entry.Action, entry.CreatedAt)
	return err
}

func (s *auditStore) ListAuditByIncident(ctx context.Context, incidentID string) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.db.rebind(`
		SELECT id, incident_id, username, action, created_at
		FROM audit_log WHERE incident_id=? ORDER BY created_at DESC, id DESC`), incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.IncidentID, &e.User, &e.Action, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
