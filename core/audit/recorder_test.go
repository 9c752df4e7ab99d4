package audit

import (
	"context"
	"errors"
	"testing"

	"soporte-itsm/core/store"
)

type capturingStore struct {
	entries []store.AuditEntry
	err     error
}

func (c *capturingStore) AppendAudit(_ context.Context, entry *store.AuditEntry) error {
	if c.err != nil {
		return c.err
	}
	c.entries = append(c.entries, *entry)
	return nil
}

func (c *capturingStore) ListAuditByIncident(context.Context, string) ([]store.AuditEntry, error) {
	return c.entries, nil
}

func TestRecordDefaultsToSystemUser(t *testing.T) {
	cs := &capturingStore{}
	r := NewRecorder(cs, nil)
	r.Record(context.Background(), "inc-1", "", "Tarea creada: x")
	r.Record(context.Background(), "inc-1", "  ", "Tarea creada: y")
	r.Record(context.Background(), "inc-1", "ana", "Tarea creada: z")

	if len(cs.entries) != 3 {
		t.Fatalf("recorded %d entries, want 3", len(cs.entries))
	}
	if cs.entries[0].User != SystemUser || cs.entries[1].User != SystemUser {
		t.Fatalf("blank users not defaulted: %+v", cs.entries[:2])
	}
	if cs.entries[2].User != "ana" {
		t.Fatalf("explicit user overridden: %q", cs.entries[2].User)
	}
}

func TestRecordSwallowsStoreFailures(t *testing.T) {
	cs := &capturingStore{err: errors.New("disk full")}
	r := NewRecorder(cs, nil)
	// Must not panic or propagate; auditing is best effort.
	r.Record(context.Background(), "inc-1", "", "Estado cambiado a 'cerrada'")
}

func TestRecordOnNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.Record(context.Background(), "inc-1", "", "x")
	NewRecorder(nil, nil).Record(context.Background(), "inc-1", "", "x")
}
