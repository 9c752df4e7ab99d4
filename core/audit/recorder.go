package audit

import (
	"context"
	"strings"

	"soporte-itsm/core/store"
	"soporte-itsm/core/utils"
)

// SystemUser is recorded when no acting user is supplied.
const SystemUser = "System"

// Recorder appends audit entries on a best-effort basis: a failed write is
// logged and swallowed so it can never fail or roll back the operation that
// triggered it.
type Recorder struct {
	store  store.AuditStore
	logger *utils.Logger
}

func NewRecorder(s store.AuditStore, logger *utils.Logger) *Recorder {
	return &Recorder{store: s, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, incidentID, user, action string) {
	if r == nil || r.store == nil {
		return
	}
	if strings.TrimSpace(user) == "" {
		user = SystemUser
	}
	entry := &store.AuditEntry{
		IncidentID: incidentID,
		User:       user,
		Action:     action,
	}
	if err := r.store.AppendAudit(ctx, entry); err != nil && r.logger != nil {
		r.logger.Errorf("audit write failed (%s): %v", action, err)
	}
}
