package status

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"soporte-itsm/config"
	"soporte-itsm/core/store"
	"soporte-itsm/core/utils"
)

// Reconciler periodically audits persisted incidents against the status
// invariants. It repairs a close timestamp that disagrees with the status
// (set iff cerrada) and logs derivation drift. It never rewrites a status
// on its own, since both the forced task-creation transition and manual
// overrides are legitimate departures from pure derivation.
type Reconciler struct {
	cfg       config.ReconcilerConfig
	incidents store.IncidentsStore
	tasks     store.TasksStore
	logger    *utils.Logger
	cron      *cron.Cron
}

func NewReconciler(cfg config.ReconcilerConfig, incidents store.IncidentsStore, tasks store.TasksStore, logger *utils.Logger) *Reconciler {
	return &Reconciler{cfg: cfg, incidents: incidents, tasks: tasks, logger: logger}
}

func (r *Reconciler) Start() error {
	if r == nil || !r.cfg.Enabled {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(r.cfg.Schedule, func() {
		if err := r.RunOnce(context.Background()); err != nil && r.logger != nil {
			r.logger.Errorf("status reconcile run failed: %v", err)
		}
	}); err != nil {
		return err
	}
	r.cron = c
	c.Start()
	if r.logger != nil {
		r.logger.Printf("status reconciler scheduled (%s)", r.cfg.Schedule)
	}
	return nil
}

func (r *Reconciler) Stop(ctx context.Context) error {
	if r == nil || r.cron == nil {
		return nil
	}
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce sweeps every incident once. Exposed for tests and one-shot runs.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	items, err := r.incidents.ListIncidents(ctx, store.IncidentFilter{})
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range items {
		inc := &items[i]
		wantClosed := inc.Status == string(Closed)
		hasClosedAt := inc.ClosedAt != nil
		if wantClosed != hasClosedAt {
			closedAt := ClosedAt(Status(inc.Status), now)
			if err := r.incidents.SetIncidentStatus(ctx, inc.ID, inc.Status, closedAt); err != nil {
				return err
			}
			if r.logger != nil {
				r.logger.Printf("reconciled close timestamp for incident %s (estado=%s)", inc.ID, inc.Status)
			}
		}
		total, completed, err := r.tasks.CountTasks(ctx, inc.ID)
		if err != nil {
			return err
		}
		if total == 0 {
			continue
		}
		if derived := Derive(total, completed); string(derived) != inc.Status && r.logger != nil {
			r.logger.Debugf("incident %s status %q differs from derived %q (%d/%d tasks completed)", inc.ID, inc.Status, derived, completed, total)
		}
	}
	return nil
}
