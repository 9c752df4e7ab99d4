package appbootstrap

import (
	"soporte-itsm/api"
	"soporte-itsm/config"
	"soporte-itsm/core/audit"
	"soporte-itsm/core/incidents"
	"soporte-itsm/core/status"
	"soporte-itsm/core/store"
	"soporte-itsm/core/tasks"
	"soporte-itsm/core/utils"
)

type runtimeComposition struct {
	serverDeps api.ServerDeps
	reconciler *status.Reconciler
}

func composeRuntime(cfg *config.AppConfig, db *store.DB, logger *utils.Logger) *runtimeComposition {
	incidentsStore := store.NewIncidentsStore(db)
	tasksStore := store.NewTasksStore(db)
	auditStore := store.NewAuditStore(db)

	audits := audit.NewRecorder(auditStore, logger)
	incidentsSvc := incidents.NewService(cfg, incidentsStore, audits, logger)
	tasksSvc := tasks.NewService(tasksStore, incidentsStore, audits, logger)
	reconciler := status.NewReconciler(cfg.Reconciler, incidentsStore, tasksStore, logger)

	return &runtimeComposition{
		serverDeps: api.ServerDeps{
			Cfg:          cfg,
			Logger:       logger,
			DB:           db,
			IncidentsSvc: incidentsSvc,
			TasksSvc:     tasksSvc,
			Audits:       auditStore,
		},
		reconciler: reconciler,
	}
}
