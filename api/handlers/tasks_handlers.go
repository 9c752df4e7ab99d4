package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"soporte-itsm/core/store"
	"soporte-itsm/core/tasks"
	"soporte-itsm/core/utils"
)

type TasksHandler struct {
	svc    *tasks.Service
	logger *utils.Logger
}

func NewTasksHandler(svc *tasks.Service, logger *utils.Logger) *TasksHandler {
	return &TasksHandler{svc: svc, logger: logger}
}

func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListByIncident(r.Context(), r.URL.Query().Get("incidenciaId"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []store.Task{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload tasks.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Faltan campos obligatorios")
		return
	}
	task, err := h.svc.Create(r.Context(), payload)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "tarea": task})
}

func (h *TasksHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TaskID    string `json:"tareaId"`
		ID        string `json:"id"`
		Completed *bool  `json:"completada"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Faltan datos")
		return
	}
	taskID := strings.TrimSpace(payload.TaskID)
	if taskID == "" {
		taskID = strings.TrimSpace(payload.ID)
	}
	if taskID == "" || payload.Completed == nil {
		writeError(w, http.StatusBadRequest, "Faltan datos")
		return
	}
	task, incidentStatus, err := h.svc.Toggle(r.Context(), taskID, *payload.Completed)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":                true,
		"tarea":             task,
		"estado_incidencia": incidentStatus,
	})
}
