package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"soporte-itsm/core/audit"
	"soporte-itsm/core/store"
	"soporte-itsm/core/utils"
)

type AuditHandler struct {
	audits store.AuditStore
	logger *utils.Logger
}

func NewAuditHandler(audits store.AuditStore, logger *utils.Logger) *AuditHandler {
	return &AuditHandler{audits: audits, logger: logger}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "ID requerido")
		return
	}
	if !store.ValidID(id) {
		writeError(w, http.StatusBadRequest, "Identificador no válido")
		return
	}
	entries, err := h.audits.ListAuditByIncident(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []store.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *AuditHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IncidentID string `json:"incidenciaId"`
		User       string `json:"usuario"`
		Action     string `json:"accion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Faltan datos")
		return
	}
	incidentID := strings.TrimSpace(payload.IncidentID)
	action := strings.TrimSpace(payload.Action)
	if incidentID == "" || action == "" {
		writeError(w, http.StatusBadRequest, "Faltan datos")
		return
	}
	if !store.ValidID(incidentID) {
		writeError(w, http.StatusBadRequest, "Identificador no válido")
		return
	}
	user := strings.TrimSpace(payload.User)
	if user == "" {
		user = audit.SystemUser
	}
	entry := &store.AuditEntry{
		IncidentID: incidentID,
		User:       user,
		Action:     action,
	}
	if err := h.audits.AppendAudit(r.Context(), entry); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true})
}
