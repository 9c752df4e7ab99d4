package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"soporte-itsm/config"
	"soporte-itsm/core/incidents"
	"soporte-itsm/core/store"
	"soporte-itsm/core/utils"
)

type IncidentsHandler struct {
	cfg    *config.AppConfig
	svc    *incidents.Service
	logger *utils.Logger
}

func NewIncidentsHandler(cfg *config.AppConfig, svc *incidents.Service, logger *utils.Logger) *IncidentsHandler {
	return &IncidentsHandler{cfg: cfg, svc: svc, logger: logger}
}

func (h *IncidentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload incidents.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Faltan campos obligatorios")
		return
	}
	incident, err := h.svc.Create(r.Context(), payload)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, incident)
}

func (h *IncidentsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.IncidentFilter{
		Status:   strings.ToLower(strings.TrimSpace(r.URL.Query().Get("estado"))),
		Priority: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("prioridad"))),
		Search:   r.URL.Query().Get("q"),
	}
	items, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []store.Incident{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *IncidentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	incident, err := h.svc.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, incident)
}

func (h *IncidentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID string `json:"id"`
		incidents.UpdateParams
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Faltan datos")
		return
	}
	id := strings.TrimSpace(payload.ID)
	if pathID := urlParam(r, "id"); pathID != "" {
		id = pathID
	}
	if id == "" {
		writeError(w, http.StatusBadRequest, "Falta el identificador")
		return
	}
	incident, err := h.svc.Update(r.Context(), id, payload.UpdateParams)
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, incident)
}

func (h *IncidentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "Identificador no proporcionado")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *IncidentsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Dashboard(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
