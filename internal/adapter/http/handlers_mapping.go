package http

import (
	"net/http"
	"strconv"

	"github.com/calehr/taskbridge/internal/domain/mapping"
	"github.com/calehr/taskbridge/internal/domain/syncrun"
	"github.com/calehr/taskbridge/internal/middleware"
)

// ListMappings returns the caller's sync mappings.
func (h *Handlers) ListMappings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	mappings, err := h.Mappings.List(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, "mappings not found")
		return
	}
	if mappings == nil {
		mappings = []mapping.Mapping{}
	}
	writeJSON(w, http.StatusOK, mappings)
}

// CreateMapping creates a new sync mapping for the caller.
func (h *Handlers) CreateMapping(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[mapping.CreateRequest](w, r)
	if !ok {
		return
	}
	req.UserID = middleware.UserIDFromContext(r.Context())

	m, err := h.Mappings.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "mapping not found")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GetMapping returns one mapping owned by the caller.
func (h *Handlers) GetMapping(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	m, err := h.Mappings.Get(r.Context(), userID, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "mapping not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// UpdateMapping applies a partial update to a mapping.
func (h *Handlers) UpdateMapping(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[mapping.UpdateRequest](w, r)
	if !ok {
		return
	}
	userID := middleware.UserIDFromContext(r.Context())

	m, err := h.Mappings.Update(r.Context(), userID, urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, err, "mapping not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteMapping removes a mapping.
func (h *Handlers) DeleteMapping(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.Mappings.Delete(r.Context(), userID, urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "mapping not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMappingLogs returns recent sync audit rows for a mapping.
func (h *Handlers) ListMappingLogs(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	logs, err := h.Mappings.SyncLogs(r.Context(), userID, urlParam(r, "id"), limit)
	if err != nil {
		writeDomainError(w, err, "mapping not found")
		return
	}
	if logs == nil {
		logs = []mapping.SyncLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// TriggerSync runs one sync pass for a mapping and returns its result. A
// pass already running for the same mapping yields 409.
func (h *Handlers) TriggerSync(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	m, err := h.Mappings.Get(r.Context(), userID, urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "mapping not found")
		return
	}
	if !m.SyncEnabled {
		writeError(w, http.StatusConflict, "sync is disabled for this mapping")
		return
	}

	res, err := h.Sync.PerformSync(r.Context(), syncrun.Context{
		UserID:               m.UserID,
		MappingID:            m.ID,
		AsanaProjectID:       m.AsanaProjectID,
		OmniFocusProjectName: m.OmniFocusProjectName,
		Strategy:             m.ConflictStrategy,
		LastSyncAt:           m.LastSyncAt,
	})
	if err != nil {
		writeDomainError(w, err, "mapping not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
