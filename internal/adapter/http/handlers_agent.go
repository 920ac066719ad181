package http

import (
	"net/http"
	"strconv"

	"github.com/calehr/taskbridge/internal/domain/agent"
	"github.com/calehr/taskbridge/internal/middleware"
)

const defaultCommandLimit = 50

type snapshotRequest struct {
	Tasks []agent.Task `json:"tasks"`
}

type snapshotResponse struct {
	Received int `json:"received"`
}

// ReceiveSnapshot accepts the agent's current OmniFocus task list for a
// mapping. The mapping must belong to the caller.
func (h *Handlers) ReceiveSnapshot(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	mappingID := urlParam(r, "mappingID")

	if _, err := h.Mappings.Get(r.Context(), userID, mappingID); err != nil {
		writeDomainError(w, err, "mapping not found")
		return
	}

	req, ok := readJSON[snapshotRequest](w, r)
	if !ok {
		return
	}
	if err := h.Agent.ReceiveSnapshot(r.Context(), mappingID, req.Tasks); err != nil {
		writeDomainError(w, err, "mapping not found")
		return
	}
	writeJSON(w, http.StatusAccepted, snapshotResponse{Received: len(req.Tasks)})
}

// ListCommands returns pending (unacked) commands for a mapping, oldest
// first. The agent polls this between NATS notifications.
func (h *Handlers) ListCommands(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	mappingID := urlParam(r, "mappingID")

	if _, err := h.Mappings.Get(r.Context(), userID, mappingID); err != nil {
		writeDomainError(w, err, "mapping not found")
		return
	}

	limit := defaultCommandLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	cmds, err := h.Agent.PendingCommands(r.Context(), mappingID, limit)
	if err != nil {
		writeDomainError(w, err, "commands not found")
		return
	}
	if cmds == nil {
		cmds = []agent.Command{}
	}
	writeJSON(w, http.StatusOK, cmds)
}

// AckCommand marks a command as applied by the agent.
func (h *Handlers) AckCommand(w http.ResponseWriter, r *http.Request) {
	if err := h.Agent.AckCommand(r.Context(), urlParam(r, "id")); err != nil {
		writeDomainError(w, err, "command not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
