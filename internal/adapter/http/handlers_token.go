package http

import (
	"net/http"
	"time"

	"github.com/calehr/taskbridge/internal/domain/mapping"
	"github.com/calehr/taskbridge/internal/middleware"
)

type storeTokenRequest struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// StoreToken saves the caller's Asana OAuth credential. The OAuth dance
// itself happens in the dashboard; this endpoint only receives the result.
func (h *Handlers) StoreToken(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[storeTokenRequest](w, r)
	if !ok {
		return
	}

	err := h.Tokens.StoreToken(r.Context(), &mapping.OAuthToken{
		UserID:       middleware.UserIDFromContext(r.Context()),
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		writeDomainError(w, err, "token not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteToken removes the caller's stored Asana credential.
func (h *Handlers) DeleteToken(w http.ResponseWriter, r *http.Request) {
	if err := h.Tokens.DeleteToken(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		writeDomainError(w, err, "token not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
