package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/calehr/taskbridge/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. Health is
// the only unauthenticated endpoint; everything else requires the gateway
// supplied caller identity.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/api/v1/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity)

		// Sync mappings
		r.Get("/mappings", h.ListMappings)
		r.Post("/mappings", h.CreateMapping)
		r.Get("/mappings/{id}", h.GetMapping)
		r.Put("/mappings/{id}", h.UpdateMapping)
		r.Delete("/mappings/{id}", h.DeleteMapping)
		r.Get("/mappings/{id}/logs", h.ListMappingLogs)
		r.Post("/mappings/{id}/sync", h.TriggerSync)

		// Agent polling protocol
		r.Post("/agent/{mappingID}/snapshot", h.ReceiveSnapshot)
		r.Get("/agent/{mappingID}/commands", h.ListCommands)
		r.Post("/agent/commands/{id}/ack", h.AckCommand)

		// OAuth credentials
		r.Post("/tokens", h.StoreToken)
		r.Delete("/tokens", h.DeleteToken)
	})
}
