// Package tokenprovider defines the port interface for Asana credential
// resolution.
package tokenprovider

import "context"

// Provider resolves a valid access token for a user, transparently
// refreshing an expiring credential and persisting the rotated value.
// Returns domain.ErrNoToken when no credential exists or refresh fails.
type Provider interface {
	ValidAccessToken(ctx context.Context, userID string) (string, error)
}
