// Package mapping defines the sync mapping entity: the persisted association
// between one Asana project and one OmniFocus project, the unit of
// scheduling for a sync pass.
package mapping

import (
	"time"

	"github.com/calehr/taskbridge/internal/domain/conflict"
)

// Mapping associates an Asana project with an OmniFocus project for one user.
type Mapping struct {
	ID                   string            `json:"id"`
	UserID               string            `json:"user_id"`
	AsanaProjectID       string            `json:"asana_project_id"`
	AsanaProjectName     string            `json:"asana_project_name,omitempty"`
	OmniFocusProjectName string            `json:"omnifocus_project_name"`
	ConflictStrategy     conflict.Strategy `json:"conflict_strategy"`
	SyncEnabled          bool              `json:"sync_enabled"`
	LastSyncAt           *time.Time        `json:"last_sync_at,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// CreateRequest holds the fields needed to create a new mapping.
type CreateRequest struct {
	UserID               string            `json:"user_id"`
	AsanaProjectID       string            `json:"asana_project_id"`
	AsanaProjectName     string            `json:"asana_project_name"`
	OmniFocusProjectName string            `json:"omnifocus_project_name"`
	ConflictStrategy     conflict.Strategy `json:"conflict_strategy"`
}

// UpdateRequest holds the mutable mapping fields. Nil pointers leave the
// current value unchanged.
type UpdateRequest struct {
	OmniFocusProjectName *string            `json:"omnifocus_project_name,omitempty"`
	ConflictStrategy     *conflict.Strategy `json:"conflict_strategy,omitempty"`
	SyncEnabled          *bool              `json:"sync_enabled,omitempty"`
}

// SyncDirection records which way a pass moved data. The engine is always
// bidirectional; the column exists so the audit log stays meaningful if
// one-way modes are added.
type SyncDirection string

const DirectionBidirectional SyncDirection = "BIDIRECTIONAL"

// SyncStatus is the audited outcome of one pass.
type SyncStatus string

const (
	StatusSuccess SyncStatus = "SUCCESS"
	StatusError   SyncStatus = "ERROR"
)

// SyncLog is one audit row written at the end of every sync pass, success
// or failure.
type SyncLog struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	MappingID    string        `json:"mapping_id"`
	Direction    SyncDirection `json:"direction"`
	Status       SyncStatus    `json:"status"`
	ItemsSynced  int           `json:"items_synced"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// OAuthToken is the persisted Asana credential for one user.
type OAuthToken struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Expired reports whether the access token is past (or within skew of) its
// expiry and must be refreshed before use.
func (t *OAuthToken) Expired(now time.Time, skew time.Duration) bool {
	return !now.Add(skew).Before(t.ExpiresAt)
}
