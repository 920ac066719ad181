// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict (optimistic locking).
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates the request failed domain validation.
var ErrValidation = errors.New("validation failed")

// ErrNoToken indicates no valid Asana credential exists for the user and
// none could be obtained by refresh.
var ErrNoToken = errors.New("no valid access token")

// ErrSyncInProgress indicates another sync pass currently holds the
// per-mapping lock.
var ErrSyncInProgress = errors.New("sync already in progress for this mapping")
