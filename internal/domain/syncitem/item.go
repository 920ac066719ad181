// Package syncitem defines the canonical task representation shared by both
// sync sources.
package syncitem

import (
	"strings"
	"time"
)

// Source identifies the system an item originated from.
type Source string

const (
	SourceAsana     Source = "asana"
	SourceOmniFocus Source = "omnifocus"
)

// Valid reports whether s is one of the two known sources.
func (s Source) Valid() bool {
	return s == SourceAsana || s == SourceOmniFocus
}

// Item is the canonical representation of a task independent of its source
// system. Items are immutable within one sync pass: they are always built
// fresh from freshly fetched source data, never mutated in place.
type Item struct {
	ID         string     `json:"id"` // "{source}-{sourceID}"
	Name       string     `json:"name"`
	Note       string     `json:"note,omitempty"`
	Completed  bool       `json:"completed"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	Source     Source     `json:"source"`
	SourceID   string     `json:"source_id"`
}

// New constructs an Item with the composite ID derived from source and
// sourceID. Construction is the only place the ID format is decided.
func New(source Source, sourceID string) Item {
	prefix := string(source)
	if source == SourceOmniFocus {
		prefix = "of"
	}
	return Item{
		ID:       prefix + "-" + sourceID,
		Source:   source,
		SourceID: sourceID,
	}
}

// Key returns the matching key used to join items across sources: the
// lowercase task name.
func (it Item) Key() string {
	return strings.ToLower(it.Name)
}

// DueEqual compares two optional due dates at millisecond precision,
// treating nil as a distinct sentinel.
func DueEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.UnixMilli() == b.UnixMilli()
}
