// internal/models/activitylog.go
package models

import "time"

// Entity kinds that appear in the activity log.
const (
	EntityTypeApplication = "application"
	EntityTypeNetwork     = "network"
)

// Actions recorded in the activity log.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// FieldChange describes one tracked field that differed between the old
// and new state of an entity.
type FieldChange struct {
	Field    string      `json:"field"`
	OldValue interface{} `json:"oldValue"`
	NewValue interface{} `json:"newValue"`
}

// ActivityLogEntry is one append-only audit record. Everything except
// UserNote is immutable after creation.
type ActivityLogEntry struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	EntityType string       `json:"entityType"`
	EntityID   string       `json:"entityId"`
	EntityName string       `json:"entityName"`
	Action     string       `json:"action"`
	Changes    *FieldChange `json:"changes,omitempty"`
	Summary    string       `json:"summary"`
	UserNote   string       `json:"userNote"`
	Timestamp  time.Time    `json:"timestamp"`
}
