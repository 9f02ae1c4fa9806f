// Package activitylog persists the append-only audit trail.
package activitylog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	commonerrors "jobtrack-backend/internal/common/errors"
	"jobtrack-backend/internal/common/logger"
	"jobtrack-backend/internal/models"
)

// DefaultLimit caps the recent-activity feed when the caller does not
// ask for a specific page size.
const DefaultLimit = 50

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "activitylog"}),
	}
}

// Append inserts one immutable entry.
func (s *Store) Append(ctx context.Context, entry *models.ActivityLogEntry) error {
	var changesJSON interface{}
	if entry.Changes != nil {
		b, err := json.Marshal(entry.Changes)
		if err != nil {
			return commonerrors.NewValidationError(fmt.Sprintf("marshal changes: %v", err))
		}
		changesJSON = b
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_logs (
			id, user_id, entity_type, entity_id, entity_name,
			action, changes, summary, user_note, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID,
		entry.UserID,
		entry.EntityType,
		entry.EntityID,
		entry.EntityName,
		entry.Action,
		changesJSON,
		entry.Summary,
		entry.UserNote,
		entry.Timestamp,
	)
	if err != nil {
		return commonerrors.NewStoreUnavailableError(fmt.Sprintf("insert activity log: %v", err))
	}
	return nil
}

// ListByUser returns the user's entries newest first, capped at limit.
// A non-positive limit falls back to DefaultLimit.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, entity_type, entity_id, entity_name,
		       action, changes, summary, user_note, timestamp
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("query activity logs: %v", err))
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByEntityType returns the user's entries for one entity kind,
// newest first, unlimited.
func (s *Store) ListByEntityType(ctx context.Context, userID, entityType string) ([]models.ActivityLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, entity_type, entity_id, entity_name,
		       action, changes, summary, user_note, timestamp
		FROM activity_logs
		WHERE user_id = $1 AND entity_type = $2
		ORDER BY timestamp DESC`, userID, entityType)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("query activity logs: %v", err))
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByEntityID returns every entry for one entity regardless of
// owner, newest first. Used by entity detail views.
func (s *Store) ListByEntityID(ctx context.Context, entityID string) ([]models.ActivityLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, entity_type, entity_id, entity_name,
		       action, changes, summary, user_note, timestamp
		FROM activity_logs
		WHERE entity_id = $1
		ORDER BY timestamp DESC`, entityID)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("query activity logs: %v", err))
	}
	defer rows.Close()

	return scanEntries(rows)
}

// UpdateNote sets the user-editable annotation on an entry the caller
// owns. This is the only permitted mutation on a log entry; an entry
// that does not exist or belongs to another user reports not found.
func (s *Store) UpdateNote(ctx context.Context, entryID, userID, note string) (*models.ActivityLogEntry, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE activity_logs
		SET user_note = $1
		WHERE id = $2 AND user_id = $3`, note, entryID, userID)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("update user note: %v", err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("update user note: %v", err))
	}
	if affected == 0 {
		return nil, commonerrors.NewNotFoundError(fmt.Sprintf("activity log entry %s", entryID))
	}

	return s.getByID(ctx, entryID, userID)
}

func (s *Store) getByID(ctx context.Context, entryID, userID string) (*models.ActivityLogEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, entity_type, entity_id, entity_name,
		       action, changes, summary, user_note, timestamp
		FROM activity_logs
		WHERE id = $1 AND user_id = $2`, entryID, userID)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, commonerrors.NewNotFoundError(fmt.Sprintf("activity log entry %s", entryID))
	}
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("get activity log: %v", err))
	}
	return entry, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*models.ActivityLogEntry, error) {
	var entry models.ActivityLogEntry
	var changesJSON []byte

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.EntityType,
		&entry.EntityID,
		&entry.EntityName,
		&entry.Action,
		&changesJSON,
		&entry.Summary,
		&entry.UserNote,
		&entry.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	if len(changesJSON) > 0 {
		var ch models.FieldChange
		if err := json.Unmarshal(changesJSON, &ch); err != nil {
			return nil, fmt.Errorf("unmarshal changes: %w", err)
		}
		entry.Changes = &ch
	}

	return &entry, nil
}

func scanEntries(rows *sql.Rows) ([]models.ActivityLogEntry, error) {
	entries := []models.ActivityLogEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("scan activity log: %v", err))
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("iterate activity logs: %v", err))
	}
	return entries, nil
}
