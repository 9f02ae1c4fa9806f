package activitylog

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "jobtrack-backend/internal/common/errors"
	"jobtrack-backend/internal/common/logger"
	"jobtrack-backend/internal/models"
)

var logColumns = []string{
	"id", "user_id", "entity_type", "entity_id", "entity_name",
	"action", "changes", "summary", "user_note", "timestamp",
}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, logger.NewTestLogger(t)), mock
}

func TestAppend_CreateEntryWithoutChanges(t *testing.T) {
	store, mock := newTestStore(t)

	entry := &models.ActivityLogEntry{
		ID:         "log-1",
		UserID:     "user-1",
		EntityType: models.EntityTypeApplication,
		EntityID:   "app-1",
		EntityName: "Initech - Backend Engineer",
		Action:     models.ActionCreated,
		Summary:    "Added Initech - Backend Engineer to applications",
		Timestamp:  time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO activity_logs").
		WithArgs(entry.ID, entry.UserID, entry.EntityType, entry.EntityID, entry.EntityName,
			entry.Action, nil, entry.Summary, "", entry.Timestamp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Append(context.Background(), entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_UpdateEntryMarshalsChanges(t *testing.T) {
	store, mock := newTestStore(t)

	entry := &models.ActivityLogEntry{
		ID:         "log-2",
		UserID:     "user-1",
		EntityType: models.EntityTypeApplication,
		EntityID:   "app-1",
		EntityName: "Initech - Backend Engineer",
		Action:     models.ActionUpdated,
		Changes:    &models.FieldChange{Field: "status", OldValue: "applied", NewValue: "screening"},
		Summary:    "Status changed from applied to screening",
		Timestamp:  time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO activity_logs").
		WithArgs(entry.ID, entry.UserID, entry.EntityType, entry.EntityID, entry.EntityName,
			entry.Action, []byte(`{"field":"status","oldValue":"applied","newValue":"screening"}`),
			entry.Summary, "", entry.Timestamp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Append(context.Background(), entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_DatabaseError(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO activity_logs").
		WillReturnError(assert.AnError)

	err := store.Append(context.Background(), &models.ActivityLogEntry{ID: "log-3"})
	require.Error(t, err)
	assert.Equal(t, commonerrors.ErrCodeStoreUnavailable, commonerrors.CodeOf(err))
}

func TestListByUser_DefaultLimit(t *testing.T) {
	store, mock := newTestStore(t)

	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(logColumns).
		AddRow("log-2", "user-1", "application", "app-1", "Initech - Backend Engineer",
			"updated", []byte(`{"field":"status","oldValue":"applied","newValue":"screening"}`),
			"Status changed from applied to screening", "", ts).
		AddRow("log-1", "user-1", "application", "app-1", "Initech - Backend Engineer",
			"created", nil, "Added Initech - Backend Engineer to applications", "", ts.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM activity_logs").
		WithArgs("user-1", DefaultLimit).
		WillReturnRows(rows)

	entries, err := store.ListByUser(context.Background(), "user-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].Changes)
	assert.Equal(t, "status", entries[0].Changes.Field)
	assert.Equal(t, "applied", entries[0].Changes.OldValue)
	assert.Nil(t, entries[1].Changes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUser_ExplicitLimit(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT (.+) FROM activity_logs").
		WithArgs("user-1", 10).
		WillReturnRows(sqlmock.NewRows(logColumns))

	entries, err := store.ListByUser(context.Background(), "user-1", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByEntityType(t *testing.T) {
	store, mock := newTestStore(t)

	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(logColumns).
		AddRow("log-5", "user-1", "network", "contact-1", "Dana (Initech)",
			"created", nil, "Added Dana (Initech) to network", "", ts)

	mock.ExpectQuery("SELECT (.+) FROM activity_logs").
		WithArgs("user-1", models.EntityTypeNetwork).
		WillReturnRows(rows)

	entries, err := store.ListByEntityType(context.Background(), "user-1", models.EntityTypeNetwork)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntityTypeNetwork, entries[0].EntityType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByEntityID(t *testing.T) {
	store, mock := newTestStore(t)

	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(logColumns).
		AddRow("log-6", "user-1", "application", "app-1", "Initech - Backend Engineer",
			"deleted", nil, "Deleted Initech - Backend Engineer application", "", ts)

	mock.ExpectQuery("SELECT (.+) FROM activity_logs").
		WithArgs("app-1").
		WillReturnRows(rows)

	entries, err := store.ListByEntityID(context.Background(), "app-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNote_Success(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("UPDATE activity_logs").
		WithArgs("remember to follow up", "log-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM activity_logs").
		WithArgs("log-1", "user-1").
		WillReturnRows(sqlmock.NewRows(logColumns).
			AddRow("log-1", "user-1", "application", "app-1", "Initech - Backend Engineer",
				"created", nil, "Added Initech - Backend Engineer to applications",
				"remember to follow up", ts))

	entry, err := store.UpdateNote(context.Background(), "log-1", "user-1", "remember to follow up")
	require.NoError(t, err)
	assert.Equal(t, "remember to follow up", entry.UserNote)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNote_OtherUsersEntryIsNotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("UPDATE activity_logs").
		WithArgs("note", "log-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	entry, err := store.UpdateNote(context.Background(), "log-1", "user-2", "note")
	assert.Nil(t, entry)
	assert.True(t, commonerrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
