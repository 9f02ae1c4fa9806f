package tracker

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "jobtrack-backend/internal/common/errors"
	"jobtrack-backend/internal/common/logger"
	"jobtrack-backend/internal/tracker/activitylog"
	"jobtrack-backend/internal/tracker/analytics"
	"jobtrack-backend/internal/tracker/applications"
	"jobtrack-backend/internal/tracker/changelog"
	"jobtrack-backend/internal/tracker/network"
	"jobtrack-backend/internal/tracker/search"
)

var svcNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var svcAppColumns = []string{
	"id", "user_id", "company", "role", "status", "source",
	"date_applied", "last_updated", "salary_min", "salary_max",
	"contacts", "notes", "created_at", "updated_at",
}

// newTestService wires the full core over one mocked database, with
// search disabled and no cache.
func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	logStore := activitylog.NewStore(db, log)
	recorder := changelog.NewRecorder(logStore, nil, log)
	engine := analytics.NewEngine(db, nil, nil, log)
	appStore := applications.NewStore(db, log)
	contactStore := network.NewStore(db, log)

	return NewService(appStore, contactStore, logStore, recorder, engine, nil, log), mock
}

// newBrokenSearchService wires the core against an Elasticsearch that
// fails every request, to pin down the best-effort indexing policy.
func newBrokenSearchService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"boom"}`)
	}))
	t.Cleanup(srv.Close)

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	logStore := activitylog.NewStore(db, log)
	recorder := changelog.NewRecorder(logStore, nil, log)
	engine := analytics.NewEngine(db, nil, nil, log)
	appStore := applications.NewStore(db, log)
	contactStore := network.NewStore(db, log)
	index := search.NewIndex(esClient, "applications", log)

	return NewService(appStore, contactStore, logStore, recorder, engine, index, log), mock
}

func svcAppRow(id, status string) *sqlmock.Rows {
	return sqlmock.NewRows(svcAppColumns).
		AddRow(id, "user-1", "Initech", "Backend Engineer", status, "other",
			svcNow.AddDate(0, 0, -1), svcNow, nil, nil, "{}", "", svcNow, svcNow)
}

func TestCreateApplication_LogsCreationAndInvalidates(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activity_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	app, err := svc.CreateApplication(context.Background(), "user-1", applications.CreateInput{
		Company:     "Initech",
		Role:        "Backend Engineer",
		DateApplied: svcNow.AddDate(0, 0, -1),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplication_LogAppendFailureDoesNotFailMutation(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activity_logs").
		WillReturnError(assert.AnError)

	_, err := svc.CreateApplication(context.Background(), "user-1", applications.CreateInput{
		Company:     "Initech",
		Role:        "Backend Engineer",
		DateApplied: svcNow.AddDate(0, 0, -1),
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateApplication_StatusChangeLogsOneEntry(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`FROM applications WHERE id = \$1 AND user_id = \$2`).
		WithArgs("app-1", "user-1").
		WillReturnRows(svcAppRow("app-1", "applied"))
	mock.ExpectExec(`UPDATE applications SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM applications WHERE id = \$1 AND user_id = \$2`).
		WithArgs("app-1", "user-1").
		WillReturnRows(svcAppRow("app-1", "interviewing"))
	mock.ExpectExec("INSERT INTO activity_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	status := "interviewing"
	updated, err := svc.UpdateApplication(context.Background(), "user-1", "app-1", applications.UpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "interviewing", updated.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateApplication_NoOpEmitsNoLogEntry(t *testing.T) {
	svc, mock := newTestService(t)

	// Old and new snapshots are identical, so no activity_logs insert
	// may follow the update.
	mock.ExpectQuery(`FROM applications WHERE id = \$1 AND user_id = \$2`).
		WithArgs("app-1", "user-1").
		WillReturnRows(svcAppRow("app-1", "applied"))
	mock.ExpectExec(`UPDATE applications SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM applications WHERE id = \$1 AND user_id = \$2`).
		WithArgs("app-1", "user-1").
		WillReturnRows(svcAppRow("app-1", "applied"))

	status := "applied"
	_, err := svc.UpdateApplication(context.Background(), "user-1", "app-1", applications.UpdateInput{Status: &status})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateApplication_NotFoundShortCircuits(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`FROM applications WHERE id = \$1 AND user_id = \$2`).
		WithArgs("app-404", "user-1").
		WillReturnRows(sqlmock.NewRows(svcAppColumns))

	status := "interviewing"
	_, err := svc.UpdateApplication(context.Background(), "user-1", "app-404", applications.UpdateInput{Status: &status})
	assert.True(t, commonerrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteApplication_LogsDeletionWithDisplayName(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`FROM applications WHERE id = \$1 AND user_id = \$2`).
		WithArgs("app-1", "user-1").
		WillReturnRows(svcAppRow("app-1", "rejected"))
	mock.ExpectExec(`DELETE FROM applications`).
		WithArgs("app-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activity_logs").
		WithArgs(sqlmock.AnyArg(), "user-1", "application", "app-1", "Initech - Backend Engineer",
			"deleted", nil, "Deleted Initech - Backend Engineer application", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.DeleteApplication(context.Background(), "user-1", "app-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateApplication_IndexFailureDoesNotFailMutation(t *testing.T) {
	svc, mock := newBrokenSearchService(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activity_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	app, err := svc.CreateApplication(context.Background(), "user-1", applications.CreateInput{
		Company:     "Initech",
		Role:        "Backend Engineer",
		DateApplied: svcNow.AddDate(0, 0, -1),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteApplication_IndexFailureDoesNotFailMutation(t *testing.T) {
	svc, mock := newBrokenSearchService(t)

	mock.ExpectQuery(`FROM applications WHERE id = \$1 AND user_id = \$2`).
		WithArgs("app-1", "user-1").
		WillReturnRows(svcAppRow("app-1", "rejected"))
	mock.ExpectExec(`DELETE FROM applications`).
		WithArgs("app-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activity_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.DeleteApplication(context.Background(), "user-1", "app-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchApplications_WithoutIndexFallsBackToCompanyFilter(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`AND company ILIKE \$2`).
		WithArgs("user-1", "%initech%").
		WillReturnRows(svcAppRow("app-1", "applied"))

	apps, err := svc.SearchApplications(context.Background(), "user-1", "initech")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Initech", apps[0].Company)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContactFromApplication_InheritsCompanyAndNotesProvenance(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`FROM applications WHERE id = \$1 AND user_id = \$2`).
		WithArgs("app-1", "user-1").
		WillReturnRows(svcAppRow("app-1", "interviewing"))
	mock.ExpectExec("INSERT INTO network_contacts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activity_logs").
		WithArgs(sqlmock.AnyArg(), "user-1", "network", sqlmock.AnyArg(), "Dana Q (Initech)",
			"created", nil, "Added Dana Q (Initech) to network (from application)", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	contact, err := svc.CreateContactFromApplication(context.Background(), "user-1", "app-1", network.CreateInput{
		Name: "Dana Q",
	})
	require.NoError(t, err)
	// Company comes from the application when the input leaves it blank.
	assert.Equal(t, "Initech", contact.Company)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContactFromApplication_MissingApplicationShortCircuits(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`FROM applications WHERE id = \$1 AND user_id = \$2`).
		WithArgs("app-404", "user-1").
		WillReturnRows(sqlmock.NewRows(svcAppColumns))

	_, err := svc.CreateContactFromApplication(context.Background(), "user-1", "app-404", network.CreateInput{
		Name: "Dana Q",
	})
	assert.True(t, commonerrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContact_LogsCreation(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec("INSERT INTO network_contacts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activity_logs").
		WithArgs(sqlmock.AnyArg(), "user-1", "network", sqlmock.AnyArg(), "Dana Q (Initech)",
			"created", nil, "Added Dana Q (Initech) to network", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	contact, err := svc.CreateContact(context.Background(), "user-1", network.CreateInput{
		Name:    "Dana Q",
		Company: "Initech",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dana Q", contact.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
