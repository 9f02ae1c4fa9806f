// Package applications persists job applications and exposes the
// user-scoped queries the analytics engine and streak calculator read.
package applications

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	commonerrors "jobtrack-backend/internal/common/errors"
	"jobtrack-backend/internal/common/logger"
	"jobtrack-backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "applications"}),
		now:    time.Now,
	}
}

// CreateInput carries the validated fields for a new application.
type CreateInput struct {
	Company     string
	Role        string
	Status      string
	Source      string
	DateApplied time.Time
	Notes       string
	SalaryRange models.SalaryRange
	Contacts    []string
}

// Create inserts a new application. (userID, company, role,
// dateApplied) must be unique; a duplicate submission is rejected
// before the insert.
func (s *Store) Create(ctx context.Context, userID string, input CreateInput) (*models.Application, error) {
	if input.Company == "" || input.Role == "" {
		return nil, commonerrors.NewValidationError("company and role are required")
	}
	if input.DateApplied.IsZero() {
		return nil, commonerrors.NewInvalidDateError("dateApplied is required")
	}

	status := input.Status
	if status == "" {
		status = models.StatusApplied
	}
	if !models.IsValidStatus(status) {
		return nil, commonerrors.NewInvalidStatusError(fmt.Sprintf("must be one of: %s", strings.Join(models.ValidStatuses, ", ")))
	}

	source := input.Source
	if source == "" {
		source = "other"
	}

	app := &models.Application{
		ID:          uuid.New().String(),
		UserID:      userID,
		Company:     strings.TrimSpace(input.Company),
		Role:        strings.TrimSpace(input.Role),
		Status:      status,
		Source:      source,
		DateApplied: input.DateApplied.UTC(),
		LastUpdated: s.now().UTC(),
		SalaryRange: input.SalaryRange,
		Contacts:    input.Contacts,
		Notes:       input.Notes,
		CreatedAt:   s.now().UTC(),
		UpdatedAt:   s.now().UTC(),
	}

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE user_id = $1 AND company = $2 AND role = $3 AND date_applied = $4
		)`, userID, app.Company, app.Role, app.DateApplied).Scan(&exists)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("duplicate check failed: %v", err))
	}
	if exists {
		return nil, commonerrors.NewDuplicateApplicationError(
			fmt.Sprintf("%s at %s on %s", app.Role, app.Company, app.DateApplied.Format("2006-01-02")))
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, user_id, company, role, status, source,
			date_applied, last_updated, salary_min, salary_max,
			contacts, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		app.ID,
		app.UserID,
		app.Company,
		app.Role,
		app.Status,
		app.Source,
		app.DateApplied,
		app.LastUpdated,
		app.SalaryRange.Min,
		app.SalaryRange.Max,
		pq.Array(app.Contacts),
		app.Notes,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, commonerrors.NewDuplicateApplicationError(pqErr.Detail)
		}
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("insert application: %v", err))
	}

	return app, nil
}

// Filters narrows ListByUser results.
type Filters struct {
	Status   string
	Company  string
	Source   string
	FromDate time.Time
	ToDate   time.Time
}

// ListByUser returns the user's applications newest first, optionally
// filtered. Company matches by case-insensitive substring.
func (s *Store) ListByUser(ctx context.Context, userID string, filters Filters) ([]models.Application, error) {
	query := selectColumns + ` FROM applications WHERE user_id = $1`
	args := []interface{}{userID}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filters.Company != "" {
		args = append(args, "%"+filters.Company+"%")
		query += fmt.Sprintf(" AND company ILIKE $%d", len(args))
	}
	if filters.Source != "" {
		args = append(args, filters.Source)
		query += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if !filters.FromDate.IsZero() {
		args = append(args, filters.FromDate)
		query += fmt.Sprintf(" AND date_applied >= $%d", len(args))
	}
	if !filters.ToDate.IsZero() {
		args = append(args, filters.ToDate)
		query += fmt.Sprintf(" AND date_applied <= $%d", len(args))
	}

	query += " ORDER BY date_applied DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("list applications: %v", err))
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("scan application: %v", err))
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("iterate applications: %v", err))
	}
	return apps, nil
}

// GetByID fetches one application owned by userID.
func (s *Store) GetByID(ctx context.Context, id, userID string) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+`
		FROM applications WHERE id = $1 AND user_id = $2`, id, userID)

	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, commonerrors.NewNotFoundError(fmt.Sprintf("application %s", id))
	}
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("get application: %v", err))
	}
	return app, nil
}

// UpdateInput carries the optional fields of an application update;
// nil fields are left untouched. Identity and ownership fields cannot
// be updated.
type UpdateInput struct {
	Company     *string
	Role        *string
	Status      *string
	Source      *string
	DateApplied *time.Time
	Notes       *string
	SalaryRange *models.SalaryRange
	Contacts    *[]string
}

// Update applies the non-nil fields and refreshes lastUpdated and
// updatedAt. Returns the updated application, or not found when the
// application doesn't exist or belongs to another user.
func (s *Store) Update(ctx context.Context, id, userID string, input UpdateInput) (*models.Application, error) {
	if input.Status != nil && !models.IsValidStatus(*input.Status) {
		return nil, commonerrors.NewInvalidStatusError(fmt.Sprintf("must be one of: %s", strings.Join(models.ValidStatuses, ", ")))
	}

	set := []string{}
	args := []interface{}{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if input.Company != nil {
		add("company", strings.TrimSpace(*input.Company))
	}
	if input.Role != nil {
		add("role", strings.TrimSpace(*input.Role))
	}
	if input.Status != nil {
		add("status", *input.Status)
	}
	if input.Source != nil {
		add("source", *input.Source)
	}
	if input.DateApplied != nil {
		add("date_applied", input.DateApplied.UTC())
	}
	if input.Notes != nil {
		add("notes", *input.Notes)
	}
	if input.SalaryRange != nil {
		add("salary_min", input.SalaryRange.Min)
		add("salary_max", input.SalaryRange.Max)
	}
	if input.Contacts != nil {
		add("contacts", pq.Array(*input.Contacts))
	}

	nowUTC := s.now().UTC()
	add("last_updated", nowUTC)
	add("updated_at", nowUTC)

	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE applications SET %s
		WHERE id = $%d AND user_id = $%d`,
		strings.Join(set, ", "), len(args)-1, len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, commonerrors.NewDuplicateApplicationError(pqErr.Detail)
		}
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("update application: %v", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("update application: %v", err))
	}
	if affected == 0 {
		return nil, commonerrors.NewNotFoundError(fmt.Sprintf("application %s", id))
	}

	return s.GetByID(ctx, id, userID)
}

// Delete removes one application owned by userID.
func (s *Store) Delete(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return commonerrors.NewStoreUnavailableError(fmt.Sprintf("delete application: %v", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return commonerrors.NewStoreUnavailableError(fmt.Sprintf("delete application: %v", err))
	}
	if affected == 0 {
		return commonerrors.NewNotFoundError(fmt.Sprintf("application %s", id))
	}
	return nil
}

const selectColumns = `
	SELECT id, user_id, company, role, status, source,
	       date_applied, last_updated, salary_min, salary_max,
	       contacts, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	var salaryMin, salaryMax sql.NullInt64
	var contacts pq.StringArray

	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.Company,
		&app.Role,
		&app.Status,
		&app.Source,
		&app.DateApplied,
		&app.LastUpdated,
		&salaryMin,
		&salaryMax,
		&contacts,
		&app.Notes,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if salaryMin.Valid {
		v := int(salaryMin.Int64)
		app.SalaryRange.Min = &v
	}
	if salaryMax.Valid {
		v := int(salaryMax.Int64)
		app.SalaryRange.Max = &v
	}
	app.Contacts = contacts

	return &app, nil
}
