// Package network persists networking contacts.
package network

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
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "network"}),
		now:    time.Now,
	}
}

// CreateInput carries the fields for a new contact.
type CreateInput struct {
	Name              string
	Email             string
	Company           string
	Role              string
	MetAt             string
	MetDate           time.Time
	FollowUpDate      *time.Time
	LastContactedDate *time.Time
	Notes             string
}

// Create inserts a new contact with normalized strings: trimmed name,
// company and role, lowercased email.
func (s *Store) Create(ctx context.Context, userID string, input CreateInput) (*models.NetworkContact, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < 2 {
		return nil, commonerrors.NewValidationError("name must be at least 2 characters")
	}

	metAt := input.MetAt
	if metAt == "" {
		metAt = models.MetAtOther
	}
	if !models.IsValidMetAt(metAt) {
		return nil, commonerrors.NewInvalidMetAtError(fmt.Sprintf("must be one of: %s", strings.Join(models.ValidMetAt, ", ")))
	}

	metDate := input.MetDate
	if metDate.IsZero() {
		metDate = s.now()
	}

	contact := &models.NetworkContact{
		ID:                uuid.New().String(),
		UserID:            userID,
		Name:              name,
		Email:             strings.ToLower(strings.TrimSpace(input.Email)),
		Company:           strings.TrimSpace(input.Company),
		Role:              strings.TrimSpace(input.Role),
		MetAt:             metAt,
		MetDate:           metDate.UTC(),
		FollowUpDate:      utcPtr(input.FollowUpDate),
		LastContactedDate: utcPtr(input.LastContactedDate),
		Notes:             input.Notes,
		CreatedAt:         s.now().UTC(),
		UpdatedAt:         s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO network_contacts (
			id, user_id, name, email, company, role, met_at,
			met_date, follow_up_date, last_contacted_date,
			notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		contact.ID,
		contact.UserID,
		contact.Name,
		contact.Email,
		contact.Company,
		contact.Role,
		contact.MetAt,
		contact.MetDate,
		contact.FollowUpDate,
		contact.LastContactedDate,
		contact.Notes,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("insert contact: %v", err))
	}

	return contact, nil
}

// Filters narrows ListByUser results. Company and name match by
// case-insensitive substring.
type Filters struct {
	Company string
	Name    string
	MetAt   string
}

// ListByUser returns the user's contacts, most recently updated first.
func (s *Store) ListByUser(ctx context.Context, userID string, filters Filters) ([]models.NetworkContact, error) {
	query := selectColumns + ` FROM network_contacts WHERE user_id = $1`
	args := []interface{}{userID}

	if filters.Company != "" {
		args = append(args, "%"+filters.Company+"%")
		query += fmt.Sprintf(" AND company ILIKE $%d", len(args))
	}
	if filters.Name != "" {
		args = append(args, "%"+filters.Name+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if filters.MetAt != "" {
		args = append(args, filters.MetAt)
		query += fmt.Sprintf(" AND met_at = $%d", len(args))
	}

	query += " ORDER BY updated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("list contacts: %v", err))
	}
	defer rows.Close()

	contacts := []models.NetworkContact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("scan contact: %v", err))
		}
		contacts = append(contacts, *contact)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("iterate contacts: %v", err))
	}
	return contacts, nil
}

// GetByID fetches one contact owned by userID.
func (s *Store) GetByID(ctx context.Context, id, userID string) (*models.NetworkContact, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+`
		FROM network_contacts WHERE id = $1 AND user_id = $2`, id, userID)

	contact, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, commonerrors.NewNotFoundError(fmt.Sprintf("contact %s", id))
	}
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("get contact: %v", err))
	}
	return contact, nil
}

// UpdateInput carries the optional fields of a contact update; nil
// fields are left untouched.
type UpdateInput struct {
	Name              *string
	Email             *string
	Company           *string
	Role              *string
	MetAt             *string
	MetDate           *time.Time
	FollowUpDate      *time.Time
	LastContactedDate *time.Time
	Notes             *string
}

// Update applies the non-nil fields with the same normalization as
// Create and refreshes updatedAt.
func (s *Store) Update(ctx context.Context, id, userID string, input UpdateInput) (*models.NetworkContact, error) {
	if input.MetAt != nil && !models.IsValidMetAt(*input.MetAt) {
		return nil, commonerrors.NewInvalidMetAtError(fmt.Sprintf("must be one of: %s", strings.Join(models.ValidMetAt, ", ")))
	}
	if input.Name != nil && len(strings.TrimSpace(*input.Name)) < 2 {
		return nil, commonerrors.NewValidationError("name must be at least 2 characters")
	}

	set := []string{}
	args := []interface{}{}
	add := func(col string, val interface{}) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if input.Name != nil {
		add("name", strings.TrimSpace(*input.Name))
	}
	if input.Email != nil {
		add("email", strings.ToLower(strings.TrimSpace(*input.Email)))
	}
	if input.Company != nil {
		add("company", strings.TrimSpace(*input.Company))
	}
	if input.Role != nil {
		add("role", strings.TrimSpace(*input.Role))
	}
	if input.MetAt != nil {
		add("met_at", *input.MetAt)
	}
	if input.MetDate != nil {
		add("met_date", input.MetDate.UTC())
	}
	if input.FollowUpDate != nil {
		add("follow_up_date", input.FollowUpDate.UTC())
	}
	if input.LastContactedDate != nil {
		add("last_contacted_date", input.LastContactedDate.UTC())
	}
	if input.Notes != nil {
		add("notes", *input.Notes)
	}

	add("updated_at", s.now().UTC())

	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE network_contacts SET %s
		WHERE id = $%d AND user_id = $%d`,
		strings.Join(set, ", "), len(args)-1, len(args))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("update contact: %v", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("update contact: %v", err))
	}
	if affected == 0 {
		return nil, commonerrors.NewNotFoundError(fmt.Sprintf("contact %s", id))
	}

	return s.GetByID(ctx, id, userID)
}

// Delete removes one contact owned by userID.
func (s *Store) Delete(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM network_contacts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return commonerrors.NewStoreUnavailableError(fmt.Sprintf("delete contact: %v", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return commonerrors.NewStoreUnavailableError(fmt.Sprintf("delete contact: %v", err))
	}
	if affected == 0 {
		return commonerrors.NewNotFoundError(fmt.Sprintf("contact %s", id))
	}
	return nil
}

const selectColumns = `
	SELECT id, user_id, name, email, company, role, met_at,
	       met_date, follow_up_date, last_contacted_date,
	       notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(row rowScanner) (*models.NetworkContact, error) {
	var contact models.NetworkContact
	var followUp, lastContacted sql.NullTime

	err := row.Scan(
		&contact.ID,
		&contact.UserID,
		&contact.Name,
		&contact.Email,
		&contact.Company,
		&contact.Role,
		&contact.MetAt,
		&contact.MetDate,
		&followUp,
		&lastContacted,
		&contact.Notes,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if followUp.Valid {
		t := followUp.Time
		contact.FollowUpDate = &t
	}
	if lastContacted.Valid {
		t := lastContacted.Time
		contact.LastContactedDate = &t
	}

	return &contact, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
