// Package tracker exposes the job-search tracker core to its callers:
// entity mutations with audit logging, derived statistics, streaks and
// the activity feed. The HTTP/session layer above it hands in
// authenticated user ids and already-parsed payloads.
package tracker

import (
	"context"

	"jobtrack-backend/internal/common/logger"
	"jobtrack-backend/internal/models"
	"jobtrack-backend/internal/tracker/activitylog"
	"jobtrack-backend/internal/tracker/analytics"
	"jobtrack-backend/internal/tracker/applications"
	"jobtrack-backend/internal/tracker/changelog"
	"jobtrack-backend/internal/tracker/network"
	"jobtrack-backend/internal/tracker/search"
)

type Service struct {
	apps     *applications.Store
	contacts *network.Store
	logs     *activitylog.Store
	recorder *changelog.Recorder
	engine   *analytics.Engine
	index    *search.Index
	logger   logger.Logger
}

// NewService wires the tracker core. index may be nil when search is
// disabled.
func NewService(
	apps *applications.Store,
	contacts *network.Store,
	logs *activitylog.Store,
	recorder *changelog.Recorder,
	engine *analytics.Engine,
	index *search.Index,
	log logger.Logger,
) *Service {
	return &Service{
		apps:     apps,
		contacts: contacts,
		logs:     logs,
		recorder: recorder,
		engine:   engine,
		index:    index,
		logger:   log.WithFields(map[string]interface{}{"component": "tracker"}),
	}
}

// ---- Applications ----

func (s *Service) CreateApplication(ctx context.Context, userID string, input applications.CreateInput) (*models.Application, error) {
	app, err := s.apps.Create(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	// The mutation is committed; everything below is best effort.
	s.recorder.RecordCreate(ctx, userID, models.EntityTypeApplication, app.ID, app.DisplayName())
	s.engine.Invalidate(ctx, userID)
	s.reindex(ctx, app)

	return app, nil
}

func (s *Service) UpdateApplication(ctx context.Context, userID, id string, input applications.UpdateInput) (*models.Application, error) {
	existing, err := s.apps.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.apps.Update(ctx, id, userID, input)
	if err != nil {
		return nil, err
	}

	s.recorder.RecordApplicationUpdate(ctx, userID, id, updated.DisplayName(), existing.Snapshot(), updated.Snapshot())
	s.engine.Invalidate(ctx, userID)
	s.reindex(ctx, updated)

	return updated, nil
}

func (s *Service) DeleteApplication(ctx context.Context, userID, id string) error {
	existing, err := s.apps.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.apps.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.recorder.RecordDelete(ctx, userID, models.EntityTypeApplication, id, existing.DisplayName())
	s.engine.Invalidate(ctx, userID)
	if s.index != nil {
		if err := s.index.DeleteApplication(ctx, id); err != nil {
			s.logger.Warn("search index delete failed", map[string]interface{}{
				"error":         err,
				"applicationId": id,
			})
		}
	}

	return nil
}

func (s *Service) GetApplication(ctx context.Context, userID, id string) (*models.Application, error) {
	return s.apps.GetByID(ctx, id, userID)
}

func (s *Service) ListApplications(ctx context.Context, userID string, filters applications.Filters) ([]models.Application, error) {
	return s.apps.ListByUser(ctx, userID, filters)
}

// SearchApplications resolves a free-text query against the search
// index and loads the matching applications, preserving relevance
// order. Documents whose backing row has vanished are skipped.
func (s *Service) SearchApplications(ctx context.Context, userID, query string) ([]models.Application, error) {
	if s.index == nil {
		return s.apps.ListByUser(ctx, userID, applications.Filters{Company: query})
	}

	ids, err := s.index.Search(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	apps := make([]models.Application, 0, len(ids))
	for _, id := range ids {
		app, err := s.apps.GetByID(ctx, id, userID)
		if err != nil {
			continue
		}
		apps = append(apps, *app)
	}
	return apps, nil
}

// ---- Network contacts ----

func (s *Service) CreateContact(ctx context.Context, userID string, input network.CreateInput) (*models.NetworkContact, error) {
	contact, err := s.contacts.Create(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	s.recorder.RecordCreate(ctx, userID, models.EntityTypeNetwork, contact.ID, contact.DisplayName())
	s.engine.Invalidate(ctx, userID)

	return contact, nil
}

// CreateContactFromApplication stores a contact lifted out of an
// application's contact list. The contact's company defaults to the
// application's when the input leaves it blank, and the activity entry
// notes the provenance.
func (s *Service) CreateContactFromApplication(ctx context.Context, userID, applicationID string, input network.CreateInput) (*models.NetworkContact, error) {
	app, err := s.apps.GetByID(ctx, applicationID, userID)
	if err != nil {
		return nil, err
	}
	if input.Company == "" {
		input.Company = app.Company
	}

	contact, err := s.contacts.Create(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	s.recorder.RecordCreateFromApplication(ctx, userID, contact.ID, contact.DisplayName())
	s.engine.Invalidate(ctx, userID)

	return contact, nil
}

func (s *Service) UpdateContact(ctx context.Context, userID, id string, input network.UpdateInput) (*models.NetworkContact, error) {
	existing, err := s.contacts.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.contacts.Update(ctx, id, userID, input)
	if err != nil {
		return nil, err
	}

	s.recorder.RecordContactUpdate(ctx, userID, id, updated.Name, updated.DisplayName(), existing.Snapshot(), updated.Snapshot())
	s.engine.Invalidate(ctx, userID)

	return updated, nil
}

func (s *Service) DeleteContact(ctx context.Context, userID, id string) error {
	existing, err := s.contacts.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.contacts.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.recorder.RecordDelete(ctx, userID, models.EntityTypeNetwork, id, existing.DisplayName())
	s.engine.Invalidate(ctx, userID)

	return nil
}

func (s *Service) GetContact(ctx context.Context, userID, id string) (*models.NetworkContact, error) {
	return s.contacts.GetByID(ctx, id, userID)
}

func (s *Service) ListContacts(ctx context.Context, userID string, filters network.Filters) ([]models.NetworkContact, error) {
	return s.contacts.ListByUser(ctx, userID, filters)
}

// ---- Derived statistics ----

func (s *Service) GetStats(ctx context.Context, userID string) (*models.StatsSnapshot, error) {
	return s.engine.Stats(ctx, userID)
}

func (s *Service) GetNetworkStats(ctx context.Context, userID string) (*models.NetworkStats, error) {
	return s.engine.NetworkStats(ctx, userID)
}

func (s *Service) GetStreak(ctx context.Context, userID string) (models.StreakResult, error) {
	return s.engine.Streak(ctx, userID)
}

// ---- Activity log ----

func (s *Service) ListLogs(ctx context.Context, userID string, limit int) ([]models.ActivityLogEntry, error) {
	return s.logs.ListByUser(ctx, userID, limit)
}

func (s *Service) ListLogsByEntityType(ctx context.Context, userID, entityType string) ([]models.ActivityLogEntry, error) {
	return s.logs.ListByEntityType(ctx, userID, entityType)
}

func (s *Service) ListLogsByEntity(ctx context.Context, entityID string) ([]models.ActivityLogEntry, error) {
	return s.logs.ListByEntityID(ctx, entityID)
}

func (s *Service) UpdateLogNote(ctx context.Context, entryID, userID, note string) (*models.ActivityLogEntry, error) {
	return s.logs.UpdateNote(ctx, entryID, userID, note)
}

func (s *Service) reindex(ctx context.Context, app *models.Application) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexApplication(ctx, app); err != nil {
		s.logger.Warn("search index write failed", map[string]interface{}{
			"error":         err,
			"applicationId": app.ID,
		})
	}
}
