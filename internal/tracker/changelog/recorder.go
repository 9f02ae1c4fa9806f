package changelog

import (
	"context"
	"time"

	"jobtrack-backend/internal/common/logger"
	"jobtrack-backend/internal/common/metrics"
	"jobtrack-backend/internal/common/observability"
	"jobtrack-backend/internal/models"

	"github.com/google/uuid"
)

// Store is the append side of the activity log.
type Store interface {
	Append(ctx context.Context, entry *models.ActivityLogEntry) error
}

// Recorder composes change detection and summary generation into
// activity log appends. Appends are best effort: the primary entity
// mutation has already committed by the time the recorder runs, so a
// failed append is logged and counted but never propagated.
type Recorder struct {
	store  Store
	obs    *observability.Observability
	logger logger.Logger
	now    func() time.Time
}

func NewRecorder(store Store, obs *observability.Observability, log logger.Logger) *Recorder {
	return &Recorder{
		store:  store,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "changelog"}),
		now:    time.Now,
	}
}

// RecordCreate logs the creation of an application or contact.
func (r *Recorder) RecordCreate(ctx context.Context, userID, entityType, entityID, entityName string) []models.ActivityLogEntry {
	entry := r.newEntry(userID, entityType, entityID, entityName, models.ActionCreated)
	entry.Summary = createSummary(entityType, entityName)
	return r.append(ctx, entityType, models.ActionCreated, entry)
}

// RecordCreateFromApplication logs a contact created out of an
// application's contact list; the summary carries the provenance.
func (r *Recorder) RecordCreateFromApplication(ctx context.Context, userID, contactID, entityName string) []models.ActivityLogEntry {
	entry := r.newEntry(userID, models.EntityTypeNetwork, contactID, entityName, models.ActionCreated)
	entry.Summary = createFromApplicationSummary(entityName)
	return r.append(ctx, models.EntityTypeNetwork, models.ActionCreated, entry)
}

// RecordDelete logs the deletion of an application or contact.
func (r *Recorder) RecordDelete(ctx context.Context, userID, entityType, entityID, entityName string) []models.ActivityLogEntry {
	entry := r.newEntry(userID, entityType, entityID, entityName, models.ActionDeleted)
	entry.Summary = deleteSummary(entityType, entityName)
	return r.append(ctx, entityType, models.ActionDeleted, entry)
}

// RecordApplicationUpdate diffs the two application snapshots and logs
// one entry per changed tracked field. A no-op update yields nothing.
func (r *Recorder) RecordApplicationUpdate(ctx context.Context, userID, appID, entityName string, oldState, newState map[string]interface{}) []models.ActivityLogEntry {
	changes := Detect(oldState, newState, ApplicationTrackedFields)
	if len(changes) == 0 {
		return nil
	}

	entries := make([]*models.ActivityLogEntry, 0, len(changes))
	for _, ch := range changes {
		ch := ch
		entry := r.newEntry(userID, models.EntityTypeApplication, appID, entityName, models.ActionUpdated)
		entry.Changes = &ch
		entry.Summary = applicationChangeSummary(ch)
		entries = append(entries, entry)
	}
	return r.append(ctx, models.EntityTypeApplication, models.ActionUpdated, entries...)
}

// RecordContactUpdate diffs the two contact snapshots and logs one
// entry per changed tracked field. Summaries address the contact by
// bare name while the entity name keeps the "(company)" suffix.
func (r *Recorder) RecordContactUpdate(ctx context.Context, userID, contactID, name, entityName string, oldState, newState map[string]interface{}) []models.ActivityLogEntry {
	changes := Detect(oldState, newState, ContactTrackedFields)
	if len(changes) == 0 {
		return nil
	}

	entries := make([]*models.ActivityLogEntry, 0, len(changes))
	for _, ch := range changes {
		ch := ch
		entry := r.newEntry(userID, models.EntityTypeNetwork, contactID, entityName, models.ActionUpdated)
		entry.Changes = &ch
		entry.Summary = contactChangeSummary(name, ch)
		entries = append(entries, entry)
	}
	return r.append(ctx, models.EntityTypeNetwork, models.ActionUpdated, entries...)
}

func (r *Recorder) newEntry(userID, entityType, entityID, entityName, action string) *models.ActivityLogEntry {
	return &models.ActivityLogEntry{
		ID:         uuid.New().String(),
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Action:     action,
		Timestamp:  r.now().UTC(),
	}
}

func (r *Recorder) append(ctx context.Context, entityType, action string, entries ...*models.ActivityLogEntry) []models.ActivityLogEntry {
	appended := make([]models.ActivityLogEntry, 0, len(entries))
	for _, entry := range entries {
		if err := r.store.Append(ctx, entry); err != nil {
			metrics.LogAppendFailures.WithLabelValues(entityType).Inc()
			r.logger.Warn("activity log append failed", map[string]interface{}{
				"error":      err,
				"entityType": entityType,
				"entityId":   entry.EntityID,
				"action":     action,
			})
			continue
		}
		metrics.MutationsRecorded.WithLabelValues(entityType, action).Inc()
		if r.obs != nil {
			r.obs.RecordMutation(ctx, entityType, action)
		}
		appended = append(appended, *entry)
	}
	return appended
}
