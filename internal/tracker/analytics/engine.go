// Package analytics derives per-user statistics from the application
// and contact collections. Computations are read only, stateless, and
// return zero-valued structures on empty input.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	commonerrors "jobtrack-backend/internal/common/errors"
	"jobtrack-backend/internal/common/logger"
	"jobtrack-backend/internal/common/metrics"
	"jobtrack-backend/internal/common/observability"
	"jobtrack-backend/internal/models"
	"jobtrack-backend/internal/tracker/streak"

	"github.com/lib/pq"
)

// respondedStatuses defines which statuses count as "responded" in the
// per-source breakdown. Carried over from the legacy tracker, which
// counted every recognized status including plain "applied"; see
// DESIGN.md before narrowing it.
var respondedStatuses = models.ValidStatuses

type Engine struct {
	db     *sql.DB
	cache  *Cache
	obs    *observability.Observability
	logger logger.Logger
	now    func() time.Time
}

// NewEngine builds an analytics engine over db. cache and obs may be
// nil; the engine then computes uncached and unmetered.
func NewEngine(db *sql.DB, cache *Cache, obs *observability.Observability, log logger.Logger) *Engine {
	return &Engine{
		db:     db,
		cache:  cache,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "analytics"}),
		now:    time.Now,
	}
}

// Stats computes the full StatsSnapshot for one user, consulting the
// cache when one is configured.
func (e *Engine) Stats(ctx context.Context, userID string) (*models.StatsSnapshot, error) {
	if e.cache != nil {
		if cached, ok := e.cache.GetStats(ctx, userID); ok {
			return cached, nil
		}
	}

	start := e.now()

	total, err := e.total(ctx, userID)
	if err != nil {
		return nil, err
	}
	byStatus, err := e.StatusBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}
	bySource, err := e.SourceBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}
	avgDays, err := e.AvgDaysPerStage(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.StatsSnapshot{
		Total:           total,
		ByStatus:        byStatus,
		BySource:        bySource,
		AvgDaysPerStage: avgDays,
	}

	e.recordDuration(ctx, "applications", e.now().Sub(start))

	if e.cache != nil {
		e.cache.SetStats(ctx, userID, snapshot)
	}
	return snapshot, nil
}

// StatusBreakdown counts the user's applications grouped by status.
// Statuses with no applications are absent; zero-filling belongs to the
// presentation layer.
func (e *Engine) StatusBreakdown(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM applications
		WHERE user_id = $1
		GROUP BY status`, userID)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("status breakdown: %v", err))
	}
	defer rows.Close()

	byStatus := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("status breakdown scan: %v", err))
		}
		byStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("status breakdown rows: %v", err))
	}
	return byStatus, nil
}

// SourceBreakdown reports totals and response rate per application
// source. The rate is responded/total*100 and exactly zero when a
// source has no applications.
func (e *Engine) SourceBreakdown(ctx context.Context, userID string) ([]models.SourceStats, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT source,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status = ANY($2)) AS responded
		FROM applications
		WHERE user_id = $1
		GROUP BY source
		ORDER BY total DESC, source`, userID, pq.Array(respondedStatuses))
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("source breakdown: %v", err))
	}
	defer rows.Close()

	bySource := []models.SourceStats{}
	for rows.Next() {
		var s models.SourceStats
		if err := rows.Scan(&s.Source, &s.Total, &s.Responded); err != nil {
			return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("source breakdown scan: %v", err))
		}
		if s.Total > 0 {
			s.ResponseRate = float64(s.Responded) / float64(s.Total) * 100
		}
		bySource = append(bySource, s)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("source breakdown rows: %v", err))
	}
	return bySource, nil
}

// AvgDaysPerStage averages, per current status, the days between
// dateApplied and lastUpdated for applications that moved past
// "applied", rounded to the nearest whole day.
func (e *Engine) AvgDaysPerStage(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT status,
		       AVG(EXTRACT(EPOCH FROM (last_updated - date_applied)) / 86400)
		FROM applications
		WHERE user_id = $1 AND status <> $2
		GROUP BY status`, userID, models.StatusApplied)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("avg days per stage: %v", err))
	}
	defer rows.Close()

	avgDays := map[string]int{}
	for rows.Next() {
		var status string
		var days float64
		if err := rows.Scan(&status, &days); err != nil {
			return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("avg days scan: %v", err))
		}
		avgDays[status] = int(math.Round(days))
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("avg days rows: %v", err))
	}
	return avgDays, nil
}

// NetworkStats counts the user's contacts by company and by source.
func (e *Engine) NetworkStats(ctx context.Context, userID string) (*models.NetworkStats, error) {
	if e.cache != nil {
		if cached, ok := e.cache.GetNetworkStats(ctx, userID); ok {
			return cached, nil
		}
	}

	start := e.now()

	stats := &models.NetworkStats{
		ByCompany: map[string]int{},
		ByMetAt:   map[string]int{},
	}

	rows, err := e.db.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(company, ''), 'unknown'), COUNT(*)
		FROM network_contacts
		WHERE user_id = $1
		GROUP BY 1`, userID)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("network by company: %v", err))
	}
	defer rows.Close()

	for rows.Next() {
		var company string
		var count int
		if err := rows.Scan(&company, &count); err != nil {
			return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("network by company scan: %v", err))
		}
		stats.ByCompany[company] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("network by company rows: %v", err))
	}

	metRows, err := e.db.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(met_at, ''), 'other'), COUNT(*)
		FROM network_contacts
		WHERE user_id = $1
		GROUP BY 1`, userID)
	if err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("network by met_at: %v", err))
	}
	defer metRows.Close()

	for metRows.Next() {
		var metAt string
		var count int
		if err := metRows.Scan(&metAt, &count); err != nil {
			return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("network by met_at scan: %v", err))
		}
		stats.ByMetAt[metAt] = count
	}
	if err := metRows.Err(); err != nil {
		return nil, commonerrors.NewStoreUnavailableError(fmt.Sprintf("network by met_at rows: %v", err))
	}

	e.recordDuration(ctx, "network", e.now().Sub(start))

	if e.cache != nil {
		e.cache.SetNetworkStats(ctx, userID, stats)
	}
	return stats, nil
}

// Streak computes the user's application streak from all dateApplied
// values.
func (e *Engine) Streak(ctx context.Context, userID string) (models.StreakResult, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT date_applied
		FROM applications
		WHERE user_id = $1
		ORDER BY date_applied DESC`, userID)
	if err != nil {
		return models.StreakResult{}, commonerrors.NewStoreUnavailableError(fmt.Sprintf("streak dates: %v", err))
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return models.StreakResult{}, commonerrors.NewStoreUnavailableError(fmt.Sprintf("streak dates scan: %v", err))
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return models.StreakResult{}, commonerrors.NewStoreUnavailableError(fmt.Sprintf("streak dates rows: %v", err))
	}

	return streak.Calculate(dates, e.now()), nil
}

// Invalidate drops any cached stats for the user. The recorder calls
// this after a mutation so the next read recomputes.
func (e *Engine) Invalidate(ctx context.Context, userID string) {
	if e.cache != nil {
		e.cache.Invalidate(ctx, userID)
	}
}

func (e *Engine) total(ctx context.Context, userID string) (int, error) {
	var total int
	err := e.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM applications WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return 0, commonerrors.NewStoreUnavailableError(fmt.Sprintf("count applications: %v", err))
	}
	return total, nil
}

func (e *Engine) recordDuration(ctx context.Context, kind string, d time.Duration) {
	metrics.StatsComputeDuration.WithLabelValues(kind).Observe(d.Seconds())
	if e.obs != nil {
		e.obs.RecordComputeDuration(ctx, d, kind)
	}
}
