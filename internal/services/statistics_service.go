package services

import (
	"context"
	"fmt"
	"time"

	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/stats"

	"go.uber.org/zap"
)

// SnapshotSource loads the submissions the aggregator works on.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]models.Submission, error)
}

// DashboardStatistics is stats.Result plus the display data the dashboard needs.
type DashboardStatistics struct {
	stats.Result
	BudgetBreakdown []models.BudgetBreakdownEntry `json:"budgetBreakdown"`
	ProjectTypes    []models.CategoryCount        `json:"projectTypes"`
	StatusLabels    models.StatusLabels           `json:"statusLabels"`
	Cached          bool                          `json:"cached"`
}

// StatisticsQuery selects the reference time and window sizes. A zero Now means
// "current time" and makes the result cacheable.
type StatisticsQuery struct {
	Now        time.Time
	Weeks      int
	WindowDays int
}

type StatisticsService struct {
	source   SnapshotSource
	settings SettingsStore
	cache    StatsCache
	clock    func() time.Time
	logger   *zap.Logger
}

func NewStatisticsService(source SnapshotSource, settings SettingsStore, cache StatsCache, logger *zap.Logger) *StatisticsService {
	if cache == nil {
		cache = NoopStatsCache{}
	}
	return &StatisticsService{
		source:   source,
		settings: settings,
		cache:    cache,
		clock:    time.Now,
		logger:   logger,
	}
}

// Dashboard computes the statistics for q, reading and filling the cache when q
// uses the current time.
func (s *StatisticsService) Dashboard(ctx context.Context, q StatisticsQuery) (*DashboardStatistics, error) {
	opts := stats.Options{WindowDays: q.WindowDays, Weeks: q.Weeks}
	if opts.WindowDays <= 0 {
		opts.WindowDays = stats.DefaultWindowDays
	}
	if opts.Weeks <= 0 {
		opts.Weeks = stats.DefaultWeeks
	}

	cacheable := q.Now.IsZero()
	key := StatsCacheKey(opts.Weeks, opts.WindowDays)
	if cacheable {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		} else if ok {
			cached.Cached = true
			return cached, nil
		}
	}

	now := q.Now
	if cacheable {
		now = s.clock().UTC()
	}

	out, err := s.compute(ctx, now, opts)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

// Compute runs the aggregator on the current snapshot without touching the cache.
func (s *StatisticsService) Compute(ctx context.Context, now time.Time, opts stats.Options) (stats.Result, error) {
	subs, err := s.source.Snapshot(ctx)
	if err != nil {
		return stats.Result{}, fmt.Errorf("load submissions: %w", err)
	}
	res := stats.Compute(subs, now, opts)
	s.logDiagnostics(res.Diagnostics)
	return res, nil
}

func (s *StatisticsService) compute(ctx context.Context, now time.Time, opts stats.Options) (*DashboardStatistics, error) {
	res, err := s.Compute(ctx, now, opts)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &DashboardStatistics{
		Result:          res,
		BudgetBreakdown: stats.BudgetBreakdown(res.BudgetCounts),
		ProjectTypes:    stats.Sorted(res.ProjectTypeCounts),
		StatusLabels:    settings.StatusLabels,
	}, nil
}

// Invalidate drops cached statistics after submissions change.
func (s *StatisticsService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func (s *StatisticsService) logDiagnostics(diags []stats.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	ids := make([]string, 0, len(diags))
	for _, d := range diags {
		ids = append(ids, d.SubmissionID)
	}
	s.logger.Warn("submissions excluded from time-based statistics",
		zap.Int("count", len(diags)),
		zap.Strings("submissionIds", ids),
	)
}
