package services

import (
	"context"
	"time"

	"interiors-admin-be/internal/models"
	"interiors-admin-be/internal/stats"

	"go.uber.org/zap"
)

// DigestSettings is what the digest worker needs from the settings repository.
type DigestSettings interface {
	Get(ctx context.Context) (models.AppSettings, error)
	MarkDigestSent(ctx context.Context, at time.Time) error
}

type digestSender interface {
	SendDigest(ctx context.Context, settings models.AppSettings, res stats.Result) error
}

type statsComputer interface {
	Compute(ctx context.Context, now time.Time, opts stats.Options) (stats.Result, error)
}

// DigestWorker e-mails a statistics digest once per UTC day.
type DigestWorker struct {
	settings DigestSettings
	stats    statsComputer
	sender   digestSender
	hour     int
	logger   *zap.Logger
}

func NewDigestWorker(settings DigestSettings, statsSvc statsComputer, sender digestSender, hour int, logger *zap.Logger) *DigestWorker {
	if hour < 0 || hour > 23 {
		hour = 8
	}
	return &DigestWorker{
		settings: settings,
		stats:    statsSvc,
		sender:   sender,
		hour:     hour,
		logger:   logger,
	}
}

// Start runs the worker on a ticker until ctx is done.
func (w *DigestWorker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("digest worker: shutting down")
				return
			case <-ticker.C:
				if _, err := w.RunOnce(ctx, time.Now().UTC()); err != nil {
					w.logger.Warn("digest worker: run failed",
						zap.String("category", string(ClassifyStorageError(err))),
						zap.Error(err),
					)
				}
			}
		}
	}()
}

// RunOnce sends the digest if one is due at now and reports whether it did.
func (w *DigestWorker) RunOnce(ctx context.Context, now time.Time) (bool, error) {
	settings, err := w.settings.Get(ctx)
	if err != nil {
		return false, err
	}
	if !DigestDue(settings, now, w.hour) {
		return false, nil
	}

	res, err := w.stats.Compute(ctx, now, stats.Options{})
	if err != nil {
		return false, err
	}
	if err := w.sender.SendDigest(ctx, settings, res); err != nil {
		return false, err
	}
	if err := w.settings.MarkDigestSent(ctx, now); err != nil {
		return true, err
	}
	w.logger.Info("digest worker: digest sent", zap.Int("total", res.Total))
	return true, nil
}

// DigestDue reports whether a digest should go out at now: digests are enabled,
// an address is set, the UTC hour has reached hour and none was sent today.
func DigestDue(s models.AppSettings, now time.Time, hour int) bool {
	if !s.DailyDigest || s.NotificationEmail == "" {
		return false
	}
	now = now.UTC()
	if now.Hour() < hour {
		return false
	}
	if s.LastDigestAt == nil {
		return true
	}
	last := s.LastDigestAt.UTC()
	return last.Year() != now.Year() || last.YearDay() != now.YearDay()
}
