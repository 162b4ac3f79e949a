package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/invoiceiq/invoiceiq/internal/analytics"
	jobmetrics "github.com/invoiceiq/invoiceiq/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DefaultWarmupMonths is the trailing window warmed when the payload does
// not request one.
const DefaultWarmupMonths = 6

// AnalyticsWarmupJob pre-populates the analytics summary cache so the first
// dashboard load after an invalidation stays fast.
type AnalyticsWarmupJob struct {
	Analytics *analytics.Service
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewAnalyticsWarmupJob wires dependencies for the warmup handler.
func NewAnalyticsWarmupJob(analyticsSvc *analytics.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *AnalyticsWarmupJob {
	return &AnalyticsWarmupJob{
		Analytics: analyticsSvc,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes analytics warmup tasks. It warms the unfiltered summary
// plus the trailing window the dashboard requests by default.
func (j *AnalyticsWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Analytics == nil {
		return errors.New("analytics warmup: handler not configured")
	}
	var payload AnalyticsWarmupPayload
	if uerr := json.Unmarshal(t.Payload(), &payload); uerr != nil {
		return asynq.SkipRetry
	}
	if payload.Months <= 0 {
		payload.Months = DefaultWarmupMonths
	}

	tracker := j.metrics().Track(TaskAnalyticsWarmup)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(slog.Int("months", payload.Months))
	logger.Info("starting analytics warmup")

	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	now := j.now()
	if _, err = j.Analytics.GetSummary(warmCtx, analytics.Filter{}); err != nil {
		logger.Error("warm unfiltered summary", slog.Any("error", err))
		return err
	}

	from := monthStart(now.AddDate(0, -(payload.Months - 1), 0))
	to := now
	if _, err = j.Analytics.GetSummary(warmCtx, analytics.Filter{From: &from, To: &to}); err != nil {
		logger.Error("warm windowed summary", slog.Any("error", err))
		return err
	}

	logger.Info("completed analytics warmup", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *AnalyticsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *AnalyticsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAnalyticsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskAnalyticsWarmup))
}

func (j *AnalyticsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
