package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// SnapshotWarmer is the slice of the radar service the warmup job needs.
type SnapshotWarmer interface {
	Warm(ctx context.Context) error
}

// RadarWarmupJob pre-populates the live-map snapshot so the first dashboard
// request after an invalidation does not pay the build cost.
type RadarWarmupJob struct {
	Radar  SnapshotWarmer
	Logger *slog.Logger
}

// NewRadarWarmupJob wires dependencies for the warmup handler.
func NewRadarWarmupJob(radar SnapshotWarmer, logger *slog.Logger) *RadarWarmupJob {
	return &RadarWarmupJob{Radar: radar, Logger: logger}
}

// Handle processes radar warmup tasks.
func (j *RadarWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Radar == nil {
		return errors.New("radar warmup: handler not configured")
	}
	var payload RadarWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	started := time.Now()
	warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if err := j.Radar.Warm(warmCtx); err != nil {
		j.logger().Error("radar warmup failed", slog.Any("error", err))
		return err
	}
	j.logger().Info("radar warmup completed", slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *RadarWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRadarWarmup))
	}
	return slog.Default().With(slog.String("job", TaskRadarWarmup))
}
