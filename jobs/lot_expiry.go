package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultLotMaxAgeDays is the shelf life applied when the payload does not
// override it. Bread older than this is unsellable.
const DefaultLotMaxAgeDays = 2

const expireLotsSQL = `
	UPDATE stock_lots
	SET status = 'EXPIRED'
	WHERE status = 'ACTIVE'
	  AND manufacturing_date < CURRENT_DATE - ($1 * INTERVAL '1 day')`

// LotExpiryJob sweeps stock lots past their shelf life into EXPIRED so the
// FIFO deduction and allocation reads never touch them.
type LotExpiryJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// NewLotExpiryJob wires dependencies for the expiry sweep.
func NewLotExpiryJob(pool *pgxpool.Pool, logger *slog.Logger) *LotExpiryJob {
	return &LotExpiryJob{Pool: pool, Logger: logger}
}

// Handle processes lot expiry tasks.
func (j *LotExpiryJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("lot expiry: handler not configured")
	}
	var payload LotExpiryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	maxAge := payload.MaxAgeDays
	if maxAge <= 0 {
		maxAge = DefaultLotMaxAgeDays
	}

	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tag, err := j.Pool.Exec(sweepCtx, expireLotsSQL, maxAge)
	if err != nil {
		j.logger().Error("lot expiry sweep failed", slog.Any("error", err))
		return err
	}
	j.logger().Info("lot expiry sweep completed",
		slog.Int("max_age_days", maxAge),
		slog.Int64("expired", tag.RowsAffected()))
	return nil
}

func (j *LotExpiryJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLotExpiry))
	}
	return slog.Default().With(slog.String("job", TaskLotExpiry))
}
