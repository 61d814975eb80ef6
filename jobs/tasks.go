// Package jobs hosts the asynq worker, its task definitions, and the cron
// schedule that keeps caches warm and stock lots fresh.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRadarWarmup rebuilds the live-map snapshot ahead of demand.
	TaskRadarWarmup = "radar:warmup"
	// TaskLotExpiry marks stock lots past their shelf life as EXPIRED.
	TaskLotExpiry = "inventory:lot_expiry"
)

// RadarWarmupPayload carries scheduling metadata for the warmup run.
type RadarWarmupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewRadarWarmupTask constructs an Asynq task for the snapshot warmup.
func NewRadarWarmupTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(RadarWarmupPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRadarWarmup, body, asynq.Queue(QueueDefault)), nil
}

// LotExpiryPayload configures the expiry sweep. MaxAgeDays of zero falls
// back to the default shelf life.
type LotExpiryPayload struct {
	MaxAgeDays int `json:"max_age_days"`
}

// NewLotExpiryTask constructs an Asynq task for the nightly expiry sweep.
func NewLotExpiryTask(maxAgeDays int) (*asynq.Task, error) {
	body, err := json.Marshal(LotExpiryPayload{MaxAgeDays: maxAgeDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLotExpiry, body, asynq.Queue(QueueDefault)), nil
}
