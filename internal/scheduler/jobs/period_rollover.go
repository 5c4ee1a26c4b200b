package jobs

import (
	"context"
	"time"

	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// PeriodOpener opens the period covering now for every active sector
type PeriodOpener interface {
	EnsureCurrent(ctx context.Context, now time.Time) (int, error)
}

// PeriodRolloverJob opens the current month's period on the first of the month
type PeriodRolloverJob struct {
	periods  PeriodOpener
	location *time.Location
	now      func() time.Time
	logger   *logger.Logger
}

// NewPeriodRolloverJob creates a new period rollover job
func NewPeriodRolloverJob(periods PeriodOpener, loc *time.Location, log *logger.Logger) *PeriodRolloverJob {
	if loc == nil {
		loc = time.Local
	}
	return &PeriodRolloverJob{
		periods:  periods,
		location: loc,
		now:      time.Now,
		logger:   log,
	}
}

// Name returns the job name
func (j *PeriodRolloverJob) Name() string {
	return "period_rollover"
}

// Schedule returns the cron schedule (midnight on the 1st)
func (j *PeriodRolloverJob) Schedule() string {
	return "0 0 0 1 * *"
}

// Run opens missing periods. Sectors that already have one are skipped.
func (j *PeriodRolloverJob) Run(ctx context.Context) error {
	now := j.now().In(j.location)

	opened, err := j.periods.EnsureCurrent(ctx, now)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"month":  int(now.Month()),
		"year":   now.Year(),
		"opened": opened,
	}).Info("Period rollover completed")

	return nil
}
