package jobs

import (
	"context"

	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// CachePurger drops cached report payloads
type CachePurger interface {
	Purge(ctx context.Context) (int, error)
}

// ReportCachePurgeJob clears the report cache so stale panels expire
type ReportCachePurgeJob struct {
	cache  CachePurger
	logger *logger.Logger
}

// NewReportCachePurgeJob creates a new report cache purge job
func NewReportCachePurgeJob(cache CachePurger, log *logger.Logger) *ReportCachePurgeJob {
	return &ReportCachePurgeJob{
		cache:  cache,
		logger: log,
	}
}

// Name returns the job name
func (j *ReportCachePurgeJob) Name() string {
	return "report_cache_purge"
}

// Schedule returns the cron schedule (every 30 minutes)
func (j *ReportCachePurgeJob) Schedule() string {
	return "0 */30 * * * *"
}

// Run executes the purge
func (j *ReportCachePurgeJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled report cache purge")

	removed, err := j.cache.Purge(ctx)
	if err != nil {
		return err
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Report cache purge completed")
	}

	return nil
}
