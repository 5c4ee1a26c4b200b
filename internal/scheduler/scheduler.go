package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// Options tunes retries and the location cron expressions are evaluated in
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
	Location   *time.Location
	// JobTimeout bounds a single attempt; zero means no bound
	JobTimeout time.Duration
}

// DefaultOptions mirrors the production retry policy
func DefaultOptions() Options {
	return Options{
		MaxRetries: 3,
		RetryDelay: time.Minute,
		Location:   time.Local,
		JobTimeout: 5 * time.Minute,
	}
}

type entry struct {
	job Job
	id  cron.EntryID
}

// Scheduler manages scheduled jobs
// ⭐ SSOT: scheduling is managed by this scheduler only
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]entry
	history map[string]*JobHistory
	mu      sync.RWMutex

	// Retry configuration
	maxRetries int
	retryDelay time.Duration
	jobTimeout time.Duration

	// Cancelled on Stop so retries stop waiting
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler
func New(log *logger.Logger, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds(), cron.WithLocation(opts.Location)),
		logger:     log,
		jobs:       make(map[string]entry),
		history:    make(map[string]*JobHistory),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		jobTimeout: opts.JobTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()

	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(s.ctx, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	s.jobs[jobName] = entry{job: job, id: id}
	s.history[jobName] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(jobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.jobs[jobName]
	if !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	s.cron.Remove(e.id)
	delete(s.jobs, jobName)
	delete(s.history, jobName)
	s.logger.WithField("job", jobName).Info("Job removed from scheduler")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// RunJob runs a specific job immediately, outside of its schedule, and
// returns once every attempt has finished.
func (s *Scheduler) RunJob(ctx context.Context, jobName string) (JobResult, error) {
	s.mu.RLock()
	e, exists := s.jobs[jobName]
	s.mu.RUnlock()

	if !exists {
		return JobResult{}, fmt.Errorf("job %s not found", jobName)
	}

	result := s.runJob(ctx, e.job)
	if !result.Success {
		return result, fmt.Errorf("job %s failed: %s", jobName, result.Error)
	}
	return result, nil
}

// runJob executes a job with retry logic
func (s *Scheduler) runJob(ctx context.Context, job Job) JobResult {
	jobName := job.Name()
	startTime := time.Now()

	s.logger.WithField("job", jobName).Info("Job started")

	var lastErr error
	var success bool
	attempts := 0

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		attempts++
		err := s.attempt(ctx, job)
		if err == nil {
			success = true
			break
		}

		lastErr = err
		s.logger.WithFields(map[string]interface{}{
			"job":     jobName,
			"attempt": attempt + 1,
			"error":   err.Error(),
		}).Warn("Job execution failed, retrying")

		if attempt == s.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = s.maxRetries
		case <-time.After(s.retryDelay):
		}
	}

	endTime := time.Now()
	duration := endTime.Sub(startTime)

	result := JobResult{
		JobName:   jobName,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  duration,
		Attempts:  attempts,
		Success:   success,
	}

	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[jobName]; exists {
		history.AddResult(result)
	}
	s.mu.Unlock()

	if success {
		s.logger.WithFields(map[string]interface{}{
			"job":      jobName,
			"duration": duration,
			"attempts": attempts,
		}).Info("Job completed successfully")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"job":      jobName,
			"duration": duration,
			"error":    result.Error,
		}).Error("Job failed after all retries")
	}

	return result
}

func (s *Scheduler) attempt(ctx context.Context, job Job) (err error) {
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return job.Run(ctx)
}

// GetJobHistory returns a copy of the history for a specific job
func (s *Scheduler) GetJobHistory(jobName string) (*JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}

	results := make([]JobResult, len(history.Results))
	copy(results, history.Results)
	return &JobHistory{Results: results}, nil
}

// GetAllJobs returns all registered job names, sorted
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]string, 0, len(s.jobs))
	for jobName := range s.jobs {
		jobs = append(jobs, jobName)
	}
	sort.Strings(jobs)

	return jobs
}

// GetJobStats returns statistics for all jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats)

	for jobName, e := range s.jobs {
		history := s.history[jobName]
		failedResults := history.GetFailedResults()

		var lastRun, lastSuccess, lastFailure *time.Time
		for i := range history.Results {
			res := history.Results[i]
			lastRun = &res.StartTime
			if res.Success {
				lastSuccess = &res.StartTime
			} else {
				lastFailure = &res.StartTime
			}
		}

		var next *time.Time
		if n := s.cron.Entry(e.id).Next; !n.IsZero() {
			next = &n
		}

		stats[jobName] = JobStats{
			JobName:      jobName,
			Schedule:     e.job.Schedule(),
			TotalRuns:    len(history.Results),
			SuccessCount: len(history.Results) - len(failedResults),
			FailureCount: len(failedResults),
			SuccessRate:  history.GetSuccessRate(),
			LastRun:      lastRun,
			LastSuccess:  lastSuccess,
			LastFailure:  lastFailure,
			NextRun:      next,
		}
	}

	return stats
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"`
}
