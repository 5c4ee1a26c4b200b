package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zezinho10632/DouglasApi/internal/scheduler"
	"github.com/zezinho10632/DouglasApi/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage scheduled jobs",
	Long: `Start the scheduler or manage its jobs.

Subcommands:
  start   - start the scheduler daemon
  list    - list registered jobs and their next run
  run     - run one job now

Example:
  go run ./cmd/quality scheduler start
  go run ./cmd/quality scheduler list
  go run ./cmd/quality scheduler run period_rollover`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Start the scheduler and schedule every registered job.

Registered jobs:
- period_rollover: midnight on the 1st (open the month's period per sector)
- report_cache_purge: every 30 minutes (drop cached panels)

Stop it with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job now",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Douglas Quality Scheduler ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Next run times are only known once cron is running
	sched.Start()
	defer sched.Stop()

	stats := sched.GetJobStats()
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		fmt.Printf("  - %-20s %-16s", jobName, stat.Schedule)
		if stat.NextRun != nil {
			fmt.Printf(" next %s", stat.NextRun.Format("2006-01-02 15:04:05 MST"))
		}
		fmt.Println()
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := newScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	result, err := sched.RunJob(context.Background(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Printf("✅ %s finished in %v (%d attempt(s))\n", jobName, result.Duration, result.Attempts)
	return nil
}

// newScheduler registers every job against the app's services
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	opts := scheduler.DefaultOptions()
	opts.Location = a.cfg.Location()

	log := a.log.WithField("module", "scheduler")
	sched := scheduler.New(log, opts)

	for _, job := range []scheduler.Job{
		jobs.NewPeriodRolloverJob(a.services.Periods, opts.Location, log),
		jobs.NewReportCachePurgeJob(a.services.ReportCache, log),
	} {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
