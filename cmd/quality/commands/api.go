package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zezinho10632/DouglasApi/internal/api"
	"github.com/zezinho10632/DouglasApi/internal/scheduler"
	"github.com/zezinho10632/DouglasApi/pkg/auth"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Every /api/v1 route needs a bearer token (see the token command).

Endpoints:
  GET  /health
  *    /api/v1/sectors, /api/v1/periods
  *    /api/v1/notification-classifications, /api/v1/professional-categories
  *    /api/v1/notifications, /api/v1/adverse-events
  *    /api/v1/indicators/{kind}, /api/v1/self-notifications
  GET  /api/v1/reports/panel[/range|/cumulative|/export]
  GET  /api/v1/users

Example:
  go run ./cmd/quality api
  go run ./cmd/quality api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort       string
	withScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
	apiCmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "run scheduled jobs in-process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Douglas Quality API Server ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	deps := api.RouterDeps{
		Config: a.cfg,
		Tokens: auth.NewTokens(a.cfg.Auth),
	}
	if a.cfg.Limits.Enabled {
		deps.Limiter = api.NewLimiter(a.redis, a.cfg.Limits)
	}

	router := api.NewRouter(a.services, deps, a.log)
	server := api.New(a.cfg, a.log, router)

	var sched *scheduler.Scheduler
	if withScheduler {
		if sched, err = newScheduler(a); err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
	}

	a.log.Info("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
