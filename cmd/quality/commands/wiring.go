package commands

import (
	"context"
	"time"

	"github.com/zezinho10632/DouglasApi/internal/api"
	"github.com/zezinho10632/DouglasApi/internal/audit"
	"github.com/zezinho10632/DouglasApi/internal/report"
	"github.com/zezinho10632/DouglasApi/pkg/config"
	"github.com/zezinho10632/DouglasApi/pkg/httputil"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
	"github.com/zezinho10632/DouglasApi/pkg/redis"
)

// app holds everything a long-running command needs
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	redis    *redis.Client
	services *api.Services
	close    func()
}

// newApp connects the store and Redis and assembles the services
func newApp(ctx context.Context) (*app, error) {
	cfg, log, err := bootstrap()
	if err != nil {
		return nil, err
	}

	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rdb = redis.Disabled()
	}

	var reportCache *report.Cache
	if rdb.Enabled() {
		reportCache = report.NewCache(redis.NewCache(rdb, "quality"), cfg.Reports.CacheTTL, log)
		log.Info("Report cache enabled")
	}

	services := api.NewServices(repos, api.Options{
		SingleOpen:  cfg.Periods.SingleOpen,
		ReportCache: reportCache,
		AuditSink:   auditSink(cfg, log),
	}, log)
	loc := cfg.Location()
	services.Reports.SetClock(func() time.Time { return time.Now().In(loc) })

	return &app{
		cfg:      cfg,
		log:      log,
		redis:    rdb,
		services: services,
		close: func() {
			_ = rdb.Close()
			closeStore()
		},
	}, nil
}

// auditSink logs every entry and also posts it when a webhook is configured
func auditSink(cfg *config.Config, log *logger.Logger) audit.Sink {
	logSink := audit.NewLogSink(log.WithField("module", "audit"))
	if cfg.Audit.WebhookURL == "" {
		return logSink
	}

	log.WithField("url", cfg.Audit.WebhookURL).Info("Audit webhook enabled")
	return audit.MultiSink{logSink, audit.NewHTTPSink(httputil.New(log), cfg.Audit.WebhookURL)}
}
