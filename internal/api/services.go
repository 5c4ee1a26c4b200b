package api

import (
	"github.com/zezinho10632/DouglasApi/internal/adverseevent"
	"github.com/zezinho10632/DouglasApi/internal/audit"
	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/indicator"
	"github.com/zezinho10632/DouglasApi/internal/lookup"
	"github.com/zezinho10632/DouglasApi/internal/notification"
	"github.com/zezinho10632/DouglasApi/internal/period"
	"github.com/zezinho10632/DouglasApi/internal/report"
	"github.com/zezinho10632/DouglasApi/internal/sector"
	"github.com/zezinho10632/DouglasApi/internal/user"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// Services bundles the domain services behind the HTTP surface
type Services struct {
	Sectors                *sector.Service
	Periods                *period.Manager
	Classifications        *lookup.Service
	ProfessionalCategories *lookup.Service
	Notifications          *notification.Service
	AdverseEvents          *adverseevent.Service
	Indicators             *indicator.Services
	Reports                *report.Engine
	ReportCache            *report.Cache
	Users                  *user.Service
	Health                 contracts.HealthChecker
}

// Options tunes the services built by NewServices
type Options struct {
	// SingleOpen rejects a second OPEN period per sector
	SingleOpen bool
	// ReportCache may be nil; writes then invalidate nothing
	ReportCache *report.Cache
	// AuditSink may be nil; entries are then dropped
	AuditSink audit.Sink
}

// NewServices wires every service over one repository bundle
// ⭐ SSOT: the service graph is assembled here only
func NewServices(repos *contracts.Repositories, opts Options, log *logger.Logger) *Services {
	rec := audit.NewRecorder(opts.AuditSink, log.WithField("module", "audit"))

	var watcher contracts.SectorWatcher = contracts.NopWatcher{}
	var purger lookup.Purger
	if opts.ReportCache != nil {
		watcher = opts.ReportCache
		purger = opts.ReportCache
	}

	periods := period.NewManager(repos, rec, period.Options{
		SingleOpen: opts.SingleOpen,
		Watcher:    watcher,
	}, log.WithField("module", "period"))
	notifications := notification.NewService(repos, periods, rec, watcher, log.WithField("module", "notification"))
	indicators := indicator.NewServices(repos, periods, rec, watcher, log.WithField("module", "indicator"))

	return &Services{
		Sectors:                sector.NewService(repos, rec, log.WithField("module", "sector")),
		Periods:                periods,
		Classifications:        lookup.NewService(contracts.LookupClassification, repos, rec, purger, log.WithField("module", "lookup")),
		ProfessionalCategories: lookup.NewService(contracts.LookupProfessionalCategory, repos, rec, purger, log.WithField("module", "lookup")),
		Notifications:          notifications,
		AdverseEvents:          adverseevent.NewService(repos, periods, rec, watcher, log.WithField("module", "adverse_event")),
		Indicators:             indicators,
		Reports:                report.NewEngine(repos, periods, indicators, notifications, log.WithField("module", "report")),
		ReportCache:            opts.ReportCache,
		Users:                  user.NewService(repos),
		Health:                 repos.Health,
	}
}
