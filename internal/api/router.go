package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zezinho10632/DouglasApi/internal/api/handlers"
	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/auth"
	"github.com/zezinho10632/DouglasApi/pkg/config"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// ServiceName is reported by the health endpoint
const ServiceName = "douglas-quality-api"

// resourceRoutes is the CRUD surface shared by lookups and indicator kinds
type resourceRoutes interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

// indicatorRoutes adds the period and sector scoped reads of an indicator kind
type indicatorRoutes interface {
	resourceRoutes
	GetByPeriod(w http.ResponseWriter, r *http.Request)
	ListBySector(w http.ResponseWriter, r *http.Request)
}

// RouterDeps carries what NewRouter needs besides the services
type RouterDeps struct {
	Config  *config.Config
	Tokens  *auth.Tokens
	Limiter Limiter
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routing is configured in this function only
func NewRouter(svc *Services, deps RouterDeps, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	health := handlers.NewHealthHandler(svc.Health, ServiceName, log)
	r.HandleFunc("/health", health.Check).Methods("GET")

	// API v1, authenticated
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware(deps.Tokens, log))

	// Sectors
	sectors := handlers.NewSectorHandler(svc.Sectors, log)
	api.HandleFunc("/sectors", sectors.Create).Methods("POST")
	api.HandleFunc("/sectors", sectors.List).Methods("GET")
	api.HandleFunc("/sectors/{id}", sectors.Get).Methods("GET")
	api.HandleFunc("/sectors/{id}", sectors.Update).Methods("PUT")
	api.HandleFunc("/sectors/{id}", sectors.Delete).Methods("DELETE")

	// Periods
	periods := handlers.NewPeriodHandler(svc.Periods, log)
	api.HandleFunc("/periods", periods.Create).Methods("POST")
	api.HandleFunc("/periods", periods.List).Methods("GET")
	api.HandleFunc("/periods/{id}", periods.Get).Methods("GET")
	api.HandleFunc("/periods/{id}", periods.Delete).Methods("DELETE")
	api.HandleFunc("/periods/{id}/close", periods.Close).Methods("POST")
	api.HandleFunc("/periods/{id}/reopen", periods.Reopen).Methods("POST")
	api.HandleFunc("/periods/{id}/validate", periods.Validate).Methods("POST")

	// Lookups
	classifications := handlers.NewLookupHandler(svc.Classifications, log)
	registerResource(api, "/notification-classifications", classifications)
	api.HandleFunc("/notification-classifications", classifications.List).Methods("GET")

	categories := handlers.NewLookupHandler(svc.ProfessionalCategories, log)
	registerResource(api, "/professional-categories", categories)
	api.HandleFunc("/professional-categories", categories.List).Methods("GET")

	// Notifications (fixed paths before /{id})
	notifications := handlers.NewNotificationHandler(svc.Notifications, log)
	api.HandleFunc("/notifications/range", notifications.ListByRange).Methods("GET")
	api.HandleFunc("/notifications/ranking/professional-category", notifications.Ranking).Methods("GET")
	api.HandleFunc("/notifications/user/{userId}", notifications.ListByUser).Methods("GET")
	api.HandleFunc("/notifications", notifications.List).Methods("GET")
	registerResource(api, "/notifications", notifications)

	// Adverse events
	events := handlers.NewAdverseEventHandler(svc.AdverseEvents, log)
	api.HandleFunc("/adverse-events/range", events.ListByRange).Methods("GET")
	api.HandleFunc("/adverse-events/period/{periodId}", events.ListByPeriod).Methods("GET")
	api.HandleFunc("/adverse-events/sector/{sectorId}", events.ListBySector).Methods("GET")
	api.HandleFunc("/adverse-events/user/{userId}", events.ListByUser).Methods("GET")
	registerResource(api, "/adverse-events", events)

	// Indicators
	ind := svc.Indicators
	registerIndicator(api, "/indicators/"+string(contracts.KindCompliance), handlers.NewIndicatorHandler(ind.Compliance, log))
	registerIndicator(api, "/indicators/"+string(contracts.KindHandHygiene), handlers.NewIndicatorHandler(ind.HandHygiene, log))
	registerIndicator(api, "/indicators/"+string(contracts.KindFallRisk), handlers.NewIndicatorHandler(ind.FallRisk, log))
	registerIndicator(api, "/indicators/"+string(contracts.KindPressureInjury), handlers.NewIndicatorHandler(ind.PressureInjury, log))
	registerIndicator(api, "/indicators/"+string(contracts.KindMetaCompliance), handlers.NewIndicatorHandler(ind.MetaCompliance, log))
	registerIndicator(api, "/indicators/"+string(contracts.KindMedicationCompliance), handlers.NewIndicatorHandler(ind.MedicationCompliance, log))
	registerIndicator(api, "/self-notifications", handlers.NewIndicatorHandler(ind.SelfNotification, log))

	// Reports
	reports := handlers.NewReportHandler(svc.Reports, svc.ReportCache, log)
	api.HandleFunc("/reports/panel", reports.Panel).Methods("GET")
	api.HandleFunc("/reports/panel/range", reports.Range).Methods("GET")
	api.HandleFunc("/reports/panel/cumulative", reports.Cumulative).Methods("GET")
	api.HandleFunc("/reports/panel/export", reports.Export).Methods("GET")

	// Users
	users := handlers.NewUserHandler(svc.Users, log)
	api.HandleFunc("/users", users.List).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.RespondFailure(w, http.StatusNotFound, handlers.CodeNotFound, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.RespondFailure(w, http.StatusMethodNotAllowed, handlers.CodeValidation, "Method not allowed")
	})

	// Outer chain runs for every request, matched or not
	var h http.Handler = r
	if deps.Limiter != nil {
		h = rateLimitMiddleware(deps.Limiter, deps.Tokens, log)(h)
	}
	if deps.Config != nil && len(deps.Config.CORS.AllowedOrigins) > 0 {
		h = corsMiddleware(deps.Config.CORS)(h)
	}
	h = loggingMiddleware(log)(h)
	h = recoveryMiddleware(log)(h)
	return h
}

func registerResource(r *mux.Router, prefix string, h resourceRoutes) {
	r.HandleFunc(prefix, h.Create).Methods("POST")
	r.HandleFunc(prefix+"/{id}", h.Get).Methods("GET")
	r.HandleFunc(prefix+"/{id}", h.Update).Methods("PUT")
	r.HandleFunc(prefix+"/{id}", h.Delete).Methods("DELETE")
}

func registerIndicator(r *mux.Router, prefix string, h indicatorRoutes) {
	r.HandleFunc(prefix+"/period/{periodId}", h.GetByPeriod).Methods("GET")
	r.HandleFunc(prefix+"/sector/{sectorId}", h.ListBySector).Methods("GET")
	registerResource(r, prefix, h)
}
