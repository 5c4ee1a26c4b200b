package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/indicator"
	"github.com/zezinho10632/DouglasApi/internal/notification"
	"github.com/zezinho10632/DouglasApi/internal/period"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// Engine assembles panel reports from the stored records.
// Every method is read-only.
type Engine struct {
	periods       *period.Manager
	events        contracts.AdverseEventRepository
	indicators    *indicator.Services
	notifications *notification.Service
	logger        *logger.Logger
	now           func() time.Time
}

// NewEngine creates a report engine
func NewEngine(repos *contracts.Repositories, periods *period.Manager, indicators *indicator.Services, notifications *notification.Service, log *logger.Logger) *Engine {
	return &Engine{
		periods:       periods,
		events:        repos.AdverseEvents,
		indicators:    indicators,
		notifications: notifications,
		logger:        log.WithFields(map[string]interface{}{"module": "report"}),
		now:           time.Now,
	}
}

// SetClock replaces the clock used to resolve default years and periods
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Panel reports one period of a sector. The optional range narrows adverse events by eventDate.
func (e *Engine) Panel(ctx context.Context, periodID, sectorID uuid.UUID, r contracts.DateRange) (contracts.PanelReport, error) {
	if err := r.Validate(); err != nil {
		return contracts.PanelReport{}, err
	}

	p, err := e.periods.Get(ctx, periodID)
	if err != nil {
		return contracts.PanelReport{}, err
	}
	if err := period.AssertOwned(p, sectorID); err != nil {
		return contracts.PanelReport{}, err
	}

	return e.panel(ctx, p, r)
}

func (e *Engine) panel(ctx context.Context, p *contracts.Period, r contracts.DateRange) (contracts.PanelReport, error) {
	report := contracts.EmptyPanel()
	ind := e.indicators
	var err error

	if report.Compliance, err = ind.Compliance.GetByPeriod(ctx, p.ID); err != nil {
		return report, err
	}
	if report.HandHygiene, err = ind.HandHygiene.GetByPeriod(ctx, p.ID); err != nil {
		return report, err
	}
	if report.FallRisk, err = ind.FallRisk.GetByPeriod(ctx, p.ID); err != nil {
		return report, err
	}
	if report.PressureInjury, err = ind.PressureInjury.GetByPeriod(ctx, p.ID); err != nil {
		return report, err
	}
	if report.SelfNotification, err = ind.SelfNotification.GetByPeriod(ctx, p.ID); err != nil {
		return report, err
	}
	if report.MetaCompliance, err = ind.MetaCompliance.GetByPeriod(ctx, p.ID); err != nil {
		return report, err
	}
	if report.MedicationCompliance, err = ind.MedicationCompliance.GetByPeriod(ctx, p.ID); err != nil {
		return report, err
	}

	events, err := e.events.List(ctx, contracts.AdverseEventFilter{
		PeriodID: p.ID,
		From:     r.From,
		To:       r.To,
	})
	if err != nil {
		return report, fmt.Errorf("list adverse events: %w", err)
	}
	if len(events) > 0 {
		report.AdverseEvents = events
	}

	notes, err := e.notifications.List(ctx, contracts.NotificationFilter{PeriodID: p.ID})
	if err != nil {
		return report, err
	}
	if len(notes) > 0 {
		report.Notifications = notes
	}

	return report, nil
}

// Range reports every period of a sector whose month lies between the months of from and to,
// oldest first
func (e *Engine) Range(ctx context.Context, sectorID uuid.UUID, from, to contracts.Date) ([]contracts.PanelReport, error) {
	periods, err := e.periodsBetween(ctx, sectorID, from, to)
	if err != nil {
		return nil, err
	}

	reports := make([]contracts.PanelReport, 0, len(periods))
	for i := range periods {
		report, err := e.panel(ctx, &periods[i], contracts.DateRange{})
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (e *Engine) periodsBetween(ctx context.Context, sectorID uuid.UUID, from, to contracts.Date) ([]contracts.Period, error) {
	if sectorID == uuid.Nil {
		return nil, contracts.Invalid("sectorId", "is required")
	}
	if from.IsZero() {
		return nil, contracts.Invalid("startDate", "is required")
	}
	if to.IsZero() {
		return nil, contracts.Invalid("endDate", "is required")
	}
	if err := (contracts.DateRange{From: from, To: to}).Validate(); err != nil {
		return nil, err
	}

	all, err := e.periods.List(ctx, contracts.PeriodFilter{SectorID: sectorID})
	if err != nil {
		return nil, err
	}

	lo, hi := from.FirstOfMonth(), to.FirstOfMonth()
	out := make([]contracts.Period, 0, len(all))
	for _, p := range all {
		start := p.Start()
		if start.Before(lo.Time) || start.After(hi.Time) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Cumulative merges the panels of every period in the window selected by q
func (e *Engine) Cumulative(ctx context.Context, q contracts.CumulativeQuery) (contracts.PanelReport, error) {
	window, err := e.Window(q)
	if err != nil {
		return contracts.PanelReport{}, err
	}

	panels, err := e.Range(ctx, q.SectorID, window.From, window.To)
	if err != nil {
		return contracts.PanelReport{}, err
	}

	e.logger.WithFields(map[string]interface{}{
		"sector_id":   q.SectorID,
		"periodicity": q.Periodicity,
		"from":        window.From.String(),
		"to":          window.To.String(),
		"periods":     len(panels),
	}).Debug("Cumulative report")

	return Merge(panels), nil
}

// Window resolves the inclusive date range of a cumulative query.
// Year and Period default to the ones containing the current date.
func (e *Engine) Window(q contracts.CumulativeQuery) (contracts.DateRange, error) {
	if q.Periodicity == "" {
		q.Periodicity = contracts.PeriodicityCustom
	}
	if q.Periodicity == contracts.PeriodicityCustom {
		if q.Range.From.IsZero() || q.Range.To.IsZero() {
			return contracts.DateRange{}, contracts.Invalid("startDate", "startDate and endDate are required for CUSTOM periodicity")
		}
		return q.Range, q.Range.Validate()
	}

	now := e.now()
	year := q.Year
	if year == 0 {
		year = now.Year()
	}
	if year < contracts.MinPeriodYear {
		return contracts.DateRange{}, contracts.Invalid("year", fmt.Sprintf("must be %d or later", contracts.MinPeriodYear))
	}
	month := int(now.Month())

	var first, months int
	switch q.Periodicity {
	case contracts.PeriodicityMonthly:
		m, err := pick(q.Period, month, 12)
		if err != nil {
			return contracts.DateRange{}, err
		}
		first, months = m, 1
	case contracts.PeriodicityQuarterly:
		quarter, err := pick(q.Period, (month-1)/3+1, 4)
		if err != nil {
			return contracts.DateRange{}, err
		}
		first, months = (quarter-1)*3+1, 3
	case contracts.PeriodicitySemestral:
		semester, err := pick(q.Period, (month-1)/6+1, 2)
		if err != nil {
			return contracts.DateRange{}, err
		}
		first, months = (semester-1)*6+1, 6
	case contracts.PeriodicityAnnual:
		first, months = 1, 12
	default:
		return contracts.DateRange{}, contracts.Invalid("periodicity", fmt.Sprintf("unknown periodicity %q", q.Periodicity))
	}

	from := contracts.NewDate(year, time.Month(first), 1)
	to := contracts.NewDate(year, time.Month(first+months-1), 1).LastOfMonth()
	return contracts.DateRange{From: from, To: to}, nil
}

// pick returns value, or fallback when value is zero, checking it lies in [1,max]
func pick(value, fallback, max int) (int, error) {
	if value == 0 {
		return fallback, nil
	}
	if value < 1 || value > max {
		return 0, contracts.Invalid("period", fmt.Sprintf("must be between 1 and %d", max))
	}
	return value, nil
}
