// Package adverseevent records dated clinical incidents.
package adverseevent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/audit"
	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/period"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

const resource = "adverse event"

// Service manages adverse events
type Service struct {
	repo    contracts.AdverseEventRepository
	periods *period.Manager
	audit   *audit.Recorder
	watcher contracts.SectorWatcher
	logger  *logger.Logger
	now     func() time.Time
}

// NewService creates an adverse event service
func NewService(repos *contracts.Repositories, periods *period.Manager, rec *audit.Recorder, watcher contracts.SectorWatcher, log *logger.Logger) *Service {
	if watcher == nil {
		watcher = contracts.NopWatcher{}
	}
	return &Service{
		repo:    repos.AdverseEvents,
		periods: periods,
		audit:   rec,
		watcher: watcher,
		logger:  log,
		now:     time.Now,
	}
}

// Input is the adverse event request body. PeriodID and SectorID are ignored on update.
type Input struct {
	PeriodID              uuid.UUID           `json:"periodId"`
	SectorID              uuid.UUID           `json:"sectorId"`
	EventDate             contracts.Date      `json:"eventDate"`
	EventType             contracts.EventType `json:"eventType"`
	Description           string              `json:"description"`
	QuantityCases         int                 `json:"quantityCases"`
	QuantityNotifications int                 `json:"quantityNotifications"`
}

func (in Input) apply(e *contracts.AdverseEvent) error {
	e.EventDate = in.EventDate
	e.Description = in.Description
	e.QuantityCases = in.QuantityCases
	e.QuantityNotifications = in.QuantityNotifications
	if in.EventType != "" {
		et, err := contracts.ParseEventType(string(in.EventType))
		if err != nil {
			return err
		}
		e.EventType = et
	} else {
		e.EventType = ""
	}
	return e.Validate()
}

// Create records an event against an open period. The author's name and job
// title are taken from the caller.
func (s *Service) Create(ctx context.Context, in Input) (*contracts.AdverseEvent, error) {
	if in.PeriodID == uuid.Nil {
		return nil, contracts.Invalid("periodId", "is required")
	}
	p, err := s.periods.AssertWritable(ctx, in.PeriodID)
	if err != nil {
		return nil, err
	}
	if err := period.AssertOwned(p, in.SectorID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	e := &contracts.AdverseEvent{
		ID:        uuid.New(),
		PeriodID:  p.ID,
		SectorID:  p.SectorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if principal, ok := contracts.PrincipalFrom(ctx); ok {
		e.CreatedBy = principal.UserID
		e.CreatedByName = principal.Name
		e.CreatedByJobTitle = principal.JobTitle
	}
	if err := in.apply(e); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create adverse event: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"event_id":   e.ID,
		"event_type": e.EventType,
		"period_id":  e.PeriodID,
	}).Debug("Adverse event recorded")

	s.audit.Record(ctx, contracts.AuditCreate, resource, e.ID, string(e.EventType))
	s.watcher.SectorChanged(ctx, e.SectorID)
	return e, nil
}

// Update replaces date, type, description and both quantities
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*contracts.AdverseEvent, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.periods.AssertWritable(ctx, e.PeriodID); err != nil {
		return nil, err
	}

	if err := in.apply(e); err != nil {
		return nil, err
	}
	e.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update adverse event: %w", err)
	}

	s.audit.Record(ctx, contracts.AuditUpdate, resource, e.ID, string(e.EventType))
	s.watcher.SectorChanged(ctx, e.SectorID)
	return e, nil
}

// Delete removes an event of an open period
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.periods.AssertWritable(ctx, e.PeriodID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete adverse event: %w", err)
	}

	s.audit.Record(ctx, contracts.AuditDelete, resource, id, "")
	s.watcher.SectorChanged(ctx, e.SectorID)
	return nil
}

// Get returns one event
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*contracts.AdverseEvent, error) {
	return s.repo.Get(ctx, id)
}

// List returns matching events, latest event date first
func (s *Service) List(ctx context.Context, filter contracts.AdverseEventFilter) ([]contracts.AdverseEvent, error) {
	if filter.EventType != "" {
		et, err := contracts.ParseEventType(string(filter.EventType))
		if err != nil {
			return nil, err
		}
		filter.EventType = et
	}
	if err := (contracts.DateRange{From: filter.From, To: filter.To}).Validate(); err != nil {
		return nil, err
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list adverse events: %w", err)
	}
	return list, nil
}
