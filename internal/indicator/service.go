// Package indicator stores the period indicators. One generic service serves
// every kind; the kinds differ only in their fields and derivation rules.
package indicator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/audit"
	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/period"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// Record constrains P to the pointer of an indicator struct
type Record[T any] interface {
	*T
	contracts.Indicator
}

// Service manages the records of one indicator kind
type Service[T any, P Record[T]] struct {
	kind    contracts.IndicatorKind
	repo    contracts.IndicatorRepository[T]
	periods *period.Manager
	audit   *audit.Recorder
	watcher contracts.SectorWatcher
	logger  *logger.Logger
	now     func() time.Time
}

// NewService creates the service for T's kind
func NewService[T any, P Record[T]](repo contracts.IndicatorRepository[T], periods *period.Manager, rec *audit.Recorder, watcher contracts.SectorWatcher, log *logger.Logger) *Service[T, P] {
	if watcher == nil {
		watcher = contracts.NopWatcher{}
	}
	kind := P(new(T)).Kind()
	return &Service[T, P]{
		kind:    kind,
		repo:    repo,
		periods: periods,
		audit:   rec,
		watcher: watcher,
		logger:  log.WithField("indicator", string(kind)),
		now:     time.Now,
	}
}

// Kind returns the indicator kind served
func (s *Service[T, P]) Kind() contracts.IndicatorKind {
	return s.kind
}

// prepare validates and derives rec in place.
// ⭐ SSOT: derived fields are recomputed on every write, before persisting
func (s *Service[T, P]) prepare(rec *T) error {
	ind := P(rec)
	if err := ind.Validate(); err != nil {
		return err
	}
	ind.Derive()
	if ind.ZeroDenominator() {
		m := ind.Meta()
		s.logger.WithFields(map[string]interface{}{
			"period_id": m.PeriodID,
			"sector_id": m.SectorID,
		}).Warn("Total is zero: derived percentages set to 0")
	}
	return nil
}

// Create stores the period's record of this kind. Client-supplied derived
// fields and metadata are replaced.
func (s *Service[T, P]) Create(ctx context.Context, rec *T) (*T, error) {
	m := P(rec).Meta()
	if m.PeriodID == uuid.Nil {
		return nil, contracts.Invalid("periodId", "is required")
	}
	p, err := s.periods.AssertWritable(ctx, m.PeriodID)
	if err != nil {
		return nil, err
	}
	if err := period.AssertOwned(p, m.SectorID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	*m = contracts.IndicatorMeta{
		ID:        uuid.New(),
		PeriodID:  p.ID,
		SectorID:  p.SectorID,
		CreatedBy: contracts.ActorID(ctx),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.prepare(rec); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind.Resource(), err)
	}

	s.audit.Record(ctx, contracts.AuditCreate, s.kind.Resource(), m.ID, "")
	s.watcher.SectorChanged(ctx, m.SectorID)
	return rec, nil
}

// Update replaces every raw field of the record and re-derives the rest
func (s *Service[T, P]) Update(ctx context.Context, id uuid.UUID, rec *T) (*T, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := *P(existing).Meta()
	if _, err := s.periods.AssertWritable(ctx, prev.PeriodID); err != nil {
		return nil, err
	}

	m := P(rec).Meta()
	*m = prev
	m.Aggregated = false
	m.UpdatedAt = s.now().UTC()
	if err := s.prepare(rec); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("update %s: %w", s.kind.Resource(), err)
	}

	s.audit.Record(ctx, contracts.AuditUpdate, s.kind.Resource(), m.ID, "")
	s.watcher.SectorChanged(ctx, m.SectorID)
	return rec, nil
}

// Delete removes a record of an open period
func (s *Service[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	m := P(existing).Meta()
	if _, err := s.periods.AssertWritable(ctx, m.PeriodID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", s.kind.Resource(), err)
	}

	s.audit.Record(ctx, contracts.AuditDelete, s.kind.Resource(), id, "")
	s.watcher.SectorChanged(ctx, m.SectorID)
	return nil
}

// Get returns one record
func (s *Service[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.repo.Get(ctx, id)
}

// GetByPeriod returns the period's record, or nil when it has none
func (s *Service[T, P]) GetByPeriod(ctx context.Context, periodID uuid.UUID) (*T, error) {
	rec, err := s.repo.GetByPeriod(ctx, periodID)
	if errors.Is(err, contracts.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s by period: %w", s.kind.Resource(), err)
	}
	return rec, nil
}

// ListBySector returns the sector's records in creation order
func (s *Service[T, P]) ListBySector(ctx context.Context, sectorID uuid.UUID) ([]T, error) {
	return s.repo.ListBySector(ctx, sectorID)
}

// Services holds one service per indicator kind
type Services struct {
	Compliance           *Service[contracts.Compliance, *contracts.Compliance]
	HandHygiene          *Service[contracts.HandHygiene, *contracts.HandHygiene]
	FallRisk             *Service[contracts.FallRisk, *contracts.FallRisk]
	PressureInjury       *Service[contracts.PressureInjury, *contracts.PressureInjury]
	MetaCompliance       *Service[contracts.MetaCompliance, *contracts.MetaCompliance]
	MedicationCompliance *Service[contracts.MedicationCompliance, *contracts.MedicationCompliance]
	SelfNotification     *Service[contracts.SelfNotification, *contracts.SelfNotification]
}

// NewServices wires a service for every kind
func NewServices(repos *contracts.Repositories, periods *period.Manager, rec *audit.Recorder, watcher contracts.SectorWatcher, log *logger.Logger) *Services {
	ind := repos.Indicators
	return &Services{
		Compliance:           NewService[contracts.Compliance](ind.Compliance, periods, rec, watcher, log),
		HandHygiene:          NewService[contracts.HandHygiene](ind.HandHygiene, periods, rec, watcher, log),
		FallRisk:             NewService[contracts.FallRisk](ind.FallRisk, periods, rec, watcher, log),
		PressureInjury:       NewService[contracts.PressureInjury](ind.PressureInjury, periods, rec, watcher, log),
		MetaCompliance:       NewService[contracts.MetaCompliance](ind.MetaCompliance, periods, rec, watcher, log),
		MedicationCompliance: NewService[contracts.MedicationCompliance](ind.MedicationCompliance, periods, rec, watcher, log),
		SelfNotification:     NewService[contracts.SelfNotification](ind.SelfNotification, periods, rec, watcher, log),
	}
}
