// Package period owns the lifecycle of monthly reporting periods.
package period

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/audit"
	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

const resource = "period"

// Manager creates periods and moves them through OPEN, CLOSED and VALIDATED.
// ⭐ SSOT: period writability is decided here only (AssertWritable)
type Manager struct {
	periods    contracts.PeriodRepository
	sectors    contracts.SectorRepository
	audit      *audit.Recorder
	watcher    contracts.SectorWatcher
	singleOpen bool
	logger     *logger.Logger
	now        func() time.Time
}

// Options configures a Manager
type Options struct {
	// SingleOpen rejects a second OPEN period for a sector
	SingleOpen bool
	Watcher    contracts.SectorWatcher
}

// NewManager creates a period manager
func NewManager(repos *contracts.Repositories, rec *audit.Recorder, opts Options, log *logger.Logger) *Manager {
	watcher := opts.Watcher
	if watcher == nil {
		watcher = contracts.NopWatcher{}
	}
	return &Manager{
		periods:    repos.Periods,
		sectors:    repos.Sectors,
		audit:      rec,
		watcher:    watcher,
		singleOpen: opts.SingleOpen,
		logger:     log,
		now:        time.Now,
	}
}

// Create opens a new period for the sector
func (m *Manager) Create(ctx context.Context, sectorID uuid.UUID, month, year int) (*contracts.Period, error) {
	if err := contracts.ValidatePeriodKey(month, year); err != nil {
		return nil, err
	}
	if sectorID == uuid.Nil {
		return nil, contracts.Invalid("sectorId", "is required")
	}
	if _, err := m.sectors.Get(ctx, sectorID); err != nil {
		return nil, fmt.Errorf("create period: %w", err)
	}

	now := m.now().UTC()
	p := &contracts.Period{
		ID:        uuid.New(),
		SectorID:  sectorID,
		Month:     month,
		Year:      year,
		Status:    contracts.PeriodOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.periods.Create(ctx, p, m.singleOpen); err != nil {
		return nil, fmt.Errorf("create period: %w", err)
	}

	m.logger.WithFields(map[string]interface{}{
		"period_id": p.ID,
		"sector_id": sectorID,
		"month":     month,
		"year":      year,
	}).Info("Period opened")

	m.audit.Record(ctx, contracts.AuditCreate, resource, p.ID, fmt.Sprintf("%02d/%d", month, year))
	m.watcher.SectorChanged(ctx, sectorID)
	return p, nil
}

// allowed lists the legal transitions
var allowed = map[contracts.PeriodStatus][]contracts.PeriodStatus{
	contracts.PeriodOpen:      {contracts.PeriodClosed},
	contracts.PeriodClosed:    {contracts.PeriodOpen, contracts.PeriodValidated},
	contracts.PeriodValidated: {},
}

// SetStatus moves a period to status. Moving to the current status is a no-op.
func (m *Manager) SetStatus(ctx context.Context, id uuid.UUID, status contracts.PeriodStatus) (*contracts.Period, error) {
	if _, err := contracts.ParsePeriodStatus(string(status)); err != nil {
		return nil, err
	}

	current, err := m.periods.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("set period status: %w", err)
	}
	if current.Status == status {
		return current, nil
	}
	if !canMove(current.Status, status) {
		return nil, transitionError(current.Status, status)
	}

	updated, err := m.periods.SetStatus(ctx, id, status, m.singleOpen)
	if err != nil {
		return nil, fmt.Errorf("set period status: %w", err)
	}

	m.logger.WithFields(map[string]interface{}{
		"period_id": id,
		"from":      current.Status,
		"to":        status,
	}).Info("Period status changed")

	m.audit.Record(ctx, contracts.AuditStatus, resource, id, fmt.Sprintf("%s -> %s", current.Status, status))
	m.watcher.SectorChanged(ctx, updated.SectorID)
	return updated, nil
}

func canMove(from, to contracts.PeriodStatus) bool {
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

func transitionError(from, to contracts.PeriodStatus) error {
	if from == contracts.PeriodValidated {
		return contracts.Conflict(resource, "validated period cannot be reopened")
	}
	return contracts.Conflict(resource, fmt.Sprintf("cannot move from %s to %s", from, to))
}

// Close stops writes to the period
func (m *Manager) Close(ctx context.Context, id uuid.UUID) (*contracts.Period, error) {
	return m.SetStatus(ctx, id, contracts.PeriodClosed)
}

// Reopen allows writes to a closed period again
func (m *Manager) Reopen(ctx context.Context, id uuid.UUID) (*contracts.Period, error) {
	return m.SetStatus(ctx, id, contracts.PeriodOpen)
}

// Validate finalizes a closed period
func (m *Manager) Validate(ctx context.Context, id uuid.UUID) (*contracts.Period, error) {
	return m.SetStatus(ctx, id, contracts.PeriodValidated)
}

// AssertWritable returns the period when clinical records may be written to it
func (m *Manager) AssertWritable(ctx context.Context, id uuid.UUID) (*contracts.Period, error) {
	p, err := m.periods.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.Writable() {
		return nil, &contracts.PeriodClosedError{PeriodID: p.ID, Status: p.Status}
	}
	return p, nil
}

// AssertOwned fails unless the period belongs to sectorID
func AssertOwned(p *contracts.Period, sectorID uuid.UUID) error {
	if sectorID != p.SectorID {
		return contracts.Invalid("sectorId", "does not match the sector of the period")
	}
	return nil
}

// Get returns one period
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*contracts.Period, error) {
	return m.periods.Get(ctx, id)
}

// List returns the sector's periods ordered by year and month
func (m *Manager) List(ctx context.Context, filter contracts.PeriodFilter) ([]contracts.Period, error) {
	if filter.SectorID == uuid.Nil {
		return nil, contracts.Invalid("sectorId", "is required")
	}
	return m.periods.List(ctx, filter)
}

// Delete removes a period that no record references
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := m.periods.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := m.periods.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete period: %w", err)
	}

	m.audit.Record(ctx, contracts.AuditDelete, resource, id, "")
	m.watcher.SectorChanged(ctx, p.SectorID)
	return nil
}

// EnsureCurrent opens the period containing now for every active sector.
// Existing periods are left alone, so the call is idempotent.
func (m *Manager) EnsureCurrent(ctx context.Context, now time.Time) (int, error) {
	sectors, err := m.sectors.List(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("list sectors: %w", err)
	}

	opened := 0
	for _, sec := range sectors {
		_, err := m.Create(ctx, sec.ID, int(now.Month()), now.Year())
		switch {
		case err == nil:
			opened++
		case errors.Is(err, contracts.ErrConflict):
			// already exists, or single-open policy blocks it
		default:
			return opened, fmt.Errorf("open period for sector %s: %w", sec.Code, err)
		}
	}
	return opened, nil
}
