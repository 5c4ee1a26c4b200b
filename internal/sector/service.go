package sector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/audit"
	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// Service manages sectors
type Service struct {
	repo   contracts.SectorRepository
	audit  *audit.Recorder
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a sector service
func NewService(repos *contracts.Repositories, rec *audit.Recorder, log *logger.Logger) *Service {
	return &Service{repo: repos.Sectors, audit: rec, logger: log, now: time.Now}
}

// Input carries the writable sector fields
type Input struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Active *bool  `json:"active"`
}

// Create adds an active sector
func (s *Service) Create(ctx context.Context, in Input) (*contracts.Sector, error) {
	now := s.now().UTC()
	sec := &contracts.Sector{
		ID:        uuid.New(),
		Name:      in.Name,
		Code:      in.Code,
		Active:    in.Active == nil || *in.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := sec.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, sec); err != nil {
		return nil, fmt.Errorf("create sector: %w", err)
	}

	s.audit.Record(ctx, contracts.AuditCreate, "sector", sec.ID, sec.Code)
	return sec, nil
}

// Update replaces name and code. Active is kept unless given.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*contracts.Sector, error) {
	sec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sec.Name = in.Name
	sec.Code = in.Code
	if in.Active != nil {
		sec.Active = *in.Active
	}
	sec.UpdatedAt = s.now().UTC()
	if err := sec.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, sec); err != nil {
		return nil, fmt.Errorf("update sector: %w", err)
	}

	s.audit.Record(ctx, contracts.AuditUpdate, "sector", sec.ID, sec.Code)
	return sec, nil
}

// Delete removes a sector no period references
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete sector: %w", err)
	}

	s.logger.WithField("sector_id", id).Info("Sector deleted")
	s.audit.Record(ctx, contracts.AuditDelete, "sector", id, "")
	return nil
}

// Get returns one sector
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*contracts.Sector, error) {
	return s.repo.Get(ctx, id)
}

// List returns sectors ordered by name
func (s *Service) List(ctx context.Context, includeInactive bool) ([]contracts.Sector, error) {
	return s.repo.List(ctx, !includeInactive)
}
