// Package lookup manages the notification classification and professional
// category tables.
package lookup

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/audit"
	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// Purger drops every cached report. Reports of all sectors embed lookup names.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// Service manages one lookup table
type Service struct {
	kind   contracts.LookupKind
	repo   contracts.LookupRepository
	audit  *audit.Recorder
	cache  Purger
	logger *logger.Logger
}

// NewService creates a service for the table of kind. cache may be nil.
func NewService(kind contracts.LookupKind, repos *contracts.Repositories, rec *audit.Recorder, cache Purger, log *logger.Logger) *Service {
	repo := repos.Classifications
	if kind == contracts.LookupProfessionalCategory {
		repo = repos.ProfessionalCategories
	}
	return &Service{kind: kind, repo: repo, audit: rec, cache: cache, logger: log}
}

// Input carries the writable lookup fields
type Input struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

// Kind returns the table this service manages
func (s *Service) Kind() contracts.LookupKind {
	return s.kind
}

// Create adds an active row
func (s *Service) Create(ctx context.Context, in Input) (*contracts.Lookup, error) {
	l := &contracts.Lookup{ID: uuid.New(), Name: in.Name, Active: in.Active == nil || *in.Active}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind.Resource(), err)
	}

	s.audit.Record(ctx, contracts.AuditCreate, s.kind.Resource(), l.ID, l.Name)
	return l, nil
}

// Update renames a row and optionally toggles it
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*contracts.Lookup, error) {
	l, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Name = in.Name
	if in.Active != nil {
		l.Active = *in.Active
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, fmt.Errorf("update %s: %w", s.kind.Resource(), err)
	}

	s.audit.Record(ctx, contracts.AuditUpdate, s.kind.Resource(), l.ID, l.Name)
	s.purge(ctx)
	return l, nil
}

// Delete removes a row no notification references
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", s.kind.Resource(), err)
	}
	s.audit.Record(ctx, contracts.AuditDelete, s.kind.Resource(), id, "")
	s.purge(ctx)
	return nil
}

// purge invalidates cached reports after a rename or delete. Failures leave
// the entries to expire.
func (s *Service) purge(ctx context.Context) {
	if s.cache == nil {
		return
	}
	n, err := s.cache.Purge(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Report cache purge failed")
		return
	}
	if n > 0 {
		s.logger.WithFields(map[string]interface{}{
			"lookup": string(s.kind),
			"keys":   n,
		}).Debug("Report cache purged")
	}
}

// Get returns one row
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*contracts.Lookup, error) {
	return s.repo.Get(ctx, id)
}

// List returns rows ordered by name
func (s *Service) List(ctx context.Context, activeOnly bool) ([]contracts.Lookup, error) {
	return s.repo.List(ctx, activeOnly)
}
