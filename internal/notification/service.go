// Package notification records clinical notifications and ranks them by
// professional category.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/audit"
	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/period"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

const resource = "notification"

// Service manages notifications
type Service struct {
	repo            contracts.NotificationRepository
	classifications contracts.LookupRepository
	categories      contracts.LookupRepository
	periods         *period.Manager
	audit           *audit.Recorder
	watcher         contracts.SectorWatcher
	logger          *logger.Logger
	now             func() time.Time
}

// NewService creates a notification service
func NewService(repos *contracts.Repositories, periods *period.Manager, rec *audit.Recorder, watcher contracts.SectorWatcher, log *logger.Logger) *Service {
	if watcher == nil {
		watcher = contracts.NopWatcher{}
	}
	return &Service{
		repo:            repos.Notifications,
		classifications: repos.Classifications,
		categories:      repos.ProfessionalCategories,
		periods:         periods,
		audit:           rec,
		watcher:         watcher,
		logger:          log,
		now:             time.Now,
	}
}

// Input is the notification request body. Each id/text pair is mutually exclusive.
// PeriodID and SectorID are ignored on update.
type Input struct {
	PeriodID                 uuid.UUID  `json:"periodId"`
	SectorID                 uuid.UUID  `json:"sectorId"`
	ClassificationID         *uuid.UUID `json:"classificationId"`
	ClassificationText       *string    `json:"classificationText"`
	ProfessionalCategoryID   *uuid.UUID `json:"professionalCategoryId"`
	ProfessionalCategoryText *string    `json:"professionalCategoryText"`
	Description              string     `json:"description"`
	Quantity                 int        `json:"quantity"`
	QuantityClassification   int        `json:"quantityClassification"`
	QuantityCategory         int        `json:"quantityCategory"`
	QuantityProfessional     int        `json:"quantityProfessional"`
}

// apply copies the replaceable fields of in onto n
func (s *Service) apply(ctx context.Context, n *contracts.Notification, in Input) error {
	classification, err := contracts.NewReference("classification", in.ClassificationID, in.ClassificationText)
	if err != nil {
		return err
	}
	category, err := contracts.NewReference("professionalCategory", in.ProfessionalCategoryID, in.ProfessionalCategoryText)
	if err != nil {
		return err
	}
	if err := s.resolve(ctx, s.classifications, classification); err != nil {
		return err
	}
	if err := s.resolve(ctx, s.categories, category); err != nil {
		return err
	}

	n.Classification = classification
	n.ProfessionalCategory = category
	n.Description = strings.TrimSpace(in.Description)
	n.Quantity = in.Quantity
	n.QuantityClassification = in.QuantityClassification
	n.QuantityCategory = in.QuantityCategory
	n.QuantityProfessional = in.QuantityProfessional
	return n.Validate()
}

// resolve fails with NotFound when a by-id reference has no lookup row
func (s *Service) resolve(ctx context.Context, repo contracts.LookupRepository, ref contracts.Reference) error {
	id, ok := ref.ID()
	if !ok {
		return nil
	}
	_, err := repo.Get(ctx, id)
	return err
}

// Create records a notification against an open period
func (s *Service) Create(ctx context.Context, in Input) (*contracts.NotificationView, error) {
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
	n := &contracts.Notification{
		ID:        uuid.New(),
		PeriodID:  p.ID,
		SectorID:  p.SectorID,
		CreatedBy: contracts.ActorID(ctx),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, n, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	s.audit.Record(ctx, contracts.AuditCreate, resource, n.ID, "")
	s.watcher.SectorChanged(ctx, n.SectorID)
	return s.View(ctx, n)
}

// Update replaces references, description and quantities
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*contracts.NotificationView, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.periods.AssertWritable(ctx, n.PeriodID); err != nil {
		return nil, err
	}

	if err := s.apply(ctx, n, in); err != nil {
		return nil, err
	}
	n.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("update notification: %w", err)
	}

	s.audit.Record(ctx, contracts.AuditUpdate, resource, n.ID, "")
	s.watcher.SectorChanged(ctx, n.SectorID)
	return s.View(ctx, n)
}

// Delete removes a notification of an open period
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.periods.AssertWritable(ctx, n.PeriodID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	s.audit.Record(ctx, contracts.AuditDelete, resource, id, "")
	s.watcher.SectorChanged(ctx, n.SectorID)
	return nil
}

// Get returns one notification with its lookups resolved
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*contracts.NotificationView, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.View(ctx, n)
}

// List returns matching notifications, newest first
func (s *Service) List(ctx context.Context, filter contracts.NotificationFilter) ([]contracts.NotificationView, error) {
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return s.Views(ctx, list)
}

// ListByDateRange returns notifications created within the inclusive date range
func (s *Service) ListByDateRange(ctx context.Context, r contracts.DateRange) ([]contracts.NotificationView, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	filter := contracts.NotificationFilter{}
	if !r.From.IsZero() {
		filter.CreatedFrom = r.From.Time
	}
	if !r.To.IsZero() {
		filter.CreatedTo = r.To.AddDate(0, 0, 1)
	}
	return s.List(ctx, filter)
}

// View resolves the lookups of one notification
func (s *Service) View(ctx context.Context, n *contracts.Notification) (*contracts.NotificationView, error) {
	views, err := s.Views(ctx, []contracts.Notification{*n})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Views resolves lookups for a batch, reading each lookup row once
func (s *Service) Views(ctx context.Context, list []contracts.Notification) ([]contracts.NotificationView, error) {
	cache := newLookupCache(s.classifications, s.categories)
	out := make([]contracts.NotificationView, 0, len(list))

	for i := range list {
		n := &list[i]
		v := contracts.NotificationView{
			ID:                     n.ID,
			PeriodID:               n.PeriodID,
			SectorID:               n.SectorID,
			Description:            n.Description,
			QuantityClassification: n.QuantityClassification,
			QuantityCategory:       n.QuantityCategory,
			QuantityProfessional:   n.QuantityProfessional,
			Quantity:               n.Quantity,
			CreatedAt:              n.CreatedAt,
			UpdatedAt:              n.UpdatedAt,
		}
		if n.CreatedBy != uuid.Nil {
			createdBy := n.CreatedBy
			v.CreatedBy = &createdBy
		}

		var err error
		if v.Classification, v.ClassificationText, err = cache.resolve(ctx, contracts.LookupClassification, n.Classification); err != nil {
			return nil, err
		}
		if v.ProfessionalCategory, v.ProfessionalCategoryText, err = cache.resolve(ctx, contracts.LookupProfessionalCategory, n.ProfessionalCategory); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type lookupCache struct {
	repos map[contracts.LookupKind]contracts.LookupRepository
	rows  map[uuid.UUID]*contracts.Lookup
}

func newLookupCache(classifications, categories contracts.LookupRepository) *lookupCache {
	return &lookupCache{
		repos: map[contracts.LookupKind]contracts.LookupRepository{
			contracts.LookupClassification:       classifications,
			contracts.LookupProfessionalCategory: categories,
		},
		rows: make(map[uuid.UUID]*contracts.Lookup),
	}
}

// resolve returns the lookup row or the free text of ref.
// A row deleted underneath the reference resolves to nil.
func (c *lookupCache) resolve(ctx context.Context, kind contracts.LookupKind, ref contracts.Reference) (*contracts.Lookup, *string, error) {
	if text, ok := ref.Text(); ok {
		return nil, &text, nil
	}
	id, ok := ref.ID()
	if !ok {
		return nil, nil, nil
	}
	if row, cached := c.rows[id]; cached {
		return row, nil, nil
	}

	row, err := c.repos[kind].Get(ctx, id)
	if err != nil && !errors.Is(err, contracts.ErrNotFound) {
		return nil, nil, fmt.Errorf("resolve %s: %w", kind.Resource(), err)
	}
	c.rows[id] = row
	return row, nil, nil
}
