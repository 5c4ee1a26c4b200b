// Package memory is an in-process entity store. It enforces the same
// uniqueness and referential rules as the postgres store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

// Store holds every table behind one lock
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	sectors       map[uuid.UUID]contracts.Sector
	periods       map[uuid.UUID]contracts.Period
	lookups       map[contracts.LookupKind]map[uuid.UUID]contracts.Lookup
	notifications map[uuid.UUID]contracts.Notification
	events        map[uuid.UUID]contracts.AdverseEvent
	users         map[uuid.UUID]contracts.User

	// indicator tables register here for referential checks
	indicatorTables []periodReferrer
}

type periodReferrer interface {
	referencesPeriod(periodID uuid.UUID) bool
}

// New creates an empty store
func New() *Store {
	return &Store{
		now:     time.Now,
		sectors: make(map[uuid.UUID]contracts.Sector),
		periods: make(map[uuid.UUID]contracts.Period),
		lookups: map[contracts.LookupKind]map[uuid.UUID]contracts.Lookup{
			contracts.LookupClassification:       {},
			contracts.LookupProfessionalCategory: {},
		},
		notifications: make(map[uuid.UUID]contracts.Notification),
		events:        make(map[uuid.UUID]contracts.AdverseEvent),
		users:         make(map[uuid.UUID]contracts.User),
	}
}

// Repositories returns the store as a repository bundle
func (s *Store) Repositories() *contracts.Repositories {
	return &contracts.Repositories{
		Sectors:                &sectorRepo{s},
		Periods:                &periodRepo{s},
		Classifications:        &lookupRepo{s: s, kind: contracts.LookupClassification},
		ProfessionalCategories: &lookupRepo{s: s, kind: contracts.LookupProfessionalCategory},
		Notifications:          &notificationRepo{s},
		AdverseEvents:          &eventRepo{s},
		Indicators: contracts.IndicatorRepositories{
			Compliance:           newIndicatorRepo[contracts.Compliance](s, contracts.KindCompliance),
			HandHygiene:          newIndicatorRepo[contracts.HandHygiene](s, contracts.KindHandHygiene),
			FallRisk:             newIndicatorRepo[contracts.FallRisk](s, contracts.KindFallRisk),
			PressureInjury:       newIndicatorRepo[contracts.PressureInjury](s, contracts.KindPressureInjury),
			MetaCompliance:       newIndicatorRepo[contracts.MetaCompliance](s, contracts.KindMetaCompliance),
			MedicationCompliance: newIndicatorRepo[contracts.MedicationCompliance](s, contracts.KindMedicationCompliance),
			SelfNotification:     newIndicatorRepo[contracts.SelfNotification](s, contracts.KindSelfNotification),
		},
		Users:  &userRepo{s},
		Health: s,
	}
}

// HealthCheck always succeeds
func (s *Store) HealthCheck(context.Context) error {
	return nil
}

// ============================================================================
// Sectors
// ============================================================================

type sectorRepo struct{ s *Store }

func (r *sectorRepo) Create(_ context.Context, sec *contracts.Sector) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkSectorCode(sec.ID, sec.Code); err != nil {
		return err
	}
	r.s.sectors[sec.ID] = *sec
	return nil
}

func (r *sectorRepo) Update(_ context.Context, sec *contracts.Sector) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sectors[sec.ID]; !ok {
		return contracts.NotFound("sector", sec.ID)
	}
	if err := r.s.checkSectorCode(sec.ID, sec.Code); err != nil {
		return err
	}
	r.s.sectors[sec.ID] = *sec
	return nil
}

func (s *Store) checkSectorCode(id uuid.UUID, code string) error {
	for _, other := range s.sectors {
		if other.ID != id && other.Code == code {
			return contracts.Conflict("sector", "code "+code+" already exists")
		}
	}
	return nil
}

func (r *sectorRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sectors[id]; !ok {
		return contracts.NotFound("sector", id)
	}
	for _, p := range r.s.periods {
		if p.SectorID == id {
			return contracts.Conflict("sector", "sector is referenced by periods")
		}
	}
	delete(r.s.sectors, id)
	return nil
}

func (r *sectorRepo) Get(_ context.Context, id uuid.UUID) (*contracts.Sector, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sec, ok := r.s.sectors[id]
	if !ok {
		return nil, contracts.NotFound("sector", id)
	}
	return &sec, nil
}

func (r *sectorRepo) List(_ context.Context, activeOnly bool) ([]contracts.Sector, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]contracts.Sector, 0, len(r.s.sectors))
	for _, sec := range r.s.sectors {
		if activeOnly && !sec.Active {
			continue
		}
		out = append(out, sec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ============================================================================
// Periods
// ============================================================================

type periodRepo struct{ s *Store }

func (r *periodRepo) Create(_ context.Context, p *contracts.Period, singleOpen bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sectors[p.SectorID]; !ok {
		return contracts.NotFound("sector", p.SectorID)
	}
	for _, other := range r.s.periods {
		if other.SectorID != p.SectorID {
			continue
		}
		if other.Month == p.Month && other.Year == p.Year {
			return contracts.Conflict("period", "a period already exists for this sector, month and year")
		}
		if singleOpen && p.Status == contracts.PeriodOpen && other.Status == contracts.PeriodOpen {
			return contracts.Conflict("period", "sector already has an open period")
		}
	}
	r.s.periods[p.ID] = *p
	return nil
}

func (r *periodRepo) Get(_ context.Context, id uuid.UUID) (*contracts.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.periods[id]
	if !ok {
		return nil, contracts.NotFound("period", id)
	}
	return &p, nil
}

func (r *periodRepo) List(_ context.Context, filter contracts.PeriodFilter) ([]contracts.Period, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]contracts.Period, 0)
	for _, p := range r.s.periods {
		if filter.Matches(&p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

func (r *periodRepo) SetStatus(_ context.Context, id uuid.UUID, status contracts.PeriodStatus, singleOpen bool) (*contracts.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.periods[id]
	if !ok {
		return nil, contracts.NotFound("period", id)
	}
	if singleOpen && status == contracts.PeriodOpen {
		for otherID, other := range r.s.periods {
			if otherID != id && other.SectorID == p.SectorID && other.Status == contracts.PeriodOpen {
				return nil, contracts.Conflict("period", "sector already has an open period")
			}
		}
	}
	p.Status = status
	p.UpdatedAt = r.s.now().UTC()
	r.s.periods[id] = p
	return &p, nil
}

func (r *periodRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.periods[id]; !ok {
		return contracts.NotFound("period", id)
	}
	if r.s.periodReferenced(id) {
		return contracts.Conflict("period", "period is referenced by clinical records")
	}
	delete(r.s.periods, id)
	return nil
}

func (s *Store) periodReferenced(id uuid.UUID) bool {
	for _, n := range s.notifications {
		if n.PeriodID == id {
			return true
		}
	}
	for _, e := range s.events {
		if e.PeriodID == id {
			return true
		}
	}
	for _, t := range s.indicatorTables {
		if t.referencesPeriod(id) {
			return true
		}
	}
	return false
}

// ============================================================================
// Lookups
// ============================================================================

type lookupRepo struct {
	s    *Store
	kind contracts.LookupKind
}

func (r *lookupRepo) table() map[uuid.UUID]contracts.Lookup {
	return r.s.lookups[r.kind]
}

func (r *lookupRepo) Create(_ context.Context, l *contracts.Lookup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.table()[l.ID] = *l
	return nil
}

func (r *lookupRepo) Update(_ context.Context, l *contracts.Lookup) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.table()[l.ID]; !ok {
		return contracts.NotFound(r.kind.Resource(), l.ID)
	}
	r.table()[l.ID] = *l
	return nil
}

func (r *lookupRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.table()[id]; !ok {
		return contracts.NotFound(r.kind.Resource(), id)
	}
	for _, n := range r.s.notifications {
		ref := n.Classification
		if r.kind == contracts.LookupProfessionalCategory {
			ref = n.ProfessionalCategory
		}
		if refID, ok := ref.ID(); ok && refID == id {
			return contracts.Conflict(r.kind.Resource(), "referenced by notifications")
		}
	}
	delete(r.table(), id)
	return nil
}

func (r *lookupRepo) Get(_ context.Context, id uuid.UUID) (*contracts.Lookup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.table()[id]
	if !ok {
		return nil, contracts.NotFound(r.kind.Resource(), id)
	}
	return &l, nil
}

func (r *lookupRepo) List(_ context.Context, activeOnly bool) ([]contracts.Lookup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]contracts.Lookup, 0, len(r.table()))
	for _, l := range r.table() {
		if activeOnly && !l.Active {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ============================================================================
// Notifications
// ============================================================================

type notificationRepo struct{ s *Store }

func (r *notificationRepo) Create(_ context.Context, n *contracts.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkNotificationRefs(n); err != nil {
		return err
	}
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepo) Update(_ context.Context, n *contracts.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notifications[n.ID]; !ok {
		return contracts.NotFound("notification", n.ID)
	}
	if err := r.s.checkNotificationRefs(n); err != nil {
		return err
	}
	r.s.notifications[n.ID] = *n
	return nil
}

// checkNotificationRefs mirrors the foreign keys of the notifications table
func (s *Store) checkNotificationRefs(n *contracts.Notification) error {
	if _, ok := s.periods[n.PeriodID]; !ok {
		return contracts.Conflict("notification", "unknown period")
	}
	if id, ok := n.Classification.ID(); ok {
		if _, found := s.lookups[contracts.LookupClassification][id]; !found {
			return contracts.Conflict("notification", "unknown classification")
		}
	}
	if id, ok := n.ProfessionalCategory.ID(); ok {
		if _, found := s.lookups[contracts.LookupProfessionalCategory][id]; !found {
			return contracts.Conflict("notification", "unknown professional category")
		}
	}
	return nil
}

func (r *notificationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notifications[id]; !ok {
		return contracts.NotFound("notification", id)
	}
	delete(r.s.notifications, id)
	return nil
}

func (r *notificationRepo) Get(_ context.Context, id uuid.UUID) (*contracts.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n, ok := r.s.notifications[id]
	if !ok {
		return nil, contracts.NotFound("notification", id)
	}
	return &n, nil
}

func (r *notificationRepo) List(_ context.Context, filter contracts.NotificationFilter) ([]contracts.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]contracts.Notification, 0)
	for _, n := range r.s.notifications {
		if filter.Matches(&n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// ============================================================================
// Adverse events
// ============================================================================

type eventRepo struct{ s *Store }

func (r *eventRepo) Create(_ context.Context, e *contracts.AdverseEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.periods[e.PeriodID]; !ok {
		return contracts.Conflict("adverse event", "unknown period")
	}
	r.s.events[e.ID] = *e
	return nil
}

func (r *eventRepo) Update(_ context.Context, e *contracts.AdverseEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[e.ID]; !ok {
		return contracts.NotFound("adverse event", e.ID)
	}
	r.s.events[e.ID] = *e
	return nil
}

func (r *eventRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.events[id]; !ok {
		return contracts.NotFound("adverse event", id)
	}
	delete(r.s.events, id)
	return nil
}

func (r *eventRepo) Get(_ context.Context, id uuid.UUID) (*contracts.AdverseEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.events[id]
	if !ok {
		return nil, contracts.NotFound("adverse event", id)
	}
	return &e, nil
}

func (r *eventRepo) List(_ context.Context, filter contracts.AdverseEventFilter) ([]contracts.AdverseEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]contracts.AdverseEvent, 0)
	for _, e := range r.s.events {
		if filter.Matches(&e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate.Time) {
			return out[i].EventDate.After(out[j].EventDate.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ============================================================================
// Users
// ============================================================================

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *contracts.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, other := range r.s.users {
		if other.Email == u.Email {
			return contracts.Conflict("user", "email "+u.Email+" already exists")
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepo) Get(_ context.Context, id uuid.UUID) (*contracts.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, contracts.NotFound("user", id)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*contracts.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, &contracts.NotFoundError{Resource: "user", ID: email}
}

func (r *userRepo) List(_ context.Context, filter contracts.UserFilter) ([]contracts.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]contracts.User, 0)
	for _, u := range r.s.users {
		if filter.Matches(&u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
