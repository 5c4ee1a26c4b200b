package contracts

import (
	"context"

	"github.com/google/uuid"
)

// Repository interfaces of the entity store.
// Get methods return a NotFoundError for unknown ids. Unique and referential
// violations surface as ConflictError.

// SectorRepository persists sectors
type SectorRepository interface {
	Create(ctx context.Context, s *Sector) error
	Update(ctx context.Context, s *Sector) error
	// Delete fails with a ConflictError while any period references the sector
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Sector, error)
	List(ctx context.Context, activeOnly bool) ([]Sector, error)
}

// PeriodRepository persists periods
type PeriodRepository interface {
	// Create rejects a duplicate (sector, month, year). With singleOpen it also
	// rejects a second OPEN period of the sector, atomically.
	Create(ctx context.Context, p *Period, singleOpen bool) error
	Get(ctx context.Context, id uuid.UUID) (*Period, error)
	// List returns the matching periods ordered by year and month
	List(ctx context.Context, filter PeriodFilter) ([]Period, error)
	// SetStatus changes the status and returns the updated row. With singleOpen,
	// moving to OPEN fails while another period of the sector is OPEN.
	SetStatus(ctx context.Context, id uuid.UUID, status PeriodStatus, singleOpen bool) (*Period, error)
	// Delete fails with a ConflictError while any clinical record references the period
	Delete(ctx context.Context, id uuid.UUID) error
}

// LookupRepository persists one lookup table
type LookupRepository interface {
	Create(ctx context.Context, l *Lookup) error
	Update(ctx context.Context, l *Lookup) error
	// Delete fails with a ConflictError while notifications reference the row
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Lookup, error)
	// List returns rows ordered by name
	List(ctx context.Context, activeOnly bool) ([]Lookup, error)
}

// NotificationRepository persists notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	Update(ctx context.Context, n *Notification) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Notification, error)
	// List returns matching notifications, newest first
	List(ctx context.Context, filter NotificationFilter) ([]Notification, error)
}

// AdverseEventRepository persists adverse events
type AdverseEventRepository interface {
	Create(ctx context.Context, e *AdverseEvent) error
	Update(ctx context.Context, e *AdverseEvent) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*AdverseEvent, error)
	// List returns matching events ordered by event date, latest first
	List(ctx context.Context, filter AdverseEventFilter) ([]AdverseEvent, error)
}

// IndicatorRepository persists one indicator kind. Raw and derived fields
// are written in one statement and read in one row.
type IndicatorRepository[T any] interface {
	// Create rejects a second record for the same period
	Create(ctx context.Context, rec *T) error
	Update(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	// GetByPeriod returns a NotFoundError when the period has no record
	GetByPeriod(ctx context.Context, periodID uuid.UUID) (*T, error)
	// ListBySector returns the sector's records ordered by creation time
	ListBySector(ctx context.Context, sectorID uuid.UUID) ([]T, error)
}

// IndicatorRepositories bundles one repository per indicator kind
type IndicatorRepositories struct {
	Compliance           IndicatorRepository[Compliance]
	HandHygiene          IndicatorRepository[HandHygiene]
	FallRisk             IndicatorRepository[FallRisk]
	PressureInjury       IndicatorRepository[PressureInjury]
	MetaCompliance       IndicatorRepository[MetaCompliance]
	MedicationCompliance IndicatorRepository[MedicationCompliance]
	SelfNotification     IndicatorRepository[SelfNotification]
}

// UserRepository reads users. Create exists for seeding only.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// List returns matching users ordered by name
	List(ctx context.Context, filter UserFilter) ([]User, error)
}

// HealthChecker reports backend availability
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Repositories is the complete entity store
// ⭐ SSOT: services receive their repositories from this bundle only
type Repositories struct {
	Sectors                SectorRepository
	Periods                PeriodRepository
	Classifications        LookupRepository
	ProfessionalCategories LookupRepository
	Notifications          NotificationRepository
	AdverseEvents          AdverseEventRepository
	Indicators             IndicatorRepositories
	Users                  UserRepository
	Health                 HealthChecker
}
