package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

func newSector(t *testing.T, repos *contracts.Repositories, code string) contracts.Sector {
	t.Helper()
	sec := contracts.Sector{ID: uuid.New(), Name: "Sector " + code, Code: code, Active: true}
	require.NoError(t, repos.Sectors.Create(context.Background(), &sec))
	return sec
}

func newPeriod(t *testing.T, repos *contracts.Repositories, sectorID uuid.UUID, month, year int) contracts.Period {
	t.Helper()
	p := contracts.Period{ID: uuid.New(), SectorID: sectorID, Month: month, Year: year, Status: contracts.PeriodOpen}
	require.NoError(t, repos.Periods.Create(context.Background(), &p, false))
	return p
}

func TestSectorCodeIsUnique(t *testing.T) {
	repos := New().Repositories()
	newSector(t, repos, "UTI-01")

	dup := contracts.Sector{ID: uuid.New(), Name: "Other", Code: "UTI-01"}
	err := repos.Sectors.Create(context.Background(), &dup)
	assert.ErrorIs(t, err, contracts.ErrConflict)
}

func TestSectorListActiveOnly(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	newSector(t, repos, "B")
	inactive := newSector(t, repos, "A")
	inactive.Active = false
	require.NoError(t, repos.Sectors.Update(ctx, &inactive))

	all, err := repos.Sectors.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := repos.Sectors.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "B", active[0].Code)
}

func TestDuplicatePeriodLeavesOriginal(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	sec := newSector(t, repos, "UTI-01")
	orig := newPeriod(t, repos, sec.ID, 3, 2024)

	dup := contracts.Period{ID: uuid.New(), SectorID: sec.ID, Month: 3, Year: 2024, Status: contracts.PeriodOpen}
	err := repos.Periods.Create(ctx, &dup, false)
	require.ErrorIs(t, err, contracts.ErrConflict)

	got, err := repos.Periods.Get(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, orig, *got)

	_, err = repos.Periods.Get(ctx, dup.ID)
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestConcurrentPeriodCreateExactlyOneWins(t *testing.T) {
	repos := New().Repositories()
	sec := newSector(t, repos, "UTI-01")

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := contracts.Period{ID: uuid.New(), SectorID: sec.ID, Month: 1, Year: 2025, Status: contracts.PeriodOpen}
			errs[i] = repos.Periods.Create(context.Background(), &p, false)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, contracts.ErrConflict)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestSingleOpenPolicy(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	sec := newSector(t, repos, "UTI-01")
	newPeriod(t, repos, sec.ID, 1, 2024)

	second := contracts.Period{ID: uuid.New(), SectorID: sec.ID, Month: 2, Year: 2024, Status: contracts.PeriodOpen}
	assert.ErrorIs(t, repos.Periods.Create(ctx, &second, true), contracts.ErrConflict)
	assert.NoError(t, repos.Periods.Create(ctx, &second, false))
}

func TestPeriodListFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	sec := newSector(t, repos, "UTI-01")
	other := newSector(t, repos, "UTI-02")
	newPeriod(t, repos, sec.ID, 5, 2024)
	newPeriod(t, repos, sec.ID, 12, 2023)
	p := newPeriod(t, repos, sec.ID, 1, 2024)
	newPeriod(t, repos, other.ID, 1, 2024)

	_, err := repos.Periods.SetStatus(ctx, p.ID, contracts.PeriodClosed, false)
	require.NoError(t, err)

	all, err := repos.Periods.List(ctx, contracts.PeriodFilter{SectorID: sec.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{12, 1, 5}, []int{all[0].Month, all[1].Month, all[2].Month})

	year, err := repos.Periods.List(ctx, contracts.PeriodFilter{SectorID: sec.ID, Year: 2024})
	require.NoError(t, err)
	assert.Len(t, year, 2)

	closed, err := repos.Periods.List(ctx, contracts.PeriodFilter{SectorID: sec.ID, Status: contracts.PeriodClosed})
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, p.ID, closed[0].ID)
}

func TestReferentialBlocking(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	sec := newSector(t, repos, "UTI-01")
	p := newPeriod(t, repos, sec.ID, 1, 2024)

	assert.ErrorIs(t, repos.Sectors.Delete(ctx, sec.ID), contracts.ErrConflict)

	rec := contracts.HandHygiene{
		IndicatorMeta:        contracts.IndicatorMeta{ID: uuid.New(), PeriodID: p.ID, SectorID: sec.ID},
		CompliancePercentage: decimal.NewFromInt(90),
	}
	require.NoError(t, repos.Indicators.HandHygiene.Create(ctx, &rec))
	assert.ErrorIs(t, repos.Periods.Delete(ctx, p.ID), contracts.ErrConflict)

	require.NoError(t, repos.Indicators.HandHygiene.Delete(ctx, rec.ID))
	require.NoError(t, repos.Periods.Delete(ctx, p.ID))
	require.NoError(t, repos.Sectors.Delete(ctx, sec.ID))
}

func TestLookupDeleteBlockedByNotification(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	sec := newSector(t, repos, "UTI-01")
	p := newPeriod(t, repos, sec.ID, 1, 2024)

	cat := contracts.Lookup{ID: uuid.New(), Name: "Enfermagem", Active: true}
	require.NoError(t, repos.ProfessionalCategories.Create(ctx, &cat))

	n := contracts.Notification{
		ID: uuid.New(), PeriodID: p.ID, SectorID: sec.ID,
		ProfessionalCategory: contracts.RefByID(cat.ID),
	}
	require.NoError(t, repos.Notifications.Create(ctx, &n))

	assert.ErrorIs(t, repos.ProfessionalCategories.Delete(ctx, cat.ID), contracts.ErrConflict)
	assert.ErrorIs(t, repos.Periods.Delete(ctx, p.ID), contracts.ErrConflict)

	unknown := contracts.Notification{ID: uuid.New(), PeriodID: p.ID, Classification: contracts.RefByID(uuid.New())}
	assert.ErrorIs(t, repos.Notifications.Create(ctx, &unknown), contracts.ErrConflict)
}

func TestIndicatorOnePerPeriod(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	sec := newSector(t, repos, "UTI-01")
	p := newPeriod(t, repos, sec.ID, 1, 2024)

	first := contracts.FallRisk{IndicatorMeta: contracts.IndicatorMeta{ID: uuid.New(), PeriodID: p.ID, SectorID: sec.ID}}
	require.NoError(t, repos.Indicators.FallRisk.Create(ctx, &first))

	second := contracts.FallRisk{IndicatorMeta: contracts.IndicatorMeta{ID: uuid.New(), PeriodID: p.ID, SectorID: sec.ID}}
	assert.ErrorIs(t, repos.Indicators.FallRisk.Create(ctx, &second), contracts.ErrConflict)

	// another kind is independent
	pi := contracts.PressureInjury{IndicatorMeta: contracts.IndicatorMeta{ID: uuid.New(), PeriodID: p.ID, SectorID: sec.ID}}
	require.NoError(t, repos.Indicators.PressureInjury.Create(ctx, &pi))

	got, err := repos.Indicators.FallRisk.GetByPeriod(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = repos.Indicators.Compliance.GetByPeriod(ctx, p.ID)
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	list, err := repos.Indicators.FallRisk.ListBySector(ctx, sec.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNotificationListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	sec := newSector(t, repos, "UTI-01")
	p := newPeriod(t, repos, sec.ID, 1, 2024)

	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		n := contracts.Notification{ID: uuid.New(), PeriodID: p.ID, SectorID: sec.ID, Quantity: i, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, repos.Notifications.Create(ctx, &n))
	}

	list, err := repos.Notifications.List(ctx, contracts.NotificationFilter{SectorID: sec.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{2, 1, 0}, []int{list[0].Quantity, list[1].Quantity, list[2].Quantity})

	ranged, err := repos.Notifications.List(ctx, contracts.NotificationFilter{
		CreatedFrom: base.Add(30 * time.Minute),
		CreatedTo:   base.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, 1, ranged[0].Quantity)
}

func TestAdverseEventUpdateRoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()
	sec := newSector(t, repos, "UTI-01")
	p := newPeriod(t, repos, sec.ID, 1, 2024)

	e := contracts.AdverseEvent{
		ID: uuid.New(), PeriodID: p.ID, SectorID: sec.ID,
		EventDate: contracts.NewDate(2024, time.January, 5), EventType: contracts.EventFall,
		QuantityCases: 21, QuantityNotifications: 3,
	}
	require.NoError(t, repos.AdverseEvents.Create(ctx, &e))

	e.QuantityCases, e.QuantityNotifications = 25, 5
	require.NoError(t, repos.AdverseEvents.Update(ctx, &e))

	got, err := repos.AdverseEvents.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.QuantityCases)
	assert.Equal(t, 5, got.QuantityNotifications)
}

func TestUsersEmailUniqueAndFilter(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	admin := contracts.User{ID: uuid.New(), Name: "Admin", Email: "admin@douglas.com", Role: contracts.RoleAdmin}
	require.NoError(t, repos.Users.Create(ctx, &admin))
	dup := contracts.User{ID: uuid.New(), Name: "Other", Email: "admin@douglas.com"}
	assert.ErrorIs(t, repos.Users.Create(ctx, &dup), contracts.ErrConflict)

	got, err := repos.Users.GetByEmail(ctx, "admin@douglas.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	_, err = repos.Users.GetByEmail(ctx, "nobody@douglas.com")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	list, err := repos.Users.List(ctx, contracts.UserFilter{Email: "DOUGLAS"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
