package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/config"
	"github.com/zezinho10632/DouglasApi/pkg/database"
)

// openStore connects to DATABASE_URL and applies the schema.
// Tests are skipped when no database is configured.
func openStore(t *testing.T) (*Store, *contracts.Repositories) {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" || testing.Short() {
		t.Skip("DATABASE_URL not set")
	}

	cfg := &config.Config{Database: config.DatabaseConfig{
		URL:             url,
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: time.Minute,
	}}
	ctx := context.Background()
	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	store := New(db)
	require.NoError(t, store.Migrate(ctx))
	return store, store.Repositories()
}

func newSector(t *testing.T, repos *contracts.Repositories) contracts.Sector {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	s := contracts.Sector{
		ID:        uuid.New(),
		Name:      "Sector " + uuid.NewString()[:8],
		Code:      "S-" + uuid.NewString()[:8],
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repos.Sectors.Create(context.Background(), &s))
	return s
}

func newPeriod(sectorID uuid.UUID, month, year int) *contracts.Period {
	now := time.Now().UTC()
	return &contracts.Period{
		ID:        uuid.New(),
		SectorID:  sectorID,
		Month:     month,
		Year:      year,
		Status:    contracts.PeriodOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	store, _ := openStore(t)
	assert.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, store.HealthCheck(context.Background()))
}

func TestSectorCodeIsUnique(t *testing.T) {
	_, repos := openStore(t)
	s := newSector(t, repos)

	dup := s
	dup.ID = uuid.New()
	err := repos.Sectors.Create(context.Background(), &dup)
	assert.True(t, errors.Is(err, contracts.ErrConflict))

	_, err = repos.Sectors.Get(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, contracts.ErrNotFound))
}

func TestConcurrentPeriodCreateHasOneWinner(t *testing.T) {
	_, repos := openStore(t)
	s := newSector(t, repos)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repos.Periods.Create(context.Background(), newPeriod(s.ID, 3, 2024), false)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, contracts.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, conflicts)
}

func TestSingleOpenPolicy(t *testing.T) {
	_, repos := openStore(t)
	ctx := context.Background()
	s := newSector(t, repos)

	require.NoError(t, repos.Periods.Create(ctx, newPeriod(s.ID, 1, 2024), true))
	err := repos.Periods.Create(ctx, newPeriod(s.ID, 2, 2024), true)
	assert.True(t, errors.Is(err, contracts.ErrConflict))
	assert.NoError(t, repos.Periods.Create(ctx, newPeriod(s.ID, 2, 2024), false))

	err = repos.Periods.Create(ctx, newPeriod(uuid.New(), 1, 2024), false)
	assert.True(t, errors.Is(err, contracts.ErrNotFound))
}

func TestSingleOpenPolicyOnReopen(t *testing.T) {
	_, repos := openStore(t)
	ctx := context.Background()
	s := newSector(t, repos)

	jan := newPeriod(s.ID, 1, 2024)
	require.NoError(t, repos.Periods.Create(ctx, jan, true))
	_, err := repos.Periods.SetStatus(ctx, jan.ID, contracts.PeriodClosed, true)
	require.NoError(t, err)
	feb := newPeriod(s.ID, 2, 2024)
	require.NoError(t, repos.Periods.Create(ctx, feb, true))

	_, err = repos.Periods.SetStatus(ctx, jan.ID, contracts.PeriodOpen, true)
	assert.True(t, errors.Is(err, contracts.ErrConflict))

	open, err := repos.Periods.List(ctx, contracts.PeriodFilter{SectorID: s.ID, Status: contracts.PeriodOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, feb.ID, open[0].ID)

	// the period itself being OPEN does not count against it
	_, err = repos.Periods.SetStatus(ctx, feb.ID, contracts.PeriodOpen, true)
	assert.NoError(t, err)

	_, err = repos.Periods.SetStatus(ctx, uuid.New(), contracts.PeriodOpen, true)
	assert.True(t, errors.Is(err, contracts.ErrNotFound))
}

func TestLargestTierPercentageIsStored(t *testing.T) {
	_, repos := openStore(t)
	ctx := context.Background()
	s := newSector(t, repos)
	p := newPeriod(s.ID, 6, 2024)
	require.NoError(t, repos.Periods.Create(ctx, p, false))

	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := &contracts.FallRisk{
		IndicatorMeta: contracts.IndicatorMeta{ID: uuid.New(), PeriodID: p.ID, SectorID: s.ID, CreatedAt: now, UpdatedAt: now},
		RiskTiers:     contracts.RiskTiers{TotalPatients: 1, HighRisk: contracts.MaxCount},
	}
	require.NoError(t, rec.Validate())
	rec.Derive()
	require.NoError(t, repos.Indicators.FallRisk.Create(ctx, rec))

	got, err := repos.Indicators.FallRisk.GetByPeriod(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("214748364700").Equal(got.HighRiskPercentage))
}

func TestOutOfRangeIsValidationError(t *testing.T) {
	_, repos := openStore(t)
	ctx := context.Background()
	s := newSector(t, repos)
	p := newPeriod(s.ID, 7, 2024)
	require.NoError(t, repos.Periods.Create(ctx, p, false))

	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := &contracts.HandHygiene{
		IndicatorMeta:        contracts.IndicatorMeta{ID: uuid.New(), PeriodID: p.ID, SectorID: s.ID, CreatedAt: now, UpdatedAt: now},
		CompliancePercentage: decimal.RequireFromString("1000"),
	}
	err := repos.Indicators.HandHygiene.Create(ctx, rec)
	assert.True(t, errors.Is(err, contracts.ErrValidation))
}

func TestIndicatorRoundTripAndRestrictedDelete(t *testing.T) {
	_, repos := openStore(t)
	ctx := context.Background()
	s := newSector(t, repos)
	p := newPeriod(s.ID, 5, 2024)
	require.NoError(t, repos.Periods.Create(ctx, p, false))

	now := time.Now().UTC().Truncate(time.Microsecond)
	rec := &contracts.PressureInjury{
		IndicatorMeta: contracts.IndicatorMeta{ID: uuid.New(), PeriodID: p.ID, SectorID: s.ID, CreatedAt: now, UpdatedAt: now},
		RiskTiers:     contracts.RiskTiers{TotalPatients: 3, HighRisk: 1},
		VeryHigh:      1,
	}
	rec.Derive()
	require.NoError(t, repos.Indicators.PressureInjury.Create(ctx, rec))

	got, err := repos.Indicators.PressureInjury.GetByPeriod(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("33.33").Equal(got.VeryHighPercentage))
	assert.Equal(t, uuid.Nil, got.CreatedBy)

	dup := *rec
	dup.ID = uuid.New()
	err = repos.Indicators.PressureInjury.Create(ctx, &dup)
	assert.True(t, errors.Is(err, contracts.ErrConflict))

	err = repos.Periods.Delete(ctx, p.ID)
	assert.True(t, errors.Is(err, contracts.ErrConflict))

	require.NoError(t, repos.Indicators.PressureInjury.Delete(ctx, rec.ID))
	assert.NoError(t, repos.Periods.Delete(ctx, p.ID))
}

func TestNotificationReferencesRoundTrip(t *testing.T) {
	_, repos := openStore(t)
	ctx := context.Background()
	s := newSector(t, repos)
	p := newPeriod(s.ID, 6, 2024)
	require.NoError(t, repos.Periods.Create(ctx, p, false))

	class := contracts.Lookup{ID: uuid.New(), Name: "Queda", Active: true}
	require.NoError(t, repos.Classifications.Create(ctx, &class))

	now := time.Now().UTC().Truncate(time.Microsecond)
	n := &contracts.Notification{
		ID:                   uuid.New(),
		PeriodID:             p.ID,
		SectorID:             s.ID,
		Classification:       contracts.RefByID(class.ID),
		ProfessionalCategory: contracts.RefByText("Fisioterapia"),
		QuantityProfessional: 2,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	require.NoError(t, repos.Notifications.Create(ctx, n))

	got, err := repos.Notifications.Get(ctx, n.ID)
	require.NoError(t, err)
	id, ok := got.Classification.ID()
	assert.True(t, ok)
	assert.Equal(t, class.ID, id)
	text, ok := got.ProfessionalCategory.Text()
	assert.True(t, ok)
	assert.Equal(t, "Fisioterapia", text)

	err = repos.Classifications.Delete(ctx, class.ID)
	assert.True(t, errors.Is(err, contracts.ErrConflict))

	list, err := repos.Notifications.List(ctx, contracts.NotificationFilter{ClassificationID: class.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
