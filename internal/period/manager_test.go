package period

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/store/memory"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

type recordingWatcher struct {
	changed []uuid.UUID
}

func (w *recordingWatcher) SectorChanged(_ context.Context, id uuid.UUID) {
	w.changed = append(w.changed, id)
}

func setup(t *testing.T, opts Options) (*Manager, *contracts.Repositories, contracts.Sector) {
	t.Helper()
	repos := memory.New().Repositories()
	sec := contracts.Sector{ID: uuid.New(), Name: "UTI Adulto", Code: "UTI-01", Active: true}
	require.NoError(t, repos.Sectors.Create(context.Background(), &sec))
	return NewManager(repos, nil, opts, logger.NewNop()), repos, sec
}

func TestCreate(t *testing.T) {
	watcher := &recordingWatcher{}
	m, _, sec := setup(t, Options{Watcher: watcher})

	p, err := m.Create(context.Background(), sec.ID, 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, contracts.PeriodOpen, p.Status)
	assert.Equal(t, 3, p.Month)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, []uuid.UUID{sec.ID}, watcher.changed)
}

func TestCreateValidation(t *testing.T) {
	m, _, sec := setup(t, Options{})
	ctx := context.Background()

	tests := []struct {
		name     string
		sectorID uuid.UUID
		month    int
		year     int
		sentinel error
	}{
		{"month zero", sec.ID, 0, 2024, contracts.ErrValidation},
		{"month thirteen", sec.ID, 13, 2024, contracts.ErrValidation},
		{"year too early", sec.ID, 6, 1999, contracts.ErrValidation},
		{"missing sector", uuid.Nil, 6, 2024, contracts.ErrValidation},
		{"unknown sector", uuid.New(), 6, 2024, contracts.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Create(ctx, tt.sectorID, tt.month, tt.year)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestCreateDuplicateLeavesOriginal(t *testing.T) {
	m, _, sec := setup(t, Options{})
	ctx := context.Background()

	orig, err := m.Create(ctx, sec.ID, 3, 2024)
	require.NoError(t, err)
	_, err = m.Close(ctx, orig.ID)
	require.NoError(t, err)

	_, err = m.Create(ctx, sec.ID, 3, 2024)
	require.ErrorIs(t, err, contracts.ErrConflict)

	got, err := m.Get(ctx, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, contracts.PeriodClosed, got.Status)

	list, err := m.List(ctx, contracts.PeriodFilter{SectorID: sec.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMultipleOpenPeriodsAllowedByDefault(t *testing.T) {
	m, _, sec := setup(t, Options{})
	ctx := context.Background()

	_, err := m.Create(ctx, sec.ID, 1, 2024)
	require.NoError(t, err)
	_, err = m.Create(ctx, sec.ID, 2, 2024)
	require.NoError(t, err)

	open, err := m.List(ctx, contracts.PeriodFilter{SectorID: sec.ID, Status: contracts.PeriodOpen})
	require.NoError(t, err)
	assert.Len(t, open, 2)
}

func TestSingleOpenPolicy(t *testing.T) {
	m, _, sec := setup(t, Options{SingleOpen: true})
	ctx := context.Background()

	first, err := m.Create(ctx, sec.ID, 1, 2024)
	require.NoError(t, err)
	_, err = m.Create(ctx, sec.ID, 2, 2024)
	assert.ErrorIs(t, err, contracts.ErrConflict)

	_, err = m.Close(ctx, first.ID)
	require.NoError(t, err)
	second, err := m.Create(ctx, sec.ID, 2, 2024)
	require.NoError(t, err)

	// Reopening January would leave two OPEN periods
	_, err = m.Reopen(ctx, first.ID)
	assert.ErrorIs(t, err, contracts.ErrConflict)

	open, err := m.List(ctx, contracts.PeriodFilter{SectorID: sec.ID, Status: contracts.PeriodOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)

	_, err = m.Close(ctx, second.ID)
	require.NoError(t, err)
	reopened, err := m.Reopen(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, contracts.PeriodOpen, reopened.Status)
}

func TestTransitions(t *testing.T) {
	m, _, sec := setup(t, Options{})
	ctx := context.Background()

	p, err := m.Create(ctx, sec.ID, 1, 2024)
	require.NoError(t, err)

	// OPEN -> VALIDATED skips CLOSED
	_, err = m.Validate(ctx, p.ID)
	assert.ErrorIs(t, err, contracts.ErrConflict)

	closed, err := m.Close(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, contracts.PeriodClosed, closed.Status)

	again, err := m.Close(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, contracts.PeriodClosed, again.Status)

	reopened, err := m.Reopen(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, contracts.PeriodOpen, reopened.Status)

	_, err = m.Close(ctx, p.ID)
	require.NoError(t, err)
	validated, err := m.Validate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, contracts.PeriodValidated, validated.Status)

	_, err = m.Reopen(ctx, p.ID)
	require.ErrorIs(t, err, contracts.ErrConflict)
	assert.Contains(t, err.Error(), "validated period cannot be reopened")

	_, err = m.Close(ctx, uuid.New())
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestCloseReopenWritability(t *testing.T) {
	m, _, sec := setup(t, Options{})
	ctx := context.Background()

	p, err := m.Create(ctx, sec.ID, 1, 2024)
	require.NoError(t, err)

	_, err = m.AssertWritable(ctx, p.ID)
	require.NoError(t, err)

	_, err = m.Close(ctx, p.ID)
	require.NoError(t, err)
	_, err = m.AssertWritable(ctx, p.ID)
	require.ErrorIs(t, err, contracts.ErrPeriodClosed)

	var closed *contracts.PeriodClosedError
	require.ErrorAs(t, err, &closed)
	assert.Equal(t, contracts.PeriodClosed, closed.Status)

	_, err = m.Reopen(ctx, p.ID)
	require.NoError(t, err)
	_, err = m.AssertWritable(ctx, p.ID)
	assert.NoError(t, err)

	_, err = m.AssertWritable(ctx, uuid.New())
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestAssertOwned(t *testing.T) {
	p := &contracts.Period{SectorID: uuid.New()}
	assert.NoError(t, AssertOwned(p, p.SectorID))
	assert.ErrorIs(t, AssertOwned(p, uuid.New()), contracts.ErrValidation)
}

func TestListRequiresSector(t *testing.T) {
	m, _, _ := setup(t, Options{})
	_, err := m.List(context.Background(), contracts.PeriodFilter{})
	assert.ErrorIs(t, err, contracts.ErrValidation)
}

func TestDeleteBlockedWhileReferenced(t *testing.T) {
	m, repos, sec := setup(t, Options{})
	ctx := context.Background()

	p, err := m.Create(ctx, sec.ID, 1, 2024)
	require.NoError(t, err)

	ev := contracts.AdverseEvent{ID: uuid.New(), PeriodID: p.ID, SectorID: sec.ID, EventType: contracts.EventFall}
	require.NoError(t, repos.AdverseEvents.Create(ctx, &ev))

	assert.ErrorIs(t, m.Delete(ctx, p.ID), contracts.ErrConflict)

	require.NoError(t, repos.AdverseEvents.Delete(ctx, ev.ID))
	require.NoError(t, m.Delete(ctx, p.ID))
	_, err = m.Get(ctx, p.ID)
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}

func TestEnsureCurrentIsIdempotent(t *testing.T) {
	m, repos, sec := setup(t, Options{})
	ctx := context.Background()

	inactive := contracts.Sector{ID: uuid.New(), Name: "Old", Code: "OLD", Active: false}
	require.NoError(t, repos.Sectors.Create(ctx, &inactive))

	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	opened, err := m.EnsureCurrent(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, opened)

	opened, err = m.EnsureCurrent(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, opened)

	list, err := m.List(ctx, contracts.PeriodFilter{SectorID: sec.ID, Year: 2025})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 7, list[0].Month)
}
