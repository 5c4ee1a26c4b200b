package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

// indicatorRepo stores one indicator kind, at most one row per period
type indicatorRepo[T any, P interface {
	*T
	contracts.Indicator
}] struct {
	s    *Store
	kind contracts.IndicatorKind
	rows map[uuid.UUID]T
}

func newIndicatorRepo[T any, P interface {
	*T
	contracts.Indicator
}](s *Store, kind contracts.IndicatorKind) *indicatorRepo[T, P] {
	r := &indicatorRepo[T, P]{s: s, kind: kind, rows: make(map[uuid.UUID]T)}
	s.indicatorTables = append(s.indicatorTables, r)
	return r
}

func meta[T any, P interface {
	*T
	contracts.Indicator
}](rec *T) *contracts.IndicatorMeta {
	return P(rec).Meta()
}

func (r *indicatorRepo[T, P]) referencesPeriod(periodID uuid.UUID) bool {
	for id := range r.rows {
		row := r.rows[id]
		if meta[T, P](&row).PeriodID == periodID {
			return true
		}
	}
	return false
}

func (r *indicatorRepo[T, P]) Create(_ context.Context, rec *T) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m := meta[T, P](rec)
	if _, ok := r.s.periods[m.PeriodID]; !ok {
		return contracts.Conflict(r.kind.Resource(), "unknown period")
	}
	if r.referencesPeriod(m.PeriodID) {
		return contracts.Conflict(r.kind.Resource(), "a record already exists for this period")
	}
	r.rows[m.ID] = *rec
	return nil
}

func (r *indicatorRepo[T, P]) Update(_ context.Context, rec *T) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m := meta[T, P](rec)
	if _, ok := r.rows[m.ID]; !ok {
		return contracts.NotFound(r.kind.Resource(), m.ID)
	}
	r.rows[m.ID] = *rec
	return nil
}

func (r *indicatorRepo[T, P]) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return contracts.NotFound(r.kind.Resource(), id)
	}
	delete(r.rows, id)
	return nil
}

func (r *indicatorRepo[T, P]) Get(_ context.Context, id uuid.UUID) (*T, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.rows[id]
	if !ok {
		return nil, contracts.NotFound(r.kind.Resource(), id)
	}
	return &rec, nil
}

func (r *indicatorRepo[T, P]) GetByPeriod(_ context.Context, periodID uuid.UUID) (*T, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for id := range r.rows {
		rec := r.rows[id]
		if meta[T, P](&rec).PeriodID == periodID {
			return &rec, nil
		}
	}
	return nil, &contracts.NotFoundError{Resource: r.kind.Resource()}
}

func (r *indicatorRepo[T, P]) ListBySector(_ context.Context, sectorID uuid.UUID) ([]T, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]T, 0)
	for id := range r.rows {
		rec := r.rows[id]
		if meta[T, P](&rec).SectorID == sectorID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return meta[T, P](&out[i]).CreatedAt.Before(meta[T, P](&out[j]).CreatedAt)
	})
	return out, nil
}
