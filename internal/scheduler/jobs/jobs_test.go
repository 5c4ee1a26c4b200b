package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/period"
	"github.com/zezinho10632/DouglasApi/internal/report"
	"github.com/zezinho10632/DouglasApi/internal/sector"
	"github.com/zezinho10632/DouglasApi/internal/store/memory"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
	"github.com/zezinho10632/DouglasApi/pkg/redis"
)

type stubOpener struct {
	got time.Time
	err error
}

func (s *stubOpener) EnsureCurrent(_ context.Context, now time.Time) (int, error) {
	s.got = now
	return 1, s.err
}

func TestPeriodRolloverUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	opener := &stubOpener{}
	job := NewPeriodRolloverJob(opener, loc, logger.NewNop())
	// 02:00 UTC on Feb 1 is still Jan 31 in Sao Paulo
	job.now = func() time.Time { return time.Date(2025, 2, 1, 2, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, time.January, opener.got.Month())
	assert.Equal(t, "period_rollover", job.Name())
}

func TestPeriodRolloverPropagatesError(t *testing.T) {
	job := NewPeriodRolloverJob(&stubOpener{err: errors.New("db down")}, nil, logger.NewNop())
	assert.Error(t, job.Run(context.Background()))
}

func TestPeriodRolloverIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repos := memory.New().Repositories()
	log := logger.NewNop()

	sectors := sector.NewService(repos, nil, log)
	_, err := sectors.Create(ctx, sector.Input{Name: "UTI Adulto", Code: "UTI-01"})
	require.NoError(t, err)
	_, err = sectors.Create(ctx, sector.Input{Name: "Pronto Socorro", Code: "PS-01"})
	require.NoError(t, err)

	periods := period.NewManager(repos, nil, period.Options{}, log)
	job := NewPeriodRolloverJob(periods, time.UTC, log)
	job.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, job.Run(ctx))
	require.NoError(t, job.Run(ctx))

	list, err := periods.List(ctx, contracts.PeriodFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestReportCachePurge(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewWithAddr(mr.Addr())
	t.Cleanup(func() { client.Close() })

	cache := report.NewCache(redis.NewCache(client, "quality"), time.Minute, logger.NewNop())
	ctx := context.Background()

	_, err := cache.Fetch(ctx, uuid.New(), "panel", "", func() (interface{}, error) {
		return map[string]int{"n": 1}, nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, mr.Keys())

	job := NewReportCachePurgeJob(cache, logger.NewNop())
	require.NoError(t, job.Run(ctx))
	assert.Empty(t, mr.Keys())
}

func TestReportCachePurgeWithoutRedis(t *testing.T) {
	var cache *report.Cache
	job := NewReportCachePurgeJob(cache, logger.NewNop())
	assert.NoError(t, job.Run(context.Background()))
}
