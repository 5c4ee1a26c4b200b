package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/store/memory"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

type countingPurger struct {
	calls int
	err   error
}

func (p *countingPurger) Purge(context.Context) (int, error) {
	p.calls++
	return 1, p.err
}

func TestLookupTablesAreSeparate(t *testing.T) {
	repos := memory.New().Repositories()
	classes := NewService(contracts.LookupClassification, repos, nil, nil, logger.NewNop())
	cats := NewService(contracts.LookupProfessionalCategory, repos, nil, nil, logger.NewNop())
	ctx := context.Background()

	_, err := classes.Create(ctx, Input{Name: "Queda"})
	require.NoError(t, err)

	list, err := cats.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = classes.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestActiveOnly(t *testing.T) {
	repos := memory.New().Repositories()
	svc := NewService(contracts.LookupProfessionalCategory, repos, nil, nil, logger.NewNop())
	ctx := context.Background()

	off := false
	_, err := svc.Create(ctx, Input{Name: "Médico"})
	require.NoError(t, err)
	nurse, err := svc.Create(ctx, Input{Name: "Enfermeiro"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, nurse.ID, Input{Name: "Enfermeiro", Active: &off})
	require.NoError(t, err)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Médico", active[0].Name)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Enfermeiro", all[0].Name)
}

func TestValidationAndNotFound(t *testing.T) {
	svc := NewService(contracts.LookupClassification, memory.New().Repositories(), nil, nil, logger.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: "  "})
	assert.ErrorIs(t, err, contracts.ErrValidation)

	created, err := svc.Create(ctx, Input{Name: "Flebite"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, contracts.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), contracts.ErrNotFound)
}

func TestRenameAndDeletePurgeReports(t *testing.T) {
	purger := &countingPurger{}
	svc := NewService(contracts.LookupProfessionalCategory, memory.New().Repositories(), nil, purger, logger.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "Enfermeiro"})
	require.NoError(t, err)
	assert.Zero(t, purger.calls, "a new row is not in any cached report")

	_, err = svc.Update(ctx, created.ID, Input{Name: "Enfermagem"})
	require.NoError(t, err)
	assert.Equal(t, 1, purger.calls)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, 2, purger.calls)

	// a failed write leaves the cache alone
	assert.Error(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, 2, purger.calls)
}

func TestPurgeFailureDoesNotFailWrite(t *testing.T) {
	purger := &countingPurger{err: errors.New("redis down")}
	svc := NewService(contracts.LookupClassification, memory.New().Repositories(), nil, purger, logger.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "Queda"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, created.ID, Input{Name: "Queda do leito"})
	assert.NoError(t, err)
	assert.Equal(t, 1, purger.calls)
}
