package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

func TestRankingOrderIsDeterministic(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	nurse := f.lookup(t, f.repos.ProfessionalCategories, "Enfermagem")
	doctor := f.lookup(t, f.repos.ProfessionalCategories, "Medicina")

	inputs := []Input{
		{ProfessionalCategoryID: &nurse.ID, QuantityProfessional: 3},
		{ProfessionalCategoryID: &nurse.ID, QuantityProfessional: 2},
		{ProfessionalCategoryID: &doctor.ID, QuantityProfessional: 5},
		{ProfessionalCategoryText: ptr("Farmácia"), QuantityProfessional: 5},
		{ProfessionalCategoryText: ptr(" Farmácia "), QuantityProfessional: 1},
		{ProfessionalCategoryText: ptr("farmácia"), QuantityProfessional: 1},
		{QuantityProfessional: 7},
	}
	for _, in := range inputs {
		in.PeriodID, in.SectorID = f.period.ID, f.sector.ID
		_, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
	}

	ranking, err := f.svc.RankProfessionalCategories(ctx, contracts.RankingFilter{PeriodID: f.period.ID})
	require.NoError(t, err)

	type row struct {
		name  string
		total int
	}
	var got []row
	for _, e := range ranking {
		got = append(got, row{e.ProfessionalCategoryName, e.TotalQuantity})
	}
	assert.Equal(t, []row{
		{contracts.UnsetCategoryName, 7},
		{"Farmácia", 6},
		{"Enfermagem", 5},
		{"Medicina", 5},
		{"farmácia", 1},
	}, got)

	require.NotNil(t, ranking[2].ProfessionalCategoryID)
	assert.Equal(t, nurse.ID, *ranking[2].ProfessionalCategoryID)
	assert.Nil(t, ranking[0].ProfessionalCategoryID)
	assert.Nil(t, ranking[1].ProfessionalCategoryID)

	// repeated calls give the same order
	for i := 0; i < 5; i++ {
		again, err := f.svc.RankProfessionalCategories(ctx, contracts.RankingFilter{PeriodID: f.period.ID})
		require.NoError(t, err)
		assert.Equal(t, ranking, again)
	}
}

func TestRankingTieBreaksById(t *testing.T) {
	entries := []contracts.RankingEntry{
		{ProfessionalCategoryID: ptr(uuid.MustParse("00000000-0000-0000-0000-000000000002")), ProfessionalCategoryName: "Same", TotalQuantity: 1},
		{ProfessionalCategoryID: ptr(uuid.MustParse("00000000-0000-0000-0000-000000000001")), ProfessionalCategoryName: "Same", TotalQuantity: 1},
	}
	sortRanking(entries)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", entries[0].ProfessionalCategoryID.String())
}

func TestRankingFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other, err := f.periods.Create(ctx, f.sector.ID, 2, 2024)
	require.NoError(t, err)

	for _, p := range []uuid.UUID{f.period.ID, other.ID} {
		_, err := f.svc.Create(ctx, Input{PeriodID: p, SectorID: f.sector.ID, QuantityProfessional: 2})
		require.NoError(t, err)
	}

	byPeriod, err := f.svc.RankProfessionalCategories(ctx, contracts.RankingFilter{PeriodID: other.ID})
	require.NoError(t, err)
	require.Len(t, byPeriod, 1)
	assert.Equal(t, 2, byPeriod[0].TotalQuantity)

	bySector, err := f.svc.RankProfessionalCategories(ctx, contracts.RankingFilter{SectorID: f.sector.ID})
	require.NoError(t, err)
	require.Len(t, bySector, 1)
	assert.Equal(t, 4, bySector[0].TotalQuantity)

	none, err := f.svc.RankProfessionalCategories(ctx, contracts.RankingFilter{PeriodID: other.ID, SectorID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, none)
}
