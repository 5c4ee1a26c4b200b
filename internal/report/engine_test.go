package report

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zezinho10632/DouglasApi/internal/adverseevent"
	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/indicator"
	"github.com/zezinho10632/DouglasApi/internal/notification"
	"github.com/zezinho10632/DouglasApi/internal/period"
	"github.com/zezinho10632/DouglasApi/internal/store/memory"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

type fixture struct {
	engine     *Engine
	periods    *period.Manager
	indicators *indicator.Services
	events     *adverseevent.Service
	notes      *notification.Service
	sector     contracts.Sector
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.New().Repositories()
	sec := contracts.Sector{ID: uuid.New(), Name: "UTI Adulto", Code: "UTI-01", Active: true}
	require.NoError(t, repos.Sectors.Create(ctx, &sec))

	log := logger.NewNop()
	periods := period.NewManager(repos, nil, period.Options{}, log)
	indicators := indicator.NewServices(repos, periods, nil, nil, log)
	notes := notification.NewService(repos, periods, nil, nil, log)

	engine := NewEngine(repos, periods, indicators, notes, log)
	engine.SetClock(func() time.Time { return time.Date(2024, time.May, 14, 10, 0, 0, 0, time.UTC) })

	return &fixture{
		engine:     engine,
		periods:    periods,
		indicators: indicators,
		events:     adverseevent.NewService(repos, periods, nil, nil, log),
		notes:      notes,
		sector:     sec,
	}
}

func (f *fixture) period(t *testing.T, month, year int) *contracts.Period {
	t.Helper()
	p, err := f.periods.Create(context.Background(), f.sector.ID, month, year)
	require.NoError(t, err)
	return p
}

func meta(p *contracts.Period) contracts.IndicatorMeta {
	return contracts.IndicatorMeta{PeriodID: p.ID, SectorID: p.SectorID}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func TestPanelEmptyPeriod(t *testing.T) {
	f := setup(t)
	p := f.period(t, 1, 2024)

	report, err := f.engine.Panel(context.Background(), p.ID, f.sector.ID, contracts.DateRange{})
	require.NoError(t, err)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &out))
	for _, key := range []string{
		"complianceIndicator", "handHygieneAssessment", "fallRiskAssessment",
		"pressureInjuryRiskAssessment", "selfNotification", "metaCompliance", "medicationCompliance",
	} {
		assert.Equal(t, "null", string(out[key]), key)
	}
	assert.Equal(t, "[]", string(out["adverseEvents"]))
	assert.Equal(t, "[]", string(out["notifications"]))
}

func TestPanelSectorMismatch(t *testing.T) {
	f := setup(t)
	p := f.period(t, 1, 2024)

	_, err := f.engine.Panel(context.Background(), p.ID, uuid.New(), contracts.DateRange{})
	assert.True(t, errors.Is(err, contracts.ErrValidation))

	_, err = f.engine.Panel(context.Background(), uuid.New(), f.sector.ID, contracts.DateRange{})
	assert.True(t, errors.Is(err, contracts.ErrNotFound))
}

func TestPanelCollectsRecords(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.period(t, 1, 2024)

	_, err := f.indicators.HandHygiene.Create(ctx, &contracts.HandHygiene{IndicatorMeta: meta(p), CompliancePercentage: dec("80")})
	require.NoError(t, err)
	_, err = f.indicators.FallRisk.Create(ctx, &contracts.FallRisk{
		IndicatorMeta: meta(p),
		RiskTiers:     contracts.RiskTiers{TotalPatients: 100, AssessedOnAdmission: 90, HighRisk: 15},
	})
	require.NoError(t, err)

	for _, day := range []int{3, 20} {
		_, err := f.events.Create(ctx, adverseevent.Input{
			PeriodID:      p.ID,
			SectorID:      p.SectorID,
			EventDate:     contracts.NewDate(2024, time.January, day),
			EventType:     contracts.EventFall,
			QuantityCases: 1,
		})
		require.NoError(t, err)
	}
	_, err = f.notes.Create(ctx, notification.Input{
		PeriodID:             p.ID,
		SectorID:             p.SectorID,
		ClassificationText:   strPtr("Queda"),
		QuantityProfessional: 2,
	})
	require.NoError(t, err)

	report, err := f.engine.Panel(ctx, p.ID, f.sector.ID, contracts.DateRange{})
	require.NoError(t, err)
	require.NotNil(t, report.HandHygiene)
	require.NotNil(t, report.FallRisk)
	assert.Nil(t, report.Compliance)
	assert.True(t, dec("90").Equal(report.FallRisk.AssessmentPercentage))
	assert.Len(t, report.AdverseEvents, 2)
	assert.Len(t, report.Notifications, 1)

	narrowed, err := f.engine.Panel(ctx, p.ID, f.sector.ID, contracts.DateRange{
		From: contracts.NewDate(2024, time.January, 10),
		To:   contracts.NewDate(2024, time.January, 31),
	})
	require.NoError(t, err)
	require.Len(t, narrowed.AdverseEvents, 1)
	assert.Equal(t, 20, narrowed.AdverseEvents[0].EventDate.Day())
}

func TestRangeUsesMonthBounds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	for _, m := range []int{12, 1, 2, 3} {
		year := 2024
		if m == 12 {
			year = 2023
		}
		f.period(t, m, year)
	}

	reports, err := f.engine.Range(ctx, f.sector.ID,
		contracts.NewDate(2023, time.December, 31),
		contracts.NewDate(2024, time.February, 1))
	require.NoError(t, err)
	assert.Len(t, reports, 3)

	_, err = f.engine.Range(ctx, f.sector.ID,
		contracts.NewDate(2024, time.March, 1),
		contracts.NewDate(2024, time.January, 1))
	assert.True(t, errors.Is(err, contracts.ErrValidation))

	_, err = f.engine.Range(ctx, f.sector.ID, contracts.Date{}, contracts.NewDate(2024, time.January, 1))
	assert.True(t, errors.Is(err, contracts.ErrValidation))
}

func TestWindow(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name     string
		query    contracts.CumulativeQuery
		from, to string
		wantErr  bool
	}{
		{name: "monthly default", query: contracts.CumulativeQuery{Periodicity: contracts.PeriodicityMonthly}, from: "2024-05-01", to: "2024-05-31"},
		{name: "monthly february leap", query: contracts.CumulativeQuery{Periodicity: contracts.PeriodicityMonthly, Period: 2}, from: "2024-02-01", to: "2024-02-29"},
		{name: "quarterly default", query: contracts.CumulativeQuery{Periodicity: contracts.PeriodicityQuarterly}, from: "2024-04-01", to: "2024-06-30"},
		{name: "quarterly explicit", query: contracts.CumulativeQuery{Periodicity: contracts.PeriodicityQuarterly, Year: 2023, Period: 4}, from: "2023-10-01", to: "2023-12-31"},
		{name: "semestral default", query: contracts.CumulativeQuery{Periodicity: contracts.PeriodicitySemestral}, from: "2024-01-01", to: "2024-06-30"},
		{name: "semestral second", query: contracts.CumulativeQuery{Periodicity: contracts.PeriodicitySemestral, Period: 2}, from: "2024-07-01", to: "2024-12-31"},
		{name: "annual", query: contracts.CumulativeQuery{Periodicity: contracts.PeriodicityAnnual, Year: 2022}, from: "2022-01-01", to: "2022-12-31"},
		{name: "custom", query: contracts.CumulativeQuery{Periodicity: contracts.PeriodicityCustom, Range: contracts.DateRange{
			From: contracts.NewDate(2024, time.January, 15),
			To:   contracts.NewDate(2024, time.March, 2),
		}}, from: "2024-01-15", to: "2024-03-02"},
		{name: "custom without dates", query: contracts.CumulativeQuery{}, wantErr: true},
		{name: "quarter out of range", query: contracts.CumulativeQuery{Periodicity: contracts.PeriodicityQuarterly, Period: 5}, wantErr: true},
		{name: "semester out of range", query: contracts.CumulativeQuery{Periodicity: contracts.PeriodicitySemestral, Period: 3}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window, err := f.engine.Window(tt.query)
			if tt.wantErr {
				assert.True(t, errors.Is(err, contracts.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.from, window.From.String())
			assert.Equal(t, tt.to, window.To.String())
		})
	}
}

func TestCumulativeQuarter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	jan, feb, mar := f.period(t, 1, 2024), f.period(t, 2, 2024), f.period(t, 3, 2024)
	f.period(t, 4, 2024)

	_, err := f.indicators.HandHygiene.Create(ctx, &contracts.HandHygiene{IndicatorMeta: meta(jan), CompliancePercentage: dec("80")})
	require.NoError(t, err)
	_, err = f.indicators.HandHygiene.Create(ctx, &contracts.HandHygiene{IndicatorMeta: meta(feb), CompliancePercentage: dec("90")})
	require.NoError(t, err)
	_, err = f.indicators.HandHygiene.Create(ctx, &contracts.HandHygiene{IndicatorMeta: meta(mar), CompliancePercentage: dec("85.5")})
	require.NoError(t, err)

	report, err := f.engine.Cumulative(ctx, contracts.CumulativeQuery{
		SectorID:    f.sector.ID,
		Periodicity: contracts.PeriodicityQuarterly,
		Year:        2024,
		Period:      1,
	})
	require.NoError(t, err)
	require.NotNil(t, report.HandHygiene)
	assert.Equal(t, "85.17", report.HandHygiene.CompliancePercentage.StringFixed(2))
	assert.Nil(t, report.FallRisk)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	var out struct {
		HandHygiene map[string]any `json:"handHygieneAssessment"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, contracts.AggregatedID, out.HandHygiene["id"])
}

func TestCumulativeNoPeriods(t *testing.T) {
	f := setup(t)

	report, err := f.engine.Cumulative(context.Background(), contracts.CumulativeQuery{
		SectorID:    f.sector.ID,
		Periodicity: contracts.PeriodicityAnnual,
		Year:        2020,
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.EmptyPanel(), report)
}
