package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

func TestExportXLSX(t *testing.T) {
	report := contracts.EmptyPanel()
	report.HandHygiene = &contracts.HandHygiene{
		IndicatorMeta:        contracts.IndicatorMeta{ID: uuid.New()},
		CompliancePercentage: dec("87.5"),
	}
	report.AdverseEvents = []contracts.AdverseEvent{{
		EventDate:     contracts.NewDate(2024, time.January, 5),
		EventType:     contracts.EventFall,
		Description:   "Queda do leito",
		QuantityCases: 2,
	}}
	report.Notifications = []contracts.NotificationView{{
		ClassificationText:   strPtr("Queda"),
		QuantityProfessional: 3,
		CreatedAt:            time.Date(2024, time.January, 6, 9, 0, 0, 0, time.UTC),
	}}

	data, err := ExportXLSX(context.Background(), report)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetCompliance, SheetHandHygiene, SheetFallRisk, SheetPressureInjury, SheetSelfNotification,
		SheetMetaCompliance, SheetMedicationCompliance, SheetAdverseEvents, SheetNotifications,
	}, f.GetSheetList())

	rows, err := f.GetRows(SheetHandHygiene)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Field", "Value"}, rows[0])
	assert.Equal(t, "compliancePercentage", rows[3][0])
	assert.Equal(t, "87.5", rows[3][1])

	rows, err = f.GetRows(SheetCompliance)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = f.GetRows(SheetAdverseEvents)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-01-05", "FALL", "Queda do leito", "2", "0"}, rows[1][:5])

	rows, err = f.GetRows(SheetNotifications)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Queda", rows[1][1])
}

func TestExportXLSXHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExportXLSX(ctx, contracts.EmptyPanel())
	assert.ErrorIs(t, err, context.Canceled)
}
