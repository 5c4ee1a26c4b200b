package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

// XLSXContentType is the media type of ExportXLSX output
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names in workbook order
const (
	SheetCompliance           = "Compliance"
	SheetHandHygiene          = "Hand Hygiene"
	SheetFallRisk             = "Fall Risk"
	SheetPressureInjury       = "Pressure Injury"
	SheetSelfNotification     = "Self Notification"
	SheetMetaCompliance       = "Meta Compliance"
	SheetMedicationCompliance = "Medication Compliance"
	SheetAdverseEvents        = "Adverse Events"
	SheetNotifications        = "Notifications"
)

var fieldHeader = []string{"Field", "Value"}

type sheet struct {
	name   string
	header []string
	widths []float64
	rows   [][]interface{}
}

// ExportXLSX renders a panel report as a workbook with one sheet per section.
// Missing indicators produce a sheet with the header only.
func ExportXLSX(ctx context.Context, r contracts.PanelReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, s := range panelSheets(r) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return nil, fmt.Errorf("write sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	for col, title := range s.header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.name, cell, title); err != nil {
			return err
		}
		if err := f.SetCellStyle(s.name, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, col, col, w); err != nil {
			return err
		}
	}

	for r, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func panelSheets(r contracts.PanelReport) []sheet {
	return []sheet{
		fieldSheet(SheetCompliance, complianceRows(r.Compliance)),
		fieldSheet(SheetHandHygiene, handHygieneRows(r.HandHygiene)),
		fieldSheet(SheetFallRisk, fallRiskRows(r.FallRisk)),
		fieldSheet(SheetPressureInjury, pressureInjuryRows(r.PressureInjury)),
		fieldSheet(SheetSelfNotification, selfNotificationRows(r.SelfNotification)),
		fieldSheet(SheetMetaCompliance, metaComplianceRows(r.MetaCompliance)),
		fieldSheet(SheetMedicationCompliance, medicationComplianceRows(r.MedicationCompliance)),
		adverseEventSheet(r.AdverseEvents),
		notificationSheet(r.Notifications),
	}
}

func fieldSheet(name string, rows [][]interface{}) sheet {
	return sheet{name: name, header: fieldHeader, widths: []float64{36, 40}, rows: rows}
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func metaRows(m contracts.IndicatorMeta) [][]interface{} {
	id := contracts.AggregatedID
	if !m.Aggregated {
		id = m.ID.String()
	}
	return [][]interface{}{
		{"id", id},
		{"sectorId", m.SectorID.String()},
	}
}

func tierRows(t contracts.RiskTiers) [][]interface{} {
	return [][]interface{}{
		{"totalPatients", t.TotalPatients},
		{"assessedOnAdmission", t.AssessedOnAdmission},
		{"assessmentPercentage", num(t.AssessmentPercentage)},
		{"highRisk", t.HighRisk},
		{"highRiskPercentage", num(t.HighRiskPercentage)},
		{"mediumRisk", t.MediumRisk},
		{"mediumRiskPercentage", num(t.MediumRiskPercentage)},
		{"lowRisk", t.LowRisk},
		{"lowRiskPercentage", num(t.LowRiskPercentage)},
		{"notAssessed", t.NotAssessed},
		{"notAssessedPercentage", num(t.NotAssessedPercentage)},
	}
}

func complianceRows(c *contracts.Compliance) [][]interface{} {
	if c == nil {
		return nil
	}
	observations := ""
	if c.Observations != nil {
		observations = *c.Observations
	}
	return append(metaRows(c.IndicatorMeta),
		[]interface{}{"completeWristband", num(c.CompleteWristband)},
		[]interface{}{"patientCommunication", num(c.PatientCommunication)},
		[]interface{}{"medicationIdentified", num(c.MedicationIdentified)},
		[]interface{}{"handHygieneAdherence", num(c.HandHygieneAdherence)},
		[]interface{}{"fallRiskAssessment", num(c.FallRiskAssessment)},
		[]interface{}{"pressureInjuryRiskAssessment", num(c.PressureInjuryRiskAssessment)},
		[]interface{}{"totalPatients", c.TotalPatients},
		[]interface{}{"observations", observations},
	)
}

func handHygieneRows(h *contracts.HandHygiene) [][]interface{} {
	if h == nil {
		return nil
	}
	return append(metaRows(h.IndicatorMeta),
		[]interface{}{"compliancePercentage", num(h.CompliancePercentage)},
	)
}

func fallRiskRows(f *contracts.FallRisk) [][]interface{} {
	if f == nil {
		return nil
	}
	return append(metaRows(f.IndicatorMeta), tierRows(f.RiskTiers)...)
}

func pressureInjuryRows(p *contracts.PressureInjury) [][]interface{} {
	if p == nil {
		return nil
	}
	rows := append(metaRows(p.IndicatorMeta), tierRows(p.RiskTiers)...)
	return append(rows,
		[]interface{}{"veryHigh", p.VeryHigh},
		[]interface{}{"veryHighPercentage", num(p.VeryHighPercentage)},
	)
}

func selfNotificationRows(s *contracts.SelfNotification) [][]interface{} {
	if s == nil {
		return nil
	}
	return append(metaRows(s.IndicatorMeta),
		[]interface{}{"quantity", s.Quantity},
		[]interface{}{"percentage", num(s.Percentage)},
	)
}

func metaComplianceRows(m *contracts.MetaCompliance) [][]interface{} {
	if m == nil {
		return nil
	}
	return append(metaRows(m.IndicatorMeta),
		[]interface{}{"goalValue", num(m.GoalValue)},
		[]interface{}{"percentage", num(m.Percentage)},
	)
}

func medicationComplianceRows(m *contracts.MedicationCompliance) [][]interface{} {
	if m == nil {
		return nil
	}
	return append(metaRows(m.IndicatorMeta),
		[]interface{}{"percentage", num(m.Percentage)},
	)
}

func adverseEventSheet(events []contracts.AdverseEvent) sheet {
	s := sheet{
		name:   SheetAdverseEvents,
		header: []string{"Event Date", "Event Type", "Description", "Cases", "Notifications", "Created By", "Job Title"},
		widths: []float64{14, 28, 48, 10, 14, 28, 22},
	}
	for _, e := range events {
		s.rows = append(s.rows, []interface{}{
			e.EventDate.String(),
			string(e.EventType),
			e.Description,
			e.QuantityCases,
			e.QuantityNotifications,
			e.CreatedByName,
			string(e.CreatedByJobTitle),
		})
	}
	return s
}

func notificationSheet(notes []contracts.NotificationView) sheet {
	s := sheet{
		name: SheetNotifications,
		header: []string{
			"Created At", "Classification", "Professional Category", "Description",
			"Qty Classification", "Qty Category", "Qty Professional", "Quantity",
		},
		widths: []float64{20, 28, 28, 48, 18, 14, 18, 10},
	}
	for _, n := range notes {
		s.rows = append(s.rows, []interface{}{
			n.CreatedAt.UTC().Format(time.RFC3339),
			lookupName(n.Classification, n.ClassificationText),
			lookupName(n.ProfessionalCategory, n.ProfessionalCategoryText),
			n.Description,
			n.QuantityClassification,
			n.QuantityCategory,
			n.QuantityProfessional,
			n.Quantity,
		})
	}
	return s
}

func lookupName(l *contracts.Lookup, text *string) string {
	switch {
	case l != nil:
		return l.Name
	case text != nil:
		return *text
	}
	return ""
}
