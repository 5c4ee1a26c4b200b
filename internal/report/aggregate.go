package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/metrics"
)

// ObservationSeparator joins compliance observations of merged periods
const ObservationSeparator = "\n---\n"

// Merge folds per-period panels into one cumulative panel.
// Percentages reported directly are averaged; counted tiers are summed and re-derived.
func Merge(panels []contracts.PanelReport) contracts.PanelReport {
	out := contracts.EmptyPanel()
	if len(panels) == 0 {
		return out
	}

	var (
		compliance []*contracts.Compliance
		hygiene    []*contracts.HandHygiene
		fallRisk   []*contracts.FallRisk
		pressure   []*contracts.PressureInjury
		self       []*contracts.SelfNotification
		meta       []*contracts.MetaCompliance
		medication []*contracts.MedicationCompliance
	)
	for i := range panels {
		p := &panels[i]
		if p.Compliance != nil {
			compliance = append(compliance, p.Compliance)
		}
		if p.HandHygiene != nil {
			hygiene = append(hygiene, p.HandHygiene)
		}
		if p.FallRisk != nil {
			fallRisk = append(fallRisk, p.FallRisk)
		}
		if p.PressureInjury != nil {
			pressure = append(pressure, p.PressureInjury)
		}
		if p.SelfNotification != nil {
			self = append(self, p.SelfNotification)
		}
		if p.MetaCompliance != nil {
			meta = append(meta, p.MetaCompliance)
		}
		if p.MedicationCompliance != nil {
			medication = append(medication, p.MedicationCompliance)
		}
		out.AdverseEvents = append(out.AdverseEvents, p.AdverseEvents...)
		out.Notifications = append(out.Notifications, p.Notifications...)
	}

	now := time.Now().UTC()
	out.Compliance = mergeCompliance(compliance, now)
	out.HandHygiene = mergeHandHygiene(hygiene, now)
	out.FallRisk = mergeFallRisk(fallRisk, now)
	out.PressureInjury = mergePressureInjury(pressure, now)
	out.SelfNotification = mergeSelfNotification(self, now)
	out.MetaCompliance = mergeMetaCompliance(meta, now)
	out.MedicationCompliance = mergeMedicationCompliance(medication, now)

	sort.SliceStable(out.AdverseEvents, func(i, j int) bool {
		return out.AdverseEvents[i].EventDate.After(out.AdverseEvents[j].EventDate.Time)
	})
	sort.SliceStable(out.Notifications, func(i, j int) bool {
		return out.Notifications[i].CreatedAt.After(out.Notifications[j].CreatedAt)
	})
	return out
}

func aggregatedMeta(first contracts.IndicatorMeta, now time.Time) contracts.IndicatorMeta {
	return contracts.IndicatorMeta{
		SectorID:   first.SectorID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Aggregated: true,
	}
}

// averageOf maps every record to a value and averages the values
func averageOf[T any](list []*T, value func(*T) decimal.Decimal) decimal.Decimal {
	values := make([]decimal.Decimal, len(list))
	for i, rec := range list {
		values[i] = value(rec)
	}
	return metrics.Average(values)
}

func mergeCompliance(list []*contracts.Compliance, now time.Time) *contracts.Compliance {
	if len(list) == 0 {
		return nil
	}

	out := &contracts.Compliance{IndicatorMeta: aggregatedMeta(list[0].IndicatorMeta, now)}
	out.CompleteWristband = averageOf(list, func(c *contracts.Compliance) decimal.Decimal { return c.CompleteWristband })
	out.PatientCommunication = averageOf(list, func(c *contracts.Compliance) decimal.Decimal { return c.PatientCommunication })
	out.MedicationIdentified = averageOf(list, func(c *contracts.Compliance) decimal.Decimal { return c.MedicationIdentified })
	out.HandHygieneAdherence = averageOf(list, func(c *contracts.Compliance) decimal.Decimal { return c.HandHygieneAdherence })
	out.FallRiskAssessment = averageOf(list, func(c *contracts.Compliance) decimal.Decimal { return c.FallRiskAssessment })
	out.PressureInjuryRiskAssessment = averageOf(list, func(c *contracts.Compliance) decimal.Decimal {
		return c.PressureInjuryRiskAssessment
	})

	var notes []string
	for _, c := range list {
		out.TotalPatients += c.TotalPatients
		if c.Observations != nil && strings.TrimSpace(*c.Observations) != "" {
			notes = append(notes, *c.Observations)
		}
	}
	if len(notes) > 0 {
		joined := strings.Join(notes, ObservationSeparator)
		out.Observations = &joined
	}
	return out
}

func mergeHandHygiene(list []*contracts.HandHygiene, now time.Time) *contracts.HandHygiene {
	if len(list) == 0 {
		return nil
	}
	return &contracts.HandHygiene{
		IndicatorMeta:        aggregatedMeta(list[0].IndicatorMeta, now),
		CompliancePercentage: averageOf(list, func(h *contracts.HandHygiene) decimal.Decimal { return h.CompliancePercentage }),
	}
}

func mergeFallRisk(list []*contracts.FallRisk, now time.Time) *contracts.FallRisk {
	if len(list) == 0 {
		return nil
	}
	out := &contracts.FallRisk{IndicatorMeta: aggregatedMeta(list[0].IndicatorMeta, now)}
	for _, f := range list {
		out.AddCounts(f.RiskTiers)
	}
	out.Derive()
	return out
}

func mergePressureInjury(list []*contracts.PressureInjury, now time.Time) *contracts.PressureInjury {
	if len(list) == 0 {
		return nil
	}
	out := &contracts.PressureInjury{IndicatorMeta: aggregatedMeta(list[0].IndicatorMeta, now)}
	for _, p := range list {
		out.AddCounts(p.RiskTiers)
		out.VeryHigh += p.VeryHigh
	}
	out.Derive()
	return out
}

func mergeSelfNotification(list []*contracts.SelfNotification, now time.Time) *contracts.SelfNotification {
	if len(list) == 0 {
		return nil
	}

	values := make([]decimal.Decimal, len(list))
	weights := make([]int, len(list))
	out := &contracts.SelfNotification{IndicatorMeta: aggregatedMeta(list[0].IndicatorMeta, now)}
	for i, s := range list {
		values[i] = s.Percentage
		weights[i] = s.Quantity
		out.Quantity += s.Quantity
	}
	out.Percentage = metrics.WeightedAverage(values, weights)
	return out
}

func mergeMetaCompliance(list []*contracts.MetaCompliance, now time.Time) *contracts.MetaCompliance {
	if len(list) == 0 {
		return nil
	}
	return &contracts.MetaCompliance{
		IndicatorMeta: aggregatedMeta(list[0].IndicatorMeta, now),
		GoalValue:     averageOf(list, func(m *contracts.MetaCompliance) decimal.Decimal { return m.GoalValue }),
		Percentage:    averageOf(list, func(m *contracts.MetaCompliance) decimal.Decimal { return m.Percentage }),
	}
}

func mergeMedicationCompliance(list []*contracts.MedicationCompliance, now time.Time) *contracts.MedicationCompliance {
	if len(list) == 0 {
		return nil
	}
	return &contracts.MedicationCompliance{
		IndicatorMeta: aggregatedMeta(list[0].IndicatorMeta, now),
		Percentage:    averageOf(list, func(m *contracts.MedicationCompliance) decimal.Decimal { return m.Percentage }),
	}
}
