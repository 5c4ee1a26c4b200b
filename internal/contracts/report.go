package contracts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PanelReport is the consolidated view of one sector over one or many periods
type PanelReport struct {
	Compliance           *Compliance           `json:"complianceIndicator"`
	HandHygiene          *HandHygiene          `json:"handHygieneAssessment"`
	FallRisk             *FallRisk             `json:"fallRiskAssessment"`
	PressureInjury       *PressureInjury       `json:"pressureInjuryRiskAssessment"`
	SelfNotification     *SelfNotification     `json:"selfNotification"`
	MetaCompliance       *MetaCompliance       `json:"metaCompliance"`
	MedicationCompliance *MedicationCompliance `json:"medicationCompliance"`
	AdverseEvents        []AdverseEvent        `json:"adverseEvents"`
	Notifications        []NotificationView    `json:"notifications"`
}

// EmptyPanel returns a report with no indicators and empty lists
func EmptyPanel() PanelReport {
	return PanelReport{
		AdverseEvents: []AdverseEvent{},
		Notifications: []NotificationView{},
	}
}

// DateRange is an inclusive calendar range. Zero bounds are open.
type DateRange struct {
	From Date
	To   Date
}

// Validate rejects a range that ends before it starts
func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From.Time) {
		return Invalid("endDate", "must not be before startDate")
	}
	return nil
}

// IsZero reports an unbounded range
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Periodicity selects the window of a cumulative report
type Periodicity string

const (
	PeriodicityCustom    Periodicity = "CUSTOM"
	PeriodicityMonthly   Periodicity = "MONTHLY"
	PeriodicityQuarterly Periodicity = "QUARTERLY"
	PeriodicitySemestral Periodicity = "SEMESTRAL"
	PeriodicityAnnual    Periodicity = "ANNUAL"
)

// ParsePeriodicity defaults to CUSTOM for an empty value
func ParsePeriodicity(s string) (Periodicity, error) {
	if s == "" {
		return PeriodicityCustom, nil
	}
	switch p := Periodicity(upper(s)); p {
	case PeriodicityCustom, PeriodicityMonthly, PeriodicityQuarterly, PeriodicitySemestral, PeriodicityAnnual:
		return p, nil
	}
	return "", Invalid("periodicity", fmt.Sprintf("unknown periodicity %q", s))
}

// CumulativeQuery selects the periods merged by a cumulative report.
// Year and Period default to the current ones when zero.
type CumulativeQuery struct {
	SectorID    uuid.UUID
	Periodicity Periodicity
	Year        int
	Period      int
	Range       DateRange
}

// SectorWatcher is told about every committed write to a sector's data
type SectorWatcher interface {
	SectorChanged(ctx context.Context, sectorID uuid.UUID)
}

// NopWatcher ignores sector changes
type NopWatcher struct{}

func (NopWatcher) SectorChanged(context.Context, uuid.UUID) {}
