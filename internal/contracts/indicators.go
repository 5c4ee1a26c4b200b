package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zezinho10632/DouglasApi/internal/metrics"
)

// IndicatorKind names an indicator record type. The value is also its URL segment.
type IndicatorKind string

const (
	KindCompliance           IndicatorKind = "compliance"
	KindHandHygiene          IndicatorKind = "hand-hygiene"
	KindFallRisk             IndicatorKind = "fall-risk"
	KindPressureInjury       IndicatorKind = "pressure-injury"
	KindMetaCompliance       IndicatorKind = "meta-compliance"
	KindMedicationCompliance IndicatorKind = "medication-compliance"
	KindSelfNotification     IndicatorKind = "self-notification"
)

// IndicatorKinds lists every kind in report order
var IndicatorKinds = []IndicatorKind{
	KindCompliance,
	KindHandHygiene,
	KindFallRisk,
	KindPressureInjury,
	KindSelfNotification,
	KindMetaCompliance,
	KindMedicationCompliance,
}

// Resource returns the name used in errors and audit entries
func (k IndicatorKind) Resource() string {
	return strings.ReplaceAll(string(k), "-", " ") + " indicator"
}

// AggregatedID is the id reported for indicators merged across periods
const AggregatedID = "aggregated"

// IndicatorMeta holds the fields shared by every indicator kind
type IndicatorMeta struct {
	ID        uuid.UUID `json:"id"`
	PeriodID  uuid.UUID `json:"periodId"`
	SectorID  uuid.UUID `json:"sectorId"`
	CreatedBy uuid.UUID `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Aggregated marks a record merged from several periods
	Aggregated bool `json:"-"`
}

// Meta exposes the shared fields to generic code
func (m *IndicatorMeta) Meta() *IndicatorMeta {
	return m
}

// Indicator is implemented by every indicator kind.
// ⭐ SSOT: Derive is the only place derived percentages are computed
type Indicator interface {
	Meta() *IndicatorMeta
	Kind() IndicatorKind
	// Validate rejects negative counts and percentages outside [0,100]
	Validate() error
	// Derive recomputes every derived field from the raw fields
	Derive()
	// ZeroDenominator reports a derivation against a zero total
	ZeroDenominator() bool
}

// MaxCount is the largest count a record may hold
const MaxCount = math.MaxInt32

// maxGoal bounds goalValue to twelve digits with two decimals
var maxGoal = decimal.New(1, 10)

func checkCount(field string, v int) error {
	if v < 0 {
		return Invalid(field, "must not be negative")
	}
	if v > MaxCount {
		return Invalid(field, fmt.Sprintf("must not exceed %d", MaxCount))
	}
	return nil
}

func checkPercent(field string, d decimal.Decimal) error {
	if !metrics.InPercentRange(d) {
		return Invalid(field, "must be between 0 and 100")
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// marshalIndicator encodes v. Aggregated records report AggregatedID as id and
// periodId and have no creator.
func marshalIndicator(m IndicatorMeta, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || !m.Aggregated {
		return data, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("rewrite aggregated id: %w", err)
	}
	aggregated := json.RawMessage(`"` + AggregatedID + `"`)
	fields["id"] = aggregated
	fields["periodId"] = aggregated
	fields["createdBy"] = json.RawMessage("null")
	return json.Marshal(fields)
}

// Compliance holds the six protocol adherence percentages of a period
type Compliance struct {
	IndicatorMeta
	CompleteWristband            decimal.Decimal `json:"completeWristband"`
	PatientCommunication         decimal.Decimal `json:"patientCommunication"`
	MedicationIdentified         decimal.Decimal `json:"medicationIdentified"`
	HandHygieneAdherence         decimal.Decimal `json:"handHygieneAdherence"`
	FallRiskAssessment           decimal.Decimal `json:"fallRiskAssessment"`
	PressureInjuryRiskAssessment decimal.Decimal `json:"pressureInjuryRiskAssessment"`
	TotalPatients                int             `json:"totalPatients"`
	Observations                 *string         `json:"observations"`
}

func (c *Compliance) Kind() IndicatorKind { return KindCompliance }

func (c *Compliance) Validate() error {
	return firstError(
		checkPercent("completeWristband", c.CompleteWristband),
		checkPercent("patientCommunication", c.PatientCommunication),
		checkPercent("medicationIdentified", c.MedicationIdentified),
		checkPercent("handHygieneAdherence", c.HandHygieneAdherence),
		checkPercent("fallRiskAssessment", c.FallRiskAssessment),
		checkPercent("pressureInjuryRiskAssessment", c.PressureInjuryRiskAssessment),
		checkCount("totalPatients", c.TotalPatients),
	)
}

// Derive normalizes the percentages to two places and drops blank observations
func (c *Compliance) Derive() {
	for _, p := range c.percentages() {
		*p = metrics.Round(*p)
	}
	if c.Observations != nil && strings.TrimSpace(*c.Observations) == "" {
		c.Observations = nil
	}
}

func (c *Compliance) ZeroDenominator() bool { return false }

func (c *Compliance) percentages() []*decimal.Decimal {
	return []*decimal.Decimal{
		&c.CompleteWristband,
		&c.PatientCommunication,
		&c.MedicationIdentified,
		&c.HandHygieneAdherence,
		&c.FallRiskAssessment,
		&c.PressureInjuryRiskAssessment,
	}
}

func (c Compliance) MarshalJSON() ([]byte, error) {
	type plain Compliance
	return marshalIndicator(c.IndicatorMeta, plain(c))
}

// HandHygiene is the hand hygiene compliance of a period
type HandHygiene struct {
	IndicatorMeta
	CompliancePercentage decimal.Decimal `json:"compliancePercentage"`
}

func (h *HandHygiene) Kind() IndicatorKind { return KindHandHygiene }

func (h *HandHygiene) Validate() error {
	return checkPercent("compliancePercentage", h.CompliancePercentage)
}

func (h *HandHygiene) Derive() {
	h.CompliancePercentage = metrics.Round(h.CompliancePercentage)
}

func (h *HandHygiene) ZeroDenominator() bool { return false }

func (h HandHygiene) MarshalJSON() ([]byte, error) {
	type plain HandHygiene
	return marshalIndicator(h.IndicatorMeta, plain(h))
}

// RiskTiers holds patient counts per risk tier and their derived percentages.
// Shared by FallRisk and PressureInjury.
type RiskTiers struct {
	TotalPatients       int `json:"totalPatients"`
	AssessedOnAdmission int `json:"assessedOnAdmission"`
	HighRisk            int `json:"highRisk"`
	MediumRisk          int `json:"mediumRisk"`
	LowRisk             int `json:"lowRisk"`
	NotAssessed         int `json:"notAssessed"`

	AssessmentPercentage  decimal.Decimal `json:"assessmentPercentage"`
	HighRiskPercentage    decimal.Decimal `json:"highRiskPercentage"`
	MediumRiskPercentage  decimal.Decimal `json:"mediumRiskPercentage"`
	LowRiskPercentage     decimal.Decimal `json:"lowRiskPercentage"`
	NotAssessedPercentage decimal.Decimal `json:"notAssessedPercentage"`
}

// ValidateCounts rejects negative counts. Tiers are not checked against the total.
func (t *RiskTiers) ValidateCounts() error {
	return firstError(
		checkCount("totalPatients", t.TotalPatients),
		checkCount("assessedOnAdmission", t.AssessedOnAdmission),
		checkCount("highRisk", t.HighRisk),
		checkCount("mediumRisk", t.MediumRisk),
		checkCount("lowRisk", t.LowRisk),
		checkCount("notAssessed", t.NotAssessed),
	)
}

// DeriveTiers recomputes every tier percentage against TotalPatients
func (t *RiskTiers) DeriveTiers() {
	t.AssessmentPercentage = metrics.Percentage(t.AssessedOnAdmission, t.TotalPatients)
	t.HighRiskPercentage = metrics.Percentage(t.HighRisk, t.TotalPatients)
	t.MediumRiskPercentage = metrics.Percentage(t.MediumRisk, t.TotalPatients)
	t.LowRiskPercentage = metrics.Percentage(t.LowRisk, t.TotalPatients)
	t.NotAssessedPercentage = metrics.Percentage(t.NotAssessed, t.TotalPatients)
}

// AddCounts sums the counts of o into t. Percentages are left for DeriveTiers.
func (t *RiskTiers) AddCounts(o RiskTiers) {
	t.TotalPatients += o.TotalPatients
	t.AssessedOnAdmission += o.AssessedOnAdmission
	t.HighRisk += o.HighRisk
	t.MediumRisk += o.MediumRisk
	t.LowRisk += o.LowRisk
	t.NotAssessed += o.NotAssessed
}

// ZeroDenominator reports an empty patient total
func (t *RiskTiers) ZeroDenominator() bool {
	return t.TotalPatients == 0
}

// FallRisk is the fall risk assessment of a period
type FallRisk struct {
	IndicatorMeta
	RiskTiers
}

func (f *FallRisk) Kind() IndicatorKind { return KindFallRisk }

func (f *FallRisk) Validate() error { return f.ValidateCounts() }

func (f *FallRisk) Derive() { f.DeriveTiers() }

func (f FallRisk) MarshalJSON() ([]byte, error) {
	type plain FallRisk
	return marshalIndicator(f.IndicatorMeta, plain(f))
}

// PressureInjury is the pressure injury risk assessment of a period.
// It adds a very high tier to the shared risk tiers.
type PressureInjury struct {
	IndicatorMeta
	RiskTiers
	VeryHigh           int             `json:"veryHigh"`
	VeryHighPercentage decimal.Decimal `json:"veryHighPercentage"`
}

func (p *PressureInjury) Kind() IndicatorKind { return KindPressureInjury }

func (p *PressureInjury) Validate() error {
	return firstError(
		p.ValidateCounts(),
		checkCount("veryHigh", p.VeryHigh),
	)
}

func (p *PressureInjury) Derive() {
	p.DeriveTiers()
	p.VeryHighPercentage = metrics.Percentage(p.VeryHigh, p.TotalPatients)
}

func (p PressureInjury) MarshalJSON() ([]byte, error) {
	type plain PressureInjury
	return marshalIndicator(p.IndicatorMeta, plain(p))
}

// MetaCompliance compares the achieved percentage with a goal
type MetaCompliance struct {
	IndicatorMeta
	GoalValue  decimal.Decimal `json:"goalValue"`
	Percentage decimal.Decimal `json:"percentage"`
}

func (m *MetaCompliance) Kind() IndicatorKind { return KindMetaCompliance }

func (m *MetaCompliance) Validate() error {
	if m.GoalValue.IsNegative() {
		return Invalid("goalValue", "must not be negative")
	}
	if metrics.Round(m.GoalValue).GreaterThanOrEqual(maxGoal) {
		return Invalid("goalValue", "must be less than 10000000000")
	}
	return checkPercent("percentage", m.Percentage)
}

func (m *MetaCompliance) Derive() {
	m.GoalValue = metrics.Round(m.GoalValue)
	m.Percentage = metrics.Round(m.Percentage)
}

func (m *MetaCompliance) ZeroDenominator() bool { return false }

func (m MetaCompliance) MarshalJSON() ([]byte, error) {
	type plain MetaCompliance
	return marshalIndicator(m.IndicatorMeta, plain(m))
}

// MedicationCompliance is the safe medication compliance of a period
type MedicationCompliance struct {
	IndicatorMeta
	Percentage decimal.Decimal `json:"percentage"`
}

func (m *MedicationCompliance) Kind() IndicatorKind { return KindMedicationCompliance }

func (m *MedicationCompliance) Validate() error {
	return checkPercent("percentage", m.Percentage)
}

func (m *MedicationCompliance) Derive() {
	m.Percentage = metrics.Round(m.Percentage)
}

func (m *MedicationCompliance) ZeroDenominator() bool { return false }

func (m MedicationCompliance) MarshalJSON() ([]byte, error) {
	type plain MedicationCompliance
	return marshalIndicator(m.IndicatorMeta, plain(m))
}

// SelfNotification counts notifications filed by the reporting professional
type SelfNotification struct {
	IndicatorMeta
	Quantity   int             `json:"quantity"`
	Percentage decimal.Decimal `json:"percentage"`
}

func (s *SelfNotification) Kind() IndicatorKind { return KindSelfNotification }

func (s *SelfNotification) Validate() error {
	return firstError(
		checkCount("quantity", s.Quantity),
		checkPercent("percentage", s.Percentage),
	)
}

func (s *SelfNotification) Derive() {
	s.Percentage = metrics.Round(s.Percentage)
}

func (s *SelfNotification) ZeroDenominator() bool { return false }

func (s SelfNotification) MarshalJSON() ([]byte, error) {
	type plain SelfNotification
	return marshalIndicator(s.IndicatorMeta, plain(s))
}

var (
	_ Indicator = (*Compliance)(nil)
	_ Indicator = (*HandHygiene)(nil)
	_ Indicator = (*FallRisk)(nil)
	_ Indicator = (*PressureInjury)(nil)
	_ Indicator = (*MetaCompliance)(nil)
	_ Indicator = (*MedicationCompliance)(nil)
	_ Indicator = (*SelfNotification)(nil)
)
