package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

var metaColumns = []string{"id", "period_id", "sector_id", "created_by", "created_at", "updated_at"}

// table maps one indicator kind onto its columns. args and dest list the
// kind's own fields in the order of columns.
type table[T any] struct {
	name    string
	columns []string
	args    func(*T) []any
	dest    func(*T) []any
}

// indicatorRepo stores one indicator kind. Raw and derived fields share a row.
type indicatorRepo[T any, P interface {
	*T
	contracts.Indicator
}] struct {
	pool     *pgxpool.Pool
	table    table[T]
	resource string

	selectSQL string
	insertSQL string
	updateSQL string
}

func newIndicatorRepo[T any, P interface {
	*T
	contracts.Indicator
}](pool *pgxpool.Pool, kind contracts.IndicatorKind, t table[T]) *indicatorRepo[T, P] {
	all := append(append([]string{}, metaColumns...), t.columns...)

	placeholders := make([]string, len(all))
	for i := range all {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	// $1 is the id, $2 updated_at, kind columns follow
	sets := []string{"updated_at = $2"}
	for i, col := range t.columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+3))
	}

	return &indicatorRepo[T, P]{
		pool:      pool,
		table:     t,
		resource:  kind.Resource(),
		selectSQL: `SELECT ` + strings.Join(all, ", ") + ` FROM ` + t.name,
		insertSQL: `INSERT INTO ` + t.name + ` (` + strings.Join(all, ", ") + `) VALUES (` + strings.Join(placeholders, ", ") + `)`,
		updateSQL: `UPDATE ` + t.name + ` SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`,
	}
}

func (r *indicatorRepo[T, P]) scan(row pgx.Row) (*T, error) {
	rec := new(T)
	m := P(rec).Meta()

	var createdBy *uuid.UUID
	dest := append([]any{&m.ID, &m.PeriodID, &m.SectorID, &createdBy, &m.CreatedAt, &m.UpdatedAt}, r.table.dest(rec)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.CreatedBy = fromNullID(createdBy)
	return rec, nil
}

func (r *indicatorRepo[T, P]) Create(ctx context.Context, rec *T) error {
	m := P(rec).Meta()
	args := append([]any{m.ID, m.PeriodID, m.SectorID, nullID(m.CreatedBy), m.CreatedAt, m.UpdatedAt}, r.table.args(rec)...)

	_, err := r.pool.Exec(ctx, r.insertSQL, args...)
	if isUnique(err) {
		return contracts.Conflict(r.resource, "a record already exists for this period")
	}
	if isForeignKey(err) {
		return contracts.Conflict(r.resource, "unknown period")
	}
	return translate(err, r.resource, m.ID)
}

func (r *indicatorRepo[T, P]) Update(ctx context.Context, rec *T) error {
	m := P(rec).Meta()
	args := append([]any{m.ID, m.UpdatedAt}, r.table.args(rec)...)

	tag, err := r.pool.Exec(ctx, r.updateSQL, args...)
	if err != nil {
		return translate(err, r.resource, m.ID)
	}
	return affected(tag, r.resource, m.ID)
}

func (r *indicatorRepo[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+r.table.name+` WHERE id = $1`, id)
	if err != nil {
		return translate(err, r.resource, id)
	}
	return affected(tag, r.resource, id)
}

func (r *indicatorRepo[T, P]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	rec, err := r.scan(r.pool.QueryRow(ctx, r.selectSQL+` WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, r.resource, id)
	}
	return rec, nil
}

func (r *indicatorRepo[T, P]) GetByPeriod(ctx context.Context, periodID uuid.UUID) (*T, error) {
	rec, err := r.scan(r.pool.QueryRow(ctx, r.selectSQL+` WHERE period_id = $1`, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &contracts.NotFoundError{Resource: r.resource}
		}
		return nil, fmt.Errorf("get %s by period: %w", r.resource, err)
	}
	return rec, nil
}

func (r *indicatorRepo[T, P]) ListBySector(ctx context.Context, sectorID uuid.UUID) ([]T, error) {
	rows, err := r.pool.Query(ctx, r.selectSQL+` WHERE sector_id = $1 ORDER BY created_at, id`, sectorID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table.name, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.resource, err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.table.name, err)
	}
	return out, nil
}

// numeric encodes a decimal as text, which postgres casts to NUMERIC exactly
func numeric(d decimal.Decimal) string {
	return d.String()
}

var tierColumns = []string{
	"total_patients", "assessed_on_admission", "high_risk", "medium_risk", "low_risk", "not_assessed",
	"assessment_percentage", "high_risk_percentage", "medium_risk_percentage", "low_risk_percentage", "not_assessed_percentage",
}

func tierArgs(t *contracts.RiskTiers) []any {
	return []any{
		t.TotalPatients, t.AssessedOnAdmission, t.HighRisk, t.MediumRisk, t.LowRisk, t.NotAssessed,
		numeric(t.AssessmentPercentage), numeric(t.HighRiskPercentage), numeric(t.MediumRiskPercentage),
		numeric(t.LowRiskPercentage), numeric(t.NotAssessedPercentage),
	}
}

func tierDest(t *contracts.RiskTiers) []any {
	return []any{
		&t.TotalPatients, &t.AssessedOnAdmission, &t.HighRisk, &t.MediumRisk, &t.LowRisk, &t.NotAssessed,
		&t.AssessmentPercentage, &t.HighRiskPercentage, &t.MediumRiskPercentage,
		&t.LowRiskPercentage, &t.NotAssessedPercentage,
	}
}

func indicatorRepositories(pool *pgxpool.Pool) contracts.IndicatorRepositories {
	return contracts.IndicatorRepositories{
		Compliance: newIndicatorRepo[contracts.Compliance](pool, contracts.KindCompliance, table[contracts.Compliance]{
			name: "compliance_indicators",
			columns: []string{
				"complete_wristband", "patient_communication", "medication_identified",
				"hand_hygiene_adherence", "fall_risk_assessment", "pressure_injury_risk_assessment",
				"total_patients", "observations",
			},
			args: func(c *contracts.Compliance) []any {
				return []any{
					numeric(c.CompleteWristband), numeric(c.PatientCommunication), numeric(c.MedicationIdentified),
					numeric(c.HandHygieneAdherence), numeric(c.FallRiskAssessment), numeric(c.PressureInjuryRiskAssessment),
					c.TotalPatients, c.Observations,
				}
			},
			dest: func(c *contracts.Compliance) []any {
				return []any{
					&c.CompleteWristband, &c.PatientCommunication, &c.MedicationIdentified,
					&c.HandHygieneAdherence, &c.FallRiskAssessment, &c.PressureInjuryRiskAssessment,
					&c.TotalPatients, &c.Observations,
				}
			},
		}),
		HandHygiene: newIndicatorRepo[contracts.HandHygiene](pool, contracts.KindHandHygiene, table[contracts.HandHygiene]{
			name:    "hand_hygiene_assessments",
			columns: []string{"compliance_percentage"},
			args:    func(h *contracts.HandHygiene) []any { return []any{numeric(h.CompliancePercentage)} },
			dest:    func(h *contracts.HandHygiene) []any { return []any{&h.CompliancePercentage} },
		}),
		FallRisk: newIndicatorRepo[contracts.FallRisk](pool, contracts.KindFallRisk, table[contracts.FallRisk]{
			name:    "fall_risk_assessments",
			columns: tierColumns,
			args:    func(f *contracts.FallRisk) []any { return tierArgs(&f.RiskTiers) },
			dest:    func(f *contracts.FallRisk) []any { return tierDest(&f.RiskTiers) },
		}),
		PressureInjury: newIndicatorRepo[contracts.PressureInjury](pool, contracts.KindPressureInjury, table[contracts.PressureInjury]{
			name:    "pressure_injury_risk_assessments",
			columns: append(append([]string{}, tierColumns...), "very_high", "very_high_percentage"),
			args: func(p *contracts.PressureInjury) []any {
				return append(tierArgs(&p.RiskTiers), p.VeryHigh, numeric(p.VeryHighPercentage))
			},
			dest: func(p *contracts.PressureInjury) []any {
				return append(tierDest(&p.RiskTiers), &p.VeryHigh, &p.VeryHighPercentage)
			},
		}),
		MetaCompliance: newIndicatorRepo[contracts.MetaCompliance](pool, contracts.KindMetaCompliance, table[contracts.MetaCompliance]{
			name:    "meta_compliance",
			columns: []string{"goal_value", "percentage"},
			args:    func(m *contracts.MetaCompliance) []any { return []any{numeric(m.GoalValue), numeric(m.Percentage)} },
			dest:    func(m *contracts.MetaCompliance) []any { return []any{&m.GoalValue, &m.Percentage} },
		}),
		MedicationCompliance: newIndicatorRepo[contracts.MedicationCompliance](pool, contracts.KindMedicationCompliance, table[contracts.MedicationCompliance]{
			name:    "medication_compliance",
			columns: []string{"percentage"},
			args:    func(m *contracts.MedicationCompliance) []any { return []any{numeric(m.Percentage)} },
			dest:    func(m *contracts.MedicationCompliance) []any { return []any{&m.Percentage} },
		}),
		SelfNotification: newIndicatorRepo[contracts.SelfNotification](pool, contracts.KindSelfNotification, table[contracts.SelfNotification]{
			name:    "self_notifications",
			columns: []string{"quantity", "percentage"},
			args:    func(s *contracts.SelfNotification) []any { return []any{s.Quantity, numeric(s.Percentage)} },
			dest:    func(s *contracts.SelfNotification) []any { return []any{&s.Quantity, &s.Percentage} },
		}),
	}
}
