package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

type eventRepo struct {
	pool *pgxpool.Pool
}

const eventColumns = `id, period_id, sector_id, event_date, event_type, description,
	quantity_cases, quantity_notifications,
	created_by, created_by_name, created_by_job_title, created_at, updated_at`

func scanEvent(row pgx.Row) (*contracts.AdverseEvent, error) {
	var (
		e         contracts.AdverseEvent
		eventDate time.Time
		eventType string
		jobTitle  string
		createdBy *uuid.UUID
	)
	err := row.Scan(
		&e.ID, &e.PeriodID, &e.SectorID, &eventDate, &eventType, &e.Description,
		&e.QuantityCases, &e.QuantityNotifications,
		&createdBy, &e.CreatedByName, &jobTitle, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.EventDate = contracts.NewDate(eventDate.Year(), eventDate.Month(), eventDate.Day())
	e.EventType = contracts.EventType(eventType)
	e.CreatedByJobTitle = contracts.JobTitle(jobTitle)
	e.CreatedBy = fromNullID(createdBy)
	return &e, nil
}

func (r *eventRepo) Create(ctx context.Context, e *contracts.AdverseEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO adverse_events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		e.ID, e.PeriodID, e.SectorID, e.EventDate.Time, string(e.EventType), e.Description,
		e.QuantityCases, e.QuantityNotifications,
		nullID(e.CreatedBy), e.CreatedByName, string(e.CreatedByJobTitle), e.CreatedAt, e.UpdatedAt,
	)
	return translate(err, "adverse event", e.ID)
}

func (r *eventRepo) Update(ctx context.Context, e *contracts.AdverseEvent) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE adverse_events SET
			event_date = $2, event_type = $3, description = $4,
			quantity_cases = $5, quantity_notifications = $6, updated_at = $7
		WHERE id = $1
	`, e.ID, e.EventDate.Time, string(e.EventType), e.Description,
		e.QuantityCases, e.QuantityNotifications, e.UpdatedAt)
	if err != nil {
		return translate(err, "adverse event", e.ID)
	}
	return affected(tag, "adverse event", e.ID)
}

func (r *eventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM adverse_events WHERE id = $1`, id)
	if err != nil {
		return translate(err, "adverse event", id)
	}
	return affected(tag, "adverse event", id)
}

func (r *eventRepo) Get(ctx context.Context, id uuid.UUID) (*contracts.AdverseEvent, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM adverse_events WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "adverse event", id)
	}
	return e, nil
}

func (r *eventRepo) List(ctx context.Context, filter contracts.AdverseEventFilter) ([]contracts.AdverseEvent, error) {
	var c conditions
	if filter.PeriodID != uuid.Nil {
		c.add("period_id = $%d", filter.PeriodID)
	}
	if filter.SectorID != uuid.Nil {
		c.add("sector_id = $%d", filter.SectorID)
	}
	if filter.EventType != "" {
		c.add("event_type = $%d", string(filter.EventType))
	}
	if filter.CreatedBy != uuid.Nil {
		c.add("created_by = $%d", filter.CreatedBy)
	}
	if !filter.From.IsZero() {
		c.add("event_date >= $%d", filter.From.Time)
	}
	if !filter.To.IsZero() {
		c.add("event_date <= $%d", filter.To.Time)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM adverse_events`+c.clause()+` ORDER BY event_date DESC, created_at DESC`,
		c.args...)
	if err != nil {
		return nil, fmt.Errorf("query adverse events: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.AdverseEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan adverse event: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate adverse events: %w", err)
	}
	return out, nil
}
