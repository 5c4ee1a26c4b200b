package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/database"
)

type periodRepo struct {
	db *database.DB
}

const periodColumns = `id, sector_id, month, year, status, created_at, updated_at`

func scanPeriod(row pgx.Row) (*contracts.Period, error) {
	var p contracts.Period
	var status string
	if err := row.Scan(&p.ID, &p.SectorID, &p.Month, &p.Year, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = contracts.PeriodStatus(status)
	return &p, nil
}

// Create locks the sector row so single-open checks and inserts of one sector serialize
func (r *periodRepo) Create(ctx context.Context, p *contracts.Period, singleOpen bool) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM sectors WHERE id = $1 FOR UPDATE`, p.SectorID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return contracts.NotFound("sector", p.SectorID)
		}
		if err != nil {
			return fmt.Errorf("lock sector: %w", err)
		}

		if singleOpen && p.Status == contracts.PeriodOpen {
			var open bool
			err := tx.QueryRow(ctx, `
				SELECT EXISTS (SELECT 1 FROM periods WHERE sector_id = $1 AND status = $2)
			`, p.SectorID, string(contracts.PeriodOpen)).Scan(&open)
			if err != nil {
				return fmt.Errorf("check open periods: %w", err)
			}
			if open {
				return contracts.Conflict("period", "sector already has an open period")
			}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO periods (`+periodColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.ID, p.SectorID, p.Month, p.Year, string(p.Status), p.CreatedAt, p.UpdatedAt)
		if isUnique(err) {
			return contracts.Conflict("period", "a period already exists for this sector, month and year")
		}
		return translate(err, "period", p.ID)
	})
}

func (r *periodRepo) Get(ctx context.Context, id uuid.UUID) (*contracts.Period, error) {
	p, err := scanPeriod(r.db.Pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "period", id)
	}
	return p, nil
}

func (r *periodRepo) List(ctx context.Context, filter contracts.PeriodFilter) ([]contracts.Period, error) {
	var c conditions
	if filter.SectorID != uuid.Nil {
		c.add("sector_id = $%d", filter.SectorID)
	}
	if filter.Status != "" {
		c.add("status = $%d", string(filter.Status))
	}
	if filter.Year != 0 {
		c.add("year = $%d", filter.Year)
	}

	query := `SELECT ` + periodColumns + ` FROM periods` + c.clause() + ` ORDER BY year, month, id`
	rows, err := r.db.Pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.Period, 0)
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return out, nil
}

// SetStatus takes the same sector lock as Create when reopening under singleOpen
func (r *periodRepo) SetStatus(ctx context.Context, id uuid.UUID, status contracts.PeriodStatus, singleOpen bool) (*contracts.Period, error) {
	var p *contracts.Period
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if singleOpen && status == contracts.PeriodOpen {
			var sectorID uuid.UUID
			err := tx.QueryRow(ctx, `
				SELECT s.id FROM sectors s JOIN periods p ON p.sector_id = s.id
				WHERE p.id = $1 FOR UPDATE OF s
			`, id).Scan(&sectorID)
			if err != nil {
				return translate(err, "period", id)
			}

			var open bool
			err = tx.QueryRow(ctx, `
				SELECT EXISTS (SELECT 1 FROM periods WHERE sector_id = $1 AND status = $2 AND id <> $3)
			`, sectorID, string(contracts.PeriodOpen), id).Scan(&open)
			if err != nil {
				return fmt.Errorf("check open periods: %w", err)
			}
			if open {
				return contracts.Conflict("period", "sector already has an open period")
			}
		}

		var err error
		p, err = scanPeriod(tx.QueryRow(ctx, `
			UPDATE periods
			SET status = $2, updated_at = now()
			WHERE id = $1
			RETURNING `+periodColumns,
			id, string(status)))
		if err != nil {
			return translate(err, "period", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *periodRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM periods WHERE id = $1`, id)
	if isForeignKey(err) {
		return contracts.Conflict("period", "period is referenced by clinical records")
	}
	if err != nil {
		return translate(err, "period", id)
	}
	return affected(tag, "period", id)
}
