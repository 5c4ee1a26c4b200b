package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

type sectorRepo struct {
	pool *pgxpool.Pool
}

const sectorColumns = `id, name, code, active, created_at, updated_at`

func scanSector(row pgx.Row) (*contracts.Sector, error) {
	var s contracts.Sector
	if err := row.Scan(&s.ID, &s.Name, &s.Code, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sectorRepo) Create(ctx context.Context, s *contracts.Sector) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sectors (`+sectorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.Name, s.Code, s.Active, s.CreatedAt, s.UpdatedAt)
	if isUnique(err) {
		return contracts.Conflict("sector", "code "+s.Code+" already exists")
	}
	return translate(err, "sector", s.ID)
}

func (r *sectorRepo) Update(ctx context.Context, s *contracts.Sector) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sectors
		SET name = $2, code = $3, active = $4, updated_at = $5
		WHERE id = $1
	`, s.ID, s.Name, s.Code, s.Active, s.UpdatedAt)
	if isUnique(err) {
		return contracts.Conflict("sector", "code "+s.Code+" already exists")
	}
	if err != nil {
		return translate(err, "sector", s.ID)
	}
	return affected(tag, "sector", s.ID)
}

func (r *sectorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sectors WHERE id = $1`, id)
	if isForeignKey(err) {
		return contracts.Conflict("sector", "sector is referenced by periods")
	}
	if err != nil {
		return translate(err, "sector", id)
	}
	return affected(tag, "sector", id)
}

func (r *sectorRepo) Get(ctx context.Context, id uuid.UUID) (*contracts.Sector, error) {
	s, err := scanSector(r.pool.QueryRow(ctx, `SELECT `+sectorColumns+` FROM sectors WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "sector", id)
	}
	return s, nil
}

func (r *sectorRepo) List(ctx context.Context, activeOnly bool) ([]contracts.Sector, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sectorColumns+`
		FROM sectors
		WHERE active OR NOT $1
		ORDER BY name, id
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("query sectors: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.Sector, 0)
	for rows.Next() {
		s, err := scanSector(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sector: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sectors: %w", err)
	}
	return out, nil
}
