package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

// lookupRepo serves one lookup table. Table names are fixed at construction.
type lookupRepo struct {
	pool     *pgxpool.Pool
	table    string
	resource string
}

func scanLookup(row pgx.Row) (*contracts.Lookup, error) {
	var l contracts.Lookup
	if err := row.Scan(&l.ID, &l.Name, &l.Active); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lookupRepo) Create(ctx context.Context, l *contracts.Lookup) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO `+r.table+` (id, name, active) VALUES ($1, $2, $3)`,
		l.ID, l.Name, l.Active)
	return translate(err, r.resource, l.ID)
}

func (r *lookupRepo) Update(ctx context.Context, l *contracts.Lookup) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE `+r.table+` SET name = $2, active = $3 WHERE id = $1`,
		l.ID, l.Name, l.Active)
	if err != nil {
		return translate(err, r.resource, l.ID)
	}
	return affected(tag, r.resource, l.ID)
}

func (r *lookupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	if isForeignKey(err) {
		return contracts.Conflict(r.resource, "referenced by notifications")
	}
	if err != nil {
		return translate(err, r.resource, id)
	}
	return affected(tag, r.resource, id)
}

func (r *lookupRepo) Get(ctx context.Context, id uuid.UUID) (*contracts.Lookup, error) {
	l, err := scanLookup(r.pool.QueryRow(ctx, `SELECT id, name, active FROM `+r.table+` WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, r.resource, id)
	}
	return l, nil
}

func (r *lookupRepo) List(ctx context.Context, activeOnly bool) ([]contracts.Lookup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, active
		FROM `+r.table+`
		WHERE active OR NOT $1
		ORDER BY name, id
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.table, err)
	}
	defer rows.Close()

	out := make([]contracts.Lookup, 0)
	for rows.Next() {
		l, err := scanLookup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.resource, err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.table, err)
	}
	return out, nil
}
