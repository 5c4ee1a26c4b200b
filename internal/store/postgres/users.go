package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

type userRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `id, name, email, role, job_title, sector_id, active, created_at`

func scanUser(row pgx.Row) (*contracts.User, error) {
	var (
		u        contracts.User
		role     string
		jobTitle string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &jobTitle, &u.SectorID, &u.Active, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = contracts.Role(role)
	u.JobTitle = contracts.JobTitle(jobTitle)
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *contracts.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.Name, u.Email, string(u.Role), string(u.JobTitle), u.SectorID, u.Active, u.CreatedAt)
	if isUnique(err) {
		return contracts.Conflict("user", "email "+u.Email+" already exists")
	}
	return translate(err, "user", u.ID)
}

func (r *userRepo) Get(ctx context.Context, id uuid.UUID) (*contracts.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "user", id)
	}
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*contracts.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &contracts.NotFoundError{Resource: "user", ID: email}
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// likePattern escapes LIKE metacharacters of a substring match
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.TrimSpace(s))
	return "%" + s + "%"
}

func (r *userRepo) List(ctx context.Context, filter contracts.UserFilter) ([]contracts.User, error) {
	var c conditions
	if filter.Name != "" {
		c.add("name ILIKE $%d", likePattern(filter.Name))
	}
	if filter.Email != "" {
		c.add("email ILIKE $%d", likePattern(filter.Email))
	}
	if filter.Role != "" {
		c.add("role = $%d", string(filter.Role))
	}
	if filter.JobTitle != "" {
		c.add("job_title = $%d", string(filter.JobTitle))
	}

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users`+c.clause()+` ORDER BY name, id`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}
