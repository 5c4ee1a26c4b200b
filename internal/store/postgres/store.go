// Package postgres is the pgx-backed entity store.
// Uniqueness and referential rules are enforced by the schema's indexes and foreign keys.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/pkg/database"
)

//go:embed schema.sql
var schema string

// SQLSTATE codes mapped onto the contracts errors
const (
	uniqueViolation        = "23505"
	foreignKeyViolation    = "23503"
	numericValueOutOfRange = "22003"
)

// Store implements every repository over one connection pool
// ⭐ SSOT: SQL for the entity store lives in this package only
type Store struct {
	db   *database.DB
	pool *pgxpool.Pool
}

// New creates a store over an open database
func New(db *database.DB) *Store {
	return &Store{db: db, pool: db.Pool}
}

// Migrate applies the embedded schema. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// HealthCheck pings the database
func (s *Store) HealthCheck(ctx context.Context) error {
	_, err := s.db.HealthCheck(ctx)
	return err
}

// Repositories returns the store as a repository bundle
func (s *Store) Repositories() *contracts.Repositories {
	return &contracts.Repositories{
		Sectors:                &sectorRepo{pool: s.pool},
		Periods:                &periodRepo{db: s.db},
		Classifications:        &lookupRepo{pool: s.pool, table: "notification_classifications", resource: string(contracts.LookupClassification)},
		ProfessionalCategories: &lookupRepo{pool: s.pool, table: "professional_categories", resource: string(contracts.LookupProfessionalCategory)},
		Notifications:          &notificationRepo{pool: s.pool},
		AdverseEvents:          &eventRepo{pool: s.pool},
		Indicators:             indicatorRepositories(s.pool),
		Users:                  &userRepo{pool: s.pool},
		Health:                 s,
	}
}

// translate maps driver errors onto the contracts error taxonomy
func translate(err error, resource string, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.NotFound(resource, id)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return contracts.Conflict(resource, fmt.Sprintf("duplicate value violates %s", pgErr.ConstraintName))
		case foreignKeyViolation:
			return contracts.Conflict(resource, fmt.Sprintf("reference rule %s violated", pgErr.ConstraintName))
		case numericValueOutOfRange:
			return contracts.Invalid(pgErr.ColumnName, "is out of range")
		}
	}
	return fmt.Errorf("%s %s: %w", resource, id, err)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUnique(err error) bool { return hasCode(err, uniqueViolation) }

func isForeignKey(err error) bool { return hasCode(err, foreignKeyViolation) }

// affected turns an UPDATE or DELETE that touched no row into a NotFoundError
func affected(tag pgconn.CommandTag, resource string, id uuid.UUID) error {
	if tag.RowsAffected() == 0 {
		return contracts.NotFound(resource, id)
	}
	return nil
}

// nullID stores uuid.Nil as NULL
func nullID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func fromNullID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

// conditions accumulates numbered WHERE clauses and their arguments
type conditions struct {
	where []string
	args  []any
}

// add appends cond, whose single %d is replaced by the argument's position
func (c *conditions) add(cond string, v any) {
	c.args = append(c.args, v)
	c.where = append(c.where, fmt.Sprintf(cond, len(c.args)))
}

func (c *conditions) clause() string {
	if len(c.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.where, " AND ")
}
