package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

type notificationRepo struct {
	pool *pgxpool.Pool
}

const notificationColumns = `id, period_id, sector_id,
	classification_id, classification_text,
	professional_category_id, professional_category_text,
	description, quantity, quantity_classification, quantity_category, quantity_professional,
	created_by, created_at, updated_at`

// refArgs splits a reference into its id and text columns
func refArgs(ref contracts.Reference) (any, any) {
	if id, ok := ref.ID(); ok {
		return id, nil
	}
	if text, ok := ref.Text(); ok {
		return nil, text
	}
	return nil, nil
}

func refFrom(id *uuid.UUID, text *string) contracts.Reference {
	switch {
	case id != nil:
		return contracts.RefByID(*id)
	case text != nil:
		return contracts.RefByText(*text)
	}
	return contracts.Reference{}
}

func scanNotification(row pgx.Row) (*contracts.Notification, error) {
	var (
		n                   contracts.Notification
		classID, categoryID *uuid.UUID
		classText, catText  *string
		createdBy           *uuid.UUID
	)
	err := row.Scan(
		&n.ID, &n.PeriodID, &n.SectorID,
		&classID, &classText,
		&categoryID, &catText,
		&n.Description, &n.Quantity, &n.QuantityClassification, &n.QuantityCategory, &n.QuantityProfessional,
		&createdBy, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Classification = refFrom(classID, classText)
	n.ProfessionalCategory = refFrom(categoryID, catText)
	n.CreatedBy = fromNullID(createdBy)
	return &n, nil
}

func (r *notificationRepo) Create(ctx context.Context, n *contracts.Notification) error {
	classID, classText := refArgs(n.Classification)
	categoryID, catText := refArgs(n.ProfessionalCategory)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`,
		n.ID, n.PeriodID, n.SectorID,
		classID, classText,
		categoryID, catText,
		n.Description, n.Quantity, n.QuantityClassification, n.QuantityCategory, n.QuantityProfessional,
		nullID(n.CreatedBy), n.CreatedAt, n.UpdatedAt,
	)
	return translate(err, "notification", n.ID)
}

func (r *notificationRepo) Update(ctx context.Context, n *contracts.Notification) error {
	classID, classText := refArgs(n.Classification)
	categoryID, catText := refArgs(n.ProfessionalCategory)

	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET
			classification_id = $2, classification_text = $3,
			professional_category_id = $4, professional_category_text = $5,
			description = $6, quantity = $7, quantity_classification = $8,
			quantity_category = $9, quantity_professional = $10, updated_at = $11
		WHERE id = $1
	`,
		n.ID,
		classID, classText,
		categoryID, catText,
		n.Description, n.Quantity, n.QuantityClassification,
		n.QuantityCategory, n.QuantityProfessional, n.UpdatedAt,
	)
	if err != nil {
		return translate(err, "notification", n.ID)
	}
	return affected(tag, "notification", n.ID)
}

func (r *notificationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return translate(err, "notification", id)
	}
	return affected(tag, "notification", id)
}

func (r *notificationRepo) Get(ctx context.Context, id uuid.UUID) (*contracts.Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "notification", id)
	}
	return n, nil
}

func (r *notificationRepo) List(ctx context.Context, filter contracts.NotificationFilter) ([]contracts.Notification, error) {
	var c conditions
	if filter.PeriodID != uuid.Nil {
		c.add("period_id = $%d", filter.PeriodID)
	}
	if filter.SectorID != uuid.Nil {
		c.add("sector_id = $%d", filter.SectorID)
	}
	if filter.ClassificationID != uuid.Nil {
		c.add("classification_id = $%d", filter.ClassificationID)
	}
	if filter.ProfessionalCategoryID != uuid.Nil {
		c.add("professional_category_id = $%d", filter.ProfessionalCategoryID)
	}
	if filter.CreatedBy != uuid.Nil {
		c.add("created_by = $%d", filter.CreatedBy)
	}
	if !filter.CreatedFrom.IsZero() {
		c.add("created_at >= $%d", filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		c.add("created_at < $%d", filter.CreatedTo)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications`+c.clause()+` ORDER BY created_at DESC, id::text`,
		c.args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}
