package contracts

import (
	"time"

	"github.com/google/uuid"
)

// UnsetCategoryName labels notifications without a professional category
const UnsetCategoryName = "Não informado"

// Notification is a clinical notification counted against a period
type Notification struct {
	ID                     uuid.UUID
	PeriodID               uuid.UUID
	SectorID               uuid.UUID
	Classification         Reference
	ProfessionalCategory   Reference
	Description            string
	Quantity               int
	QuantityClassification int
	QuantityCategory       int
	QuantityProfessional   int
	CreatedBy              uuid.UUID
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Validate checks the counters
func (n *Notification) Validate() error {
	counts := []struct {
		field string
		value int
	}{
		{"quantity", n.Quantity},
		{"quantityClassification", n.QuantityClassification},
		{"quantityCategory", n.QuantityCategory},
		{"quantityProfessional", n.QuantityProfessional},
	}
	for _, c := range counts {
		if err := checkCount(c.field, c.value); err != nil {
			return err
		}
	}
	return nil
}

// NotificationView is the notification with its lookups resolved
type NotificationView struct {
	ID                       uuid.UUID  `json:"id"`
	PeriodID                 uuid.UUID  `json:"periodId"`
	SectorID                 uuid.UUID  `json:"sectorId"`
	Classification           *Lookup    `json:"classification"`
	ClassificationText       *string    `json:"classificationText"`
	Description              string     `json:"description"`
	ProfessionalCategory     *Lookup    `json:"professionalCategory"`
	ProfessionalCategoryText *string    `json:"professionalCategoryText"`
	QuantityClassification   int        `json:"quantityClassification"`
	QuantityCategory         int        `json:"quantityCategory"`
	QuantityProfessional     int        `json:"quantityProfessional"`
	Quantity                 int        `json:"quantity"`
	CreatedBy                *uuid.UUID `json:"createdBy"`
	CreatedAt                time.Time  `json:"createdAt"`
	UpdatedAt                time.Time  `json:"updatedAt"`
}

// NotificationFilter selects notifications; zero fields are ignored
type NotificationFilter struct {
	PeriodID               uuid.UUID
	SectorID               uuid.UUID
	ClassificationID       uuid.UUID
	ProfessionalCategoryID uuid.UUID
	CreatedBy              uuid.UUID
	CreatedFrom            time.Time // inclusive
	CreatedTo              time.Time // exclusive
}

// Matches applies every non-zero field of the filter
func (f NotificationFilter) Matches(n *Notification) bool {
	if f.PeriodID != uuid.Nil && n.PeriodID != f.PeriodID {
		return false
	}
	if f.SectorID != uuid.Nil && n.SectorID != f.SectorID {
		return false
	}
	if f.ClassificationID != uuid.Nil {
		if id, ok := n.Classification.ID(); !ok || id != f.ClassificationID {
			return false
		}
	}
	if f.ProfessionalCategoryID != uuid.Nil {
		if id, ok := n.ProfessionalCategory.ID(); !ok || id != f.ProfessionalCategoryID {
			return false
		}
	}
	if f.CreatedBy != uuid.Nil && n.CreatedBy != f.CreatedBy {
		return false
	}
	if !f.CreatedFrom.IsZero() && n.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && !n.CreatedAt.Before(f.CreatedTo) {
		return false
	}
	return true
}

// RankingFilter scopes the professional category ranking
type RankingFilter struct {
	PeriodID uuid.UUID
	SectorID uuid.UUID
}

// RankingEntry is one row of the professional category ranking
type RankingEntry struct {
	ProfessionalCategoryID   *uuid.UUID `json:"professionalCategoryId"`
	ProfessionalCategoryName string     `json:"professionalCategoryName"`
	TotalQuantity            int        `json:"totalQuantity"`
}
