package contracts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PeriodStatus is the lifecycle state of a period
type PeriodStatus string

const (
	PeriodOpen      PeriodStatus = "OPEN"
	PeriodClosed    PeriodStatus = "CLOSED"
	PeriodValidated PeriodStatus = "VALIDATED"
)

// ParsePeriodStatus accepts the wire names case-insensitively
func ParsePeriodStatus(s string) (PeriodStatus, error) {
	switch st := PeriodStatus(upper(s)); st {
	case PeriodOpen, PeriodClosed, PeriodValidated:
		return st, nil
	}
	return "", Invalid("status", fmt.Sprintf("unknown period status %q", s))
}

// Writable reports whether clinical records may change in this state
func (s PeriodStatus) Writable() bool {
	return s == PeriodOpen
}

// MinPeriodYear is the earliest accepted reporting year
const MinPeriodYear = 2000

// Period is a sector-scoped monthly reporting window
type Period struct {
	ID        uuid.UUID    `json:"id"`
	SectorID  uuid.UUID    `json:"sectorId"`
	Month     int          `json:"month"`
	Year      int          `json:"year"`
	Status    PeriodStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ValidatePeriodKey checks month and year bounds
func ValidatePeriodKey(month, year int) error {
	if month < 1 || month > 12 {
		return Invalid("month", "must be between 1 and 12")
	}
	if year < MinPeriodYear {
		return Invalid("year", fmt.Sprintf("must be %d or later", MinPeriodYear))
	}
	return nil
}

// Start returns the first day of the period
func (p *Period) Start() Date {
	return NewDate(p.Year, time.Month(p.Month), 1)
}

// End returns the last day of the period
func (p *Period) End() Date {
	return p.Start().LastOfMonth()
}

// Active mirrors the status for clients that expect a boolean
func (p Period) Active() bool {
	return p.Status == PeriodOpen
}

// PeriodFilter selects periods of one sector
type PeriodFilter struct {
	SectorID uuid.UUID
	Status   PeriodStatus
	Year     int
}

// Matches applies the optional status and year filters
func (f PeriodFilter) Matches(p *Period) bool {
	if p.SectorID != f.SectorID {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Year != 0 && p.Year != f.Year {
		return false
	}
	return true
}
