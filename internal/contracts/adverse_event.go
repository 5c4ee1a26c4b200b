package contracts

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType classifies an adverse event
type EventType string

const (
	EventPressureInjury          EventType = "PRESSURE_INJURY"
	EventCVCLoss                 EventType = "CVC_LOSS"
	EventEnteralTube             EventType = "ENTERAL_TUBE"
	EventCardiorespiratoryArrest EventType = "CARDIORESPIRATORY_ARREST"
	EventFall                    EventType = "FALL"
	EventAccidentalExtubation    EventType = "ACCIDENTAL_EXTUBATION"
)

// EventTypes lists every accepted event type
var EventTypes = []EventType{
	EventPressureInjury,
	EventCVCLoss,
	EventEnteralTube,
	EventCardiorespiratoryArrest,
	EventFall,
	EventAccidentalExtubation,
}

// ParseEventType accepts the wire names case-insensitively
func ParseEventType(s string) (EventType, error) {
	et := EventType(upper(s))
	for _, known := range EventTypes {
		if et == known {
			return et, nil
		}
	}
	return "", Invalid("eventType", fmt.Sprintf("unknown event type %q", s))
}

// AdverseEvent is a dated clinical incident with two independent counters
type AdverseEvent struct {
	ID                    uuid.UUID `json:"id"`
	PeriodID              uuid.UUID `json:"periodId"`
	SectorID              uuid.UUID `json:"sectorId"`
	EventDate             Date      `json:"eventDate"`
	EventType             EventType `json:"eventType"`
	Description           string    `json:"description"`
	QuantityCases         int       `json:"quantityCases"`
	QuantityNotifications int       `json:"quantityNotifications"`
	CreatedBy             uuid.UUID `json:"createdBy"`
	CreatedByName         string    `json:"createdByName,omitempty"`
	CreatedByJobTitle     JobTitle  `json:"createdByJobTitle,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// Validate checks the date, type and counters
func (e *AdverseEvent) Validate() error {
	e.Description = strings.TrimSpace(e.Description)
	if e.EventDate.IsZero() {
		return Invalid("eventDate", "is required")
	}
	if _, err := ParseEventType(string(e.EventType)); err != nil {
		return err
	}
	return firstError(
		checkCount("quantityCases", e.QuantityCases),
		checkCount("quantityNotifications", e.QuantityNotifications),
	)
}

// AdverseEventFilter selects adverse events; zero fields are ignored
type AdverseEventFilter struct {
	PeriodID  uuid.UUID
	SectorID  uuid.UUID
	EventType EventType
	CreatedBy uuid.UUID
	From      Date // inclusive
	To        Date // inclusive
}

// Matches applies every non-zero field of the filter
func (f AdverseEventFilter) Matches(e *AdverseEvent) bool {
	if f.PeriodID != uuid.Nil && e.PeriodID != f.PeriodID {
		return false
	}
	if f.SectorID != uuid.Nil && e.SectorID != f.SectorID {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if f.CreatedBy != uuid.Nil && e.CreatedBy != f.CreatedBy {
		return false
	}
	if !f.From.IsZero() && e.EventDate.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && e.EventDate.After(f.To.Time) {
		return false
	}
	return true
}
