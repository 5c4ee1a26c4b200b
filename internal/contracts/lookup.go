package contracts

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// LookupKind names a lookup table
type LookupKind string

const (
	LookupClassification       LookupKind = "notification_classification"
	LookupProfessionalCategory LookupKind = "professional_category"
)

// Resource returns the name used in errors and audit entries
func (k LookupKind) Resource() string {
	switch k {
	case LookupClassification:
		return "notification classification"
	case LookupProfessionalCategory:
		return "professional category"
	}
	return string(k)
}

// Lookup is a row of a lookup table (classification or professional category)
type Lookup struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Active bool      `json:"active"`
}

// Validate checks the lookup name
func (l *Lookup) Validate() error {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return Invalid("name", "must not be blank")
	}
	if utf8.RuneCountInString(l.Name) > MaxNameLength {
		return Invalid("name", "must be at most 255 characters")
	}
	return nil
}
