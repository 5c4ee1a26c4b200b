package contracts

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Sector is an organizational unit (e.g. a hospital ward)
type Sector struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MaxNameLength bounds sector and lookup names
const MaxNameLength = 255

// Validate checks name and code
func (s *Sector) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Code = strings.TrimSpace(s.Code)

	if s.Name == "" {
		return Invalid("name", "must not be blank")
	}
	if utf8.RuneCountInString(s.Name) > MaxNameLength {
		return Invalid("name", "must be at most 255 characters")
	}
	if s.Code == "" {
		return Invalid("code", "must not be blank")
	}
	if utf8.RuneCountInString(s.Code) > 50 {
		return Invalid("code", "must be at most 50 characters")
	}
	return nil
}
