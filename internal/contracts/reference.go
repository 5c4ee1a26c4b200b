package contracts

import (
	"strings"

	"github.com/google/uuid"
)

// Reference points at a lookup row by id, carries free text, or is unset.
// The zero value is unset.
type Reference struct {
	id   uuid.UUID
	text string
	set  bool
}

// RefByID references a lookup row
func RefByID(id uuid.UUID) Reference {
	return Reference{id: id, set: true}
}

// RefByText carries free text in place of a lookup row
func RefByText(text string) Reference {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reference{}
	}
	return Reference{text: text, set: true}
}

// NewReference builds a reference from the id/text request pair.
// Supplying both is a ValidationError.
func NewReference(field string, id *uuid.UUID, text *string) (Reference, error) {
	hasText := text != nil && strings.TrimSpace(*text) != ""
	switch {
	case id != nil && hasText:
		return Reference{}, Invalid(field, "provide either an id or a text, not both")
	case id != nil:
		return RefByID(*id), nil
	case hasText:
		return RefByText(*text), nil
	}
	return Reference{}, nil
}

// ID returns the referenced lookup id
func (r Reference) ID() (uuid.UUID, bool) {
	return r.id, r.set && r.text == "" && r.id != uuid.Nil
}

// Text returns the free text
func (r Reference) Text() (string, bool) {
	return r.text, r.set && r.text != ""
}

// IsSet reports whether the reference carries an id or a text
func (r Reference) IsSet() bool {
	return r.set
}

func (r Reference) String() string {
	if id, ok := r.ID(); ok {
		return id.String()
	}
	if text, ok := r.Text(); ok {
		return text
	}
	return "unset"
}
