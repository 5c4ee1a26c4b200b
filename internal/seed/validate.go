package seed

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

// ValidationError reports the first invalid fixture field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a fixture before anything is written
func Validate(fx *Fixture) error {
	codes := make(map[string]bool, len(fx.Sectors))
	for i, s := range fx.Sectors {
		field := fmt.Sprintf("sectors[%d]", i)
		if strings.TrimSpace(s.Name) == "" {
			return ValidationError{field + ".name", "required"}
		}
		code := strings.ToUpper(strings.TrimSpace(s.Code))
		if code == "" {
			return ValidationError{field + ".code", "required"}
		}
		if codes[code] {
			return ValidationError{field + ".code", "duplicate " + code}
		}
		codes[code] = true
	}

	if err := validateNames("classifications", fx.Classifications); err != nil {
		return err
	}
	if err := validateNames("professional_categories", fx.ProfessionalCategories); err != nil {
		return err
	}

	for i, u := range fx.Users {
		field := fmt.Sprintf("users[%d]", i)
		if _, err := mail.ParseAddress(u.Email); err != nil {
			return ValidationError{field + ".email", "must be a valid address"}
		}
		if strings.TrimSpace(u.Name) == "" {
			return ValidationError{field + ".name", "required"}
		}
		if _, err := contracts.ParseRole(u.Role); err != nil {
			return ValidationError{field + ".role", err.Error()}
		}
		if u.JobTitle != "" {
			if _, err := contracts.ParseJobTitle(u.JobTitle); err != nil {
				return ValidationError{field + ".job_title", err.Error()}
			}
		}
	}

	if fx.OpenCurrentPeriod && len(fx.Sectors) == 0 {
		return ValidationError{"open_current_period", "needs at least one sector"}
	}

	return nil
}

func validateNames(field string, names []string) error {
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" {
			return ValidationError{fmt.Sprintf("%s[%d]", field, i), "required"}
		}
		if seen[key] {
			return ValidationError{fmt.Sprintf("%s[%d]", field, i), "duplicate " + n}
		}
		seen[key] = true
	}
	return nil
}
