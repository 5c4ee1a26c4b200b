package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/lookup"
	"github.com/zezinho10632/DouglasApi/internal/period"
	"github.com/zezinho10632/DouglasApi/internal/sector"
	"github.com/zezinho10632/DouglasApi/internal/user"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// Targets are the services a fixture is written through
type Targets struct {
	Sectors                *sector.Service
	Periods                *period.Manager
	Classifications        *lookup.Service
	ProfessionalCategories *lookup.Service
	Users                  *user.Service
}

// Summary counts the rows a run added
type Summary struct {
	Sectors                int `json:"sectors"`
	Periods                int `json:"periods"`
	Classifications        int `json:"classifications"`
	ProfessionalCategories int `json:"professionalCategories"`
	Users                  int `json:"users"`
}

// Apply writes the fixture. Rows that already exist are left alone, so
// running it twice adds nothing the second time.
func Apply(ctx context.Context, t Targets, fx *Fixture, now time.Time, log *logger.Logger) (Summary, error) {
	var sum Summary

	existing, err := t.Sectors.List(ctx, true)
	if err != nil {
		return sum, fmt.Errorf("list sectors: %w", err)
	}

	var seeded []contracts.Sector
	for _, spec := range fx.Sectors {
		if sec := findSector(existing, spec.Code); sec != nil {
			seeded = append(seeded, *sec)
			continue
		}
		sec, err := t.Sectors.Create(ctx, sector.Input{Name: spec.Name, Code: spec.Code})
		if err != nil {
			return sum, fmt.Errorf("sector %s: %w", spec.Code, err)
		}
		seeded = append(seeded, *sec)
		sum.Sectors++
		log.WithField("code", sec.Code).Info("Sector seeded")
	}

	if sum.Classifications, err = seedLookups(ctx, t.Classifications, fx.Classifications); err != nil {
		return sum, err
	}
	if sum.ProfessionalCategories, err = seedLookups(ctx, t.ProfessionalCategories, fx.ProfessionalCategories); err != nil {
		return sum, err
	}

	for _, spec := range fx.Users {
		u := contracts.User{
			Email:    spec.Email,
			Name:     spec.Name,
			Role:     contracts.Role(strings.ToUpper(spec.Role)),
			JobTitle: contracts.JobTitle(strings.ToUpper(spec.JobTitle)),
			Active:   true,
		}
		created, added, err := t.Users.Seed(ctx, u)
		if err != nil {
			return sum, fmt.Errorf("user %s: %w", spec.Email, err)
		}
		if added {
			sum.Users++
			log.WithField("email", created.Email).Info("User seeded")
		}
	}

	if fx.OpenCurrentPeriod {
		for _, sec := range seeded {
			_, err := t.Periods.Create(ctx, sec.ID, int(now.Month()), now.Year())
			switch {
			case err == nil:
				sum.Periods++
			case errors.Is(err, contracts.ErrConflict):
			default:
				return sum, fmt.Errorf("period for %s: %w", sec.Code, err)
			}
		}
	}

	return sum, nil
}

func findSector(sectors []contracts.Sector, code string) *contracts.Sector {
	code = strings.TrimSpace(code)
	for i := range sectors {
		if strings.EqualFold(sectors[i].Code, code) {
			return &sectors[i]
		}
	}
	return nil
}

func seedLookups(ctx context.Context, svc *lookup.Service, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}

	current, err := svc.List(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", svc.Kind().Resource(), err)
	}
	have := make(map[string]bool, len(current))
	for _, l := range current {
		have[strings.ToLower(l.Name)] = true
	}

	added := 0
	for _, name := range names {
		if have[strings.ToLower(strings.TrimSpace(name))] {
			continue
		}
		if _, err := svc.Create(ctx, lookup.Input{Name: name}); err != nil {
			return added, fmt.Errorf("%s %q: %w", svc.Kind().Resource(), name, err)
		}
		added++
	}
	return added, nil
}
