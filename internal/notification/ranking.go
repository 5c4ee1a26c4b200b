package notification

import (
	"context"
	"fmt"
	"sort"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
)

// RankProfessionalCategories sums quantityProfessional per professional category.
// Entries are ordered by total descending, then name, then id.
// ⭐ SSOT: ranking order is defined here only
func (s *Service) RankProfessionalCategories(ctx context.Context, filter contracts.RankingFilter) ([]contracts.RankingEntry, error) {
	list, err := s.repo.List(ctx, contracts.NotificationFilter{
		PeriodID: filter.PeriodID,
		SectorID: filter.SectorID,
	})
	if err != nil {
		return nil, fmt.Errorf("rank professional categories: %w", err)
	}

	cache := newLookupCache(s.classifications, s.categories)
	groups := make(map[string]*contracts.RankingEntry)

	for i := range list {
		ref := list[i].ProfessionalCategory
		key, entry, err := s.group(ctx, cache, ref)
		if err != nil {
			return nil, err
		}
		if existing, ok := groups[key]; ok {
			entry = existing
		} else {
			groups[key] = entry
		}
		entry.TotalQuantity += list[i].QuantityProfessional
	}

	ranking := make([]contracts.RankingEntry, 0, len(groups))
	for _, entry := range groups {
		ranking = append(ranking, *entry)
	}
	sortRanking(ranking)

	s.logger.WithFields(map[string]interface{}{
		"period_id":  filter.PeriodID,
		"sector_id":  filter.SectorID,
		"categories": len(ranking),
	}).Debug("Professional category ranking computed")

	return ranking, nil
}

// group returns the grouping key and a fresh entry for ref
func (s *Service) group(ctx context.Context, cache *lookupCache, ref contracts.Reference) (string, *contracts.RankingEntry, error) {
	if text, ok := ref.Text(); ok {
		return "text:" + text, &contracts.RankingEntry{ProfessionalCategoryName: text}, nil
	}

	id, ok := ref.ID()
	if !ok {
		return "unset", &contracts.RankingEntry{ProfessionalCategoryName: contracts.UnsetCategoryName}, nil
	}

	row, _, err := cache.resolve(ctx, contracts.LookupProfessionalCategory, ref)
	if err != nil {
		return "", nil, err
	}
	name := contracts.UnsetCategoryName
	if row != nil {
		name = row.Name
	}
	catID := id
	return "id:" + id.String(), &contracts.RankingEntry{ProfessionalCategoryID: &catID, ProfessionalCategoryName: name}, nil
}

func sortRanking(r []contracts.RankingEntry) {
	idOf := func(e contracts.RankingEntry) string {
		if e.ProfessionalCategoryID == nil {
			return ""
		}
		return e.ProfessionalCategoryID.String()
	}

	sort.Slice(r, func(i, j int) bool {
		if r[i].TotalQuantity != r[j].TotalQuantity {
			return r[i].TotalQuantity > r[j].TotalQuantity
		}
		if r[i].ProfessionalCategoryName != r[j].ProfessionalCategoryName {
			return r[i].ProfessionalCategoryName < r[j].ProfessionalCategoryName
		}
		return idOf(r[i]) < idOf(r[j])
	})
}
