package services

import (
	"sort"

	"leadfinder/config"
	"leadfinder/models"
)

// Sheet groups, in display order.
const (
	groupOther = iota
	groupSchool
	groupConsolidated
)

// SortLeads orders leads for the combined sheet: other types first, then
// schools, then the consolidated group; within a group by business type and
// sub-category. The sort is stable.
func SortLeads(leads []*models.Lead, tax *config.Taxonomy) {
	schools := keySet(tax.SchoolTypes)
	consolidated := keySet(tax.Consolidated.Types)

	group := func(l *models.Lead) int {
		key := matchKey(l.BusinessType)
		if _, ok := schools[key]; ok {
			return groupSchool
		}
		if _, ok := consolidated[key]; ok {
			return groupConsolidated
		}
		return groupOther
	}

	sort.SliceStable(leads, func(i, j int) bool {
		a, b := leads[i], leads[j]
		if ga, gb := group(a), group(b); ga != gb {
			return ga < gb
		}
		if a.BusinessType != b.BusinessType {
			return a.BusinessType < b.BusinessType
		}
		return a.SubCategory < b.SubCategory
	})
}

func keySet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[matchKey(v)] = struct{}{}
	}
	return set
}
