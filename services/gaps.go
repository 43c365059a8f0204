package services

import (
	"sort"

	"leadfinder/config"
	"leadfinder/models"
	"leadfinder/utils"
)

// GapAnalyzer finds (category, zip) combinations with no lead in the final
// set and turns them into follow-up search queries.
type GapAnalyzer struct {
	logger     *utils.Logger
	categories *CategorySpec
	zips       *ZipMatcher
	group      config.ConsolidatedGroup
	inGroup    map[string]struct{}
}

// NewGapAnalyzer creates a GapAnalyzer. Business types in group count as
// the group's representative when measuring coverage.
func NewGapAnalyzer(logger *utils.Logger, categories *CategorySpec, zips *ZipMatcher, group config.ConsolidatedGroup) *GapAnalyzer {
	inGroup := make(map[string]struct{}, len(group.Types))
	for _, t := range group.Types {
		inGroup[matchKey(t)] = struct{}{}
	}
	group.Representative = matchKey(group.Representative)
	return &GapAnalyzer{
		logger:     logger,
		categories: categories,
		zips:       zips,
		group:      group,
		inGroup:    inGroup,
	}
}

type coverageKey struct {
	category string
	zip      string
}

// standardise maps a business type to the term used for coverage.
func (g *GapAnalyzer) standardise(businessType string) string {
	key := matchKey(businessType)
	if _, ok := g.inGroup[key]; ok {
		return g.group.Representative
	}
	return key
}

// Analyze returns the missing combinations, deduplicated and sorted by
// their rendered query line.
func (g *GapAnalyzer) Analyze(leads []*models.Lead) []models.QueryRequest {
	if g.categories.Empty() || len(g.zips.Zips()) == 0 {
		g.logger.Warn("[gaps] No target categories or zip codes, no queries generated")
		return nil
	}

	var others []string
	groupRequested := false
	for _, base := range g.categories.Base {
		if _, ok := g.inGroup[base]; ok {
			groupRequested = true
			continue
		}
		others = append(others, base)
	}

	present := make(map[coverageKey]struct{})
	for _, l := range leads {
		zip := g.zips.FirstZip(l.Address)
		if zip == "" {
			continue
		}
		present[coverageKey{g.standardise(l.BusinessType), zip}] = struct{}{}
	}

	var missing []models.QueryRequest
	check := func(category, zip string) {
		if _, ok := present[coverageKey{category, zip}]; !ok {
			missing = append(missing, models.QueryRequest{Category: category, Location: zip})
		}
	}
	for _, category := range others {
		for _, zip := range g.zips.Zips() {
			check(category, zip)
		}
	}
	if groupRequested {
		for _, zip := range g.zips.Zips() {
			check(g.group.Representative, zip)
		}
	}

	queries := uniqueSorted(missing)
	if len(queries) == 0 {
		g.logger.Info("[gaps] All %d categories covered in all %d zip codes", len(g.categories.Base), len(g.zips.Zips()))
		return nil
	}
	g.logger.Warn("[gaps] %d missing (category, zip) combinations", len(queries))
	for _, q := range queries {
		g.logger.Debug("[gaps]   missing %s in %s", q.Category, q.Location)
	}
	return queries
}

// uniqueSorted drops requests that render to the same line and sorts the
// rest lexicographically by that line.
func uniqueSorted(reqs []models.QueryRequest) []models.QueryRequest {
	seen := make(map[string]struct{}, len(reqs))
	out := make([]models.QueryRequest, 0, len(reqs))
	for _, q := range reqs {
		line := q.String()
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// QueryLines renders requests one per line in the scraper's input format.
func QueryLines(reqs []models.QueryRequest) []string {
	lines := make([]string, len(reqs))
	for i, q := range reqs {
		lines[i] = q.String()
	}
	return lines
}
