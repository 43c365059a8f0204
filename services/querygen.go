package services

import (
	"strings"

	"leadfinder/models"
	"leadfinder/utils"
)

// QueryGenerator produces the full search matrix for a first scrape,
// regardless of what is already covered.
type QueryGenerator struct {
	logger     *utils.Logger
	categories *CategorySpec
	zips       []string
	states     []string
}

func NewQueryGenerator(logger *utils.Logger, categories *CategorySpec, zips, states []string) *QueryGenerator {
	return &QueryGenerator{logger: logger, categories: categories, zips: zips, states: states}
}

// Generate returns one query per (category, zip) and per (category, state),
// deduplicated and sorted.
func (g *QueryGenerator) Generate() []models.QueryRequest {
	var reqs []models.QueryRequest
	for _, category := range g.categories.Base {
		for _, zip := range g.zips {
			if zip = strings.TrimSpace(zip); zip != "" {
				reqs = append(reqs, models.QueryRequest{Category: category, Location: zip, Preposition: "near"})
			}
		}
		for _, state := range g.states {
			if state = strings.ToUpper(strings.TrimSpace(state)); state != "" {
				reqs = append(reqs, models.QueryRequest{Category: category, Location: state, Preposition: "in"})
			}
		}
	}

	out := uniqueSorted(reqs)
	g.logger.Info("[querygen] Generated %d queries (%d categories × %d zips, %d states)",
		len(out), len(g.categories.Base), len(g.zips), len(g.states))
	return out
}
