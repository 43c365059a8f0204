package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"leadfinder/models"
)

// Taxonomy describes how business types are grouped, which placeholder
// values the scraper writes, and how the output sheet is laid out.
type Taxonomy struct {
	Consolidated       ConsolidatedGroup   `yaml:"consolidated"`
	SchoolTypes        []string            `yaml:"school_types"`
	Sentinels          map[string]string   `yaml:"sentinels"`
	SubCategoryFilters map[string][]string `yaml:"subcategory_filters"`
	ColumnWidths       map[string]float64  `yaml:"column_widths"`
}

// ConsolidatedGroup is a set of interchangeable business types collapsed to
// one representative when counting coverage.
type ConsolidatedGroup struct {
	Types          []string `yaml:"types"`
	Representative string   `yaml:"representative"`
}

// DefaultTaxonomy returns the built-in taxonomy.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		Consolidated: ConsolidatedGroup{
			Types: []string{
				"rv park", "mobile home park", "trailer park",
				"rv parks", "mobile home parks", "trailer parks",
				"campground", "campgrounds",
			},
			Representative: "mobile home park",
		},
		SchoolTypes: []string{"high school", "high schools", "middle school", "middle schools"},
		Sentinels: map[string]string{
			models.ColumnReviews:          "No reviews",
			models.ColumnRating:           "No ratings",
			models.ColumnLatestReview:     "No review date",
			models.ColumnLatestReviewDate: "No review date",
			models.ColumnPhone:            "No phone number",
			models.ColumnAddress:          "No address",
		},
		SubCategoryFilters: map[string][]string{},
		ColumnWidths: map[string]float64{
			models.ColumnSource:       15,
			models.ColumnBusinessType: 20,
			models.ColumnSubCategory:  18,
			models.ColumnName:         30,
			models.ColumnWebsite:      25,
			models.ColumnReviews:      12,
			models.ColumnRating:       10,
			models.ColumnLatestReview: 20,
			models.ColumnAddress:      50,
			models.ColumnPhone:        15,
			models.ColumnNotes:        20,
			models.ColumnEmail:        25,
		},
	}
}

// LoadTaxonomy returns the default taxonomy overlaid with the YAML file at
// path. Lists in the file replace the defaults; map entries are merged.
// An empty path yields the defaults.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	tax := DefaultTaxonomy()
	if path == "" {
		return tax, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read taxonomy %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, tax); err != nil {
		return nil, fmt.Errorf("config: parse taxonomy %q: %w", path, err)
	}

	tax.normalise()
	if err := tax.validate(); err != nil {
		return nil, fmt.Errorf("config: invalid taxonomy %q: %w", path, err)
	}
	return tax, nil
}

func (t *Taxonomy) normalise() {
	t.Consolidated.Types = lowerAll(t.Consolidated.Types)
	t.Consolidated.Representative = strings.ToLower(strings.TrimSpace(t.Consolidated.Representative))
	t.SchoolTypes = lowerAll(t.SchoolTypes)

	filters := make(map[string][]string, len(t.SubCategoryFilters))
	for bizType, allowed := range t.SubCategoryFilters {
		filters[strings.ToLower(strings.TrimSpace(bizType))] = lowerAll(allowed)
	}
	t.SubCategoryFilters = filters
}

func (t *Taxonomy) validate() error {
	if len(t.Consolidated.Types) > 0 && t.Consolidated.Representative == "" {
		return fmt.Errorf("consolidated.representative is required when consolidated.types is set")
	}
	for col := range t.Sentinels {
		if _, ok := models.FieldForColumn(col); !ok {
			return fmt.Errorf("sentinels: unknown column %q", col)
		}
	}
	for col, w := range t.ColumnWidths {
		if w <= 0 {
			return fmt.Errorf("column_widths: %q must be positive", col)
		}
	}
	return nil
}

// SentinelFields maps each sentinel column to its placeholder value.
func (t *Taxonomy) SentinelFields() map[models.Field]string {
	out := make(map[models.Field]string, len(t.Sentinels))
	for col, v := range t.Sentinels {
		if f, ok := models.FieldForColumn(col); ok && v != "" {
			out[f] = v
		}
	}
	return out
}

// ColumnWidth returns the configured width for a column, or 15.
func (t *Taxonomy) ColumnWidth(column string) float64 {
	if w, ok := t.ColumnWidths[column]; ok {
		return w
	}
	return 15
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
