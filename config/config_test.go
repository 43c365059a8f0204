package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"leadfinder/models"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"28006, 28012,28025", []string{"28006", "28012", "28025"}},
		{" , 28006 ,, ", []string{"28006"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := SplitList(tt.raw)
		if len(got) != len(tt.want) {
			t.Errorf("SplitList(%q) = %v; want %v", tt.raw, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitList(%q)[%d] = %q; want %q", tt.raw, i, got[i], tt.want[i])
			}
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ZIP_CODES", "28006, 28012")
	t.Setenv("ZIP_CHECK_LENGTH", "25")
	t.Setenv("MIN_REVIEWS", "not-a-number")
	t.Setenv("COUNTRY_FILTERS", "United States,USA")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.ZipCodes) != 2 || cfg.ZipCodes[1] != "28012" {
		t.Errorf("ZipCodes: got %v", cfg.ZipCodes)
	}
	if cfg.ZipCheckLength != 25 {
		t.Errorf("ZipCheckLength: got %d, want 25", cfg.ZipCheckLength)
	}
	if cfg.MinReviews != 4 {
		t.Errorf("MinReviews should fall back to 4 on bad input, got %d", cfg.MinReviews)
	}
	if len(cfg.CountryFilters) != 2 {
		t.Errorf("CountryFilters: got %v", cfg.CountryFilters)
	}
	if !cfg.Debug {
		t.Error("Debug: want true")
	}
	if cfg.Taxonomy == nil || cfg.Taxonomy.Consolidated.Representative != "mobile home park" {
		t.Error("expected default taxonomy to be loaded")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateRequiresZipCodes(t *testing.T) {
	cfg := &Config{ZipCheckLength: 30}
	if err := cfg.Validate(); !errors.Is(err, ErrNoZipCodes) {
		t.Errorf("Validate: got %v, want ErrNoZipCodes", err)
	}
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	cfg := &Config{ZipCodes: []string{"28006"}, ZipCheckLength: 30, StoreDriver: "mongo"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown store driver")
	}
}

func TestLoadTaxonomyOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	yml := `
consolidated:
  types: ["RV Park", "Campground"]
  representative: "RV Park"
sentinels:
  Website: "No website"
subcategory_filters:
  Gym: ["Fitness Center", "gym"]
column_widths:
  Website: 35
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	tax, err := LoadTaxonomy(path)
	if err != nil {
		t.Fatalf("LoadTaxonomy: %v", err)
	}
	if tax.Consolidated.Representative != "rv park" {
		t.Errorf("Representative: got %q, want %q", tax.Consolidated.Representative, "rv park")
	}
	if len(tax.Consolidated.Types) != 2 || tax.Consolidated.Types[1] != "campground" {
		t.Errorf("Types: got %v", tax.Consolidated.Types)
	}
	if got := tax.SubCategoryFilters["gym"]; len(got) != 2 || got[0] != "fitness center" {
		t.Errorf("SubCategoryFilters[gym]: got %v", got)
	}
	if tax.ColumnWidth(models.ColumnWebsite) != 35 {
		t.Errorf("Website width: got %v, want 35", tax.ColumnWidth(models.ColumnWebsite))
	}
	if tax.ColumnWidth(models.ColumnAddress) != 50 {
		t.Errorf("Address width should keep default 50, got %v", tax.ColumnWidth(models.ColumnAddress))
	}

	sentinels := tax.SentinelFields()
	if sentinels[models.FieldWebsite] != "No website" {
		t.Errorf("website sentinel: got %q", sentinels[models.FieldWebsite])
	}
	if sentinels[models.FieldAddress] != "No address" {
		t.Errorf("address sentinel should be kept from defaults, got %q", sentinels[models.FieldAddress])
	}
}

func TestLoadTaxonomyRejectsUnknownSentinelColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	if err := os.WriteFile(path, []byte("sentinels:\n  Fax: \"No fax\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTaxonomy(path); err == nil {
		t.Error("expected error for unknown sentinel column")
	}
}

func TestLoadTaxonomyMissingFile(t *testing.T) {
	if _, err := LoadTaxonomy(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing taxonomy file")
	}
}
