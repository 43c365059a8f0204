package services

import (
	"testing"

	"leadfinder/models"
)

func TestZipMatcherWindow(t *testing.T) {
	m := NewZipMatcher(newTestLogger(), []string{"28006", "28012"}, 30)

	tests := []struct {
		address string
		want    bool
	}{
		{"12 Main St, Charlotte, NC 28012, United States", true},
		{"28012", true},
		// 28006 is the street number, outside the last 30 characters.
		{"28006 Main Street, Charlotte, North Carolina 28299, United States", false},
		{"12 Main St, Charlotte, NC 280123, United States", false},
		{"12 Main St, Charlotte, NC 28025, United States", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := m.Matches(tt.address); got != tt.want {
			t.Errorf("Matches(%q) = %v; want %v", tt.address, got, tt.want)
		}
	}
}

func TestZipMatcherWindowBoundary(t *testing.T) {
	addr := "123 28006 Main St, Charlotte, NC, United States"
	if NewZipMatcher(newTestLogger(), []string{"28006"}, 30).Matches(addr) {
		t.Errorf("zip outside a 30-rune window should not match %q", addr)
	}
	if !NewZipMatcher(newTestLogger(), []string{"28006"}, len(addr)).Matches(addr) {
		t.Errorf("zip inside a full-length window should match %q", addr)
	}
}

func TestZipMatcherFirstZip(t *testing.T) {
	m := NewZipMatcher(newTestLogger(), []string{"28006", "28012", " ", "28006"}, 30)
	if len(m.Zips()) != 2 {
		t.Errorf("Zips: got %v, want 2 unique zips", m.Zips())
	}
	if got := m.FirstZip("28012 Elm Rd, Town, NC 28006, United States"); got != "28012" {
		t.Errorf("FirstZip: got %q, want leftmost %q", got, "28012")
	}
	if got := m.FirstZip("nowhere"); got != "" {
		t.Errorf("FirstZip: got %q, want empty", got)
	}
}

func TestZipMatcherFilter(t *testing.T) {
	m := NewZipMatcher(newTestLogger(), []string{"28012"}, 30)
	batch := &models.Batch{
		File:   "ListA.xlsx",
		Fields: allFields,
		Leads: []*models.Lead{
			{Name: "In", Address: usAddr},
			{Name: "Out", Address: "9 Oak Ave, Raleigh, NC 27601, United States"},
		},
	}

	out := m.Filter(batch)
	if len(out.Leads) != 1 || out.Leads[0].Name != "In" {
		t.Fatalf("expected only In, got %+v", out.Leads)
	}
	if len(batch.Leads) != 2 {
		t.Error("Filter should not modify the input batch")
	}
}

func TestZipMatcherFilterWithoutAddressColumn(t *testing.T) {
	m := NewZipMatcher(newTestLogger(), []string{"28012"}, 30)
	batch := &models.Batch{
		File:   "names.csv",
		Fields: models.FieldSet(0).With(models.FieldName),
		Leads:  []*models.Lead{{Name: "A"}, {Name: "B"}},
	}

	if out := m.Filter(batch); len(out.Leads) != 2 {
		t.Errorf("expected batch to pass through, got %d leads", len(out.Leads))
	}
}
