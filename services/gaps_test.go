package services

import (
	"reflect"
	"testing"

	"leadfinder/config"
	"leadfinder/models"
)

func newTestGapAnalyzer(phrase string, zips ...string) *GapAnalyzer {
	return NewGapAnalyzer(
		newTestLogger(),
		NewCategorySpec(phrase),
		NewZipMatcher(newTestLogger(), zips, 30),
		config.DefaultTaxonomy().Consolidated,
	)
}

func TestGapAnalyzerCompleteness(t *testing.T) {
	g := newTestGapAnalyzer("gym, high school", "28006", "28012")
	leads := []*models.Lead{
		{BusinessType: "Gym", Address: "1 Main St, Charlotte, NC 28006, United States", Phone: "1"},
	}

	got := QueryLines(g.Analyze(leads))
	want := []string{
		`"gym", "gym near 28012"`,
		`"high school", "high school near 28006"`,
		`"high school", "high school near 28012"`,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze:\ngot  %v\nwant %v", got, want)
	}
}

func TestGapAnalyzerConsolidatedGroup(t *testing.T) {
	g := newTestGapAnalyzer("RV parks, trailer parks, motels", "28006", "28012")
	leads := []*models.Lead{
		{BusinessType: "Trailer Park", Address: "1 A St, Town, NC 28006, United States"},
		{BusinessType: "Mobile Home Park", Address: "2 B St, Town, NC 28006, United States"},
		{BusinessType: "Motels", Address: "3 C St, Town, NC 28006, United States"},
		{BusinessType: "Motels", Address: "3 C St, Town, NC 28012, United States"},
	}

	got := QueryLines(g.Analyze(leads))
	want := []string{`"mobile home park", "mobile home park near 28012"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze:\ngot  %v\nwant %v", got, want)
	}
}

func TestGapAnalyzerCreditsFirstZipOnly(t *testing.T) {
	g := newTestGapAnalyzer("gym", "28006", "28012")
	leads := []*models.Lead{
		{BusinessType: "gym", Address: "28012 Long Rd, Town, NC 28006, United States"},
	}

	got := QueryLines(g.Analyze(leads))
	want := []string{`"gym", "gym near 28006"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze:\ngot  %v\nwant %v", got, want)
	}
}

func TestGapAnalyzerFullCoverage(t *testing.T) {
	g := newTestGapAnalyzer("gym", "28006")
	leads := []*models.Lead{{BusinessType: "GYM", Address: "1 Main St, NC 28006, United States"}}
	if got := g.Analyze(leads); len(got) != 0 {
		t.Errorf("expected no gaps, got %v", got)
	}
}

func TestGapAnalyzerEmptyInputs(t *testing.T) {
	if got := newTestGapAnalyzer("", "28006").Analyze(nil); got != nil {
		t.Errorf("empty categories: got %v", got)
	}
	if got := newTestGapAnalyzer("gym").Analyze(nil); got != nil {
		t.Errorf("empty zips: got %v", got)
	}
}

func TestGapAnalyzerNoLeads(t *testing.T) {
	got := QueryLines(newTestGapAnalyzer("motels, gym", "2").Analyze(nil))
	want := []string{`"gym", "gym near 2"`, `"motels", "motels near 2"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Analyze:\ngot  %v\nwant %v", got, want)
	}
}
