package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"leadfinder/models"
	"leadfinder/utils"
)

type InsightService struct {
	logger *utils.Logger
	zips   *ZipMatcher
}

func NewInsightService(logger *utils.Logger, zips *ZipMatcher) *InsightService {
	return &InsightService{logger: logger, zips: zips}
}

// Generate summarises the final lead set. queries is the number of
// follow-up queries produced for it.
func (s *InsightService) Generate(leads []*models.Lead, queries int) *models.CoverageReport {
	report := &models.CoverageReport{
		ByType:       make(map[string]int),
		BySource:     make(map[string]int),
		ByZip:        make(map[string]int),
		QueriesCount: queries,
	}

	report.TotalLeads = len(leads)
	var totalReviews int
	for _, l := range leads {
		totalReviews += l.Reviews
		if l.BusinessType != "" {
			report.ByType[l.BusinessType]++
		}
		if l.Source != "" {
			report.BySource[l.Source]++
		}
		if zip := s.zips.FirstZip(l.Address); zip != "" {
			report.ByZip[zip]++
		}
	}

	for _, zip := range s.zips.Zips() {
		if report.ByZip[zip] == 0 {
			report.MissingZips = append(report.MissingZips, zip)
		}
	}
	if len(report.MissingZips) > 0 {
		s.logger.Warn("[insights] No leads at all in zip codes: %s", strings.Join(report.MissingZips, ", "))
	}

	if len(leads) == 0 {
		return report
	}
	report.AverageReviews = round2(float64(totalReviews) / float64(len(leads)))

	// Top 5 by review count
	ranked := make([]*models.Lead, len(leads))
	copy(ranked, leads)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Reviews > ranked[j].Reviews
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	report.TopReviewed = ranked

	return report
}

func (s *InsightService) Print(w io.Writer, r *models.CoverageReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 LEAD COVERAGE INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total leads            : \033[1m%d\033[0m\n", r.TotalLeads)
	fmt.Fprintf(w, "  Average reviews        : \033[1m%.2f\033[0m\n", r.AverageReviews)
	fmt.Fprintf(w, "  Follow-up queries      : \033[1m%d\033[0m\n", r.QueriesCount)
	fmt.Fprintln(w)

	printCounts(w, "Leads by Type", r.ByType, thin)
	printCounts(w, "Leads by Source", r.BySource, thin)
	printCounts(w, "Leads by Zip Code", r.ByZip, thin)

	fmt.Fprintf(w, "\033[1;33m  Missing Zip Codes (Overall)\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.MissingZips) == 0 {
		fmt.Fprintf(w, "  Every target zip code has at least one lead\n")
	} else {
		fmt.Fprintf(w, "  \033[1;31m%s\033[0m\n", strings.Join(r.MissingZips, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top 5 Most Reviewed Businesses\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopReviewed) == 0 {
		fmt.Fprintf(w, "  No leads found\n")
	} else {
		for i, l := range r.TopReviewed {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%d reviews\033[0m\n",
				i+1, truncate(l.Name, 38), l.Reviews)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCounts(w io.Writer, title string, counts map[string]int, thin string) {
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(counts) == 0 {
		fmt.Fprintf(w, "  No data\n\n")
		return
	}

	// Sort by count descending, then name
	type keyCount struct {
		key   string
		count int
	}
	var kcs []keyCount
	for k, c := range counts {
		kcs = append(kcs, keyCount{k, c})
	}
	sort.Slice(kcs, func(i, j int) bool {
		if kcs[i].count != kcs[j].count {
			return kcs[i].count > kcs[j].count
		}
		return kcs[i].key < kcs[j].key
	})
	for _, kc := range kcs {
		bar := strings.Repeat("█", min(kc.count, 40))
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(kc.key, 28), bar, kc.count)
	}
	fmt.Fprintln(w)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
