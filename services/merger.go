package services

import (
	"path/filepath"
	"sort"
	"strings"

	"leadfinder/models"
	"leadfinder/utils"
)

// Merger classifies input files by source and folds cleaned batches into a
// single lead set with one row per phone number.
type Merger struct {
	logger        *utils.Logger
	defaultPrefix string
	fallbackLabel string
}

// NewMerger creates a Merger. Files whose lowercase name starts with
// defaultPrefix are fallback sources labelled fallbackLabel.
func NewMerger(logger *utils.Logger, defaultPrefix, fallbackLabel string) *Merger {
	return &Merger{
		logger:        logger,
		defaultPrefix: strings.ToLower(defaultPrefix),
		fallbackLabel: fallbackLabel,
	}
}

// ClassifySource returns the source label and priority for an input file.
func (m *Merger) ClassifySource(filename string) (string, int) {
	base := filepath.Base(filename)
	if m.defaultPrefix != "" && strings.HasPrefix(strings.ToLower(base), m.defaultPrefix) {
		return m.fallbackLabel, models.PriorityFallback
	}
	return base, models.PriorityList
}

// Merge concatenates prioritized batches before fallback batches, tags each
// lead with its batch source and deduplicates the result.
func (m *Merger) Merge(batches []*models.Batch) []*models.Lead {
	ordered := make([]*models.Batch, 0, len(batches))
	for _, b := range batches {
		if b != nil && b.Priority == models.PriorityList {
			ordered = append(ordered, b)
		}
	}
	for _, b := range batches {
		if b != nil && b.Priority != models.PriorityList {
			ordered = append(ordered, b)
		}
	}

	var all []*models.Lead
	for _, b := range ordered {
		for _, l := range b.Leads {
			l.Source = b.Source
			all = append(all, l)
		}
	}

	leads := m.Dedup(all)
	m.logger.Info("[merger] Merged %d batches: %d rows → %d unique phones", len(ordered), len(all), len(leads))
	return leads
}

// Dedup keeps one lead per trimmed phone number. Leads without a phone are
// dropped. When a phone appears in several sources, a prioritized source
// wins over the fallback one; ties keep the earliest lead.
func (m *Merger) Dedup(leads []*models.Lead) []*models.Lead {
	candidates := make([]*models.Lead, 0, len(leads))
	for _, l := range leads {
		l.Phone = strings.TrimSpace(l.Phone)
		if l.Phone == "" {
			continue
		}
		candidates = append(candidates, l)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Phone != b.Phone {
			return a.Phone < b.Phone
		}
		return m.priority(a) < m.priority(b)
	})

	out := make([]*models.Lead, 0, len(candidates))
	for i, l := range candidates {
		if i > 0 && l.Phone == candidates[i-1].Phone {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (m *Merger) priority(l *models.Lead) int {
	if l.Source == m.fallbackLabel {
		return models.PriorityFallback
	}
	return models.PriorityList
}
