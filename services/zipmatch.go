package services

import (
	"regexp"
	"strings"

	"leadfinder/models"
	"leadfinder/utils"
)

// ZipMatcher decides whether an address belongs to one of the target zip
// codes. Only the tail of the address is inspected, where the zip normally
// sits, so street numbers earlier in the string do not produce false hits.
type ZipMatcher struct {
	logger  *utils.Logger
	zips    []string
	window  int
	pattern *regexp.Regexp
}

// NewZipMatcher builds a matcher for zips, inspecting the last window runes
// of each address. Blank and duplicate zips are ignored.
func NewZipMatcher(logger *utils.Logger, zips []string, window int) *ZipMatcher {
	m := &ZipMatcher{logger: logger, window: window}

	seen := utils.NewStringSet()
	for _, z := range zips {
		if z = strings.TrimSpace(z); z != "" {
			seen.Add(z)
		}
	}
	m.zips = seen.Members()

	quoted := make([]string, len(m.zips))
	for i, z := range m.zips {
		quoted[i] = regexp.QuoteMeta(z)
	}
	if len(quoted) > 0 {
		m.pattern = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return m
}

// Zips returns the target zips in configuration order.
func (m *ZipMatcher) Zips() []string { return m.zips }

// Matches reports whether a target zip appears within the address tail.
func (m *ZipMatcher) Matches(address string) bool {
	if m.pattern == nil {
		return false
	}
	return m.pattern.MatchString(tail(address, m.window))
}

// FirstZip returns the leftmost target zip in the full address, or "".
func (m *ZipMatcher) FirstZip(address string) string {
	if m.pattern == nil {
		return ""
	}
	return m.pattern.FindString(address)
}

// Filter drops leads whose address tail carries no target zip. A batch
// without an address column is returned unfiltered.
func (m *ZipMatcher) Filter(batch *models.Batch) *models.Batch {
	if !batch.Fields.Has(models.FieldAddress) {
		m.logger.Warn("[zipmatch] %s: %q column not found, skipping zip filter", batch.File, models.ColumnAddress)
		return batch
	}
	if m.pattern == nil {
		m.logger.Warn("[zipmatch] %s: no target zip codes, dropping all %d leads", batch.File, len(batch.Leads))
	}

	kept := make([]*models.Lead, 0, len(batch.Leads))
	for _, l := range batch.Leads {
		if m.Matches(l.Address) {
			kept = append(kept, l)
		}
	}

	m.logger.Info("[zipmatch] %s: %d → %d leads in target zips", batch.File, len(batch.Leads), len(kept))
	out := *batch
	out.Leads = kept
	return &out
}

// tail returns the last n runes of s, or s itself when shorter.
func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
