package services

import (
	"sort"
	"strings"
)

// CategorySpec is the parsed form of the target business-type phrase.
// Base keeps the canonical categories in first-seen order and drives query
// generation; Match adds singular/plural variants and drives filtering.
type CategorySpec struct {
	Base  []string
	Match map[string]struct{}
}

// NewCategorySpec parses a comma-separated phrase such as
// "Warehouses, factories and gyms". An empty phrase yields an empty spec.
//
// Variants come from a deliberately small heuristic: "-ies" <-> "-y",
// trailing "s" dropped or added. Irregular plurals are not handled.
func NewCategorySpec(phrase string) *CategorySpec {
	spec := &CategorySpec{Match: make(map[string]struct{})}
	if strings.TrimSpace(phrase) == "" {
		return spec
	}

	cleaned := strings.ReplaceAll(phrase, " and", ",")
	seen := make(map[string]struct{})
	for _, part := range strings.Split(cleaned, ",") {
		token := matchKey(part)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		spec.Base = append(spec.Base, token)
	}

	for _, base := range spec.Base {
		for _, v := range variants(base) {
			spec.Match[v] = struct{}{}
		}
	}
	return spec
}

func variants(base string) []string {
	out := []string{base}
	if strings.HasSuffix(base, "s") {
		singular := base[:len(base)-1]
		if strings.HasSuffix(base, "ies") {
			out = append(out, base[:len(base)-3]+"y")
		} else if len(singular) > 1 && (!strings.HasSuffix(singular, "s") || len(singular) < 3) {
			out = append(out, singular)
		}
		return out
	}

	out = append(out, base+"s")
	if n := len(base); n > 1 && base[n-1] == 'y' && !strings.ContainsRune("aeiou", rune(base[n-2])) {
		out = append(out, base[:n-1]+"ies")
	}
	return out
}

// Empty reports whether no category was configured.
func (c *CategorySpec) Empty() bool {
	return len(c.Base) == 0
}

// Matches reports whether a lowercase business type is targeted.
func (c *CategorySpec) Matches(businessType string) bool {
	_, ok := c.Match[businessType]
	return ok
}

// MatchList returns the match set sorted, for logging.
func (c *CategorySpec) MatchList() []string {
	out := make([]string, 0, len(c.Match))
	for v := range c.Match {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
