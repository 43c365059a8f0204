package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// normaliseText applies NFKC, strips leading/trailing whitespace and
// collapses internal whitespace.
func normaliseText(s string) string {
	s = norm.NFKC.String(s)
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}

// matchKey is the lowercase form used for every category comparison.
func matchKey(s string) string {
	return strings.ToLower(normaliseText(s))
}

// titleCase renders s for display: first letter of every word upper-cased,
// the rest lower-cased. Casers are not safe for concurrent use, so one is
// built per call.
func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}
