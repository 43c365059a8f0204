package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"leadfinder/models"
	"leadfinder/utils"
)

var (
	// onGoogleRegexp matches the "on Google" suffix the scraper leaves on
	// review dates, possibly split over lines.
	onGoogleRegexp = regexp.MustCompile(`on\s*Google`)
	agoRegexp      = regexp.MustCompile(`(?i)\bago\b`)
	// agoPrefixRegexp captures everything up to and including the first "ago".
	agoPrefixRegexp = regexp.MustCompile(`(?is)^.*?\bago\b`)
)

// cleanerColumns are the columns the cleaning steps rely on.
var cleanerColumns = []models.Field{
	models.FieldBusinessType,
	models.FieldSubCategory,
	models.FieldReviews,
	models.FieldRating,
	models.FieldLatestReview,
	models.FieldPhone,
	models.FieldAddress,
}

// CleanerOptions configures the filtering steps.
type CleanerOptions struct {
	Categories         *CategorySpec
	SubCategoryFilters map[string][]string
	CountryFilters     []string
	MinReviews         int
}

// Cleaner turns a RawBatch into a filtered, display-ready Batch.
type Cleaner struct {
	logger *utils.Logger
	opts   CleanerOptions
}

// NewCleaner creates a Cleaner with the given logger and options.
func NewCleaner(logger *utils.Logger, opts CleanerOptions) *Cleaner {
	if opts.Categories == nil {
		opts.Categories = NewCategorySpec("")
	}
	return &Cleaner{logger: logger, opts: opts}
}

type draft struct {
	models.RawRecord
	reviews int
}

// Clean runs every cleaning step over raw. A step whose column is absent
// from the batch is skipped. The returned batch may be empty.
func (c *Cleaner) Clean(raw *models.RawBatch) (*models.Batch, models.StepCounts) {
	counts := models.StepCounts{Input: len(raw.Records)}
	out := &models.Batch{
		File:     raw.File,
		Source:   raw.Source,
		Priority: raw.Priority,
	}

	fields := raw.Fields
	// Placeholders are checked on every input column, the legacy one included.
	placeholderFields := presentFields(raw.Fields)
	rows := make([]*draft, 0, len(raw.Records))
	for _, r := range raw.Records {
		rows = append(rows, &draft{RawRecord: *r})
	}

	// Legacy review-date column stands in for the canonical one.
	if fields.Has(models.FieldLatestReviewDate) && !fields.Has(models.FieldLatestReview) {
		for _, r := range rows {
			r.LatestReview = r.LatestReviewDate
		}
		fields = fields.With(models.FieldLatestReview)
	}
	fields = fields.Without(models.FieldLatestReviewDate)
	out.Fields = fields

	if missing := fields.Missing(cleanerColumns...); len(missing) > 0 {
		c.logger.Warn("[cleaner] %s: missing columns %v, skipping related steps", raw.File, missing)
	}

	if len(rows) == 0 {
		return out, counts
	}

	for _, f := range []models.Field{models.FieldBusinessType, models.FieldSubCategory} {
		if !fields.Has(f) {
			continue
		}
		for _, r := range rows {
			cell := r.Cell(f)
			cell.Value = matchKey(cell.Value)
		}
	}

	before := len(rows)
	rows = keep(rows, func(r *draft) bool {
		for _, f := range placeholderFields {
			if r.Cell(f).Missing {
				return false
			}
		}
		return true
	})
	counts.Placeholder = before - len(rows)

	if fields.Has(models.FieldReviews) {
		for _, r := range rows {
			r.reviews = c.parseReviewCount(r.Reviews.Value)
		}
	}

	if fields.Has(models.FieldLatestReview) {
		before = len(rows)
		rows = keep(rows, func(r *draft) bool {
			v, ok := c.normaliseRecency(r.LatestReview.Value)
			r.LatestReview.Value = v
			return ok
		})
		counts.Recency = before - len(rows)
	}

	switch {
	case c.opts.Categories.Empty():
		c.logger.Warn("[cleaner] %s: no target business types configured, skipping type filter", raw.File)
	case !fields.Has(models.FieldBusinessType):
		c.logger.Warn("[cleaner] %s: %q column not found, skipping type filter", raw.File, models.ColumnBusinessType)
	default:
		before = len(rows)
		rows = keep(rows, func(r *draft) bool {
			return c.opts.Categories.Matches(r.BusinessType.Value)
		})
		counts.Category = before - len(rows)
	}

	if len(c.opts.SubCategoryFilters) > 0 && fields.Has(models.FieldBusinessType) && fields.Has(models.FieldSubCategory) {
		before = len(rows)
		rows = keep(rows, func(r *draft) bool {
			allowed, ok := c.opts.SubCategoryFilters[r.BusinessType.Value]
			if !ok || len(allowed) == 0 {
				return true
			}
			return containsAny(r.SubCategory.Value, allowed)
		})
		counts.SubCategory = before - len(rows)
	}

	if fields.Has(models.FieldAddress) {
		before = len(rows)
		rows = keep(rows, func(r *draft) bool {
			return strings.Contains(r.Address.Value, ",")
		})
		counts.Address = before - len(rows)

		if len(c.opts.CountryFilters) > 0 {
			before = len(rows)
			rows = keep(rows, func(r *draft) bool {
				return containsAny(r.Address.Value, c.opts.CountryFilters)
			})
			counts.Country = before - len(rows)
		}
	}

	if fields.Has(models.FieldReviews) {
		before = len(rows)
		rows = keep(rows, func(r *draft) bool {
			return r.reviews >= c.opts.MinReviews
		})
		counts.Reviews = before - len(rows)
	}

	out.Leads = make([]*models.Lead, 0, len(rows))
	for _, r := range rows {
		out.Leads = append(out.Leads, &models.Lead{
			Source:       raw.Source,
			BusinessType: titleCase(r.BusinessType.Text()),
			SubCategory:  titleCase(r.SubCategory.Text()),
			Name:         titleCase(normaliseText(r.Name.Text())),
			Website:      strings.TrimSpace(r.Website.Text()),
			Reviews:      r.reviews,
			Rating:       strings.TrimSpace(r.Rating.Text()),
			LatestReview: r.LatestReview.Text(),
			Address:      strings.TrimSpace(r.Address.Text()),
			Phone:        strings.TrimSpace(r.Phone.Text()),
			Notes:        r.Notes.Text(),
			Email:        r.Email.Text(),
		})
	}
	counts.Output = len(out.Leads)

	c.logger.Debug("[cleaner] %s: placeholder -%d, recency -%d, type -%d, sub-category -%d, address -%d, country -%d, reviews<%d -%d",
		raw.File, counts.Placeholder, counts.Recency, counts.Category, counts.SubCategory,
		counts.Address, counts.Country, c.opts.MinReviews, counts.Reviews)
	c.logger.Info("[cleaner] %s: cleaned %d → %d leads (dropped %d)",
		raw.File, counts.Input, counts.Output, counts.Input-counts.Output)
	return out, counts
}

// parseReviewCount reads counts such as "1,234" or "(87)". Anything that
// does not parse counts as zero.
func (c *Cleaner) parseReviewCount(raw string) int {
	s := strings.ReplaceAll(raw, ",", "")
	s = strings.Trim(strings.TrimSpace(s), "()")

	if n, err := strconv.Atoi(s); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int(f)
}

// normaliseRecency strips the "on Google" suffix and cuts the text right
// after the first "ago". ok is false when there is no "ago".
func (c *Cleaner) normaliseRecency(raw string) (string, bool) {
	s := strings.TrimSpace(onGoogleRegexp.ReplaceAllString(raw, ""))
	if !agoRegexp.MatchString(s) {
		return s, false
	}
	return strings.TrimSpace(agoPrefixRegexp.FindString(s)), true
}

func presentFields(fields models.FieldSet) []models.Field {
	var out []models.Field
	for f := models.FieldBusinessType; f <= models.FieldEmail; f <<= 1 {
		if fields.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func keep(rows []*draft, pred func(*draft) bool) []*draft {
	out := rows[:0]
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
