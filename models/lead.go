package models

import "strings"

// Field identifies one of the known input columns.
type Field uint16

const (
	FieldBusinessType Field = 1 << iota
	FieldSubCategory
	FieldName
	FieldWebsite
	FieldReviews
	FieldRating
	FieldLatestReview
	FieldLatestReviewDate // legacy name of FieldLatestReview
	FieldAddress
	FieldPhone
	FieldNotes
	FieldEmail
)

// Column headers as they appear in the scraped sheets.
const (
	ColumnSource           = "Source File"
	ColumnBusinessType     = "Type of Business"
	ColumnSubCategory      = "Sub-Category"
	ColumnName             = "Name of Business"
	ColumnWebsite          = "Website"
	ColumnReviews          = "# of Reviews"
	ColumnRating           = "Rating"
	ColumnLatestReview     = "Latest Review"
	ColumnLatestReviewDate = "Latest Review Date"
	ColumnAddress          = "Business Address"
	ColumnPhone            = "Phone Number"
	ColumnNotes            = "Notes"
	ColumnEmail            = "Email"
)

var fieldColumns = []struct {
	field  Field
	column string
}{
	{FieldBusinessType, ColumnBusinessType},
	{FieldSubCategory, ColumnSubCategory},
	{FieldName, ColumnName},
	{FieldWebsite, ColumnWebsite},
	{FieldReviews, ColumnReviews},
	{FieldRating, ColumnRating},
	{FieldLatestReview, ColumnLatestReview},
	{FieldLatestReviewDate, ColumnLatestReviewDate},
	{FieldAddress, ColumnAddress},
	{FieldPhone, ColumnPhone},
	{FieldNotes, ColumnNotes},
	{FieldEmail, ColumnEmail},
}

// Column returns the sheet header for f.
func (f Field) Column() string {
	for _, fc := range fieldColumns {
		if fc.field == f {
			return fc.column
		}
	}
	return ""
}

func (f Field) String() string { return f.Column() }

// FieldForColumn resolves a header (case-insensitive, trimmed) to its Field.
func FieldForColumn(header string) (Field, bool) {
	h := strings.TrimSpace(header)
	for _, fc := range fieldColumns {
		if strings.EqualFold(fc.column, h) {
			return fc.field, true
		}
	}
	return 0, false
}

// FieldSet records which known columns an input batch carries.
type FieldSet uint16

func (s FieldSet) Has(f Field) bool { return s&FieldSet(f) != 0 }

func (s FieldSet) With(f Field) FieldSet { return s | FieldSet(f) }

func (s FieldSet) Without(f Field) FieldSet { return s &^ FieldSet(f) }

// Missing returns the columns of want that are not in s.
func (s FieldSet) Missing(want ...Field) []Field {
	var out []Field
	for _, f := range want {
		if !s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Cell is one raw value. Missing is set when the scraper wrote its
// "no data" placeholder for the column.
type Cell struct {
	Value   string
	Missing bool
}

// Text returns the value, or "" for a missing cell.
func (c Cell) Text() string {
	if c.Missing {
		return ""
	}
	return c.Value
}

// RawRecord holds one unprocessed row exactly as read from an input sheet.
type RawRecord struct {
	BusinessType     Cell
	SubCategory      Cell
	Name             Cell
	Website          Cell
	Reviews          Cell
	Rating           Cell
	LatestReview     Cell
	LatestReviewDate Cell
	Address          Cell
	Phone            Cell
	Notes            Cell
	Email            Cell
}

// Cell returns a pointer to the cell backing f.
func (r *RawRecord) Cell(f Field) *Cell {
	switch f {
	case FieldBusinessType:
		return &r.BusinessType
	case FieldSubCategory:
		return &r.SubCategory
	case FieldName:
		return &r.Name
	case FieldWebsite:
		return &r.Website
	case FieldReviews:
		return &r.Reviews
	case FieldRating:
		return &r.Rating
	case FieldLatestReview:
		return &r.LatestReview
	case FieldLatestReviewDate:
		return &r.LatestReviewDate
	case FieldAddress:
		return &r.Address
	case FieldPhone:
		return &r.Phone
	case FieldNotes:
		return &r.Notes
	case FieldEmail:
		return &r.Email
	}
	return nil
}

// Source priorities. Lower wins during deduplication.
const (
	PriorityList     = 0
	PriorityFallback = 1
)

// RawBatch is the content of one input file.
type RawBatch struct {
	File     string
	Source   string
	Priority int
	Fields   FieldSet
	Records  []*RawRecord
}

// Lead is one cleaned business record.
type Lead struct {
	Source       string
	BusinessType string
	SubCategory  string
	Name         string
	Website      string
	Reviews      int
	Rating       string
	LatestReview string
	Address      string
	Phone        string
	Notes        string
	Email        string
}

// Batch is a cleaned RawBatch.
type Batch struct {
	File     string
	Source   string
	Priority int
	Fields   FieldSet
	Leads    []*Lead
}

// QueryRequest is a (category, zip) pair with no lead in the final set.
type QueryRequest struct {
	Category string
	Location string
	// Preposition joins category and location; "near" for zips, "in" for states.
	Preposition string
}

// Text is the search phrase, e.g. "gym near 28012".
func (q QueryRequest) Text() string {
	prep := q.Preposition
	if prep == "" {
		prep = "near"
	}
	return q.Category + " " + prep + " " + q.Location
}

// String renders the line format the scraper consumes:
//
//	"gym", "gym near 28012"
func (q QueryRequest) String() string {
	return `"` + q.Category + `", "` + q.Text() + `"`
}

// StepCounts holds per-step drop counts for one cleaned batch.
type StepCounts struct {
	Input       int
	Placeholder int
	Recency     int
	Category    int
	SubCategory int
	Address     int
	Country     int
	Reviews     int
	Output      int
}

// CoverageReport summarises the final lead set against the targets.
type CoverageReport struct {
	TotalLeads     int
	AverageReviews float64
	ByType         map[string]int
	BySource       map[string]int
	ByZip          map[string]int
	MissingZips    []string
	TopReviewed    []*Lead
	QueriesCount   int
}
