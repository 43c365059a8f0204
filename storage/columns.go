package storage

import (
	"strconv"

	"leadfinder/models"
)

// LeadColumns is the fixed column order of every lead output.
var LeadColumns = []string{
	models.ColumnSource,
	models.ColumnBusinessType,
	models.ColumnSubCategory,
	models.ColumnName,
	models.ColumnWebsite,
	models.ColumnReviews,
	models.ColumnRating,
	models.ColumnLatestReview,
	models.ColumnAddress,
	models.ColumnPhone,
	models.ColumnNotes,
	models.ColumnEmail,
}

// leadRecord renders l in LeadColumns order.
func leadRecord(l *models.Lead) []string {
	return []string{
		l.Source,
		l.BusinessType,
		l.SubCategory,
		l.Name,
		l.Website,
		strconv.Itoa(l.Reviews),
		l.Rating,
		l.LatestReview,
		l.Address,
		l.Phone,
		l.Notes,
		l.Email,
	}
}

// parseLeadRecord is the inverse of leadRecord.
func parseLeadRecord(rec []string) *models.Lead {
	get := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	reviews, _ := strconv.Atoi(get(5))
	return &models.Lead{
		Source:       get(0),
		BusinessType: get(1),
		SubCategory:  get(2),
		Name:         get(3),
		Website:      get(4),
		Reviews:      reviews,
		Rating:       get(6),
		LatestReview: get(7),
		Address:      get(8),
		Phone:        get(9),
		Notes:        get(10),
		Email:        get(11),
	}
}
