package models

import (
	"github.com/google/uuid"
)

// SortColumn is one of the sortable company columns.
type SortColumn string

const (
	SortByName               SortColumn = "name"
	SortByRegistrationNumber SortColumn = "registration_number"
	SortByNextAnnualReturn   SortColumn = "next_annual_return"
	SortByAlias              SortColumn = "alias"
	SortByCreatedAt          SortColumn = "created_at"
)

// ParseSortColumn maps a public column name to a SortColumn.
// "custom" is accepted as an alias of "alias".
func ParseSortColumn(s string) (SortColumn, bool) {
	switch s {
	case "name":
		return SortByName, true
	case "registration_number":
		return SortByRegistrationNumber, true
	case "next_annual_return":
		return SortByNextAnnualReturn, true
	case "alias", "custom":
		return SortByAlias, true
	case "created_at":
		return SortByCreatedAt, true
	}
	return "", false
}

// SortDirection is asc or desc.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// CompanyQuery describes a directory listing request.
type CompanyQuery struct {
	// Search is matched case-insensitively against name, alias and registration number.
	Search string
	// TagIDs keeps companies carrying at least one of the tags. Empty means no tag filter.
	TagIDs    []uuid.UUID
	Sort      SortColumn
	Direction SortDirection
	Page      int
	PageSize  int
}

// CompanySummary is a listed company with its checklist progress.
type CompanySummary struct {
	Company     Company
	Definitions []DocumentDefinition
	Completed   int
	Total       int
}

// CompanyPage is one page of the directory.
type CompanyPage struct {
	Total     int64
	Page      int
	PageSize  int
	Companies []CompanySummary
}
