package models

import (
	"time"

	"github.com/google/uuid"
)

// AnnualReturnCode is the code of the seeded global annual return definition.
const AnnualReturnCode = "B1"

// DocumentDefinition is one statutory filing requirement.
type DocumentDefinition struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Description string
	// DaysFromAnchor is the offset in calendar days from a company's anchor date.
	DaysFromAnchor int
	IsGlobal       bool
	// BusinessID is nil for global definitions.
	BusinessID *uuid.UUID
}

// VisibleTo reports whether the definition applies to companies of the business.
func (d *DocumentDefinition) VisibleTo(businessID uuid.UUID) bool {
	if d.IsGlobal {
		return true
	}
	return d.BusinessID != nil && *d.BusinessID == businessID
}

// DefinitionUpdate carries the editable fields of a definition.
// Pointer types are used to allow partial updates.
type DefinitionUpdate struct {
	Code           string
	Description    *string
	DaysFromAnchor *int
}

// ChecklistEntry is the completion record of one definition for one company.
// Completed is true exactly when CompletedAt and CompletedBy are set.
type ChecklistEntry struct {
	CompanyID    uuid.UUID
	DefinitionID uuid.UUID
	Completed    bool
	CompletedAt  *time.Time
	CompletedBy  *string
}

// ResolvedDefinition is a definition annotated for one company.
type ResolvedDefinition struct {
	Definition DocumentDefinition
	// DueDate is nil when the company has no anchor date.
	DueDate *time.Time
	Entry   ChecklistEntry
}
