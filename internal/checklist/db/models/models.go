// Package models contains the persistence models of the checklist store,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Business is a tenant.
type Business struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Business) TableName() string { return "businesses" }

// Company belongs to exactly one business. Deleting the business removes it.
type Company struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BusinessID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	Business           Business   `gorm:"constraint:OnDelete:CASCADE"`
	Name               string     `gorm:"size:255;not null"`
	RegistrationNumber string     `gorm:"size:32;index"`
	Alias              string     `gorm:"size:255"`
	NextAnnualReturn   *time.Time `gorm:"type:date"`
	Tags               []Tag      `gorm:"many2many:company_tags;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (Company) TableName() string { return "companies" }

// Tag is unique by name within a business.
type Tag struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tags_business_name"`
	Business   Business  `gorm:"constraint:OnDelete:CASCADE"`
	Name       string    `gorm:"size:64;not null;uniqueIndex:idx_tags_business_name"`
	CreatedAt  time.Time
}

func (Tag) TableName() string { return "tags" }

// DocumentDefinition has a system-wide unique code. BusinessID is null for
// global definitions.
type DocumentDefinition struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code           string     `gorm:"size:32;not null;uniqueIndex"`
	Name           string     `gorm:"size:255;not null"`
	Description    string     `gorm:"type:text"`
	DaysFromAnchor int        `gorm:"not null;default:0"`
	IsGlobal       bool       `gorm:"not null;default:false;index"`
	BusinessID     *uuid.UUID `gorm:"type:uuid;index"`
	Business       *Business  `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DocumentDefinition) TableName() string { return "document_definitions" }

// ChecklistEntry is keyed by (company_id, definition_id); the composite
// primary key is the uniqueness constraint backfill relies on.
type ChecklistEntry struct {
	CompanyID    uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Company      Company            `gorm:"constraint:OnDelete:CASCADE"`
	DefinitionID uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Definition   DocumentDefinition `gorm:"foreignKey:DefinitionID;constraint:OnDelete:CASCADE"`
	Completed    bool               `gorm:"not null;default:false"`
	CompletedAt  *time.Time
	CompletedBy  *string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ChecklistEntry) TableName() string { return "checklist_entries" }

// All lists the models in migration order.
func All() []interface{} {
	return []interface{}{
		&Business{},
		&Tag{},
		&Company{},
		&DocumentDefinition{},
		&ChecklistEntry{},
	}
}
