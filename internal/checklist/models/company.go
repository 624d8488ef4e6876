// Package models defines the core domain models of the compliance checklist:
// businesses, their companies and tags, document definitions and the
// per-company checklist entries that record completion.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Business is the tenant boundary. Every other entity is scoped to one.
type Business struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Company defines the domain model for a company managed by a business.
type Company struct {
	// ID is the unique identifier for the company.
	ID uuid.UUID
	// BusinessID is the owning business.
	BusinessID uuid.UUID
	// Name is the registered company name.
	Name string
	// RegistrationNumber is the number issued by the companies registry.
	RegistrationNumber string
	// Alias is a free-text label chosen by the business.
	Alias string
	// NextAnnualReturn is the anchor date for due-date offsets. Nil when unknown.
	NextAnnualReturn *time.Time
	// Tags attached to the company.
	Tags []Tag
	// CreatedAt records when the company was created.
	CreatedAt time.Time
	// UpdatedAt records when the company was last updated.
	UpdatedAt time.Time
}

// Tag is a business-owned label used to filter companies.
type Tag struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	Name       string
}

// Caller identifies who is acting and for which business.
type Caller struct {
	UserID     string
	BusinessID uuid.UUID
	// Admin callers may manage global definitions and businesses.
	Admin bool
}
