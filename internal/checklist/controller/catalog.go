package controller

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
)

// ApplicableDefinitions returns the global definitions and those owned by the
// company's business, one per code, ordered by code.
func (s *ChecklistService) ApplicableDefinitions(ctx context.Context, businessID, companyID uuid.UUID) ([]models.DocumentDefinition, error) {
	company, err := s.company(ctx, businessID, companyID)
	if err != nil {
		return nil, err
	}
	return s.definitionsFor(ctx, company.BusinessID)
}

// ListDefinitions returns the catalog visible to the business.
func (s *ChecklistService) ListDefinitions(ctx context.Context, businessID uuid.UUID) ([]models.DocumentDefinition, error) {
	return s.definitionsFor(ctx, businessID)
}

func (s *ChecklistService) definitionsFor(ctx context.Context, businessID uuid.UUID) ([]models.DocumentDefinition, error) {
	defs, err := s.repo.ApplicableDefinitions(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve definitions: %w", err)
	}

	visible := make([]models.DocumentDefinition, 0, len(defs))
	for _, def := range defs {
		if def.VisibleTo(businessID) {
			visible = append(visible, def)
		}
	}
	slices.SortStableFunc(visible, func(a, b models.DocumentDefinition) int {
		return cmp.Compare(a.Code, b.Code)
	})
	return slices.CompactFunc(visible, func(a, b models.DocumentDefinition) bool {
		return a.Code == b.Code
	}), nil
}

func findDefinition(defs []models.DocumentDefinition, code string) (*models.DocumentDefinition, bool) {
	for i := range defs {
		if defs[i].Code == code {
			return &defs[i], true
		}
	}
	return nil, false
}

func idsOf(defs []models.DocumentDefinition) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	return ids
}
