package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gartstein/compliance/internal/checklist/duedate"
	e "github.com/gartstein/compliance/internal/checklist/errors"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EntriesFor returns the company's checklist entries keyed by definition
// code, creating blank entries for applicable definitions that lack one.
func (s *ChecklistService) EntriesFor(ctx context.Context, businessID, companyID uuid.UUID) (map[string]models.ChecklistEntry, error) {
	company, err := s.company(ctx, businessID, companyID)
	if err != nil {
		return nil, err
	}
	defs, err := s.definitionsFor(ctx, company.BusinessID)
	if err != nil {
		return nil, err
	}
	byDefinition, err := s.materialize(ctx, company.ID, defs)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]models.ChecklistEntry, len(defs))
	for _, def := range defs {
		entries[def.Code] = byDefinition[def.ID]
	}
	return entries, nil
}

// ResolveDefinitions returns the applicable definitions of a company with
// due dates and completion state. The due date is nil when the company has
// no anchor date.
func (s *ChecklistService) ResolveDefinitions(ctx context.Context, businessID, companyID uuid.UUID) ([]models.ResolvedDefinition, error) {
	company, err := s.company(ctx, businessID, companyID)
	if err != nil {
		return nil, err
	}
	defs, err := s.definitionsFor(ctx, company.BusinessID)
	if err != nil {
		return nil, err
	}
	byDefinition, err := s.materialize(ctx, company.ID, defs)
	if err != nil {
		return nil, err
	}

	resolved := make([]models.ResolvedDefinition, 0, len(defs))
	for i := range defs {
		resolved = append(resolved, models.ResolvedDefinition{
			Definition: defs[i],
			DueDate:    duedate.Annotate(&defs[i], company.NextAnnualReturn),
			Entry:      byDefinition[defs[i].ID],
		})
	}
	return resolved, nil
}

// Toggle flips the completion of one definition for a company. Completing
// records actor and the current time; un-completing clears both.
func (s *ChecklistService) Toggle(ctx context.Context, businessID, companyID uuid.UUID, code, actor string) (*models.ChecklistEntry, error) {
	if actor == "" || len(actor) > maxActorLength {
		return nil, fmt.Errorf("%w: invalid actor", e.ErrInvalidInput)
	}
	company, err := s.company(ctx, businessID, companyID)
	if err != nil {
		return nil, err
	}
	defs, err := s.definitionsFor(ctx, company.BusinessID)
	if err != nil {
		return nil, err
	}
	def, ok := findDefinition(defs, code)
	if !ok {
		return nil, e.ErrNotFound
	}

	inserted, err := s.repo.EnsureEntries(ctx, company.ID, []uuid.UUID{def.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to materialize entry: %w", err)
	}
	s.metrics.AddBackfilled(inserted)

	now := s.now().UTC().Truncate(time.Microsecond)
	entry, err := s.repo.ToggleEntry(ctx, company.ID, def.ID, actor, now)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to toggle entry: %w", err)
	}

	s.metrics.ObserveToggle(entry.Completed)
	s.logger.Info("Checklist entry toggled",
		zap.String("company_id", company.ID.String()),
		zap.String("code", def.Code),
		zap.Bool("completed", entry.Completed),
		zap.String("actor", actor),
	)
	return entry, nil
}

// materialize backfills missing entries and returns all entries of the
// company for defs, keyed by definition id.
func (s *ChecklistService) materialize(ctx context.Context, companyID uuid.UUID, defs []models.DocumentDefinition) (map[uuid.UUID]models.ChecklistEntry, error) {
	ids := idsOf(defs)
	inserted, err := s.repo.EnsureEntries(ctx, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize entries: %w", err)
	}
	s.metrics.AddBackfilled(inserted)

	entries, err := s.repo.Entries(ctx, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	byDefinition := make(map[uuid.UUID]models.ChecklistEntry, len(defs))
	for _, id := range ids {
		byDefinition[id] = models.ChecklistEntry{CompanyID: companyID, DefinitionID: id}
	}
	for _, entry := range entries {
		byDefinition[entry.DefinitionID] = entry
	}
	return byDefinition, nil
}
