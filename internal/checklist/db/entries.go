package db

import (
	"context"
	"fmt"
	"time"

	dbmodels "github.com/gartstein/compliance/internal/checklist/db/models"
	e "github.com/gartstein/compliance/internal/checklist/errors"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// maxToggleAttempts bounds the compare-and-swap loop in ToggleEntry.
const maxToggleAttempts = 5

// EnsureEntries inserts a blank entry for every definition the company has
// none for. Existing rows are left untouched, so concurrent callers cannot
// create duplicates. It returns the number of rows inserted.
func (r *Repository) EnsureEntries(ctx context.Context, companyID uuid.UUID, definitionIDs []uuid.UUID) (int64, error) {
	if len(definitionIDs) == 0 {
		return 0, nil
	}
	rows := make([]dbmodels.ChecklistEntry, 0, len(definitionIDs))
	for _, id := range definitionIDs {
		rows = append(rows, dbmodels.ChecklistEntry{CompanyID: companyID, DefinitionID: id})
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&rows)
	if result.Error != nil {
		return 0, classify(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *Repository) Entries(ctx context.Context, companyID uuid.UUID, definitionIDs []uuid.UUID) ([]models.ChecklistEntry, error) {
	if len(definitionIDs) == 0 {
		return nil, nil
	}
	var rows []dbmodels.ChecklistEntry
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND definition_id IN ?", companyID, definitionIDs).
		Find(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	entries := make([]models.ChecklistEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, entryToDomain(&rows[i]))
	}
	return entries, nil
}

// ToggleEntry flips the completion flag of one entry. Each attempt is a single
// UPDATE conditioned on the flag value just read, writing the flag, timestamp
// and actor together. A lost race re-reads and tries again.
func (r *Repository) ToggleEntry(ctx context.Context, companyID, definitionID uuid.UUID, actor string, now time.Time) (*models.ChecklistEntry, error) {
	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		var current dbmodels.ChecklistEntry
		err := r.db.WithContext(ctx).
			Where("company_id = ? AND definition_id = ?", companyID, definitionID).
			Take(&current).Error
		if err != nil {
			return nil, classify(err)
		}

		next := models.ChecklistEntry{
			CompanyID:    companyID,
			DefinitionID: definitionID,
			Completed:    !current.Completed,
		}
		var completedAt, completedBy interface{}
		if next.Completed {
			at, by := now, actor
			next.CompletedAt, next.CompletedBy = &at, &by
			completedAt, completedBy = at, by
		}

		result := r.db.WithContext(ctx).Model(&dbmodels.ChecklistEntry{}).
			Where("company_id = ? AND definition_id = ? AND completed = ?", companyID, definitionID, current.Completed).
			Updates(map[string]interface{}{
				"completed":    next.Completed,
				"completed_at": completedAt,
				"completed_by": completedBy,
			})
		if result.Error != nil {
			return nil, classify(result.Error)
		}
		if result.RowsAffected == 1 {
			return &next, nil
		}
	}
	return nil, fmt.Errorf("%w: entry changed concurrently %d times", e.ErrTransient, maxToggleAttempts)
}

// CompletionCounts returns, per company, how many of the given definitions
// are completed. Companies without completed entries are absent.
func (r *Repository) CompletionCounts(ctx context.Context, companyIDs, definitionIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(companyIDs))
	if len(companyIDs) == 0 || len(definitionIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CompanyID uuid.UUID
		Completed int
	}
	err := r.db.WithContext(ctx).Model(&dbmodels.ChecklistEntry{}).
		Select("company_id, COUNT(*) AS completed").
		Where("company_id IN ? AND definition_id IN ? AND completed = ?", companyIDs, definitionIDs, true).
		Group("company_id").
		Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	for _, row := range rows {
		counts[row.CompanyID] = row.Completed
	}
	return counts, nil
}
