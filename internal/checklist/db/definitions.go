package db

import (
	"context"

	dbmodels "github.com/gartstein/compliance/internal/checklist/db/models"
	e "github.com/gartstein/compliance/internal/checklist/errors"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// ApplicableDefinitions returns the global definitions plus those owned by
// the business, ordered by code.
func (r *Repository) ApplicableDefinitions(ctx context.Context, businessID uuid.UUID) ([]models.DocumentDefinition, error) {
	var rows []dbmodels.DocumentDefinition
	err := r.db.WithContext(ctx).
		Where("(is_global = ? OR business_id = ?)", true, businessID).
		Order("code").
		Find(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	defs := make([]models.DocumentDefinition, 0, len(rows))
	for i := range rows {
		defs = append(defs, definitionToDomain(&rows[i]))
	}
	return defs, nil
}

// GetDefinition looks a definition up by code regardless of owner.
func (r *Repository) GetDefinition(ctx context.Context, code string) (*models.DocumentDefinition, error) {
	var row dbmodels.DocumentDefinition
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&row).Error; err != nil {
		return nil, classify(err)
	}
	def := definitionToDomain(&row)
	return &def, nil
}

func (r *Repository) CreateDefinition(ctx context.Context, def *models.DocumentDefinition) error {
	row := dbmodels.DocumentDefinition{
		ID:             def.ID,
		Code:           def.Code,
		Name:           def.Name,
		Description:    def.Description,
		DaysFromAnchor: def.DaysFromAnchor,
		IsGlobal:       def.IsGlobal,
		BusinessID:     def.BusinessID,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return classify(err)
	}
	return nil
}

// UpdateDefinition changes the description and/or offset of a definition.
func (r *Repository) UpdateDefinition(ctx context.Context, update *models.DefinitionUpdate) error {
	changes := map[string]interface{}{}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if update.DaysFromAnchor != nil {
		changes["days_from_anchor"] = *update.DaysFromAnchor
	}
	if len(changes) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&dbmodels.DocumentDefinition{}).
		Where("code = ?", update.Code).
		Updates(changes)
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// DeleteDefinition removes a definition; its checklist entries cascade.
func (r *Repository) DeleteDefinition(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).Where("code = ?", code).Delete(&dbmodels.DocumentDefinition{})
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}
