package db

import (
	"context"

	dbmodels "github.com/gartstein/compliance/internal/checklist/db/models"
	e "github.com/gartstein/compliance/internal/checklist/errors"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (r *Repository) CreateTag(ctx context.Context, tag *models.Tag) error {
	row := dbmodels.Tag{ID: tag.ID, BusinessID: tag.BusinessID, Name: tag.Name}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return classify(err)
	}
	return nil
}

func (r *Repository) ListTags(ctx context.Context, businessID uuid.UUID) ([]models.Tag, error) {
	var rows []dbmodels.Tag
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	tags := make([]models.Tag, 0, len(rows))
	for i := range rows {
		tags = append(tags, tagToDomain(&rows[i]))
	}
	return tags, nil
}

// SetCompanyTags replaces the company's tags. Every tag must belong to the
// company's business.
func (r *Repository) SetCompanyTags(ctx context.Context, businessID, companyID uuid.UUID, tagIDs []uuid.UUID) error {
	return r.WithTransaction(ctx, func(repo *Repository) error {
		var company dbmodels.Company
		err := repo.db.WithContext(ctx).
			Where("id = ? AND business_id = ?", companyID, businessID).
			Take(&company).Error
		if err != nil {
			return classify(err)
		}

		tags := []dbmodels.Tag{}
		if len(tagIDs) > 0 {
			err = repo.db.WithContext(ctx).
				Where("business_id = ? AND id IN ?", businessID, tagIDs).
				Find(&tags).Error
			if err != nil {
				return classify(err)
			}
		}
		if len(tags) != countUnique(tagIDs) {
			return e.ErrNotFound
		}

		association := repo.db.WithContext(ctx).Model(&company).Association("Tags")
		if len(tags) == 0 {
			return classify(association.Clear())
		}
		return classify(association.Replace(tags))
	})
}

func countUnique(ids []uuid.UUID) int {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
