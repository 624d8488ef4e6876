package db

import (
	"context"
	"strings"

	dbmodels "github.com/gartstein/compliance/internal/checklist/db/models"
	e "github.com/gartstein/compliance/internal/checklist/errors"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sortColumns = map[models.SortColumn]string{
	models.SortByName:               "name",
	models.SortByRegistrationNumber: "registration_number",
	models.SortByNextAnnualReturn:   "next_annual_return",
	models.SortByAlias:              "alias",
	models.SortByCreatedAt:          "created_at",
}

func (r *Repository) CreateBusiness(ctx context.Context, business *models.Business) error {
	row := dbmodels.Business{ID: business.ID, Name: business.Name}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return classify(err)
	}
	business.CreatedAt = row.CreatedAt
	return nil
}

func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	row := dbmodels.Company{
		ID:                 company.ID,
		BusinessID:         company.BusinessID,
		Name:               company.Name,
		RegistrationNumber: company.RegistrationNumber,
		Alias:              company.Alias,
		NextAnnualReturn:   company.NextAnnualReturn,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return classify(err)
	}
	company.CreatedAt = row.CreatedAt
	company.UpdatedAt = row.UpdatedAt
	return nil
}

// GetCompany returns ErrNotFound both for unknown ids and for companies of
// another business.
func (r *Repository) GetCompany(ctx context.Context, businessID, companyID uuid.UUID) (*models.Company, error) {
	var row dbmodels.Company
	err := r.db.WithContext(ctx).
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Where("id = ? AND business_id = ?", companyID, businessID).
		Take(&row).Error
	if err != nil {
		return nil, classify(err)
	}
	company := companyToDomain(&row)
	return &company, nil
}

func (r *Repository) DeleteCompany(ctx context.Context, businessID, companyID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", companyID, businessID).
		Delete(&dbmodels.Company{})
	if result.Error != nil {
		return classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// ListCompanies returns one page of the business's companies and the total
// number of matches. The query must already be validated.
func (r *Repository) ListCompanies(ctx context.Context, businessID uuid.UUID, q models.CompanyQuery) ([]models.Company, int64, error) {
	base := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Where("companies.business_id = ?", businessID)

	if q.Search != "" {
		// Both sides go through the dialect's LOWER so an exact-case term
		// always matches, even where LOWER folds ASCII only.
		pattern := "%" + escapeLike(q.Search) + "%"
		base = base.Where(
			`(LOWER(companies.name) LIKE LOWER(?) ESCAPE '\' OR LOWER(companies.alias) LIKE LOWER(?) ESCAPE '\' OR LOWER(companies.registration_number) LIKE LOWER(?) ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	if len(q.TagIDs) > 0 {
		base = base.Where(
			"EXISTS (SELECT 1 FROM company_tags WHERE company_tags.company_id = companies.id AND company_tags.tag_id IN ?)",
			q.TagIDs,
		)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	column, ok := sortColumns[q.Sort]
	if !ok {
		column = sortColumns[models.SortByNextAnnualReturn]
	}

	var rows []dbmodels.Company
	err := base.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name") }).
		Order(clause.OrderByColumn{
			Column: clause.Column{Table: "companies", Name: column},
			Desc:   q.Direction == models.Descending,
		}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "companies", Name: "id"}}).
		Limit(q.PageSize).
		Offset((q.Page - 1) * q.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, classify(err)
	}

	companies := make([]models.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, companyToDomain(&rows[i]))
	}
	return companies, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
