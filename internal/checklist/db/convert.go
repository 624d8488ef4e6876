package db

import (
	dbmodels "github.com/gartstein/compliance/internal/checklist/db/models"
	"github.com/gartstein/compliance/internal/checklist/models"
)

func companyToDomain(c *dbmodels.Company) models.Company {
	out := models.Company{
		ID:                 c.ID,
		BusinessID:         c.BusinessID,
		Name:               c.Name,
		RegistrationNumber: c.RegistrationNumber,
		Alias:              c.Alias,
		NextAnnualReturn:   c.NextAnnualReturn,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
	for i := range c.Tags {
		out.Tags = append(out.Tags, tagToDomain(&c.Tags[i]))
	}
	return out
}

func tagToDomain(t *dbmodels.Tag) models.Tag {
	return models.Tag{ID: t.ID, BusinessID: t.BusinessID, Name: t.Name}
}

func definitionToDomain(d *dbmodels.DocumentDefinition) models.DocumentDefinition {
	return models.DocumentDefinition{
		ID:             d.ID,
		Code:           d.Code,
		Name:           d.Name,
		Description:    d.Description,
		DaysFromAnchor: d.DaysFromAnchor,
		IsGlobal:       d.IsGlobal,
		BusinessID:     d.BusinessID,
	}
}

func entryToDomain(en *dbmodels.ChecklistEntry) models.ChecklistEntry {
	return models.ChecklistEntry{
		CompanyID:    en.CompanyID,
		DefinitionID: en.DefinitionID,
		Completed:    en.Completed,
		CompletedAt:  en.CompletedAt,
		CompletedBy:  en.CompletedBy,
	}
}
