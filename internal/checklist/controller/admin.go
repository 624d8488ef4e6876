package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	e "github.com/gartstein/compliance/internal/checklist/errors"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/gartstein/compliance/internal/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxNameLength  = 255
	maxCodeLength  = 32
	maxRegLength   = 32
	maxTagLength   = 64
	maxActorLength = 64
)

// CreateBusiness registers a new tenant. Only admins may do so.
func (s *ChecklistService) CreateBusiness(ctx context.Context, caller models.Caller, name string) (*models.Business, error) {
	if !caller.Admin {
		return nil, e.ErrPermission
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: invalid business name", e.ErrInvalidInput)
	}

	business := &models.Business{ID: uuid.New(), Name: name}
	if err := s.repo.CreateBusiness(ctx, business); err != nil {
		return nil, fmt.Errorf("failed to create business: %w", err)
	}
	return business, nil
}

// CreateCompany adds a company to the business. Only the date component of
// the anchor is kept.
func (s *ChecklistService) CreateCompany(ctx context.Context, businessID uuid.UUID, company *models.Company) (*models.Company, error) {
	company.Name = strings.TrimSpace(company.Name)
	if company.Name == "" || len(company.Name) > maxNameLength {
		return nil, fmt.Errorf("%w: invalid name", e.ErrInvalidInput)
	}
	if len(company.RegistrationNumber) > maxRegLength {
		return nil, fmt.Errorf("%w: registration number too long", e.ErrInvalidInput)
	}
	if len(company.Alias) > maxNameLength {
		return nil, fmt.Errorf("%w: alias too long", e.ErrInvalidInput)
	}
	if company.NextAnnualReturn != nil {
		y, m, d := company.NextAnnualReturn.Date()
		company.NextAnnualReturn = utils.Ptr(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}

	company.ID = uuid.New()
	company.BusinessID = businessID
	company.Tags = nil
	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return company, nil
}

// DeleteCompany removes a company together with its checklist entries.
func (s *ChecklistService) DeleteCompany(ctx context.Context, businessID, companyID uuid.UUID) error {
	if err := s.repo.DeleteCompany(ctx, businessID, companyID); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete company: %w", err)
	}
	return nil
}

func (s *ChecklistService) CreateTag(ctx context.Context, businessID uuid.UUID, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxTagLength {
		return nil, fmt.Errorf("%w: invalid tag name", e.ErrInvalidInput)
	}
	tag := &models.Tag{ID: uuid.New(), BusinessID: businessID, Name: name}
	if err := s.repo.CreateTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

func (s *ChecklistService) ListTags(ctx context.Context, businessID uuid.UUID) ([]models.Tag, error) {
	tags, err := s.repo.ListTags(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// SetCompanyTags replaces a company's tags with tags of the same business.
func (s *ChecklistService) SetCompanyTags(ctx context.Context, businessID, companyID uuid.UUID, tagIDs []uuid.UUID) (*models.Company, error) {
	if err := s.repo.SetCompanyTags(ctx, businessID, companyID, tagIDs); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to set tags: %w", err)
	}
	return s.company(ctx, businessID, companyID)
}

// CreateDefinition adds a definition owned by the caller's business, or a
// global one when def.IsGlobal is set and the caller is an admin.
func (s *ChecklistService) CreateDefinition(ctx context.Context, caller models.Caller, def *models.DocumentDefinition) (*models.DocumentDefinition, error) {
	def.Code = strings.TrimSpace(def.Code)
	def.Name = strings.TrimSpace(def.Name)
	if def.Code == "" || len(def.Code) > maxCodeLength {
		return nil, fmt.Errorf("%w: invalid code", e.ErrInvalidInput)
	}
	if def.Name == "" || len(def.Name) > maxNameLength {
		return nil, fmt.Errorf("%w: invalid name", e.ErrInvalidInput)
	}

	if def.IsGlobal {
		if !caller.Admin {
			return nil, e.ErrPermission
		}
		def.BusinessID = nil
	} else {
		if caller.BusinessID == uuid.Nil {
			return nil, e.ErrPermission
		}
		businessID := caller.BusinessID
		def.BusinessID = &businessID
	}

	def.ID = uuid.New()
	if err := s.repo.CreateDefinition(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to create definition: %w", err)
	}
	s.logger.Info("Definition created",
		zap.String("code", def.Code),
		zap.Bool("global", def.IsGlobal),
		zap.String("actor", caller.UserID),
	)
	return def, nil
}

// UpdateDefinition edits the description and/or offset of a definition.
func (s *ChecklistService) UpdateDefinition(ctx context.Context, caller models.Caller, update *models.DefinitionUpdate) (*models.DocumentDefinition, error) {
	if _, err := s.manageableDefinition(ctx, caller, update.Code); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDefinition(ctx, update); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update definition: %w", err)
	}
	return s.repo.GetDefinition(ctx, update.Code)
}

// DeleteDefinition removes a definition and every checklist entry for it.
func (s *ChecklistService) DeleteDefinition(ctx context.Context, caller models.Caller, code string) error {
	if _, err := s.manageableDefinition(ctx, caller, code); err != nil {
		return err
	}
	if err := s.repo.DeleteDefinition(ctx, code); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete definition: %w", err)
	}
	s.logger.Info("Definition deleted", zap.String("code", code), zap.String("actor", caller.UserID))
	return nil
}

// manageableDefinition loads a definition the caller may change. Another
// business's definition is reported as not found; a global one needs admin.
func (s *ChecklistService) manageableDefinition(ctx context.Context, caller models.Caller, code string) (*models.DocumentDefinition, error) {
	def, err := s.repo.GetDefinition(ctx, code)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get definition: %w", err)
	}
	if !def.VisibleTo(caller.BusinessID) {
		return nil, e.ErrNotFound
	}
	if def.IsGlobal && !caller.Admin {
		return nil, e.ErrPermission
	}
	return def, nil
}
