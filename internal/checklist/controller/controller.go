// Package controller implements the compliance checklist engine: resolving
// applicable document definitions, materializing and toggling checklist
// entries, and listing a business's companies with their progress.
// Every operation takes the caller's business id explicitly.
package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	e "github.com/gartstein/compliance/internal/checklist/errors"
	"github.com/gartstein/compliance/internal/checklist/metrics"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// RefreshGateway triggers an asynchronous refresh of a company's filed
// submissions. RequestRefresh is called on the request path: implementations
// must return without waiting on the network and report no errors.
type RefreshGateway interface {
	RequestRefresh(company *models.Company)
}

// Repository defines the storage interface for the checklist.
type Repository interface {
	CreateBusiness(ctx context.Context, business *models.Business) error

	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, businessID, companyID uuid.UUID) (*models.Company, error)
	DeleteCompany(ctx context.Context, businessID, companyID uuid.UUID) error
	ListCompanies(ctx context.Context, businessID uuid.UUID, query models.CompanyQuery) ([]models.Company, int64, error)
	CompletionCounts(ctx context.Context, companyIDs, definitionIDs []uuid.UUID) (map[uuid.UUID]int, error)

	CreateTag(ctx context.Context, tag *models.Tag) error
	ListTags(ctx context.Context, businessID uuid.UUID) ([]models.Tag, error)
	SetCompanyTags(ctx context.Context, businessID, companyID uuid.UUID, tagIDs []uuid.UUID) error

	ApplicableDefinitions(ctx context.Context, businessID uuid.UUID) ([]models.DocumentDefinition, error)
	GetDefinition(ctx context.Context, code string) (*models.DocumentDefinition, error)
	CreateDefinition(ctx context.Context, def *models.DocumentDefinition) error
	UpdateDefinition(ctx context.Context, update *models.DefinitionUpdate) error
	DeleteDefinition(ctx context.Context, code string) error

	EnsureEntries(ctx context.Context, companyID uuid.UUID, definitionIDs []uuid.UUID) (int64, error)
	Entries(ctx context.Context, companyID uuid.UUID, definitionIDs []uuid.UUID) ([]models.ChecklistEntry, error)
	ToggleEntry(ctx context.Context, companyID, definitionID uuid.UUID, actor string, now time.Time) (*models.ChecklistEntry, error)
}

// ChecklistService provides the checklist operations on top of a repository
// and a refresh gateway.
type ChecklistService struct {
	repo        Repository
	refresher   RefreshGateway
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
	maxPageSize int
}

// NewChecklistService constructs a ChecklistService. A non-positive
// maxPageSize falls back to MaxPageSize.
func NewChecklistService(repo Repository, refresher RefreshGateway, m *metrics.Metrics, logger *zap.Logger, maxPageSize int) *ChecklistService {
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	return &ChecklistService{
		repo:        repo,
		refresher:   refresher,
		metrics:     m,
		logger:      logger.Named("checklist_service"),
		now:         time.Now,
		maxPageSize: maxPageSize,
	}
}

// company loads a company of the business. Unknown ids and companies of
// other businesses both yield ErrNotFound.
func (s *ChecklistService) company(ctx context.Context, businessID, companyID uuid.UUID) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, businessID, companyID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// RequestRefresh asks for the company's filed submissions to be refreshed
// out of band. It never waits for the refresh.
func (s *ChecklistService) RequestRefresh(ctx context.Context, businessID, companyID uuid.UUID) error {
	company, err := s.company(ctx, businessID, companyID)
	if err != nil {
		return err
	}
	s.refresher.RequestRefresh(company)
	return nil
}
