package controller

import (
	"context"
	"sync"
	"time"

	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
)

// MockRepository implements the Repository interface for testing.
// Unset functions panic when called.
type MockRepository struct {
	createBusiness        func(context.Context, *models.Business) error
	createCompany         func(context.Context, *models.Company) error
	getCompany            func(context.Context, uuid.UUID, uuid.UUID) (*models.Company, error)
	deleteCompany         func(context.Context, uuid.UUID, uuid.UUID) error
	listCompanies         func(context.Context, uuid.UUID, models.CompanyQuery) ([]models.Company, int64, error)
	completionCounts      func(context.Context, []uuid.UUID, []uuid.UUID) (map[uuid.UUID]int, error)
	createTag             func(context.Context, *models.Tag) error
	listTags              func(context.Context, uuid.UUID) ([]models.Tag, error)
	setCompanyTags        func(context.Context, uuid.UUID, uuid.UUID, []uuid.UUID) error
	applicableDefinitions func(context.Context, uuid.UUID) ([]models.DocumentDefinition, error)
	getDefinition         func(context.Context, string) (*models.DocumentDefinition, error)
	createDefinition      func(context.Context, *models.DocumentDefinition) error
	updateDefinition      func(context.Context, *models.DefinitionUpdate) error
	deleteDefinition      func(context.Context, string) error
	ensureEntries         func(context.Context, uuid.UUID, []uuid.UUID) (int64, error)
	entries               func(context.Context, uuid.UUID, []uuid.UUID) ([]models.ChecklistEntry, error)
	toggleEntry           func(context.Context, uuid.UUID, uuid.UUID, string, time.Time) (*models.ChecklistEntry, error)
}

func (m *MockRepository) CreateBusiness(ctx context.Context, b *models.Business) error {
	return m.createBusiness(ctx, b)
}

func (m *MockRepository) CreateCompany(ctx context.Context, c *models.Company) error {
	return m.createCompany(ctx, c)
}

func (m *MockRepository) GetCompany(ctx context.Context, businessID, companyID uuid.UUID) (*models.Company, error) {
	return m.getCompany(ctx, businessID, companyID)
}

func (m *MockRepository) DeleteCompany(ctx context.Context, businessID, companyID uuid.UUID) error {
	return m.deleteCompany(ctx, businessID, companyID)
}

func (m *MockRepository) ListCompanies(ctx context.Context, businessID uuid.UUID, q models.CompanyQuery) ([]models.Company, int64, error) {
	return m.listCompanies(ctx, businessID, q)
}

func (m *MockRepository) CompletionCounts(ctx context.Context, companyIDs, definitionIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	return m.completionCounts(ctx, companyIDs, definitionIDs)
}

func (m *MockRepository) CreateTag(ctx context.Context, tag *models.Tag) error {
	return m.createTag(ctx, tag)
}

func (m *MockRepository) ListTags(ctx context.Context, businessID uuid.UUID) ([]models.Tag, error) {
	return m.listTags(ctx, businessID)
}

func (m *MockRepository) SetCompanyTags(ctx context.Context, businessID, companyID uuid.UUID, tagIDs []uuid.UUID) error {
	return m.setCompanyTags(ctx, businessID, companyID, tagIDs)
}

func (m *MockRepository) ApplicableDefinitions(ctx context.Context, businessID uuid.UUID) ([]models.DocumentDefinition, error) {
	return m.applicableDefinitions(ctx, businessID)
}

func (m *MockRepository) GetDefinition(ctx context.Context, code string) (*models.DocumentDefinition, error) {
	return m.getDefinition(ctx, code)
}

func (m *MockRepository) CreateDefinition(ctx context.Context, def *models.DocumentDefinition) error {
	return m.createDefinition(ctx, def)
}

func (m *MockRepository) UpdateDefinition(ctx context.Context, update *models.DefinitionUpdate) error {
	return m.updateDefinition(ctx, update)
}

func (m *MockRepository) DeleteDefinition(ctx context.Context, code string) error {
	return m.deleteDefinition(ctx, code)
}

func (m *MockRepository) EnsureEntries(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) (int64, error) {
	return m.ensureEntries(ctx, companyID, ids)
}

func (m *MockRepository) Entries(ctx context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]models.ChecklistEntry, error) {
	return m.entries(ctx, companyID, ids)
}

func (m *MockRepository) ToggleEntry(ctx context.Context, companyID, definitionID uuid.UUID, actor string, now time.Time) (*models.ChecklistEntry, error) {
	return m.toggleEntry(ctx, companyID, definitionID, actor, now)
}

// MockRefresher records refresh requests.
type MockRefresher struct {
	mu        sync.Mutex
	requested []*models.Company
}

func (m *MockRefresher) RequestRefresh(company *models.Company) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requested = append(m.requested, company)
}

func (m *MockRefresher) calls() []*models.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Company(nil), m.requested...)
}
