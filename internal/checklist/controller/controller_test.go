package controller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/gartstein/compliance/internal/checklist/db"
	e "github.com/gartstein/compliance/internal/checklist/errors"
	"github.com/gartstein/compliance/internal/checklist/metrics"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/gartstein/compliance/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
)

var instantT = time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC)

type scenario struct {
	svc       *ChecklistService
	repo      *db.Repository
	refresher *MockRefresher
	business  uuid.UUID
	acme      *models.Company
	zenith    *models.Company
}

// newScenario builds business B with Acme Ltd and Zenith Co on a fresh SQLite store.
func newScenario(t *testing.T) *scenario {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	repo, err := db.Open(sqlite.Open(db.SQLiteDSN(dsn)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	refresher := &MockRefresher{}
	svc := NewChecklistService(repo, refresher, metrics.New(prometheus.NewRegistry()), zaptest.NewLogger(t), 0)
	svc.now = func() time.Time { return instantT }

	ctx := context.Background()
	business, err := svc.CreateBusiness(ctx, models.Caller{UserID: "root", Admin: true}, "B")
	require.NoError(t, err)

	acme, err := svc.CreateCompany(ctx, business.ID, &models.Company{
		Name:               "Acme Ltd",
		RegistrationNumber: "123456",
		NextAnnualReturn:   utils.Ptr(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	zenith, err := svc.CreateCompany(ctx, business.ID, &models.Company{
		Name:               "Zenith Co",
		RegistrationNumber: "999999",
		NextAnnualReturn:   utils.Ptr(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	return &scenario{svc: svc, repo: repo, refresher: refresher, business: business.ID, acme: acme, zenith: zenith}
}

func (s *scenario) page() models.CompanyQuery {
	return models.CompanyQuery{Sort: models.SortByName, Direction: models.Ascending, Page: 1, PageSize: 20}
}

func TestChecklistScenario(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	page, err := s.svc.ListCompanies(ctx, s.business, s.page())
	require.NoError(t, err)
	require.Len(t, page.Companies, 2)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, "Acme Ltd", page.Companies[0].Company.Name)
	assert.Equal(t, "Zenith Co", page.Companies[1].Company.Name)
	assert.Equal(t, 1, page.Companies[0].Total)
	assert.Equal(t, 0, page.Companies[0].Completed)

	resolved, err := s.svc.ResolveDefinitions(ctx, s.business, s.acme.ID)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	b1 := resolved[0]
	assert.Equal(t, models.AnnualReturnCode, b1.Definition.Code)
	require.NotNil(t, b1.DueDate)
	assert.Equal(t, "2024-02-26", b1.DueDate.Format(time.DateOnly))
	assert.False(t, b1.Entry.Completed)
	assert.Nil(t, b1.Entry.CompletedAt)
	assert.Nil(t, b1.Entry.CompletedBy)

	entry, err := s.svc.Toggle(ctx, s.business, s.acme.ID, models.AnnualReturnCode, "U1")
	require.NoError(t, err)
	assert.True(t, entry.Completed)
	require.NotNil(t, entry.CompletedAt)
	assert.True(t, instantT.Equal(*entry.CompletedAt))
	assert.Equal(t, utils.Ptr("U1"), entry.CompletedBy)

	page, err = s.svc.ListCompanies(ctx, s.business, s.page())
	require.NoError(t, err)
	assert.Equal(t, 1, page.Companies[0].Completed)
	assert.Equal(t, 0, page.Companies[1].Completed)

	entry, err = s.svc.Toggle(ctx, s.business, s.acme.ID, models.AnnualReturnCode, "U1")
	require.NoError(t, err)
	assert.False(t, entry.Completed)
	assert.Nil(t, entry.CompletedAt)
	assert.Nil(t, entry.CompletedBy)

	entries, err := s.svc.EntriesFor(ctx, s.business, s.acme.ID)
	require.NoError(t, err)
	require.Contains(t, entries, models.AnnualReturnCode)
	assert.Equal(t, models.ChecklistEntry{
		CompanyID:    s.acme.ID,
		DefinitionID: b1.Definition.ID,
	}, entries[models.AnnualReturnCode])

	assert.Equal(t, 1.0, testutil.ToFloat64(s.svc.metrics.Toggles.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.svc.metrics.Toggles.WithLabelValues("cleared")))
}

// TestToggleInvariant checks completed == (timestamp != nil) == (actor != nil) after every toggle.
func TestToggleInvariant(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		entry, err := s.svc.Toggle(ctx, s.business, s.zenith.ID, models.AnnualReturnCode, fmt.Sprintf("U%d", i))
		require.NoError(t, err)
		assert.Equal(t, entry.Completed, entry.CompletedAt != nil)
		assert.Equal(t, entry.Completed, entry.CompletedBy != nil)

		stored, err := s.svc.EntriesFor(ctx, s.business, s.zenith.ID)
		require.NoError(t, err)
		got := stored[models.AnnualReturnCode]
		assert.Equal(t, entry.Completed, got.Completed)
		assert.Equal(t, got.Completed, got.CompletedAt != nil)
		assert.Equal(t, got.Completed, got.CompletedBy != nil)
	}
}

func TestEntriesForConcurrentBackfill(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()
	for _, code := range []string{"C1", "C2", "C3"} {
		_, err := s.svc.CreateDefinition(ctx, models.Caller{UserID: "U1", BusinessID: s.business}, &models.DocumentDefinition{
			Code: code, Name: "Form " + code, DaysFromAnchor: 28,
		})
		require.NoError(t, err)
	}

	const callers = 10
	var wg sync.WaitGroup
	results := make(chan map[string]models.ChecklistEntry, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, err := s.svc.EntriesFor(ctx, s.business, s.acme.ID)
			assert.NoError(t, err)
			results <- entries
		}()
	}
	wg.Wait()
	close(results)

	for entries := range results {
		assert.Len(t, entries, 4)
	}

	defs, err := s.svc.ApplicableDefinitions(ctx, s.business, s.acme.ID)
	require.NoError(t, err)
	stored, err := s.repo.Entries(ctx, s.acme.ID, idsOf(defs))
	require.NoError(t, err)
	assert.Len(t, stored, 4)
	assert.Equal(t, 4.0, testutil.ToFloat64(s.svc.metrics.EntriesBackfilled))
}

func TestTenantIsolation(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()
	admin := models.Caller{UserID: "root", Admin: true}

	other, err := s.svc.CreateBusiness(ctx, admin, "Y")
	require.NoError(t, err)
	foreign, err := s.svc.CreateCompany(ctx, other.ID, &models.Company{Name: "Acme Elsewhere", RegistrationNumber: "123456"})
	require.NoError(t, err)

	_, err = s.svc.CreateDefinition(ctx, models.Caller{UserID: "U1", BusinessID: s.business}, &models.DocumentDefinition{
		Code: "X-ONLY", Name: "Business B form", DaysFromAnchor: 10,
	})
	require.NoError(t, err)

	defs, err := s.svc.ApplicableDefinitions(ctx, other.ID, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.AnnualReturnCode}, codesOf(defs))

	defs, err = s.svc.ApplicableDefinitions(ctx, s.business, s.acme.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.AnnualReturnCode, "X-ONLY"}, codesOf(defs))

	_, err = s.svc.Toggle(ctx, other.ID, foreign.ID, "X-ONLY", "U9")
	assert.ErrorIs(t, err, e.ErrNotFound)

	// A company of another business looks exactly like a missing one.
	_, errForeign := s.svc.ResolveDefinitions(ctx, other.ID, s.acme.ID)
	_, errMissing := s.svc.ResolveDefinitions(ctx, other.ID, uuid.New())
	assert.ErrorIs(t, errForeign, e.ErrNotFound)
	assert.Equal(t, errMissing.Error(), errForeign.Error())

	_, err = s.svc.Toggle(ctx, other.ID, s.acme.ID, models.AnnualReturnCode, "U9")
	assert.ErrorIs(t, err, e.ErrNotFound)

	for _, search := range []string{"", "acme", "123456"} {
		q := s.page()
		q.Search = search
		page, err := s.svc.ListCompanies(ctx, other.ID, q)
		require.NoError(t, err)
		for _, c := range page.Companies {
			assert.Equal(t, other.ID, c.Company.BusinessID)
		}
	}
}

func TestResolveDefinitionsUnknownAnchor(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	company, err := s.svc.CreateCompany(ctx, s.business, &models.Company{Name: "No Anchor Ltd"})
	require.NoError(t, err)

	resolved, err := s.svc.ResolveDefinitions(ctx, s.business, company.ID)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Nil(t, resolved[0].DueDate)
}

func TestTagFilterEmptySetMatchesNoFilter(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	tag, err := s.svc.CreateTag(ctx, s.business, "priority")
	require.NoError(t, err)
	_, err = s.svc.SetCompanyTags(ctx, s.business, s.zenith.ID, []uuid.UUID{tag.ID})
	require.NoError(t, err)

	unfiltered, err := s.svc.ListCompanies(ctx, s.business, s.page())
	require.NoError(t, err)

	q := s.page()
	q.TagIDs = []uuid.UUID{}
	empty, err := s.svc.ListCompanies(ctx, s.business, q)
	require.NoError(t, err)
	assert.Equal(t, unfiltered, empty)

	q.TagIDs = []uuid.UUID{tag.ID}
	tagged, err := s.svc.ListCompanies(ctx, s.business, q)
	require.NoError(t, err)
	require.Len(t, tagged.Companies, 1)
	assert.Equal(t, "Zenith Co", tagged.Companies[0].Company.Name)
}

func TestListCompaniesQueryValidation(t *testing.T) {
	business := uuid.New()
	var captured models.CompanyQuery
	repo := &MockRepository{
		listCompanies: func(_ context.Context, _ uuid.UUID, q models.CompanyQuery) ([]models.Company, int64, error) {
			captured = q
			return nil, 0, nil
		},
		applicableDefinitions: func(_ context.Context, _ uuid.UUID) ([]models.DocumentDefinition, error) {
			return nil, nil
		},
		completionCounts: func(_ context.Context, _, _ []uuid.UUID) (map[uuid.UUID]int, error) {
			return map[uuid.UUID]int{}, nil
		},
	}
	svc := NewChecklistService(repo, &MockRefresher{}, metrics.New(prometheus.NewRegistry()), zaptest.NewLogger(t), 50)

	tests := []struct {
		name    string
		query   models.CompanyQuery
		wantErr error
		check   func(t *testing.T, q models.CompanyQuery)
	}{
		{
			name:  "defaults",
			query: models.CompanyQuery{Page: 1, PageSize: 20, Search: "  acme "},
			check: func(t *testing.T, q models.CompanyQuery) {
				assert.Equal(t, models.SortByNextAnnualReturn, q.Sort)
				assert.Equal(t, models.Ascending, q.Direction)
				assert.Equal(t, "acme", q.Search)
			},
		},
		{
			name:  "custom is an alias column",
			query: models.CompanyQuery{Sort: "custom", Direction: models.Descending, Page: 1, PageSize: 20},
			check: func(t *testing.T, q models.CompanyQuery) {
				assert.Equal(t, models.SortByAlias, q.Sort)
			},
		},
		{
			name:  "page size capped",
			query: models.CompanyQuery{Page: 1, PageSize: 10000},
			check: func(t *testing.T, q models.CompanyQuery) {
				assert.Equal(t, 50, q.PageSize)
			},
		},
		{name: "unknown sort column", query: models.CompanyQuery{Sort: "password", Page: 1, PageSize: 20}, wantErr: e.ErrInvalidInput},
		{name: "unknown direction", query: models.CompanyQuery{Direction: "sideways", Page: 1, PageSize: 20}, wantErr: e.ErrInvalidInput},
		{name: "page zero", query: models.CompanyQuery{Page: 0, PageSize: 20}, wantErr: e.ErrInvalidInput},
		{name: "page size zero", query: models.CompanyQuery{Page: 1, PageSize: 0}, wantErr: e.ErrInvalidInput},
		{name: "page offset overflows", query: models.CompanyQuery{Page: 1 << 62, PageSize: 4}, wantErr: e.ErrInvalidInput},
		{name: "page overflows after clamping", query: models.CompanyQuery{Page: math.MaxInt / 40, PageSize: 10000}, wantErr: e.ErrInvalidInput},
		{
			name:  "largest addressable page",
			query: models.CompanyQuery{Page: math.MaxInt / 50, PageSize: 50},
			check: func(t *testing.T, q models.CompanyQuery) {
				assert.Equal(t, math.MaxInt/50, q.Page)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captured = models.CompanyQuery{}
			page, err := svc.ListCompanies(context.Background(), business, tt.query)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, page)
				return
			}
			require.NoError(t, err)
			tt.check(t, captured)
			assert.Equal(t, captured.PageSize, page.PageSize)
		})
	}
}

func TestListCompaniesRejectsForeignRows(t *testing.T) {
	business := uuid.New()
	repo := &MockRepository{
		listCompanies: func(_ context.Context, _ uuid.UUID, _ models.CompanyQuery) ([]models.Company, int64, error) {
			return []models.Company{{ID: uuid.New(), BusinessID: uuid.New(), Name: "Leak"}}, 1, nil
		},
		applicableDefinitions: func(_ context.Context, _ uuid.UUID) ([]models.DocumentDefinition, error) {
			return nil, nil
		},
		completionCounts: func(_ context.Context, _, _ []uuid.UUID) (map[uuid.UUID]int, error) {
			return map[uuid.UUID]int{}, nil
		},
	}
	svc := NewChecklistService(repo, &MockRefresher{}, metrics.New(prometheus.NewRegistry()), zaptest.NewLogger(t), 0)

	_, err := svc.ListCompanies(context.Background(), business, models.CompanyQuery{Page: 1, PageSize: 20})
	assert.Error(t, err)
}

func TestToggleErrors(t *testing.T) {
	business := uuid.New()
	company := &models.Company{ID: uuid.New(), BusinessID: business, Name: "Acme Ltd"}
	b1 := models.DocumentDefinition{ID: uuid.New(), Code: models.AnnualReturnCode, IsGlobal: true, DaysFromAnchor: 56}
	foreignID := uuid.New()
	foreign := models.DocumentDefinition{ID: uuid.New(), Code: "FOREIGN", BusinessID: &foreignID}

	baseRepo := func() *MockRepository {
		return &MockRepository{
			getCompany: func(_ context.Context, b, c uuid.UUID) (*models.Company, error) {
				if b != business || c != company.ID {
					return nil, e.ErrNotFound
				}
				return company, nil
			},
			applicableDefinitions: func(_ context.Context, _ uuid.UUID) ([]models.DocumentDefinition, error) {
				return []models.DocumentDefinition{b1, foreign}, nil
			},
			ensureEntries: func(_ context.Context, _ uuid.UUID, _ []uuid.UUID) (int64, error) {
				return 0, nil
			},
		}
	}

	tests := []struct {
		name      string
		business  uuid.UUID
		code      string
		actor     string
		mockSetup func(*MockRepository)
		wantErr   error
	}{
		{name: "missing actor", business: business, code: models.AnnualReturnCode, wantErr: e.ErrInvalidInput},
		{name: "unknown code", business: business, code: "NOPE", actor: "U1", wantErr: e.ErrNotFound},
		{name: "definition of another business", business: business, code: "FOREIGN", actor: "U1", wantErr: e.ErrNotFound},
		{name: "company of another business", business: uuid.New(), code: models.AnnualReturnCode, actor: "U1", wantErr: e.ErrNotFound},
		{
			name: "storage unavailable", business: business, code: models.AnnualReturnCode, actor: "U1",
			mockSetup: func(m *MockRepository) {
				m.toggleEntry = func(_ context.Context, _, _ uuid.UUID, _ string, _ time.Time) (*models.ChecklistEntry, error) {
					return nil, fmt.Errorf("%w: connection refused", e.ErrTransient)
				}
			},
			wantErr: e.ErrTransient,
		},
		{
			name: "backfill fails", business: business, code: models.AnnualReturnCode, actor: "U1",
			mockSetup: func(m *MockRepository) {
				m.ensureEntries = func(_ context.Context, _ uuid.UUID, _ []uuid.UUID) (int64, error) {
					return 0, errors.New("disk full")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := baseRepo()
			repo.toggleEntry = func(_ context.Context, _, _ uuid.UUID, _ string, _ time.Time) (*models.ChecklistEntry, error) {
				t.Fatal("toggle must not be reached")
				return nil, nil
			}
			if tt.mockSetup != nil {
				tt.mockSetup(repo)
			}
			svc := NewChecklistService(repo, &MockRefresher{}, metrics.New(prometheus.NewRegistry()), zaptest.NewLogger(t), 0)

			entry, err := svc.Toggle(context.Background(), tt.business, company.ID, tt.code, tt.actor)
			assert.Error(t, err)
			assert.Nil(t, entry)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRequestRefresh(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	require.NoError(t, s.svc.RequestRefresh(ctx, s.business, s.acme.ID))

	calls := s.refresher.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, s.acme.ID, calls[0].ID)
	assert.Equal(t, "123456", calls[0].RegistrationNumber)

	err := s.svc.RequestRefresh(ctx, uuid.New(), s.acme.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.Len(t, s.refresher.calls(), 1)
}

func TestDefinitionAdministration(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()
	member := models.Caller{UserID: "U1", BusinessID: s.business}
	admin := models.Caller{UserID: "root", Admin: true}
	outsider := models.Caller{UserID: "U9", BusinessID: uuid.New()}

	_, err := s.svc.CreateDefinition(ctx, member, &models.DocumentDefinition{Code: "G2", Name: "Global", IsGlobal: true})
	assert.ErrorIs(t, err, e.ErrPermission)

	def, err := s.svc.CreateDefinition(ctx, member, &models.DocumentDefinition{Code: " B10 ", Name: "Change of directors", DaysFromAnchor: 14})
	require.NoError(t, err)
	assert.Equal(t, "B10", def.Code)
	require.NotNil(t, def.BusinessID)
	assert.Equal(t, s.business, *def.BusinessID)
	assert.False(t, def.IsGlobal)

	_, err = s.svc.CreateDefinition(ctx, member, &models.DocumentDefinition{Code: "B10", Name: "Again"})
	assert.ErrorIs(t, err, e.ErrAlreadyExists)

	_, err = s.svc.CreateDefinition(ctx, member, &models.DocumentDefinition{Code: "", Name: "No code"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	_, err = s.svc.UpdateDefinition(ctx, outsider, &models.DefinitionUpdate{Code: "B10", DaysFromAnchor: utils.Ptr(1)})
	assert.ErrorIs(t, err, e.ErrNotFound)

	updated, err := s.svc.UpdateDefinition(ctx, member, &models.DefinitionUpdate{Code: "B10", Description: utils.Ptr("within 14 days"), DaysFromAnchor: utils.Ptr(15)})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.DaysFromAnchor)
	assert.Equal(t, "within 14 days", updated.Description)
	assert.Equal(t, "Change of directors", updated.Name)

	_, err = s.svc.UpdateDefinition(ctx, member, &models.DefinitionUpdate{Code: models.AnnualReturnCode, DaysFromAnchor: utils.Ptr(1)})
	assert.ErrorIs(t, err, e.ErrPermission)

	g, err := s.svc.CreateDefinition(ctx, admin, &models.DocumentDefinition{Code: "G2", Name: "Global", IsGlobal: true, DaysFromAnchor: 30})
	require.NoError(t, err)
	assert.Nil(t, g.BusinessID)

	defs, err := s.svc.ListDefinitions(ctx, s.business)
	require.NoError(t, err)
	assert.Equal(t, []string{models.AnnualReturnCode, "B10", "G2"}, codesOf(defs))

	_, err = s.svc.Toggle(ctx, s.business, s.acme.ID, "B10", "U1")
	require.NoError(t, err)

	assert.ErrorIs(t, s.svc.DeleteDefinition(ctx, outsider, "B10"), e.ErrNotFound)
	assert.ErrorIs(t, s.svc.DeleteDefinition(ctx, member, "G2"), e.ErrPermission)
	require.NoError(t, s.svc.DeleteDefinition(ctx, member, "B10"))
	require.NoError(t, s.svc.DeleteDefinition(ctx, admin, "G2"))

	entries, err := s.svc.EntriesFor(ctx, s.business, s.acme.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Contains(t, entries, models.AnnualReturnCode)
}

func TestCompanyAndTagLifecycle(t *testing.T) {
	s := newScenario(t)
	ctx := context.Background()

	_, err := s.svc.CreateBusiness(ctx, models.Caller{UserID: "U1", BusinessID: s.business}, "Sneaky")
	assert.ErrorIs(t, err, e.ErrPermission)

	_, err = s.svc.CreateCompany(ctx, s.business, &models.Company{Name: "   "})
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	company, err := s.svc.CreateCompany(ctx, s.business, &models.Company{
		Name:             "Late Filer Ltd",
		NextAnnualReturn: utils.Ptr(time.Date(2024, time.June, 30, 18, 45, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), *company.NextAnnualReturn)

	_, err = s.svc.CreateTag(ctx, s.business, "")
	assert.ErrorIs(t, err, e.ErrInvalidInput)
	tag, err := s.svc.CreateTag(ctx, s.business, "late")
	require.NoError(t, err)

	tagged, err := s.svc.SetCompanyTags(ctx, s.business, company.ID, []uuid.UUID{tag.ID})
	require.NoError(t, err)
	require.Len(t, tagged.Tags, 1)
	assert.Equal(t, "late", tagged.Tags[0].Name)

	tags, err := s.svc.ListTags(ctx, s.business)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	_, err = s.svc.Toggle(ctx, s.business, company.ID, models.AnnualReturnCode, "U1")
	require.NoError(t, err)

	assert.ErrorIs(t, s.svc.DeleteCompany(ctx, uuid.New(), company.ID), e.ErrNotFound)
	require.NoError(t, s.svc.DeleteCompany(ctx, s.business, company.ID))
	_, err = s.svc.EntriesFor(ctx, s.business, company.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func codesOf(defs []models.DocumentDefinition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Code)
	}
	return out
}
