package controller

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	e "github.com/gartstein/compliance/internal/checklist/errors"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ListCompanies returns one page of the business's companies matching
// query, each annotated with the applicable definitions and how many of
// them are completed.
func (s *ChecklistService) ListCompanies(ctx context.Context, businessID uuid.UUID, query models.CompanyQuery) (*models.CompanyPage, error) {
	defer s.metrics.ObserveList(time.Now())

	q, err := s.normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	var (
		companies []models.Company
		total     int64
		defs      []models.DocumentDefinition
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		companies, total, err = s.repo.ListCompanies(gctx, businessID, q)
		if err != nil {
			return fmt.Errorf("failed to list companies: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		defs, err = s.definitionsFor(gctx, businessID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	companyIDs := make([]uuid.UUID, 0, len(companies))
	for _, c := range companies {
		companyIDs = append(companyIDs, c.ID)
	}
	counts, err := s.repo.CompletionCounts(ctx, companyIDs, idsOf(defs))
	if err != nil {
		return nil, fmt.Errorf("failed to count completed entries: %w", err)
	}

	page := &models.CompanyPage{
		Total:     total,
		Page:      q.Page,
		PageSize:  q.PageSize,
		Companies: make([]models.CompanySummary, 0, len(companies)),
	}
	for _, c := range companies {
		if c.BusinessID != businessID {
			return nil, fmt.Errorf("company %s listed outside business %s", c.ID, businessID)
		}
		page.Companies = append(page.Companies, models.CompanySummary{
			Company:     c,
			Definitions: defs,
			Completed:   counts[c.ID],
			Total:       len(defs),
		})
	}
	return page, nil
}

// normalizeQuery applies defaults, validates sort and paging, and caps the
// page size.
func (s *ChecklistService) normalizeQuery(query models.CompanyQuery) (models.CompanyQuery, error) {
	q := query
	q.Search = strings.TrimSpace(q.Search)

	if q.Sort == "" {
		q.Sort = models.SortByNextAnnualReturn
	}
	sort, ok := models.ParseSortColumn(string(q.Sort))
	if !ok {
		return q, fmt.Errorf("%w: unknown sort column %q", e.ErrInvalidInput, q.Sort)
	}
	q.Sort = sort

	switch q.Direction {
	case "":
		q.Direction = models.Ascending
	case models.Ascending, models.Descending:
	default:
		return q, fmt.Errorf("%w: unknown sort direction %q", e.ErrInvalidInput, q.Direction)
	}

	if q.Page < 1 {
		return q, fmt.Errorf("%w: page must be at least 1", e.ErrInvalidInput)
	}
	if q.PageSize < 1 {
		return q, fmt.Errorf("%w: page size must be positive", e.ErrInvalidInput)
	}
	if q.PageSize > s.maxPageSize {
		q.PageSize = s.maxPageSize
	}
	if q.Page > math.MaxInt/q.PageSize {
		return q, fmt.Errorf("%w: page %d out of range", e.ErrInvalidInput, q.Page)
	}
	return q, nil
}
