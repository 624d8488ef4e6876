package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	e "github.com/gartstein/compliance/internal/checklist/errors"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/gartstein/compliance/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const dateLayout = time.DateOnly

type createCompanyRequest struct {
	Name               string  `json:"name"`
	RegistrationNumber string  `json:"registration_number"`
	Alias              string  `json:"alias"`
	NextAnnualReturn   *string `json:"next_annual_return"`
}

type setTagsRequest struct {
	TagIDs []string `json:"tag_ids"`
}

type createTagRequest struct {
	Name string `json:"name"`
}

type createDefinitionRequest struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	DaysFromAnchor int    `json:"days_from_anchor"`
	Global         bool   `json:"global"`
}

type updateDefinitionRequest struct {
	Description    *string `json:"description"`
	DaysFromAnchor *int    `json:"days_from_anchor"`
}

type createBusinessRequest struct {
	Name string `json:"name"`
}

type tagResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type tagListResponse struct {
	Tags []tagResponse `json:"tags"`
}

type companyResponse struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	RegistrationNumber string        `json:"registration_number"`
	Alias              string        `json:"alias"`
	NextAnnualReturn   *string       `json:"next_annual_return"`
	Tags               []tagResponse `json:"tags"`
	CreatedAt          time.Time     `json:"created_at"`
}

type companySummaryResponse struct {
	companyResponse
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type companyPageResponse struct {
	Companies   []companySummaryResponse `json:"companies"`
	Definitions []definitionResponse     `json:"definitions"`
	Total       int64                    `json:"total"`
	Page        int                      `json:"page"`
	PageSize    int                      `json:"page_size"`
}

type definitionResponse struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	DaysFromAnchor int    `json:"days_from_anchor"`
	Global         bool   `json:"global"`
}

type definitionListResponse struct {
	Definitions []definitionResponse `json:"definitions"`
}

// resolvedDefinitionResponse is one row of a company's checklist. DueDate is
// null when the company has no anchor date.
type resolvedDefinitionResponse struct {
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	DueDate     *string    `json:"due_date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CompletedBy *string    `json:"completed_by"`
}

type resolvedListResponse struct {
	Definitions []resolvedDefinitionResponse `json:"definitions"`
}

type entryResponse struct {
	Code        string     `json:"code"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CompletedBy *string    `json:"completed_by"`
}

type refreshResponse struct {
	CompanyID   string    `json:"company_id"`
	RequestedAt time.Time `json:"requested_at"`
}

type businessResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (r *createCompanyRequest) toModel() (*models.Company, error) {
	company := &models.Company{
		Name:               r.Name,
		RegistrationNumber: strings.TrimSpace(r.RegistrationNumber),
		Alias:              strings.TrimSpace(r.Alias),
	}
	if r.NextAnnualReturn != nil && *r.NextAnnualReturn != "" {
		anchor, err := time.Parse(dateLayout, *r.NextAnnualReturn)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid next_annual_return, expected YYYY-MM-DD")
		}
		company.NextAnnualReturn = &anchor
	}
	return company, nil
}

func (r *createDefinitionRequest) toModel() *models.DocumentDefinition {
	return &models.DocumentDefinition{
		Code:           r.Code,
		Name:           r.Name,
		Description:    r.Description,
		DaysFromAnchor: r.DaysFromAnchor,
		IsGlobal:       r.Global,
	}
}

func (r *updateDefinitionRequest) toUpdate(code string) *models.DefinitionUpdate {
	return &models.DefinitionUpdate{
		Code:           code,
		Description:    r.Description,
		DaysFromAnchor: r.DaysFromAnchor,
	}
}

// parseCompanyQuery reads the directory query string. Repeated tag
// parameters are combined with match-any semantics; an absent page defaults
// to 1. Sort and direction are validated by the service.
func parseCompanyQuery(values url.Values, defaultPageSize int) (models.CompanyQuery, error) {
	q := models.CompanyQuery{
		Search:    values.Get("search"),
		Sort:      models.SortColumn(values.Get("sort")),
		Direction: models.SortDirection(strings.ToLower(values.Get("direction"))),
		Page:      1,
		PageSize:  defaultPageSize,
	}

	var err error
	if v := values.Get("page"); v != "" {
		if q.Page, err = strconv.Atoi(v); err != nil {
			return q, status.Error(codes.InvalidArgument, "invalid page")
		}
	}
	if v := values.Get("page_size"); v != "" {
		if q.PageSize, err = strconv.Atoi(v); err != nil {
			return q, status.Error(codes.InvalidArgument, "invalid page_size")
		}
	}
	if q.TagIDs, err = parseIDs(values["tag"], "tag ID"); err != nil {
		return q, err
	}
	return q, nil
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s", what)
	}
	return id, nil
}

func parseIDs(raw []string, what string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(r, what)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return utils.Ptr(t.Format(dateLayout))
}

func tagToResponse(tag *models.Tag) tagResponse {
	return tagResponse{ID: tag.ID.String(), Name: tag.Name}
}

func tagsToResponse(tags []models.Tag) []tagResponse {
	out := make([]tagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, tagToResponse(&tags[i]))
	}
	return out
}

func companyToResponse(company *models.Company) companyResponse {
	return companyResponse{
		ID:                 company.ID.String(),
		Name:               company.Name,
		RegistrationNumber: company.RegistrationNumber,
		Alias:              company.Alias,
		NextAnnualReturn:   formatDate(company.NextAnnualReturn),
		Tags:               tagsToResponse(company.Tags),
		CreatedAt:          company.CreatedAt,
	}
}

// pageToResponse hoists the applicable definitions to the page: every
// company of a business shares the same catalog.
func pageToResponse(page *models.CompanyPage) companyPageResponse {
	resp := companyPageResponse{
		Companies:   make([]companySummaryResponse, 0, len(page.Companies)),
		Definitions: []definitionResponse{},
		Total:       page.Total,
		Page:        page.Page,
		PageSize:    page.PageSize,
	}
	for i := range page.Companies {
		summary := &page.Companies[i]
		if i == 0 {
			resp.Definitions = definitionsToResponse(summary.Definitions)
		}
		resp.Companies = append(resp.Companies, companySummaryResponse{
			companyResponse: companyToResponse(&summary.Company),
			Completed:       summary.Completed,
			Total:           summary.Total,
		})
	}
	return resp
}

func definitionToResponse(def *models.DocumentDefinition) definitionResponse {
	return definitionResponse{
		Code:           def.Code,
		Name:           def.Name,
		Description:    def.Description,
		DaysFromAnchor: def.DaysFromAnchor,
		Global:         def.IsGlobal,
	}
}

func definitionsToResponse(defs []models.DocumentDefinition) []definitionResponse {
	out := make([]definitionResponse, 0, len(defs))
	for i := range defs {
		out = append(out, definitionToResponse(&defs[i]))
	}
	return out
}

func resolvedToResponse(r *models.ResolvedDefinition) resolvedDefinitionResponse {
	return resolvedDefinitionResponse{
		Code:        r.Definition.Code,
		Name:        r.Definition.Name,
		Description: r.Definition.Description,
		DueDate:     formatDate(r.DueDate),
		Completed:   r.Entry.Completed,
		CompletedAt: r.Entry.CompletedAt,
		CompletedBy: r.Entry.CompletedBy,
	}
}

func entryToResponse(code string, entry *models.ChecklistEntry) entryResponse {
	return entryResponse{
		Code:        code,
		Completed:   entry.Completed,
		CompletedAt: entry.CompletedAt,
		CompletedBy: entry.CompletedBy,
	}
}

// decode reads a JSON request body into v.
func (h *ChecklistHandler) decode(r *http.Request, v interface{}) error {
	if err := h.marshaler.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return status.Error(codes.InvalidArgument, "request body required")
		}
		return status.Errorf(codes.InvalidArgument, "malformed request body: %v", err)
	}
	return nil
}

func (h *ChecklistHandler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	body, err := h.marshaler.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", h.marshaler.ContentType(v))
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("Failed to write response", zap.Error(err))
	}
}

// writeError renders a gRPC status error with the matching HTTP status.
func (h *ChecklistHandler) writeError(w http.ResponseWriter, err error) {
	st := status.Convert(err)
	code := runtime.HTTPStatusFromCode(st.Code())
	h.writeJSON(w, code, errorResponse{Code: code, Message: st.Message()})
}

// mapServiceError maps domain or repository errors to gRPC status codes.
// Internal details are logged, not returned.
func (h *ChecklistHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, e.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrPermission):
		return status.Error(codes.PermissionDenied, "permission denied")
	case errors.Is(err, e.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, e.ErrTransient):
		h.logger.Warn("Storage unavailable", zap.Error(err))
		return status.Error(codes.Unavailable, "temporarily unavailable, retry later")
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}
}
