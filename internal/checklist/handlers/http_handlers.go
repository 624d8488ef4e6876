package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gartstein/compliance/internal/checklist/auth"
	"github.com/gartstein/compliance/internal/checklist/controller"
	"github.com/gartstein/compliance/internal/checklist/models"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ChecklistController defines the business logic interface that the HTTP
// handlers invoke.
type ChecklistController interface {
	ListCompanies(ctx context.Context, businessID uuid.UUID, query models.CompanyQuery) (*models.CompanyPage, error)
	CreateCompany(ctx context.Context, businessID uuid.UUID, company *models.Company) (*models.Company, error)
	DeleteCompany(ctx context.Context, businessID, companyID uuid.UUID) error
	SetCompanyTags(ctx context.Context, businessID, companyID uuid.UUID, tagIDs []uuid.UUID) (*models.Company, error)
	ResolveDefinitions(ctx context.Context, businessID, companyID uuid.UUID) ([]models.ResolvedDefinition, error)
	Toggle(ctx context.Context, businessID, companyID uuid.UUID, code, actor string) (*models.ChecklistEntry, error)
	RequestRefresh(ctx context.Context, businessID, companyID uuid.UUID) error

	CreateTag(ctx context.Context, businessID uuid.UUID, name string) (*models.Tag, error)
	ListTags(ctx context.Context, businessID uuid.UUID) ([]models.Tag, error)

	ListDefinitions(ctx context.Context, businessID uuid.UUID) ([]models.DocumentDefinition, error)
	CreateDefinition(ctx context.Context, caller models.Caller, def *models.DocumentDefinition) (*models.DocumentDefinition, error)
	UpdateDefinition(ctx context.Context, caller models.Caller, update *models.DefinitionUpdate) (*models.DocumentDefinition, error)
	DeleteDefinition(ctx context.Context, caller models.Caller, code string) error

	CreateBusiness(ctx context.Context, caller models.Caller, name string) (*models.Business, error)
}

// ChecklistHandler serves the checklist HTTP API, mapping requests to a
// ChecklistController.
type ChecklistHandler struct {
	service         ChecklistController
	logger          *zap.Logger
	marshaler       *runtime.JSONBuiltin
	defaultPageSize int
}

// NewChecklistHandler constructs a ChecklistHandler. A non-positive
// defaultPageSize falls back to controller.DefaultPageSize.
func NewChecklistHandler(service ChecklistController, logger *zap.Logger, defaultPageSize int) *ChecklistHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = controller.DefaultPageSize
	}
	return &ChecklistHandler{
		service:         service,
		logger:          logger.Named("http_handler"),
		marshaler:       &runtime.JSONBuiltin{},
		defaultPageSize: defaultPageSize,
	}
}

type route struct {
	method  string
	pattern string
	handler runtime.HandlerFunc
}

// Register adds every checklist route to mux.
func (h *ChecklistHandler) Register(mux *runtime.ServeMux) error {
	routes := []route{
		{http.MethodGet, "/v1/companies", h.listCompanies},
		{http.MethodPost, "/v1/companies", h.createCompany},
		{http.MethodDelete, "/v1/companies/{company_id}", h.deleteCompany},
		{http.MethodPut, "/v1/companies/{company_id}/tags", h.setCompanyTags},
		{http.MethodGet, "/v1/companies/{company_id}/definitions", h.resolveDefinitions},
		{http.MethodPost, "/v1/companies/{company_id}/definitions/{code}/toggle", h.toggle},
		{http.MethodPost, "/v1/companies/{company_id}/refresh", h.requestRefresh},
		{http.MethodGet, "/v1/tags", h.listTags},
		{http.MethodPost, "/v1/tags", h.createTag},
		{http.MethodGet, "/v1/definitions", h.listDefinitions},
		{http.MethodPost, "/v1/definitions", h.createDefinition},
		{http.MethodPatch, "/v1/definitions/{code}", h.updateDefinition},
		{http.MethodDelete, "/v1/definitions/{code}", h.deleteDefinition},
		{http.MethodPost, "/v1/businesses", h.createBusiness},
	}
	for _, rt := range routes {
		if err := mux.HandlePath(rt.method, rt.pattern, h.authenticated(rt.handler)); err != nil {
			return err
		}
	}
	return nil
}

// authenticated rejects requests that reached the mux without a caller.
func (h *ChecklistHandler) authenticated(next runtime.HandlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		if _, ok := auth.CallerFromContext(r.Context()); !ok {
			h.writeError(w, status.Error(codes.Unauthenticated, "missing caller"))
			return
		}
		next(w, r, params)
	}
}

func (h *ChecklistHandler) listCompanies(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	query, err := parseCompanyQuery(r.URL.Query(), h.defaultPageSize)
	if err != nil {
		h.writeError(w, err)
		return
	}

	page, err := h.service.ListCompanies(r.Context(), caller.BusinessID, query)
	if err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	h.writeJSON(w, http.StatusOK, pageToResponse(page))
}

func (h *ChecklistHandler) createCompany(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	var req createCompanyRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	company, err := req.toModel()
	if err != nil {
		h.writeError(w, err)
		return
	}

	created, err := h.service.CreateCompany(r.Context(), caller.BusinessID, company)
	if err != nil {
		h.logger.Error("Create company failed", zap.Error(err))
		h.writeError(w, h.mapServiceError(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, companyToResponse(created))
}

func (h *ChecklistHandler) deleteCompany(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	companyID, err := parseID(params["company_id"], "company ID")
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.service.DeleteCompany(r.Context(), caller.BusinessID, companyID); err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChecklistHandler) setCompanyTags(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	companyID, err := parseID(params["company_id"], "company ID")
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req setTagsRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	tagIDs, err := parseIDs(req.TagIDs, "tag ID")
	if err != nil {
		h.writeError(w, err)
		return
	}

	company, err := h.service.SetCompanyTags(r.Context(), caller.BusinessID, companyID, tagIDs)
	if err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	h.writeJSON(w, http.StatusOK, companyToResponse(company))
}

func (h *ChecklistHandler) resolveDefinitions(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	companyID, err := parseID(params["company_id"], "company ID")
	if err != nil {
		h.writeError(w, err)
		return
	}

	resolved, err := h.service.ResolveDefinitions(r.Context(), caller.BusinessID, companyID)
	if err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	resp := resolvedListResponse{Definitions: make([]resolvedDefinitionResponse, 0, len(resolved))}
	for i := range resolved {
		resp.Definitions = append(resp.Definitions, resolvedToResponse(&resolved[i]))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// toggle flips a checklist entry. The actor is always the token subject.
func (h *ChecklistHandler) toggle(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	companyID, err := parseID(params["company_id"], "company ID")
	if err != nil {
		h.writeError(w, err)
		return
	}

	entry, err := h.service.Toggle(r.Context(), caller.BusinessID, companyID, params["code"], caller.UserID)
	if err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	h.writeJSON(w, http.StatusOK, entryToResponse(params["code"], entry))
}

func (h *ChecklistHandler) requestRefresh(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	companyID, err := parseID(params["company_id"], "company ID")
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.service.RequestRefresh(r.Context(), caller.BusinessID, companyID); err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	h.writeJSON(w, http.StatusAccepted, refreshResponse{
		CompanyID:   companyID.String(),
		RequestedAt: time.Now().UTC(),
	})
}

func (h *ChecklistHandler) listTags(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	tags, err := h.service.ListTags(r.Context(), caller.BusinessID)
	if err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	h.writeJSON(w, http.StatusOK, tagListResponse{Tags: tagsToResponse(tags)})
}

func (h *ChecklistHandler) createTag(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	var req createTagRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	tag, err := h.service.CreateTag(r.Context(), caller.BusinessID, req.Name)
	if err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, tagToResponse(tag))
}

func (h *ChecklistHandler) listDefinitions(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	defs, err := h.service.ListDefinitions(r.Context(), caller.BusinessID)
	if err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	h.writeJSON(w, http.StatusOK, definitionListResponse{Definitions: definitionsToResponse(defs)})
}

func (h *ChecklistHandler) createDefinition(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	var req createDefinitionRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	def, err := h.service.CreateDefinition(r.Context(), caller, req.toModel())
	if err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, definitionToResponse(def))
}

func (h *ChecklistHandler) updateDefinition(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	var req updateDefinitionRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	def, err := h.service.UpdateDefinition(r.Context(), caller, req.toUpdate(params["code"]))
	if err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	h.writeJSON(w, http.StatusOK, definitionToResponse(def))
}

func (h *ChecklistHandler) deleteDefinition(w http.ResponseWriter, r *http.Request, params map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	if err := h.service.DeleteDefinition(r.Context(), caller, params["code"]); err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChecklistHandler) createBusiness(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	caller, _ := auth.CallerFromContext(r.Context())
	var req createBusinessRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	business, err := h.service.CreateBusiness(r.Context(), caller, req.Name)
	if err != nil {
		h.writeError(w, h.mapServiceError(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, businessResponse{
		ID:        business.ID.String(),
		Name:      business.Name,
		CreatedAt: business.CreatedAt,
	})
}
