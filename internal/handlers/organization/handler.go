package organization

import (
	"crm/infras/otel"
	"crm/internal/domains/organization/model"
	"crm/internal/domains/organization/model/dto"
	"crm/internal/domains/organization/service"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/validator"
	"crm/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Organization
	otel    otel.Otel
}

func New(service service.Organization, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/organizations", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateOrganization)
		routerGroup.Get("/", handler.GetOrganizations)
		routerGroup.Get("/{id}", handler.GetOrganizationByID)
		routerGroup.Patch("/{id}", handler.UpdateOrganization)
		routerGroup.Delete("/{id}", handler.DeleteOrganization)
	})
}

// CreateOrganization handles the creation of a new organization.
// @Summary Create a new organization
// @Description Create a company record. The optional logo is a png or jpeg data uri of at most 2 MB.
// @Tags Organization
// @Accept json
// @Produce json
// @Param request body dto.CreateOrganizationRequest true "Create Organization Request"
// @Success 201 {object} response.Data[gDto.IDResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/organizations [post]
// @Security BearerAuth
func (handler *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateOrganization")
	defer scope.End()

	req := dto.CreateOrganizationRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create organization")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Organization created successfully")

	response.WithJSON(w, http.StatusCreated, gDto.IDResponse{ID: id})
}

// GetOrganizations lists organizations.
// @Summary Get all organizations
// @Tags Organization
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param search query string false "Search by name"
// @Param city query string false "Filter by city"
// @Param industry query string false "Filter by industry"
// @Success 200 {object} response.Data[dto.GetOrganizationsResponse]
// @Failure 500 {object} response.Error
// @Router /v1/organizations [get]
// @Security BearerAuth
func (handler *Handler) GetOrganizations(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOrganizations")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.AllowSort(model.FieldName, model.FieldName, model.FieldCity, constant.FieldCreatedAt)

	query := r.URL.Query()

	filterGroup := gDto.NewFilterGroup()
	filterGroup.AddIfNotEmpty(model.FieldName, gDto.FilterOperatorLike, model.TableName, query.Get(constant.RequestParamSearch))
	filterGroup.AddIfNotEmpty(model.FieldCity, gDto.FilterOperatorEq, model.TableName, query.Get(model.FieldCity))
	filterGroup.AddIfNotEmpty(model.FieldIndustry, gDto.FilterOperatorEq, model.TableName, query.Get(model.FieldIndustry))

	res, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get organizations")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetOrganizationByID retrieves an organization.
// @Summary Get an organization by ID
// @Tags Organization
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} response.Data[dto.OrganizationResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/organizations/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetOrganizationByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOrganizationByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get organization")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateOrganization partially updates an organization.
// @Summary Update an organization
// @Tags Organization
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param request body dto.UpdateOrganizationRequest true "Update Organization Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/organizations/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateOrganization")
	defer scope.End()

	req := dto.UpdateOrganizationRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update organization")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Organization updated successfully")

	response.WithMessage(w, http.StatusOK, "Organization updated successfully")
}

// DeleteOrganization deletes an organization that no lead or contact references.
// @Summary Delete an organization
// @Tags Organization
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/organizations/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteOrganization")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete organization")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Organization deleted successfully")

	response.WithMessage(w, http.StatusOK, "Organization deleted successfully")
}
