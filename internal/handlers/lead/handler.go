package lead

import (
	"crm/infras/otel"
	"crm/internal/domains/lead/model"
	"crm/internal/domains/lead/model/dto"
	"crm/internal/domains/lead/service"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/validator"
	"crm/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Lead
	otel    otel.Otel
}

func New(service service.Lead, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/leads", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateLead)
		routerGroup.Get("/", handler.GetLeads)
		routerGroup.Get("/{id}", handler.GetLeadByID)
		routerGroup.Patch("/{id}", handler.UpdateLead)
		routerGroup.Delete("/{id}", handler.DeleteLead)
		routerGroup.Post("/{id}/status", handler.ChangeLeadStatus)
	})
}

// CreateLead handles the creation of a new lead.
// @Summary Create a new lead
// @Description Capture an event enquiry. The lead starts as tentative and is owned by the caller unless owner_id is given.
// @Tags Lead
// @Accept json
// @Produce json
// @Param request body dto.CreateLeadRequest true "Create Lead Request"
// @Success 201 {object} response.Data[gDto.IDResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads [post]
// @Security BearerAuth
func (handler *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateLead")
	defer scope.End()

	req := dto.CreateLeadRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create lead")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Lead created successfully")

	response.WithJSON(w, http.StatusCreated, gDto.IDResponse{ID: id})
}

// GetLeads lists leads.
// @Summary Get all leads
// @Tags Lead
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param status query string false "Filter by status" Enums(tentative, confirmed, lost)
// @Param owner_id query string false "Filter by owner"
// @Param event_type query string false "Filter by event type"
// @Param contact_id query string false "Filter by contact"
// @Param organization_id query string false "Filter by organization"
// @Param from query string false "Arrival date from (2006-01-02)"
// @Param to query string false "Arrival date to (2006-01-02)"
// @Param search query string false "Search by event name"
// @Success 200 {object} response.Data[dto.GetLeadsResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads [get]
// @Security BearerAuth
func (handler *Handler) GetLeads(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetLeads")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.AllowSort(model.FieldArrivalDate, model.FieldArrivalDate, model.FieldEventName, model.FieldBudget, model.FieldStatus, constant.FieldCreatedAt)

	filterGroup, err := dto.ListFilter(r.URL.Query())
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	res, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get leads")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetLeadByID retrieves a lead.
// @Summary Get a lead by ID
// @Tags Lead
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} response.Data[dto.LeadResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetLeadByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetLeadByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get lead")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateLead partially updates a lead. Status is not accepted here.
// @Summary Update a lead
// @Tags Lead
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body dto.UpdateLeadRequest true "Update Lead Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateLead")
	defer scope.End()

	req := dto.UpdateLeadRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update lead")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Lead updated successfully")

	response.WithMessage(w, http.StatusOK, "Lead updated successfully")
}

// DeleteLead deletes a lead with its event details, activities and proposals.
// @Summary Delete a lead
// @Tags Lead
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteLead")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete lead")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Lead deleted successfully")

	response.WithMessage(w, http.StatusOK, "Lead deleted successfully")
}

// ChangeLeadStatus moves a lead through its lifecycle.
// @Summary Change the status of a lead
// @Description Allowed: tentative to confirmed or lost, confirmed to lost, lost to tentative. lost_reason is required for lost.
// @Tags Lead
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param request body dto.ChangeStatusRequest true "Change Status Request"
// @Success 200 {object} response.Data[dto.LeadResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{id}/status [post]
// @Security BearerAuth
func (handler *Handler) ChangeLeadStatus(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ChangeLeadStatus")
	defer scope.End()

	req := dto.ChangeStatusRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.ChangeStatus(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to change lead status")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Lead status changed successfully")

	response.WithJSON(w, http.StatusOK, res)
}
