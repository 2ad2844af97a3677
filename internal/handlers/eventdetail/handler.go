package eventdetail

import (
	"crm/infras/otel"
	"crm/internal/domains/eventdetail/model/dto"
	"crm/internal/domains/eventdetail/service"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/validator"
	"crm/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.EventDetail
	otel    otel.Otel
}

func New(service service.EventDetail, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/leads/{lead_id}/event-details", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateEventDetail)
		routerGroup.Get("/", handler.GetEventDetails)
		routerGroup.Get("/{id}", handler.GetEventDetailByID)
		routerGroup.Patch("/{id}", handler.UpdateEventDetail)
		routerGroup.Delete("/{id}", handler.DeleteEventDetail)
	})
}

// CreateEventDetail adds a function line to a lead.
// @Summary Add an event detail to a lead
// @Description The event date must fall within the stay of the lead and end_time must be after start_time.
// @Tags EventDetail
// @Accept json
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param request body dto.CreateEventDetailRequest true "Create Event Detail Request"
// @Success 201 {object} response.Data[gDto.IDResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/event-details [post]
// @Security BearerAuth
func (handler *Handler) CreateEventDetail(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateEventDetail")
	defer scope.End()

	req := dto.CreateEventDetailRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id, err := handler.service.Create(ctx, chi.URLParam(r, constant.RequestParamLeadID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create event detail")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Event detail created successfully")

	response.WithJSON(w, http.StatusCreated, gDto.IDResponse{ID: id})
}

// GetEventDetails lists the lines of a lead ordered by day and start time.
// @Summary Get the event details of a lead
// @Tags EventDetail
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Success 200 {object} response.Data[dto.GetEventDetailsResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/event-details [get]
// @Security BearerAuth
func (handler *Handler) GetEventDetails(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEventDetails")
	defer scope.End()

	res, err := handler.service.GetAll(ctx, chi.URLParam(r, constant.RequestParamLeadID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get event details")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetEventDetailByID retrieves one line of a lead.
// @Summary Get an event detail
// @Tags EventDetail
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param id path string true "Event Detail ID"
// @Success 200 {object} response.Data[dto.EventDetailResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/event-details/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetEventDetailByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetEventDetailByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamLeadID), chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get event detail")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateEventDetail partially updates a line.
// @Summary Update an event detail
// @Tags EventDetail
// @Accept json
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param id path string true "Event Detail ID"
// @Param request body dto.UpdateEventDetailRequest true "Update Event Detail Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/event-details/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateEventDetail(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateEventDetail")
	defer scope.End()

	req := dto.UpdateEventDetailRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	err := handler.service.Update(ctx, chi.URLParam(r, constant.RequestParamLeadID), chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update event detail")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Event detail updated successfully")

	response.WithMessage(w, http.StatusOK, "Event detail updated successfully")
}

// DeleteEventDetail removes a line.
// @Summary Delete an event detail
// @Tags EventDetail
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param id path string true "Event Detail ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/event-details/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteEventDetail(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteEventDetail")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamLeadID), chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete event detail")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Event detail deleted successfully")

	response.WithMessage(w, http.StatusOK, "Event detail deleted successfully")
}
