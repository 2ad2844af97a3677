package activity

import (
	"crm/infras/otel"
	"crm/internal/domains/activity/model"
	"crm/internal/domains/activity/model/dto"
	"crm/internal/domains/activity/service"
	"crm/shared/constant"
	gDto "crm/shared/dto"
	"crm/shared/validator"
	"crm/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Activity
	otel    otel.Otel
}

func New(service service.Activity, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/activities/follow-ups", handler.GetFollowUps)

	router.Route("/leads/{lead_id}/activities", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateActivity)
		routerGroup.Get("/", handler.GetActivities)
		routerGroup.Get("/{id}", handler.GetActivityByID)
		routerGroup.Patch("/{id}", handler.UpdateActivity)
		routerGroup.Delete("/{id}", handler.DeleteActivity)
		routerGroup.Post("/{id}/complete", handler.CompleteActivity)
	})
}

// CreateActivity logs an activity on a lead.
// @Summary Log an activity on a lead
// @Description Set due_at to schedule a follow-up reminder. The activity is assigned to the caller unless assigned_to is given.
// @Tags Activity
// @Accept json
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param request body dto.CreateActivityRequest true "Create Activity Request"
// @Success 201 {object} response.Data[gDto.IDResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/activities [post]
// @Security BearerAuth
func (handler *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateActivity")
	defer scope.End()

	req := dto.CreateActivityRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id, err := handler.service.Create(ctx, chi.URLParam(r, constant.RequestParamLeadID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create activity")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Activity created successfully")

	response.WithJSON(w, http.StatusCreated, gDto.IDResponse{ID: id})
}

// GetActivities lists the activities of a lead, newest first by default.
// @Summary Get the activities of a lead
// @Tags Activity
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetActivitiesResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/activities [get]
// @Security BearerAuth
func (handler *Handler) GetActivities(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetActivities")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.AllowSort(model.FieldActivityAt, model.FieldActivityAt, model.FieldDueAt, constant.FieldCreatedAt)

	res, err := handler.service.GetAll(ctx, chi.URLParam(r, constant.RequestParamLeadID), queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get activities")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetFollowUps lists the open follow-ups assigned to the caller, soonest due first.
// @Summary Get my open follow-ups
// @Tags Activity
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Success 200 {object} response.Data[dto.GetActivitiesResponse]
// @Failure 500 {object} response.Error
// @Router /v1/activities/follow-ups [get]
// @Security BearerAuth
func (handler *Handler) GetFollowUps(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetFollowUps")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.AllowSort(model.FieldDueAt, model.FieldDueAt)

	if r.URL.Query().Get(constant.RequestParamSortDir) == "" {
		queryParams.SortDir = gDto.SortDirAsc
	}

	res, err := handler.service.FollowUps(ctx, queryParams)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get follow-ups")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetActivityByID retrieves an activity of a lead.
// @Summary Get an activity
// @Tags Activity
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Data[dto.ActivityResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/activities/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetActivityByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetActivityByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamLeadID), chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get activity")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateActivity partially updates a user logged activity.
// @Summary Update an activity
// @Tags Activity
// @Accept json
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param id path string true "Activity ID"
// @Param request body dto.UpdateActivityRequest true "Update Activity Request"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/activities/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateActivity")
	defer scope.End()

	req := dto.UpdateActivityRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	err := handler.service.Update(ctx, chi.URLParam(r, constant.RequestParamLeadID), chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update activity")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Activity updated successfully")

	response.WithMessage(w, http.StatusOK, "Activity updated successfully")
}

// DeleteActivity deletes a user logged activity.
// @Summary Delete an activity
// @Tags Activity
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/activities/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteActivity")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamLeadID), chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete activity")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Activity deleted successfully")

	response.WithMessage(w, http.StatusOK, "Activity deleted successfully")
}

// CompleteActivity marks an activity as done.
// @Summary Complete an activity
// @Tags Activity
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/activities/{id}/complete [post]
// @Security BearerAuth
func (handler *Handler) CompleteActivity(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CompleteActivity")
	defer scope.End()

	if err := handler.service.Complete(ctx, chi.URLParam(r, constant.RequestParamLeadID), chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to complete activity")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Activity completed successfully")

	response.WithMessage(w, http.StatusOK, "Activity completed successfully")
}
