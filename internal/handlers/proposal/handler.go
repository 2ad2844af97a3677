package proposal

import (
	"crm/infras/otel"
	"crm/internal/domains/proposal/service"
	"crm/shared/constant"
	"crm/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Proposal
	otel    otel.Otel
}

func New(service service.Proposal, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/leads/{lead_id}/proposals", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.GenerateProposal)
		routerGroup.Get("/", handler.GetProposals)
		routerGroup.Get("/preview", handler.PreviewProposal)
		routerGroup.Get("/{id}", handler.GetProposalByID)
		routerGroup.Delete("/{id}", handler.DeleteProposal)
	})
}

// GenerateProposal renders, uploads and records the next proposal version of a lead.
// @Summary Generate a banquet proposal
// @Description Renders the event details of the lead into a PDF, stores it and logs a proposal activity.
// @Tags Proposal
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Success 201 {object} response.Data[dto.ProposalResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/proposals [post]
// @Security BearerAuth
func (handler *Handler) GenerateProposal(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GenerateProposal")
	defer scope.End()

	res, err := handler.service.Generate(ctx, chi.URLParam(r, constant.RequestParamLeadID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to generate proposal")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Proposal generated successfully")

	response.WithJSON(w, http.StatusCreated, res)
}

// PreviewProposal streams a draft of the next proposal without storing it.
// @Summary Preview a banquet proposal
// @Tags Proposal
// @Produce application/pdf
// @Param lead_id path string true "Lead ID"
// @Success 200 {file} file
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/proposals/preview [get]
// @Security BearerAuth
func (handler *Handler) PreviewProposal(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".PreviewProposal")
	defer scope.End()

	file, err := handler.service.Preview(ctx, chi.URLParam(r, constant.RequestParamLeadID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to preview proposal")

		response.WithError(w, err)

		return
	}

	response.WithFile(w, constant.ContentTypePDF, file.Name, file.Content)
}

// GetProposals lists the proposals of a lead, newest version first.
// @Summary Get the proposals of a lead
// @Tags Proposal
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Success 200 {object} response.Data[dto.GetProposalsResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/proposals [get]
// @Security BearerAuth
func (handler *Handler) GetProposals(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetProposals")
	defer scope.End()

	res, err := handler.service.GetAll(ctx, chi.URLParam(r, constant.RequestParamLeadID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get proposals")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// @Summary Get a proposal
// @Tags Proposal
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Data[dto.ProposalResponse]
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/proposals/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetProposalByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetProposalByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamLeadID), chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get proposal")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteProposal removes the record and the stored PDF.
// @Summary Delete a proposal
// @Tags Proposal
// @Produce json
// @Param lead_id path string true "Lead ID"
// @Param id path string true "Proposal ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/leads/{lead_id}/proposals/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteProposal")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamLeadID), chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete proposal")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Proposal deleted successfully")

	response.WithMessage(w, http.StatusOK, "Proposal deleted successfully")
}
