package dashboard

import (
	"crm/infras/otel"
	"crm/internal/domains/dashboard/model/dto"
	"crm/internal/domains/dashboard/service"
	"crm/shared/constant"
	"crm/shared/timezone"
	"crm/transport/http/response"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Dashboard
	otel    otel.Otel
}

func New(service service.Dashboard, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/dashboard", handler.GetDashboard)
}

// GetDashboard aggregates the pipeline over a date range.
// @Summary Get dashboard statistics
// @Description Lead counts and budget per status, conversion rate, monthly series, upcoming events and overdue follow-ups. The range defaults to the current month and may span at most 366 days.
// @Tags Dashboard
// @Produce json
// @Param from query string false "Range start (2006-01-02)"
// @Param to query string false "Range end, inclusive (2006-01-02)"
// @Param owner_id query string false "Only leads owned by this user"
// @Success 200 {object} response.Data[dto.DashboardResponse]
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/dashboard [get]
// @Security BearerAuth
func (handler *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetDashboard")
	defer scope.End()

	filter, err := dto.ParseFilter(r.URL.Query(), timezone.Today())
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse dashboard filter")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Get(ctx, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get dashboard")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}
