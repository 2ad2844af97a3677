//go:build wireinject
// +build wireinject

package di

import (
	"crm/config"
	"crm/infras/jwt"
	"crm/infras/kafka"
	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/infras/redis"
	"crm/infras/s3"
	"crm/internal/workers/followup"
	"crm/permissions"
	"crm/shared/cache"
	"crm/transport/http"
	"crm/transport/http/middleware"
	"crm/transport/http/router"

	"github.com/google/wire"

	activityRepository "crm/internal/domains/activity/repository"
	activityService "crm/internal/domains/activity/service"
	authService "crm/internal/domains/auth/service"
	contactRepository "crm/internal/domains/contact/repository"
	contactService "crm/internal/domains/contact/service"
	dashboardRepository "crm/internal/domains/dashboard/repository"
	dashboardService "crm/internal/domains/dashboard/service"
	eventDetailRepository "crm/internal/domains/eventdetail/repository"
	eventDetailService "crm/internal/domains/eventdetail/service"
	leadRepository "crm/internal/domains/lead/repository"
	leadService "crm/internal/domains/lead/service"
	organizationRepository "crm/internal/domains/organization/repository"
	organizationService "crm/internal/domains/organization/service"
	"crm/internal/domains/proposal/pdf"
	proposalRepository "crm/internal/domains/proposal/repository"
	proposalService "crm/internal/domains/proposal/service"
	userRepository "crm/internal/domains/user/repository"
	userService "crm/internal/domains/user/service"

	activityHandler "crm/internal/handlers/activity"
	authHandler "crm/internal/handlers/auth"
	contactHandler "crm/internal/handlers/contact"
	dashboardHandler "crm/internal/handlers/dashboard"
	eventDetailHandler "crm/internal/handlers/eventdetail"
	leadHandler "crm/internal/handlers/lead"
	organizationHandler "crm/internal/handlers/organization"
	proposalHandler "crm/internal/handlers/proposal"
	userHandler "crm/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.Transactor), new(*postgres.Connection)),
	wire.Bind(new(http.Pinger), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var repositories = wire.NewSet(
	userRepository.New,
	organizationRepository.New,
	contactRepository.New,
	leadRepository.New,
	eventDetailRepository.New,
	activityRepository.New,
	proposalRepository.New,
	dashboardRepository.New,
)

var domains = wire.NewSet(
	authService.New,
	userService.New,
	organizationService.New,
	contactService.New,
	wire.Struct(new(leadService.Dependencies), "*"),
	leadService.New,
	eventDetailService.New,
	activityService.New,
	pdf.New,
	wire.Struct(new(proposalService.Dependencies), "*"),
	proposalService.New,
	dashboardService.New,
)

var workers = wire.NewSet(
	followup.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	organizationHandler.New,
	contactHandler.New,
	leadHandler.New,
	eventDetailHandler.New,
	activityHandler.New,
	proposalHandler.New,
	dashboardHandler.New,
	router.New,
)

func InitializeApp() (*App, error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		repositories,
		domains,
		workers,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}, nil
}
