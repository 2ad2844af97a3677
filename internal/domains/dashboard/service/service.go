package service

import (
	"context"
	"crm/config"
	"crm/infras/otel"
	"crm/internal/domains/dashboard/model"
	"crm/internal/domains/dashboard/model/dto"
	"crm/internal/domains/dashboard/repository"
	"crm/shared"
	"crm/shared/cache"
	"crm/shared/constant"
	"crm/shared/timezone"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Dashboard interface {
	Get(ctx context.Context, filter model.Filter) (dto.DashboardResponse, error)
}

type serviceImpl struct {
	repo  repository.Dashboard
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
}

func New(repo repository.Dashboard, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Dashboard {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, filter model.Filter) (res dto.DashboardResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".dashboard.Get")
	defer scope.End()
	defer scope.TraceIfError(&err)

	key := shared.BuildCacheKey(constant.CacheKeyDashboard, timezone.FormatDate(filter.From), timezone.FormatDate(filter.To), filter.OwnerID)

	return cache.Remember(ctx, s.cache, key, s.cfg.Cache.TTL, func(ctx context.Context) (dto.DashboardResponse, error) {
		return s.aggregate(ctx, filter, timezone.Now())
	})
}

// aggregate runs every dashboard query concurrently.
func (s *serviceImpl) aggregate(ctx context.Context, filter model.Filter, now time.Time) (res dto.DashboardResponse, err error) {
	var (
		totals   []model.StatusTotal
		created  []time.Time
		revenue  []model.DayAmount
		upcoming []model.UpcomingEvent
		overdue  int
	)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() (err error) {
		totals, err = s.repo.StatusTotals(gctx, filter)

		return wrap("status totals", err)
	})

	group.Go(func() (err error) {
		created, err = s.repo.CreatedAt(gctx, filter)

		return wrap("leads per month", err)
	})

	group.Go(func() (err error) {
		revenue, err = s.repo.ConfirmedRevenue(gctx, filter)

		return wrap("confirmed revenue", err)
	})

	group.Go(func() (err error) {
		upcoming, err = s.repo.UpcomingEvents(gctx, today, today.AddDate(0, 0, model.UpcomingDays), filter.OwnerID, model.UpcomingLimit)

		return wrap("upcoming events", err)
	})

	group.Go(func() (err error) {
		overdue, err = s.repo.OverdueFollowUps(gctx, now, filter.OwnerID)

		return wrap("overdue follow-ups", err)
	})

	if err = group.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to aggregate dashboard")

		return res, err
	}

	res.From = timezone.FormatDate(filter.From)
	res.To = timezone.FormatDate(filter.To)
	res.OwnerID = filter.OwnerID
	res.SetStatuses(totals)
	res.SetLeadsPerMonth(model.CountByMonth(filter.From, filter.To, created))
	res.SetRevenuePerMonth(model.SumByMonth(filter.From, filter.To, revenue))
	res.SetUpcomingEvents(upcoming)
	res.OverdueFollowUps = overdue

	return res, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", what, err)
	}

	return nil
}
