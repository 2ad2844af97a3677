package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"crm/config"
)

// New connects to the primary Redis and checks it answers a PING.
func New(config *config.Config) (*goRedis.Client, error) {
	primary := config.Cache.Redis.Primary
	timeout := time.Duration(config.Cache.Redis.DialTimeoutSec) * time.Second

	client := goRedis.NewClient(&goRedis.Options{
		Addr:        net.JoinHostPort(primary.Host, primary.Port),
		Password:    primary.Password,
		DB:          primary.DB,
		PoolSize:    primary.PoolSize,
		DialTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), max(timeout, time.Second))
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Str("addr", client.Options().Addr).Msg("Failed to connect to Redis")

		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info().
		Int("db", primary.DB).
		Str("addr", client.Options().Addr).
		Msg("Connected to Redis")

	return client, nil
}
