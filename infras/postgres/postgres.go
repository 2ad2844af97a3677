package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/rs/zerolog/log"

	"crm/config"
)

const driverName = "postgres"

// Connection splits traffic between a read pool and a write pool. Repositories
// prepare queries on Read and execute changes on Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

// New opens both pools, retrying each as configured. The process exits when
// a pool cannot be opened.
func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres

	return &Connection{
		Read:  mustConnect("read", pg, pg.Read),
		Write: mustConnect("write", pg, pg.Write),
	}
}

func mustConnect(name string, pg config.Postgres, endpoint config.PostgresEndpoint) *sqlx.DB {
	db, err := Connect(name, pg, endpoint)
	if err != nil {
		log.Fatal().Err(err).Str("pool", name).Msg("Giving up connecting to database")
	}

	return db
}

// Connect dials endpoint up to pg.MaxRetry times, waiting pg.RetryWaitTime
// seconds between attempts, and applies the pool limits.
func Connect(name string, pg config.Postgres, endpoint config.PostgresEndpoint) (*sqlx.DB, error) {
	dsn := endpoint.URL(pg.Prefix, nil)
	attempts := max(pg.MaxRetry, 1)

	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		var db *sqlx.DB

		db, err = sqlx.Connect(driverName, dsn)
		if err == nil {
			db.SetMaxOpenConns(pg.MaxOpenConns)
			db.SetMaxIdleConns(pg.MaxIdleConns)
			db.SetConnMaxLifetime(time.Duration(pg.ConnMaxLifetimeSec) * time.Second)

			log.Info().
				Str("pool", name).
				Str("host", endpoint.Host).
				Str("database", pg.Prefix+endpoint.Name).
				Msg("Connected to database")

			return db, nil
		}

		log.Warn().
			Err(err).
			Str("pool", name).
			Str("host", endpoint.Host).
			Int("attempt", attempt).
			Msg("Failed connecting to database")

		if attempt < attempts {
			time.Sleep(time.Duration(pg.RetryWaitTime) * time.Second)
		}
	}

	return nil, fmt.Errorf("connect %s pool after %d attempts: %w", name, attempts, err)
}

// Transactor runs a unit of work inside a single database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// WithTx runs fn inside a write transaction. The transaction is rolled back
// when fn returns an error or panics, and committed otherwise.
func (c *Connection) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := c.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Ping checks both pools, for health probes.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.Read.PingContext(ctx); err != nil {
		return fmt.Errorf("read pool: %w", err)
	}

	if err := c.Write.PingContext(ctx); err != nil {
		return fmt.Errorf("write pool: %w", err)
	}

	return nil
}
