// Package helper drives the embedded schema migrations.
package helper

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres migrate driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"

	"crm/config"
	"crm/migrations"
)

const (
	ActionUp     = "up"
	ActionDown   = "down"
	ActionStepUp = "step-up"
	ActionDrop   = "drop"
)

// actions maps each action to the migrate call performing it and the log line
// printed once it succeeds.
var actions = map[string]struct {
	run  func(*migrate.Migrate) error
	done string
}{
	ActionUp:     {run: (*migrate.Migrate).Up, done: "Database migrated to the latest version"},
	ActionStepUp: {run: func(m *migrate.Migrate) error { return m.Steps(1) }, done: "Database migrated one step up"},
	ActionDown:   {run: func(m *migrate.Migrate) error { return m.Steps(-1) }, done: "Database rolled back one step"},
	ActionDrop:   {run: (*migrate.Migrate).Down, done: "Database rolled back completely"},
}

func open(cfg *config.Config) (*migrate.Migrate, error) {
	pg := cfg.DB.Postgres
	dsn := pg.Write.URL(pg.Prefix, url.Values{"x-migrations-table": {pg.MigrationTable}})

	source, err := iofs.New(migrations.Postgres, migrations.PostgresDir)
	if err != nil {
		return nil, fmt.Errorf("reading embedded migrations: %w", err)
	}

	mig, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating migrate instance: %w", err)
	}

	return mig, nil
}

// Runner applies action to the write database. A run with nothing to apply
// is not an error.
func Runner(cfg *config.Config, action string) error {
	act, ok := actions[action]
	if !ok {
		return fmt.Errorf("unknown migration action %q", action)
	}

	mig, err := open(cfg)
	if err != nil {
		return err
	}
	defer mig.Close()

	if err = act.run(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s: %w", action, err)
	}

	log.Info().Str("action", action).Msg(act.done)

	return nil
}

// Version reports the applied schema version and whether the last migration failed halfway.
func Version(cfg *config.Config) (uint, bool, error) {
	mig, err := open(cfg)
	if err != nil {
		return 0, false, err
	}
	defer mig.Close()

	version, dirty, err := mig.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("reading migration version: %w", err)
	}

	return version, dirty, nil
}

func Up(cfg *config.Config) error     { return Runner(cfg, ActionUp) }
func StepUp(cfg *config.Config) error { return Runner(cfg, ActionStepUp) }
func Down(cfg *config.Config) error   { return Runner(cfg, ActionDown) }
func Drop(cfg *config.Config) error   { return Runner(cfg, ActionDrop) }
