// Package logger configures the global zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"crm/config"
)

// DefaultLevel applies when the configured level is missing or unknown.
const DefaultLevel = zerolog.InfoLevel

// Init points the global logger at stdout. Development gets a console writer,
// every other environment JSON lines tagged with the service name.
func Init(cfg *config.Config) {
	Configure(cfg, os.Stdout)
}

// Configure is Init with an explicit output.
func Configure(cfg *config.Config, out io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsDevelopment() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", cfg.App.Name).
		Logger()

	level := ParseLevel(cfg.Server.LogLevel)
	zerolog.SetGlobalLevel(level)

	log.Debug().Str("level", level.String()).Str("env", cfg.Server.Env).Msg("Logger initialized")
}

// ParseLevel falls back to DefaultLevel for empty or unknown names.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return DefaultLevel
	}

	return level
}

// ErrorWithStack logs err with the stack of the caller.
func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}
