// Package config loads the service configuration from the environment. A
// .env file in the working directory is read first when present.
package config

import (
	"fmt"
	"net"
	"net/url"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"crm/shared/constant"
)

type Config struct {
	Server struct {
		Env                 string `envconfig:"ENV"`
		LogLevel            string `envconfig:"LOG_LEVEL"`
		Port                string `envconfig:"PORT"`
		Host                string `envconfig:"HOST"`
		ReadTimeoutSeconds  int    `envconfig:"READ_TIMEOUT_SECONDS"  default:"15"`
		WriteTimeoutSeconds int    `envconfig:"WRITE_TIMEOUT_SECONDS" default:"60"`
		Shutdown            struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		Timezone string `envconfig:"TIMEZONE"`
		APIKey   string `envconfig:"API_KEY"`
		CORS     struct {
			Enable           bool     `envconfig:"ENABLE"`
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
	} `envconfig:"APP"`

	JWT struct {
		AccessSecret     string `envconfig:"ACCESS_SECRET"`
		RefreshSecret    string `envconfig:"REFRESH_SECRET"`
		AccessExpireMin  int    `envconfig:"ACCESS_EXPIRE_MIN"  default:"15"`
		RefreshExpireMin int    `envconfig:"REFRESH_EXPIRE_MIN" default:"10080"`
	} `envconfig:"JWT"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
				PoolSize int    `envconfig:"POOL_SIZE" default:"10"`
			} `envconfig:"PRIMARY"`
			DialTimeoutSec int `envconfig:"DIAL_TIMEOUT_SEC" default:"5"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL" default:"300"`
	} `envconfig:"CACHE"`

	DB struct {
		Postgres Postgres `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Enable  bool     `envconfig:"ENABLE"`
		Brokers []string `envconfig:"BROKERS"`
		SASL    struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		Topics struct {
			LeadStatusChanged string `envconfig:"LEAD_STATUS_CHANGED" default:"crm.lead.status_changed"`
			FollowUpDue       string `envconfig:"FOLLOW_UP_DUE"       default:"crm.activity.followup_due"`
		} `envconfig:"TOPICS"`
	} `envconfig:"KAFKA"`

	Proposal struct {
		TemplatePath  string   `envconfig:"TEMPLATE_PATH"  default:"proposal.yaml"`
		NumberPrefix  string   `envconfig:"NUMBER_PREFIX"  default:"BQT"`
		Currency      string   `envconfig:"CURRENCY"       default:"USD"`
		Currencies    []string `envconfig:"CURRENCIES"     default:"USD,EUR,IDR,SGD"`
		ServiceCharge float64  `envconfig:"SERVICE_CHARGE" default:"10"`
		TaxPercent    float64  `envconfig:"TAX_PERCENT"    default:"11"`
		ValidityDays  int      `envconfig:"VALIDITY_DAYS"  default:"14"`
		StorageDir    string   `envconfig:"STORAGE_DIR"    default:"proposals"`
	} `envconfig:"PROPOSAL"`

	Worker struct {
		FollowUp struct {
			Enable          bool `envconfig:"ENABLE"`
			IntervalSeconds int  `envconfig:"INTERVAL_SECONDS" default:"300"`
			BatchSize       int  `envconfig:"BATCH_SIZE"       default:"100"`
		} `envconfig:"FOLLOW_UP"`
	} `envconfig:"WORKER"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
		S3 struct {
			APIEndpoint     string `envconfig:"API_ENDPOINT"`
			AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
			BucketName      string `envconfig:"BUCKET_NAME"`
			PublicDomain    string `envconfig:"PUBLIC_DOMAIN"`
			Region          string `envconfig:"REGION" default:"auto"`
		} `envconfig:"S3"`
	} `envconfig:"EXTERNAL"`
}

// Postgres holds one endpoint for reads and one for writes. They may point at
// the same server.
type Postgres struct {
	MaxRetry           int    `envconfig:"MAX_RETRY"             default:"5"`
	RetryWaitTime      int    `envconfig:"RETRY_WAIT_TIME"       default:"2"`
	MaxOpenConns       int    `envconfig:"MAX_OPEN_CONNS"        default:"10"`
	MaxIdleConns       int    `envconfig:"MAX_IDLE_CONNS"        default:"10"`
	ConnMaxLifetimeSec int    `envconfig:"CONN_MAX_LIFETIME_SEC" default:"1800"`
	MigrationTable     string `envconfig:"MIGRATION_TABLE"       default:"schema_migrations"`
	AutoMigrate        bool   `envconfig:"AUTO_MIGRATE"`
	Prefix             string `envconfig:"PREFIX"`

	Read  PostgresEndpoint `envconfig:"READ"`
	Write PostgresEndpoint `envconfig:"WRITE"`
}

type PostgresEndpoint struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"     default:"5432"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE"`
	SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
}

// URL renders the endpoint as a postgres:// connection string. The database
// name gets prefix prepended, and extra is merged into the query string.
func (e PostgresEndpoint) URL(prefix string, extra url.Values) string {
	query := url.Values{}
	query.Set("sslmode", e.SSLMode)

	if e.Timezone != "" {
		query.Set("timezone", e.Timezone)
	}

	for key, values := range extra {
		query[key] = values
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.Username, e.Password),
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     "/" + prefix + e.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// IsDevelopment reports whether the service runs with development defaults,
// such as console logging.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == constant.ServerEnvDevelopment
}

var (
	conf    Config
	once    sync.Once
	initErr error
)

// Init reads the environment once. Later calls return the first result.
func Init() error {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Debug().Err(err).Msg("No .env file loaded, using the process environment")
		}

		if err := envconfig.Process("", &conf); err != nil {
			initErr = fmt.Errorf("processing environment: %w", err)

			return
		}

		log.Info().Str("env", conf.Server.Env).Msg("Service configuration initialized")
	})

	return initErr
}

// Get returns the process wide configuration, loading it on first use. A
// configuration that cannot be parsed stops the process.
func Get() *Config {
	if err := Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	return &conf
}
