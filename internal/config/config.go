package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// AppNameEnv is the environment variable for the application name reported by /status.
	AppNameEnv = "APP_NAME"

	// AppVersionEnv is the environment variable for the version exported as app_info.
	AppVersionEnv = "APP_VERSION"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "PGHOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "PGPORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "PGUSER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "PGPASSWORD"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "PGDATABASE"

	// DBSSLModeEnv is the environment variable for the TLS mode of database connections.
	DBSSLModeEnv = "PGSSLMODE"

	// DBDriverEnv selects the database/sql driver: "pgx" or "postgres" (lib/pq).
	DBDriverEnv = "DB_DRIVER"

	// DBMaxOpenConnsEnv is the environment variable for the connection pool bound.
	DBMaxOpenConnsEnv = "DB_MAX_OPEN_CONNS"

	// DBMaxIdleConnsEnv is the environment variable for the idle connection bound.
	DBMaxIdleConnsEnv = "DB_MAX_IDLE_CONNS"

	// DBConnMaxLifetimeEnv is the environment variable for the maximum connection lifetime.
	DBConnMaxLifetimeEnv = "DB_CONN_MAX_LIFETIME"

	// DBAcquireTimeoutEnv is the environment variable for the connection acquisition timeout.
	DBAcquireTimeoutEnv = "DB_ACQUIRE_TIMEOUT"

	// DBInitOnStartEnv makes the service run migrations and seeding at startup.
	DBInitOnStartEnv = "DB_INIT_ON_START"

	// DBHealthIntervalEnv is the period of the background DB health probe.
	DBHealthIntervalEnv = "DB_HEALTH_INTERVAL"

	// SlowQueryDelayEnv is the artificial delay used by the slow products endpoint.
	SlowQueryDelayEnv = "SLOW_QUERY_DELAY"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// Env is the environment variable for environment name.
	Env = "ENV"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// OTLPEndpointEnv enables OTLP/HTTP trace export when set.
	OTLPEndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"

	// OTelServiceNameEnv is the service name attached to exported spans.
	OTelServiceNameEnv = "OTEL_SERVICE_NAME"

	// LocalhostEnv is the constant for localhost.
	LocalhostEnv = "localhost"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"
)

// Database drivers accepted by DBDriverEnv.
const (
	DriverPgx = "pgx"
	DriverPQ  = "postgres"
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")

	// ErrInvalidConfig is returned when a configuration value is present but not usable.
	ErrInvalidConfig = errors.New("invalid config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	App           App
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	Tracing       Tracing
	AWS           AWSConfig
}

// App holds the identity reported by /status and app_info.
type App struct {
	Name    string
	Version string
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// DB represents database configuration settings.
type DB struct {
	Driver   string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AcquireTimeout  time.Duration

	InitOnStart    bool
	HealthInterval time.Duration
	SlowQueryDelay time.Duration
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// Tracing holds OpenTelemetry exporter settings.
type Tracing struct {
	Endpoint    string
	ServiceName string
}

// Enabled reports whether spans should be exported.
func (t Tracing) Enabled() bool {
	return t.Endpoint != ""
}

// DSN returns the connection URL understood by both pgx and lib/pq.
func (d DB) DSN() string {
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	if d.AcquireTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(max(1, int(d.AcquireTimeout/time.Second))))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	// Validate database configuration
	if err := allNonEmpty(map[string]string{
		DBHostEnv:    c.Database.Host,
		DBUserEnv:    c.Database.User,
		DBNameEnv:    c.Database.Name,
		DBSSLModeEnv: c.Database.SSLMode,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	if c.Database.Driver != DriverPgx && c.Database.Driver != DriverPQ {
		return fmt.Errorf("%w: %s must be %q or %q, got %q", ErrInvalidConfig, DBDriverEnv, DriverPgx, DriverPQ, c.Database.Driver)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, DBMaxOpenConnsEnv)
	}

	if c.Database.AcquireTimeout <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, DBAcquireTimeoutEnv)
	}

	// Validate server ports
	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv: c.HTTPServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	// Validate port numbers
	ports := map[string]string{
		DBPortEnv:         c.Database.Port,
		HTTPServerPortEnv: c.HTTPServer.Port,
	}
	if c.MetricsServer.Port != "" {
		ports[MetricsServerPortEnv] = c.MetricsServer.Port
	}
	if err := allNumbers(ports); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	// The health event queue is optional but needs a region once enabled
	if c.AWS.SQSQueueURL != "" {
		if err := allNonEmpty(map[string]string{
			AWSRegionEnv: c.AWS.Region,
		}); err != nil {
			return fmt.Errorf("AWS configuration incomplete: %w", err)
		}
	}

	return nil
}

func getEnv(name, defaultValue string) string {
	if val, ok := os.LookupEnv(name); ok && val != "" {
		return val
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if val, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("ignoring malformed duration", slog.String("key", name), slog.String("value", raw))
		return defaultValue
	}
	return val
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		App: App{
			Name:    getEnv(AppNameEnv, "NR demo"),
			Version: getEnv(AppVersionEnv, "1.0.0"),
		},
		Database: DB{
			Driver:          getEnv(DBDriverEnv, DriverPgx),
			Host:            getEnv(DBHostEnv, LocalhostEnv),
			User:            getEnv(DBUserEnv, "demo"),
			Password:        os.Getenv(DBPassEnv),
			Name:            getEnv(DBNameEnv, "postgres"),
			Port:            getEnv(DBPortEnv, "5432"),
			SSLMode:         getEnv(DBSSLModeEnv, "require"),
			MaxOpenConns:    getEnvAsInt(DBMaxOpenConnsEnv, 10),
			MaxIdleConns:    getEnvAsInt(DBMaxIdleConnsEnv, 5),
			ConnMaxLifetime: getEnvAsDuration(DBConnMaxLifetimeEnv, 30*time.Minute),
			AcquireTimeout:  getEnvAsDuration(DBAcquireTimeoutEnv, 5*time.Second),
			InitOnStart:     getEnvAsBool(DBInitOnStartEnv, false),
			HealthInterval:  getEnvAsDuration(DBHealthIntervalEnv, 15*time.Second),
			SlowQueryDelay:  getEnvAsDuration(SlowQueryDelayEnv, 400*time.Millisecond),
		},
		HTTPServer: Server{
			Port: getEnv(HTTPServerPortEnv, "5000"),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		Tracing: Tracing{
			Endpoint:    os.Getenv(OTLPEndpointEnv),
			ServiceName: getEnv(OTelServiceNameEnv, "apm-demo-service"),
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
