package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	SMSProviderLog    = "log"
	SMSProviderTwilio = "twilio"

	SessionStoreDB    = "db"
	SessionStoreRedis = "redis"
)

type Config struct {
	Env      string
	HTTPPort string

	DBDriver    string
	DatabaseURL string

	JWTIssuer          string
	JWTAudience        string
	JWTSecret          string
	JWTSessionTTL      time.Duration
	CORSAllowedOrigins []string

	AuthOTPTTL            time.Duration
	AuthOTPResetWindow    time.Duration
	AuthOTPDebugResponse  bool
	AuthUsersRequireAdmin bool

	SMSProvider      string
	SMSSendTimeout   time.Duration
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromPhone  string
	TwilioAPIBaseURL string

	SessionStore   string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	SeedDemoUsers bool

	ReadinessProbeTimeout        time.Duration
	ServerStartGracePeriod       time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	LogFormat string

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	cfg := &Config{
		Env:      env,
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", DBDriverPostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTIssuer:          getEnv("JWT_ISSUER", "vibecraft-auth-service"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "vibecraft-clients"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		AuthOTPDebugResponse:  getEnvBool("AUTH_OTP_DEBUG_RESPONSE", false),
		AuthUsersRequireAdmin: getEnvBool("AUTH_USERS_REQUIRE_ADMIN", true),

		SMSProvider:      strings.ToLower(getEnv("SMS_PROVIDER", SMSProviderLog)),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromPhone:  os.Getenv("TWILIO_PHONE"),
		TwilioAPIBaseURL: strings.TrimRight(getEnv("TWILIO_API_BASE_URL", "https://api.twilio.com"), "/"),

		SessionStore:   strings.ToLower(getEnv("SESSION_STORE", SessionStoreDB)),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "vibecraft"),

		SeedDemoUsers: getEnvBool("SEED_DEMO_USERS", false),

		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "vibecraft-auth-service"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"JWT_SESSION_TTL", "12h", &cfg.JWTSessionTTL},
		{"AUTH_OTP_TTL", "5m", &cfg.AuthOTPTTL},
		{"AUTH_OTP_RESET_WINDOW", "15m", &cfg.AuthOTPResetWindow},
		{"SMS_SEND_TIMEOUT", "5s", &cfg.SMSSendTimeout},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SERVER_START_GRACE_PERIOD", "2s", &cfg.ServerStartGracePeriod},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	switch c.DBDriver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		errs = append(errs, "DB_DRIVER must be one of postgres, sqlite")
	}
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if c.JWTSessionTTL <= 0 || c.JWTSessionTTL > 30*24*time.Hour {
		errs = append(errs, "JWT_SESSION_TTL must be between 1s and 30d")
	}
	if c.AuthOTPTTL <= 0 || c.AuthOTPTTL > time.Hour {
		errs = append(errs, "AUTH_OTP_TTL must be between 1s and 1h")
	}
	if c.AuthOTPResetWindow <= 0 {
		errs = append(errs, "AUTH_OTP_RESET_WINDOW must be > 0")
	}
	switch c.SMSProvider {
	case SMSProviderLog:
	case SMSProviderTwilio:
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" || c.TwilioFromPhone == "" {
			errs = append(errs, "TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_PHONE are required when SMS_PROVIDER=twilio")
		}
	default:
		errs = append(errs, "SMS_PROVIDER must be one of log, twilio")
	}
	if c.SMSSendTimeout <= 0 {
		errs = append(errs, "SMS_SEND_TIMEOUT must be > 0")
	}
	switch c.SessionStore {
	case SessionStoreDB:
	case SessionStoreRedis:
		if c.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR is required when SESSION_STORE=redis")
		}
	default:
		errs = append(errs, "SESSION_STORE must be one of db, redis")
	}
	if c.RedisDB < 0 {
		errs = append(errs, "REDIS_DB must be >= 0")
	}
	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if c.ServerStartGracePeriod < 0 {
		errs = append(errs, "SERVER_START_GRACE_PERIOD must be >= 0")
	}
	if c.ShutdownTimeout <= 0 || c.ShutdownHTTPDrainTimeout <= 0 || c.ShutdownObservabilityTimeout <= 0 {
		errs = append(errs, "shutdown timeouts must be > 0")
	} else if c.ShutdownHTTPDrainTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_HTTP_DRAIN_TIMEOUT must not exceed SHUTDOWN_TIMEOUT")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, "LOG_FORMAT must be one of json, text")
	}

	if c.IsProduction() {
		if c.AuthOTPDebugResponse {
			errs = append(errs, "AUTH_OTP_DEBUG_RESPONSE must be false in production")
		}
		if c.SeedDemoUsers {
			errs = append(errs, "SEED_DEMO_USERS must be false in production")
		}
		if c.SMSProvider != SMSProviderTwilio {
			errs = append(errs, "SMS_PROVIDER must be twilio in production")
		}
		if c.DBDriver == DBDriverSQLite {
			errs = append(errs, "DB_DRIVER=sqlite is not allowed in production")
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "production", "prod":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
