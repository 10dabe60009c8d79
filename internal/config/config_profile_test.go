package config

import (
	"strings"
	"testing"
	"time"
)

func validDevConfig() *Config {
	return &Config{
		Env:                          "development",
		DBDriver:                     DBDriverPostgres,
		DatabaseURL:                  "postgres://x",
		JWTSecret:                    "abcdefghijklmnopqrstuvwxyz123456",
		JWTSessionTTL:                12 * time.Hour,
		AuthOTPTTL:                   5 * time.Minute,
		AuthOTPResetWindow:           15 * time.Minute,
		AuthOTPDebugResponse:         true,
		SMSProvider:                  SMSProviderLog,
		SMSSendTimeout:               5 * time.Second,
		SessionStore:                 SessionStoreDB,
		SeedDemoUsers:                true,
		ReadinessProbeTimeout:        time.Second,
		ShutdownTimeout:              20 * time.Second,
		ShutdownHTTPDrainTimeout:     10 * time.Second,
		ShutdownObservabilityTimeout: 8 * time.Second,
		LogFormat:                    "json",
		OTELTraceSamplingRatio:       1.0,
		OTELMetricsExportInterval:    10 * time.Second,
		OTELLogLevel:                 "info",
	}
}

func TestValidateDevelopmentProfileAllowsRelaxedSettings(t *testing.T) {
	if err := validDevConfig().Validate(); err != nil {
		t.Fatalf("expected relaxed dev validation to pass: %v", err)
	}
}

func TestValidateProdProfileStrictRules(t *testing.T) {
	cfg := validDevConfig()
	cfg.Env = "production"
	cfg.DBDriver = DBDriverSQLite

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected strict prod validation errors")
	}
	for _, want := range []string{
		"AUTH_OTP_DEBUG_RESPONSE must be false in production",
		"SEED_DEMO_USERS must be false in production",
		"SMS_PROVIDER must be twilio in production",
		"DB_DRIVER=sqlite is not allowed in production",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestValidateProdProfileAcceptsHardenedSettings(t *testing.T) {
	cfg := validDevConfig()
	cfg.Env = "production"
	cfg.AuthOTPDebugResponse = false
	cfg.SeedDemoUsers = false
	cfg.SMSProvider = SMSProviderTwilio
	cfg.TwilioAccountSID = "AC123"
	cfg.TwilioAuthToken = "token"
	cfg.TwilioFromPhone = "+15550001111"
	cfg.SessionStore = SessionStoreRedis
	cfg.RedisAddr = "localhost:6379"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected hardened prod config to pass: %v", err)
	}
}

func TestValidateDependentSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"twilio credentials", func(c *Config) { c.SMSProvider = SMSProviderTwilio }, "TWILIO_ACCOUNT_SID"},
		{"redis addr", func(c *Config) { c.SessionStore = SessionStoreRedis }, "REDIS_ADDR is required"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER must be one of"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "JWT_SECRET must be at least 32 chars"},
		{"otp ttl", func(c *Config) { c.AuthOTPTTL = 0 }, "AUTH_OTP_TTL"},
		{"drain exceeds shutdown", func(c *Config) { c.ShutdownHTTPDrainTimeout = time.Minute }, "SHUTDOWN_HTTP_DRAIN_TIMEOUT"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validDevConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "SQLITE")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("JWT_SECRET", "abcdefghijklmnopqrstuvwxyz123456")
	t.Setenv("AUTH_OTP_TTL", "2m")
	t.Setenv("AUTH_USERS_REQUIRE_ADMIN", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != DBDriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.DBDriver)
	}
	if cfg.AuthOTPTTL != 2*time.Minute || cfg.AuthOTPResetWindow != 15*time.Minute {
		t.Fatalf("unexpected otp durations: ttl=%s window=%s", cfg.AuthOTPTTL, cfg.AuthOTPResetWindow)
	}
	if cfg.AuthUsersRequireAdmin {
		t.Fatal("expected users list admin guard disabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.SessionStore != SessionStoreDB || cfg.SMSProvider != SMSProviderLog {
		t.Fatalf("unexpected defaults: store=%s sms=%s", cfg.SessionStore, cfg.SMSProvider)
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("JWT_SECRET", "abcdefghijklmnopqrstuvwxyz123456")
	t.Setenv("AUTH_OTP_TTL", "five minutes")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "AUTH_OTP_TTL") {
		t.Fatalf("expected AUTH_OTP_TTL parse error, got %v", err)
	}
}
