package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/app"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/config"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/database"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/health"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/handler"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/http/router"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/repository"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/security"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewOTPRepository,
	repository.NewSessionRepository,
)

var SecuritySet = wire.NewSet(provideJWTManager)

var ServiceSet = wire.NewSet(
	provideClock,
	provideSessionStore,
	provideTokenService,
	provideSMSSender,
	service.NewAuthService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
	wire.Bind(new(service.SessionTokens), new(*service.TokenService)),
	wire.Bind(new(service.SessionValidator), new(*service.TokenService)),
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewUserHandler,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

// MigrationRunner applies the schema and, when enabled, the demo accounts
// without starting the HTTP stack.
type MigrationRunner struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *slog.Logger
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB, logger *slog.Logger) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db, logger: logger}
}

func (m *MigrationRunner) Run(ctx context.Context) error {
	if err := database.Migrate(m.db); err != nil {
		return err
	}
	if m.cfg.SeedDemoUsers {
		report, err := database.SeedDemoUsers(ctx, m.db, false)
		if err != nil {
			return err
		}
		m.logger.Info("demo users seeded", "created", report.Created, "existing", report.Existing)
	}
	m.logger.Info("migration complete")
	return nil
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideBootstrapLogger(cfg *config.Config) *slog.Logger {
	return observability.NewBootstrapLogger(cfg)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := NewMigrationRunner(cfg, db, logger).Run(context.Background()); err != nil {
		return nil, err
	}
	return db, nil
}

// provideRedisClient returns nil unless sessions live in Redis; every consumer
// treats a nil client as "not configured".
func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if cfg.SessionStore != config.SessionStoreRedis {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret)
}

func provideClock() service.Clock {
	return service.NewSystemClock()
}

func provideSessionStore(cfg *config.Config, redisClient redis.UniversalClient, sessionRepo repository.SessionRepository, clock service.Clock) service.SessionStore {
	if cfg.SessionStore == config.SessionStoreRedis && redisClient != nil {
		return service.NewRedisSessionStore(redisClient, cfg.RedisKeyPrefix, clock)
	}
	return service.NewDBSessionStore(sessionRepo, clock)
}

func provideTokenService(cfg *config.Config, jwt *security.JWTManager, store service.SessionStore) *service.TokenService {
	return service.NewTokenService(jwt, store, cfg.JWTSessionTTL)
}

func provideSMSSender(cfg *config.Config, logger *slog.Logger) service.SMSSender {
	if cfg.SMSProvider != config.SMSProviderTwilio {
		return service.NewLogSMSSender(logger)
	}
	client := &http.Client{
		Timeout:   cfg.SMSSendTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return service.NewTwilioSMSSender(service.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromPhone:  cfg.TwilioFromPhone,
		BaseURL:    cfg.TwilioAPIBaseURL,
	}, client, logger)
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	sessions service.SessionValidator,
	readiness *health.ProbeRunner,
	logger *slog.Logger,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		Sessions:          sessions,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		UsersRequireAdmin: cfg.AuthUsersRequireAdmin,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
		Logger:            logger,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := []health.Checker{health.NewDBChecker(db)}
	if cfg.SessionStore == config.SessionStoreRedis {
		checkers = append(checkers, health.NewRedisChecker(redisClient))
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient)
}
