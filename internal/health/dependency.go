package health

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
)

// CheckFunc adapts a probe function into a named Checker. A nil error is
// healthy; anything else is reported verbatim.
type CheckFunc struct {
	Name  string
	Probe func(ctx context.Context) error
}

func (f CheckFunc) Check(ctx context.Context) CheckResult {
	if err := f.Probe(ctx); err != nil {
		return CheckResult{Name: f.Name, Healthy: false, Error: err.Error()}
	}
	return CheckResult{Name: f.Name, Healthy: true}
}

// NewDBChecker reports ready once the database answers and every table the
// auth flows touch exists. Nil db yields a nil Checker.
func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return CheckFunc{Name: "db", Probe: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return err
		}
		migrator := db.WithContext(ctx).Migrator()
		for _, model := range []any{&domain.User{}, &domain.OTPRecord{}, &domain.Session{}} {
			if !migrator.HasTable(model) {
				return errSchemaNotMigrated
			}
		}
		return nil
	}}
}

var errSchemaNotMigrated = errors.New("schema not migrated")

// NewRedisChecker pings the session store. Nil client yields a nil Checker so
// DB-backed deployments skip it.
func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return CheckFunc{Name: "redis", Probe: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}
