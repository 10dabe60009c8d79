package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/security"
)

type DemoUser struct {
	Username string
	Email    string
	Phone    string
	Password string
	Role     string
}

var DemoUsers = []DemoUser{
	{Username: "admin", Email: "admin@vibecraft.com", Phone: "+919999999999", Password: "Admin@123", Role: domain.RoleAdmin},
	{Username: "driver", Email: "driver@vibecraft.com", Phone: "+919999999998", Password: "Driver@123", Role: domain.RoleDriver},
	{Username: "demo", Email: "demo@vibecraft.com", Phone: "+919999999997", Password: "Demo@123", Role: domain.RoleAdmin},
}

type SeedReport struct {
	Created  []string `json:"created"`
	Existing []string `json:"existing"`
	DryRun   bool     `json:"dry_run"`
	Noop     bool     `json:"noop"`
}

// SeedDemoUsers inserts the demo accounts that are missing, matched by
// username. Existing rows are never modified.
func SeedDemoUsers(ctx context.Context, db *gorm.DB, dryRun bool) (*SeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "seed", time.Since(start))
	}()

	report := &SeedReport{DryRun: dryRun}
	for _, du := range DemoUsers {
		var existing domain.User
		err := db.WithContext(ctx).Where("username = ?", du.Username).First(&existing).Error
		switch {
		case err == nil:
			report.Existing = append(report.Existing, du.Username)
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			observability.RecordDatabaseStartupEvent(ctx, "seed", "error")
			return nil, fmt.Errorf("lookup %s: %w", du.Username, err)
		}
		if dryRun {
			report.Created = append(report.Created, du.Username)
			continue
		}

		hash, err := security.HashPassword(du.Password)
		if err != nil {
			observability.RecordDatabaseStartupEvent(ctx, "seed", "error")
			return nil, err
		}
		user := &domain.User{
			Username:     du.Username,
			Email:        du.Email,
			Phone:        du.Phone,
			PasswordHash: hash,
			Role:         du.Role,
		}
		if err := db.WithContext(ctx).Create(user).Error; err != nil {
			observability.RecordDatabaseStartupEvent(ctx, "seed", "error")
			return nil, fmt.Errorf("create %s: %w", du.Username, err)
		}
		report.Created = append(report.Created, du.Username)
	}

	report.Noop = len(report.Created) == 0
	observability.RecordDatabaseStartupEvent(ctx, "seed", "success")
	return report, nil
}
