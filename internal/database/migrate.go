package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/domain"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
)

func models() []any {
	return []any{
		&domain.User{},
		&domain.OTPRecord{},
		&domain.Session{},
	}
}

func Migrate(db *gorm.DB) error {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "migrate", time.Since(start))
	}()
	if err := db.AutoMigrate(models()...); err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "error")
		return err
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "success")
	return nil
}

type TableStatus struct {
	Table  string `json:"table"`
	Exists bool   `json:"exists"`
}

// Status reports which managed tables are present without changing the schema.
func Status(db *gorm.DB) ([]TableStatus, error) {
	migrator := db.Migrator()
	out := make([]TableStatus, 0, len(models()))
	for _, m := range models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		out = append(out, TableStatus{Table: stmt.Schema.Table, Exists: migrator.HasTable(m)})
	}
	return out, nil
}
