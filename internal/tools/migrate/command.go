package migrate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/database"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/repository"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/tools/common"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema and housekeeping tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newUpCommand(opts),
		newStatusCommand(opts),
		newPlanCommand(opts),
		newCleanupCommand(opts),
	)
	return cmd
}

func newUpCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "up", func(ctx context.Context) ([]string, error) {
				cfg, db, closeDB, err := common.LoadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB()
				if err := database.Migrate(db); err != nil {
					return nil, err
				}
				tables, err := database.Status(db)
				if err != nil {
					return nil, err
				}
				return append([]string{"schema migration applied", "driver: " + cfg.DBDriver}, describeTables(tables)...), nil
			})
		},
	}
}

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report which managed tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "status", func(ctx context.Context) ([]string, error) {
				_, db, closeDB, err := common.LoadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB()
				sqlDB, err := db.DB()
				if err != nil {
					return nil, err
				}
				if err := sqlDB.PingContext(ctx); err != nil {
					return nil, fmt.Errorf("db ping: %w", err)
				}
				tables, err := database.Status(db)
				if err != nil {
					return nil, err
				}
				details := describeTables(tables)
				if missing := missingTables(tables); len(missing) > 0 {
					return details, fmt.Errorf("schema incomplete, missing: %s", strings.Join(missing, ", "))
				}
				return details, nil
			})
		},
	}
}

func newPlanCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show what up would create (dry-run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "plan", func(ctx context.Context) ([]string, error) {
				_, db, closeDB, err := common.LoadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB()
				tables, err := database.Status(db)
				if err != nil {
					return nil, err
				}
				missing := missingTables(tables)
				if len(missing) == 0 {
					return []string{"schema up to date; AutoMigrate would only reconcile columns and indexes"}, nil
				}
				return []string{
					"would create: " + strings.Join(missing, ", "),
					"no mutation executed in plan mode",
				}, nil
			})
		},
	}
}

func newCleanupCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Purge expired sessions and OTP codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "cleanup", func(ctx context.Context) ([]string, error) {
				cfg, db, closeDB, err := common.LoadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				defer closeDB()
				return Cleanup(ctx, repository.NewSessionRepository(db), repository.NewOTPRepository(db), time.Now().UTC(), cfg.AuthOTPResetWindow)
			})
		},
	}
}

// Cleanup removes expired sessions and any OTP code whose expiry is older than
// the reset window, so a code verified just before expiring can still be used.
func Cleanup(ctx context.Context, sessions repository.SessionRepository, otps repository.OTPRepository, now time.Time, resetWindow time.Duration) ([]string, error) {
	removedSessions, err := sessions.CleanupExpired(ctx, now)
	if err != nil {
		return nil, err
	}
	removedOTPs, err := otps.CleanupExpired(ctx, now.Add(-resetWindow))
	if err != nil {
		return []string{fmt.Sprintf("expired sessions removed: %d", removedSessions)}, err
	}
	return []string{
		fmt.Sprintf("expired sessions removed: %d", removedSessions),
		fmt.Sprintf("expired otp codes removed: %d", removedOTPs),
	}, nil
}

func execute(opts *options, command string, fn func(context.Context) ([]string, error)) error {
	_, err := common.Run(common.RunOptions{Tool: "migrate", Command: command, CI: opts.ci, Timeout: opts.timeout}, fn)
	if err != nil {
		os.Exit(common.ExitCodeFailure)
	}
	return nil
}

func describeTables(tables []database.TableStatus) []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		state := "missing"
		if t.Exists {
			state = "present"
		}
		out = append(out, t.Table+": "+state)
	}
	return out
}

func missingTables(tables []database.TableStatus) []string {
	var missing []string
	for _, t := range tables {
		if !t.Exists {
			missing = append(missing, t.Table)
		}
	}
	return missing
}
