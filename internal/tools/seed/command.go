package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/config"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/database"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/tools/common"
)

var errProductionSeed = errors.New("refusing to seed demo users when APP_ENV=production")

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Demo account seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newDemoUsersCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newDemoUsersCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demo-users",
		Short: "Insert the admin, driver and demo accounts if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "demo-users", func(ctx context.Context) ([]string, error) {
				return seed(ctx, opts.envFile, false)
			})
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show which demo accounts would be inserted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(opts, "dry-run", func(ctx context.Context) ([]string, error) {
				return seed(ctx, opts.envFile, true)
			})
		},
	}
}

func seed(ctx context.Context, envFile string, dryRun bool) ([]string, error) {
	cfg, db, closeDB, err := common.LoadConfigDB(envFile)
	if err != nil {
		return nil, err
	}
	defer closeDB()
	if err := guardEnvironment(cfg); err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	report, err := database.SeedDemoUsers(ctx, db, dryRun)
	if err != nil {
		return nil, err
	}
	return describeReport(report), nil
}

func guardEnvironment(cfg *config.Config) error {
	if cfg.IsProduction() {
		return errProductionSeed
	}
	return nil
}

func describeReport(report *database.SeedReport) []string {
	verb := "created"
	if report.DryRun {
		verb = "would create"
	}
	details := make([]string, 0, len(report.Created)+len(report.Existing)+1)
	for _, u := range report.Created {
		details = append(details, fmt.Sprintf("%s: %s", verb, u))
	}
	for _, u := range report.Existing {
		details = append(details, "already present: "+u)
	}
	if report.Noop {
		details = append(details, "nothing to do")
	}
	return details
}

func execute(opts *options, command string, fn func(context.Context) ([]string, error)) error {
	_, err := common.Run(common.RunOptions{Tool: "seed", Command: command, CI: opts.ci, Timeout: opts.timeout}, fn)
	if err != nil {
		os.Exit(common.ExitCodeFailure)
	}
	return nil
}
