package common

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sandeepkv93/vibecraft-auth-service/internal/observability"
	"github.com/sandeepkv93/vibecraft-auth-service/internal/tools/ui"
)

// ExitCodeFailure is returned by every tool command that fails after argument
// parsing succeeded.
const ExitCodeFailure = 3

type CIResult struct {
	OK      bool     `json:"ok"`
	Title   string   `json:"title"`
	Details []string `json:"details,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func PrintCIResult(ok bool, title string, details []string, err error) {
	writeCIResult(os.Stdout, ok, title, details, err)
}

func writeCIResult(w io.Writer, ok bool, title string, details []string, err error) {
	result := CIResult{OK: ok, Title: title, Details: details}
	if err != nil {
		result.Error = err.Error()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

type RunOptions struct {
	Tool    string
	Command string
	CI      bool
	Timeout time.Duration
}

// Run executes fn either headless (CI mode, JSON result on stdout) or behind
// the interactive progress view, and records the tool metrics either way.
func Run(opts RunOptions, fn func(context.Context) ([]string, error)) ([]string, error) {
	title := opts.Tool + " " + opts.Command
	start := time.Now()
	timed := func(ctx context.Context) ([]string, error) {
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}
		return fn(ctx)
	}

	var (
		details []string
		err     error
	)
	if opts.CI {
		details, err = timed(context.Background())
		PrintCIResult(err == nil, title, details, err)
	} else {
		details, err = ui.Run(title, timed)
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ctx := context.Background()
	observability.RecordToolCommandRun(ctx, opts.Tool, opts.Command, outcome)
	observability.RecordToolCommandDuration(ctx, opts.Tool, opts.Command, outcome, time.Since(start))
	return details, err
}
