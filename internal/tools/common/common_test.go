package common

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
)

func TestLoadEnvFilePreservesExistingVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("# local\nVIBECRAFT_TOOL_A=from-file\nVIBECRAFT_TOOL_B=\"quoted\"\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("VIBECRAFT_TOOL_A", "from-env")
	t.Setenv("VIBECRAFT_TOOL_B", "")
	if err := os.Unsetenv("VIBECRAFT_TOOL_B"); err != nil {
		t.Fatalf("unset: %v", err)
	}

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load env file: %v", err)
	}
	if got := os.Getenv("VIBECRAFT_TOOL_A"); got != "from-env" {
		t.Fatalf("expected existing variable kept, got %q", got)
	}
	if got := os.Getenv("VIBECRAFT_TOOL_B"); got != "quoted" {
		t.Fatalf("expected quoted value from file, got %q", got)
	}
}

func TestLoadEnvFileMissingIsNotAnError(t *testing.T) {
	for _, path := range []string{filepath.Join(t.TempDir(), "absent.env"), ""} {
		if err := LoadEnvFile(path); err != nil {
			t.Fatalf("LoadEnvFile(%q): %v", path, err)
		}
	}
}

func TestWriteCIResult(t *testing.T) {
	var buf bytes.Buffer
	writeCIResult(&buf, false, "migrate up", []string{"a"}, errors.New("boom"))

	var got CIResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := CIResult{OK: false, Title: "migrate up", Details: []string{"a"}, Error: "boom"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestRunCIModeAppliesTimeout(t *testing.T) {
	details, err := Run(RunOptions{Tool: "migrate", Command: "plan", CI: true, Timeout: 0}, func(ctx context.Context) ([]string, error) {
		if _, hasDeadline := ctx.Deadline(); hasDeadline {
			t.Error("expected no deadline without a timeout")
		}
		return []string{"ok"}, nil
	})
	if err != nil || !slices.Equal(details, []string{"ok"}) {
		t.Fatalf("unexpected result %q err=%v", details, err)
	}

	_, err = Run(RunOptions{Tool: "migrate", Command: "plan", CI: true, Timeout: 1}, func(ctx context.Context) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
