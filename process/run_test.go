package process_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kbukum/whisperd/process"
)

func sh(script string) process.Command {
	return process.Command{Binary: "sh", Args: []string{"-c", script}}
}

func TestRunOutcomes(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-binary")
	tests := []struct {
		name       string
		cmd        process.Command
		wantErr    error
		wantCode   int
		wantStart  bool
		wantStdout string
		wantStderr string
	}{
		{"argv untouched", process.Command{Binary: "echo", Args: []string{"-n", "a b", "$HOME"}}, nil, 0, true, "a b $HOME", ""},
		{"stderr kept on success", sh("echo oops >&2"), nil, 0, true, "", "oops"},
		{"non-zero exit", sh("echo 'model load failed' >&2; exit 42"), nil, 42, true, "", "model load failed"},
		{"missing binary", process.Command{Binary: missing}, process.ErrNotStarted, -1, false, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := process.Run(context.Background(), tc.cmd)
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if (err == nil) != (tc.wantCode == 0) {
				t.Fatalf("exit %d with err %v", tc.wantCode, err)
			}
			if res == nil {
				t.Fatal("expected a result")
			}
			if res.ExitCode != tc.wantCode || res.Started != tc.wantStart {
				t.Errorf("exit=%d started=%v, want %d %v", res.ExitCode, res.Started, tc.wantCode, tc.wantStart)
			}
			if string(res.Stdout) != tc.wantStdout {
				t.Errorf("stdout %q, want %q", res.Stdout, tc.wantStdout)
			}
			if res.StderrText() != tc.wantStderr {
				t.Errorf("stderr %q, want %q", res.StderrText(), tc.wantStderr)
			}
		})
	}
}

func TestRunExitErrorIsNotKill(t *testing.T) {
	_, err := process.Run(context.Background(), sh("exit 3"))
	if errors.Is(err, process.ErrKilled) || errors.Is(err, process.ErrNotStarted) {
		t.Fatalf("exit failure misclassified: %v", err)
	}
}

func TestRunWithoutBinary(t *testing.T) {
	if res, err := process.Run(context.Background(), process.Command{}); err == nil || res != nil {
		t.Fatalf("expected an error and no result, got %v %v", res, err)
	}
	var nilResult *process.Result
	if nilResult.StderrText() != "" {
		t.Error("nil result should have empty stderr")
	}
}

func TestRunKilledByContext(t *testing.T) {
	tests := []struct {
		name string
		cmd  process.Command
	}{
		{"single process", process.Command{Binary: "sleep", Args: []string{"10"}}},
		// SIGTERM goes to the group, so the sleeping child dies with the shell.
		{"process group", sh("sleep 10; echo done")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			tc.cmd.GracePeriod = 2 * time.Second

			res, err := process.Run(ctx, tc.cmd)
			if !errors.Is(err, process.ErrKilled) || !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("expected ErrKilled wrapping the deadline, got %v", err)
			}
			if res.Duration > 2*time.Second {
				t.Errorf("not terminated promptly: %v", res.Duration)
			}
		})
	}
}

func TestRunMeasuresDuration(t *testing.T) {
	res, err := process.Run(context.Background(), process.Command{Binary: "sleep", Args: []string{"0.1"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Duration < 50*time.Millisecond {
		t.Errorf("duration too short: %v", res.Duration)
	}
}

func TestAdapter(t *testing.T) {
	a := process.NewAdapter(process.Config{Name: "echo", Binary: "echo", GracePeriod: time.Second})
	if a.Name() != "echo" {
		t.Errorf("expected name echo, got %q", a.Name())
	}
	res, err := a.Run(context.Background(), "-n", "hi")
	if err != nil || string(res.Stdout) != "hi" {
		t.Fatalf("Run = %v, %v", res, err)
	}

	dir := t.TempDir()
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("data"), 0o600); err != nil {
		t.Fatal(err)
	}
	for binary, want := range map[string]bool{
		"":                             false,
		filepath.Join(dir, "missing"): false,
		plain:                          false,
		"sh":                           true,
	} {
		if got := process.NewAdapter(process.Config{Binary: binary}).IsAvailable(context.Background()); got != want {
			t.Errorf("IsAvailable(%q) = %v, want %v", binary, got, want)
		}
	}
}
