package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/qgsim/internal/h5layout"
	"github.com/san-kum/qgsim/internal/storage"
)

func TestResolveConfigPrecedence(t *testing.T) {
	t.Setenv("QGSIM_THRESHOLD", "123")

	root := newRootCmd()
	cmd, _, err := root.Find([]string{"run"})
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.ParseFlags([]string{"--preset", "toy", "--lambda", "0.5", "--time", "0.005"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if cfg.Physics.Lambda != 0.5 {
		t.Errorf("flag should override preset lambda, got %g", cfg.Physics.Lambda)
	}
	if cfg.Duration != 0.005 {
		t.Errorf("flag should override duration, got %g", cfg.Duration)
	}
	if cfg.Physics.Threshold != 123 {
		t.Errorf("env should override threshold, got %g", cfg.Physics.Threshold)
	}
	if cfg.InitialMass() != 1e5 {
		t.Errorf("expected toy mass, got %g", cfg.InitialMass())
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("duration: 0.02\n"), 0644); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	cmd, _, _ := root.Find([]string{"run"})
	if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if cfg.Duration != 0.02 {
		t.Errorf("expected duration from file, got %g", cfg.Duration)
	}
}

func TestResolveConfigUnknownPreset(t *testing.T) {
	root := newRootCmd()
	cmd, _, _ := root.Find([]string{"run"})
	if err := cmd.ParseFlags([]string{"--preset", "quasar"}); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveConfig(cmd); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestRunCommandStoresRun(t *testing.T) {
	dir := t.TempDir()

	root := newRootCmd()
	root.SetArgs([]string{"run", "--preset", "toy", "--data", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	runs, err := storage.New(dir).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 stored run, got %d", len(runs))
	}
	if runs[0].Outcome != "exhausted" || runs[0].StepsTaken != 10 {
		t.Errorf("unexpected run %+v", runs[0])
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&h5layout.MissingError{Group: "metadata"}, 2},
		{fmt.Errorf("validate: %w", &h5layout.MissingError{Group: "initial"}), 2},
		{h5layout.ErrUnavailable, 1},
		{errors.New("boom"), 1},
	}

	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestValidateH5WithoutSupport(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"validate-h5", "results.h5"})

	err := root.Execute()
	if !errors.Is(err, h5layout.ErrUnavailable) {
		t.Skipf("built with hdf5 support: %v", err)
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"lambda=0.1, 1,10", "dt=1e-3"})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "lambda" || len(ranges[0]) != 3 || ranges[0][2] != 10 || ranges[1][0] != 1e-3 {
		t.Errorf("unexpected grid %v %v", names, ranges)
	}

	for _, bad := range []string{"lambda", "=1", "lambda=x"} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
