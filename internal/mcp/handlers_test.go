package mcp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(&Config{
		Name:    "gridbench-test",
		Version: "test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}
	return s
}

func writeNetwork(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "net.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHandleGridCheckClean(t *testing.T) {
	s := newTestServer(t)
	path := writeNetwork(t, "name: case14\ntables:\n  line: 20\n  switch: 0\n")

	_, out, err := s.handleGridCheck(context.Background(), nil, GridCheckInput{Path: path})
	if err != nil {
		t.Fatalf("handleGridCheck() error: %v", err)
	}
	if !out.OK {
		t.Errorf("OK = false for clean network: %+v", out)
	}
	if len(out.Advisories) != 0 {
		t.Errorf("unexpected advisories: %v", out.Advisories)
	}
}

func TestHandleGridCheckFatal(t *testing.T) {
	s := newTestServer(t)
	path := writeNetwork(t, "name: case14\ntables:\n  storage: 2\n")

	_, out, err := s.handleGridCheck(context.Background(), nil, GridCheckInput{Path: path})
	if err != nil {
		t.Fatalf("fatal finding should be a result, not an error: %v", err)
	}
	if out.OK {
		t.Error("OK = true for network with storage units")
	}
	if !strings.Contains(out.Fatal, "Storage") {
		t.Errorf("Fatal = %q, want mention of Storage", out.Fatal)
	}
}

func TestHandleGridCheckAdvisory(t *testing.T) {
	s := newTestServer(t)
	path := writeNetwork(t, "tables:\n  switch: 3\n")

	_, out, err := s.handleGridCheck(context.Background(), nil, GridCheckInput{Path: path})
	if err != nil {
		t.Fatalf("handleGridCheck() error: %v", err)
	}
	if !out.OK {
		t.Error("OK = false for advisory-only network")
	}
	if len(out.Advisories) != 1 || !strings.Contains(out.Advisories[0], "Switch") {
		t.Errorf("Advisories = %v, want one Switch entry", out.Advisories)
	}
}

func TestHandleGridCheckMissingInput(t *testing.T) {
	s := newTestServer(t)
	if _, _, err := s.handleGridCheck(context.Background(), nil, GridCheckInput{}); err == nil {
		t.Error("empty path: expected error")
	}
	if _, _, err := s.handleGridCheck(context.Background(), nil, GridCheckInput{Path: "/no/such/net.yaml"}); err == nil {
		t.Error("missing file: expected error")
	}
}

func TestHandleGridCompare(t *testing.T) {
	s := newTestServer(t)
	seed := int64(5)

	_, out, err := s.handleGridCompare(context.Background(), nil, GridCompareInput{
		Steps: 10, EpisodeID: 1, Seed: &seed,
	})
	if err != nil {
		t.Fatalf("handleGridCompare() error: %v", err)
	}
	if out.Steps != 10 {
		t.Errorf("Steps = %d, want 10", out.Steps)
	}
	if out.Environment != "case14_sandbox" {
		t.Errorf("Environment = %q, want normalized case14_sandbox", out.Environment)
	}
	if out.MaxDiffAOr > 1e-6 {
		t.Errorf("MaxDiffAOr = %g, solvers too far apart", out.MaxDiffAOr)
	}
	if !strings.Contains(out.Report, "speed-up") {
		t.Errorf("Report missing speed-up line:\n%s", out.Report)
	}
}
