// Package main provides tests for the driftwatch CLI.
package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/baseline-labs/driftwatch/internal/cli"
)

func execRoot(t *testing.T, args ...string) string {
	t.Helper()
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("%q error = %v\noutput: %s", strings.Join(args, " "), err, buf.String())
	}
	return buf.String()
}

func TestVersionCommand(t *testing.T) {
	out := execRoot(t, "version")
	if !strings.Contains(out, "driftwatch") {
		t.Errorf("version output should contain 'driftwatch', got: %s", out)
	}
}

func TestHelpCommand(t *testing.T) {
	out := execRoot(t, "--help")

	expectedCommands := []string{"run", "refresh", "compare", "list", "validate", "history", "init"}
	for _, expected := range expectedCommands {
		if !strings.Contains(out, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, out)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		t.Run(shell, func(t *testing.T) {
			cmd := cli.NewRootCmd()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs([]string{"completion", shell})

			if err := cmd.Execute(); err != nil {
				t.Errorf("completion %s command error = %v", shell, err)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"unknown-command"})

	if err := cmd.Execute(); err == nil {
		t.Error("unknown command should return an error")
	}
}

func TestInitCommand(t *testing.T) {
	tmpDir := t.TempDir()
	projDir := filepath.Join(tmpDir, "proj")

	execRoot(t, "init", projDir)

	for _, f := range []string{"driftwatch.yaml", "detectors", ".gitignore"} {
		if _, err := os.Stat(filepath.Join(projDir, f)); os.IsNotExist(err) {
			t.Errorf("init should create %q", f)
		}
	}
}

// seedGraph creates a sqlite file standing in for the asset graph.
func seedGraph(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open graph database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE buckets (name TEXT, region TEXT, public INTEGER)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO buckets VALUES ('assets-prod', 'us-east-1', 1), ('logs', 'eu-west-1', 0)`); err != nil {
		t.Fatalf("failed to seed rows: %v", err)
	}
}

func TestDriftWorkflow(t *testing.T) {
	tmpDir := t.TempDir()

	detDir := filepath.Join(tmpDir, "detectors")
	if err := os.MkdirAll(detDir, 0755); err != nil {
		t.Fatalf("failed to create detectors dir: %v", err)
	}
	doc := `{
  "name": "public-buckets",
  "validation_query": "SELECT name, region FROM buckets WHERE public = 1 ORDER BY name",
  "properties": ["Bucket", "Region"],
  "detector_type": 1,
  "expectations": []
}`
	if err := os.WriteFile(filepath.Join(detDir, "public-buckets.json"), []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write detector: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "graph.db")
	seedGraph(t, dbPath)

	baseArgs := []string{
		"--detectors-dir", detDir,
		"--history", filepath.Join(tmpDir, "history.db"),
		"--graph-type", "sqlite",
		"--graph-database", dbPath,
		"--output", "markdown",
	}
	withBase := func(args ...string) []string { return append(args, baseArgs...) }

	// Documents are well-formed
	out := execRoot(t, withBase("validate")...)
	if !strings.Contains(out, "valid") {
		t.Errorf("validate output should confirm documents, got: %s", out)
	}

	// The detector shows up in the inventory
	out = execRoot(t, withBase("list")...)
	if !strings.Contains(out, "public-buckets") {
		t.Errorf("list output should contain the detector, got: %s", out)
	}

	// First detection reports the public bucket as drift
	out = execRoot(t, withBase("run")...)
	if !strings.Contains(out, "assets-prod") {
		t.Errorf("run output should report drift, got: %s", out)
	}

	// Absorb it into the baseline
	execRoot(t, withBase("run", "--update")...)

	// Second detection is clean
	out = execRoot(t, withBase("run")...)
	if !strings.Contains(out, "No drift detected.") {
		t.Errorf("second run should be clean, got: %s", out)
	}

	// History recorded all three runs
	out = execRoot(t, withBase("history")...)
	if !strings.Contains(out, "report") || !strings.Contains(out, "update") {
		t.Errorf("history output should show recorded runs, got: %s", out)
	}
}

func TestRefreshWorkflow(t *testing.T) {
	tmpDir := t.TempDir()

	detDir := filepath.Join(tmpDir, "detectors")
	if err := os.MkdirAll(detDir, 0755); err != nil {
		t.Fatalf("failed to create detectors dir: %v", err)
	}
	doc := `{
  "name": "public-buckets",
  "validation_query": "SELECT name, region FROM buckets WHERE public = 1 ORDER BY name",
  "properties": ["Bucket", "Region"],
  "detector_type": 1,
  "expectations": [["stale", "row"]]
}`
	detPath := filepath.Join(detDir, "public-buckets.json")
	if err := os.WriteFile(detPath, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write detector: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "graph.db")
	seedGraph(t, dbPath)

	startPath := filepath.Join(tmpDir, "before-refresh.json")
	if err := os.WriteFile(startPath, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write start state: %v", err)
	}

	execRoot(t, "refresh",
		"--detectors-dir", detDir,
		"--history", filepath.Join(tmpDir, "history.db"),
		"--graph-type", "sqlite",
		"--graph-database", dbPath,
		"--output", "markdown",
	)

	content, err := os.ReadFile(detPath)
	if err != nil {
		t.Fatalf("failed to read refreshed document: %v", err)
	}
	if !strings.Contains(string(content), "assets-prod") {
		t.Errorf("refreshed baseline should contain the current row, got: %s", content)
	}
	if strings.Contains(string(content), "stale") {
		t.Errorf("refreshed baseline should drop the stale row, got: %s", content)
	}

	out := execRoot(t, "compare", startPath, detPath, "--output", "markdown")
	if !strings.Contains(out, "added") || !strings.Contains(out, "assets-prod") {
		t.Errorf("compare should report the captured row as added, got: %s", out)
	}
	if !strings.Contains(out, "missing") || !strings.Contains(out, "stale") {
		t.Errorf("compare should report the dropped row as missing, got: %s", out)
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
