// Package commands_test provides tests for CLI command creation.
package commands

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baseline-labs/driftwatch/internal/cli/config"
	"github.com/baseline-labs/driftwatch/internal/cli/testutil"

	// Register the sqlite driver for functional command tests.
	_ "github.com/baseline-labs/driftwatch/pkg/graph/drivers/sqlite"
)

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	assert.Equal(t, "run [detector...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	// Verify flags exist
	flags := []string{"update", "select"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}

	// Verify alias exists
	assert.NotEmpty(t, cmd.Aliases, "run command should have aliases")
	assert.Equal(t, "detect", cmd.Aliases[0], "run command should have 'detect' alias")
}

func TestNewRefreshCommand(t *testing.T) {
	cmd := NewRefreshCommand()

	assert.Equal(t, "refresh [detector...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("select"), "--select flag should exist")
}

func TestNewCompareCommand(t *testing.T) {
	cmd := NewCompareCommand()

	assert.Equal(t, "compare <start-file> <end-file>", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewListCommand(t *testing.T) {
	cmd := NewListCommand()

	assert.Equal(t, "list", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	// Note: --output flag is a global persistent flag on root command, not local to list
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	assert.Equal(t, "validate", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
}

func TestNewHistoryCommand(t *testing.T) {
	cmd := NewHistoryCommand()

	assert.Equal(t, "history", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("limit"), "--limit flag should exist")
	assert.NotNil(t, cmd.Flags().Lookup("all"), "--all flag should exist")

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "findings")
}

// setupCommandEnv points the env-fallback configuration at a fresh test
// project so commands can run without a config file.
func setupCommandEnv(t *testing.T) string {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	projectDir := testutil.SetupTestProject(t)
	t.Setenv("DRIFTWATCH_DETECTORS_DIR", filepath.Join(projectDir, "detectors"))
	t.Setenv("DRIFTWATCH_HISTORY_PATH", ":memory:")
	t.Setenv("DRIFTWATCH_OUTPUT", "markdown")
	return projectDir
}

func TestListCommandShowsDetectors(t *testing.T) {
	setupCommandEnv(t)

	cmd := NewListCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))

	require.NoError(t, cmd.Execute())
	testutil.AssertContains(t, out.String(), "public-buckets")
	testutil.AssertContains(t, out.String(), "expired-keys")
	testutil.AssertNoANSI(t, out.String())
}

func TestValidateCommandAllValid(t *testing.T) {
	setupCommandEnv(t)

	cmd := NewValidateCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))

	require.NoError(t, cmd.Execute())
	testutil.AssertContains(t, out.String(), "All 2 detector documents are valid")
}

func TestValidateCommandFlagsBrokenDocument(t *testing.T) {
	projectDir := setupCommandEnv(t)

	// Unknown fields fail the strict codec
	broken := `{"name": "broken", "validation_query": "SELECT 1", "properties": ["A"], "detector_type": 1, "expectations": [], "extra": true}`
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "detectors", "broken.json"), []byte(broken), 0644))

	cmd := NewValidateCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 detector documents failed validation")
	testutil.AssertContains(t, out.String(), "broken.json")
}

// setupGraphProject builds a project whose detectors run against a seeded
// sqlite database standing in for the asset graph.
func setupGraphProject(t *testing.T) (detectorPath string) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	dir := t.TempDir()
	detDir := filepath.Join(dir, "detectors")
	require.NoError(t, os.MkdirAll(detDir, 0755))

	doc := `{
  "name": "public-buckets",
  "validation_query": "SELECT name, region FROM buckets WHERE public = 1 ORDER BY name",
  "properties": ["Bucket", "Region"],
  "detector_type": 1,
  "expectations": []
}`
	detectorPath = filepath.Join(detDir, "public-buckets.json")
	require.NoError(t, os.WriteFile(detectorPath, []byte(doc), 0644))

	dbPath := filepath.Join(dir, "graph.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	_, err = db.Exec(`CREATE TABLE buckets (name TEXT, region TEXT, public INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO buckets VALUES ('assets-prod', 'us-east-1', 1), ('logs', 'eu-west-1', 0)`)
	require.NoError(t, err)

	t.Setenv("DRIFTWATCH_DETECTORS_DIR", detDir)
	t.Setenv("DRIFTWATCH_HISTORY_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("DRIFTWATCH_OUTPUT", "markdown")
	t.Setenv("DRIFTWATCH_GRAPH_TYPE", "sqlite")
	t.Setenv("DRIFTWATCH_GRAPH_DATABASE", dbPath)

	return detectorPath
}

func TestRunCommandReportsDrift(t *testing.T) {
	setupGraphProject(t)

	cmd := NewRunCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))

	require.NoError(t, cmd.Execute())
	testutil.AssertContains(t, out.String(), "assets-prod")
	testutil.AssertContains(t, out.String(), "Drifted: 1")
	testutil.AssertNotContains(t, out.String(), "logs")
	testutil.AssertNoANSI(t, out.String())
}

func TestRunCommandUpdateAbsorbsDrift(t *testing.T) {
	detectorPath := setupGraphProject(t)

	update := NewRunCommand()
	update.SetOut(new(bytes.Buffer))
	update.SetErr(new(bytes.Buffer))
	update.SetArgs([]string{"--update"})
	require.NoError(t, update.Execute())

	// The absorbed row lands in the saved document
	content, err := os.ReadFile(detectorPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "assets-prod")

	// A second run is clean
	rerun := NewRunCommand()
	out := new(bytes.Buffer)
	rerun.SetOut(out)
	rerun.SetErr(new(bytes.Buffer))
	require.NoError(t, rerun.Execute())
	testutil.AssertContains(t, out.String(), "No drift detected.")
	testutil.AssertContains(t, out.String(), "Drifted: 0")
}

func TestRunCommandPositionalSelect(t *testing.T) {
	setupGraphProject(t)

	cmd := NewRunCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"other-detector"})

	require.NoError(t, cmd.Execute())
	testutil.AssertContains(t, out.String(), "Detectors: 0")
	testutil.AssertNotContains(t, out.String(), "assets-prod")
}

func TestRefreshCommandReplacesBaseline(t *testing.T) {
	detectorPath := setupGraphProject(t)

	cmd := NewRefreshCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))

	require.NoError(t, cmd.Execute())
	testutil.AssertContains(t, out.String(), "Refreshed 1 detector baselines")

	content, err := os.ReadFile(detectorPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "assets-prod")
}

func TestHistoryCommandListsRuns(t *testing.T) {
	setupGraphProject(t)

	run := NewRunCommand()
	run.SetOut(new(bytes.Buffer))
	run.SetErr(new(bytes.Buffer))
	require.NoError(t, run.Execute())

	t.Setenv("DRIFTWATCH_OUTPUT", "json")
	hist := NewHistoryCommand()
	out := new(bytes.Buffer)
	hist.SetOut(out)
	hist.SetErr(new(bytes.Buffer))
	require.NoError(t, hist.Execute())

	var runs []struct {
		ID      string `json:"id"`
		Mode    string `json:"mode"`
		Status  string `json:"status"`
		Drifted int    `json:"drifted"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "report", runs[0].Mode)
	assert.Equal(t, "completed", runs[0].Status)
	assert.Equal(t, 1, runs[0].Drifted)

	// The recorded findings carry the original row
	findings := NewHistoryCommand()
	fOut := new(bytes.Buffer)
	findings.SetOut(fOut)
	findings.SetErr(new(bytes.Buffer))
	findings.SetArgs([]string{"findings", runs[0].ID})
	require.NoError(t, findings.Execute())
	testutil.AssertContains(t, fOut.String(), "assets-prod")
}

func TestCompareCommandShowsBaselineDelta(t *testing.T) {
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	t.Setenv("DRIFTWATCH_OUTPUT", "markdown")

	dir := t.TempDir()
	start := filepath.Join(dir, "start.json")
	end := filepath.Join(dir, "end.json")

	write := func(path string, expectations string) {
		doc := `{
  "name": "public-buckets",
  "validation_query": "SELECT name FROM buckets WHERE public = 1",
  "properties": ["Bucket"],
  "detector_type": 1,
  "expectations": ` + expectations + `
}`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	}
	write(start, `[["alpha"], ["beta"]]`)
	write(end, `[["beta"], ["gamma"]]`)

	cmd := NewCompareCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{start, end})

	require.NoError(t, cmd.Execute())
	testutil.AssertContains(t, out.String(), "gamma")
	testutil.AssertContains(t, out.String(), "alpha")
}
