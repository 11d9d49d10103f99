package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/nbclean/internal/output"
	"github.com/jmylchreest/nbclean/internal/version"
	"github.com/jmylchreest/nbclean/pkg/cleaner"
)

const dirtyNotebook = `{"cells": [{"cell_type": "code", "execution_count": 1, "metadata": {"_execution": {}, "custom": 1}, "outputs": [{"output_type": "stream"}], "source": []}]}`

func init() {
	color.NoColor = true
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func notebookFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nb.ipynb")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestClean_ChangedExitsWithErrChangesMade(t *testing.T) {
	path := notebookFile(t, dirtyNotebook)

	stdout, _, err := execute(t, path)
	assert.ErrorIs(t, err, ErrChangesMade)
	assert.Contains(t, stdout, "[cleaned] "+path+"\n")
	assert.Contains(t, stdout, "cleaned 1 of 1 notebooks")

	got := readFile(t, path)
	assert.Contains(t, got, `"outputs": []`)
	assert.Contains(t, got, `"execution_count": null`)
	assert.NotContains(t, got, "_execution")

	// Second pass finds nothing to do
	stdout, _, err = execute(t, path)
	assert.NoError(t, err)
	assert.Contains(t, stdout, "[clean] "+path+" (no changes)")
}

func TestClean_MissingAndMalformed(t *testing.T) {
	broken := notebookFile(t, `{"cells": `)
	missing := filepath.Join(t.TempDir(), "missing.ipynb")

	stdout, _, err := execute(t, missing, broken)
	assert.NoError(t, err)
	assert.Contains(t, stdout, "[warn] path not found: "+missing)
	assert.Contains(t, stdout, "[skip] "+broken+": failed to read/parse (")
	assert.Equal(t, `{"cells": `, readFile(t, broken))
}

func TestClean_DryRun(t *testing.T) {
	path := notebookFile(t, dirtyNotebook)

	stdout, _, err := execute(t, "--dry-run", path)
	assert.ErrorIs(t, err, ErrChangesMade)
	assert.Contains(t, stdout, "[dirty] "+path+" (would clean)")
	assert.Equal(t, dirtyNotebook, readFile(t, path))
}

func TestClean_QuietHidesUnchanged(t *testing.T) {
	path := notebookFile(t, `{"cells": []}`)

	stdout, _, err := execute(t, "-q", path)
	assert.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestClean_RootDiscovery(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "deep", "x.ipynb")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(dirtyNotebook), 0644))

	stdout, _, err := execute(t, "--root", root)
	assert.ErrorIs(t, err, ErrChangesMade)
	assert.Contains(t, stdout, "[cleaned] "+path)
}

func TestClean_FlagsSelectRules(t *testing.T) {
	path := notebookFile(t, dirtyNotebook)

	_, _, err := execute(t, "--keep-outputs", "--metadata-key", "custom", path)
	assert.ErrorIs(t, err, ErrChangesMade)

	got := readFile(t, path)
	assert.Contains(t, got, `"output_type": "stream"`)
	assert.Contains(t, got, "_execution")
	assert.NotContains(t, got, `"custom"`)
}

func TestClean_ConfigFile(t *testing.T) {
	path := notebookFile(t, dirtyNotebook)
	cfgPath := filepath.Join(t.TempDir(), "nbclean.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("keep_execution_count: true\nindent: 2\n"), 0644))

	_, _, err := execute(t, "--config", cfgPath, path)
	assert.ErrorIs(t, err, ErrChangesMade)

	got := readFile(t, path)
	assert.Contains(t, got, "\n  \"cells\": [")
	assert.Contains(t, got, `"execution_count": 1`)
}

func TestClean_EnvironmentVariables(t *testing.T) {
	t.Setenv("NBCLEAN_DRY_RUN", "true")
	path := notebookFile(t, dirtyNotebook)

	_, _, err := execute(t, path)
	assert.ErrorIs(t, err, ErrChangesMade)
	assert.Equal(t, dirtyNotebook, readFile(t, path))
}

func TestClean_InvalidConfig(t *testing.T) {
	path := notebookFile(t, dirtyNotebook)

	_, _, err := execute(t, "--indent", "20", path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrChangesMade)
	assert.Contains(t, err.Error(), "indent must be at most 8")
	assert.Equal(t, dirtyNotebook, readFile(t, path))
}

func TestClean_ReportFile(t *testing.T) {
	path := notebookFile(t, dirtyNotebook)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	_, stderr, err := execute(t, "--report-format", "json", "--report-file", reportPath, path)
	assert.ErrorIs(t, err, ErrChangesMade)
	assert.Contains(t, stderr, "report written")

	var records []output.Record
	require.NoError(t, json.Unmarshal([]byte(readFile(t, reportPath)), &records))
	require.Len(t, records, 1)
	assert.Equal(t, path, records[0].Path)
	assert.Equal(t, cleaner.StatusCleaned, records[0].Status)
	assert.Equal(t, 1, records[0].Changes[cleaner.RuleClearOutputs])
}

func TestClean_ReportOnStdoutMovesStatusLines(t *testing.T) {
	path := notebookFile(t, `{"cells": []}`)

	stdout, stderr, err := execute(t, "--report-format", "jsonl", path)
	assert.NoError(t, err)
	assert.Contains(t, stderr, "[clean] "+path)

	var rec output.Record
	require.NoError(t, json.Unmarshal([]byte(stdout), &rec))
	assert.Equal(t, cleaner.StatusUnchanged, rec.Status)
}

func TestVersion_JSON(t *testing.T) {
	stdout, _, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, version.Version, info.Version)
}

func TestVersion_Text(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "nbclean "+version.String())
}
