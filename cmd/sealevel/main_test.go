package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/sealevel.report/internal/db"
	"github.com/banshee-data/sealevel.report/internal/monitoring"
	"github.com/banshee-data/sealevel.report/internal/testutil"
)

func quietLogs(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(func(string, ...interface{}) {})
	t.Cleanup(func() { monitoring.Logf = original })
}

func runArgs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeStudy lays out a one-island, one-scenario study in a temp dir.
func writeStudy(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, "atoll.csv"), "0,1,2\n3,2,1\n0,0,4\n")
	configPath = filepath.Join(dir, "study.json")
	writeFile(t, configPath, `{
		"start_year": 2019,
		"islands": [
			{"name": "Atoll", "heightmap": "atoll.csv", "scale": 1, "offset": 0, "danger_threshold_m": 0.5, "cutoff_m": 3}
		],
		"scenarios": [
			{"label": "Fast", "rise": [0, 0.5, 1.0, 1.5], "rise_unit": "m"}
		]
	}`)
	return dir, configPath
}

func TestRun_Commands(t *testing.T) {
	t.Run("missing command", func(t *testing.T) {
		_, stderr, err := runArgs(t)
		assert.Error(t, err)
		assert.Contains(t, stderr, "Usage: sealevel")
	})

	t.Run("unknown command", func(t *testing.T) {
		_, _, err := runArgs(t, "sink")
		assert.ErrorContains(t, err, "unknown command: sink")
	})

	t.Run("help", func(t *testing.T) {
		stdout, _, err := runArgs(t, "help")
		require.NoError(t, err)
		assert.Contains(t, stdout, "presets")
	})

	t.Run("version", func(t *testing.T) {
		stdout, _, err := runArgs(t, "version")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(stdout, "sealevel "))
	})

	t.Run("presets", func(t *testing.T) {
		stdout, _, err := runArgs(t, "presets")
		require.NoError(t, err)
		for _, want := range []string{"RCP2.6", "RCP8.5", "StabilityHigh", "Maldives", "MarshallIslands"} {
			assert.Contains(t, stdout, want)
		}
	})

	t.Run("bad flag", func(t *testing.T) {
		_, stderr, err := runArgs(t, "run", "-bogus")
		assert.Error(t, err)
		assert.Contains(t, stderr, "-bogus")
	})
}

func TestRunCommand_EndToEnd(t *testing.T) {
	quietLogs(t)
	dir, configPath := writeStudy(t)
	out := filepath.Join(dir, "out")
	dbPath := filepath.Join(dir, "runs.db")

	_, _, err := runArgs(t, "run", "-config", configPath, "-out", out, "-db", dbPath, "-parallel", "2")
	require.NoError(t, err)

	csvData, err := os.ReadFile(filepath.Join(out, "AtollFast.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "year,percent_of_original,percent_in_danger", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2020,100,"))

	for _, name := range []string{"Atoll2019.png", "AtollFast2020.png", "AtollFast2020.html", "AtollFast_series.png"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	database, err := db.Open(dbPath)
	require.NoError(t, err)
	defer database.Close()
	runs, err := db.NewRunStore(database).Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "completed_series", runs[0].State.String())
	assert.Equal(t, 2023, runs[0].FinalYear)
}

func TestRunCommand_NoRenderNoDB(t *testing.T) {
	quietLogs(t)
	dir, configPath := writeStudy(t)
	out := filepath.Join(dir, "out")

	_, _, err := runArgs(t, "run", "-config", configPath, "-out", out, "-db", "-", "-no-render")
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"AtollFast.csv", "AtollFast_series.png"}, names)
}

func TestRunCommand_BadConfig(t *testing.T) {
	_, _, err := runArgs(t, "run", "-config", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDumpCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "raw.csv")
	writeFile(t, in, "1,2\n3,0\n")

	stdout, _, err := runArgs(t, "dump", "-scale", "2", "-offset", "-1", in)
	require.NoError(t, err)
	assert.Equal(t, "1,3\n5,0\n", stdout)

	stdout, _, err = runArgs(t, "dump", in)
	require.NoError(t, err)
	assert.Equal(t, "1,2\n3,0\n", stdout)

	outPath := filepath.Join(dir, "dumped.csv")
	_, _, err = runArgs(t, "dump", "-o", outPath, in)
	require.NoError(t, err)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "1,2\n3,0\n", string(data))

	_, _, err = runArgs(t, "dump", "-island", "Atlantis", in)
	assert.ErrorContains(t, err, "unknown island")

	_, _, err = runArgs(t, "dump")
	assert.ErrorContains(t, err, "usage")
}

func TestMigrateCommand(t *testing.T) {
	quietLogs(t)
	dbPath := filepath.Join(t.TempDir(), "m.db")

	stdout, _, err := runArgs(t, "migrate", "-db", dbPath, "up")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Current version: 2")

	stdout, _, err = runArgs(t, "migrate", "-db", dbPath, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "up to date")
}

func TestRunsServer(t *testing.T) {
	quietLogs(t)
	dir, configPath := writeStudy(t)
	dbPath := filepath.Join(dir, "runs.db")
	_, _, err := runArgs(t, "run", "-config", configPath, "-out", filepath.Join(dir, "out"), "-db", dbPath, "-no-render")
	require.NoError(t, err)

	database, err := db.Open(dbPath)
	require.NoError(t, err)
	defer database.Close()

	mux := http.NewServeMux()
	newRunsServer(db.NewRunStore(database)).attach(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/runs")
	require.NoError(t, err)
	var runs []runJSON
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	resp.Body.Close()
	require.Len(t, runs, 1)
	assert.Equal(t, "Atoll", runs[0].Island)
	assert.Equal(t, "completed_series", runs[0].State)
	id := runs[0].ID

	resp, err = http.Get(srv.URL + "/runs/" + id)
	require.NoError(t, err)
	var detail struct {
		runJSON
		Results []yearJSON `json:"results"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	resp.Body.Close()
	assert.Equal(t, id, detail.ID)
	require.Len(t, detail.Results, 4)
	assert.Equal(t, 2020, detail.Results[0].Year)

	resp, err = http.Get(srv.URL + "/runs/" + id + "/chart")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	lookups := []struct {
		name string
		path string
		want int
	}{
		{"malformed id", "/runs/nope", http.StatusBadRequest},
		{"malformed chart id", "/runs/nope/chart", http.StatusBadRequest},
		{"unknown id", "/runs/00000000-0000-0000-0000-000000000000", http.StatusNotFound},
		{"unknown chart id", "/runs/00000000-0000-0000-0000-000000000000/chart", http.StatusNotFound},
	}
	for _, tc := range lookups {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, tc.path))
			testutil.AssertStatusCode(t, rec.Code, tc.want)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}
