package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admission-analytics/internal/analytics"
	cliapi "admission-analytics/internal/cli"
	"admission-analytics/internal/database"
	"admission-analytics/internal/server"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	reset := func() {
		serverURL, format, configFile, logFile = "", "", "", ""
		fromDate, toDate = "", ""
		quiet, noColor, interactive = false, false, false
		timeout = 0
	}
	reset()
	t.Cleanup(reset)
}

// setupAPI starts the analytics API backed by a seeded in-memory database
func setupAPI(t *testing.T) string {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Analytics.Seed(context.Background(), analytics.SampleData()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ts := httptest.NewServer(server.NewRouter(db, server.RouterConfig{}, logger))
	t.Cleanup(ts.Close)
	return ts.URL
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestShouldUseInteractiveMode(t *testing.T) {
	tests := []struct {
		name     string
		config   *cliapi.Config
		explicit bool
		isTTY    bool
		expected bool
	}{
		{"explicit interactive mode requested", &cliapi.Config{Format: "json"}, true, false, true},
		{"auto-detect: table format, not quiet, TTY", &cliapi.Config{Format: "table"}, false, true, true},
		{"auto-detect: json format should disable interactive", &cliapi.Config{Format: "json"}, false, true, false},
		{"auto-detect: quiet mode should disable interactive", &cliapi.Config{Format: "table", Quiet: true}, false, true, false},
		{"auto-detect: not a TTY should disable interactive", &cliapi.Config{Format: "table"}, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shouldUseInteractiveMode(tt.config, tt.explicit, tt.isTTY))
		})
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	resetGlobals(t)

	configFile = filepath.Join(t.TempDir(), "cli.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("server_url: http://file:8080\nformat: json\n"), 0o644))

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://file:8080", cfg.ServerURL)
	assert.Equal(t, "json", cfg.Format)

	serverURL = "http://flag:9090"
	timeout = 3 * time.Second
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://flag:9090", cfg.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)

	format = "xml"
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestValidateDates(t *testing.T) {
	assert.NoError(t, validateDates("", "2025-05-01"))
	assert.Error(t, validateDates("2025-13-01"))
	assert.Error(t, validateDates("05/01/2025"))
}

func TestSummaryCommand_JSON(t *testing.T) {
	resetGlobals(t)
	url := setupAPI(t)

	out, _, err := execute(t, "summary", "--server", url, "--format", "json", "--to", "2025-05-02")
	require.NoError(t, err)

	var view cliapi.SummaryView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 1200, view.TotalApplicants)
	assert.Equal(t, "2025-05-01", view.FromDate)
	assert.Equal(t, "2025-05-02", view.ToDate)
	assert.Len(t, view.FilteredTrends, 2)
	assert.Len(t, view.ApplicationsPerProgram, 4)
}

func TestSummaryCommand_Table(t *testing.T) {
	resetGlobals(t)
	url := setupAPI(t)

	out, _, err := execute(t, "summary", "--server", url, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Applicants")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "Application Trends (2025-05-01 to 2025-05-05)")
}

func TestInvalidDateRejectedBeforeFetch(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "summary from", args: []string{"summary", "--from", "May 1"}},
		{name: "trends to", args: []string{"trends", "--to", "2025-05-32"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobals(t)

			var requests atomic.Int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				requests.Add(1)
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer ts.Close()

			_, _, err := execute(t, append(tt.args, "--server", ts.URL)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid date")
			assert.Zero(t, requests.Load(), "no request should be made for an invalid range")
		})
	}
}

func TestSummaryCommand_ServerError(t *testing.T) {
	resetGlobals(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer ts.Close()

	out, errOut, err := execute(t, "summary", "--server", ts.URL, "--format", "json")
	assert.ErrorIs(t, err, errNoData)
	assert.Contains(t, out, `"error": "No data available"`)
	assert.Contains(t, errOut, "Failed to fetch admission analytics")
	assert.Contains(t, errOut, "HTTP 500: boom")
}

func TestTrendsCommand_Quiet(t *testing.T) {
	resetGlobals(t)
	url := setupAPI(t)

	out, _, err := execute(t, "trends", "--server", url, "--quiet", "--from", "2025-05-04")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-04\n2025-05-05\n", out)
}

func TestTrendsCommand_InvertedRange(t *testing.T) {
	resetGlobals(t)
	url := setupAPI(t)

	out, _, err := execute(t, "trends", "--server", url, "--format", "json", "--from", "2025-05-05", "--to", "2025-05-01")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestProgramsCommand(t *testing.T) {
	resetGlobals(t)
	url := setupAPI(t)

	out, _, err := execute(t, "programs", "--server", url, "--quiet")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS", "IT", "ECE", "ME"}, strings.Fields(out))
}

func TestHealthCommand(t *testing.T) {
	resetGlobals(t)
	url := setupAPI(t)

	out, _, err := execute(t, "health", "--server", url)
	require.NoError(t, err)
	assert.Contains(t, out, "is healthy")

	resetGlobals(t)
	_, errOut, err := execute(t, "health", "--server", "http://127.0.0.1:1", "--timeout", "1s")
	assert.Error(t, err)
	assert.Contains(t, errOut, "✗ Error:")
}

func TestLogFileFlag(t *testing.T) {
	resetGlobals(t)
	url := setupAPI(t)
	path := filepath.Join(t.TempDir(), "cli.log")

	_, _, err := execute(t, "programs", "--server", url, "--quiet", "--log-file", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Admission analytics loaded")
}
