package cmd

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admission-analytics/internal/analytics"
	"admission-analytics/internal/api"
	cliapi "admission-analytics/internal/cli"
	"admission-analytics/internal/dashboard"
)

func newTestModel(t *testing.T, fetch api.FetcherFunc) DashboardModel {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	controller := dashboard.NewController(fetch, logger)
	return NewDashboardModel(context.Background(), controller, &cliapi.Config{NoColor: true}, &bytes.Buffer{})
}

func sampleFetcher(ctx context.Context) (*analytics.AdmissionAnalytics, error) {
	return analytics.SampleData(), nil
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m DashboardModel, msg tea.Msg) (DashboardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	dm, ok := next.(DashboardModel)
	require.True(t, ok)
	return dm, cmd
}

// loaded runs the first load synchronously
func loaded(t *testing.T, m DashboardModel) DashboardModel {
	t.Helper()
	m, _ = update(t, m, m.load()())
	return m
}

func TestDashboardModel_InitialView(t *testing.T) {
	m := newTestModel(t, sampleFetcher)
	assert.NotNil(t, m.Init())

	view := m.View()
	assert.Contains(t, view, "Loading...")
	assert.NotContains(t, view, "Total Applicants")
}

func TestDashboardModel_Loaded(t *testing.T) {
	m := loaded(t, newTestModel(t, sampleFetcher))

	view := m.View()
	assert.Contains(t, view, "Total Applicants")
	assert.Contains(t, view, "1,200")
	assert.Contains(t, view, "Applications Per Program")
	assert.Contains(t, view, "ECE")
	assert.Contains(t, view, "2025-05-03")
	assert.Contains(t, view, "2025-05-01 to 2025-05-05")
	assert.Len(t, m.trends.Rows(), 5)
	assert.Len(t, m.programs.Rows(), 4)
	assert.Equal(t, "2025-05-01", m.fromInput.Value())
	assert.Equal(t, "2025-05-05", m.toInput.Value())
}

func TestDashboardModel_LoadFailure(t *testing.T) {
	m := loaded(t, newTestModel(t, func(ctx context.Context) (*analytics.AdmissionAnalytics, error) {
		return nil, &api.NetworkError{URL: "http://localhost", Err: errors.New("connection refused")}
	}))

	view := m.View()
	assert.Contains(t, view, cliapi.NoDataMessage)
	assert.Contains(t, view, "Failed to load admission analytics")
	assert.Contains(t, view, "Press r to retry")
	assert.NotContains(t, view, "Total Applicants")
}

func TestDashboardModel_SupersededLoadIgnored(t *testing.T) {
	m := newTestModel(t, sampleFetcher)
	m, cmd := update(t, m, loadCompleteMsg{status: dashboard.StatusLoading})
	assert.Nil(t, cmd)
	assert.Empty(t, m.message)
	assert.Empty(t, m.trends.Rows())
}

func TestDashboardModel_Refresh(t *testing.T) {
	m := loaded(t, newTestModel(t, sampleFetcher))

	m, cmd := update(t, m, keyPress("r"))
	assert.NotNil(t, cmd)
	assert.Equal(t, "Reloading...", m.message)
}

func TestDashboardModel_EditRange(t *testing.T) {
	m := loaded(t, newTestModel(t, sampleFetcher))

	m, _ = update(t, m, keyPress("tab"))
	require.True(t, m.editing)
	assert.True(t, m.fromInput.Focused())
	assert.Contains(t, m.View(), "Editing range")

	// typing q while editing must not quit
	m, _ = update(t, m, keyPress("q"))
	assert.False(t, m.quitting)

	m.fromInput.SetValue("2025-05-02")
	m, _ = update(t, m, keyPress("tab"))
	assert.True(t, m.toInput.Focused())
	m.toInput.SetValue("2025-05-03")

	m, _ = update(t, m, keyPress("enter"))
	assert.False(t, m.editing)
	assert.Equal(t, "2025-05-02", m.controller.FromDate())
	assert.Equal(t, "2025-05-03", m.controller.ToDate())
	assert.Len(t, m.trends.Rows(), 2)
	assert.Equal(t, "Showing 2 trend points", m.message)
}

func TestDashboardModel_EditRangeInvalid(t *testing.T) {
	m := loaded(t, newTestModel(t, sampleFetcher))

	m, _ = update(t, m, keyPress("tab"))
	m.fromInput.SetValue("05/02/2025")
	m, _ = update(t, m, keyPress("enter"))

	assert.True(t, m.editing)
	assert.Error(t, m.err)
	assert.Contains(t, m.message, "Invalid date")
	assert.Equal(t, "2025-05-01", m.controller.FromDate())
}

func TestDashboardModel_EditRangeCancel(t *testing.T) {
	m := loaded(t, newTestModel(t, sampleFetcher))

	m, _ = update(t, m, keyPress("tab"))
	m.fromInput.SetValue("2025-05-04")
	m, _ = update(t, m, keyPress("esc"))

	assert.False(t, m.editing)
	assert.Equal(t, "2025-05-01", m.controller.FromDate())
}

func TestDashboardModel_EmptyRangeShowsNoTrend(t *testing.T) {
	m := loaded(t, newTestModel(t, sampleFetcher))

	m, _ = update(t, m, keyPress("tab"))
	m.fromInput.SetValue("")
	m, _ = update(t, m, keyPress("enter"))

	assert.Empty(t, m.trends.Rows())
	assert.Contains(t, m.View(), "No trend data in range.")
}

func TestDashboardModel_WithRange(t *testing.T) {
	m := newTestModel(t, sampleFetcher).WithRange("2025-05-04", "")
	m = loaded(t, m)

	assert.Equal(t, "2025-05-04", m.controller.FromDate())
	assert.Equal(t, "2025-05-05", m.controller.ToDate())
	assert.Len(t, m.trends.Rows(), 2)

	// a reload resets to the data bounds
	m = loaded(t, m)
	assert.Equal(t, "2025-05-01", m.controller.FromDate())
}

func TestDashboardModel_HelpAndQuit(t *testing.T) {
	m := loaded(t, newTestModel(t, sampleFetcher))

	m, _ = update(t, m, keyPress("?"))
	assert.Contains(t, m.View(), "Help:")
	m, _ = update(t, m, keyPress("?"))
	assert.NotContains(t, m.View(), "Help:")

	m, cmd := update(t, m, keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "Goodbye!\n", m.View())
}

func TestDashboardModel_CtrlCWhileEditing(t *testing.T) {
	m := loaded(t, newTestModel(t, sampleFetcher))
	m, _ = update(t, m, keyPress("tab"))

	m, cmd := update(t, m, keyPress("ctrl+c"))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}
