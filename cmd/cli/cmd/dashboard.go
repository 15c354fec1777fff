package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"admission-analytics/internal/analytics"
	cliapi "admission-analytics/internal/cli"
	"admission-analytics/internal/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Open the interactive dashboard",
	Long: `Open the interactive dashboard. The headline counts, applicants per
program and the trend for the selected range are shown; press tab to edit the
range and r to reload.`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// KeyMap represents the key bindings for the dashboard
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Edit    key.Binding
	Apply   key.Binding
	Cancel  key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Edit: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "edit range"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply range"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// loadCompleteMsg is sent when a controller load returns
type loadCompleteMsg struct {
	status dashboard.Status
}

// DashboardModel is the bubbletea model for the interactive dashboard
type DashboardModel struct {
	ctx        context.Context
	controller *dashboard.Controller
	keys       KeyMap
	spinner    spinner.Model
	programs   table.Model
	trends     table.Model
	fromInput  textinput.Model
	toInput    textinput.Model
	styles     cliapi.Styles
	useColor   bool
	editing    bool
	showHelp   bool
	quitting   bool
	message    string
	err        error

	// range requested on the command line, applied after the first load
	pendingFrom string
	pendingTo   string
}

// NewDashboardModel creates the dashboard model. Loading starts from Init.
func NewDashboardModel(ctx context.Context, controller *dashboard.Controller, config *cliapi.Config, out io.Writer) DashboardModel {
	useColor := !config.NoColor && cliapi.IsTerminal(out)

	renderer := lipgloss.NewRenderer(out)
	if !useColor {
		renderer.SetColorProfile(termenv.Ascii)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = renderer.NewStyle().Foreground(lipgloss.Color("205"))

	programs := table.New(
		table.WithColumns([]table.Column{
			{Title: "Program", Width: 24},
			{Title: "Applicants", Width: 12},
			{Title: "", Width: barWidth + 2},
		}),
		table.WithHeight(6),
	)

	trends := table.New(
		table.WithColumns([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Applicants", Width: 12},
			{Title: "", Width: barWidth + 2},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	if useColor {
		ts := table.DefaultStyles()
		ts.Header = ts.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(false)
		ts.Selected = ts.Selected.
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(false)
		trends.SetStyles(ts)

		ps := ts
		ps.Selected = lipgloss.NewStyle()
		programs.SetStyles(ps)
	} else {
		ts := table.DefaultStyles()
		ts.Selected = lipgloss.NewStyle()
		programs.SetStyles(ts)
		trends.SetStyles(ts)
	}

	return DashboardModel{
		ctx:        ctx,
		controller: controller,
		keys:       DefaultKeyMap(),
		spinner:    s,
		programs:   programs,
		trends:     trends,
		fromInput:  newDateInput("From: "),
		toInput:    newDateInput("To:   "),
		styles:     cliapi.NewStyles(renderer),
		useColor:   useColor,
	}
}

// WithRange sets a range that replaces the data-derived bounds once the
// first load succeeds
func (m DashboardModel) WithRange(from, to string) DashboardModel {
	m.pendingFrom = from
	m.pendingTo = to
	return m
}

// barWidth is the width of the longest bar in the dashboard tables
const barWidth = 20

func newDateInput(prompt string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = "YYYY-MM-DD"
	ti.CharLimit = len(analytics.DateLayout)
	ti.Width = len(analytics.DateLayout) + 1
	return ti
}

// Init starts the first load
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// load runs one controller load. A newer load cancels this one.
func (m DashboardModel) load() tea.Cmd {
	return func() tea.Msg {
		return loadCompleteMsg{status: m.controller.Load(m.ctx)}
	}
}

// Update handles messages and updates the model
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		if m.editing {
			return m.updateEditing(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.message = "Reloading..."
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.load())
		case key.Matches(msg, m.keys.Edit):
			return m.startEditing()
		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.trends, cmd = m.trends.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.trends.SetWidth(min(msg.Width, 60))
		m.programs.SetWidth(min(msg.Width, 60))
		return m, nil

	case loadCompleteMsg:
		if msg.status == dashboard.StatusLoading {
			// superseded by a newer load
			return m, nil
		}
		if msg.status == dashboard.StatusLoaded && (m.pendingFrom != "" || m.pendingTo != "") {
			if m.pendingFrom != "" {
				m.controller.SetFromDate(m.pendingFrom)
			}
			if m.pendingTo != "" {
				m.controller.SetToDate(m.pendingTo)
			}
			m.pendingFrom, m.pendingTo = "", ""
		}
		m.sync()
		switch msg.status {
		case dashboard.StatusLoaded:
			m.message = ""
			m.err = nil
		case dashboard.StatusEmpty:
			m.message = "Failed to load admission analytics"
			m.err = errNoData
		}
		return m, nil

	case spinner.TickMsg:
		if m.controller.Loading() {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m DashboardModel) quit() (tea.Model, tea.Cmd) {
	m.controller.Cancel()
	m.quitting = true
	return m, tea.Quit
}

func (m DashboardModel) startEditing() (tea.Model, tea.Cmd) {
	m.editing = true
	m.fromInput.SetValue(m.controller.FromDate())
	m.toInput.SetValue(m.controller.ToDate())
	m.toInput.Blur()
	m.message = ""
	m.err = nil
	return m, m.fromInput.Focus()
}

func (m DashboardModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.fromInput.Blur()
		m.toInput.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Apply):
		return m.applyRange()
	case key.Matches(msg, m.keys.Edit):
		if m.fromInput.Focused() {
			m.fromInput.Blur()
			return m, m.toInput.Focus()
		}
		m.toInput.Blur()
		return m, m.fromInput.Focus()
	}

	if m.fromInput.Focused() {
		m.fromInput, cmd = m.fromInput.Update(msg)
	} else {
		m.toInput, cmd = m.toInput.Update(msg)
	}
	return m, cmd
}

// applyRange pushes the edited bounds into the controller. Empty bounds are
// allowed and filter the trend to nothing.
func (m DashboardModel) applyRange() (tea.Model, tea.Cmd) {
	from := strings.TrimSpace(m.fromInput.Value())
	to := strings.TrimSpace(m.toInput.Value())

	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := analytics.ParseDate(d); err != nil {
			m.err = err
			m.message = fmt.Sprintf("Invalid date %q: expected YYYY-MM-DD", d)
			return m, nil
		}
	}

	m.controller.SetFromDate(from)
	m.controller.SetToDate(to)
	m.editing = false
	m.fromInput.Blur()
	m.toInput.Blur()
	m.sync()
	m.message = fmt.Sprintf("Showing %d trend points", len(m.trends.Rows()))
	m.err = nil
	return m, nil
}

// sync copies the controller state into the tables
func (m *DashboardModel) sync() {
	state := m.controller.Snapshot()

	var programRows []table.Row
	if state.Data != nil {
		peak := 0
		for _, pc := range state.Data.ApplicationsPerProgram {
			peak = max(peak, pc.Applicants)
		}
		for _, pc := range state.Data.ApplicationsPerProgram {
			programRows = append(programRows, table.Row{pc.Program, cliapi.FormatCount(pc.Applicants), cliapi.Bar(pc.Applicants, peak, barWidth)})
		}
	}
	m.programs.SetRows(programRows)
	m.programs.SetHeight(min(max(len(programRows), 1), 8) + 1)

	filtered := m.controller.FilteredTrends()
	peak := 0
	for _, tp := range filtered {
		peak = max(peak, tp.Applicants)
	}
	trendRows := make([]table.Row, 0, len(filtered))
	for _, tp := range filtered {
		trendRows = append(trendRows, table.Row{tp.Date, cliapi.FormatCount(tp.Applicants), cliapi.Bar(tp.Applicants, peak, barWidth)})
	}
	m.trends.SetRows(trendRows)
	m.trends.GotoTop()

	m.fromInput.SetValue(state.FromDate)
	m.toInput.SetValue(state.ToDate)
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder

	b.WriteString(m.styles.Header.Render("Admission Analytics"))
	b.WriteString("\n\n")

	if m.showHelp {
		b.WriteString(m.helpView())
		b.WriteString("\n")
	}

	state := m.controller.Snapshot()

	if state.Loading {
		b.WriteString(fmt.Sprintf("%s Loading...\n", m.spinner.View()))
		if state.Data == nil {
			b.WriteString(m.statusLine())
			return b.String()
		}
		b.WriteString("\n")
	}

	if state.Data == nil {
		b.WriteString(m.styles.Muted.Render(cliapi.NoDataMessage))
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.cardsView(state.Data))
		b.WriteString("\n\n")

		b.WriteString(m.styles.Header.Render("Applications Per Program"))
		b.WriteString("\n")
		b.WriteString(m.programs.View())
		b.WriteString("\n\n")

		b.WriteString(m.styles.Header.Render("Application Trends"))
		b.WriteString("\n")
		b.WriteString(m.fromInput.View())
		b.WriteString("  ")
		b.WriteString(m.toInput.View())
		b.WriteString("\n")
		if len(m.trends.Rows()) == 0 {
			b.WriteString(m.styles.Muted.Render("No trend data in range."))
		} else {
			b.WriteString(m.trends.View())
		}
		b.WriteString("\n\n")
	}

	if m.message != "" {
		color := lipgloss.Color("82")
		if m.err != nil {
			color = lipgloss.Color("196")
		}
		if m.useColor {
			b.WriteString(lipgloss.NewStyle().Foreground(color).Render(m.message))
		} else {
			b.WriteString(m.message)
		}
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	return b.String()
}

// cardsView renders the three headline counts side by side
func (m DashboardModel) cardsView(data *analytics.AdmissionAnalytics) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(22)
	if m.useColor {
		box = box.BorderForeground(lipgloss.Color("240"))
	}

	cards := analytics.Cards(data)
	rendered := make([]string, len(cards))
	for i, card := range cards {
		value := m.styles.ForSeverity(card.Severity).Render(cliapi.FormatCount(card.Value))
		rendered[i] = box.Render(card.Label + "\n" + value)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// helpView returns the help view
func (m DashboardModel) helpView() string {
	help := strings.Builder{}
	help.WriteString("Help:\n")
	help.WriteString("  ↑/k ↓/j     - Scroll trend\n")
	help.WriteString("  r           - Reload (cancels a load in progress)\n")
	help.WriteString("  tab         - Edit range / switch field\n")
	help.WriteString("  enter       - Apply range\n")
	help.WriteString("  esc         - Cancel editing\n")
	help.WriteString("  ?           - Toggle help\n")
	help.WriteString("  q/ctrl+c    - Quit\n")
	return help.String()
}

// statusLine returns the status line
func (m DashboardModel) statusLine() string {
	if m.editing {
		return "Editing range | tab to switch, enter to apply, esc to cancel"
	}
	state := m.controller.Snapshot()
	switch state.Status {
	case dashboard.StatusLoading:
		return "Loading | Press q to quit"
	case dashboard.StatusEmpty:
		return "No data | Press r to retry, ? for help"
	}
	return fmt.Sprintf("%s to %s | Press ? for help", orDash(state.FromDate), orDash(state.ToDate))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// runDashboard runs the interactive dashboard
func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// diagnostics would corrupt the alternate screen unless sent to a file
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	controller, _, err := newController(cfg, logger)
	if err != nil {
		return err
	}

	if err := validateDates(fromDate, toDate); err != nil {
		return err
	}

	model := NewDashboardModel(cmd.Context(), controller, cfg, os.Stdout).WithRange(fromDate, toDate)

	opts := []tea.ProgramOption{tea.WithContext(cmd.Context())}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		opts = append(opts, tea.WithAltScreen())
	}

	p := tea.NewProgram(model, opts...)
	_, err = p.Run()
	controller.Cancel()
	return err
}
