package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProgressSpinner shows a spinner on stderr while a request is in flight
type ProgressSpinner struct {
	spinner spinner.Model
	message string
	enabled bool
	out     io.Writer
	style   lipgloss.Style

	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// NewProgressSpinner creates a new progress spinner. The spinner only
// animates when stderr is a terminal and colors are allowed; otherwise Start
// prints the message once.
func NewProgressSpinner(message string, noColor bool) *ProgressSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // Blue

	return &ProgressSpinner{
		spinner: s,
		message: message,
		enabled: !noColor && os.Getenv("CI") == "" && IsTerminal(os.Stderr),
		out:     os.Stderr,
		style:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")), // Gray for message
		done:    make(chan struct{}),
	}
}

// Start begins the spinner in a goroutine
func (p *ProgressSpinner) Start() {
	if !p.enabled {
		fmt.Fprintf(p.out, "%s...\n", p.message)
		close(p.done)
		return
	}

	p.program = tea.NewProgram(&spinnerProgram{
		spinner: p.spinner,
		message: p.message,
		style:   p.style,
	}, tea.WithOutput(p.out), tea.WithInput(nil))

	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
}

// Stop stops the spinner and waits for it to clear the line
func (p *ProgressSpinner) Stop() {
	p.once.Do(func() {
		if p.program != nil {
			p.program.Send(completeMsg{})
			<-p.done
		}
	})
}

// spinnerProgram implements the tea.Model interface for the spinner
type spinnerProgram struct {
	spinner  spinner.Model
	message  string
	style    lipgloss.Style
	quitting bool
}

func (s *spinnerProgram) Init() tea.Cmd {
	return s.spinner.Tick
}

func (s *spinnerProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	case completeMsg:
		s.quitting = true
		return s, tea.Quit
	}
	return s, nil
}

func (s *spinnerProgram) View() string {
	if s.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", s.spinner.View(), s.style.Render(s.message))
}

type completeMsg struct{}
