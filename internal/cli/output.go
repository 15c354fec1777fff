package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"admission-analytics/internal/analytics"
)

// NoDataMessage is shown whenever no snapshot could be loaded
const NoDataMessage = "No data available"

// barWidth is the width of the longest bar in the program table
const barWidth = 20

// OutputFormatter handles different output formats
type OutputFormatter struct {
	format   string
	quiet    bool
	out      io.Writer
	errOut   io.Writer
	renderer *lipgloss.Renderer
	styles   Styles
}

// Styles holds the lipgloss styles used for severity emphasis
type Styles struct {
	High   lipgloss.Style
	Medium lipgloss.Style
	Normal lipgloss.Style
	Header lipgloss.Style
	Muted  lipgloss.Style
}

// NewStyles builds the severity styles on the given renderer
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		High:   r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Medium: r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		Normal: r.NewStyle(),
		Header: r.NewStyle().Bold(true),
		Muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// ForSeverity returns the style for a severity tier
func (s Styles) ForSeverity(sev analytics.Severity) lipgloss.Style {
	switch sev {
	case analytics.SeverityHigh:
		return s.High
	case analytics.SeverityMedium:
		return s.Medium
	default:
		return s.Normal
	}
}

// NewOutputFormatter creates a formatter writing to stdout and stderr
func NewOutputFormatter(format string, quiet, noColor bool) *OutputFormatter {
	return NewOutputFormatterWithWriters(format, quiet, noColor, os.Stdout, os.Stderr)
}

// NewOutputFormatterWithWriters creates a formatter writing to out and errOut.
// Colors are only emitted when out is a terminal and noColor is false.
func NewOutputFormatterWithWriters(format string, quiet, noColor bool, out, errOut io.Writer) *OutputFormatter {
	renderer := lipgloss.NewRenderer(out)
	if noColor || !IsTerminal(out) {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return &OutputFormatter{
		format:   format,
		quiet:    quiet,
		out:      out,
		errOut:   errOut,
		renderer: renderer,
		styles:   NewStyles(renderer),
	}
}

// IsTerminal reports whether w is a file attached to a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SummaryView is the JSON shape of the summary command
type SummaryView struct {
	TotalApplicants        int                      `json:"totalApplicants"`
	VerifiedApplicants     int                      `json:"verifiedApplicants"`
	RejectedApplicants     int                      `json:"rejectedApplicants"`
	ApplicationsPerProgram []analytics.ProgramCount `json:"applicationsPerProgram"`
	FromDate               string                   `json:"fromDate"`
	ToDate                 string                   `json:"toDate"`
	FilteredTrends         []analytics.TrendPoint   `json:"filteredTrends"`
}

// PrintSummary prints the cards, the per-program counts and the filtered
// trend series for the selected range
func (f *OutputFormatter) PrintSummary(s *analytics.AdmissionAnalytics, from, to string, trends []analytics.TrendPoint) error {
	if s == nil {
		return f.PrintNoData()
	}

	if f.quiet {
		for _, card := range analytics.Cards(s) {
			fmt.Fprintf(f.out, "%d\n", card.Value)
		}
		return nil
	}

	switch f.format {
	case "json":
		return f.encodeJSON(SummaryView{
			TotalApplicants:        s.TotalApplicants,
			VerifiedApplicants:     s.VerifiedApplicants,
			RejectedApplicants:     s.RejectedApplicants,
			ApplicationsPerProgram: s.ApplicationsPerProgram,
			FromDate:               from,
			ToDate:                 to,
			FilteredTrends:         nonNilTrends(trends),
		})
	case "table":
		f.printCards(s)
		fmt.Fprintln(f.out)
		fmt.Fprintln(f.out, f.styles.Header.Render("Applications Per Program"))
		f.printProgramsTable(s.ApplicationsPerProgram)
		fmt.Fprintln(f.out)
		fmt.Fprintln(f.out, f.styles.Header.Render(fmt.Sprintf("Application Trends (%s)", rangeLabel(from, to))))
		f.printTrendsTable(trends)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintTrends prints trend rows
func (f *OutputFormatter) PrintTrends(trends []analytics.TrendPoint) error {
	if f.quiet {
		for _, tp := range trends {
			fmt.Fprintln(f.out, tp.Date)
		}
		return nil
	}

	switch f.format {
	case "json":
		return f.encodeJSON(nonNilTrends(trends))
	case "table":
		f.printTrendsTable(trends)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintPrograms prints per-program rows
func (f *OutputFormatter) PrintPrograms(programs []analytics.ProgramCount) error {
	if f.quiet {
		for _, pc := range programs {
			fmt.Fprintln(f.out, pc.Program)
		}
		return nil
	}

	switch f.format {
	case "json":
		if programs == nil {
			programs = []analytics.ProgramCount{}
		}
		return f.encodeJSON(programs)
	case "table":
		f.printProgramsTable(programs)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", f.format)
	}
}

// PrintNoData reports the empty state
func (f *OutputFormatter) PrintNoData() error {
	if f.quiet {
		return nil
	}
	if f.format == "json" {
		return f.encodeJSON(map[string]string{"error": NoDataMessage})
	}
	fmt.Fprintln(f.out, f.styles.Muted.Render(NoDataMessage))
	return nil
}

// PrintSuccess prints a success message
func (f *OutputFormatter) PrintSuccess(message string) {
	if !f.quiet {
		fmt.Fprintf(f.out, "✓ %s\n", message)
	}
}

// PrintError prints an error message
func (f *OutputFormatter) PrintError(err error) {
	if !f.quiet {
		fmt.Fprintf(f.errOut, "✗ Error: %v\n", err)
	}
}

// PrintInfo prints an informational message
func (f *OutputFormatter) PrintInfo(message string) {
	if !f.quiet {
		fmt.Fprintf(f.out, "ℹ %s\n", message)
	}
}

// Styles exposes the formatter's styles to other renderers
func (f *OutputFormatter) Styles() Styles {
	return f.styles
}

func (f *OutputFormatter) encodeJSON(v any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printCards prints the three headline counts with severity emphasis
func (f *OutputFormatter) printCards(s *analytics.AdmissionAnalytics) {
	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	for _, card := range analytics.Cards(s) {
		value := f.styles.ForSeverity(card.Severity).Render(FormatCount(card.Value))
		fmt.Fprintf(w, "%s\t%s\n", card.Label, value)
	}
}

// printProgramsTable prints programs in table format
func (f *OutputFormatter) printProgramsTable(programs []analytics.ProgramCount) {
	if len(programs) == 0 {
		fmt.Fprintln(f.out, "No programs found.")
		return
	}

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "PROGRAM\tAPPLICANTS\t")

	peak := 0
	for _, pc := range programs {
		if pc.Applicants > peak {
			peak = pc.Applicants
		}
	}

	for _, pc := range programs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", truncate(pc.Program, 30), FormatCount(pc.Applicants), Bar(pc.Applicants, peak, barWidth))
	}
}

// printTrendsTable prints trend points in table format
func (f *OutputFormatter) printTrendsTable(trends []analytics.TrendPoint) {
	if len(trends) == 0 {
		fmt.Fprintln(f.out, "No trend data in range.")
		return
	}

	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "DATE\tAPPLICANTS")
	for _, tp := range trends {
		fmt.Fprintf(w, "%s\t%s\n", tp.Date, FormatCount(tp.Applicants))
	}
}

// FormatCount renders n with thousands separators
func FormatCount(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Bar renders value as a horizontal bar scaled so that peak fills width
func Bar(value, peak, width int) string {
	if peak <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	n := value * width / peak
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func rangeLabel(from, to string) string {
	if from == "" || to == "" {
		return "no range selected"
	}
	return from + " to " + to
}

func nonNilTrends(trends []analytics.TrendPoint) []analytics.TrendPoint {
	if trends == nil {
		return []analytics.TrendPoint{}
	}
	return trends
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
