package analytics

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used by trend points and date bounds
const DateLayout = "2006-01-02"

// AdmissionAnalytics is a snapshot of admission statistics
type AdmissionAnalytics struct {
	TotalApplicants        int            `json:"totalApplicants" yaml:"totalApplicants"`
	VerifiedApplicants     int            `json:"verifiedApplicants" yaml:"verifiedApplicants"`
	RejectedApplicants     int            `json:"rejectedApplicants" yaml:"rejectedApplicants"`
	ApplicationsPerProgram []ProgramCount `json:"applicationsPerProgram" yaml:"applicationsPerProgram"`
	ApplicationTrends      []TrendPoint   `json:"applicationTrends" yaml:"applicationTrends"`
}

// ProgramCount is the number of applicants for a single program
type ProgramCount struct {
	Program    string `json:"program" yaml:"program"`
	Applicants int    `json:"applicants" yaml:"applicants"`
}

// TrendPoint is the number of applications received on a calendar date
type TrendPoint struct {
	Date       string `json:"date" yaml:"date"`
	Applicants int    `json:"applicants" yaml:"applicants"`
}

// ParseDate parses a calendar date in DateLayout
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Validate checks the snapshot against the admission analytics schema.
// Counts must be non-negative, program labels unique, and trend dates
// valid calendar dates in strictly ascending order.
func (a *AdmissionAnalytics) Validate() error {
	if a.TotalApplicants < 0 {
		return fmt.Errorf("totalApplicants must be non-negative, got %d", a.TotalApplicants)
	}
	if a.VerifiedApplicants < 0 {
		return fmt.Errorf("verifiedApplicants must be non-negative, got %d", a.VerifiedApplicants)
	}
	if a.RejectedApplicants < 0 {
		return fmt.Errorf("rejectedApplicants must be non-negative, got %d", a.RejectedApplicants)
	}

	seen := make(map[string]bool, len(a.ApplicationsPerProgram))
	for i, p := range a.ApplicationsPerProgram {
		if p.Program == "" {
			return fmt.Errorf("applicationsPerProgram[%d]: program label is empty", i)
		}
		if seen[p.Program] {
			return fmt.Errorf("applicationsPerProgram[%d]: duplicate program %q", i, p.Program)
		}
		seen[p.Program] = true
		if p.Applicants < 0 {
			return fmt.Errorf("applicationsPerProgram[%d]: applicants must be non-negative, got %d", i, p.Applicants)
		}
	}

	var prev time.Time
	for i, tp := range a.ApplicationTrends {
		d, err := ParseDate(tp.Date)
		if err != nil {
			return fmt.Errorf("applicationTrends[%d]: invalid date %q: %w", i, tp.Date, err)
		}
		if i > 0 && !d.After(prev) {
			return fmt.Errorf("applicationTrends[%d]: date %s is not after %s", i, tp.Date, a.ApplicationTrends[i-1].Date)
		}
		if tp.Applicants < 0 {
			return fmt.Errorf("applicationTrends[%d]: applicants must be non-negative, got %d", i, tp.Applicants)
		}
		prev = d
	}

	return nil
}

// Clone returns a deep copy so callers cannot mutate shared slices
func (a *AdmissionAnalytics) Clone() *AdmissionAnalytics {
	if a == nil {
		return nil
	}
	out := *a
	if a.ApplicationsPerProgram != nil {
		out.ApplicationsPerProgram = make([]ProgramCount, len(a.ApplicationsPerProgram))
		copy(out.ApplicationsPerProgram, a.ApplicationsPerProgram)
	}
	if a.ApplicationTrends != nil {
		out.ApplicationTrends = make([]TrendPoint, len(a.ApplicationTrends))
		copy(out.ApplicationTrends, a.ApplicationTrends)
	}
	return &out
}

// DateBounds returns the first and last trend dates, or ok=false when there
// are no trend points
func (a *AdmissionAnalytics) DateBounds() (from, to string, ok bool) {
	if a == nil || len(a.ApplicationTrends) == 0 {
		return "", "", false
	}
	return a.ApplicationTrends[0].Date, a.ApplicationTrends[len(a.ApplicationTrends)-1].Date, true
}

// FilterTrends returns the points whose date d satisfies from <= d <= to,
// compared as calendar dates. Unset or unparsable bounds yield an empty result.
// Source order is preserved.
func FilterTrends(trends []TrendPoint, from, to string) []TrendPoint {
	result := []TrendPoint{}
	if from == "" || to == "" {
		return result
	}
	fromDate, err := ParseDate(from)
	if err != nil {
		return result
	}
	toDate, err := ParseDate(to)
	if err != nil {
		return result
	}

	for _, tp := range trends {
		d, err := ParseDate(tp.Date)
		if err != nil {
			continue
		}
		if d.Before(fromDate) || d.After(toDate) {
			continue
		}
		result = append(result, tp)
	}
	return result
}
