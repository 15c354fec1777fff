package analytics

// Severity is the display emphasis tier for a summary count
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityMedium
	SeverityHigh
)

const (
	highThreshold   = 1000
	mediumThreshold = 500
)

// SeverityFor maps a count to its tier: >1000 high, >500 medium, otherwise normal
func SeverityFor(count int) Severity {
	switch {
	case count > highThreshold:
		return SeverityHigh
	case count > mediumThreshold:
		return SeverityMedium
	default:
		return SeverityNormal
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "normal"
	}
}

// Card is one of the three summary counts shown on a dashboard
type Card struct {
	Label    string
	Value    int
	Severity Severity
}

// Cards returns the summary cards for a snapshot. A nil snapshot yields zero
// values, matching the empty dashboard.
func Cards(a *AdmissionAnalytics) []Card {
	var total, verified, rejected int
	if a != nil {
		total, verified, rejected = a.TotalApplicants, a.VerifiedApplicants, a.RejectedApplicants
	}
	return []Card{
		{Label: "Total Applicants", Value: total, Severity: SeverityFor(total)},
		{Label: "Verified Applicants", Value: verified, Severity: SeverityFor(verified)},
		{Label: "Rejected Applicants", Value: rejected, Severity: SeverityFor(rejected)},
	}
}
