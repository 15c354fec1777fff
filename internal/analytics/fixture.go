package analytics

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SampleData returns the built-in sample snapshot served by the mock API
func SampleData() *AdmissionAnalytics {
	return &AdmissionAnalytics{
		TotalApplicants:    1200,
		VerifiedApplicants: 950,
		RejectedApplicants: 150,
		ApplicationsPerProgram: []ProgramCount{
			{Program: "CS", Applicants: 400},
			{Program: "IT", Applicants: 300},
			{Program: "ECE", Applicants: 250},
			{Program: "ME", Applicants: 250},
		},
		ApplicationTrends: []TrendPoint{
			{Date: "2025-05-01", Applicants: 100},
			{Date: "2025-05-02", Applicants: 120},
			{Date: "2025-05-03", Applicants: 150},
			{Date: "2025-05-04", Applicants: 180},
			{Date: "2025-05-05", Applicants: 160},
		},
	}
}

// LoadFixture reads a snapshot from a YAML (or JSON, which YAML accepts) file
// and validates it
func LoadFixture(path string) (*AdmissionAnalytics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes and validates a YAML snapshot. Unknown fields are rejected.
func ParseFixture(data []byte) (*AdmissionAnalytics, error) {
	var snapshot AdmissionAnalytics
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if err := snapshot.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &snapshot, nil
}
