package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"admission-analytics/internal/analytics"
)

// ErrNoSnapshot is returned when the store has not been seeded
var ErrNoSnapshot = errors.New("no admission analytics snapshot stored")

// AnalyticsStore handles database operations for the admission analytics snapshot
type AnalyticsStore struct {
	db *sql.DB
}

// NewAnalyticsStore creates a new analytics store
func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// Seed replaces the stored snapshot with the given one in a single transaction
func (s *AnalyticsStore) Seed(ctx context.Context, snapshot *analytics.AdmissionAnalytics) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("refusing to seed invalid snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"applicant_totals", "program_applications", "application_trends"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO applicant_totals (id, total_applicants, verified_applicants, rejected_applicants, updated_at)
		 VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)`,
		snapshot.TotalApplicants, snapshot.VerifiedApplicants, snapshot.RejectedApplicants)
	if err != nil {
		return fmt.Errorf("failed to insert totals: %w", err)
	}

	for i, pc := range snapshot.ApplicationsPerProgram {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO program_applications (position, program, applicants) VALUES (?, ?, ?)",
			i, pc.Program, pc.Applicants)
		if err != nil {
			return fmt.Errorf("failed to insert program %q: %w", pc.Program, err)
		}
	}

	for _, tp := range snapshot.ApplicationTrends {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO application_trends (date, applicants) VALUES (?, ?)",
			tp.Date, tp.Applicants)
		if err != nil {
			return fmt.Errorf("failed to insert trend %s: %w", tp.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// IsEmpty reports whether no snapshot has been seeded yet
func (s *AnalyticsStore) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM applicant_totals").Scan(&count); err != nil {
		return false, fmt.Errorf("failed to count totals: %w", err)
	}
	return count == 0, nil
}

// SeedIfEmpty seeds the store only when nothing has been stored yet. It
// reports whether a seed happened.
func (s *AnalyticsStore) SeedIfEmpty(ctx context.Context, snapshot *analytics.AdmissionAnalytics) (bool, error) {
	empty, err := s.IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}
	if err := s.Seed(ctx, snapshot); err != nil {
		return false, err
	}
	return true, nil
}

// Snapshot reads the stored snapshot: programs in seed order, trends by date
func (s *AnalyticsStore) Snapshot(ctx context.Context) (*analytics.AdmissionAnalytics, error) {
	snapshot := &analytics.AdmissionAnalytics{}

	err := s.db.QueryRowContext(ctx,
		"SELECT total_applicants, verified_applicants, rejected_applicants FROM applicant_totals WHERE id = 1").
		Scan(&snapshot.TotalApplicants, &snapshot.VerifiedApplicants, &snapshot.RejectedApplicants)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to read totals: %w", err)
	}

	if snapshot.ApplicationsPerProgram, err = s.programs(ctx); err != nil {
		return nil, err
	}
	if snapshot.ApplicationTrends, err = s.trends(ctx); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// programs returns the per-program counts in seed order. Rows are closed
// before returning since the pool holds a single connection.
func (s *AnalyticsStore) programs(ctx context.Context) ([]analytics.ProgramCount, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT program, applicants FROM program_applications ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	programs := []analytics.ProgramCount{}
	for rows.Next() {
		var pc analytics.ProgramCount
		if err := rows.Scan(&pc.Program, &pc.Applicants); err != nil {
			return nil, err
		}
		programs = append(programs, pc)
	}

	return programs, rows.Err()
}

// trends returns the trend points ascending by date
func (s *AnalyticsStore) trends(ctx context.Context) ([]analytics.TrendPoint, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT date, applicants FROM application_trends ORDER BY date")
	if err != nil {
		return nil, fmt.Errorf("failed to query trends: %w", err)
	}
	defer rows.Close()

	trends := []analytics.TrendPoint{}
	for rows.Next() {
		var tp analytics.TrendPoint
		if err := rows.Scan(&tp.Date, &tp.Applicants); err != nil {
			return nil, err
		}
		trends = append(trends, tp)
	}

	return trends, rows.Err()
}
