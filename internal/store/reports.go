package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lazypower/brickdecay/internal/decay"
)

// ReportSummary is the listing view of a saved report.
type ReportSummary struct {
	ID              string            `json:"id"`
	ContentType     decay.ContentType `json:"contentType"`
	Quality         decay.Quality     `json:"quality"`
	Steps           int               `json:"steps"`
	Retention       float64           `json:"retention"`
	Perceptual      int               `json:"perceptualQuality"`
	TotalStuds      int               `json:"totalStuds"`
	EstimatedBricks int               `json:"estimatedBricks"`
	BuildType       string            `json:"buildType"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// SaveReport persists r. An empty ID is filled with a fresh UUID.
func (db *DB) SaveReport(r *decay.Report) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO reports (id, content_type, quality, steps, retention, perceptual,
			total_studs, estimated_bricks, build_type, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, string(r.ContentType), string(r.Quality), r.Optimization.Steps, r.Retention,
		r.PerceptualQuality, r.Bricks.TotalStuds, r.Bricks.EstimatedBricks, r.Bricks.Type,
		string(payload), r.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// GetReport returns the full report with the given id, or nil if none exists.
func (db *DB) GetReport(id string) (*decay.Report, error) {
	var payload string
	err := db.QueryRow(`SELECT payload FROM reports WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	var r decay.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &r, nil
}

// ListReports returns saved reports newest first. A non-empty contentType
// filters the listing; limit <= 0 means 50.
func (db *DB) ListReports(limit int, contentType string) ([]ReportSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, content_type, quality, steps, retention, perceptual,
			total_studs, estimated_bricks, build_type, created_at
		FROM reports`
	args := []any{}
	if contentType != "" {
		query += ` WHERE content_type = ?`
		args = append(args, contentType)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []ReportSummary
	for rows.Next() {
		var (
			s         ReportSummary
			ct, q     string
			createdAt int64
		)
		if err := rows.Scan(&s.ID, &ct, &q, &s.Steps, &s.Retention, &s.Perceptual,
			&s.TotalStuds, &s.EstimatedBricks, &s.BuildType, &createdAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		s.ContentType = decay.ContentType(ct)
		s.Quality = decay.Quality(q)
		s.CreatedAt = time.UnixMilli(createdAt).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteReport removes a report. It reports whether a row was deleted.
func (db *DB) DeleteReport(id string) (bool, error) {
	result, err := db.Exec(`DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete report: %w", err)
	}
	return n > 0, nil
}

// CountReports returns the number of saved reports.
func (db *DB) CountReports() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}
