package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "reports: saved optimization reports",
		SQL: `
CREATE TABLE reports (
    id               TEXT PRIMARY KEY,
    content_type     TEXT NOT NULL,
    quality          TEXT NOT NULL,
    steps            INTEGER NOT NULL,
    retention        REAL NOT NULL CHECK (retention >= 0 AND retention <= 1),
    perceptual       INTEGER NOT NULL CHECK (perceptual BETWEEN 0 AND 100),
    total_studs      INTEGER NOT NULL,
    estimated_bricks INTEGER NOT NULL,
    build_type       TEXT NOT NULL CHECK (build_type IN ('mosaic', 'sculpture')),
    payload          TEXT NOT NULL,
    created_at       INTEGER NOT NULL
);

CREATE INDEX idx_reports_created_at ON reports(created_at DESC);
`,
	},
	{
		Version:     2,
		Description: "reports: index for content type listings",
		SQL: `
CREATE INDEX idx_reports_type_created ON reports(content_type, created_at DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
