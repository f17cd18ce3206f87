package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/rewired-gh/mailstats/internal/models"
)

// Tables are dropped and recreated on every export; the database mirrors a
// single run.
const schema = `
DROP TABLE IF EXISTS person_counts;
DROP TABLE IF EXISTS monthly_series;

CREATE TABLE person_counts (
	rank       INTEGER NOT NULL,
	person     TEXT    NOT NULL PRIMARY KEY,
	senders    INTEGER NOT NULL,
	recipients INTEGER NOT NULL
);

CREATE TABLE monthly_series (
	metric TEXT    NOT NULL,
	person TEXT    NOT NULL,
	month  TEXT    NOT NULL,
	value  INTEGER NOT NULL,
	PRIMARY KEY (metric, person, month)
);
`

// Metric names used in monthly_series
const (
	MetricVolume   = "volume"
	MetricContacts = "unique_contacts"
)

// ExportSQLite writes the count table and the monthly series into the SQLite
// database at name, creating it if needed
func (s *Store) ExportSQLite(name string, table []models.PersonCount, series map[string][]models.Series) (string, error) {
	path := s.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), s.dirPermissions); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return "", fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(schema); err != nil {
		return "", fmt.Errorf("failed to create schema: %w", err)
	}

	countStmt, err := tx.Prepare(`INSERT INTO person_counts (rank, person, senders, recipients) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare count insert: %w", err)
	}
	defer countStmt.Close()

	for i, row := range table {
		if _, err := countStmt.Exec(i+1, row.Person, row.Senders, row.Recipients); err != nil {
			return "", fmt.Errorf("failed to insert count for %q: %w", row.Person, err)
		}
	}

	seriesStmt, err := tx.Prepare(`INSERT INTO monthly_series (metric, person, month, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare series insert: %w", err)
	}
	defer seriesStmt.Close()

	for metric, set := range series {
		for _, s := range set {
			for _, pt := range s.Points {
				if _, err := seriesStmt.Exec(metric, s.Person, pt.Month.Format("2006-01"), pt.Value); err != nil {
					return "", fmt.Errorf("failed to insert %s point for %q: %w", metric, s.Person, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit export: %w", err)
	}
	return path, nil
}
