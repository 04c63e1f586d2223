// Package store handles SQLite launch tables.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/launchdash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for launch records.
type Store struct {
	db *sql.DB
}

// Create opens or creates a writable database and applies migrations.
func Create(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// OpenReadOnly opens an existing database without creating or migrating it.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		if cerr := db.Close(); cerr != nil {
			_ = cerr
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS launches (
			id INTEGER PRIMARY KEY,
			flight_number INTEGER NOT NULL DEFAULT 0,
			launch_site TEXT NOT NULL,
			payload_mass_kg REAL NOT NULL CHECK (payload_mass_kg >= 0),
			class INTEGER NOT NULL CHECK (class IN (0, 1)),
			booster_version TEXT NOT NULL DEFAULT '',
			booster_version_category TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_launches_site ON launches(launch_site);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceLaunches clears the launches table and inserts records in order.
func (s *Store) ReplaceLaunches(ctx context.Context, records []model.LaunchRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM launches`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO launches (id, flight_number, launch_site, payload_mass_kg, class, booster_version, booster_version_category)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, r := range records {
		if _, err = stmt.ExecContext(ctx, i+1, r.FlightNumber, r.Site, r.PayloadMassKg, r.Class, r.BoosterVersion, r.BoosterCategory); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// ListLaunches returns all launch records in insertion order.
func (s *Store) ListLaunches(ctx context.Context) ([]model.LaunchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT flight_number, launch_site, payload_mass_kg, class, booster_version, booster_version_category
		FROM launches
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LaunchRecord
	for rows.Next() {
		var r model.LaunchRecord
		if err := rows.Scan(&r.FlightNumber, &r.Site, &r.PayloadMassKg, &r.Class, &r.BoosterVersion, &r.BoosterCategory); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
