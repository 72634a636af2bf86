package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	gooseUp   = "-- +goose Up"
	gooseDown = "-- +goose Down"
)

// runMigrations applies the Up sections of migrations/*.sql in version order
// without goose, recording each version in schema_migrations.
func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	files, err := filepath.Glob(filepath.Join(migrationsDir(), "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Slice(files, func(i, j int) bool {
		return extractVersion(files[i]) < extractVersion(files[j])
	})

	for _, file := range files {
		version := extractVersion(file)
		if applied[version] {
			fmt.Printf("Migration %d already applied, skipping\n", version)
			continue
		}

		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file: %w", err)
		}

		fmt.Printf("Applying migration %d: %s\n", version, filepath.Base(file))
		if err := applyMigration(db, version, upSection(string(raw))); err != nil {
			return err
		}
		fmt.Printf("Migration %d applied successfully\n", version)
	}

	return nil
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func applyMigration(db *sql.DB, version int, statements string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(statements); err != nil {
		return fmt.Errorf("failed to execute migration %d: %w", version, err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", version, err)
	}
	return nil
}

// upSection drops the goose Down block so rollback statements never run forward
func upSection(contents string) string {
	if i := strings.Index(contents, gooseDown); i >= 0 {
		contents = contents[:i]
	}
	return strings.Replace(contents, gooseUp, "", 1)
}

func migrationsDir() string {
	if dir := os.Getenv("GOOSE_MIGRATIONS_DIR"); dir != "" {
		return dir
	}
	return "migrations"
}

func extractVersion(filename string) int {
	var version int
	fmt.Sscanf(strings.SplitN(filepath.Base(filename), "_", 2)[0], "%d", &version)
	return version
}
