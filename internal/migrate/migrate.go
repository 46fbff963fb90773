// Package migrate applies the embedded SQL migrations using a
// schema_migrations version table with a dirty flag.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/AFA55/pontifex-industries-sub002/migrations"
)

// Migration is one versioned schema change with its up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// EnsureMigrationsTable creates the schema_migrations table if needed. An
// old table without the dirty column is recreated.
func EnsureMigrationsTable(ctx context.Context, db *sql.DB) error {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pragma_table_info('schema_migrations') WHERE name = 'dirty'
	`).Scan(&count)
	if err == nil && count == 0 {
		if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS schema_migrations`); err != nil {
			return err
		}
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// GetCurrentVersion returns the applied version and whether the last run
// left the schema dirty. A fresh database reports version 0.
func GetCurrentVersion(ctx context.Context, db *sql.DB) (int, bool, error) {
	var version, dirty int
	err := db.QueryRowContext(ctx, `
		SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1
	`).Scan(&version, &dirty)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty == 1, nil
}

// SetVersion records the current version and dirty state.
func SetVersion(ctx context.Context, db *sql.DB, version int, dirty bool) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	dirtyInt := 0
	if dirty {
		dirtyInt = 1
	}
	_, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirtyInt)
	return err
}

// LoadMigrations reads the embedded migration files, sorted by version.
// Down files are optional.
func LoadMigrations() ([]Migration, error) {
	var result []Migration

	err := fs.WalkDir(migrations.FS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		matches := upPattern.FindStringSubmatch(filepath.Base(path))
		if matches == nil {
			return nil
		}

		version, _ := strconv.Atoi(matches[1])
		name := matches[2]

		upSQL, err := fs.ReadFile(migrations.FS, path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		downSQL, err := fs.ReadFile(migrations.FS, fmt.Sprintf("%03d_%s.down.sql", version, name))
		if err != nil {
			downSQL = nil
		}

		result = append(result, Migration{
			Version: version,
			Name:    name,
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

// RunMigration applies one migration in the given direction, flagging the
// schema dirty while its statements run.
func RunMigration(ctx context.Context, db *sql.DB, m Migration, up bool) error {
	direction := "up"
	sqlContent := m.UpSQL
	targetVersion := m.Version
	if !up {
		direction = "down"
		sqlContent = m.DownSQL
		targetVersion = m.Version - 1
	}

	fmt.Printf("  %s %d_%s...\n", direction, m.Version, m.Name)

	if err := SetVersion(ctx, db, m.Version, true); err != nil {
		return fmt.Errorf("setting dirty flag: %w", err)
	}

	for _, stmt := range strings.Split(sqlContent, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d %s: %w\nSQL: %s", m.Version, direction, err, stmt)
		}
	}

	if err := SetVersion(ctx, db, targetVersion, false); err != nil {
		return fmt.Errorf("clearing dirty flag: %w", err)
	}
	return nil
}

// MigrateUpTo applies up migrations through targetVersion.
func MigrateUpTo(ctx context.Context, db *sql.DB, all []Migration, currentVersion, targetVersion int) error {
	for _, m := range all {
		if m.Version <= currentVersion {
			continue
		}
		if m.Version > targetVersion {
			break
		}
		if err := RunMigration(ctx, db, m, true); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDownTo rolls back migrations until targetVersion is the applied
// version.
func MigrateDownTo(ctx context.Context, db *sql.DB, all []Migration, currentVersion, targetVersion int) error {
	for i := len(all) - 1; i >= 0; i-- {
		m := all[i]
		if m.Version > currentVersion {
			continue
		}
		if m.Version <= targetVersion {
			break
		}
		if m.DownSQL == "" {
			return fmt.Errorf("no down migration for version %d", m.Version)
		}
		if err := RunMigration(ctx, db, m, false); err != nil {
			return err
		}
	}
	return nil
}

// RunAll brings the database to the newest version. It refuses to run on a
// dirty schema so a failed migration gets looked at instead of papered over.
func RunAll(ctx context.Context, db *sql.DB) error {
	if err := EnsureMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	currentVersion, dirty, err := GetCurrentVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("reading current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d", currentVersion)
	}

	all, err := LoadMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	for _, m := range all {
		if m.Version <= currentVersion {
			continue
		}
		if err := RunMigration(ctx, db, m, true); err != nil {
			return err
		}
	}
	return nil
}
