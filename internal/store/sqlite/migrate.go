package sqlite

import (
	"cmp"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationName matches 001_description.up.sql and 001_description.down.sql.
var migrationName = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// Migration represents a database migration.
type Migration struct {
	Version     int
	Description string
	UpSQL       string
	DownSQL     string
}

// Migrator handles database migrations.
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a new migration handler.
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// LoadMigrations reads the embedded scripts, ordered by version.
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}

	byVersion := make(map[int]*Migration)

	for _, file := range files {
		parts := migrationName.FindStringSubmatch(path.Base(file))
		if parts == nil {
			continue
		}

		content, err := migrationsFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", file, err)
		}

		version, _ := strconv.Atoi(parts[1])

		mig := byVersion[version]
		if mig == nil {
			mig = &Migration{Version: version, Description: strings.ReplaceAll(parts[2], "_", " ")}
			byVersion[version] = mig
		}

		if parts[3] == "up" {
			mig.UpSQL = string(content)
		} else {
			mig.DownSQL = string(content)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		out = append(out, *mig)
	}

	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })

	return out, nil
}

// CurrentVersion returns the current schema version, zero for a new database.
func (m *Migrator) CurrentVersion() (int, error) {
	var tableName string

	err := m.db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_migrations'
	`).Scan(&tableName)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("checking schema_migrations table: %w", err)
	}

	var version int
	if err := m.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("getting current version: %w", err)
	}

	return version, nil
}

// MigrateUp applies every migration newer than the current version.
func (m *Migrator) MigrateUp() error {
	migrations, current, err := m.state()
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if mig.Version <= current {
			continue
		}

		if err := m.run(mig, mig.UpSQL); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown rolls back the current version.
func (m *Migrator) MigrateDown() error {
	migrations, current, err := m.state()
	if err != nil {
		return err
	}

	if current == 0 {
		return errors.New("no migrations to roll back")
	}

	i := slices.IndexFunc(migrations, func(mig Migration) bool { return mig.Version == current })
	if i < 0 {
		return fmt.Errorf("migration %d not found", current)
	}

	return m.run(migrations[i], migrations[i].DownSQL)
}

func (m *Migrator) state() ([]Migration, int, error) {
	migrations, err := m.LoadMigrations()
	if err != nil {
		return nil, 0, err
	}

	current, err := m.CurrentVersion()
	if err != nil {
		return nil, 0, err
	}

	return migrations, current, nil
}

// run executes one script of mig in a single transaction.
func (m *Migrator) run(mig Migration, script string) error {
	if strings.TrimSpace(script) == "" {
		return fmt.Errorf("migration %d (%s) has no script", mig.Version, mig.Description)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: %w", mig.Version, err)
	}

	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("migration %d (%s): %w", mig.Version, mig.Description, err)
	}

	return tx.Commit()
}
