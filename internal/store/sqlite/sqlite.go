// Package sqlite provides SQLite storage for patientdesk settings.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/inovacc/patientdesk/internal/model"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Setting keys of the settings table.
const (
	keyBaseURL    = "base_url"
	keyPagingMode = "paging_mode"
	keyPageSize   = "page_size"
	keySortField  = "sort_field"
	keySortDir    = "sort_dir"
	keyTimeout    = "timeout"
)

const queryTimeout = 5 * time.Second

// Store keeps settings as key/value rows.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates it.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't handle multiple writers well
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := NewMigrator(db).MigrateUp(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), queryTimeout)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks if the database is accessible.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// GetConfig returns the stored settings over the defaults.
func (s *Store) GetConfig() (*model.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := newContext()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	cfg := model.DefaultConfig()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}

		if err := apply(&cfg, key, value); err != nil {
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	cfg = cfg.WithDefaults()

	return &cfg, nil
}

// SaveConfig replaces every stored setting with cfg.
func (s *Store) SaveConfig(cfg *model.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := newContext()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	for key, value := range values(cfg) {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`, key, value); err != nil {
			_ = tx.Rollback()

			return fmt.Errorf("saving setting %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// ResetConfig deletes every stored setting.
func (s *Store) ResetConfig() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := newContext()
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings`); err != nil {
		return fmt.Errorf("resetting settings: %w", err)
	}

	return nil
}

func values(cfg *model.Config) map[string]string {
	return map[string]string{
		keyBaseURL:    cfg.BaseURL,
		keyPagingMode: string(cfg.PagingMode),
		keyPageSize:   strconv.Itoa(cfg.PageSize),
		keySortField:  cfg.SortField,
		keySortDir:    cfg.SortDir,
		keyTimeout:    cfg.Timeout.String(),
	}
}

func apply(cfg *model.Config, key, value string) error {
	switch key {
	case keyBaseURL:
		cfg.BaseURL = value
	case keyPagingMode:
		cfg.PagingMode = model.PagingMode(value)
	case keyPageSize:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}

		cfg.PageSize = n
	case keySortField:
		cfg.SortField = value
	case keySortDir:
		cfg.SortDir = value
	case keyTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", key, err)
		}

		cfg.Timeout = d
	}

	return nil
}
