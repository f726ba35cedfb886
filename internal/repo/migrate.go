package repo

import (
	"context"
	stdsql "database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"entgo.io/ent/dialect"
)

//go:embed migrations
var migrationFS embed.FS

// Migration is a single embedded NNN_name.sql file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrator applies the embedded migrations for one dialect and records the
// applied version in schema_version.
type Migrator struct {
	db      *stdsql.DB
	dialect string
	fs      fs.FS
}

func NewMigrator(dialectName string, db *stdsql.DB) (*Migrator, error) {
	var dir string
	switch dialectName {
	case dialect.Postgres:
		dir = "migrations/postgres"
	case dialect.SQLite:
		dir = "migrations/sqlite"
	default:
		return nil, fmt.Errorf("repo: no migrations for dialect %q", dialectName)
	}
	sub, err := fs.Sub(migrationFS, dir)
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, dialect: dialectName, fs: sub}, nil
}

func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)`)
	return err
}

// CurrentVersion returns 0 on a fresh database.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return 0, fmt.Errorf("ensure schema_version table: %w", err)
	}
	var version int
	err := m.db.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&version)
	if errors.Is(err, stdsql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Migrations returns the embedded migrations sorted by version.
func (m *Migrator) Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		parts := strings.SplitN(e.Name(), "_", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid migration filename %s (expected NNN_name.sql)", e.Name())
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil || version < 1 {
			return nil, fmt.Errorf("invalid version in migration filename %s", e.Name())
		}
		content, err := fs.ReadFile(m.fs, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		out = append(out, Migration{
			Version: version,
			Name:    strings.TrimSuffix(parts[1], ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	for i := 1; i < len(out); i++ {
		if out[i].Version == out[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", out[i].Version)
		}
	}
	return out, nil
}

// Up applies every pending migration, each in its own transaction, and
// returns how many were applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return 0, err
	}
	migrations, err := m.Migrations()
	if err != nil {
		return 0, err
	}
	if len(migrations) == 0 {
		return 0, nil
	}

	latest := migrations[len(migrations)-1].Version
	if current > latest {
		return 0, fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}

	insertVersion := `INSERT INTO schema_version (version) VALUES (?)`
	if m.dialect == dialect.Postgres {
		insertVersion = `INSERT INTO schema_version (version) VALUES ($1)`
	}

	start := time.Now()
	applied := 0
	for _, mig := range migrations {
		if mig.Version <= current {
			continue
		}
		slog.Info("applying migration", "version", mig.Version, "name", mig.Name, "dialect", m.dialect)

		tx, err := m.db.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("begin migration %d: %w", mig.Version, err)
		}
		if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("apply migration %d (%s): %w", mig.Version, mig.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("clear version in migration %d: %w", mig.Version, err)
		}
		if _, err := tx.ExecContext(ctx, insertVersion, mig.Version); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("set version in migration %d: %w", mig.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("commit migration %d: %w", mig.Version, err)
		}
		applied++
	}

	if applied > 0 {
		slog.Info("migrations applied", "count", applied, "version", latest, "duration", time.Since(start))
	}
	return applied, nil
}
