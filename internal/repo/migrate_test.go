package repo_test

import (
	"path/filepath"
	"testing"

	"entgo.io/ent/dialect"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/pkg/database"
)

func TestMigratorUp(t *testing.T) {
	db, err := database.New(database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "migrate.db"),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	m, err := repo.NewMigrator(db.Dialect(), db.GetConnection())
	if err != nil {
		t.Fatalf("NewMigrator: %v", err)
	}

	migrations, err := m.Migrations()
	if err != nil {
		t.Fatalf("Migrations: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no embedded migrations")
	}
	latest := migrations[len(migrations)-1].Version

	applied, err := m.Up(t.Context())
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	if applied != len(migrations) {
		t.Errorf("applied = %d, want %d", applied, len(migrations))
	}

	version, err := m.CurrentVersion(t.Context())
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if version != latest {
		t.Errorf("version = %d, want %d", version, latest)
	}

	applied, err = m.Up(t.Context())
	if err != nil || applied != 0 {
		t.Errorf("second Up = %d, %v; want 0, nil", applied, err)
	}
}

func TestNewMigratorRejectsUnknownDialect(t *testing.T) {
	if _, err := repo.NewMigrator(dialect.MySQL, nil); err == nil {
		t.Fatal("expected error for mysql")
	}
}
