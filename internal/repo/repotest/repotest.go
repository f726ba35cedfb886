// Package repotest opens throwaway SQLite stores for tests.
package repotest

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/pkg/database"
)

// NewClient returns a migrated client backed by a SQLite file in t.TempDir.
func NewClient(t testing.TB) *repo.Client {
	t.Helper()

	db, err := database.New(database.Config{
		Driver:       database.DriverSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 4,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	m, err := repo.NewMigrator(db.Dialect(), db.GetConnection())
	if err != nil {
		t.Fatalf("new migrator: %v", err)
	}
	if _, err := m.Up(t.Context()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	client, err := repo.NewClient(db.Dialect(), db.GetConnection())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

// SeedPair inserts a nutritionist and a patient assigned to them.
func SeedPair(t testing.TB, c *repo.Client) (nutritionist, patient *repo.User) {
	t.Helper()
	ctx := t.Context()

	n, err := c.User.Create(ctx, &repo.User{
		Name:   "Nadia Nutri",
		Email:  "nadia-" + uuid.NewString()[:8] + "@example.com",
		Role:   repo.RoleNutritionist,
		Active: true,
		Availability: []repo.DayAvailability{
			{Day: "monday", Hours: []repo.HourRange{{Start: "09:00", End: "13:00"}, {Start: "14:00", End: "17:00"}}},
		},
	})
	if err != nil {
		t.Fatalf("create nutritionist: %v", err)
	}
	p, err := c.User.Create(ctx, &repo.User{
		Name:           "Paul Patient",
		Email:          "paul-" + uuid.NewString()[:8] + "@example.com",
		Role:           repo.RolePatient,
		NutritionistID: &n.ID,
		Active:         true,
	})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return n, p
}

// NewPatient inserts another patient assigned to nutritionistID.
func NewPatient(t testing.TB, c *repo.Client, nutritionistID uuid.UUID) *repo.User {
	t.Helper()
	id := nutritionistID
	p, err := c.User.Create(t.Context(), &repo.User{
		Name:           "Petra Patient",
		Email:          "petra-" + uuid.NewString()[:8] + "@example.com",
		Role:           repo.RolePatient,
		NutritionistID: &id,
		Active:         true,
	})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return p
}

// NewUser inserts u as given, filling a unique email when empty.
func NewUser(t testing.TB, c *repo.Client, u *repo.User) *repo.User {
	t.Helper()
	if u.Email == "" {
		u.Email = string(u.Role) + "-" + uuid.NewString()[:8] + "@example.com"
	}
	created, err := c.User.Create(t.Context(), u)
	if err != nil {
		t.Fatalf("create %s: %v", u.Role, err)
	}
	return created
}
