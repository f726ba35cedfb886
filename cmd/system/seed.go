package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
	"github.com/Alijeyrad/nutriplan_backend/pkg/database"
	"github.com/Alijeyrad/nutriplan_backend/pkg/token"
)

func NewSeedCommand() *cobra.Command {
	var printTokens bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users (admin, nutritionists and patients)",
		Long: `Insert a small set of demo users for local development.

Users that already exist (matched by email) are left untouched, so the command
can be run repeatedly. With --tokens an access token is printed for each user.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			db, err := database.New(database.FromCentralConfig(cfg.Database))
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			client, err := repo.NewClient(db.Dialect(), db.GetConnection())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			users, err := seedUsers(ctx, client)
			if err != nil {
				return err
			}

			var tokens *token.Manager
			if printTokens {
				if tokens, err = token.NewFromCentral(cfg); err != nil {
					return err
				}
			}
			for _, u := range users {
				fmt.Printf("%-12s %-36s %s\n", u.Role, u.ID, u.Email)
				if tokens != nil {
					tok, err := tokens.IssueAccess(u.ID, string(u.Role))
					if err != nil {
						return err
					}
					fmt.Printf("  token: %s\n", tok)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&printTokens, "tokens", false, "Print an access token for every seeded user")

	return cmd
}

var weekdayHours = []repo.HourRange{{Start: "09:00", End: "13:00"}, {Start: "14:00", End: "18:00"}}

func weekTemplate(days ...string) []repo.DayAvailability {
	out := make([]repo.DayAvailability, 0, len(days))
	for _, d := range days {
		out = append(out, repo.DayAvailability{Day: d, Hours: weekdayHours})
	}
	return out
}

// seedUsers creates the demo roster. Existing emails are returned as stored.
func seedUsers(ctx context.Context, c *repo.Client) ([]*repo.User, error) {
	admin := &repo.User{Name: "Clinic Admin", Email: "admin@nutriplan.local", Role: repo.RoleAdmin, Active: true}
	ana := &repo.User{
		Name: "Ana Morales", Email: "ana@nutriplan.local", Role: repo.RoleNutritionist, Active: true,
		Availability: weekTemplate("monday", "tuesday", "wednesday", "thursday", "friday"),
	}
	bruno := &repo.User{
		Name: "Bruno Silva", Email: "bruno@nutriplan.local", Role: repo.RoleNutritionist, Active: true,
		Availability: weekTemplate("monday", "wednesday", "friday"),
	}

	var out []*repo.User
	for _, u := range []*repo.User{admin, ana, bruno} {
		stored, err := ensureUser(ctx, c, u)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}

	patients := []struct {
		name, email string
		owner       *repo.User
	}{
		{"Carla Diaz", "carla@nutriplan.local", out[1]},
		{"Diego Rojas", "diego@nutriplan.local", out[1]},
		{"Elena Fuentes", "elena@nutriplan.local", out[2]},
	}
	for _, p := range patients {
		owner := p.owner.ID
		stored, err := ensureUser(ctx, c, &repo.User{
			Name: p.name, Email: p.email, Role: repo.RolePatient, NutritionistID: &owner, Active: true,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}

func ensureUser(ctx context.Context, c *repo.Client, u *repo.User) (*repo.User, error) {
	existing, err := c.User.GetByEmail(ctx, u.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup %s: %w", u.Email, err)
	}
	u.ID = uuid.New()
	created, err := c.User.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", u.Email, err)
	}
	return created, nil
}
