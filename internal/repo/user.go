package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var userColumns = []string{
	"id", "name", "email", "role", "nutritionist_id", "availability", "active", "created_at",
}

type UserClient struct {
	config
}

func (c *UserClient) Create(ctx context.Context, u *User) (*User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	availability, err := json.Marshal(availabilityOrEmpty(u.Availability))
	if err != nil {
		return nil, fmt.Errorf("encode availability: %w", err)
	}

	var nutritionist any
	if u.NutritionistID != nil {
		nutritionist = *u.NutritionistID
	}

	query, args := c.builder().Insert(tableUsers).
		Columns(userColumns...).
		Values(u.ID, u.Name, u.Email, string(u.Role), nutritionist, string(availability), u.Active, u.CreatedAt).
		Query()
	if _, err := c.exec(ctx, query, args); err != nil {
		return nil, mapWriteError(err)
	}
	return u, nil
}

func (c *UserClient) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return c.first(ctx, sql.EQ("id", id))
}

func (c *UserClient) GetByEmail(ctx context.Context, email string) (*User, error) {
	return c.first(ctx, sql.EQ("email", email))
}

// ListByRole returns active users with the given role ordered by name.
func (c *UserClient) ListByRole(ctx context.Context, role Role) ([]*User, error) {
	return c.query(ctx, sql.And(sql.EQ("role", string(role)), sql.EQ("active", true)), 0)
}

func (c *UserClient) first(ctx context.Context, p *sql.Predicate) (*User, error) {
	items, err := c.query(ctx, p, 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items[0], nil
}

func (c *UserClient) query(ctx context.Context, p *sql.Predicate, limit int) ([]*User, error) {
	s := c.builder().Select(userColumns...).From(sql.Table(tableUsers)).Where(p).OrderBy("name")
	if limit > 0 {
		s.Limit(limit)
	}
	query, args := s.Query()

	rows := &sql.Rows{}
	if err := c.driver.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		var (
			u            User
			role, avail  string
			nutritionist uuid.NullUUID
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role, &nutritionist, &avail, &u.Active, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Role = Role(role)
		if nutritionist.Valid {
			id := nutritionist.UUID
			u.NutritionistID = &id
		}
		if avail != "" {
			if err := json.Unmarshal([]byte(avail), &u.Availability); err != nil {
				return nil, fmt.Errorf("decode availability: %w", err)
			}
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func availabilityOrEmpty(a []DayAvailability) []DayAvailability {
	if a == nil {
		return []DayAvailability{}
	}
	return a
}
