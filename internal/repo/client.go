package repo

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
)

const (
	tableAppointments = "appointments"
	tableUsers        = "users"
)

type config struct {
	driver  dialect.Driver
	dialect string
}

// Client gives access to the scheduling tables through the ent SQL builder.
type Client struct {
	config

	Appointment *AppointmentClient
	User        *UserClient
}

// NewClient wraps an already opened database handle. dialectName is one of
// dialect.Postgres or dialect.SQLite.
func NewClient(dialectName string, db *stdsql.DB) (*Client, error) {
	switch dialectName {
	case dialect.Postgres, dialect.SQLite:
	default:
		return nil, fmt.Errorf("repo: unsupported dialect %q", dialectName)
	}
	drv := sql.OpenDB(dialectName, db)
	cfg := config{driver: drv, dialect: dialectName}
	return &Client{
		config:      cfg,
		Appointment: &AppointmentClient{config: cfg},
		User:        &UserClient{config: cfg},
	}, nil
}

func (c *Client) Dialect() string { return c.dialect }

func (c *Client) Close() error { return c.driver.Close() }

func (c config) builder() *sql.DialectBuilder { return sql.Dialect(c.dialect) }

func (c config) exec(ctx context.Context, query string, args []any) (stdsql.Result, error) {
	var res stdsql.Result
	if err := c.driver.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}
