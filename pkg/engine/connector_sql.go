package engine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLConnector is the database/sql primitive used for MySQL, SQLite and SQL Server.
// Named placeholders are bound by sqlx with the bind style of the driver.
type SQLConnector struct {
	db     *sqlx.DB
	config ConnectorConfig
}

// NewSQLConnector creates a new connector (does not connect yet)
func NewSQLConnector(config ConnectorConfig) *SQLConnector {
	return &SQLConnector{config: config}
}

// NewSQLConnectorFromDB wraps an already opened database
func NewSQLConnectorFromDB(db *sql.DB, driver Driver) *SQLConnector {
	return &SQLConnector{
		db:     sqlx.NewDb(db, string(driver)),
		config: ConnectorConfig{Driver: driver},
	}
}

// Driver returns the configured driver, MySQL when unset
func (c *SQLConnector) Driver() Driver {
	if c.config.Driver == "" {
		return DriverMySQL
	}
	return c.config.Driver
}

// Connect opens the database and verifies it answers
func (c *SQLConnector) Connect(ctx context.Context) error {
	driver := c.Driver()

	db, err := sqlx.ConnectContext(ctx, string(driver), c.config.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if c.config.MaxConns > 0 {
		db.SetMaxOpenConns(int(c.config.MaxConns))
	}
	if c.config.MinConns > 0 {
		db.SetMaxIdleConns(int(c.config.MinConns))
	}
	if c.config.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(c.config.MaxIdleTime)
	}
	// each connection to ":memory:" is a distinct database
	if driver == DriverSQLite && c.config.DSN() == ":memory:" {
		db.SetMaxOpenConns(1)
		db.SetConnMaxIdleTime(0)
	}

	c.db = db
	return nil
}

// DB returns the underlying handle, nil if not connected
func (c *SQLConnector) DB() *sqlx.DB {
	return c.db
}

func (c *SQLConnector) IsConnected() bool {
	return c.db != nil
}

func (c *SQLConnector) Ping(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNoConnection
	}
	return c.db.PingContext(ctx)
}

func (c *SQLConnector) Close() {
	if c.db != nil {
		c.db.Close()
		c.db = nil
	}
}

// Query implements Primitive
func (c *SQLConnector) Query(ctx context.Context, stmt Statement) ([]Row, error) {
	if !c.IsConnected() {
		return nil, ErrNoConnection
	}

	rows, err := c.db.NamedQueryContext(ctx, stmt.SQL, stmt.Args())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		values := make(map[string]interface{})
		if err := rows.MapScan(values); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(Row, len(values))
		for k, v := range values {
			row[k] = normalizeValue(v)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Execute implements Primitive
func (c *SQLConnector) Execute(ctx context.Context, stmt Statement) (ExecResult, error) {
	if !c.IsConnected() {
		return ExecResult{}, ErrNoConnection
	}

	res, err := c.db.NamedExecContext(ctx, stmt.SQL, stmt.Args())
	if err != nil {
		return ExecResult{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return ExecResult{}, err
	}
	out := ExecResult{RowsAffected: affected}
	// sqlserver does not report it
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	return out, nil
}

// normalizeValue turns driver byte slices into strings
func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
