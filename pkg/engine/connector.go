package engine

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// Driver names the store dialect
type Driver string

const (
	DriverMySQL     Driver = "mysql"
	DriverPostgres  Driver = "postgres"
	DriverSQLite    Driver = "sqlite3"
	DriverSQLServer Driver = "sqlserver"
)

// ParseDriver accepts the usual aliases of each dialect
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(s) {
	case "", "mysql", "mariadb":
		return DriverMySQL, nil
	case "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "sqlserver", "mssql":
		return DriverSQLServer, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", s)
	}
}

// DefaultPort returns the conventional port of the dialect, 0 for sqlite
func (d Driver) DefaultPort() int {
	switch d {
	case DriverPostgres:
		return 5432
	case DriverSQLServer:
		return 1433
	case DriverSQLite:
		return 0
	default:
		return 3306
	}
}

// ConnectorConfig holds the store connection settings
type ConnectorConfig struct {
	Driver   Driver
	Host     string
	Port     int
	Database string // file path for sqlite
	User     string
	Password string
	// Pool settings
	MaxConns    int32
	MinConns    int32
	MaxIdleTime time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() ConnectorConfig {
	return ConnectorConfig{
		Driver:      DriverMySQL,
		Host:        "localhost",
		Port:        3306,
		Database:    "mediatek86",
		User:        "root",
		Password:    "",
		MaxConns:    10,
		MinConns:    2,
		MaxIdleTime: 5 * time.Minute,
	}
}

// ConnectionString builds the pgx connection string
func (c ConnectorConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		c.Host, c.Port, c.Database, c.User, c.Password,
	)
}

// DSN builds the data source name of the configured driver
func (c ConnectorConfig) DSN() string {
	switch c.Driver {
	case DriverPostgres:
		return c.ConnectionString()
	case DriverSQLite:
		if c.Database == "" {
			return ":memory:"
		}
		return c.Database
	case DriverSQLServer:
		u := &url.URL{
			Scheme: "sqlserver",
			User:   url.UserPassword(c.User, c.Password),
			Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		}
		q := url.Values{}
		q.Set("database", c.Database)
		u.RawQuery = q.Encode()
		return u.String()
	default:
		cfg := mysql.NewConfig()
		cfg.User = c.User
		cfg.Passwd = c.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		cfg.DBName = c.Database
		cfg.ParseTime = true
		return cfg.FormatDSN()
	}
}

// Redacted is the DSN with the password masked, for display
func (c ConnectorConfig) Redacted() string {
	if c.Password == "" {
		return c.DSN()
	}
	masked := c
	masked.Password = "****"
	return masked.DSN()
}

// ParseConnectionString parses a database URL:
// postgres://, postgresql://, mysql://, sqlserver:// and sqlite://<path>
func ParseConnectionString(connStr string) (ConnectorConfig, error) {
	config := DefaultConfig()

	scheme, rest, ok := strings.Cut(connStr, "://")
	if !ok {
		return ConnectorConfig{}, fmt.Errorf("missing scheme in %q", connStr)
	}
	driver, err := ParseDriver(scheme)
	if err != nil {
		return ConnectorConfig{}, err
	}
	config.Driver = driver

	if driver == DriverSQLite {
		config.Host = ""
		config.Port = 0
		config.User = ""
		config.Database = rest
		return config, nil
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return ConnectorConfig{}, fmt.Errorf("invalid connection string: %w", err)
	}

	config.Host = u.Hostname()
	config.Port = driver.DefaultPort()
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return ConnectorConfig{}, fmt.Errorf("invalid port %q: %w", p, err)
		}
		config.Port = port
	}

	config.User = ""
	config.Password = ""
	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	config.Database = strings.TrimPrefix(u.Path, "/")
	if db := u.Query().Get("database"); db != "" {
		config.Database = db
	}
	return config, nil
}

// ============================================================
// POSTGRESQL CONNECTOR
// ============================================================

// PgConnector manages a PostgreSQL connection pool
type PgConnector struct {
	pool   *pgxpool.Pool
	config ConnectorConfig
}

// NewPgConnector creates a new connector (does not connect yet)
func NewPgConnector(config ConnectorConfig) *PgConnector {
	return &PgConnector{config: config}
}

// Connect establishes the connection pool
func (c *PgConnector) Connect(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(c.config.ConnectionString())
	if err != nil {
		return fmt.Errorf("invalid connection config: %w", err)
	}

	if c.config.MaxConns > 0 {
		poolConfig.MaxConns = c.config.MaxConns
	}
	poolConfig.MinConns = c.config.MinConns
	poolConfig.MaxConnIdleTime = c.config.MaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	c.pool = pool
	return nil
}

func (c *PgConnector) Driver() Driver {
	return DriverPostgres
}

// Pool returns the underlying connection pool
// Returns nil if not connected
func (c *PgConnector) Pool() *pgxpool.Pool {
	return c.pool
}

// IsConnected returns true if the pool is active
func (c *PgConnector) IsConnected() bool {
	return c.pool != nil
}

// Ping verifies the connection is alive
func (c *PgConnector) Ping(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNoConnection
	}
	return c.pool.Ping(ctx)
}

// Close closes the connection pool
func (c *PgConnector) Close() {
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

// Query implements Primitive
func (c *PgConnector) Query(ctx context.Context, stmt Statement) ([]Row, error) {
	if !c.IsConnected() {
		return nil, ErrNoConnection
	}
	sql, args, err := bindDollar(stmt)
	if err != nil {
		return nil, err
	}

	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// Execute implements Primitive
func (c *PgConnector) Execute(ctx context.Context, stmt Statement) (ExecResult, error) {
	if !c.IsConnected() {
		return ExecResult{}, ErrNoConnection
	}
	sql, args, err := bindDollar(stmt)
	if err != nil {
		return ExecResult{}, err
	}

	tag, err := c.pool.Exec(ctx, sql, args...)
	if err != nil {
		return ExecResult{}, err
	}
	return ExecResult{RowsAffected: tag.RowsAffected()}, nil
}

// bindDollar turns ":name" placeholders into $1..$n with positional args
func bindDollar(stmt Statement) (string, []interface{}, error) {
	sql, args, err := sqlx.Named(stmt.SQL, stmt.Args())
	if err != nil {
		return "", nil, fmt.Errorf("bind parameters: %w", err)
	}
	return sqlx.Rebind(sqlx.DOLLAR, sql), args, nil
}

// scanRows converts pgx rows into our Row type
func scanRows(rows pgx.Rows) ([]Row, error) {
	result := []Row{}
	columns := rows.FieldDescriptions()

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(Row)
		for i, col := range columns {
			row[col.Name] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ============================================================
// OPEN
// ============================================================

// NewStoreConnector returns the unconnected connector of the configured driver
func NewStoreConnector(config ConnectorConfig) StoreConnector {
	if config.Driver == DriverPostgres {
		return NewPgConnector(config)
	}
	return NewSQLConnector(config)
}

// Open creates and connects the connector of the configured driver
func Open(ctx context.Context, config ConnectorConfig) (StoreConnector, error) {
	conn := NewStoreConnector(config)
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}
