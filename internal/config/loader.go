// Package config loads the catalog configuration from the work directory.
//
// The file is .catalog.yml (or .catalog.toml). ${VAR} references are expanded
// from the process environment and from a .env file next to it, and the
// BDD_* variables of the desktop application override the database section.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mediatek86/catalog/pkg/engine"
)

const (
	FileName     = ".catalog.yml"
	TOMLFileName = ".catalog.toml"
	EnvFileName  = ".env"
)

// Environment overrides
const (
	EnvServer      = "BDD_SERVER"
	EnvPort        = "BDD_PORT"
	EnvDatabase    = "BDD_BD"
	EnvLogin       = "BDD_LOGIN"
	EnvPassword    = "BDD_PWD"
	EnvDatabaseURL = "DATABASE_URL"
)

// Order id strategies
const (
	OrderIDsStore = "store"
	OrderIDsUUID  = "uuid"
)

// Config is the content of .catalog.yml
type Config struct {
	Version  string         `yaml:"version" toml:"version"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Engine   EngineConfig   `yaml:"engine" toml:"engine"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" toml:"driver"`
	// ConnectionString wins over the discrete fields when set
	ConnectionString string `yaml:"connection_string,omitempty" toml:"connection_string,omitempty"`
	Host             string `yaml:"host" toml:"host"`
	Port             int    `yaml:"port" toml:"port"`
	Name             string `yaml:"name" toml:"name"`
	User             string `yaml:"user" toml:"user"`
	Password         string `yaml:"password,omitempty" toml:"password,omitempty"`
	MaxConns         int32  `yaml:"max_conns" toml:"max_conns"`
	MinConns         int32  `yaml:"min_conns" toml:"min_conns"`
	MaxIdleTime      string `yaml:"max_idle_time" toml:"max_idle_time"`
}

type EngineConfig struct {
	Debug string `yaml:"debug" toml:"debug"`
	// LogFile receives the process log; stderr when empty
	LogFile  string        `yaml:"log_file,omitempty" toml:"log_file,omitempty"`
	Journal  JournalConfig `yaml:"journal" toml:"journal"`
	OrderIDs string        `yaml:"order_ids" toml:"order_ids"`
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Dir     string `yaml:"dir" toml:"dir"`
}

// Defaults returns the configuration used when no file exists
func Defaults() *Config {
	return &Config{
		Version: "1",
		Database: DatabaseConfig{
			Driver:      string(engine.DriverMySQL),
			Host:        "localhost",
			Port:        3306,
			Name:        "mediatek86",
			User:        "root",
			MaxConns:    10,
			MinConns:    2,
			MaxIdleTime: "5m",
		},
		Engine: EngineConfig{
			Debug: engine.DebugOff.String(),
			Journal: JournalConfig{
				Enabled: true,
				Dir:     filepath.Join(".catalog", "journal"),
			},
			OrderIDs: OrderIDsStore,
		},
	}
}

// ============================================================
// LOADER
// ============================================================

// Loader reads the configuration of one work directory
type Loader struct {
	workDir  string
	filePath string
	env      map[string]string
}

func NewLoader(workDir string) *Loader {
	return &Loader{
		workDir:  workDir,
		filePath: filepath.Join(workDir, FileName),
	}
}

// Path is the file the loader reads and saves
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads the config file. It fails if neither .catalog.yml nor
// .catalog.toml exists.
func (l *Loader) Load() (*Config, error) {
	path, ok := l.locate()
	if !ok {
		return nil, fmt.Errorf("config file not found: %s", l.filePath)
	}
	l.filePath = path

	if err := l.readEnvFile(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	expanded := os.Expand(string(data), l.lookup)

	cfg := Defaults()
	if strings.HasSuffix(path, ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	return l.finish(cfg)
}

// LoadOrDefault is Load, falling back to Defaults when no file exists.
// Environment overrides apply in both cases.
func (l *Loader) LoadOrDefault() (*Config, error) {
	if _, ok := l.locate(); ok {
		return l.Load()
	}
	if err := l.readEnvFile(); err != nil {
		return nil, err
	}
	return l.finish(Defaults())
}

// Save writes cfg to the loader's file, as TOML when it ends in .toml
func (l *Loader) Save(cfg *Config) error {
	var data []byte
	if strings.HasSuffix(l.filePath, ".toml") {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		data = buf.Bytes()
	} else {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		data = out
	}

	if err := os.WriteFile(l.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(l.filePath), err)
	}
	return nil
}

func (l *Loader) locate() (string, bool) {
	for _, name := range []string{FileName, TOMLFileName} {
		path := filepath.Join(l.workDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func (l *Loader) readEnvFile() error {
	path := filepath.Join(l.workDir, EnvFileName)
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.env = map[string]string{}
			return nil
		}
		return fmt.Errorf("failed to parse %s: %w", EnvFileName, err)
	}
	l.env = env
	return nil
}

// lookup prefers the process environment over .env
func (l *Loader) lookup(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return l.env[key]
}

func (l *Loader) finish(cfg *Config) (*Config, error) {
	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	l.resolvePaths(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	db := &cfg.Database
	if v := l.lookup(EnvServer); v != "" {
		db.Host = v
	}
	if v := l.lookup(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		db.Port = port
	}
	if v := l.lookup(EnvDatabase); v != "" {
		db.Name = v
	}
	if v := l.lookup(EnvLogin); v != "" {
		db.User = v
	}
	if v := l.lookup(EnvPassword); v != "" {
		db.Password = v
	}
	if v := l.lookup(EnvDatabaseURL); v != "" {
		db.ConnectionString = v
	}
	return nil
}

// resolvePaths makes the journal directory, the log file and a sqlite file absolute
func (l *Loader) resolvePaths(cfg *Config) {
	if dir := cfg.Engine.Journal.Dir; dir != "" && !filepath.IsAbs(dir) {
		cfg.Engine.Journal.Dir = filepath.Join(l.workDir, dir)
	}
	if path := cfg.Engine.LogFile; path != "" && !filepath.IsAbs(path) {
		cfg.Engine.LogFile = filepath.Join(l.workDir, path)
	}

	driver, err := engine.ParseDriver(cfg.Database.Driver)
	if err != nil || driver != engine.DriverSQLite {
		return
	}
	if name := cfg.Database.Name; name != "" && name != ":memory:" && !filepath.IsAbs(name) {
		cfg.Database.Name = filepath.Join(l.workDir, name)
	}
}

// ============================================================
// CONVERSIONS
// ============================================================

// Validate checks the values the engine cannot default
func (c *Config) Validate() error {
	if _, err := engine.ParseDriver(c.Database.Driver); err != nil {
		return fmt.Errorf("database.driver: %w", err)
	}
	if c.Database.MaxIdleTime != "" {
		if _, err := time.ParseDuration(c.Database.MaxIdleTime); err != nil {
			return fmt.Errorf("database.max_idle_time: %w", err)
		}
	}
	switch c.Engine.OrderIDs {
	case "", OrderIDsStore, OrderIDsUUID:
	default:
		return fmt.Errorf("engine.order_ids: unknown strategy %q", c.Engine.OrderIDs)
	}
	return nil
}

// Connector converts the database section to connector settings
func (c *Config) Connector() (engine.ConnectorConfig, error) {
	db := c.Database

	var out engine.ConnectorConfig
	if db.ConnectionString != "" {
		parsed, err := engine.ParseConnectionString(db.ConnectionString)
		if err != nil {
			return engine.ConnectorConfig{}, fmt.Errorf("invalid connection string: %w", err)
		}
		out = parsed
	} else {
		driver, err := engine.ParseDriver(db.Driver)
		if err != nil {
			return engine.ConnectorConfig{}, err
		}
		out = engine.ConnectorConfig{
			Driver:   driver,
			Host:     db.Host,
			Port:     db.Port,
			Database: db.Name,
			User:     db.User,
			Password: db.Password,
		}
		if out.Port == 0 {
			out.Port = driver.DefaultPort()
		}
	}

	out.MaxConns = db.MaxConns
	out.MinConns = db.MinConns
	if db.MaxIdleTime != "" {
		d, err := time.ParseDuration(db.MaxIdleTime)
		if err != nil {
			return engine.ConnectorConfig{}, fmt.Errorf("invalid max_idle_time: %w", err)
		}
		out.MaxIdleTime = d
	}
	return out, nil
}

// DebugLevel returns the configured engine trace level
func (c *Config) DebugLevel() engine.DebugLevel {
	return engine.ParseDebugLevel(c.Engine.Debug)
}

// UsesUUIDOrderIDs reports whether order headers get a generated id
func (c *Config) UsesUUIDOrderIDs() bool {
	return c.Engine.OrderIDs == OrderIDsUUID
}

// Template returns a commented starter .catalog.yml
func Template() string {
	return `# Library Catalog Configuration
version: "1"

database:
  # mysql, postgres, sqlite3 or sqlserver
  driver: "mysql"
  # connection_string: "${DATABASE_URL}"
  host: "localhost"
  port: 3306
  name: "mediatek86"
  user: "root"
  password: "${BDD_PWD}"
  max_conns: 10
  min_conns: 2
  max_idle_time: "5m"

engine:
  # off, sql or trace
  debug: "off"
  # log_file: ".catalog/catalog.log"
  journal:
    enabled: true
    dir: ".catalog/journal"
  # store: the database assigns order ids, uuid: generated
  order_ids: "store"
`
}
