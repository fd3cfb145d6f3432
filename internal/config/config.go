// Package config provides configuration management for the cash book.
// It loads configuration from an optional YAML file, .env files and
// environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backend names a ledger store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendBigQuery Backend = "bigquery"
)

// Config represents the application configuration.
type Config struct {
	Store    StoreConfig  `yaml:"store"`
	HTTP     HTTPConfig   `yaml:"http"`
	Export   ExportConfig `yaml:"export"`
	Notion   NotionConfig `yaml:"notion"`
	Log      LogConfig    `yaml:"log"`
	Timezone string       `yaml:"timezone"`
	Ledger   LedgerConfig `yaml:"ledger"`
}

// StoreConfig selects and configures the ledger store.
type StoreConfig struct {
	Backend  Backend        `yaml:"backend"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	BigQuery BigQueryConfig `yaml:"bigquery"`
}

// SQLiteConfig configures the local file store.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig holds Postgres connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// BigQueryConfig names the dataset that holds the ledger tables.
type BigQueryConfig struct {
	ProjectID string `yaml:"project_id"`
	DatasetID string `yaml:"dataset_id"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	APIKey      string   `yaml:"api_key"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// ExportConfig configures day exports.
type ExportConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// NotionConfig configures the Notion mirror.
type NotionConfig struct {
	Token      string `yaml:"token"`
	DatabaseID string `yaml:"database_id"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LedgerConfig tunes ledger views.
type LedgerConfig struct {
	RecentLimit int `yaml:"recent_limit"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendMemory,
			SQLite:  SQLiteConfig{Path: "./data/cashbook.db"},
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				User:    "postgres",
				DBName:  "cashbook",
				SSLMode: "disable",
			},
			BigQuery: BigQueryConfig{DatasetID: "cashbook"},
		},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Export:   ExportConfig{Prefix: "cashbook"},
		Log:      LogConfig{Level: "info", Format: "console"},
		Timezone: "Local",
		Ledger:   LedgerConfig{RecentLimit: 10},
	}
}

// Load loads configuration. It reads the YAML file named by CASHBOOK_CONFIG
// if set, then the .env file (envPath[0] if given, ./.env otherwise, which
// may be absent), then applies environment overrides.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := Default()
	if path := os.Getenv("CASHBOOK_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = Backend(strings.ToLower(v))
	}
	c.Store.SQLite.Path = getEnv("SQLITE_PATH", c.Store.SQLite.Path)

	pg := &c.Store.Postgres
	pg.Host = getEnv("DB_HOST", pg.Host)
	pg.User = getEnv("DB_USER", pg.User)
	pg.Password = getEnv("DB_PASSWORD", pg.Password)
	pg.DBName = getEnv("DB_NAME", pg.DBName)
	pg.SSLMode = getEnv("DB_SSLMODE", pg.SSLMode)
	port, err := getIntEnv("DB_PORT", pg.Port)
	if err != nil {
		return err
	}
	pg.Port = port

	c.Store.BigQuery.ProjectID = getEnv("GCP_PROJECT_ID", c.Store.BigQuery.ProjectID)
	c.Store.BigQuery.DatasetID = getEnv("BQ_DATASET_ID", c.Store.BigQuery.DatasetID)

	if port := os.Getenv("PORT"); port != "" {
		c.HTTP.Addr = ":" + port
	}
	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.APIKey = getEnv("API_KEY", c.HTTP.APIKey)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.HTTP.CORSOrigins = splitList(v)
	}

	c.Export.Bucket = getEnv("GCS_BUCKET", c.Export.Bucket)
	c.Export.Prefix = getEnv("EXPORT_PREFIX", c.Export.Prefix)

	c.Notion.Token = getEnv("NOTION_TOKEN", c.Notion.Token)
	c.Notion.DatabaseID = getEnv("NOTION_DATABASE_ID", c.Notion.DatabaseID)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Timezone = getEnv("CASHBOOK_TZ", c.Timezone)

	limit, err := getIntEnv("RECENT_LIMIT", c.Ledger.RecentLimit)
	if err != nil {
		return err
	}
	c.Ledger.RecentLimit = limit
	return nil
}

// Validate checks that the selected backend has the settings it needs.
func (c *Config) Validate() error {
	var missing []string

	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Store.SQLite.Path == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	case BackendPostgres:
		if c.Store.Postgres.Host == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.Store.Postgres.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
	case BackendBigQuery:
		if c.Store.BigQuery.ProjectID == "" {
			missing = append(missing, "GCP_PROJECT_ID")
		}
		if c.Store.BigQuery.DatasetID == "" {
			missing = append(missing, "BQ_DATASET_ID")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want memory, sqlite, postgres or bigquery)", c.Store.Backend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}
	if c.Ledger.RecentLimit <= 0 {
		return fmt.Errorf("recent limit must be positive, got %d", c.Ledger.RecentLimit)
	}
	return nil
}

// ConnectionString returns a lib/pq connection URL.
func (p PostgresConfig) ConnectionString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.User(p.User),
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   p.DBName,
	}
	if p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	q := url.Values{}
	if p.SSLMode != "" {
		q.Set("sslmode", p.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Location resolves Timezone. "today" in date options is taken in this zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
