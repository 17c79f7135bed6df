package config

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/clickhouse"
	"github.com/pseudomuto/dbmgr/pkg/dialect"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultDialect is used when the configuration names no dialect.
	DefaultDialect = "mssql"

	// DefaultCommandTimeout bounds a single statement.
	DefaultCommandTimeout = 30 * time.Second

	// DefaultTransactionTimeout bounds the transaction around a single script.
	DefaultTransactionTimeout = 10 * time.Minute
)

type (
	// Connection describes how to reach the target database. The first non-empty
	// form wins: DSN, then Info, then the structured fields.
	Connection struct {
		// DSN is a complete driver data source name.
		DSN string `yaml:"dsn,omitempty"`

		// Info is the dialect's compact connection form, e.g.
		// "user:pass@server\database" for SQL Server.
		Info string `yaml:"info,omitempty"`

		Database string `yaml:"database,omitempty"`
		Host     string `yaml:"host,omitempty"`
		Port     string `yaml:"port,omitempty"`
		User     string `yaml:"user,omitempty"`
		Password string `yaml:"password,omitempty"`

		// Opt1 and Opt2 carry dialect specific settings, such as the postgres
		// sslmode.
		Opt1 string `yaml:"opt1,omitempty"`
		Opt2 string `yaml:"opt2,omitempty"`
	}

	// Timeouts bounds database work.
	Timeouts struct {
		Command     time.Duration `yaml:"command,omitempty"`
		Transaction time.Duration `yaml:"transaction,omitempty"`
	}

	// Config is the contents of dbmgr.yaml.
	Config struct {
		// Dialect names the target engine: clickhouse, mssql, oracle, postgres or
		// sqlite.
		Dialect string `yaml:"dialect"`

		Connection Connection `yaml:"connection"`
		Timeouts   Timeouts   `yaml:"timeouts"`

		// Tokens is the token file used for #{KEY} substitution. Relative paths
		// are resolved against the project root.
		Tokens string `yaml:"tokens,omitempty"`

		// MetricsFile receives Prometheus textfile output after a migration.
		MetricsFile string `yaml:"metrics_file,omitempty"`

		// ClickHouse holds TLS material for ClickHouse connections.
		ClickHouse clickhouse.TLSSettings `yaml:"clickhouse,omitempty"`
	}

	// ConfigurationError reports missing or invalid settings.
	ConfigurationError struct {
		Field string
		Err   error
	}
)

func (e *ConfigurationError) Error() string {
	return "invalid configuration (" + e.Field + "): " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig parses dbmgr.yaml content from r and applies defaults.
//
// Example:
//
//	cfg, err := config.LoadConfig(strings.NewReader(`
//	dialect: postgres
//	connection:
//	  info: app:secret@db01:5432/orders
//	`))
//	if err != nil {
//		return err
//	}
//
//	fmt.Println(cfg.Timeouts.Command) // 30s
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadConfigFile loads the configuration file at path.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Write encodes cfg as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	return errors.Wrap(enc.Close(), "failed to close yaml encoder")
}

// GetDialect returns the configured dialect.
func (c *Config) GetDialect() (dialect.Dialect, error) {
	d, err := dialect.Get(c.Dialect)
	if err != nil {
		return nil, &ConfigurationError{Field: "dialect", Err: err}
	}

	return d, nil
}

// Resolve turns the connection settings into a driver DSN for d.
func (c *Config) Resolve(d dialect.Dialect) (string, error) {
	conn := c.Connection

	if conn.DSN != "" {
		return conn.DSN, nil
	}

	var (
		info  dialect.ConnectionInfo
		err   error
		field string
	)

	switch {
	case conn.Info != "":
		field = "connection.info"
		info, err = d.ParseCompactConnection(conn.Info)
	case conn.hasStructuredFields():
		field = "connection"
		info, err = d.ParseStandardConnection(dialect.StandardConnection{
			Database: conn.Database,
			Host:     conn.Host,
			Port:     conn.Port,
			User:     conn.User,
			Password: conn.Password,
			Opt1:     conn.Opt1,
			Opt2:     conn.Opt2,
		})
	default:
		return "", &ConfigurationError{
			Field: "connection",
			Err:   errors.New("no dsn, info or connection fields configured"),
		}
	}

	if err != nil {
		return "", &ConfigurationError{Field: field, Err: err}
	}

	dsn, err := d.DSN(info)
	if err != nil {
		return "", &ConfigurationError{Field: field, Err: err}
	}

	return dsn, nil
}

func (c *Config) applyDefaults() {
	if c.Dialect == "" {
		c.Dialect = DefaultDialect
	}
	if c.Timeouts.Command == 0 {
		c.Timeouts.Command = DefaultCommandTimeout
	}
	if c.Timeouts.Transaction == 0 {
		c.Timeouts.Transaction = DefaultTransactionTimeout
	}
}

func (c Connection) hasStructuredFields() bool {
	return c.Database != "" || c.Host != "" || c.Port != "" || c.User != "" || c.Password != ""
}
