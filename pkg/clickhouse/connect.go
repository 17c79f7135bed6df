package clickhouse

import (
	"database/sql"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/pkg/errors"
)

// OpenDB returns a database/sql pool for the clickhouse:// URL in dsn. When
// settings carries any TLS file, the connection is secured with it and the
// DSN's own TLS options are replaced.
//
// Example usage:
//
//	db, err := clickhouse.OpenDB("clickhouse://default@localhost:9440/default", clickhouse.TLSSettings{
//		CAFile: "/certs/ca.crt",
//	})
//	if err != nil {
//		return err
//	}
//	defer func() { _ = db.Close() }()
func OpenDB(dsn string, settings TLSSettings) (*sql.DB, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "invalid clickhouse DSN")
	}

	cfg, err := settings.TLSConfig()
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		opts.TLS = cfg
	}

	return clickhouse.OpenDB(opts), nil
}
