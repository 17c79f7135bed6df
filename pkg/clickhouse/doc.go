// Package clickhouse opens database/sql connections to ClickHouse servers.
//
// The generic migration engine talks to every engine through database/sql. For
// ClickHouse the connection is built from a clickhouse:// URL plus optional TLS
// settings, so deployments that require mTLS can point at their PEM files from
// dbmgr.yaml:
//
//	clickhouse:
//	  cafile: /certs/ca.crt
//	  certfile: /certs/tls.crt
//	  keyfile: /certs/tls.key
//
// Example usage:
//
//	db, err := clickhouse.OpenDB(dsn, cfg.ClickHouse)
//	if err != nil {
//		return err
//	}
//
//	exec := executor.New(db, executor.OptionsFor(d, cmdTimeout, txTimeout))
package clickhouse
