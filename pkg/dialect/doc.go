// Package dialect describes how dbmgr talks to each supported database engine.
//
// A Dialect is a pure value: the SQL text of the tracking-table statements, the
// batch separator used to split scripts, the Current object types and their file
// prefixes, and the rules for turning connection settings into a driver DSN.
// Dialects hold no state and are looked up by name with Get.
//
// Supported dialects:
//
//	mssql       SQL Server (github.com/microsoft/go-mssqldb)
//	oracle      Oracle (github.com/sijms/go-ora/v2)
//	postgres    PostgreSQL (github.com/jackc/pgx/v5/stdlib)
//	sqlite      SQLite (modernc.org/sqlite)
//	clickhouse  ClickHouse (github.com/ClickHouse/clickhouse-go/v2)
//
// Importing this package registers every driver with database/sql.
//
// Example usage:
//
//	d, err := dialect.Get("postgres")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	info, err := d.ParseCompactConnection("deploy:secret@db01:5432/orders")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	dsn, err := d.DSN(info)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	db, err := sql.Open(d.DriverName(), dsn)
package dialect
