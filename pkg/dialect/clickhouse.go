package dialect

import (
	"database/sql"
	"net/url"
	"strconv"

	_ "github.com/ClickHouse/clickhouse-go/v2" // registers the clickhouse driver
)

const clickhouseDefaultPort = 9000

// ClickHouse is the ClickHouse dialect. ClickHouse has no multi-statement
// transactions, so scripts run statement by statement outside of one, and the
// script table is a ReplacingMergeTree where an update is a newer insert.
type ClickHouse struct{ conventions }

func init() {
	register(&ClickHouse{conventions{
		name:      "clickhouse",
		driver:    "clickhouse",
		extension: ".sql",
		separator: `;\s*$`,
		objectTypes: []ObjectType{
			{Code: "function", Dir: "Functions", Prefix: "fn_"},
			{Code: "dictionary", Dir: "Dictionaries", Prefix: "dc_"},
			{Code: "view", Dir: "Views", Prefix: "vw_"},
			{Code: "materialized_view", Dir: "MaterializedViews", Prefix: "mv_"},
		},
		transactional: false,
		isolation:     sql.LevelDefault,
		sql: statements{
			test:           "SELECT 'TEST'",
			checkMigration: "SELECT count() FROM dbmgr_database_version",
			checkCurrent:   "SELECT count() FROM dbmgr_system_info_script",
			createMigration: `CREATE TABLE IF NOT EXISTS dbmgr_database_version (
    system_id Int32,
    version String,
    create_time DateTime64(3) DEFAULT now64(3)
) ENGINE = MergeTree
ORDER BY (system_id, version)`,
			createCurrent: `CREATE TABLE IF NOT EXISTS dbmgr_system_info_script (
    system_id Int32,
    script_name String,
    checksum Int64,
    length Int64,
    create_time DateTime64(3) DEFAULT now64(3),
    modified_time DateTime64(3)
) ENGINE = ReplacingMergeTree(modified_time)
ORDER BY (system_id, script_name)`,
			checkVersion:  "SELECT count() FROM dbmgr_database_version WHERE version = ?",
			insertVersion: "INSERT INTO dbmgr_database_version (system_id, version) VALUES (1, ?)",
			selectScripts: "SELECT script_name, checksum, length FROM dbmgr_system_info_script FINAL WHERE system_id = ?",
			insertScript:  "INSERT INTO dbmgr_system_info_script (system_id, script_name, checksum, length, modified_time) VALUES (?, ?, ?, ?, ?)",
			updateScript:  "INSERT INTO dbmgr_system_info_script (checksum, length, modified_time, system_id, script_name) VALUES (?, ?, ?, ?, ?)",
		},
	}})
}

func (d *ClickHouse) ParseStandardConnection(c StandardConnection) (ConnectionInfo, error) {
	port, err := parsePort(c.Port, clickhouseDefaultPort)
	if err != nil {
		return ConnectionInfo{}, err
	}

	host := c.Host
	if host == "" {
		host = "localhost"
	}

	database := c.Database
	if database == "" {
		database = "default"
	}

	return ConnectionInfo{
		Database: database,
		Host:     host,
		Port:     port,
		User:     c.User,
		Password: c.Password,
	}, nil
}

// ParseCompactConnection parses [user[:password]@]host[:port][/database].
func (d *ClickHouse) ParseCompactConnection(input string) (ConnectionInfo, error) {
	info, err := parseHostCompact(d.name, input, clickhouseDefaultPort)
	if err != nil {
		return ConnectionInfo{}, err
	}

	if info.Database == "" {
		info.Database = "default"
	}

	return info, nil
}

// DSN renders a clickhouse:// URL understood by clickhouse.ParseDSN.
func (d *ClickHouse) DSN(info ConnectionInfo) (string, error) {
	port := info.Port
	if port == 0 {
		port = clickhouseDefaultPort
	}

	u := &url.URL{
		Scheme: "clickhouse",
		Host:   info.Host + ":" + strconv.Itoa(port),
		Path:   "/" + info.Database,
	}

	if info.User != "" {
		u.User = url.UserPassword(info.User, info.Password)
	}

	if len(info.Params) > 0 {
		query := url.Values{}
		for k, v := range info.Params {
			query.Set(k, v)
		}
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}
