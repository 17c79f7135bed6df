package dialect

import (
	"database/sql"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver
)

const postgresDefaultPort = 5432

// Postgres is the PostgreSQL dialect. Batches are separated by a GO line so a
// script can mix statements that must run separately, such as CREATE INDEX
// CONCURRENTLY.
type Postgres struct{ conventions }

var postgresObjectCodes = map[string]string{
	"f": "fn_",
	"p": "sp_",
	"v": "vw_",
	"t": "tr_",
}

func init() {
	register(&Postgres{conventions{
		name:      "postgres",
		driver:    "pgx",
		extension: ".sql",
		separator: `^\s*GO\b`,
		objectTypes: []ObjectType{
			{Code: "o", Dir: "Other", Prefix: "o_"},
			{Code: "f", Dir: "Functions", Prefix: "fn_"},
			{Code: "v", Dir: "Views", Prefix: "vw_"},
			{Code: "p", Dir: "Procedures", Prefix: "sp_"},
			{Code: "t", Dir: "Triggers", Prefix: "tr_"},
		},
		transactional: true,
		isolation:     sql.LevelReadCommitted,
		sql: statements{
			test:           "SELECT 'TEST'",
			checkMigration: "SELECT COUNT(*) FROM database_version",
			checkCurrent:   "SELECT COUNT(*) FROM system_info_script",
			createMigration: `CREATE TABLE database_version (
    system_id INTEGER NOT NULL,
    version VARCHAR(40) NOT NULL,
    create_time TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT pk_database_version PRIMARY KEY (system_id, version)
)`,
			createCurrent: `CREATE TABLE system_info_script (
    system_id INTEGER NOT NULL,
    script_name VARCHAR(512) NOT NULL,
    checksum INTEGER NOT NULL,
    length BIGINT NOT NULL,
    create_time TIMESTAMPTZ NOT NULL DEFAULT now(),
    modified_time TIMESTAMPTZ NOT NULL,
    CONSTRAINT pk_system_info_script PRIMARY KEY (system_id, script_name)
)`,
			checkVersion:  "SELECT COUNT(version) FROM database_version WHERE version = $1",
			insertVersion: "INSERT INTO database_version (system_id, version) VALUES (1, $1)",
			selectScripts: "SELECT script_name, checksum, length FROM system_info_script WHERE system_id = $1",
			insertScript:  "INSERT INTO system_info_script (system_id, script_name, checksum, length, modified_time) VALUES ($1, $2, $3, $4, $5)",
			updateScript:  "UPDATE system_info_script SET checksum = $1, length = $2, modified_time = $3 WHERE system_id = $4 AND script_name = $5",
		},
	}})
}

// ParseStandardConnection treats Opt1 as the sslmode.
func (d *Postgres) ParseStandardConnection(c StandardConnection) (ConnectionInfo, error) {
	if err := requireField("database", c.Database); err != nil {
		return ConnectionInfo{}, err
	}

	port, err := parsePort(c.Port, postgresDefaultPort)
	if err != nil {
		return ConnectionInfo{}, err
	}

	host := c.Host
	if host == "" {
		host = "localhost"
	}

	info := ConnectionInfo{
		Database: c.Database,
		Host:     host,
		Port:     port,
		User:     c.User,
		Password: c.Password,
	}

	if mode := strings.TrimSpace(c.Opt1); mode != "" {
		info.Params = map[string]string{"sslmode": mode}
	}

	return info, nil
}

// ParseCompactConnection parses [user[:password]@]host[:port][/database].
func (d *Postgres) ParseCompactConnection(input string) (ConnectionInfo, error) {
	return parseHostCompact(d.name, input, postgresDefaultPort)
}

// DSN renders a postgres:// URL.
func (d *Postgres) DSN(info ConnectionInfo) (string, error) {
	if err := requireField("database", info.Database); err != nil {
		return "", err
	}

	port := info.Port
	if port == 0 {
		port = postgresDefaultPort
	}

	u := &url.URL{
		Scheme: "postgres",
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

func (d *Postgres) ExtractTypes() []ObjectType {
	var out []ObjectType
	for _, t := range d.objectTypes {
		if _, ok := postgresObjectCodes[t.Code]; ok {
			out = append(out, t)
		}
	}

	return out
}

func (d *Postgres) ExtractSQL(t ObjectType) string {
	switch t.Code {
	case "f", "p":
		return `SELECT p.proname, pg_get_functiondef(p.oid)
FROM pg_proc p
JOIN pg_namespace n ON n.oid = p.pronamespace
WHERE n.nspname = current_schema() AND p.prokind = '` + t.Code + `'`
	case "v":
		return `SELECT c.relname, 'CREATE OR REPLACE VIEW ' || quote_ident(c.relname) || ' AS' || chr(10) || pg_get_viewdef(c.oid)
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = current_schema() AND c.relkind = 'v'`
	case "t":
		return `SELECT t.tgname, pg_get_triggerdef(t.oid)
FROM pg_trigger t
JOIN pg_class c ON c.oid = t.tgrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE n.nspname = current_schema() AND NOT t.tgisinternal`
	}

	return ""
}

func (d *Postgres) DependenciesSQL() string {
	return `SELECT DISTINCT 'v', 'VIEW', dep.relname
FROM pg_depend d
JOIN pg_rewrite r ON r.oid = d.objid
JOIN pg_class src ON src.oid = r.ev_class
JOIN pg_class dep ON dep.oid = d.refobjid
WHERE src.relname = $1 AND dep.relkind = 'v' AND dep.oid <> src.oid
UNION
SELECT DISTINCT 'f', 'FUNCTION', p.proname
FROM pg_depend d
JOIN pg_rewrite r ON r.oid = d.objid
JOIN pg_class src ON src.oid = r.ev_class
JOIN pg_proc p ON p.oid = d.refobjid
WHERE src.relname = $1 AND p.prokind = 'f'`
}

func (d *Postgres) PrefixForCode(code string) (string, bool) {
	prefix, ok := postgresObjectCodes[strings.ToLower(strings.TrimSpace(code))]
	return prefix, ok
}

func (d *Postgres) TablesSQL() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'"
}

func (d *Postgres) ForeignKeysSQL() string {
	return `SELECT c.conrelid::regclass::text, c.confrelid::regclass::text
FROM pg_constraint c
JOIN pg_namespace n ON n.oid = c.connamespace
WHERE c.contype = 'f' AND n.nspname = current_schema()`
}
