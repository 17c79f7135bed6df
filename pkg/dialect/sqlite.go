package dialect

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers the sqlite driver
)

// SQLite is the SQLite dialect. The database is a file path.
type SQLite struct{ conventions }

func init() {
	register(&SQLite{conventions{
		name:      "sqlite",
		driver:    "sqlite",
		extension: ".sql",
		separator: `^\s*GO\b`,
		objectTypes: []ObjectType{
			{Code: "view", Dir: "Views", Prefix: "vw_"},
			{Code: "trigger", Dir: "Triggers", Prefix: "tr_"},
		},
		transactional: true,
		isolation:     sql.LevelDefault,
		sql: statements{
			test:           "SELECT 'TEST'",
			checkMigration: "SELECT COUNT(*) FROM database_version",
			checkCurrent:   "SELECT COUNT(*) FROM system_info_script",
			createMigration: `CREATE TABLE database_version (
    system_id INTEGER NOT NULL,
    version TEXT NOT NULL,
    create_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (system_id, version)
)`,
			createCurrent: `CREATE TABLE system_info_script (
    system_id INTEGER NOT NULL,
    script_name TEXT NOT NULL,
    checksum INTEGER NOT NULL,
    length INTEGER NOT NULL,
    create_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    modified_time TIMESTAMP NOT NULL,
    PRIMARY KEY (system_id, script_name)
)`,
			checkVersion:  "SELECT COUNT(version) FROM database_version WHERE version = ?",
			insertVersion: "INSERT INTO database_version (system_id, version) VALUES (1, ?)",
			selectScripts: "SELECT script_name, checksum, length FROM system_info_script WHERE system_id = ?",
			insertScript:  "INSERT INTO system_info_script (system_id, script_name, checksum, length, modified_time) VALUES (?, ?, ?, ?, ?)",
			updateScript:  "UPDATE system_info_script SET checksum = ?, length = ?, modified_time = ? WHERE system_id = ? AND script_name = ?",
		},
	}})
}

// ParseStandardConnection uses Database as the file path.
func (d *SQLite) ParseStandardConnection(c StandardConnection) (ConnectionInfo, error) {
	if err := requireField("database", c.Database); err != nil {
		return ConnectionInfo{}, err
	}

	return ConnectionInfo{Database: c.Database}, nil
}

// ParseCompactConnection treats the whole input as the file path.
func (d *SQLite) ParseCompactConnection(input string) (ConnectionInfo, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return ConnectionInfo{}, errors.New("empty sqlite connection information")
	}

	return ConnectionInfo{Database: input}, nil
}

// DSN returns the file path with foreign key enforcement enabled.
func (d *SQLite) DSN(info ConnectionInfo) (string, error) {
	if err := requireField("database", info.Database); err != nil {
		return "", err
	}

	if strings.Contains(info.Database, "?") {
		return info.Database, nil
	}

	return info.Database + "?_pragma=foreign_keys(1)", nil
}

func (d *SQLite) TablesSQL() string {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'"
}

func (d *SQLite) ForeignKeysSQL() string {
	return `SELECT m.name, p."table" FROM sqlite_master m JOIN pragma_foreign_key_list(m.name) p WHERE m.type = 'table'`
}
