package dialect

import (
	"database/sql"

	go_ora "github.com/sijms/go-ora/v2"
)

const oracleDefaultPort = 1521

// Oracle is the Oracle dialect. Statements and PL/SQL blocks in scripts are
// separated by a line starting with '/'.
type Oracle struct{ conventions }

func init() {
	register(&Oracle{conventions{
		name:      "oracle",
		driver:    "oracle",
		extension: ".sql",
		separator: `^\s*/`,
		objectTypes: []ObjectType{
			{Code: "FUNCTION", Dir: "Functions", Prefix: "fn_"},
			{Code: "VIEW", Dir: "Views", Prefix: "vw_"},
			{Code: "PROCEDURE", Dir: "StoredProcedures", Prefix: "sp_"},
			{Code: "PACKAGE", Dir: "Packages", Prefix: "pkg_"},
			{Code: "PACKAGE BODY", Dir: "PackageBodies", Prefix: "pkgb_"},
			{Code: "TRIGGER", Dir: "Triggers", Prefix: "tr_"},
		},
		transactional: true,
		isolation:     sql.LevelReadCommitted,
		sql: statements{
			test:           "SELECT * FROM DUAL",
			checkMigration: "SELECT COUNT(*) FROM DB_VERSION",
			checkCurrent:   "SELECT COUNT(*) FROM DB_SCRIPT_INFO",
			createMigration: `BEGIN
    EXECUTE IMMEDIATE 'CREATE TABLE DB_VERSION (
        SYSTEM_ID INTEGER CONSTRAINT NN_DB_VERSION_SYSTEM_ID NOT NULL,
        VERSION VARCHAR2(255) CONSTRAINT NN_DB_VERSION_VERSION NOT NULL,
        CREATE_TIME TIMESTAMP DEFAULT SYSTIMESTAMP CONSTRAINT NN_DB_VERSION_CREATE_TIME NOT NULL,
        CONSTRAINT PK_DB_VERSION PRIMARY KEY (SYSTEM_ID, VERSION)
    )';
END;`,
			createCurrent: `BEGIN
    EXECUTE IMMEDIATE 'CREATE TABLE DB_SCRIPT_INFO (
        SYSTEM_ID INTEGER CONSTRAINT NN_DB_SCRIPT_INFO_SYSTEM_ID NOT NULL,
        NAME VARCHAR2(255) CONSTRAINT NN_DB_SCRIPT_INFO_NAME NOT NULL,
        CHECKSUM INTEGER CONSTRAINT NN_DB_SCRIPT_INFO_CHECKSUM NOT NULL,
        LENGTH INTEGER CONSTRAINT NN_DB_SCRIPT_INFO_LENGTH NOT NULL,
        UPDATE_TIME TIMESTAMP DEFAULT SYSTIMESTAMP CONSTRAINT NN_DB_SCRIPT_INFO_UPDATE_TIME NOT NULL,
        CONSTRAINT PK_DB_SCRIPT_INFO PRIMARY KEY (SYSTEM_ID, NAME)
    )';
END;`,
			checkVersion:  "SELECT COUNT(VERSION) FROM DB_VERSION WHERE VERSION = :1",
			insertVersion: "INSERT INTO DB_VERSION (SYSTEM_ID, VERSION) VALUES (1, :1)",
			selectScripts: "SELECT NAME, CHECKSUM, LENGTH FROM DB_SCRIPT_INFO WHERE SYSTEM_ID = :1",
			insertScript:  "INSERT INTO DB_SCRIPT_INFO (SYSTEM_ID, NAME, CHECKSUM, LENGTH, UPDATE_TIME) VALUES (:1, :2, :3, :4, :5)",
			updateScript:  "UPDATE DB_SCRIPT_INFO SET CHECKSUM = :1, LENGTH = :2, UPDATE_TIME = :3 WHERE SYSTEM_ID = :4 AND NAME = :5",
		},
	}})
}

// ParseStandardConnection maps Database to the service name (SID).
func (d *Oracle) ParseStandardConnection(c StandardConnection) (ConnectionInfo, error) {
	if err := requireField("sid", c.Database); err != nil {
		return ConnectionInfo{}, err
	}

	port, err := parsePort(c.Port, oracleDefaultPort)
	if err != nil {
		return ConnectionInfo{}, err
	}

	host := c.Host
	if host == "" {
		host = "localhost"
	}

	return ConnectionInfo{
		Database: c.Database,
		Host:     host,
		Port:     port,
		User:     c.User,
		Password: c.Password,
	}, nil
}

// ParseCompactConnection parses user/password@sid or user/password@host:port/sid.
func (d *Oracle) ParseCompactConnection(input string) (ConnectionInfo, error) {
	c, err := parseCompact(oracleParser, d.name, input)
	if err != nil {
		return ConnectionInfo{}, err
	}

	info := ConnectionInfo{
		Database: c.SID,
		Host:     "localhost",
		Port:     oracleDefaultPort,
		User:     c.User,
		Password: c.Password,
	}

	if c.Address != nil {
		info.Host = c.Address.Host
		if info.Port, err = parsePort(c.Address.Port, oracleDefaultPort); err != nil {
			return ConnectionInfo{}, err
		}
	}

	return info, nil
}

// DSN renders an oracle:// URL.
func (d *Oracle) DSN(info ConnectionInfo) (string, error) {
	if err := requireField("sid", info.Database); err != nil {
		return "", err
	}

	port := info.Port
	if port == 0 {
		port = oracleDefaultPort
	}

	return go_ora.BuildUrl(info.Host, port, info.Database, info.User, info.Password, info.Params), nil
}
