package dialect

import (
	"database/sql"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // registers the sqlserver driver
)

const mssqlDefaultPort = 1433

// MSSQL is the SQL Server dialect.
type MSSQL struct{ conventions }

var mssqlObjectCodes = map[string]string{
	"SO": "o_",
	"SQ": "sq_",
	"SN": "sn_",
	"FN": "fn_",
	"TF": "fn_",
	"AF": "fn_",
	"IF": "fn_",
	"V":  "vw_",
	"P":  "sp_",
	"TR": "tr_",
}

func init() {
	register(&MSSQL{conventions{
		name:      "mssql",
		driver:    "sqlserver",
		extension: ".sql",
		separator: `^\s*GO\b`,
		objectTypes: []ObjectType{
			{Code: "'SO'", Dir: "Other", Prefix: "o_"},
			{Code: "'SQ'", Dir: "Sequences", Prefix: "sq_"},
			{Code: "'SN'", Dir: "Synonyms", Prefix: "sn_"},
			{Code: "'FN','TF','AF','IF'", Dir: "Functions", Prefix: "fn_"},
			{Code: "'V'", Dir: "Views", Prefix: "vw_"},
			{Code: "'P'", Dir: "StoredProcedures", Prefix: "sp_"},
			{Code: "'TR'", Dir: "Triggers", Prefix: "tr_"},
		},
		transactional: true,
		isolation:     sql.LevelReadCommitted,
		sql: statements{
			test:           "SELECT 'TEST'",
			checkMigration: "SELECT COUNT(*) FROM DatabaseVersion",
			checkCurrent:   "SELECT COUNT(*) FROM SystemInfoScript",
			createMigration: `CREATE TABLE [DatabaseVersion] (
    [SystemId] INTEGER NOT NULL,
    [Version] NVARCHAR(40) NOT NULL,
    [CreateTime] DATETIME2 CONSTRAINT [DEF_DatabaseVersion_CreateTime] DEFAULT SYSUTCDATETIME(),
    CONSTRAINT [PK_DatabaseVersion] PRIMARY KEY ([SystemId], [Version])
)`,
			createCurrent: `CREATE TABLE [SystemInfoScript] (
    [SystemId] INTEGER NOT NULL,
    [ScriptName] VARCHAR(512) NOT NULL,
    [Checksum] INTEGER NOT NULL,
    [Length] BIGINT NOT NULL,
    [CreateTime] DATETIME2 CONSTRAINT [DEF_SystemInfoScript_CreateTime] DEFAULT SYSUTCDATETIME() NOT NULL,
    [ModifiedTime] DATETIME2 NOT NULL,
    CONSTRAINT [PK_SystemInfoScript] PRIMARY KEY ([SystemId], [ScriptName])
)`,
			checkVersion:  "SELECT COUNT(Version) FROM DatabaseVersion WHERE Version = @p1",
			insertVersion: "INSERT INTO DatabaseVersion (SystemId, Version) VALUES (1, @p1)",
			selectScripts: "SELECT ScriptName, Checksum, Length FROM SystemInfoScript WHERE SystemId = @p1",
			insertScript:  "INSERT INTO SystemInfoScript (SystemId, ScriptName, Checksum, Length, ModifiedTime) VALUES (@p1, @p2, @p3, @p4, @p5)",
			updateScript:  "UPDATE SystemInfoScript SET Checksum = @p1, Length = @p2, ModifiedTime = @p3 WHERE SystemId = @p4 AND ScriptName = @p5",
		},
	}})
}

// ParseStandardConnection treats Opt1 as a boolean integrated security flag.
// Integrated security is also used when no user is given.
func (d *MSSQL) ParseStandardConnection(c StandardConnection) (ConnectionInfo, error) {
	if err := requireField("database", c.Database); err != nil {
		return ConnectionInfo{}, err
	}
	if err := requireField("server", c.Host); err != nil {
		return ConnectionInfo{}, err
	}

	port, err := parsePort(c.Port, 0)
	if err != nil {
		return ConnectionInfo{}, err
	}

	integrated, _ := strconv.ParseBool(strings.TrimSpace(c.Opt1))
	return ConnectionInfo{
		Database:           c.Database,
		Host:               c.Host,
		Port:               port,
		User:               c.User,
		Password:           c.Password,
		IntegratedSecurity: integrated || c.User == "",
	}, nil
}

// ParseCompactConnection parses [user:password@]server\database. Without
// credentials the connection uses integrated security.
func (d *MSSQL) ParseCompactConnection(input string) (ConnectionInfo, error) {
	c, err := parseCompact(mssqlParser, d.name, input)
	if err != nil {
		return ConnectionInfo{}, err
	}

	info := ConnectionInfo{Host: c.Server, Database: c.Database, IntegratedSecurity: true}
	if c.Credentials != nil {
		info.User = c.Credentials.User
		info.Password = c.Credentials.Password
		info.IntegratedSecurity = false
	}

	return info, nil
}

// DSN renders a sqlserver:// URL.
func (d *MSSQL) DSN(info ConnectionInfo) (string, error) {
	if err := requireField("database", info.Database); err != nil {
		return "", err
	}

	host := info.Host
	if info.Port > 0 && info.Port != mssqlDefaultPort {
		host += ":" + strconv.Itoa(info.Port)
	}

	query := url.Values{}
	query.Set("database", info.Database)
	for k, v := range info.Params {
		query.Set(k, v)
	}

	u := &url.URL{Scheme: "sqlserver", Host: host, RawQuery: query.Encode()}
	if !info.IntegratedSecurity && info.User != "" {
		u.User = url.UserPassword(info.User, info.Password)
	}

	return u.String(), nil
}

func (d *MSSQL) ExtractTypes() []ObjectType {
	return d.ObjectTypes()
}

func (d *MSSQL) ExtractSQL(t ObjectType) string {
	return strings.ReplaceAll(`SELECT o.name, 'IF EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N''' + s.name + '.' + o.name + ''')) BEGIN' + CHAR(10) + 'DROP ' + CASE WHEN o.type = 'P' THEN 'PROCEDURE' WHEN o.type = 'V' THEN 'VIEW' WHEN o.type = 'TR' THEN 'TRIGGER' WHEN o.type = 'SN' THEN 'SYNONYM' WHEN o.type IN ('FN', 'TF', 'AF', 'IF') THEN 'FUNCTION' ELSE '<object type not supported>' END + ' [' + s.name + '].[' + o.name + '] END' + CHAR(10) + 'GO' + CHAR(10) + m.definition
FROM sys.objects o
INNER JOIN sys.sql_modules m ON o.object_id = m.object_id
INNER JOIN sys.schemas s ON s.schema_id = o.schema_id
WHERE o.is_ms_shipped = 0 AND o.type IN ({types})
UNION ALL
SELECT o.name, 'IF (SELECT OBJECT_ID(''' + s.name + '.' + o.name + ''')) IS NULL BEGIN CREATE SYNONYM [' + s.name + '].[' + o.name + '] FOR ' + x.base_object_name + ' END'
FROM sys.objects o
INNER JOIN sys.synonyms x ON o.object_id = x.object_id
INNER JOIN sys.schemas s ON s.schema_id = o.schema_id
WHERE o.is_ms_shipped = 0 AND o.type IN ({types})`, "{types}", t.Code)
}

func (d *MSSQL) DependenciesSQL() string {
	return `SELECT o.type, o.type_desc, o.name FROM sys.dm_sql_referenced_entities(@p1, 'OBJECT') a
INNER JOIN sys.objects o ON o.name = a.referenced_entity_name AND o.type <> 'U' AND o.name <> @p1
UNION
SELECT o.type, o.type_desc, o.name FROM sys.sql_expression_dependencies a
INNER JOIN sys.objects o ON o.name = a.referenced_entity_name AND o.type <> 'U'
WHERE a.referencing_id = OBJECT_ID(@p1) AND o.name <> @p1`
}

func (d *MSSQL) PrefixForCode(code string) (string, bool) {
	prefix, ok := mssqlObjectCodes[strings.ToUpper(strings.Trim(strings.TrimSpace(code), "'"))]
	return prefix, ok
}

func (d *MSSQL) TablesSQL() string {
	return "SELECT name FROM sys.tables WHERE is_ms_shipped = 0"
}

func (d *MSSQL) ForeignKeysSQL() string {
	return "SELECT OBJECT_NAME(parent_object_id), OBJECT_NAME(referenced_object_id) FROM sys.foreign_keys"
}
