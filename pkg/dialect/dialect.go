package dialect

import (
	"database/sql"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type (
	// ObjectType is a kind of Current object: the directory its scripts live in,
	// the file name prefix that identifies it, and the engine's type code used when
	// extracting definitions.
	ObjectType struct {
		Code   string
		Dir    string
		Prefix string
	}

	// Dialect is the set of engine-specific conventions the migrator relies on.
	// Statements use the engine's positional placeholder syntax.
	Dialect interface {
		// Name is the identifier used in configuration, e.g. "mssql".
		Name() string

		// DriverName is the database/sql driver the dialect registers.
		DriverName() string

		// FileExtension is the extension of Current and Post scripts.
		FileExtension() string

		// ObjectTypes lists the Current object types in deployment precedence.
		ObjectTypes() []ObjectType

		// Prefixes returns the prefixes of ObjectTypes in the same order.
		Prefixes() []string

		// BatchSeparator is a regular expression, applied in multi-line
		// case-insensitive mode, that splits a script into batches.
		BatchSeparator() string

		// Transactional reports whether scripts can run inside a transaction.
		Transactional() bool

		// Isolation is the isolation level used for script transactions.
		Isolation() sql.IsolationLevel

		TestConnectionSQL() string
		CheckMigrationStructureSQL() string
		CheckCurrentStructureSQL() string
		CreateMigrationTrackingSQL() string
		CreateCurrentTrackingSQL() string

		// CheckMigrationRecordSQL counts rows for a version. Args: (version).
		CheckMigrationRecordSQL() string

		// InsertMigrationRecordSQL records a version. Args: (version).
		InsertMigrationRecordSQL() string

		// SelectCurrentRecordsSQL returns (name, checksum, length) rows.
		// Args: (systemID).
		SelectCurrentRecordsSQL() string

		// InsertCurrentRecordSQL args: (systemID, name, checksum, length, modified).
		InsertCurrentRecordSQL() string

		// UpdateCurrentRecordSQL args: (checksum, length, modified, systemID, name).
		UpdateCurrentRecordSQL() string

		// ParseStandardConnection builds connection details from discrete values.
		ParseStandardConnection(StandardConnection) (ConnectionInfo, error)

		// ParseCompactConnection parses the dialect's one-line connection form.
		ParseCompactConnection(string) (ConnectionInfo, error)

		// DSN renders connection details as a driver data source name.
		DSN(ConnectionInfo) (string, error)
	}

	// Extractor is implemented by dialects that can reverse-engineer Current
	// objects from a live database.
	Extractor interface {
		// ExtractTypes lists the object types that can be extracted.
		ExtractTypes() []ObjectType

		// ExtractSQL returns (name, definition) rows for an object type.
		ExtractSQL(ObjectType) string

		// DependenciesSQL returns (type code, type description, name) rows for
		// the objects referenced by an object. Args: (name).
		DependenciesSQL() string

		// PrefixForCode maps a type code from DependenciesSQL to a file prefix.
		PrefixForCode(code string) (string, bool)
	}

	// TableLister is implemented by dialects that can report tables and their
	// foreign key relationships.
	TableLister interface {
		// TablesSQL returns one row per user table: (name).
		TablesSQL() string

		// ForeignKeysSQL returns (table, referenced table) rows.
		ForeignKeysSQL() string
	}

	statements struct {
		test            string
		checkMigration  string
		checkCurrent    string
		createMigration string
		createCurrent   string
		checkVersion    string
		insertVersion   string
		selectScripts   string
		insertScript    string
		updateScript    string
	}

	// conventions implements the data half of Dialect for every engine.
	conventions struct {
		name          string
		driver        string
		extension     string
		separator     string
		objectTypes   []ObjectType
		transactional bool
		isolation     sql.IsolationLevel
		sql           statements
	}
)

var registry = map[string]Dialect{}

func register(d Dialect) {
	registry[d.Name()] = d
}

// Get returns the dialect registered under name. Lookup is case-insensitive.
func Get(name string) (Dialect, error) {
	d, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Errorf("unsupported dialect %q (expected one of %s)", name, strings.Join(Names(), ", "))
	}

	return d, nil
}

// Names returns the registered dialect names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (c *conventions) Name() string                       { return c.name }
func (c *conventions) DriverName() string                 { return c.driver }
func (c *conventions) FileExtension() string              { return c.extension }
func (c *conventions) BatchSeparator() string             { return c.separator }
func (c *conventions) Transactional() bool                { return c.transactional }
func (c *conventions) Isolation() sql.IsolationLevel      { return c.isolation }
func (c *conventions) TestConnectionSQL() string          { return c.sql.test }
func (c *conventions) CheckMigrationStructureSQL() string { return c.sql.checkMigration }
func (c *conventions) CheckCurrentStructureSQL() string   { return c.sql.checkCurrent }
func (c *conventions) CreateMigrationTrackingSQL() string { return c.sql.createMigration }
func (c *conventions) CreateCurrentTrackingSQL() string   { return c.sql.createCurrent }
func (c *conventions) CheckMigrationRecordSQL() string    { return c.sql.checkVersion }
func (c *conventions) InsertMigrationRecordSQL() string   { return c.sql.insertVersion }
func (c *conventions) SelectCurrentRecordsSQL() string    { return c.sql.selectScripts }
func (c *conventions) InsertCurrentRecordSQL() string     { return c.sql.insertScript }
func (c *conventions) UpdateCurrentRecordSQL() string     { return c.sql.updateScript }

func (c *conventions) ObjectTypes() []ObjectType {
	return append([]ObjectType(nil), c.objectTypes...)
}

func (c *conventions) Prefixes() []string {
	prefixes := make([]string, 0, len(c.objectTypes))
	for _, t := range c.objectTypes {
		prefixes = append(prefixes, t.Prefix)
	}

	return prefixes
}

// ObjectDirs returns the directory of every object type of d.
func ObjectDirs(d Dialect) []string {
	types := d.ObjectTypes()
	dirs := make([]string, 0, len(types))
	for _, t := range types {
		dirs = append(dirs, t.Dir)
	}

	return dirs
}
