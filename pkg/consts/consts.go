package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ConfigFile is the project configuration file name
	ConfigFile = "dbmgr.yaml"

	// DefaultTokenFile is the token table read when no other file is configured
	DefaultTokenFile = "default.db.token.config"

	// SystemID identifies this deployment's rows in the tracking tables
	SystemID = 1

	// DeltaUpExt is the extension of forward delta scripts
	DeltaUpExt = ".up"

	// DeltaDownExt is the extension of generated (never applied) rollback scripts
	DeltaDownExt = ".down"

	// BlueDir is the Deltas subdirectory deployed before Current objects
	BlueDir = "Blue"

	// GreenDir is the Deltas subdirectory deployed before Post scripts
	GreenDir = "Green"
)
