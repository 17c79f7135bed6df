package migrator

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/scripts"
)

// ErrSchemaInvalid is returned by EnsureSchema when the tracking tables are
// missing and could not be created.
var ErrSchemaInvalid = errors.New("migration tracking schema is invalid")

// ScriptExecutionError reports a script that failed and was rolled back.
type ScriptExecutionError struct {
	Phase  scripts.Phase
	Script string
	Err    error
}

func (e *ScriptExecutionError) Error() string {
	return fmt.Sprintf("%s script %s failed: %v", e.Phase, e.Script, e.Err)
}

func (e *ScriptExecutionError) Unwrap() error { return e.Err }
