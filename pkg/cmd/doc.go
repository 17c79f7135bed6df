// Package cmd provides the dbmgr command line interface.
//
// Commands are plain functions returning a *cli.Command. They are registered
// with fx in the "commands" group and assembled into the application by Run.
//
// # Available Commands
//
//   - init: create the project layout and dbmgr.yaml
//   - new: create a delta script
//   - test: check connectivity
//   - schema: validate or create the tracking tables
//   - migrate: deploy deltas, Current and Post scripts (--dry-run, --blue, --green)
//   - exec: run a single SQL file
//   - extract: write live object definitions into Current
//   - tables: list tables in foreign key order
//
// # Connections
//
// Commands that connect read the connection from dbmgr.yaml. The --dsn and
// --dialect flags (or $DBMGR_DSN and $DBMGR_DIALECT) override it.
//
// # Exit Codes
//
// ExitCode maps errors to process exit codes: 2 for configuration errors, 3 for
// unresolved, circular or unprefixed scripts, 4 for unmatched tokens, 5 for
// failed scripts and 6 for an invalid tracking schema. Anything else is 1.
package cmd
