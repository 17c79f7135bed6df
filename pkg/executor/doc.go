// Package executor runs SQL against a target database on behalf of the migrator.
//
// The package wraps database/sql behind small interfaces so the migrator can be
// exercised with any driver (or a test double):
//
//   - Runner executes statements, scalar queries, row queries and whole script
//     files.
//   - Executor is a Runner bound to a connection pool that can open a Scope.
//   - Scope is a Runner bound to one transaction. For engines without
//     transactions the scope runs statements directly and Commit/Rollback are
//     no-ops.
//
// Script files are read, passed through token substitution, split on the
// dialect's batch separator and executed batch by batch. A failing batch yields a
// ScriptError carrying the file, the batch text and the driver error.
//
// Example usage:
//
//	d, _ := dialect.Get("postgres")
//	exec, err := executor.Open(d.DriverName(), dsn, executor.OptionsFor(d, 30*time.Second, 10*time.Minute))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer exec.Close()
//
//	scope, err := exec.Begin(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := scope.ExecScript(ctx, "Database/Post/grants.sql", d.BatchSeparator(), table); err != nil {
//		_ = scope.Rollback()
//		log.Fatal(err)
//	}
//
//	if err := scope.Commit(); err != nil {
//		log.Fatal(err)
//	}
package executor
