// Package migrator deploys a dbmgr project to a database.
//
// A deployment runs up to three phases, each of which can also be invoked on its
// own:
//
//  1. Deltas: versioned *.up scripts, applied once each in file name order. The
//     version (the file name up to its first underscore) is recorded in the
//     migration tracking table.
//  2. Current: idempotent object definitions. Scripts are ordered by their
//     {{name}} references and the dialect's object type precedence, then
//     redeployed only when their Adler-32 checksum or length changed since the
//     last recorded run.
//  3. Post: scripts that run on every deployment, ordered by their {{name}}
//     references.
//
// Every script runs in its own transaction together with its tracking record.
// A failure rolls back that script only: scripts committed earlier in the phase
// stay applied and the phase stops with a *ScriptExecutionError.
//
// Blue/green deployments split the work in two. DeployBlue applies
// Deltas/Blue and the Current phase ahead of a traffic switch, and DeployGreen
// applies Deltas/Green and the Post phase after it.
//
// In dry run mode every enumeration, ranking, fingerprint and tracking lookup
// still happens, so structural problems surface, but no script is executed and
// nothing is recorded. The scripts that would have run are available from
// Planned.
//
// There is no locking between concurrent deployments against the same database.
// Run a single deploying agent per environment.
//
// Example usage:
//
//	m := migrator.New(migrator.Config{
//		Executor: db,
//		Dialect:  d,
//		Project:  project.New("."),
//		Tokens:   table,
//		Logger:   slog.Default(),
//	})
//
//	if err := m.EnsureSchema(ctx, true); err != nil {
//		log.Fatal(err)
//	}
//
//	if _, err := m.Deploy(ctx); err != nil {
//		var scriptErr *migrator.ScriptExecutionError
//		if errors.As(err, &scriptErr) {
//			log.Fatalf("%s failed: %v", scriptErr.Script, scriptErr.Err)
//		}
//		log.Fatal(err)
//	}
//
//	for _, entry := range m.History() {
//		fmt.Println(entry.Phase, entry.Name)
//	}
package migrator
