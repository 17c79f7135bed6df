package migrator

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/executor"
	"github.com/pseudomuto/dbmgr/pkg/fingerprint"
	"github.com/pseudomuto/dbmgr/pkg/graph"
	"github.com/pseudomuto/dbmgr/pkg/scripts"
)

// trackFunc writes the tracking record of a script inside its transaction.
type trackFunc func(context.Context, executor.Runner) error

// DeployDeltas applies every delta under Deltas (or Deltas/subdir) whose version
// has not been recorded yet, in file name order. A missing directory is logged
// and skipped.
func (m *Migrator) DeployDeltas(ctx context.Context, subdir string) (bool, error) {
	files, err := m.repo.Deltas(subdir)
	if isMissingDir(err) {
		m.log.Warn("Deltas not found, skipping deltas", "err", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	m.log.Info("Deploying deltas", "subdir", subdir, "count", len(files))

	updated := false
	for _, f := range files {
		version := scripts.DeltaVersion(f.Path)

		n, err := m.scalarInt(ctx, m.dialect.CheckMigrationRecordSQL(), version)
		if err != nil {
			return updated, errors.Wrapf(err, "failed to check delta version %s", version)
		}

		if n > 0 {
			m.log.Debug("Delta already applied", "version", version, "script", f.BaseName())
			m.metrics.Skipped(string(scripts.PhaseDelta))
			continue
		}

		ran, err := m.apply(ctx, f, func(ctx context.Context, r executor.Runner) error {
			_, err := r.Exec(ctx, m.dialect.InsertMigrationRecordSQL(), version)
			return errors.Wrapf(err, "failed to record delta version %s", version)
		})
		updated = updated || ran
		if err != nil {
			return updated, err
		}
	}

	return updated, nil
}

// DeployCurrent redeploys every Current script whose checksum or length differs
// from its tracking record. Scripts run in dependency order, ties broken by the
// dialect's object type precedence.
func (m *Migrator) DeployCurrent(ctx context.Context) (bool, error) {
	files, err := m.repo.Current()
	if isMissingDir(err) {
		m.log.Warn("Current scripts not found, skipping current", "err", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	ordered, err := m.order(files, m.dialect.Prefixes())
	if err != nil {
		return false, err
	}

	m.log.Info("Deploying current scripts", "count", len(ordered))
	if len(ordered) == 0 {
		return false, nil
	}

	records, err := m.scriptRecords(ctx)
	if err != nil {
		return false, err
	}

	modified := m.now().UTC()

	updated := false
	for _, f := range ordered {
		fp := fingerprint.Compute(f.Path)

		existing, found := records[f.Name]
		if found && existing.Fingerprint().Equal(fp) {
			m.metrics.Skipped(string(scripts.PhaseCurrent))
			continue
		}

		rec := ScriptRecord{Name: f.Name, Checksum: fp.Checksum, Length: fp.Length, ModifiedAt: modified}
		ran, err := m.apply(ctx, f, func(ctx context.Context, r executor.Runner) error {
			if found {
				return m.updateScriptRecord(ctx, r, rec)
			}
			return m.insertScriptRecord(ctx, r, rec)
		})
		updated = updated || ran
		if err != nil {
			return updated, err
		}
	}

	return updated, nil
}

// DeployPost runs every Post script, in dependency order.
func (m *Migrator) DeployPost(ctx context.Context) (bool, error) {
	files, err := m.repo.Post()
	if isMissingDir(err) {
		m.log.Warn("Post scripts not found, skipping post", "err", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	ordered, err := m.order(files, nil)
	if err != nil {
		return false, err
	}

	m.log.Info("Deploying post scripts", "count", len(ordered))

	updated := false
	for _, f := range ordered {
		ran, err := m.apply(ctx, f, nil)
		updated = updated || ran
		if err != nil {
			return updated, err
		}
	}

	return updated, nil
}

// order ranks files by their {{name}} references and sorts them for execution.
// Structural errors are logged with the complete offending set.
func (m *Migrator) order(files []*scripts.File, prefixes []string) ([]*scripts.File, error) {
	deps, err := scripts.ExtractDependencies(files)
	if err != nil {
		var unresolved *scripts.UnresolvedDependencyError
		if errors.As(err, &unresolved) {
			for _, name := range unresolved.Names() {
				m.log.Error("Unresolved dependency", "name", name, "referenced_by", unresolved.Missing[name])
			}
		}
		return nil, err
	}

	ranks, err := graph.Rank(deps, graph.Strict)
	if err != nil {
		var circular *graph.CircularDependencyError
		if errors.As(err, &circular) {
			for _, edge := range circular.Edges {
				m.log.Error("Circular dependency", "name", edge.Name, "referenced_by", edge.Referencer)
			}
		}
		return nil, err
	}

	ordered, err := scripts.Order(files, ranks, prefixes)
	if err != nil {
		m.log.Error("Unable to order scripts", "err", err)
		return nil, err
	}

	return ordered, nil
}

// apply runs a single script and its tracking write in one scope. It reports
// whether the script was executed, which is never the case in a dry run.
func (m *Migrator) apply(ctx context.Context, f *scripts.File, track trackFunc) (bool, error) {
	entry := HistoryEntry{Phase: f.Phase, Name: f.Name, Path: f.Path}
	phase := string(f.Phase)

	if m.dryRun {
		m.log.Info("Would run script", "phase", phase, "script", f.Path)
		m.planned = append(m.planned, entry)
		m.metrics.Planned(phase)
		return false, nil
	}

	start := time.Now()
	m.log.Info("Running script", "phase", phase, "script", f.Path)

	scope, err := m.exec.Begin(ctx)
	if err != nil {
		return false, m.failed(f, err)
	}

	if err := scope.ExecScript(ctx, f.Path, m.dialect.BatchSeparator(), m.tokens); err != nil {
		m.rollback(scope, f)
		return false, m.failed(f, err)
	}

	if track != nil {
		if err := track(ctx, scope); err != nil {
			m.rollback(scope, f)
			return false, m.failed(f, err)
		}
	}

	if err := scope.Commit(); err != nil {
		m.rollback(scope, f)
		return false, m.failed(f, err)
	}

	m.history = append(m.history, entry)
	m.metrics.Executed(phase, time.Since(start))
	m.log.Info("Finished running script", "phase", phase, "script", f.Path, logElapsed(start))

	return true, nil
}

func (m *Migrator) rollback(scope executor.Scope, f *scripts.File) {
	if err := scope.Rollback(); err != nil {
		m.log.Error("Rollback failed", "script", f.Path, "err", err)
	}
}

func (m *Migrator) failed(f *scripts.File, err error) error {
	m.metrics.Failed(string(f.Phase))
	m.log.Error("Script failed", "phase", f.Phase, "script", f.Path, "err", err)
	return &ScriptExecutionError{Phase: f.Phase, Script: f.Path, Err: err}
}
