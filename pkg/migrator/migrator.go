package migrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/consts"
	"github.com/pseudomuto/dbmgr/pkg/dialect"
	"github.com/pseudomuto/dbmgr/pkg/executor"
	"github.com/pseudomuto/dbmgr/pkg/metrics"
	"github.com/pseudomuto/dbmgr/pkg/project"
	"github.com/pseudomuto/dbmgr/pkg/scripts"
	"github.com/pseudomuto/dbmgr/pkg/tokens"
)

type (
	// Config holds the collaborators of a Migrator.
	Config struct {
		Executor executor.Executor
		Dialect  dialect.Dialect
		Project  *project.Project

		// Tokens is applied to every script before execution. May be nil.
		Tokens tokens.Table

		// DryRun disables script execution and tracking writes.
		DryRun bool

		// Logger defaults to slog.Default().
		Logger *slog.Logger

		// Metrics is optional.
		Metrics *metrics.Recorder

		// Now stamps tracking records. Defaults to time.Now.
		Now func() time.Time
	}

	// HistoryEntry is a script that was executed, or would have been in a dry
	// run.
	HistoryEntry struct {
		Phase scripts.Phase
		Name  string
		Path  string
	}

	// Migrator runs deployment phases against one database. A Migrator holds
	// the state of a single run and is not safe for concurrent use.
	Migrator struct {
		exec    executor.Executor
		dialect dialect.Dialect
		project *project.Project
		repo    *scripts.Repository
		tokens  tokens.Table
		dryRun  bool
		log     *slog.Logger
		metrics *metrics.Recorder
		now     func() time.Time
		runID   string

		history []HistoryEntry
		planned []HistoryEntry
	}
)

// New returns a Migrator for one deployment run.
func New(cfg Config) *Migrator {
	runID := uuid.NewString()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Migrator{
		exec:    cfg.Executor,
		dialect: cfg.Dialect,
		project: cfg.Project,
		repo:    cfg.Project.Repository(cfg.Dialect),
		tokens:  cfg.Tokens,
		dryRun:  cfg.DryRun,
		log:     logger.With("run_id", runID),
		metrics: cfg.Metrics,
		now:     now,
		runID:   runID,
	}
}

// RunID identifies this run in log output.
func (m *Migrator) RunID() string { return m.runID }

// DryRun reports whether the Migrator only plans.
func (m *Migrator) DryRun() bool { return m.dryRun }

// History returns the scripts executed so far, in execution order.
func (m *Migrator) History() []HistoryEntry {
	return append([]HistoryEntry(nil), m.history...)
}

// Planned returns the scripts a dry run would have executed, in order.
func (m *Migrator) Planned() []HistoryEntry {
	return append([]HistoryEntry(nil), m.planned...)
}

// Deploy runs every delta (including those under Blue and Green), then the
// Current and Post phases. It reports whether anything was executed.
func (m *Migrator) Deploy(ctx context.Context) (bool, error) {
	return m.phases(ctx,
		func(ctx context.Context) (bool, error) { return m.DeployDeltas(ctx, "") },
		m.DeployCurrent,
		m.DeployPost,
	)
}

// DeployBlue runs the deltas under Deltas/Blue, then the Current phase.
func (m *Migrator) DeployBlue(ctx context.Context) (bool, error) {
	m.log.Info("Starting BLUE deployment")
	return m.phases(ctx,
		func(ctx context.Context) (bool, error) { return m.DeployDeltas(ctx, consts.BlueDir) },
		m.DeployCurrent,
	)
}

// DeployGreen runs the deltas under Deltas/Green, then the Post phase.
func (m *Migrator) DeployGreen(ctx context.Context) (bool, error) {
	m.log.Info("Starting GREEN deployment")
	return m.phases(ctx,
		func(ctx context.Context) (bool, error) { return m.DeployDeltas(ctx, consts.GreenDir) },
		m.DeployPost,
	)
}

func (m *Migrator) phases(ctx context.Context, fns ...func(context.Context) (bool, error)) (bool, error) {
	updated := false
	for _, fn := range fns {
		changed, err := fn(ctx)
		updated = updated || changed
		if err != nil {
			return updated, err
		}
	}

	return updated, nil
}

// HaveConnectivity runs the dialect's test statement.
func (m *Migrator) HaveConnectivity(ctx context.Context) bool {
	if _, err := m.exec.Scalar(ctx, m.dialect.TestConnectionSQL()); err != nil {
		m.log.Error("Connectivity test failed", "err", err)
		return false
	}

	m.log.Info("Connectivity test passed", "dialect", m.dialect.Name())
	return true
}

func (m *Migrator) scalarInt(ctx context.Context, query string, args ...any) (int64, error) {
	v, err := m.exec.Scalar(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return executor.ToInt64(v)
}

func logElapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start).Round(time.Millisecond))
}

func isMissingDir(err error) bool {
	return errors.Is(err, scripts.ErrPhaseDirMissing)
}
