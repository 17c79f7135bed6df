package executor

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/dialect"
	"github.com/pseudomuto/dbmgr/pkg/tokens"
)

type (
	// Scanner reads the current row of a result set.
	Scanner interface {
		Scan(dest ...any) error
	}

	// Runner executes SQL.
	Runner interface {
		// Exec runs a statement and returns the number of affected rows.
		Exec(ctx context.Context, query string, args ...any) (int64, error)

		// Scalar returns the first column of the first row.
		Scalar(ctx context.Context, query string, args ...any) (any, error)

		// Query calls fn once per result row.
		Query(ctx context.Context, query string, fn func(Scanner) error, args ...any) error

		// ExecScript runs the file at path after substituting table values,
		// splitting it on the separator pattern.
		ExecScript(ctx context.Context, path, separator string, table tokens.Table) error
	}

	// Executor is a Runner that can open transactional scopes.
	Executor interface {
		Runner

		// Begin opens a scope. Every statement run through the scope commits or
		// rolls back together.
		Begin(ctx context.Context) (Scope, error)

		Close() error
	}

	// Scope is a unit of work.
	Scope interface {
		Runner
		Commit() error
		Rollback() error
	}

	// Options configures statement and transaction behavior.
	Options struct {
		// CommandTimeout bounds every statement. Zero means no limit.
		CommandTimeout time.Duration

		// TransactionTimeout bounds every scope. Zero means no limit.
		TransactionTimeout time.Duration

		// Isolation is the isolation level of transactional scopes.
		Isolation sql.IsolationLevel

		// Transactional disables real transactions when false.
		Transactional bool

		// Logger receives debug output. Defaults to slog.Default().
		Logger *slog.Logger
	}

	// ScriptError is returned by ExecScript when a batch fails.
	ScriptError struct {
		Path  string
		Chunk string
		Err   error
	}

	// DB is an Executor backed by a *sql.DB.
	DB struct {
		runner
		db *sql.DB
	}

	queryer interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	}

	runner struct {
		q    queryer
		opts Options
	}

	txScope struct {
		runner
		tx     *sql.Tx
		cancel context.CancelFunc
	}

	directScope struct {
		runner
	}
)

func (e *ScriptError) Error() string {
	return fmt.Sprintf("failed executing %s: batch (%d chars) %q: %v", e.Path, len(e.Chunk), e.Chunk, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// OptionsFor returns Options matching the transaction semantics of d.
func OptionsFor(d dialect.Dialect, commandTimeout, transactionTimeout time.Duration) Options {
	return Options{
		CommandTimeout:     commandTimeout,
		TransactionTimeout: transactionTimeout,
		Isolation:          d.Isolation(),
		Transactional:      d.Transactional(),
	}
}

// Open connects to a database with the named driver.
func Open(driver, dsn string, opts Options) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s connection", driver)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY between a
	// scope and the pool.
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	return New(db, opts), nil
}

// New wraps an existing pool.
func New(db *sql.DB, opts Options) *DB {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &DB{runner: runner{q: db, opts: opts}, db: db}
}

// Begin opens a transaction with the configured isolation level and timeout. For
// non-transactional engines the returned scope runs statements directly.
func (d *DB) Begin(ctx context.Context) (Scope, error) {
	if !d.opts.Transactional {
		d.opts.Logger.Debug("Opening non-transactional scope")
		return &directScope{runner: d.runner}, nil
	}

	cancel := context.CancelFunc(func() {})
	if d.opts.TransactionTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.opts.TransactionTimeout)
	}

	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{Isolation: d.opts.Isolation})
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "failed to begin transaction")
	}

	return &txScope{runner: runner{q: tx, opts: d.opts}, tx: tx, cancel: cancel}, nil
}

// Close closes the underlying pool.
func (d *DB) Close() error {
	return d.db.Close()
}

func (s *txScope) Commit() error {
	defer s.cancel()
	return errors.Wrap(s.tx.Commit(), "failed to commit transaction")
}

func (s *txScope) Rollback() error {
	defer s.cancel()

	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return errors.Wrap(err, "failed to roll back transaction")
	}

	return nil
}

func (s *directScope) Commit() error   { return nil }
func (s *directScope) Rollback() error { return nil }

func (r runner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.CommandTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, r.opts.CommandTimeout)
}

func (r runner) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		// Some drivers cannot report affected rows; the statement still ran.
		return 0, nil
	}

	return n, nil
}

func (r runner) Scalar(ctx context.Context, query string, args ...any) (any, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var value any
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		return nil, err
	}

	return value, nil
}

func (r runner) Query(ctx context.Context, query string, fn func(Scanner) error, args ...any) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (r runner) ExecScript(ctx context.Context, path, separator string, table tokens.Table) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read script %s", path)
	}

	text, err := tokens.Substitute(string(content), table)
	if err != nil {
		return errors.Wrapf(err, "failed to substitute tokens in %s", path)
	}

	chunks, err := SplitBatches(text, separator)
	if err != nil {
		return err
	}

	for i, chunk := range chunks {
		r.opts.Logger.Debug("Executing batch", "path", path, "batch", i+1, "of", len(chunks))
		if _, err := r.Exec(ctx, chunk); err != nil {
			return &ScriptError{Path: path, Chunk: chunk, Err: err}
		}
	}

	return nil
}

// SplitBatches splits content on separator, applied in multi-line
// case-insensitive mode, dropping blank batches. An empty separator yields the
// whole content as one batch.
func SplitBatches(content, separator string) ([]string, error) {
	parts := []string{content}
	if separator != "" {
		re, err := regexp.Compile("(?im)" + separator)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid batch separator %q", separator)
		}
		parts = re.Split(content, -1)
	}

	chunks := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			chunks = append(chunks, part)
		}
	}

	return chunks, nil
}

// ToInt64 converts a scalar result to an int64. Drivers return counts as a
// variety of integer, float, byte and string types.
func ToInt64(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case []byte:
		return parseInt(string(n))
	case string:
		return parseInt(n)
	}

	return 0, errors.Errorf("unsupported numeric value %v (%T)", v, v)
}

func parseInt(s string) (int64, error) {
	var n int64
	if _, err := fmt.Sscan(strings.TrimSpace(s), &n); err != nil {
		return 0, errors.Wrapf(err, "invalid numeric value %q", s)
	}

	return n, nil
}
