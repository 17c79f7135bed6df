package migrator

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ValidateSchema probes both tracking tables. Any error means the schema is not
// provisioned yet and is reported as false.
func (m *Migrator) ValidateSchema(ctx context.Context) bool {
	for _, query := range []string{m.dialect.CheckMigrationStructureSQL(), m.dialect.CheckCurrentStructureSQL()} {
		if _, err := m.exec.Scalar(ctx, query); err != nil {
			m.log.Warn("Found invalid migration schema", "err", err)
			return false
		}
	}

	return true
}

// CreateSchema creates both tracking tables in a single scope and validates the
// result. The DDL is skipped in a dry run.
func (m *Migrator) CreateSchema(ctx context.Context) (bool, error) {
	start := time.Now()
	m.log.Info("Creating tracking schema")

	if !m.dryRun {
		scope, err := m.exec.Begin(ctx)
		if err != nil {
			return false, err
		}

		for _, ddl := range []string{m.dialect.CreateMigrationTrackingSQL(), m.dialect.CreateCurrentTrackingSQL()} {
			if _, err := scope.Exec(ctx, ddl); err != nil {
				_ = scope.Rollback()
				return false, errors.Wrap(err, "failed to create tracking schema")
			}
		}

		if err := scope.Commit(); err != nil {
			return false, err
		}
	}

	valid := m.ValidateSchema(ctx)
	if valid {
		m.log.Info("Tracking schema created", logElapsed(start))
	}

	return valid, nil
}

// EnsureSchema validates the tracking tables and, when allowCreate is set,
// creates them if they are missing. It returns ErrSchemaInvalid when the schema
// is still invalid afterwards.
func (m *Migrator) EnsureSchema(ctx context.Context, allowCreate bool) error {
	m.log.Info("Validating schema")
	if m.ValidateSchema(ctx) {
		m.log.Info("Schema is valid")
		return nil
	}

	if !allowCreate {
		return ErrSchemaInvalid
	}

	valid, err := m.CreateSchema(ctx)
	if err != nil {
		return errors.Wrap(ErrSchemaInvalid, err.Error())
	}
	if !valid {
		m.log.Error("Schema is invalid")
		return ErrSchemaInvalid
	}

	return nil
}
