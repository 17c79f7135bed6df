package migrator

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/consts"
	"github.com/pseudomuto/dbmgr/pkg/executor"
	"github.com/pseudomuto/dbmgr/pkg/fingerprint"
)

// ScriptRecord is the tracking row of a deployed Current script.
//
// Checksums are stored as the signed 32-bit reinterpretation of the unsigned
// value so that 32-bit INTEGER columns can hold every checksum.
type ScriptRecord struct {
	SystemID   int
	Name       string
	Checksum   uint32
	Length     uint64
	ModifiedAt time.Time
}

// Fingerprint returns the recorded checksum and length.
func (r ScriptRecord) Fingerprint() fingerprint.Fingerprint {
	return fingerprint.Fingerprint{Checksum: r.Checksum, Length: r.Length}
}

// ScriptRecords returns the tracking rows of every deployed Current script,
// keyed by lowercased script name.
func (m *Migrator) ScriptRecords(ctx context.Context) (map[string]ScriptRecord, error) {
	return m.scriptRecords(ctx)
}

func (m *Migrator) scriptRecords(ctx context.Context) (map[string]ScriptRecord, error) {
	records := make(map[string]ScriptRecord)

	err := m.exec.Query(ctx, m.dialect.SelectCurrentRecordsSQL(), func(s executor.Scanner) error {
		var (
			name             sql.NullString
			checksum, length any
		)
		if err := s.Scan(&name, &checksum, &length); err != nil {
			return err
		}

		sum, err := executor.ToInt64(checksum)
		if err != nil {
			return errors.Wrapf(err, "invalid checksum for %s", name.String)
		}

		size, err := executor.ToInt64(length)
		if err != nil {
			return errors.Wrapf(err, "invalid length for %s", name.String)
		}

		key := strings.ToLower(name.String)
		records[key] = ScriptRecord{
			SystemID: consts.SystemID,
			Name:     key,
			Checksum: uint32(sum),
			Length:   uint64(size),
		}
		return nil
	}, consts.SystemID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load current script records")
	}

	m.log.Debug("Loaded current script records", "count", len(records))
	return records, nil
}

func (m *Migrator) insertScriptRecord(ctx context.Context, r executor.Runner, rec ScriptRecord) error {
	_, err := r.Exec(ctx, m.dialect.InsertCurrentRecordSQL(),
		consts.SystemID, rec.Name, int32(rec.Checksum), int64(rec.Length), rec.ModifiedAt)

	return errors.Wrapf(err, "failed to insert script record for %s", rec.Name)
}

func (m *Migrator) updateScriptRecord(ctx context.Context, r executor.Runner, rec ScriptRecord) error {
	_, err := r.Exec(ctx, m.dialect.UpdateCurrentRecordSQL(),
		int32(rec.Checksum), int64(rec.Length), rec.ModifiedAt, consts.SystemID, rec.Name)

	return errors.Wrapf(err, "failed to update script record for %s", rec.Name)
}
