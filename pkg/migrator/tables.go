package migrator

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/dialect"
	"github.com/pseudomuto/dbmgr/pkg/executor"
	"github.com/pseudomuto/dbmgr/pkg/graph"
)

// ErrTableOrderUnsupported is returned by TableOrder for dialects that cannot
// list tables and foreign keys.
var ErrTableOrderUnsupported = errors.New("dialect does not support table ordering")

// TableOrder returns the user tables of the live database ordered so that every
// table comes after the tables its foreign keys reference. Cycles are broken in
// relaxed mode; ties are ordered by name.
func (m *Migrator) TableOrder(ctx context.Context) ([]string, error) {
	lister, ok := m.dialect.(dialect.TableLister)
	if !ok {
		return nil, errors.Wrap(ErrTableOrderUnsupported, m.dialect.Name())
	}

	names := make(map[string]string)
	err := m.exec.Query(ctx, lister.TablesSQL(), func(s executor.Scanner) error {
		var name string
		if err := s.Scan(&name); err != nil {
			return err
		}
		names[strings.ToLower(name)] = name
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tables")
	}

	deps := make(map[string][]string, len(names))
	for key := range names {
		deps[key] = nil
	}

	err = m.exec.Query(ctx, lister.ForeignKeysSQL(), func(s executor.Scanner) error {
		var table, referenced sql.NullString
		if err := s.Scan(&table, &referenced); err != nil {
			return err
		}

		from, to := strings.ToLower(table.String), strings.ToLower(referenced.String)
		if from == to {
			return nil
		}

		if _, ok := names[from]; !ok {
			return nil
		}
		if _, ok := names[to]; !ok {
			return nil
		}

		deps[to] = append(deps[to], from)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list foreign keys")
	}

	ranks, err := graph.Rank(deps, graph.DefaultRelaxed)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(names))
	for key := range names {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if ranks[keys[i]] != ranks[keys[j]] {
			return ranks[keys[i]] > ranks[keys[j]]
		}
		return keys[i] < keys[j]
	})

	ordered := make([]string, 0, len(keys))
	for _, key := range keys {
		ordered = append(ordered, names[key])
	}

	m.log.Info("Ordered tables", "count", len(ordered))
	return ordered, nil
}
