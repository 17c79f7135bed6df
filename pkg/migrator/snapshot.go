package migrator

import (
	"context"
	"database/sql"
	"io/fs"
	"path"
	"testing/fstest"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/consts"
	"github.com/pseudomuto/dbmgr/pkg/dialect"
	"github.com/pseudomuto/dbmgr/pkg/executor"
	"github.com/pseudomuto/dbmgr/pkg/project"
)

// ErrExtractUnsupported is returned by ExtractCurrent for dialects that cannot
// read object definitions.
var ErrExtractUnsupported = errors.New("dialect does not support extraction")

// ExtractCurrent reads the programmable objects of the live database and writes
// them to the Current directories, replacing existing files. Each file starts
// with one --{{name}} line per object it references. It returns the number of
// objects extracted. In a dry run nothing is written.
func (m *Migrator) ExtractCurrent(ctx context.Context) (int, error) {
	extractor, ok := m.dialect.(dialect.Extractor)
	if !ok {
		return 0, errors.Wrap(ErrExtractUnsupported, m.dialect.Name())
	}

	start := time.Now()
	types := extractor.ExtractTypes()

	var objects []*project.Object
	for _, t := range types {
		found, err := m.extractObjects(ctx, extractor, t)
		if err != nil {
			return 0, err
		}

		m.log.Info("Extracted objects", "type", t.Dir, "count", len(found))
		objects = append(objects, found...)
	}

	// Every definition is read before the dependency lookups run so only one
	// result set is open at a time.
	for _, obj := range objects {
		deps, err := m.extractDependencies(ctx, extractor, obj.Name)
		if err != nil {
			return 0, err
		}
		obj.Dependencies = deps
	}

	image := project.GenerateImage(m.dialect.FileExtension(), objects)
	for _, t := range types {
		image[path.Join(project.DatabaseDir, project.CurrentDir, t.Dir)] = &fstest.MapFile{Mode: fs.ModeDir | consts.ModeDir}
	}

	if m.dryRun {
		for _, obj := range objects {
			m.log.Info("Would extract object", "type", obj.Type.Dir, "name", obj.Name)
		}
		return len(objects), nil
	}

	written, err := m.project.Overlay(image, true)
	if err != nil {
		return 0, err
	}

	m.log.Info("Finished extraction", "files", len(written), logElapsed(start))
	return len(objects), nil
}

func (m *Migrator) extractObjects(ctx context.Context, x dialect.Extractor, t dialect.ObjectType) ([]*project.Object, error) {
	var objects []*project.Object

	err := m.exec.Query(ctx, x.ExtractSQL(t), func(s executor.Scanner) error {
		var name, definition sql.NullString
		if err := s.Scan(&name, &definition); err != nil {
			return err
		}

		if !definition.Valid {
			m.log.Warn("Object definition unavailable, skipping", "type", t.Dir, "name", name.String)
			return nil
		}

		objects = append(objects, &project.Object{Type: t, Name: name.String, Definition: definition.String})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to extract %s", t.Dir)
	}

	return objects, nil
}

func (m *Migrator) extractDependencies(ctx context.Context, x dialect.Extractor, name string) ([]string, error) {
	var deps []string
	seen := make(map[string]bool)

	err := m.exec.Query(ctx, x.DependenciesSQL(), func(s executor.Scanner) error {
		var code, desc, ref sql.NullString
		if err := s.Scan(&code, &desc, &ref); err != nil {
			return err
		}

		prefix, ok := x.PrefixForCode(code.String)
		if !ok {
			m.log.Warn("Unknown dependency type", "object", name, "dependency", ref.String, "type", desc.String)
		}

		dep := prefix + ref.String
		if !seen[dep] {
			seen[dep] = true
			deps = append(deps, dep)
		}
		return nil
	}, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read dependencies of %s", name)
	}

	return deps, nil
}
