package project

import (
	"bytes"
	_ "embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/config"
	"github.com/pseudomuto/dbmgr/pkg/consts"
	"github.com/pseudomuto/dbmgr/pkg/dialect"
)

var (
	//go:embed embed/dbmgr.yaml
	defaultConfig []byte

	//go:embed embed/default.db.token.config
	defaultTokens []byte
)

type (
	// InitOptions controls the layout created by Initialize.
	InitOptions struct {
		// BlueGreen adds the Blue and Green delta directories.
		BlueGreen bool

		// Dialect selects the Current object directories and is written to
		// dbmgr.yaml. Optional.
		Dialect dialect.Dialect

		// ObjectDirs overrides the Current object directories.
		ObjectDirs []string
	}

	// Object is a Current object definition read from a live database.
	Object struct {
		Type       dialect.ObjectType
		Name       string
		Definition string

		// Dependencies are the file names (prefix included) of the objects this
		// one references. Each becomes a --{{name}} line.
		Dependencies []string
	}
)

// Initialize creates the project layout. It is idempotent: existing files and
// directories are left untouched.
//
// Example:
//
//	d, _ := dialect.Get("mssql")
//	err := project.New(".").Initialize(project.InitOptions{
//		BlueGreen: true,
//		Dialect:   d,
//	})
func (p *Project) Initialize(opts InitOptions) error {
	if err := p.ensureDirectory(); err != nil {
		return err
	}

	image, err := initImage(opts)
	if err != nil {
		return err
	}

	_, err = p.Overlay(image, false)
	return err
}

// GenerateImage lays out extracted objects as Current scripts with the given
// file extension. Definitions are trimmed and prefixed with one --{{name}} line
// per dependency.
func GenerateImage(ext string, objects []*Object) fstest.MapFS {
	image := make(fstest.MapFS, len(objects))

	for _, obj := range objects {
		var sb strings.Builder
		for _, dep := range obj.Dependencies {
			sb.WriteString("--{{" + dep + "}}\n")
		}
		sb.WriteString(strings.TrimSpace(obj.Definition))

		name := path.Join(DatabaseDir, CurrentDir, obj.Type.Dir, obj.Type.Prefix+obj.Name+ext)
		image[name] = &fstest.MapFile{
			Data: []byte(sb.String() + "\n"),
			Mode: consts.ModeFile,
		}
	}

	return image
}

// Overlay writes every entry of image below the project root and returns the
// paths of the files it wrote. Existing files are only replaced when overwrite
// is set.
func (p *Project) Overlay(image fs.FS, overwrite bool) ([]string, error) {
	var written []string

	err := fs.WalkDir(image, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		fullPath := filepath.Join(p.root, filepath.FromSlash(name))
		if d.IsDir() {
			if err := os.MkdirAll(fullPath, consts.ModeDir); err != nil {
				return errors.Wrapf(err, "failed to create directory %s", fullPath)
			}
			return nil
		}

		if !overwrite {
			if _, err := os.Stat(fullPath); err == nil {
				return nil
			} else if !os.IsNotExist(err) {
				return errors.Wrapf(err, "failed to stat %s", fullPath)
			}
		}

		data, err := fs.ReadFile(image, name)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s from image", name)
		}

		if err := os.MkdirAll(filepath.Dir(fullPath), consts.ModeDir); err != nil {
			return errors.Wrapf(err, "failed to create parent directory for %s", fullPath)
		}

		if err := os.WriteFile(fullPath, data, consts.ModeFile); err != nil {
			return errors.Wrapf(err, "failed to write file %s", fullPath)
		}

		written = append(written, fullPath)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return written, nil
}

func initImage(opts InitOptions) (fstest.MapFS, error) {
	dir := fs.ModeDir | consts.ModeDir

	image := fstest.MapFS{}
	for _, name := range []string{DeltasDir, CurrentDir, PostDir} {
		image[path.Join(DatabaseDir, name)] = &fstest.MapFile{Mode: dir}
	}
	image[path.Join(DatabaseDir, consts.DefaultTokenFile)] = &fstest.MapFile{Data: defaultTokens}

	if opts.BlueGreen {
		image[path.Join(DatabaseDir, DeltasDir, consts.BlueDir)] = &fstest.MapFile{Mode: dir}
		image[path.Join(DatabaseDir, DeltasDir, consts.GreenDir)] = &fstest.MapFile{Mode: dir}
	}

	objectDirs := opts.ObjectDirs
	if objectDirs == nil && opts.Dialect != nil {
		objectDirs = dialect.ObjectDirs(opts.Dialect)
	}
	for _, d := range objectDirs {
		image[path.Join(DatabaseDir, CurrentDir, d)] = &fstest.MapFile{Mode: dir}
	}

	cfg, err := config.LoadConfig(bytes.NewReader(defaultConfig))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load default config")
	}
	if opts.Dialect != nil {
		cfg.Dialect = opts.Dialect.Name()
	}

	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		return nil, err
	}
	image[consts.ConfigFile] = &fstest.MapFile{Data: buf.Bytes()}

	return image, nil
}
