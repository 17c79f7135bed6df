package project

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/consts"
	"github.com/pseudomuto/dbmgr/pkg/dialect"
	"github.com/pseudomuto/dbmgr/pkg/scripts"
)

const (
	// DatabaseDir holds every script directory and the default token file.
	DatabaseDir = "Database"

	// DeltasDir, CurrentDir and PostDir are the phase directories under
	// DatabaseDir.
	DeltasDir  = "Deltas"
	CurrentDir = "Current"
	PostDir    = "Post"
)

// Project is a directory laid out for dbmgr:
//
//	<root>/dbmgr.yaml
//	<root>/Database/default.db.token.config
//	<root>/Database/Deltas[/Blue|/Green]/*.up
//	<root>/Database/Current/<type dir>/<prefix><name><ext>
//	<root>/Database/Post/*<ext>
type Project struct {
	root string
}

// New returns a Project rooted at path. The directory is not touched until
// Initialize, NewDelta or Overlay is called.
//
// Example:
//
//	proj := project.New("/src/orders-db")
//
//	d, _ := dialect.Get("postgres")
//	if err := proj.Initialize(project.InitOptions{Dialect: d}); err != nil {
//		log.Fatal(err)
//	}
//
//	repo := proj.Repository(d)
//	files, err := repo.Current()
func New(path string) *Project {
	return &Project{root: path}
}

// Root is the project directory.
func (p *Project) Root() string { return p.root }

// DatabaseDir is <root>/Database.
func (p *Project) DatabaseDir() string { return filepath.Join(p.root, DatabaseDir) }

// DeltaDir is <root>/Database/Deltas.
func (p *Project) DeltaDir() string { return filepath.Join(p.DatabaseDir(), DeltasDir) }

// CurrentDir is <root>/Database/Current.
func (p *Project) CurrentDir() string { return filepath.Join(p.DatabaseDir(), CurrentDir) }

// PostDir is <root>/Database/Post.
func (p *Project) PostDir() string { return filepath.Join(p.DatabaseDir(), PostDir) }

// ConfigFile is <root>/dbmgr.yaml.
func (p *Project) ConfigFile() string { return filepath.Join(p.root, consts.ConfigFile) }

// TokenFile resolves a token file path. An empty path selects the default token
// file and relative paths are taken from the project root.
func (p *Project) TokenFile(path string) string {
	switch {
	case path == "":
		return filepath.Join(p.DatabaseDir(), consts.DefaultTokenFile)
	case filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(p.root, path)
	}
}

// Repository returns a script repository for the project's phase directories
// using the naming conventions of d.
func (p *Project) Repository(d dialect.Dialect) *scripts.Repository {
	return scripts.NewRepository(scripts.Options{
		DeltaDir:   p.DeltaDir(),
		CurrentDir: p.CurrentDir(),
		PostDir:    p.PostDir(),
		Extension:  d.FileExtension(),
		Prefixes:   d.Prefixes(),
	})
}

func (p *Project) ensureDirectory() error {
	dir, err := os.Stat(p.root)
	if err != nil {
		return errors.Wrapf(err, "failed to stat dir: %s", p.root)
	}

	if !dir.IsDir() {
		return errors.Errorf("%s is not a directory", p.root)
	}

	return nil
}
