package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/dbmgr/pkg/config"
	"github.com/pseudomuto/dbmgr/pkg/dialect"
	"github.com/pseudomuto/dbmgr/pkg/project"
	"github.com/stretchr/testify/require"
)

// ProjectFixture is an initialized sqlite project in a temporary directory
type ProjectFixture struct {
	Project  *project.Project
	Config   *config.Config
	Database string
}

// NewSQLiteProject initializes a project whose configuration points at a fresh
// sqlite database file
func NewSQLiteProject(t *testing.T) *ProjectFixture {
	t.Helper()

	d, err := dialect.Get("sqlite")
	require.NoError(t, err)

	proj := project.New(t.TempDir())
	require.NoError(t, proj.Initialize(project.InitOptions{Dialect: d, BlueGreen: true}))

	cfg, err := config.LoadConfigFile(proj.ConfigFile())
	require.NoError(t, err)

	db := filepath.Join(t.TempDir(), "dbmgr.db")
	cfg.Connection.Info = db

	return &ProjectFixture{Project: proj, Config: cfg, Database: db}
}

// WriteFile writes content to a path relative to the project root
func (f *ProjectFixture) WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(f.Project.Root(), filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}
