package cmd

import (
	"strings"
	"testing"

	"github.com/pseudomuto/dbmgr/pkg/cmd/testutil"
	"github.com/pseudomuto/dbmgr/pkg/project"
	"github.com/stretchr/testify/require"
)

func TestTestCommand(t *testing.T) {
	f := testutil.NewSQLiteProject(t)
	p := dbParams{Config: f.Config, Project: f.Project}

	out, err := testutil.RunCommand(t, testCmd(p), nil)
	require.NoError(t, err)
	require.Contains(t, out, "Connected to sqlite database")

	t.Run("flags override missing config", func(t *testing.T) {
		p := dbParams{Project: project.New(t.TempDir())}

		out, err := testutil.RunCommand(t, testCmd(p), []string{"--dialect", "sqlite", "--dsn", f.Database})
		require.NoError(t, err)
		require.Contains(t, out, "Connected to sqlite database")
	})

	t.Run("no connection", func(t *testing.T) {
		p := dbParams{Project: project.New(t.TempDir())}

		_, err := testutil.RunCommand(t, testCmd(p), []string{"--dialect", "sqlite"})
		require.Equal(t, ExitConfig, ExitCode(err))
	})

	t.Run("unknown dialect", func(t *testing.T) {
		_, err := testutil.RunCommand(t, testCmd(p), []string{"--dialect", "db2"})
		require.Equal(t, ExitConfig, ExitCode(err))
	})
}

func TestSchemaCommand(t *testing.T) {
	f := testutil.NewSQLiteProject(t)
	p := dbParams{Config: f.Config, Project: f.Project}

	_, err := testutil.RunCommand(t, schema(p), nil)
	require.Equal(t, ExitSchemaInvalid, ExitCode(err))

	out, err := testutil.RunCommand(t, schema(p), []string{"--create"})
	require.NoError(t, err)
	require.Contains(t, out, "Tracking schema is valid")

	_, err = testutil.RunCommand(t, schema(p), nil)
	require.NoError(t, err)
}

func TestExecCommand(t *testing.T) {
	f := testutil.NewSQLiteProject(t)
	p := dbParams{Config: f.Config, Project: f.Project}

	script := f.WriteFile(t, "scripts/setup.sql", "CREATE TABLE a (id INTEGER)\nGO\nINSERT INTO a VALUES (1)\nGO\n")
	out, err := testutil.RunCommand(t, execCmd(p), []string{script})
	require.NoError(t, err)
	require.Contains(t, out, "Executed "+script)

	broken := f.WriteFile(t, "scripts/broken.sql", "INSERT INTO missing VALUES (1)")
	_, err = testutil.RunCommand(t, execCmd(p), []string{broken})
	require.Equal(t, ExitScriptFailure, ExitCode(err))

	_, err = testutil.RunCommand(t, execCmd(p), nil)
	testutil.RequireError(t, err, "exactly one script file")
}

func TestTablesCommand(t *testing.T) {
	f := testutil.NewSQLiteProject(t)
	p := dbParams{Config: f.Config, Project: f.Project}

	script := f.WriteFile(t, "scripts/tables.sql", `CREATE TABLE order_items (order_id INTEGER REFERENCES orders(id))
GO
CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER REFERENCES customers(id))
GO
CREATE TABLE customers (id INTEGER PRIMARY KEY)
`)
	_, err := testutil.RunCommand(t, execCmd(p), []string{script})
	require.NoError(t, err)

	out, err := testutil.RunCommand(t, tables(p), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"customers", "orders", "order_items"}, strings.Fields(out))
}

func TestExtractCommand(t *testing.T) {
	f := testutil.NewSQLiteProject(t)
	p := dbParams{Config: f.Config, Project: f.Project}

	_, err := testutil.RunCommand(t, extract(p), nil)
	testutil.RequireError(t, err, "does not support extraction")

	_, err = testutil.RunCommand(t, extract(dbParams{Project: f.Project}), nil)
	require.Equal(t, ExitConfig, ExitCode(err))
}
