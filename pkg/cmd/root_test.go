package cmd

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/config"
	"github.com/pseudomuto/dbmgr/pkg/executor"
	"github.com/pseudomuto/dbmgr/pkg/graph"
	"github.com/pseudomuto/dbmgr/pkg/migrator"
	"github.com/pseudomuto/dbmgr/pkg/scripts"
	"github.com/pseudomuto/dbmgr/pkg/tokens"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	unmatched := &tokens.UnmatchedTokenError{Tokens: []string{"#{X}"}}

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "success", err: nil, expected: ExitOK},
		{name: "general", err: errors.New("boom"), expected: ExitGeneral},
		{name: "configuration", err: errors.Wrap(&config.ConfigurationError{Field: "dialect", Err: errors.New("x")}, "load"), expected: ExitConfig},
		{name: "unresolved", err: &scripts.UnresolvedDependencyError{Missing: map[string][]string{"a": {"b"}}}, expected: ExitStructural},
		{name: "prefix", err: &scripts.UnsupportedPrefixError{Path: "x.sql"}, expected: ExitStructural},
		{name: "circular", err: &graph.CircularDependencyError{}, expected: ExitStructural},
		{name: "unmatched token", err: unmatched, expected: ExitUnmatchedToken},
		{
			name:     "unmatched token inside script failure",
			err:      &migrator.ScriptExecutionError{Phase: scripts.PhasePost, Script: "a.sql", Err: errors.Wrap(unmatched, "substitute")},
			expected: ExitUnmatchedToken,
		},
		{name: "script failure", err: &migrator.ScriptExecutionError{Phase: scripts.PhaseDelta, Script: "a.up", Err: errors.New("x")}, expected: ExitScriptFailure},
		{name: "batch failure", err: &executor.ScriptError{Path: "a.sql", Err: errors.New("x")}, expected: ExitScriptFailure},
		{name: "schema invalid", err: errors.Wrap(migrator.ErrSchemaInvalid, "ensure"), expected: ExitSchemaInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}
