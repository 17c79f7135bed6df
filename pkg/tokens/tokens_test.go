package tokens_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		table    tokens.Table
		expected string
	}{
		{
			name:     "nil table",
			content:  "SELECT '#{UNSET}'",
			table:    nil,
			expected: "SELECT '#{UNSET}'",
		},
		{
			name:     "empty table",
			content:  "SELECT '#{UNSET}'",
			table:    tokens.Table{},
			expected: "SELECT '#{UNSET}'",
		},
		{
			name:     "case insensitive keys",
			content:  "SELECT * FROM #{archive_db}.dbo.orders",
			table:    tokens.Table{"ARCHIVE_DB": "archive"},
			expected: "SELECT * FROM archive.dbo.orders",
		},
		{
			name:     "every occurrence",
			content:  "#{A} #{a} #{A}",
			table:    tokens.Table{"A": "x"},
			expected: "x x x",
		},
		{
			name:     "carriage returns stripped",
			content:  "EXEC #{PROC}",
			table:    tokens.Table{"PROC": "sp_sync\r"},
			expected: "EXEC sp_sync",
		},
		{
			name:     "replacement is literal",
			content:  "SELECT '#{PRICE}'",
			table:    tokens.Table{"PRICE": "$1.00"},
			expected: "SELECT '$1.00'",
		},
		{
			name:     "comment and empty keys ignored",
			content:  "SELECT 1",
			table:    tokens.Table{"": "x", "#note": "y"},
			expected: "SELECT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tokens.Substitute(tt.content, tt.table)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSubstitute_Unmatched(t *testing.T) {
	_, err := tokens.Substitute("SELECT '#{KNOWN}', '#{MISSING}', '#{OTHER}'", tokens.Table{"KNOWN": "k"})
	require.Error(t, err)

	var unmatched *tokens.UnmatchedTokenError
	require.True(t, errors.As(err, &unmatched))
	assert.Equal(t, []string{"#{MISSING}", "#{OTHER}"}, unmatched.Tokens)
	assert.Contains(t, err.Error(), "#{MISSING}")
}

func TestLoad(t *testing.T) {
	input := strings.Join([]string{
		"# environment values",
		"LINKED_SERVER=reporting01\r",
		"",
		"CONN=Server=db;Database=app",
		"EMPTY",
	}, "\n")

	table, err := tokens.Load(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, tokens.Table{
		"LINKED_SERVER": "reporting01",
		"CONN":          "Server=db;Database=app",
		"EMPTY":         "",
	}, table)
}

func TestLoad_Duplicate(t *testing.T) {
	_, err := tokens.Load(strings.NewReader("A=1\nA=2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate token "A" on line 2`)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.db.token.config")
	require.NoError(t, os.WriteFile(path, []byte("SCHEMA=dbo\n"), 0o644))

	table, err := tokens.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dbo", table["SCHEMA"])

	_, err = tokens.LoadFile(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open token file")
}
