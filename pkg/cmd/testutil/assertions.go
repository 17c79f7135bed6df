package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireValidProject asserts that a project structure is correctly initialized
// with the given Current object directories.
func RequireValidProject(t *testing.T, projectDir string, objectDirs ...string) {
	t.Helper()

	db := filepath.Join(projectDir, "Database")
	require.DirExists(t, filepath.Join(db, "Deltas"), "Deltas directory should exist")
	require.DirExists(t, filepath.Join(db, "Current"), "Current directory should exist")
	require.DirExists(t, filepath.Join(db, "Post"), "Post directory should exist")

	for _, dir := range objectDirs {
		require.DirExists(t, filepath.Join(db, "Current", dir), "Current/%s directory should exist", dir)
	}

	require.FileExists(t, filepath.Join(projectDir, "dbmgr.yaml"), "dbmgr.yaml should exist")
	require.FileExists(t, filepath.Join(db, "default.db.token.config"), "token file should exist")
}

// RequireFileExists asserts that a file exists and optionally checks its content
func RequireFileExists(t *testing.T, path string, checks ...func(content string)) {
	t.Helper()

	require.FileExists(t, path, "File should exist: %s", path)

	if len(checks) > 0 {
		content, err := os.ReadFile(path)
		require.NoError(t, err, "Failed to read file: %s", path)

		contentStr := string(content)
		for _, check := range checks {
			check(contentStr)
		}
	}
}

// RequireFileContains returns a check function that verifies file contains text
func RequireFileContains(t *testing.T, expected string) func(string) {
	return func(content string) {
		require.Contains(t, content, expected, "File should contain: %s", expected)
	}
}

// RequireDeltaCount asserts that a specific number of .up scripts exist in dir
func RequireDeltaCount(t *testing.T, dir string, expectedCount int) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err, "Failed to read deltas directory")

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up") {
			count++
		}
	}

	require.Equal(t, expectedCount, count, "Should have expected number of delta files")
}

// RequireNoFile asserts that a file does not exist
func RequireNoFile(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "File should not exist: %s", path)
}

// RequireError asserts that an error occurred and optionally checks the message
func RequireError(t *testing.T, err error, msgContains ...string) {
	t.Helper()

	require.Error(t, err, "Expected an error")

	for _, msg := range msgContains {
		require.Contains(t, err.Error(), msg, "Error message should contain: %s", msg)
	}
}
