package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pseudomuto/dbmgr/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	rec := metrics.New()
	rec.Executed("current", 10*time.Millisecond)
	rec.Executed("current", 20*time.Millisecond)
	rec.Skipped("current")
	rec.Planned("post")
	rec.Failed("delta")

	require.Equal(t, float64(2), rec.Count("current", metrics.OutcomeExecuted))
	require.Equal(t, float64(1), rec.Count("current", metrics.OutcomeSkipped))
	require.Equal(t, float64(1), rec.Count("post", metrics.OutcomePlanned))
	require.Equal(t, float64(1), rec.Count("delta", metrics.OutcomeFailed))
	require.Zero(t, rec.Count("post", metrics.OutcomeExecuted))

	path := filepath.Join(t.TempDir(), "dbmgr.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `dbmgr_scripts_total{outcome="executed",phase="current"} 2`)
	require.Contains(t, string(data), `dbmgr_script_duration_seconds_count{phase="current"} 2`)
}

func TestRecorder_Nil(t *testing.T) {
	var rec *metrics.Recorder

	require.NotPanics(t, func() {
		rec.Executed("current", time.Second)
		rec.Skipped("current")
		rec.Planned("current")
		rec.Failed("current")
	})

	require.Nil(t, rec.Registry())
	require.Zero(t, rec.Count("current", metrics.OutcomeExecuted))
	require.NoError(t, rec.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestRecorder_EmptyPath(t *testing.T) {
	require.NoError(t, metrics.New().WriteTextfile(""))
}
