package monitor

import (
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghantakiran/axion-stock-sub010/types"
)

func completedRun(status types.Status, duration time.Duration) *types.Run {
	started := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	return &types.Run{
		ID:          "run-" + status.String(),
		PipelineID:  "quotes",
		Status:      status,
		StartedAt:   started,
		CompletedAt: started.Add(duration),
	}
}

func TestRecordRun(t *testing.T) {
	m := New()
	assert.NotNil(t, m.RecordRun("quotes", nil))

	require.Nil(t, m.RecordRun("quotes", completedRun(types.Success, 2*time.Second)))
	require.Nil(t, m.RecordRun("quotes", completedRun(types.Success, 4*time.Second)))
	require.Nil(t, m.RecordRun("quotes", completedRun(types.Failed, 6*time.Second)))

	metrics, exists := m.Metrics("quotes")
	require.True(t, exists)
	assert.Equal(t, 3, metrics.TotalRuns)
	assert.Equal(t, 2, metrics.SuccessRuns)
	assert.Equal(t, 1, metrics.FailedRuns)
	assert.InDelta(t, 2.0/3.0, metrics.SuccessRate(), 1e-9)
	assert.InDelta(t, 1.0/3.0, metrics.FailureRate(), 1e-9)
	assert.Equal(t, 4*time.Second, metrics.AvgDuration)
	assert.Equal(t, types.Failed, metrics.LastStatus)

	_, exists = m.Metrics("unknown")
	assert.False(t, exists)

	// the snapshot is a copy
	metrics.TotalRuns = 99
	again, _ := m.Metrics("quotes")
	assert.Equal(t, 3, again.TotalRuns)
}

func TestCheckSLA(t *testing.T) {
	m := New()
	require.Nil(t, m.RecordRun("quotes", completedRun(types.Success, 2*time.Second)))
	require.Nil(t, m.RecordRun("quotes", completedRun(types.Success, 2*time.Second)))
	require.Nil(t, m.RecordRun("quotes", completedRun(types.Failed, 2*time.Second)))

	// no SLA configured: pass, no violations
	result := m.CheckSLA("quotes")
	assert.True(t, result.Passed)
	assert.Empty(t, result.Violations)

	// strict failure-rate threshold fires
	require.Nil(t, m.SetSLA("quotes", SLAConfig{MaxFailureRate: 0.1}))
	result = m.CheckSLA("quotes")
	assert.False(t, result.Passed)
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "failure rate")

	// loose threshold does not
	require.Nil(t, m.SetSLA("quotes", SLAConfig{MaxFailureRate: 0.5}))
	assert.True(t, m.CheckSLA("quotes").Passed)

	// both checks can fire at once
	require.Nil(t, m.SetSLA("quotes", SLAConfig{MaxFailureRate: 0.1, MaxDuration: time.Second}))
	result = m.CheckSLA("quotes")
	assert.False(t, result.Passed)
	assert.Len(t, result.Violations, 2)

	// SLA on a pipeline with no runs passes
	require.Nil(t, m.SetSLA("empty", SLAConfig{MaxFailureRate: 0.1}))
	assert.True(t, m.CheckSLA("empty").Passed)

	assert.NotNil(t, m.SetSLA("quotes", SLAConfig{MaxFailureRate: 1.5}))
	assert.NotNil(t, m.SetSLA("quotes", SLAConfig{MaxDuration: -time.Second}))
}

// zero thresholds leave their checks unenforced, even against a
// pipeline that only ever failed
func TestZeroSLAThresholdsUnenforced(t *testing.T) {
	m := New()
	require.Nil(t, m.RecordRun("quotes", completedRun(types.Failed, time.Hour)))

	require.Nil(t, m.SetSLA("quotes", SLAConfig{}))
	result := m.CheckSLA("quotes")
	assert.True(t, result.Passed)
	assert.Empty(t, result.Violations)

	// a set duration bound still fires while the rate stays off
	require.Nil(t, m.SetSLA("quotes", SLAConfig{MaxDuration: time.Minute}))
	result = m.CheckSLA("quotes")
	assert.False(t, result.Passed)
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "duration")
}

func TestHealthScore(t *testing.T) {
	m := New()
	assert.Equal(t, 0.0, m.HealthScore("quotes"))

	require.Nil(t, m.RecordRun("quotes", completedRun(types.Success, time.Second)))
	require.Nil(t, m.RecordRun("quotes", completedRun(types.Success, time.Second)))
	require.Nil(t, m.RecordRun("quotes", completedRun(types.Failed, time.Second)))

	// no SLA: 0.7 * 2/3 + 0.3
	assert.InDelta(t, 0.7*(2.0/3.0)+0.3, m.HealthScore("quotes"), 1e-9)

	// violated SLA drops the compliance share
	require.Nil(t, m.SetSLA("quotes", SLAConfig{MaxFailureRate: 0.1}))
	assert.InDelta(t, 0.7*(2.0/3.0), m.HealthScore("quotes"), 1e-9)

	all := New()
	require.Nil(t, all.RecordRun("clean", completedRun(types.Success, time.Second)))
	assert.InDelta(t, 1.0, all.HealthScore("clean"), 1e-9)
}

func TestFreshness(t *testing.T) {
	m := New()

	require.Nil(t, m.AddFreshnessCheck("nasdaq-feed", time.Minute))
	assert.True(t, errors.IsAlreadyExists(m.AddFreshnessCheck("nasdaq-feed", time.Minute)))
	assert.NotNil(t, m.AddFreshnessCheck("", time.Minute))
	assert.NotNil(t, m.AddFreshnessCheck("bad", 0))

	// never updated counts as stale
	assert.Equal(t, []string{"nasdaq-feed"}, m.StaleSources())

	require.Nil(t, m.UpdateFreshness("nasdaq-feed"))
	assert.Empty(t, m.StaleSources())

	// a stale supplied timestamp puts it back over the threshold
	require.Nil(t, m.UpdateFreshness("nasdaq-feed", time.Now().Add(-2*time.Minute)))
	assert.Equal(t, []string{"nasdaq-feed"}, m.StaleSources())

	assert.True(t, errors.IsNotFound(m.UpdateFreshness("unregistered")))

	check, exists := m.FreshnessCheckFor("nasdaq-feed")
	require.True(t, exists)
	assert.Equal(t, time.Minute, check.MaxStaleness)
	assert.False(t, check.Fresh(time.Now()))
}
