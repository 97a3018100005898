package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ghantakiran/axion-stock-sub010/types"
)

/**
 * PipelineMetrics is the rolling view over every run recorded for a
 * pipeline. AvgDuration is an exact mean over the full duration
 * history, not a smoothed estimate.
 */
type PipelineMetrics struct {
	PipelineID  string        `json:"pipeline_id"`
	TotalRuns   int           `json:"total_runs"`
	SuccessRuns int           `json:"success_runs"`
	FailedRuns  int           `json:"failed_runs"`
	AvgDuration time.Duration `json:"avg_duration"`
	LastRunAt   time.Time     `json:"last_run_at"`
	LastStatus  types.Status  `json:"last_status"`
}

func (m *PipelineMetrics) SuccessRate() float64 {
	if m.TotalRuns == 0 {
		return 0
	}
	return float64(m.SuccessRuns) / float64(m.TotalRuns)
}

func (m *PipelineMetrics) FailureRate() float64 {
	if m.TotalRuns == 0 {
		return 0
	}
	return float64(m.FailedRuns) / float64(m.TotalRuns)
}

/**
 * SLAConfig bounds a pipeline's behavior. Each threshold is optional:
 * a zero value leaves that check unenforced, so a zero-value config
 * always passes. There is no way to demand a zero failure rate via
 * MaxFailureRate; pair it with MaxDuration or check metrics directly.
 */
type SLAConfig struct {
	MaxDuration    time.Duration `json:"max_duration" validate:"gte=0"`
	MaxFailureRate float64       `json:"max_failure_rate" validate:"gte=0,lte=1"`
}

type SLAResult struct {
	PipelineID string   `json:"pipeline_id"`
	Passed     bool     `json:"passed"`
	Violations []string `json:"violations,omitempty"`
}

type pipelineStats struct {
	metrics   PipelineMetrics
	durations []time.Duration
}

/**
 * Monitor consumes completed runs and answers pull-based questions:
 * rolling metrics, SLA compliance, source freshness and a composite
 * health score. It never executes anything and holds no reference to
 * the engine.
 */
type Monitor struct {
	mu sync.Mutex

	validate  *validator.Validate
	stats     map[string]*pipelineStats
	slas      map[string]SLAConfig
	freshness map[string]*FreshnessCheck
}

func New() *Monitor {
	return &Monitor{
		validate:  validator.New(),
		stats:     make(map[string]*pipelineStats),
		slas:      make(map[string]SLAConfig),
		freshness: make(map[string]*FreshnessCheck),
	}
}

/**
 * RecordRun folds one completed run into the pipeline's metrics:
 * counts, last status/timestamp, and the exact running mean duration.
 * The full duration history is retained so the mean never drifts.
 */
func (m *Monitor) RecordRun(pipelineID string, run *types.Run) error {
	if run == nil {
		return errors.BadRequestf("run is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stats, exists := m.stats[pipelineID]
	if !exists {
		stats = &pipelineStats{metrics: PipelineMetrics{PipelineID: pipelineID}}
		m.stats[pipelineID] = stats
	}

	stats.metrics.TotalRuns++
	switch run.Status {
	case types.Success:
		stats.metrics.SuccessRuns++
	case types.Failed:
		stats.metrics.FailedRuns++
	}
	stats.metrics.LastStatus = run.Status
	stats.metrics.LastRunAt = run.CompletedAt
	if stats.metrics.LastRunAt.IsZero() {
		stats.metrics.LastRunAt = time.Now()
	}

	stats.durations = append(stats.durations, run.Duration())
	var total time.Duration
	for _, d := range stats.durations {
		total += d
	}
	stats.metrics.AvgDuration = total / time.Duration(len(stats.durations))

	log.Debugf("monitor: pipeline %s run %s recorded as %s (total %d)",
		pipelineID, run.ID, run.Status, stats.metrics.TotalRuns)
	return nil
}

// Metrics returns a snapshot copy; callers cannot mutate the rolling
// state through it.
func (m *Monitor) Metrics(pipelineID string) (*PipelineMetrics, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, exists := m.stats[pipelineID]
	if !exists {
		return nil, false
	}
	snapshot := stats.metrics
	return &snapshot, true
}

func (m *Monitor) SetSLA(pipelineID string, config SLAConfig) error {
	if err := m.validate.Struct(&config); err != nil {
		return errors.Annotatef(err, "invalid SLA for pipeline %s", pipelineID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.slas[pipelineID] = config
	return nil
}

/**
 * CheckSLA evaluates the configured thresholds against observed
 * metrics. No configured SLA means a pass with no violations. The
 * failure-rate and duration checks are independent; both can fire on
 * the same pipeline.
 */
func (m *Monitor) CheckSLA(pipelineID string) *SLAResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.checkSLA(pipelineID)
}

func (m *Monitor) checkSLA(pipelineID string) *SLAResult {
	result := &SLAResult{PipelineID: pipelineID, Passed: true}

	config, exists := m.slas[pipelineID]
	if !exists {
		return result
	}
	stats, exists := m.stats[pipelineID]
	if !exists {
		return result
	}

	if config.MaxFailureRate > 0 {
		if rate := stats.metrics.FailureRate(); rate > config.MaxFailureRate {
			result.Violations = append(result.Violations,
				fmt.Sprintf("failure rate %.2f exceeds maximum %.2f", rate, config.MaxFailureRate))
		}
	}
	if config.MaxDuration > 0 && stats.metrics.AvgDuration > config.MaxDuration {
		result.Violations = append(result.Violations,
			fmt.Sprintf("average duration %v exceeds maximum %v", stats.metrics.AvgDuration, config.MaxDuration))
	}

	result.Passed = len(result.Violations) == 0
	return result
}

/**
 * HealthScore condenses a pipeline's state into [0,1]:
 * 0.7 weighted on success rate, 0.3 on SLA compliance. A pipeline
 * with no recorded runs scores zero.
 */
func (m *Monitor) HealthScore(pipelineID string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, exists := m.stats[pipelineID]
	if !exists || stats.metrics.TotalRuns == 0 {
		return 0
	}

	score := 0.7 * stats.metrics.SuccessRate()
	if m.checkSLA(pipelineID).Passed {
		score += 0.3
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
