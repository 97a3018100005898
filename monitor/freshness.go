package monitor

import (
	"sort"
	"time"

	"github.com/juju/errors"
)

/**
 * FreshnessCheck watches a named external source (a vendor feed, an
 * exchange file drop) that the pipelines depend on but the engine
 * does not execute. A source is fresh when it has been confirmed
 * updated within its staleness threshold.
 */
type FreshnessCheck struct {
	Name         string        `json:"name"`
	MaxStaleness time.Duration `json:"max_staleness"`
	LastUpdated  *time.Time    `json:"last_updated,omitempty"`
}

func (f *FreshnessCheck) Fresh(now time.Time) bool {
	if f.LastUpdated == nil {
		return false
	}
	return now.Sub(*f.LastUpdated) <= f.MaxStaleness
}

func (m *Monitor) AddFreshnessCheck(name string, maxStaleness time.Duration) error {
	if name == "" {
		return errors.BadRequestf("freshness check requires a name")
	}
	if maxStaleness <= 0 {
		return errors.BadRequestf("freshness check %s requires a positive staleness threshold", name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.freshness[name]; exists {
		return errors.AlreadyExistsf("freshness check: %s", name)
	}
	m.freshness[name] = &FreshnessCheck{Name: name, MaxStaleness: maxStaleness}
	return nil
}

// UpdateFreshness confirms the source was updated, at the supplied
// timestamp or now when omitted.
func (m *Monitor) UpdateFreshness(name string, at ...time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	check, exists := m.freshness[name]
	if !exists {
		return errors.NotFoundf("freshness check: %s", name)
	}

	stamp := time.Now()
	if len(at) > 0 {
		stamp = at[0]
	}
	check.LastUpdated = &stamp
	return nil
}

func (m *Monitor) FreshnessCheckFor(name string) (*FreshnessCheck, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	check, exists := m.freshness[name]
	return check, exists
}

// StaleSources lists sources never updated or past their threshold,
// sorted by name.
func (m *Monitor) StaleSources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	stale := make([]string, 0)
	for name, check := range m.freshness {
		if !check.Fresh(now) {
			stale = append(stale, name)
		}
	}
	sort.Strings(stale)
	return stale
}
