package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ghantakiran/axion-stock-sub010/store"
	"github.com/ghantakiran/axion-stock-sub010/types"
	"github.com/ghantakiran/axion-stock-sub010/utils"
)

const (
	RunPath = "/runs/"
)

/**
 * runRegistry retains every run this engine has executed, keyed by
 * run id, together with the cancellation flag of runs still in
 * flight. Completed runs are additionally serialized into the store
 * so summaries can be listed without holding live pointers.
 */
type runRegistry struct {
	mu sync.Mutex

	store   store.Store
	runs    map[string]*types.Run
	cancels map[string]*atomic.Bool
}

func newRunRegistry(s store.Store) *runRegistry {
	return &runRegistry{
		store:   s,
		runs:    make(map[string]*types.Run),
		cancels: make(map[string]*atomic.Bool),
	}
}

func (r *runRegistry) track(run *types.Run, cancelled *atomic.Bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.ID] = run
	r.cancels[run.ID] = cancelled
}

func (r *runRegistry) complete(ctx context.Context, run *types.Run) {
	r.mu.Lock()
	delete(r.cancels, run.ID)
	r.mu.Unlock()

	if r.store == nil {
		return
	}
	b, err := utils.Serialize(run)
	if err == nil {
		err = r.store.Set(ctx, RunPath, run.ID, b)
	}
	if err != nil {
		log.Errorf("run %s: failed to save summary: %v", run.ID, err)
	}
}

func (r *runRegistry) run(id string) (*types.Run, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, exists := r.runs[id]
	return run, exists
}

func (r *runRegistry) runIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return utils.SortedKeys(r.runs)
}

// summary fetches the serialized form of a completed run from the
// store. Runs still in flight have no summary yet.
func (r *runRegistry) summary(ctx context.Context, id string) ([]byte, error) {
	if r.store == nil {
		return nil, errors.NotFoundf("run summary: %s", id)
	}
	b, err := r.store.Get(ctx, RunPath, id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(b) == 0 {
		return nil, errors.NotFoundf("run summary: %s", id)
	}
	return b, nil
}

/**
 * cancel flips the flag for a run that is still in flight; anything
 * else is a no-op. In-flight is "tracked but not yet completed",
 * decided purely by presence in cancels — complete() removes the
 * entry under this same lock, so cancel never has to inspect the
 * run's own mutable state.
 */
func (r *runRegistry) cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	flag, exists := r.cancels[id]
	if !exists {
		return false
	}
	flag.Store(true)
	return true
}
