package engine

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ghantakiran/axion-stock-sub010/pipeline"
	"github.com/ghantakiran/axion-stock-sub010/store"
	"github.com/ghantakiran/axion-stock-sub010/types"
)

/**
 * Engine executes pipeline runs batch by batch with bounded
 * parallelism. Distinct engines are fully independent; a single
 * engine may execute many runs concurrently, each isolated by its
 * own node clones.
 */
type Engine struct {
	opts     *types.EngineOptions
	registry *runRegistry
}

func New(s store.Store, opts *types.EngineOptions) *Engine {
	if opts == nil {
		opts = types.NewEngineOptions()
	}
	return &Engine{
		opts:     opts,
		registry: newRunRegistry(s),
	}
}

/**
 * Execute runs the pipeline to a terminal state and returns the
 * completed Run. Structural problems abort before a Run is created;
 * node failures never do — they fail the affected node, skip its
 * descendants and let everything else finish.
 */
func (e *Engine) Execute(ctx context.Context, p *pipeline.Pipeline) (*types.Run, error) {
	if problems := p.Validate(); len(problems) > 0 {
		return nil, errors.Annotatef(problems[0], "pipeline %s failed validation", p.ID)
	}
	order, err := p.ExecutionOrder()
	if err != nil {
		return nil, errors.Trace(err)
	}

	run := p.NewRun()
	run.Status = types.Running
	run.StartedAt = time.Now()

	cancelled := &atomic.Bool{}
	e.registry.track(run, cancelled)

	log.Debugf("run %s: pipeline %s, %d batches", run.ID, p.ID, len(order))

	for i, batch := range order {
		if cancelled.Load() {
			break
		}
		e.executeBatch(ctx, run, cancelled, batch)
		log.Debugf("run %s: batch %d/%d done", run.ID, i+1, len(order))
	}

	e.finalize(run, cancelled.Load())
	e.registry.complete(ctx, run)
	return run, nil
}

func (e *Engine) executeBatch(ctx context.Context, run *types.Run, cancelled *atomic.Bool, batch []string) {
	runnable := make([]*types.Node, 0, len(batch))
	var mu sync.Mutex

	for _, id := range batch {
		node := run.Nodes[id]
		if blockedBy := skipReason(run, node); blockedBy != "" {
			node.Status = types.Skipped
			run.Results[id] = &types.ExecutionResult{
				NodeID: id,
				Status: types.Skipped,
				Error:  "skipped: upstream node " + blockedBy + " did not succeed",
			}
			log.Debugf("run %s: node %s skipped (upstream %s)", run.ID, id, blockedBy)
			continue
		}
		runnable = append(runnable, node)
	}
	if len(runnable) == 0 {
		return
	}

	wp := workerpool.New(min(len(runnable), e.opts.MaxParallelNodes))
	for _, node := range runnable {
		node := node
		wp.Submit(func() {
			result := e.runNode(ctx, run, cancelled, node)
			mu.Lock()
			run.Results[node.ID] = result
			mu.Unlock()
		})
	}
	// batch barrier: later batches may depend on any node in this one
	wp.StopWait()
}

// skipReason returns the id of a direct dependency whose terminal
// state rules this node out, or "" if the node may execute.
func skipReason(run *types.Run, node *types.Node) string {
	for _, dep := range node.DependsOn {
		upstream, exists := run.Nodes[dep]
		if !exists {
			continue
		}
		switch upstream.Status {
		case types.Failed, types.Skipped:
			return dep
		}
	}
	return ""
}

func (e *Engine) finalize(run *types.Run, wasCancelled bool) {
	run.CompletedAt = time.Now()

	if wasCancelled {
		run.Status = types.Cancelled
		for _, node := range run.Nodes {
			if !node.Status.Terminal() {
				node.Status = types.Cancelled
			}
		}
		run.Err = errors.Errorf("run %s cancelled", run.ID)
		run.Error = run.Err.Error()
		log.Warnf("run %s: cancelled", run.ID)
		return
	}

	failed := run.FailedNodeIDs()
	if len(failed) > 0 {
		run.Status = types.Failed
		run.Err = errors.Errorf("nodes failed: %s", strings.Join(failed, ", "))
		run.Error = run.Err.Error()
		log.Warnf("run %s: failed (%s)", run.ID, run.Error)
		return
	}

	run.Status = types.Success
	log.Debugf("run %s: success in %v", run.ID, run.Duration())
}

// Run looks up a tracked or completed run by id.
func (e *Engine) Run(id string) (*types.Run, bool) {
	return e.registry.run(id)
}

// RunIDs lists every run this engine has tracked, sorted.
func (e *Engine) RunIDs() []string {
	return e.registry.runIDs()
}

// RunSummary returns the serialized summary of a completed run.
func (e *Engine) RunSummary(ctx context.Context, id string) ([]byte, error) {
	return e.registry.summary(ctx, id)
}

/**
 * CancelRun requests cooperative cancellation of a running run and
 * reports whether the request took effect. In-flight attempts finish
 * or time out on their own; the flag is honored before the next
 * attempt, backoff sleep or batch.
 */
func (e *Engine) CancelRun(id string) bool {
	return e.registry.cancel(id)
}
