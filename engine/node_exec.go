package engine

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ghantakiran/axion-stock-sub010/types"
)

/**
 * runNode drives one node clone to a terminal state: up to
 * MaxRetries+1 attempts, each under the node's timeout, with an
 * exponential capped backoff between attempts. The backoff sleeps
 * only this node's worker, never its batch siblings.
 */
func (e *Engine) runNode(ctx context.Context, run *types.Run, cancelled *atomic.Bool, node *types.Node) *types.ExecutionResult {
	node.Status = types.Running

	timeout := node.Timeout
	if timeout <= 0 {
		timeout = e.opts.DefaultTimeout
	}
	retries := e.opts.DefaultMaxRetries
	if node.MaxRetries != nil {
		retries = *node.MaxRetries
	}
	if retries < 0 {
		retries = 0
	}

	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		if cancelled.Load() {
			node.Status = types.Cancelled
			return &types.ExecutionResult{
				NodeID:      node.ID,
				Status:      types.Cancelled,
				Duration:    time.Since(start),
				RetriesUsed: attempt,
			}
		}
		if attempt > 0 {
			delay := e.backoffDelay(attempt)
			log.Warnf("run %s: node %s attempt %d failed, retrying in %v: %v",
				run.ID, node.ID, attempt, delay, lastErr)
			time.Sleep(delay)
		}

		output, err := e.attempt(ctx, node, timeout)
		if err == nil {
			node.Status = types.Success
			return &types.ExecutionResult{
				NodeID:      node.ID,
				Status:      types.Success,
				Duration:    time.Since(start),
				RetriesUsed: attempt,
				Output:      output,
			}
		}
		lastErr = err
	}

	node.Status = types.Failed
	log.Errorf("run %s: node %s failed after %d attempts: %v", run.ID, node.ID, retries+1, lastErr)
	return &types.ExecutionResult{
		NodeID:      node.ID,
		Status:      types.Failed,
		Duration:    time.Since(start),
		Error:       lastErr.Error(),
		RetriesUsed: retries,
	}
}

/**
 * attempt runs the action in its own goroutine under a deadline so a
 * hung action cannot block the batch worker past its timeout. The
 * goroutine of an expired attempt is left to drain on its own; its
 * late result is discarded.
 */
func (e *Engine) attempt(ctx context.Context, node *types.Node, timeout time.Duration) (types.Data, error) {
	if node.Action == nil {
		return nil, nil
	}

	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type attemptResult struct {
		output types.Data
		err    error
	}
	done := make(chan attemptResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attemptResult{err: errors.Errorf("panic in node %s: %v", node.ID, r)}
			}
		}()
		output, err := node.Action(actx, node.Metadata)
		done <- attemptResult{output: output, err: err}
	}()

	select {
	case result := <-done:
		return result.output, errors.Trace(result.err)
	case <-actx.Done():
		return nil, errors.Errorf("node %s timed out after %v", node.ID, timeout)
	}
}

func (e *Engine) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(math.Pow(e.opts.BackoffBase, float64(attempt)) * float64(e.opts.BackoffUnit))
	if delay > e.opts.BackoffCap {
		delay = e.opts.BackoffCap
	}
	return delay
}
