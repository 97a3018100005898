package types

import (
	"time"
)

// ExecutionResult records the final outcome of one node within a run,
// after all retry attempts were consumed.
type ExecutionResult struct {
	NodeID      string        `json:"node_id"`
	Status      Status        `json:"status"`
	Duration    time.Duration `json:"duration"`
	Error       string        `json:"error,omitempty"`
	RetriesUsed int           `json:"retries_used"`
	Output      Data          `json:"output,omitempty"`
}

/**
 * Run is one isolated execution of a pipeline. Nodes holds an
 * independent clone of every template node, so concurrent runs of the
 * same pipeline never share mutable state. A Run is mutated only by
 * the engine executing it and is read-only once Status is terminal.
 */
type Run struct {
	ID          string                      `json:"id"`
	PipelineID  string                      `json:"pipeline_id"`
	Status      Status                      `json:"status"`
	Nodes       map[string]*Node            `json:"nodes"`
	Results     map[string]*ExecutionResult `json:"results,omitempty"`
	StartedAt   time.Time                   `json:"started_at,omitempty"`
	CompletedAt time.Time                   `json:"completed_at,omitempty"`
	Error       string                      `json:"error,omitempty"`

	Err error `json:"-"`
}

func (r *Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}

// FailedNodeIDs lists nodes that exhausted their retries, excluding
// nodes skipped as a consequence of an ancestor failure.
func (r *Run) FailedNodeIDs() []string {
	ids := make([]string, 0)
	for id, node := range r.Nodes {
		if node.Status == Failed {
			ids = append(ids, id)
		}
	}
	return ids
}
