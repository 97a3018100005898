package types

import (
	"context"
	"time"
)

/**
 * Action is the unit of work a node carries. It receives the node's
 * metadata as input and runs under the node's timeout; returning a
 * non-nil error counts as a failed attempt and is retried per the
 * node's retry policy.
 */
type Action func(ctx context.Context, input Data) (Data, error)

type Node struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Action    Action        `json:"-"`
	DependsOn []string      `json:"depends_on,omitempty"`
	Timeout   time.Duration `json:"timeout,omitempty"`
	/**
	 * MaxRetries is the node's own retry budget. nil means the node
	 * declares none and inherits the engine's default; an explicit 0
	 * means one attempt, no retries.
	 */
	MaxRetries *int   `json:"max_retries,omitempty"`
	Status     Status `json:"status"`
	Metadata   Data   `json:"metadata,omitempty"`
}

// Retries is a literal-friendly way to set an explicit retry budget.
func Retries(n int) *int {
	return &n
}

/**
 * Clone produces an independent copy with status reset to Pending.
 * A Run owns its clones exclusively; the pipeline template node is
 * never mutated by execution.
 */
func (n *Node) Clone() *Node {
	clone := &Node{
		ID:       n.ID,
		Name:     n.Name,
		Action:   n.Action,
		Timeout:  n.Timeout,
		Status:   Pending,
		Metadata: n.Metadata.Clone(),
	}
	if n.MaxRetries != nil {
		clone.MaxRetries = Retries(*n.MaxRetries)
	}
	if n.DependsOn != nil {
		clone.DependsOn = append([]string(nil), n.DependsOn...)
	}
	return clone
}
