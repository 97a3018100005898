package pipeline

import (
	"sort"
	"strings"

	"github.com/juju/errors"
)

/**
 * ExecutionOrder computes the batched topological order via Kahn's
 * algorithm: every node whose unresolved-dependency count reaches
 * zero joins the next batch, then its dependents are decremented.
 * Each batch may execute fully concurrently; no order is guaranteed
 * within a batch (returned sorted only for determinism).
 */
func (p *Pipeline) ExecutionOrder() ([][]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.executionOrder()
}

func (p *Pipeline) executionOrder() ([][]string, error) {
	remaining := make(map[string]int, len(p.nodes))
	dependents := make(map[string][]string, len(p.nodes))

	for id, node := range p.nodes {
		remaining[id] = len(node.DependsOn)
		for _, dep := range node.DependsOn {
			if _, exists := p.nodes[dep]; !exists {
				return nil, errors.BadRequestf("node %s depends on unknown node %s", id, dep)
			}
			dependents[dep] = append(dependents[dep], id)
		}
	}

	batches := make([][]string, 0)
	emitted := 0
	for emitted < len(p.nodes) {
		batch := make([]string, 0)
		for id, count := range remaining {
			if count == 0 {
				batch = append(batch, id)
			}
		}
		if len(batch) == 0 {
			stuck := make([]string, 0, len(remaining))
			for id := range remaining {
				stuck = append(stuck, id)
			}
			sort.Strings(stuck)
			return nil, errors.Errorf("dependency cycle among nodes: %s", strings.Join(stuck, ", "))
		}

		sort.Strings(batch)
		for _, id := range batch {
			delete(remaining, id)
			for _, dependent := range dependents[id] {
				remaining[dependent]--
			}
		}
		emitted += len(batch)
		batches = append(batches, batch)
	}
	return batches, nil
}

/**
 * Validate collects every structural problem without failing fast:
 * dangling dependency references and dependency cycles. An empty
 * result means the pipeline is safe to execute.
 */
func (p *Pipeline) Validate() []error {
	p.mu.Lock()
	defer p.mu.Unlock()

	problems := make([]error, 0)

	dangling := false
	for id, node := range p.nodes {
		for _, dep := range node.DependsOn {
			if _, exists := p.nodes[dep]; !exists {
				problems = append(problems, errors.BadRequestf("node %s depends on unknown node %s", id, dep))
				dangling = true
			}
		}
	}
	// cycle detection is meaningless while references dangle
	if !dangling {
		if _, err := p.executionOrder(); err != nil {
			problems = append(problems, err)
		}
	}
	return problems
}
