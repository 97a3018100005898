package pipeline

import (
	"sync"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"github.com/ghantakiran/axion-stock-sub010/types"
	"github.com/ghantakiran/axion-stock-sub010/utils"
)

/**
 * Pipeline holds the template DAG for one data pipeline: nodes plus
 * their dependency edges. It never executes anything itself; the
 * engine asks it for an execution order and a fresh Run.
 */
type Pipeline struct {
	ID          string
	Name        string
	Description string

	mu    sync.Mutex
	nodes map[string]*types.Node
}

func New(id, name, description string) *Pipeline {
	return &Pipeline{
		ID:          id,
		Name:        name,
		Description: description,
		nodes:       make(map[string]*types.Node),
	}
}

func (p *Pipeline) AddNode(node *types.Node) error {
	if node == nil || node.ID == "" {
		return errors.BadRequestf("node requires an id")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.nodes[node.ID]; exists {
		return errors.AlreadyExistsf("node: %s", node.ID)
	}
	if node.Status == types.None {
		node.Status = types.Pending
	}
	p.nodes[node.ID] = node
	return nil
}

// RemoveNode also strips the removed id from every remaining node's
// dependency list so the graph stays consistent.
func (p *Pipeline) RemoveNode(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.nodes[id]; !exists {
		return errors.NotFoundf("node: %s", id)
	}
	delete(p.nodes, id)

	for _, node := range p.nodes {
		deps := node.DependsOn[:0]
		for _, dep := range node.DependsOn {
			if dep != id {
				deps = append(deps, dep)
			}
		}
		node.DependsOn = deps
	}
	return nil
}

func (p *Pipeline) Node(id string) (*types.Node, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	node, exists := p.nodes[id]
	return node, exists
}

// Nodes returns a copy of the node map; the nodes themselves are the
// live templates.
func (p *Pipeline) Nodes() map[string]*types.Node {
	p.mu.Lock()
	defer p.mu.Unlock()

	return utils.CloneMap(p.nodes)
}

func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.nodes)
}

// Dependents is the direct reverse-adjacency lookup: nodes that list
// the given id as a dependency.
func (p *Pipeline) Dependents(id string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.nodes[id]; !exists {
		return nil, errors.NotFoundf("node: %s", id)
	}

	dependents := make([]string, 0)
	for _, node := range p.nodes {
		for _, dep := range node.DependsOn {
			if dep == id {
				dependents = append(dependents, node.ID)
				break
			}
		}
	}
	return utils.UniqueSlice(dependents), nil
}

/**
 * NewRun snapshots every template node into an independent clone and
 * wraps them in a pending Run. The clone boundary is what lets
 * concurrent runs of the same pipeline proceed without sharing any
 * mutable state.
 */
func (p *Pipeline) NewRun() *types.Run {
	p.mu.Lock()
	defer p.mu.Unlock()

	nodes := make(map[string]*types.Node, len(p.nodes))
	for id, node := range p.nodes {
		nodes[id] = node.Clone()
	}

	return &types.Run{
		ID:         uuid.NewString(),
		PipelineID: p.ID,
		Status:     types.Pending,
		Nodes:      nodes,
		Results:    make(map[string]*types.ExecutionResult, len(nodes)),
	}
}
