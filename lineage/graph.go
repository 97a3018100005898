package lineage

import (
	"sort"
	"sync"

	"github.com/juju/errors"

	"github.com/ghantakiran/axion-stock-sub010/types"
	"github.com/ghantakiran/axion-stock-sub010/utils"
)

type NodeType string

const (
	Source    NodeType = "source"
	Transform NodeType = "transform"
	Sink      NodeType = "sink"
)

type Node struct {
	ID       string     `json:"id"`
	Type     NodeType   `json:"type"`
	Name     string     `json:"name"`
	Metadata types.Data `json:"metadata,omitempty"`
}

type Edge struct {
	SourceID     string     `json:"source_id"`
	TargetID     string     `json:"target_id"`
	Relationship string     `json:"relationship,omitempty"`
	Metadata     types.Data `json:"metadata,omitempty"`
}

/**
 * Graph tracks data-flow relationships among named sources,
 * transforms and sinks. It is populated independently of pipeline
 * execution and queried for impact analysis: which downstream
 * consumers a broken source touches, which upstream inputs feed a
 * given sink.
 */
type Graph struct {
	mu sync.Mutex

	nodes      map[string]*Node
	edges      []*Edge
	upstream   map[string][]string
	downstream map[string][]string
}

func NewGraph() *Graph {
	return &Graph{
		nodes:      make(map[string]*Node),
		edges:      make([]*Edge, 0),
		upstream:   make(map[string][]string),
		downstream: make(map[string][]string),
	}
}

func (g *Graph) AddNode(node *Node) error {
	if node == nil || node.ID == "" {
		return errors.BadRequestf("lineage node requires an id")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[node.ID]; exists {
		return errors.AlreadyExistsf("lineage node: %s", node.ID)
	}
	g.nodes[node.ID] = node
	return nil
}

// AddEdge links two existing nodes; both endpoints must already be
// registered.
func (g *Graph) AddEdge(edge *Edge) error {
	if edge == nil {
		return errors.BadRequestf("lineage edge is nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[edge.SourceID]; !exists {
		return errors.NotFoundf("lineage node: %s", edge.SourceID)
	}
	if _, exists := g.nodes[edge.TargetID]; !exists {
		return errors.NotFoundf("lineage node: %s", edge.TargetID)
	}

	g.edges = append(g.edges, edge)
	g.downstream[edge.SourceID] = append(g.downstream[edge.SourceID], edge.TargetID)
	g.upstream[edge.TargetID] = append(g.upstream[edge.TargetID], edge.SourceID)
	return nil
}

func (g *Graph) Node(id string) (*Node, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, exists := g.nodes[id]
	return node, exists
}

// Upstream returns direct producers only; Lineage walks transitively.
func (g *Graph) Upstream(id string) ([]string, error) {
	return g.neighbors(id, true)
}

// Downstream returns direct consumers only; Impact walks transitively.
func (g *Graph) Downstream(id string) ([]string, error) {
	return g.neighbors(id, false)
}

func (g *Graph) neighbors(id string, up bool) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; !exists {
		return nil, errors.NotFoundf("lineage node: %s", id)
	}
	adjacency := g.downstream
	if up {
		adjacency = g.upstream
	}
	return utils.UniqueSlice(append([]string(nil), adjacency[id]...)), nil
}

/**
 * Lineage returns every transitive ancestor of a node — the full set
 * of inputs its data is derived from — deduplicated and sorted.
 */
func (g *Graph) Lineage(id string) ([]string, error) {
	return g.walk(id, true)
}

/**
 * Impact returns every transitive descendant of a node — everything
 * that would be affected if it broke — deduplicated and sorted.
 */
func (g *Graph) Impact(id string) ([]string, error) {
	return g.walk(id, false)
}

// breadth-first over the chosen adjacency; the start node itself is
// not part of its own lineage or impact
func (g *Graph) walk(id string, up bool) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; !exists {
		return nil, errors.NotFoundf("lineage node: %s", id)
	}

	adjacency := g.downstream
	if up {
		adjacency = g.upstream
	}

	visited := map[string]bool{id: true}
	queue := append([]string(nil), adjacency[id]...)
	reached := make([]string, 0)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		reached = append(reached, current)
		queue = append(queue, adjacency[current]...)
	}

	sort.Strings(reached)
	return reached, nil
}

// Roots are nodes with no incoming edges; independent inputs are
// expected to produce several.
func (g *Graph) Roots() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	roots := make([]string, 0)
	for id := range g.nodes {
		if len(g.upstream[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves are nodes with no outgoing edges.
func (g *Graph) Leaves() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	leaves := make([]string, 0)
	for id := range g.nodes {
		if len(g.downstream[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}
