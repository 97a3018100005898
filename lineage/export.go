package lineage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghantakiran/axion-stock-sub010/utils"
)

/**
 * Export is the one externally consumed representation of the graph:
 * a full node/edge listing for visualization tooling. Nodes are
 * sorted by id and edges by (source, target) so repeated exports of
 * the same graph are byte-identical.
 */
type Export struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

func (g *Graph) Export() *Export {
	g.mu.Lock()
	defer g.mu.Unlock()

	nodes := make([]*Node, 0, len(g.nodes))
	for _, id := range utils.SortedKeys(g.nodes) {
		nodes = append(nodes, g.nodes[id])
	}

	edges := append([]*Edge(nil), g.edges...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SourceID != edges[j].SourceID {
			return edges[i].SourceID < edges[j].SourceID
		}
		return edges[i].TargetID < edges[j].TargetID
	})

	return &Export{Nodes: nodes, Edges: edges}
}

func (g *Graph) ExportJSON() ([]byte, error) {
	return utils.SerializeIndent(g.Export())
}

// ExportDOT renders the graph in Graphviz DOT form, shaping nodes by
// type so sources, transforms and sinks are tellable apart at a
// glance.
func (g *Graph) ExportDOT() string {
	export := g.Export()

	sb := &strings.Builder{}
	sb.WriteString("digraph lineage {\n")
	for _, node := range export.Nodes {
		shape := "box"
		switch node.Type {
		case Source:
			shape = "ellipse"
		case Sink:
			shape = "doubleoctagon"
		}
		fmt.Fprintf(sb, "  %q [label=%q shape=%s];\n", node.ID, node.Name, shape)
	}
	for _, edge := range export.Edges {
		if edge.Relationship != "" {
			fmt.Fprintf(sb, "  %q -> %q [label=%q];\n", edge.SourceID, edge.TargetID, edge.Relationship)
			continue
		}
		fmt.Fprintf(sb, "  %q -> %q;\n", edge.SourceID, edge.TargetID)
	}
	sb.WriteString("}\n")
	return sb.String()
}
