package pipeline

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionOrderDiamond(t *testing.T) {
	p := New("diamond", "", "")
	require.Nil(t, p.AddNode(newNode("a")))
	require.Nil(t, p.AddNode(newNode("b", "a")))
	require.Nil(t, p.AddNode(newNode("c", "a")))
	require.Nil(t, p.AddNode(newNode("d", "b", "c")))

	batches, err := p.ExecutionOrder()
	require.Nil(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b", "c"}, {"d"}}, batches)
}

// For any acyclic pipeline the concatenated batches are a permutation
// of all node ids, and every dependency lands in a strictly earlier
// batch than its dependent.
func TestExecutionOrderProperties(t *testing.T) {
	p := New("wide", "", "")
	require.Nil(t, p.AddNode(newNode("r1")))
	require.Nil(t, p.AddNode(newNode("r2")))
	require.Nil(t, p.AddNode(newNode("m1", "r1")))
	require.Nil(t, p.AddNode(newNode("m2", "r1", "r2")))
	require.Nil(t, p.AddNode(newNode("m3", "r2")))
	require.Nil(t, p.AddNode(newNode("s1", "m1", "m2")))
	require.Nil(t, p.AddNode(newNode("s2", "m2", "m3")))

	batches, err := p.ExecutionOrder()
	require.Nil(t, err)

	batchOf := make(map[string]int)
	all := make([]string, 0)
	for i, batch := range batches {
		for _, id := range batch {
			_, seen := batchOf[id]
			assert.False(t, seen, "node %s emitted twice", id)
			batchOf[id] = i
			all = append(all, id)
		}
	}
	sort.Strings(all)
	assert.Equal(t, []string{"m1", "m2", "m3", "r1", "r2", "s1", "s2"}, all)

	for id, node := range p.Nodes() {
		for _, dep := range node.DependsOn {
			assert.Less(t, batchOf[dep], batchOf[id],
				"dependency %s of %s must land in an earlier batch", dep, id)
		}
	}
}

func TestExecutionOrderCycle(t *testing.T) {
	p := New("cyclic", "", "")
	require.Nil(t, p.AddNode(newNode("a", "b")))
	require.Nil(t, p.AddNode(newNode("b", "a")))

	_, err := p.ExecutionOrder()
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "cycle")

	problems := p.Validate()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Error(), "cycle")
}

func TestExecutionOrderDanglingDependency(t *testing.T) {
	p := New("dangling", "", "")
	require.Nil(t, p.AddNode(newNode("a", "ghost")))

	_, err := p.ExecutionOrder()
	assert.NotNil(t, err)

	problems := p.Validate()
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0].Error(), "ghost")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	p := New("broken", "", "")
	require.Nil(t, p.AddNode(newNode("a", "ghost1")))
	require.Nil(t, p.AddNode(newNode("b", "ghost2")))

	problems := p.Validate()
	assert.Len(t, problems, 2)

	ok := New("ok", "", "")
	require.Nil(t, ok.AddNode(newNode("a")))
	assert.Empty(t, ok.Validate())
}

func TestExecutionOrderEmptyPipeline(t *testing.T) {
	p := New("empty", "", "")
	batches, err := p.ExecutionOrder()
	assert.Nil(t, err)
	assert.Empty(t, batches)
}
