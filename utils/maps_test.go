package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueSlice(t *testing.T) {
	assert.Equal(t, []int{1}, UniqueSlice([]int{1}))
	assert.Equal(t, []int{1}, UniqueSlice([]int{1, 1, 1}))
	assert.Equal(t, []int{1, 2}, UniqueSlice([]int{1, 1, 2}))
	assert.Equal(t, []int{1, 2, 3}, UniqueSlice([]int{1, 2, 2, 3, 3, 3}))
}

func TestCloneMap(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2}
	clone := CloneMap(m)
	clone["a"] = 99
	clone["c"] = 3

	assert.Equal(t, 1, m["a"])
	assert.Len(t, m, 2)
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"tx": 1, "sink": 2, "src": 3}
	assert.Equal(t, []string{"sink", "src", "tx"}, SortedKeys(m))
	assert.Empty(t, SortedKeys(map[string]int{}))
}
