package tabsolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalPathEdges_AddPathEdgeDedup(t *testing.T) {
	l := NewLocalPathEdges(false)

	assert.True(t, l.AddPathEdge(0, 1, 2))
	assert.False(t, l.AddPathEdge(0, 1, 2), "re-adding the same edge must report no change")
	assert.True(t, l.Contains(0, 1, 2))
}

func TestLocalPathEdges_ForwardInverseConsistency(t *testing.T) {
	l := NewLocalPathEdges(false)
	l.AddPathEdge(0, 1, 2)
	l.AddPathEdge(0, 1, 3)
	l.AddPathEdge(5, 1, 2)

	assert.Equal(t, []int{2, 3}, l.GetReachable(1, 0).Slice())
	assert.Equal(t, []int{0, 5}, l.GetInverse(1, 2).Slice())
	assert.Equal(t, []int{2, 3}, l.GetReachableAny(1).Slice())
}

func TestLocalPathEdges_GetReachedNodeNumbers(t *testing.T) {
	l := NewLocalPathEdges(false)
	l.AddPathEdge(0, 1, 9)
	l.AddPathEdge(0, 7, 9)

	assert.Equal(t, []int{1, 7}, l.GetReachedNodeNumbers().Slice())
}

func TestLocalPathEdges_ReplacePathEdgeCollapses(t *testing.T) {
	l := NewLocalPathEdges(true)

	assert.True(t, l.ReplacePathEdge(0, 1, 2))
	assert.Equal(t, []int{2}, l.GetReachable(1, 0).Slice())
	assert.Equal(t, []int{0}, l.GetInverse(1, 2).Slice())

	assert.True(t, l.ReplacePathEdge(0, 1, 5))
	assert.Equal(t, []int{5}, l.GetReachable(1, 0).Slice(), "replacing must evict the prior fact")
	assert.Equal(t, []int{}, l.GetInverse(1, 2).Slice(), "stale inverse entry must be cleared")
	assert.Equal(t, []int{0}, l.GetInverse(1, 5).Slice())

	assert.False(t, l.ReplacePathEdge(0, 1, 5), "replacing with an identical singleton is a no-op")
}

func TestLocalPathEdges_Size(t *testing.T) {
	l := NewLocalPathEdges(false)
	assert.Equal(t, 0, l.Size())

	l.AddPathEdge(0, 1, 2)
	l.AddPathEdge(0, 1, 3)
	l.AddPathEdge(5, 1, 2)
	assert.Equal(t, 3, l.Size())
}
