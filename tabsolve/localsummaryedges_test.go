package tabsolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalSummaryEdges_InsertAndLookup(t *testing.T) {
	se := NewLocalSummaryEdges()

	assert.True(t, se.InsertSummaryEdge(0, 1, 2, 3))
	assert.False(t, se.InsertSummaryEdge(0, 1, 2, 3), "re-inserting the same summary reports no change")
	assert.True(t, se.Contains(0, 1, 2, 3))
	assert.False(t, se.Contains(0, 1, 2, 9))

	assert.Equal(t, []int{3}, se.GetSummaryEdges(0, 1, 2).Slice())
	assert.True(t, se.GetSummaryEdges(0, 1, 99).IsEmpty(), "unrecorded d1 yields the canonical empty set")
}

func TestLocalSummaryEdges_MultipleTargetsPerEntry(t *testing.T) {
	se := NewLocalSummaryEdges()
	se.InsertSummaryEdge(0, 1, 2, 3)
	se.InsertSummaryEdge(0, 1, 2, 7)

	assert.Equal(t, []int{3, 7}, se.GetSummaryEdges(0, 1, 2).Slice())
}

func TestLocalSummaryEdges_Size(t *testing.T) {
	se := NewLocalSummaryEdges()
	assert.Equal(t, 0, se.Size())

	se.InsertSummaryEdge(0, 1, 2, 3)
	se.InsertSummaryEdge(0, 1, 2, 7)
	assert.Equal(t, 2, se.Size())
}
