package tabsolve_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ifds-go/tabsolve"
	"github.com/ifds-go/tabsolve/fixture"
)

func TestResult_GetSummarySourcesUnsupported(t *testing.T) {
	g := fixture.NewGraph()
	p := g.NewProcedure()
	s := g.AddNode(p, tabsolve.KindEntry)

	prob := fixture.NewProblem(g, fixture.NewFunctions())
	prob.AddSeed(tabsolve.NewPathEdge(s, 0, s, 0))

	solver, err := tabsolve.New(prob)
	require.NoError(t, err)
	res, err := solver.Solve(context.Background())
	require.NoError(t, err)

	_, err = res.GetSummarySources(s, s, 0)
	assert.ErrorIs(t, err, tabsolve.ErrUnsupported)
}

func TestResult_GetSeedsAndNodesReached(t *testing.T) {
	g := fixture.NewGraph()
	p := g.NewProcedure()
	s := g.AddNode(p, tabsolve.KindEntry)
	n := g.AddNode(p, tabsolve.KindNormal)
	g.AddEdge(s, n)

	prob := fixture.NewProblem(g, fixture.NewFunctions())
	seed := tabsolve.NewPathEdge(s, 0, s, 0)
	prob.AddSeed(seed)

	solver, err := tabsolve.New(prob)
	require.NoError(t, err)
	res, err := solver.Solve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []tabsolve.PathEdge{seed}, res.GetSeeds())

	reached := res.GetSupergraphNodesReached()
	assert.Contains(t, reached, n)
}
