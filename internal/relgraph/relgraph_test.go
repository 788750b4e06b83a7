package relgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"adaptive-engine/internal/models"
)

func TestBuildProblemGraph_ConnectsSharedTagProblems(t *testing.T) {
	problems := []models.Problem{
		{LeetcodeID: 1, Tags: []string{"array", "hash-table"}},
		{LeetcodeID: 2, Tags: []string{"array"}},
		{LeetcodeID: 3, Tags: []string{"dynamic-programming"}},
	}
	g := BuildProblemGraph(problems)

	neighbors := g.Neighbors(1)
	assert.Len(t, neighbors, 1)
	assert.Equal(t, 2, neighbors[0].ID)
	assert.Greater(t, neighbors[0].Weight, 0.0)

	assert.Empty(t, g.Neighbors(3))
}

func TestAggregateWeight_SumsMultipleEdges(t *testing.T) {
	problems := []models.Problem{
		{LeetcodeID: 1, Tags: []string{"array"}},
		{LeetcodeID: 2, Tags: []string{"array"}},
		{LeetcodeID: 42, Tags: []string{"array"}},
	}
	g := BuildProblemGraph(problems)
	weight := g.AggregateWeight(42, []int{1, 2})
	assert.Greater(t, weight, 0.0)
}

func TestBuildTagGraph_Neighbors(t *testing.T) {
	rels := []models.TagRelationship{
		{Tag: "array", Related: map[string]float64{"hash-table": 0.8}},
		{Tag: "hash-table", Related: map[string]float64{"array": 0.8}},
	}
	g := BuildTagGraph(rels)
	neighbors := g.Neighbors("array")
	assert.Len(t, neighbors, 1)
	assert.Equal(t, "hash-table", neighbors[0].Tag)
	assert.Equal(t, 0.8, neighbors[0].Weight)
}

func TestBuildTagGraph_UnknownTagReturnsEmpty(t *testing.T) {
	g := BuildTagGraph(nil)
	assert.Empty(t, g.Neighbors("array"))
}
