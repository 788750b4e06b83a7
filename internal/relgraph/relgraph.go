// Package relgraph represents the Problem- and Tag-relationship weighted
// undirected graphs described in spec §9: "Represent each as an
// adjacency map keyed by stable integer IDs; the mastery engine only
// queries one-hop neighborhoods, so the graph is materialized as indexed
// edges rather than pointer-linked nodes." Backed by gonum/graph/simple,
// reviving the teacher's declared-but-unused gonum dependency
// (scheduler-service/go.mod) for the relationship graphs the teacher
// itself never got around to wiring.
package relgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"adaptive-engine/internal/models"
)

// ProblemGraph is a weighted undirected graph over catalog problems,
// keyed by leetcode_id, with edge weight derived from tag overlap.
type ProblemGraph struct {
	g *simple.WeightedUndirectedGraph
}

// BuildProblemGraph derives a relationship graph from the shared-tag
// overlap between problems: two problems are connected with weight equal
// to the Jaccard similarity of their tag sets, whenever that similarity
// is > 0. This is the concrete edge source for spec §4.F Priority 1's
// "problem-relationship graph".
func BuildProblemGraph(problems []models.Problem) *ProblemGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for _, p := range problems {
		g.AddNode(simple.Node(p.LeetcodeID))
	}

	for i := 0; i < len(problems); i++ {
		for j := i + 1; j < len(problems); j++ {
			weight := jaccard(problems[i].Tags, problems[j].Tags)
			if weight <= 0 {
				continue
			}
			u := simple.Node(problems[i].LeetcodeID)
			v := simple.Node(problems[j].LeetcodeID)
			g.SetWeightedEdge(g.NewWeightedEdge(u, v, weight))
		}
	}
	return &ProblemGraph{g: g}
}

// Neighbors returns the one-hop neighbor leetcode_ids and edge weights
// for problemID, sorted by weight descending then id ascending.
func (pg *ProblemGraph) Neighbors(problemID int) []WeightedNeighbor {
	return neighbors(pg.g, int64(problemID))
}

// WeightedNeighbor is one edge of a one-hop neighborhood query.
type WeightedNeighbor struct {
	ID     int
	Weight float64
}

func neighbors(g *simple.WeightedUndirectedGraph, id int64) []WeightedNeighbor {
	if g.Node(id) == nil {
		return nil
	}
	it := g.From(id)
	out := make([]WeightedNeighbor, 0)
	for it.Next() {
		n := it.Node()
		edge := g.WeightedEdge(id, n.ID())
		weight := 0.0
		if edge != nil {
			weight = edge.Weight()
		}
		out = append(out, WeightedNeighbor{ID: int(n.ID()), Weight: weight})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AggregateWeight sums the weights of the edges between "to" and each id
// in "from" that is directly connected to it, the aggregate-relationship-strength query
// Priority 1 needs when a bridge problem relates to more than one recent
// failure.
func (pg *ProblemGraph) AggregateWeight(to int, from []int) float64 {
	total := 0.0
	for _, f := range from {
		edge := pg.g.WeightedEdge(int64(f), int64(to))
		if edge != nil {
			total += edge.Weight()
		}
	}
	return total
}

func jaccard(a, b []string) float64 {
	setA := map[string]bool{}
	for _, t := range a {
		setA[t] = true
	}
	setB := map[string]bool{}
	for _, t := range b {
		setB[t] = true
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	if intersection == 0 {
		return 0
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// TagGraph is a weighted undirected graph over the TagRelationship
// catalog, used by the session assembler for tag connection strength and
// for finding related tags when the guard rail replaces Hard problems.
type TagGraph struct {
	g      *simple.WeightedUndirectedGraph
	idByTag map[string]int64
	tagByID map[int64]string
}

// BuildTagGraph derives a graph from TagRelationship.Related edges.
func BuildTagGraph(relationships []models.TagRelationship) *TagGraph {
	idByTag := map[string]int64{}
	tagByID := map[int64]string{}
	for i, r := range relationships {
		id := int64(i + 1)
		idByTag[r.Tag] = id
		tagByID[id] = r.Tag
	}

	g := simple.NewWeightedUndirectedGraph(0, 0)
	for _, id := range idByTag {
		g.AddNode(simple.Node(id))
	}
	for _, r := range relationships {
		uID := idByTag[r.Tag]
		for related, weight := range r.Related {
			vID, ok := idByTag[related]
			if !ok || weight <= 0 {
				continue
			}
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(uID), simple.Node(vID), weight))
		}
	}
	return &TagGraph{g: g, idByTag: idByTag, tagByID: tagByID}
}

// Neighbors returns the one-hop neighbor tags and weights for tag.
func (tg *TagGraph) Neighbors(tag string) []WeightedTagNeighbor {
	id, ok := tg.idByTag[tag]
	if !ok {
		return nil
	}
	raw := neighbors(tg.g, id)
	out := make([]WeightedTagNeighbor, 0, len(raw))
	for _, n := range raw {
		out = append(out, WeightedTagNeighbor{Tag: tg.tagByID[int64(n.ID)], Weight: n.Weight})
	}
	return out
}

// WeightedTagNeighbor is one edge of a tag's one-hop neighborhood.
type WeightedTagNeighbor struct {
	Tag    string
	Weight float64
}

var _ graph.Graph = (*simple.WeightedUndirectedGraph)(nil)
