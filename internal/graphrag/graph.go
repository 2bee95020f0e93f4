package graphrag

import (
	"sort"

	"hybridrag/internal/chunking"
)

// coOccurrenceWindow is how many following entities of the same chunk each entity links to.
const coOccurrenceWindow = 2

// Node is an entity label and the last chunk index it was seen in.
type Node struct {
	Label      string `json:"label"`
	ChunkIndex int    `json:"chunk_index"`
}

// Edge is a directed co-occurrence link between two entities.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Weight int    `json:"weight"`
}

type edgeKey struct {
	from, to string
}

// Graph is a directed entity co-occurrence graph. It is built for a single
// request and is not safe for concurrent mutation.
type Graph struct {
	nodes map[string]int
	edges map[edgeKey]int
	out   map[string][]string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]int),
		edges: make(map[edgeKey]int),
		out:   make(map[string][]string),
	}
}

// BuildGraph extracts entities from every chunk and links each entity to the
// next entities found in the same chunk. An entity seen in several chunks
// points at the last of them. A nil extractor means HeuristicExtractor.
func BuildGraph(chunks []chunking.Chunk, x EntityExtractor) *Graph {
	if x == nil {
		x = HeuristicExtractor{}
	}
	g := NewGraph()
	for _, c := range chunks {
		entities := x.ExtractEntities(c.Text)
		for _, e := range entities {
			g.nodes[e] = c.Index
		}
		for i, from := range entities {
			end := i + 1 + coOccurrenceWindow
			if end > len(entities) {
				end = len(entities)
			}
			for _, to := range entities[i+1 : end] {
				if from == to {
					continue
				}
				g.addEdge(from, to)
			}
		}
	}
	return g
}

func (g *Graph) addEdge(from, to string) {
	k := edgeKey{from: from, to: to}
	if _, ok := g.edges[k]; !ok {
		g.out[from] = append(g.out[from], to)
	}
	g.edges[k]++
}

// HasNode reports whether label is an entity of the graph.
func (g *Graph) HasNode(label string) bool {
	_, ok := g.nodes[label]
	return ok
}

// ChunkIndex returns the chunk index linked to label.
func (g *Graph) ChunkIndex(label string) (int, bool) {
	idx, ok := g.nodes[label]
	return idx, ok
}

// Neighbors returns the entities label links to, in insertion order.
func (g *Graph) Neighbors(label string) []string {
	out := make([]string, len(g.out[label]))
	copy(out, g.out[label])
	return out
}

// NodeCount returns the number of entities.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct directed edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns all nodes sorted by label.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for label, idx := range g.nodes {
		nodes = append(nodes, Node{Label: label, ChunkIndex: idx})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Label < nodes[j].Label })
	return nodes
}

// Edges returns all edges sorted by source then target.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for k, w := range g.edges {
		edges = append(edges, Edge{From: k.from, To: k.to, Weight: w})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}
