package domain

import "slices"

// Directed traversable segment between two OSM node ids.
type Edge struct {
	From int64
	To   int64
}

// Graph is the road network aggregate: a coordinate store keyed by node id
// and an append-only directed edge list.
//
// A Graph is built once and then treated as read-only while queries run.
// It is not safe for concurrent mutation and query.
type Graph struct {
	nodes    map[int64]Coordinates
	edges    []Edge
	outgoing map[int64][]int
}

func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[int64]Coordinates),
		edges:    make([]Edge, 0),
		outgoing: make(map[int64][]int),
	}
}

// Insert or overwrite the coordinates of a node. Last write wins.
func (g *Graph) AddNode(id int64, lat, lon float64) {
	g.nodes[id] = Coordinates{Lat: lat, Lon: lon}
}

// Append a directed edge. Endpoints are not required to exist yet.
func (g *Graph) AddEdge(from, to int64) {
	g.outgoing[from] = append(g.outgoing[from], len(g.edges))
	g.edges = append(g.edges, Edge{From: from, To: to})
}

func (g *Graph) Coordinates(id int64) (Coordinates, bool) {
	c, ok := g.nodes[id]
	return c, ok
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) EdgeCount() int { return len(g.edges) }

// Return the ids of all stored nodes in ascending order.
func (g *Graph) NodeIDs() []int64 {
	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Return a copy of the edge list in insertion order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Return the edges leaving a node, in insertion order.
func (g *Graph) Outgoing(id int64) []Edge {
	idx := g.outgoing[id]
	out := make([]Edge, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.edges[i])
	}
	return out
}

// Call fn for every edge leaving a node without allocating.
func (g *Graph) EachOutgoing(id int64, fn func(Edge) error) error {
	for _, i := range g.outgoing[id] {
		if err := fn(g.edges[i]); err != nil {
			return err
		}
	}
	return nil
}
