package services

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/nside/pbf2graph/internal/domain"
	"github.com/paulmach/orb/planar"
)

// How many queue pops happen between context checks.
const cancelCheckInterval = 1024

// EdgeWeight returns the flat-plane Euclidean distance between the endpoints
// of (from, to) in raw coordinate degrees.
func EdgeWeight(g *domain.Graph, from, to int64) (float64, error) {
	a, ok := g.Coordinates(from)
	if !ok {
		return 0, &domain.DanglingEdgeReferenceError{Edge: domain.Edge{From: from, To: to}, Missing: from}
	}
	b, ok := g.Coordinates(to)
	if !ok {
		return 0, &domain.DanglingEdgeReferenceError{Edge: domain.Edge{From: from, To: to}, Missing: to}
	}

	w := planar.Distance(a.PlanarPoint(), b.PlanarPoint())
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, fmt.Errorf("edge %d -> %d: %w", from, to, domain.ErrNonFiniteWeight)
	}
	return w, nil
}

// ShortestPath computes a minimum-weight path from start to end using
// Dijkstra's algorithm with lazy deletion of stale queue entries.
//
// A nil route with a nil error means end is unreachable from start.
// Coordinates must be finite; NaN or infinite weights abort the query with
// domain.ErrNonFiniteWeight.
func ShortestPath(ctx context.Context, g *domain.Graph, start, end int64) (*domain.Route, error) {
	if g == nil {
		return nil, fmt.Errorf("shortest path: graph must be non-nil")
	}

	dist := map[int64]float64{start: 0}
	prev := make(map[int64]int64)
	visited := make(map[int64]struct{})

	pq := &distanceQueue{}
	heap.Push(pq, queueItem{node: start, dist: 0})

	pops := 0
	for pq.Len() > 0 {
		pops++
		if pops%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("shortest path: from %d to %d: %w", start, end, err)
			}
		}

		item := heap.Pop(pq).(queueItem)
		u := item.node
		if _, ok := visited[u]; ok {
			continue
		}
		visited[u] = struct{}{}

		if u == end {
			return &domain.Route{
				NodeIDs:  reconstructPath(prev, start, end),
				Distance: item.dist,
			}, nil
		}

		err := g.EachOutgoing(u, func(e domain.Edge) error {
			w, err := EdgeWeight(g, e.From, e.To)
			if err != nil {
				return err
			}

			next := item.dist + w
			if best, ok := dist[e.To]; !ok || next < best {
				dist[e.To] = next
				prev[e.To] = u
				heap.Push(pq, queueItem{node: e.To, dist: next})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("shortest path: from %d to %d: %w", start, end, err)
		}
	}

	return nil, nil
}

// Walk the predecessor chain back from end and return it in start->end order.
func reconstructPath(prev map[int64]int64, start, end int64) []int64 {
	path := []int64{end}
	for cur := end; cur != start; {
		cur = prev[cur]
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}

// PathDistance sums edge weights along consecutive nodes of path.
// It does not check that the edges exist in the graph.
func PathDistance(g *domain.Graph, path []int64) (float64, error) {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		w, err := EdgeWeight(g, path[i], path[i+1])
		if err != nil {
			return 0, fmt.Errorf("path distance: %w", err)
		}
		total += w
	}
	return total, nil
}

type queueItem struct {
	node int64
	dist float64
}

// Min-heap on tentative distance. Distances are finite and non-NaN, so the
// < comparison is a total order.
type distanceQueue []queueItem

func (q distanceQueue) Len() int           { return len(q) }
func (q distanceQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q distanceQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *distanceQueue) Push(x any) {
	*q = append(*q, x.(queueItem))
}

func (q *distanceQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
