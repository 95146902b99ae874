package strategy

import (
	"container/heap"
	"context"

	"supplynet-backend/domain/core/aggregates"
	"supplynet-backend/domain/core/entities"
)

// edgeBaseCost is the minimum cost charged per hop so that zero-metadata
// edges still order by depth.
const edgeBaseCost = 1.0

// dijkstraStrategy explores ancestors in order of cumulative edge cost.
// Edge cost is derived from the supply edge's observed response time, so
// on a future multi-edge graph the cheapest supply route wins ties that
// plain depth ordering cannot break.
type dijkstraStrategy struct{}

func (s *dijkstraStrategy) Name() Algorithm { return AlgorithmDijkstra }

func (s *dijkstraStrategy) Explore(ctx context.Context, network *aggregates.Network, startID string, maxDepth int) ([]Candidate, error) {
	if err := validate(network, startID); err != nil {
		return nil, err
	}

	pq := &costQueue{}
	heap.Init(pq)
	heap.Push(pq, &costItem{id: startID, depth: 0, cost: 0, priority: 0})

	settled := map[string]bool{}
	var candidates []Candidate

	for pq.Len() > 0 {
		if err := checkContext(ctx); err != nil {
			return candidates, err
		}

		item := heap.Pop(pq).(*costItem)
		if settled[item.id] {
			continue
		}
		settled[item.id] = true

		if item.id != startID {
			candidates = append(candidates, Candidate{NodeID: item.id, Depth: item.depth, Cost: item.cost})
		}
		if item.depth >= maxDepth {
			continue
		}

		parent, ok := network.GetParent(item.id)
		if !ok || settled[parent.ID] {
			continue
		}
		cost := item.cost + edgeCost(network, parent.ID, item.id)
		heap.Push(pq, &costItem{
			id:       parent.ID,
			depth:    item.depth + 1,
			cost:     cost,
			priority: cost,
		})
	}

	return candidates, nil
}

// edgeCost derives a hop cost from the supply edge's metadata
func edgeCost(network *aggregates.Network, supplierID, buyerID string) float64 {
	if edge, ok := network.GetEdge(supplierID, buyerID); ok {
		return edgeBaseCost + edge.Metadata.AverageResponseTime.Seconds()
	}
	return edgeBaseCost
}

// rankCost estimates the remaining climb from a node's level to the top of
// the hierarchy; used by A* as its admissible heuristic.
func rankCost(level entities.Level) float64 {
	return float64(entities.LevelDirector.Rank() - level.Rank())
}

// costItem is a priority queue entry
type costItem struct {
	id       string
	depth    int
	cost     float64
	priority float64 // cost plus heuristic; equals cost for Dijkstra
	index    int
}

// costQueue is a min-heap of costItems ordered by priority then cost
type costQueue []*costItem

func (q costQueue) Len() int { return len(q) }

func (q costQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].id < q[j].id
}

func (q costQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *costQueue) Push(x any) {
	item := x.(*costItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *costQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
