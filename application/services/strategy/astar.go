package strategy

import (
	"container/heap"
	"context"

	"supplynet-backend/domain/core/aggregates"
)

// aStarStrategy is Dijkstra with an admissible heuristic: the remaining
// climb from a node's level to the top of the hierarchy. Candidates close
// to a qualified supplier level surface earlier, which matters once the
// graph grows multiple supply edges per node.
type aStarStrategy struct{}

func (s *aStarStrategy) Name() Algorithm { return AlgorithmAStar }

func (s *aStarStrategy) Explore(ctx context.Context, network *aggregates.Network, startID string, maxDepth int) ([]Candidate, error) {
	if err := validate(network, startID); err != nil {
		return nil, err
	}

	start, _ := network.GetNode(startID)

	pq := &costQueue{}
	heap.Init(pq)
	heap.Push(pq, &costItem{id: startID, depth: 0, cost: 0, priority: rankCost(start.Level)})

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
			priority: cost + rankCost(parent.Level),
		})
	}

	return candidates, nil
}
