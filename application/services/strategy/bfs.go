package strategy

import (
	"context"

	"supplynet-backend/domain/core/aggregates"
)

// bfsStrategy explores ancestors in breadth-first order: nearest first.
// On the current forest this is the canonical linear parent walk.
type bfsStrategy struct{}

func (s *bfsStrategy) Name() Algorithm { return AlgorithmBFS }

func (s *bfsStrategy) Explore(ctx context.Context, network *aggregates.Network, startID string, maxDepth int) ([]Candidate, error) {
	if err := validate(network, startID); err != nil {
		return nil, err
	}

	type queueItem struct {
		id    string
		depth int
	}

	queue := []queueItem{{id: startID, depth: 0}}
	visited := map[string]bool{startID: true}
	var candidates []Candidate

	for len(queue) > 0 {
		if err := checkContext(ctx); err != nil {
			return candidates, err
		}

		item := queue[0]
		queue = queue[1:]

		if item.depth >= maxDepth {
			continue
		}

		parent, ok := network.GetParent(item.id)
		if !ok || visited[parent.ID] {
			continue
		}
		visited[parent.ID] = true

		depth := item.depth + 1
		candidates = append(candidates, Candidate{NodeID: parent.ID, Depth: depth, Cost: float64(depth)})
		queue = append(queue, queueItem{id: parent.ID, depth: depth})
	}

	return candidates, nil
}
