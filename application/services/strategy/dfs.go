package strategy

import (
	"context"

	"supplynet-backend/domain/core/aggregates"
)

// dfsStrategy explores ancestors depth-first. On the forest the visit
// order matches BFS; the recursion-stack structure is what a multi-edge
// graph would exploit.
type dfsStrategy struct{}

func (s *dfsStrategy) Name() Algorithm { return AlgorithmDFS }

func (s *dfsStrategy) Explore(ctx context.Context, network *aggregates.Network, startID string, maxDepth int) ([]Candidate, error) {
	if err := validate(network, startID); err != nil {
		return nil, err
	}

	visited := map[string]bool{startID: true}
	var candidates []Candidate

	var walk func(id string, depth int) error
	walk = func(id string, depth int) error {
		if err := checkContext(ctx); err != nil {
			return err
		}
		if depth >= maxDepth {
			return nil
		}
		parent, ok := network.GetParent(id)
		if !ok || visited[parent.ID] {
			return nil
		}
		visited[parent.ID] = true
		candidates = append(candidates, Candidate{NodeID: parent.ID, Depth: depth + 1, Cost: float64(depth + 1)})
		return walk(parent.ID, depth+1)
	}

	if err := walk(startID, 0); err != nil {
		return candidates, err
	}
	return candidates, nil
}
