// Package strategy provides the pluggable graph exploration strategies
// used by the path finder: BFS (default), DFS, Dijkstra, and A*.
//
// Under the current strictly-tree hierarchy all four collapse to the same
// linear ancestor walk; they stay behind one interface so a future graph
// with multiple supply edges per node can exploit true multi-path search
// without changing callers. Every strategy checks the caller's context
// between expansions, not only at the start.
package strategy

import (
	"context"
	"errors"
	"fmt"

	"supplynet-backend/domain/core/aggregates"
)

// Algorithm names a search strategy
type Algorithm string

const (
	AlgorithmBFS      Algorithm = "BFS"
	AlgorithmDFS      Algorithm = "DFS"
	AlgorithmDijkstra Algorithm = "DIJKSTRA"
	AlgorithmAStar    Algorithm = "ASTAR"
)

// ErrNetworkNil is returned when no network snapshot is supplied
var ErrNetworkNil = errors.New("strategy: network snapshot is nil")

// ErrStartNotFound is returned when the start node is absent from the snapshot
var ErrStartNotFound = errors.New("strategy: start node not found")

// Candidate is a supplier candidate discovered during exploration
type Candidate struct {
	// NodeID is the candidate supplier's id
	NodeID string

	// Depth is the number of hops from the start node
	Depth int

	// Cost is the strategy-specific cumulative cost used for ordering;
	// BFS/DFS report the depth, Dijkstra/A* a weighted edge cost.
	Cost float64
}

// Strategy explores the network upward from a start node and yields
// supplier candidates in the order the strategy would visit them.
type Strategy interface {
	Name() Algorithm
	Explore(ctx context.Context, network *aggregates.Network, startID string, maxDepth int) ([]Candidate, error)
}

// New resolves an algorithm name to its strategy implementation
func New(algorithm Algorithm) (Strategy, error) {
	switch algorithm {
	case AlgorithmBFS, "":
		return &bfsStrategy{}, nil
	case AlgorithmDFS:
		return &dfsStrategy{}, nil
	case AlgorithmDijkstra:
		return &dijkstraStrategy{}, nil
	case AlgorithmAStar:
		return &aStarStrategy{}, nil
	default:
		return nil, fmt.Errorf("strategy: unknown algorithm %q", algorithm)
	}
}

// validate performs the shared precondition checks
func validate(network *aggregates.Network, startID string) error {
	if network == nil {
		return ErrNetworkNil
	}
	if _, ok := network.GetNode(startID); !ok {
		return ErrStartNotFound
	}
	return nil
}

// checkContext reports the context error, if any
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
