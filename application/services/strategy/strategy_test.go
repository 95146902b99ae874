package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplynet-backend/domain/core/aggregates"
	"supplynet-backend/domain/core/entities"
)

// chainNetwork builds dist-d -> dist-c -> dist-b -> dist-a (root)
func chainNetwork(t *testing.T) *aggregates.Network {
	t.Helper()
	network, err := aggregates.NewNetwork([]*entities.Distributor{
		{ID: "dist-a", Level: entities.LevelDirector, Status: entities.StatusActive},
		{ID: "dist-b", Level: entities.LevelStar3, Status: entities.StatusActive, ParentID: "dist-a"},
		{ID: "dist-c", Level: entities.LevelStar1, Status: entities.StatusActive, ParentID: "dist-b"},
		{ID: "dist-d", Level: entities.LevelNormal, Status: entities.StatusActive, ParentID: "dist-c"},
	}, 1)
	require.NoError(t, err)
	return network
}

func TestNewResolvesAlgorithms(t *testing.T) {
	cases := []struct {
		input Algorithm
		want  Algorithm
	}{
		{AlgorithmBFS, AlgorithmBFS},
		{AlgorithmDFS, AlgorithmDFS},
		{AlgorithmDijkstra, AlgorithmDijkstra},
		{AlgorithmAStar, AlgorithmAStar},
		{"", AlgorithmBFS}, // default
	}
	for _, tc := range cases {
		s, err := New(tc.input)
		require.NoError(t, err)
		assert.Equal(t, tc.want, s.Name())
	}
}

func TestNewRejectsUnknownAlgorithm(t *testing.T) {
	_, err := New("QUANTUM")
	assert.Error(t, err)
}

func TestExploreFindsAncestorsNearestFirst(t *testing.T) {
	network := chainNetwork(t)

	for _, algorithm := range []Algorithm{AlgorithmBFS, AlgorithmDFS, AlgorithmDijkstra, AlgorithmAStar} {
		t.Run(string(algorithm), func(t *testing.T) {
			s, err := New(algorithm)
			require.NoError(t, err)

			candidates, err := s.Explore(context.Background(), network, "dist-d", 10)
			require.NoError(t, err)
			require.Len(t, candidates, 3)

			assert.Equal(t, "dist-c", candidates[0].NodeID)
			assert.Equal(t, 1, candidates[0].Depth)
			assert.Equal(t, "dist-b", candidates[1].NodeID)
			assert.Equal(t, 2, candidates[1].Depth)
			assert.Equal(t, "dist-a", candidates[2].NodeID)
			assert.Equal(t, 3, candidates[2].Depth)
		})
	}
}

func TestExploreHonorsMaxDepth(t *testing.T) {
	network := chainNetwork(t)

	for _, algorithm := range []Algorithm{AlgorithmBFS, AlgorithmDFS, AlgorithmDijkstra, AlgorithmAStar} {
		t.Run(string(algorithm), func(t *testing.T) {
			s, err := New(algorithm)
			require.NoError(t, err)

			candidates, err := s.Explore(context.Background(), network, "dist-d", 2)
			require.NoError(t, err)
			require.Len(t, candidates, 2)
			assert.Equal(t, "dist-c", candidates[0].NodeID)
			assert.Equal(t, "dist-b", candidates[1].NodeID)
		})
	}
}

func TestExploreRootHasNoCandidates(t *testing.T) {
	network := chainNetwork(t)

	s, err := New(AlgorithmBFS)
	require.NoError(t, err)

	candidates, err := s.Explore(context.Background(), network, "dist-a", 10)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestExploreUnknownStartNode(t *testing.T) {
	network := chainNetwork(t)

	for _, algorithm := range []Algorithm{AlgorithmBFS, AlgorithmDFS, AlgorithmDijkstra, AlgorithmAStar} {
		s, err := New(algorithm)
		require.NoError(t, err)

		_, err = s.Explore(context.Background(), network, "ghost", 10)
		assert.ErrorIs(t, err, ErrStartNotFound)
	}
}

func TestExploreNilNetwork(t *testing.T) {
	s, err := New(AlgorithmBFS)
	require.NoError(t, err)

	_, err = s.Explore(context.Background(), nil, "dist-d", 10)
	assert.ErrorIs(t, err, ErrNetworkNil)
}

func TestExploreCancelledContext(t *testing.T) {
	network := chainNetwork(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, algorithm := range []Algorithm{AlgorithmBFS, AlgorithmDFS, AlgorithmDijkstra, AlgorithmAStar} {
		t.Run(string(algorithm), func(t *testing.T) {
			s, err := New(algorithm)
			require.NoError(t, err)

			_, err = s.Explore(ctx, network, "dist-d", 10)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestDijkstraCostReflectsEdgeWeight(t *testing.T) {
	network := chainNetwork(t)

	s, err := New(AlgorithmDijkstra)
	require.NoError(t, err)

	candidates, err := s.Explore(context.Background(), network, "dist-d", 10)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	// No response-time metadata on the fixture edges, so every hop costs
	// the base amount and cumulative cost equals depth.
	assert.InDelta(t, 1.0, candidates[0].Cost, 1e-9)
	assert.InDelta(t, 2.0, candidates[1].Cost, 1e-9)
	assert.InDelta(t, 3.0, candidates[2].Cost, 1e-9)
}
