package spatialindex

import (
	"testing"

	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// a two way street 0 - 1 - 2 along the equator plus an island 3 -> 4
func buildLine() *datastructure.Graph {
	vertices := []datastructure.Vertex{
		datastructure.NewVertex(0, 0, 0, 1),
		datastructure.NewVertex(0, 0.01, 1, 2),
		datastructure.NewVertex(0, 0.02, 2, 3),
		datastructure.NewVertex(0.005, 0.03, 3, 4),
		datastructure.NewVertex(0.005, 0.04, 4, 5),
	}
	points := make([]geo.Coordinate, 0)
	edges := make([]datastructure.Edge, 0)
	add := func(u, v datastructure.Index) {
		start := datastructure.Index(len(points))
		points = append(points,
			geo.NewCoordinate(vertices[u].GetLat(), vertices[u].GetLon()),
			geo.NewCoordinate(vertices[v].GetLat(), vertices[v].GetLon()))
		edges = append(edges, datastructure.NewEdge(u, v, 1000, 100, 0, start, start+2))
	}
	add(0, 1)
	add(1, 0)
	add(1, 2)
	add(2, 1)
	add(3, 4)
	return datastructure.NewGraph(vertices, edges, points, []string{"residential"})
}

func TestSnap(t *testing.T) {
	rt := NewRtree()
	rt.Build(buildLine(), zap.NewNop())

	testCases := []struct {
		name       string
		lat, lon   float64
		radius     float64
		wantOk     bool
		wantVertex datastructure.Index
	}{
		{
			name: "close to the start of the first segment",
			lat:  0.0001, lon: 0.002, radius: 100,
			wantOk: true, wantVertex: 0,
		},
		{
			name: "past the middle of the first segment",
			lat:  -0.0001, lon: 0.008, radius: 100,
			wantOk: true, wantVertex: 1,
		},
		{
			name: "near the end of the street",
			lat:  0.0002, lon: 0.0199, radius: 100,
			wantOk: true, wantVertex: 2,
		},
		{
			name: "too far from any road",
			lat:  0.01, lon: 0.01, radius: 100,
			wantOk: false,
		},
		{
			name: "island is not indexed",
			lat:  0.005, lon: 0.035, radius: 100,
			wantOk: false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := rt.Snap(tt.lat, tt.lon, tt.radius)
			require.Equal(t, tt.wantOk, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantVertex, got.Vertex)
			assert.LessOrEqual(t, got.Distance, tt.radius)
		})
	}
}

func TestSearchWithinRadius(t *testing.T) {
	rt := NewRtree()
	rt.Build(buildLine(), zap.NewNop())

	// both directions of the first segment
	assert.Len(t, rt.SearchWithinRadius(0, 0.005, 50), 2)
	assert.Empty(t, rt.SearchWithinRadius(1, 1, 50))
}
