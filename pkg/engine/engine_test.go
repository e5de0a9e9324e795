package engine

import (
	"context"
	"errors"
	"sort"
	"testing"

	da "github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/geo"
	"github.com/lintang-b-s/streetscan/pkg/preprocessor"
	"github.com/lintang-b-s/streetscan/pkg/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const gridSize = 3

func gridCoord(r, c int) (float64, float64) {
	return 51 + 0.001*float64(r), 3.7 + 0.0015*float64(c)
}

// buildGrid returns a 3x3 grid of two way streets contracted for car.shortest.
func buildGrid(t *testing.T) *da.RouterDb {
	t.Helper()

	vertices := make([]da.Vertex, 0, gridSize*gridSize)
	for r := 0; r < gridSize; r++ {
		for c := 0; c < gridSize; c++ {
			lat, lon := gridCoord(r, c)
			id := da.Index(r*gridSize + c)
			vertices = append(vertices, da.NewVertex(lat, lon, id, int64(id)+1))
		}
	}

	edges := make([]da.Edge, 0)
	points := make([]geo.Coordinate, 0)
	addEdge := func(u, v da.Index, class uint8) {
		a := geo.NewCoordinate(vertices[u].GetLat(), vertices[u].GetLon())
		b := geo.NewCoordinate(vertices[v].GetLat(), vertices[v].GetLon())
		dist := geo.DistanceMeters(a, b)
		start := da.Index(len(points))
		points = append(points, a, b)
		edges = append(edges, da.NewEdge(u, v, dist, dist/(30/3.6), class, start, start+2))
	}
	for r := 0; r < gridSize; r++ {
		for c := 0; c < gridSize; c++ {
			u := da.Index(r*gridSize + c)
			if c+1 < gridSize {
				addEdge(u, u+1, 0)
				addEdge(u+1, u, 0)
			}
			if r+1 < gridSize {
				addEdge(u, u+gridSize, 1)
				addEdge(u+gridSize, u, 1)
			}
		}
	}

	car, err := profile.Load("")
	require.NoError(t, err)
	g := da.NewGraph(vertices, edges, points, []string{"residential", "tertiary"})
	db := da.NewRouterDb(car.Name, car.ProfileNames(), g)
	require.NoError(t, preprocessor.NewContractionHierarchies(car, zap.NewNop()).Contract(db, "car.shortest"))
	return db
}

func location(r, c int) da.Coordinate {
	lat, lon := gridCoord(r, c)
	// a few meters off the junction
	return da.NewCoordinate(float32(lat+0.00002), float32(lon+0.00002))
}

func TestOptimizeRoundTrip(t *testing.T) {
	e := NewEngine(buildGrid(t), zap.NewNop())

	locations := []da.Coordinate{location(0, 0), location(2, 2), location(0, 2), location(2, 0)}
	route, err := e.Optimize(context.Background(), NewRoundTripRequest(locations, "car.shortest", 60, 0))
	require.NoError(t, err)

	require.Len(t, route.Stops, len(locations)+1)
	assert.Equal(t, "car.shortest", route.Profile)

	first, last := route.Stops[0], route.Stops[len(route.Stops)-1]
	assert.Equal(t, "0", first.Attributes[ATTRIBUTE_INDEX])
	assert.Equal(t, "0", last.Attributes[ATTRIBUTE_INDEX])
	assert.Equal(t, first.Coordinate, last.Coordinate)

	indices := make([]string, 0)
	for i, stop := range route.Stops {
		assert.Equal(t, []string{ATTRIBUTE_INDEX, ATTRIBUTE_ORDER}, sortedKeys(stop.Attributes))
		assert.Equal(t, route.Shape[stop.Shape], stop.Coordinate)
		if i > 0 {
			assert.GreaterOrEqual(t, stop.Distance, route.Stops[i-1].Distance)
			assert.Greater(t, stop.Shape, route.Stops[i-1].Shape)
		}
		if i < len(route.Stops)-1 {
			indices = append(indices, stop.Attributes[ATTRIBUTE_INDEX])
		}
	}
	sort.Strings(indices)
	assert.Equal(t, []string{"0", "1", "2", "3"}, indices)

	// the four corners of the grid form its perimeter
	lat0, lon0 := gridCoord(0, 0)
	lat2, lon2 := gridCoord(2, 2)
	perimeter := 2*geo.DistanceMeters(geo.NewCoordinate(lat0, lon0), geo.NewCoordinate(lat0, lon2)) +
		2*geo.DistanceMeters(geo.NewCoordinate(lat0, lon0), geo.NewCoordinate(lat2, lon0))
	assert.InDelta(t, perimeter, route.TotalDistance, 1)
	assert.InDelta(t, route.TotalDistance, last.Distance, 1e-6)
	assert.Greater(t, route.TotalTime, 0.0)

	require.NotEmpty(t, route.ShapeMeta)
	assert.Equal(t, 0, route.ShapeMeta[0].Shape)
	for _, meta := range route.ShapeMeta {
		assert.Contains(t, []string{"residential", "tertiary"}, meta.RoadClass)
	}
}

func TestOptimizeSingleLocation(t *testing.T) {
	e := NewEngine(buildGrid(t), zap.NewNop())

	route, err := e.Optimize(context.Background(),
		NewRoundTripRequest([]da.Coordinate{location(1, 1)}, "car.shortest", 60, 0))
	require.NoError(t, err)
	require.Len(t, route.Stops, 2)
	assert.Equal(t, "0", route.Stops[0].Attributes[ATTRIBUTE_ORDER])
	assert.Equal(t, "1", route.Stops[1].Attributes[ATTRIBUTE_ORDER])
	assert.Equal(t, 0.0, route.TotalDistance)
	assert.Len(t, route.Shape, 1)
}

func TestOptimizeFailures(t *testing.T) {
	e := NewEngine(buildGrid(t), zap.NewNop())

	testCases := []struct {
		name string
		req  Request
	}{
		{
			name: "no locations",
			req:  NewRoundTripRequest(nil, "car.shortest", 60, 0),
		},
		{
			name: "location far from any road",
			req:  NewRoundTripRequest([]da.Coordinate{location(0, 0), da.NewCoordinate(52, 4)}, "car.shortest", 60, 0),
		},
		{
			name: "mapping radius too small",
			req: NewRoundTripRequest([]da.Coordinate{location(0, 0), da.NewCoordinate(51.0005, 3.70075)},
				"car.shortest", 60, 1),
		},
		{
			name: "profile without contracted index",
			req:  NewRoundTripRequest([]da.Coordinate{location(0, 0)}, "car", 60, 0),
		},
		{
			name: "depot out of range",
			req: Request{Locations: []da.Coordinate{location(0, 0)}, Profile: "car.shortest",
				Start: 0, End: 3},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			route, err := e.Optimize(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, route)

			var optErr *OptimizationError
			require.True(t, errors.As(err, &optErr))
			assert.NotEmpty(t, optErr.Message)
		})
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
