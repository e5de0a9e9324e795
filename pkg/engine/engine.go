package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/lintang-b-s/streetscan/pkg/concurrent"
	da "github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/engine/optimizer"
	"github.com/lintang-b-s/streetscan/pkg/engine/routing"
	"github.com/lintang-b-s/streetscan/pkg/geo"
	"github.com/lintang-b-s/streetscan/pkg/spatialindex"
	"go.uber.org/zap"
)

const DEFAULT_MAPPING_RADIUS = 1000.0 // meters

const (
	ATTRIBUTE_ORDER = "order"
	ATTRIBUTE_INDEX = "index"
)

// Request asks for a route visiting every location. Start and End are indices
// into Locations; equal values give a round trip. MappingRadius is how far in
// meters a location may lie from the road it is mapped onto.
type Request struct {
	Locations     []da.Coordinate
	Profile       string
	TurnPenalty   float64
	Start         int
	End           int
	MappingRadius float64
}

func NewRoundTripRequest(locations []da.Coordinate, profile string, turnPenalty, mappingRadius float64) Request {
	return Request{
		Locations:     locations,
		Profile:       profile,
		TurnPenalty:   turnPenalty,
		Start:         0,
		End:           0,
		MappingRadius: mappingRadius,
	}
}

// OptimizationError is a failed optimization. Message is meant for the user.
type OptimizationError struct {
	Message string
}

func (e *OptimizationError) Error() string {
	return e.Message
}

func optimizationErrorf(format string, a ...interface{}) error {
	return &OptimizationError{Message: fmt.Sprintf(format, a...)}
}

type Engine struct {
	db        *da.RouterDb
	rt        *spatialindex.Rtree
	optimizer *optimizer.Optimizer
	logger    *zap.Logger
}

func NewEngine(db *da.RouterDb, logger *zap.Logger) *Engine {
	rt := spatialindex.NewRtree()
	rt.Build(db.GetGraph(), logger)
	return &Engine{
		db:        db,
		rt:        rt,
		optimizer: optimizer.NewOptimizer(logger),
		logger:    logger,
	}
}

// Optimize maps the request locations onto the road network, orders them and
// returns the route through all of them. The depots keep their place, every
// other location may be visited in any order. Failures caused by the request
// are *OptimizationError.
func (e *Engine) Optimize(ctx context.Context, req Request) (*da.Route, error) {
	n := len(req.Locations)
	if n == 0 {
		return nil, optimizationErrorf("no locations to visit")
	}
	if req.Start < 0 || req.Start >= n || req.End < 0 || req.End >= n {
		return nil, optimizationErrorf("depot index out of range: start %d, end %d, %d locations", req.Start, req.End, n)
	}

	re, err := routing.NewChRoutingEngine(e.db, req.Profile, e.logger)
	if err != nil {
		return nil, optimizationErrorf("profile %s is not available: %v", req.Profile, err)
	}

	radius := req.MappingRadius
	if radius <= 0 {
		radius = DEFAULT_MAPPING_RADIUS
	}
	vertices := make([]da.Index, n)
	for i, loc := range req.Locations {
		snap, ok := e.rt.Snap(loc.GetLat(), loc.GetLon(), radius)
		if !ok {
			return nil, optimizationErrorf("location %d (%f, %f) could not be resolved: no road within %.0f m",
				i, loc.GetLat(), loc.GetLon(), radius)
		}
		vertices[i] = snap.Vertex
	}
	e.logger.Sugar().Infof("mapped %d locations onto the road network", n)

	legs, err := re.ManyToMany(ctx, vertices)
	if err != nil {
		return nil, err
	}

	problem := optimizer.NewProblem(n, req.TurnPenalty, req.Start, req.End)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			leg := legs[i][j]
			if !leg.Found {
				continue
			}
			problem.Weights.Set(leg.Weight, i, j)
			problem.Depart.Set(leg.DepartBearing, i, j)
			problem.Arrive.Set(leg.ArriveBearing, i, j)
		}
	}

	sol, err := e.optimizer.Solve(problem)
	if errors.Is(err, optimizer.ErrUnreachable) {
		return nil, optimizationErrorf("some locations cannot be reached from each other with profile %s", req.Profile)
	} else if err != nil {
		return nil, optimizationErrorf("optimization failed: %v", err)
	}
	e.logger.Info("stops ordered", zap.Ints("order", sol.Order), zap.Float64("cost", sol.Cost))

	paths, err := e.unpackLegs(re, vertices, sol.Order)
	if err != nil {
		return nil, err
	}
	return e.buildRoute(req.Profile, vertices, sol.Order, paths), nil
}

type legJob struct {
	pos  int
	s, t da.Index
}

type legResult struct {
	pos   int
	path  routing.Path
	found bool
}

// unpackLegs computes the road edges of every leg of order in parallel.
func (e *Engine) unpackLegs(re *routing.ChRoutingEngine, vertices []da.Index, order []int) ([]routing.Path, error) {
	jobs := make([]legJob, 0, len(order)-1)
	for i := 1; i < len(order); i++ {
		jobs = append(jobs, legJob{pos: i - 1, s: vertices[order[i-1]], t: vertices[order[i]]})
	}

	results := concurrent.Process(runtime.GOMAXPROCS(0), jobs, func(job legJob) legResult {
		path, found := re.ShortestPath(job.s, job.t)
		return legResult{pos: job.pos, path: path, found: found}
	})

	paths := make([]routing.Path, len(jobs))
	for _, res := range results {
		if !res.found {
			return nil, optimizationErrorf("no path from stop %d to stop %d", res.pos, res.pos+1)
		}
		paths[res.pos] = res.path
	}
	return paths, nil
}

func (e *Engine) buildRoute(profile string, vertices []da.Index, order []int, paths []routing.Path) *da.Route {
	g := e.db.GetGraph()
	route := da.NewRoute(profile)

	vertexCoord := func(v da.Index) geo.Coordinate {
		lat, lon := g.GetVertexCoordinates(v)
		return geo.NewCoordinate(lat, lon)
	}

	addStop := func(pos int, distance, time float64) {
		loc := order[pos]
		stop := da.NewStop(len(route.Shape)-1, vertexCoord(vertices[loc]), distance, time)
		stop.Attributes[ATTRIBUTE_ORDER] = strconv.Itoa(pos)
		stop.Attributes[ATTRIBUTE_INDEX] = strconv.Itoa(loc)
		route.Stops = append(route.Stops, stop)
	}

	route.Shape = append(route.Shape, vertexCoord(vertices[order[0]]))
	addStop(0, 0, 0)

	lastClass := ""
	for i, path := range paths {
		for _, id := range path.Edges {
			if class := g.GetRoadClass(id); len(route.ShapeMeta) == 0 || class != lastClass {
				route.ShapeMeta = append(route.ShapeMeta, da.ShapeMeta{
					Shape:     len(route.Shape) - 1,
					Profile:   profile,
					RoadClass: class,
				})
				lastClass = class
			}

			points := g.GetEdgeGeometry(id)
			if len(points) < 2 {
				route.Shape = append(route.Shape, vertexCoord(g.GetEdge(id).GetHead()))
			} else {
				route.Shape = append(route.Shape, points[1:]...)
			}
		}
		route.TotalDistance += path.Dist
		route.TotalTime += path.Time
		addStop(i+1, route.TotalDistance, route.TotalTime)
	}
	return route
}
