package planner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/engine"
	"github.com/lintang-b-s/streetscan/pkg/export"
	"github.com/lintang-b-s/streetscan/pkg/extractor"
	"github.com/lintang-b-s/streetscan/pkg/preprocessor"
	"github.com/lintang-b-s/streetscan/pkg/profile"
	"github.com/lintang-b-s/streetscan/pkg/routerdb"
	"github.com/lintang-b-s/streetscan/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type spyExtractor struct {
	calls int
	name  string
	dir   string
	box   datastructure.BoundingBox
}

func (s *spyExtractor) GetOsmData(ctx context.Context, name, outputDir string, box datastructure.BoundingBox) (string, error) {
	s.calls++
	s.name, s.dir, s.box = name, outputDir, box
	return filepath.Join(outputDir, name+".osm"), nil
}

type spyLoader struct {
	calls int
	err   error
}

func (s *spyLoader) Load(ctx context.Context, extractPath, profileName string) (*datastructure.RouterDb, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return datastructure.NewRouterDb("car", []string{profileName}, datastructure.NewGraph(nil, nil, nil, nil)), nil
}

type stubOptimizer struct {
	req   engine.Request
	route *datastructure.Route
	err   error
}

func (s *stubOptimizer) Optimize(ctx context.Context, req engine.Request) (*datastructure.Route, error) {
	s.req = req
	return s.route, s.err
}

type spyExporter struct {
	calls  int
	output string
}

func (s *spyExporter) Export(route *datastructure.Route, outputPath string) error {
	s.calls++
	s.output = outputPath
	return nil
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const stopsCSV = "ID,LAT,LON\n1,51.0,3.7\n2,51.02,3.74\n"

func TestRunFailures(t *testing.T) {
	testCases := []struct {
		name     string
		setup    func(t *testing.T, dir string) Options
		loadErr  error
		optErr   error
		wantCode error
	}{
		{
			name: "missing input file",
			setup: func(t *testing.T, dir string) Options {
				return Options{InputFile: filepath.Join(dir, "missing.csv"), Profile: "car.shortest"}
			},
			wantCode: util.ErrInputNotFound,
		},
		{
			name: "missing output directory",
			setup: func(t *testing.T, dir string) Options {
				return Options{
					InputFile:  writeInput(t, dir, "stops.csv", stopsCSV),
					OutputFile: filepath.Join(dir, "nope", "out.gpx"),
					Profile:    "car.shortest",
				}
			},
			wantCode: util.ErrOutputDirNotFound,
		},
		{
			name: "no locations",
			setup: func(t *testing.T, dir string) Options {
				return Options{InputFile: writeInput(t, dir, "stops.csv", "ID,LAT,LON\nx,y,z\n"), Profile: "car.shortest"}
			},
			wantCode: util.ErrNoLocations,
		},
		{
			name: "unsupported profile",
			setup: func(t *testing.T, dir string) Options {
				return Options{InputFile: writeInput(t, dir, "stops.csv", stopsCSV), Profile: "bicycle"}
			},
			loadErr:  util.WrapErrorf(nil, util.ErrProfileUnsupported, "profile bicycle is not supported"),
			wantCode: util.ErrProfileUnsupported,
		},
		{
			name: "optimization failure",
			setup: func(t *testing.T, dir string) Options {
				return Options{InputFile: writeInput(t, dir, "stops.csv", stopsCSV), Profile: "car.shortest"}
			},
			optErr:   &engine.OptimizationError{Message: "location 1 could not be resolved"},
			wantCode: util.ErrOptimizationFailed,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			opts := tt.setup(t, dir)

			opt := &stubOptimizer{err: tt.optErr, route: datastructure.NewRoute("car.shortest")}
			p := NewPlanner(&spyExtractor{}, &spyLoader{err: tt.loadErr},
				func(db *datastructure.RouterDb) RouteOptimizer { return opt },
				export.NewExporter(zap.NewNop()), zap.NewNop())

			err := p.Run(context.Background(), opts)
			require.Error(t, err)
			assert.True(t, errors.Is(util.ErrorCode(err), tt.wantCode), "got %v", err)

			_, err = os.Stat(filepath.Join(dir, "stops.gpx"))
			assert.True(t, os.IsNotExist(err))
			_, err = os.Stat(filepath.Join(dir, "stops.gpx.geojson"))
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestRunOptimizationErrorMessage(t *testing.T) {
	dir := t.TempDir()
	opts := Options{InputFile: writeInput(t, dir, "stops.csv", stopsCSV), Profile: "car.shortest"}

	msg := "location 1 could not be resolved"
	opt := &stubOptimizer{err: &engine.OptimizationError{Message: msg}}
	p := NewPlanner(&spyExtractor{}, &spyLoader{},
		func(db *datastructure.RouterDb) RouteOptimizer { return opt },
		&spyExporter{}, zap.NewNop())

	err := p.Run(context.Background(), opts)
	require.Error(t, err)
	assert.Equal(t, "calculating route failed: "+msg, err.Error())
	assert.Equal(t, 1, strings.Count(err.Error(), msg))

	var optErr *engine.OptimizationError
	require.True(t, errors.As(err, &optErr))
	assert.Equal(t, msg, optErr.Message)
}

func TestRunWiring(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "stops.csv", stopsCSV)

	ex := &spyExtractor{}
	loader := &spyLoader{}
	opt := &stubOptimizer{route: datastructure.NewRoute("car")}
	exp := &spyExporter{}
	p := NewPlanner(ex, loader, func(db *datastructure.RouterDb) RouteOptimizer { return opt }, exp, zap.NewNop())

	err := p.Run(context.Background(), Options{
		InputFile:     input,
		Profile:       "car",
		TurnPenalty:   120,
		Padding:       0.01,
		MappingRadius: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, "stops", ex.name)
	assert.Equal(t, dir, ex.dir)
	assert.InDelta(t, 50.99, ex.box.GetMinLat(), 1e-6)
	assert.InDelta(t, 51.03, ex.box.GetMaxLat(), 1e-6)
	assert.InDelta(t, 3.69, ex.box.GetMinLon(), 1e-6)
	assert.InDelta(t, 3.75, ex.box.GetMaxLon(), 1e-6)

	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, "car", opt.req.Profile)
	assert.Equal(t, 120.0, opt.req.TurnPenalty)
	assert.Equal(t, 500.0, opt.req.MappingRadius)
	assert.Equal(t, 0, opt.req.Start)
	assert.Equal(t, 0, opt.req.End)
	assert.Len(t, opt.req.Locations, 2)

	assert.Equal(t, 1, exp.calls)
	assert.Equal(t, filepath.Join(dir, "stops.gpx"), exp.output)
}

func TestDefaultOutputFile(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "stops.gpx"), DefaultOutputFile(filepath.Join("data", "stops.csv")))
	assert.Equal(t, filepath.Join("data", "stops.gpx"), DefaultOutputFile(filepath.Join("data", "stops.geojson")))
	assert.Equal(t, "stops.gpx", DefaultOutputFile("stops"))
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "stops.csv", "LAT,LON\n51.0001,3.7001\n51.0001,3.7199\n51.0001,3.7101\n")

	// a hand edited extract is already in place, so nothing is downloaded
	data, err := os.ReadFile(filepath.Join("..", "osmparser", "testdata", "junction.osm"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stops.osm"), data, 0o644))

	car, err := profile.Load("")
	require.NoError(t, err)
	logger := zap.NewNop()
	p := NewPlanner(
		extractor.NewExtractor(extractor.NewFetcher("http://127.0.0.1:1/none.osm.pbf",
			filepath.Join(dir, "none.osm.pbf"), logger), logger),
		routerdb.NewCache(car, routerdb.NewOsmGraphBuilder(logger),
			preprocessor.NewContractionHierarchies(car, logger), logger),
		NewEngineFactory(logger),
		export.NewExporter(logger),
		logger,
	)

	err = p.Run(context.Background(), Options{
		InputFile:     input,
		Profile:       "car.shortest",
		TurnPenalty:   60,
		Padding:       0.01,
		MappingRadius: 1000,
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "stops.gpx"))
	assert.FileExists(t, filepath.Join(dir, "stops.gpx.geojson"))
	assert.FileExists(t, filepath.Join(dir, "stops.osm.car.shortest.routerdb"))
	_, err = os.Stat(filepath.Join(dir, "none.osm.pbf"))
	assert.True(t, os.IsNotExist(err))
}
