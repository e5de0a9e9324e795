package planner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/engine"
	"github.com/lintang-b-s/streetscan/pkg/ingest"
	"github.com/lintang-b-s/streetscan/pkg/util"
	"go.uber.org/zap"
)

type RegionExtractor interface {
	GetOsmData(ctx context.Context, name, outputDir string, box datastructure.BoundingBox) (string, error)
}

type GraphLoader interface {
	Load(ctx context.Context, extractPath, profileName string) (*datastructure.RouterDb, error)
}

type RouteOptimizer interface {
	Optimize(ctx context.Context, req engine.Request) (*datastructure.Route, error)
}

type RouteExporter interface {
	Export(route *datastructure.Route, outputPath string) error
}

// OptimizerFactory returns the optimizer working on db.
type OptimizerFactory func(db *datastructure.RouterDb) RouteOptimizer

func NewEngineFactory(logger *zap.Logger) OptimizerFactory {
	return func(db *datastructure.RouterDb) RouteOptimizer {
		return engine.NewEngine(db, logger)
	}
}

type Options struct {
	InputFile     string
	OutputFile    string
	Profile       string
	TurnPenalty   int
	Padding       float64
	MappingRadius float64
}

// DefaultOutputFile is <input dir>/<input name without extension>.gpx.
func DefaultOutputFile(inputFile string) string {
	base := filepath.Base(inputFile)
	return filepath.Join(filepath.Dir(inputFile), strings.TrimSuffix(base, filepath.Ext(base))+".gpx")
}

type Planner struct {
	extractor    RegionExtractor
	graphs       GraphLoader
	newOptimizer OptimizerFactory
	exporter     RouteExporter
	logger       *zap.Logger
}

func NewPlanner(extractor RegionExtractor, graphs GraphLoader, newOptimizer OptimizerFactory,
	exporter RouteExporter, logger *zap.Logger) *Planner {
	return &Planner{
		extractor:    extractor,
		graphs:       graphs,
		newOptimizer: newOptimizer,
		exporter:     exporter,
		logger:       logger,
	}
}

// Run plans a round trip through the locations of the input file starting
// and ending at the first one and writes it to the output file. Nothing is
// written when any step fails.
func (p *Planner) Run(ctx context.Context, opts Options) error {
	inputFile, err := filepath.Abs(opts.InputFile)
	if err != nil {
		return util.WrapErrorf(err, util.ErrBadParamInput, "input file %s", opts.InputFile)
	}
	if _, err := os.Stat(inputFile); err != nil {
		return util.WrapErrorf(err, util.ErrInputNotFound, "input file %s not found", inputFile)
	}

	outputFile := opts.OutputFile
	if outputFile == "" {
		outputFile = DefaultOutputFile(inputFile)
	}
	outputFile, err = filepath.Abs(outputFile)
	if err != nil {
		return util.WrapErrorf(err, util.ErrBadParamInput, "output file %s", opts.OutputFile)
	}
	outputDir := filepath.Dir(outputFile)
	if info, err := os.Stat(outputDir); err != nil || !info.IsDir() {
		return util.WrapErrorf(err, util.ErrOutputDirNotFound, "output path %s not found", outputDir)
	}

	locations, err := ingest.ReadFile(inputFile)
	if err != nil {
		return err
	}
	box, ok := datastructure.BuildBoundingBox(locations)
	if !ok {
		return util.WrapErrorf(nil, util.ErrNoLocations, "no locations found in %s", inputFile)
	}
	p.logger.Sugar().Infof("read %d locations from %s", len(locations), inputFile)
	box = box.Pad(opts.Padding)

	name := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	extract, err := p.extractor.GetOsmData(ctx, name, outputDir, box)
	if err != nil {
		return err
	}

	db, err := p.graphs.Load(ctx, extract, opts.Profile)
	if err != nil {
		return err
	}

	req := engine.NewRoundTripRequest(locations, opts.Profile, float64(opts.TurnPenalty), opts.MappingRadius)
	route, err := p.newOptimizer(db).Optimize(ctx, req)
	var optErr *engine.OptimizationError
	if errors.As(err, &optErr) {
		return util.WrapErrorf(optErr, util.ErrOptimizationFailed, "calculating route failed")
	} else if err != nil {
		return err
	}

	return p.exporter.Export(route, outputFile)
}
