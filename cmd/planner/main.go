package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/streetscan/pkg/export"
	"github.com/lintang-b-s/streetscan/pkg/extractor"
	"github.com/lintang-b-s/streetscan/pkg/logger"
	"github.com/lintang-b-s/streetscan/pkg/planner"
	"github.com/lintang-b-s/streetscan/pkg/preprocessor"
	"github.com/lintang-b-s/streetscan/pkg/profile"
	"github.com/lintang-b-s/streetscan/pkg/routerdb"
	"github.com/lintang-b-s/streetscan/pkg/util"
	"go.uber.org/zap"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := util.ReadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFatal
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFatal
	}
	defer log.Sync()

	parsed, err := parseArgs(args, cfg.Routing.Profile, cfg.Routing.TurnPenalty)
	if errors.Is(err, errHelp) {
		showHelp(log)
		return exitOK
	} else if err != nil {
		log.Error("Could not parse arguments", zap.Error(err))
		showHelp(log)
		return exitUsage
	}
	if parsed.turnPenalty != cfg.Routing.TurnPenalty {
		log.Info("Using custom turn penalty", zap.Int("turn_penalty", parsed.turnPenalty))
	}
	if parsed.profile != cfg.Routing.Profile {
		log.Info("Using custom profile", zap.String("profile", parsed.profile))
	}

	vehicle, err := profile.Load(cfg.Vehicle.File)
	if err != nil {
		log.Error("Could not load vehicle", zap.String("file", cfg.Vehicle.File), zap.Error(err))
		return exitFatal
	}

	p := planner.NewPlanner(
		extractor.NewExtractor(extractor.NewFetcher(cfg.Source.URL, cfg.Source.Local, log), log),
		routerdb.NewCache(vehicle, routerdb.NewOsmGraphBuilder(log),
			preprocessor.NewContractionHierarchies(vehicle, log), log),
		planner.NewEngineFactory(log),
		export.NewExporter(log),
		log,
	)

	err = p.Run(context.Background(), planner.Options{
		InputFile:     parsed.inputFile,
		OutputFile:    parsed.outputFile,
		Profile:       parsed.profile,
		TurnPenalty:   parsed.turnPenalty,
		Padding:       cfg.Region.Padding,
		MappingRadius: cfg.Routing.MappingRadius,
	})
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if code := util.ErrorCode(err); code != nil {
			fields = append(fields, zap.String("code", code.Error()))
		}
		log.Error("Planning route failed", fields...)
		return exitFatal
	}
	return exitOK
}

func showHelp(log *zap.Logger) {
	sugar := log.Sugar()
	sugar.Info("Usage: planner [run] <input> [output] [--turn <penalty>] [--profile <name>]")
	sugar.Info("- input: a .csv file with LAT and LON columns or a .geojson point collection")
	sugar.Info("- output: (optional) output .gpx file, defaults to the input name with .gpx")
	sugar.Info("- --turn: penalty added at stops where the route turns back, default 60")
	sugar.Info("- --profile: car, car.shortest (default) or car.classifications")
	sugar.Infof("Example arguments: run %s %s --turn 120",
		filepath.Join("path", "to", "input.csv"), filepath.Join("path", "to", "output.gpx"))
}
