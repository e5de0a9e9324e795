package ingest

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/util"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	LAT_COLUMN = "LAT"
	LON_COLUMN = "LON"

	START_PROPERTY = "start"

	GEOJSON_FILE_EXTENSION = ".geojson"
)

const maxLineSize = 1 << 20

// ReadFile reads the locations of path, as a GeoJSON feature collection when
// the extension is .geojson and as comma separated values otherwise.
func ReadFile(path string) ([]datastructure.Coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInputNotFound, "open input file %s", path)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), GEOJSON_FILE_EXTENSION) {
		return ReadGeoJSON(f)
	}
	return ReadCSV(f)
}

// ReadCSV reads one location per line, fields separated by plain commas
// without quoting. The first non-empty line is the header and must contain
// the columns LAT and LON. Lines whose coordinates do not parse or lie outside
// the valid latitude and longitude ranges are skipped.
func ReadCSV(r io.Reader) ([]datastructure.Coordinate, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	coords := make([]datastructure.Coordinate, 0)
	latCol, lonCol := -1, -1
	header := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		record := strings.Split(line, ",")

		if header {
			latCol = columnIndex(record, LAT_COLUMN)
			lonCol = columnIndex(record, LON_COLUMN)
			header = false
			continue
		}

		lat, ok := parseField(record, latCol, 90)
		if !ok {
			continue
		}
		lon, ok := parseField(record, lonCol, 180)
		if !ok {
			continue
		}
		coords = append(coords, datastructure.NewCoordinate(lat, lon))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return coords, nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

// parseField reads a decimal degree value in [-limit, limit].
func parseField(record []string, col int, limit float64) (float32, bool) {
	if col < 0 || col >= len(record) {
		return 0, false
	}
	field := strings.TrimSpace(record[col])
	if strings.ContainsAny(field, "xX") {
		// hexadecimal floats
		return 0, false
	}
	v, err := strconv.ParseFloat(field, 32)
	if err != nil || !validDegrees(v, limit) {
		return 0, false
	}
	return float32(v), true
}

func validDegrees(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -limit && v <= limit
}

// ReadGeoJSON reads the point features of a feature collection in file order.
// Points outside the valid coordinate ranges are skipped.
// A feature with a "start" property (any case, any value) is moved to the
// front, so with several of them the last one read comes first.
func ReadGeoJSON(r io.Reader) ([]datastructure.Coordinate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	coords := make([]datastructure.Coordinate, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil {
			continue
		}
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		if !validDegrees(p.Lat(), 90) || !validDegrees(p.Lon(), 180) {
			continue
		}
		c := datastructure.NewCoordinate(float32(p.Lat()), float32(p.Lon()))
		if isStart(f.Properties) {
			coords = append([]datastructure.Coordinate{c}, coords...)
			continue
		}
		coords = append(coords, c)
	}
	return coords, nil
}

func isStart(props geojson.Properties) bool {
	for k := range props {
		if strings.EqualFold(k, START_PROPERTY) {
			return true
		}
	}
	return false
}
