package ingest

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []datastructure.Coordinate
	}{
		{
			name:  "unparseable rows are skipped",
			input: "ID,LAT,LON\n1,10,20\nbad,x,y\n2,30,40\n",
			want: []datastructure.Coordinate{
				datastructure.NewCoordinate(10, 20),
				datastructure.NewCoordinate(30, 40),
			},
		},
		{
			name:  "leading empty lines before the header",
			input: "\n\nLON,LAT\n4.5,51.25\n",
			want:  []datastructure.Coordinate{datastructure.NewCoordinate(51.25, 4.5)},
		},
		{
			name:  "last row without newline is read",
			input: "LAT,LON\n1.5,2.5",
			want:  []datastructure.Coordinate{datastructure.NewCoordinate(1.5, 2.5)},
		},
		{
			name:  "column names are case sensitive",
			input: "lat,lon\n1,2\n",
			want:  []datastructure.Coordinate{},
		},
		{
			name:  "short rows are skipped",
			input: "ID,LAT,LON\n1,10\n2,11,21\n",
			want:  []datastructure.Coordinate{datastructure.NewCoordinate(11, 21)},
		},
		{
			name:  "surrounding spaces are ignored",
			input: "LAT,LON\n 1.25 , 2.75 \n",
			want:  []datastructure.Coordinate{datastructure.NewCoordinate(1.25, 2.75)},
		},
		{
			name:  "a stray quote only loses its own line",
			input: "ID,LAT,LON\n1,10,20\nbad,\"x,y\n2,30,40\n3,50,60\n",
			want: []datastructure.Coordinate{
				datastructure.NewCoordinate(10, 20),
				datastructure.NewCoordinate(30, 40),
				datastructure.NewCoordinate(50, 60),
			},
		},
		{
			name:  "non finite and hexadecimal values are skipped",
			input: "LAT,LON\nNaN,3.71\n51,Inf\n-Infinity,3\n0x1p-2,3\n51.0001,3.7001\n",
			want:  []datastructure.Coordinate{datastructure.NewCoordinate(51.0001, 3.7001)},
		},
		{
			name:  "out of range coordinates are skipped",
			input: "LAT,LON\n90.5,3\n-91,3\n51,180.5\n51,-181\n90,-180\n",
			want:  []datastructure.Coordinate{datastructure.NewCoordinate(90, -180)},
		},
		{
			name:  "windows line endings",
			input: "LAT,LON\r\n1.5,2.5\r\n",
			want:  []datastructure.Coordinate{datastructure.NewCoordinate(1.5, 2.5)},
		},
		{
			name:  "empty input",
			input: "",
			want:  []datastructure.Coordinate{},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func point(lon, lat float64) string {
	return `{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[` +
		ftoa(lon) + `,` + ftoa(lat) + `]}}`
}

func startPoint(lon, lat float64) string {
	return `{"type":"Feature","properties":{"start":"yes"},"geometry":{"type":"Point","coordinates":[` +
		ftoa(lon) + `,` + ftoa(lat) + `]}}`
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func collection(features ...string) string {
	return `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`
}

func TestReadGeoJSON(t *testing.T) {
	a := datastructure.NewCoordinate(1, 1)
	b := datastructure.NewCoordinate(2, 2)
	c := datastructure.NewCoordinate(3, 3)

	testCases := []struct {
		name  string
		input string
		want  []datastructure.Coordinate
	}{
		{
			name:  "file order without start",
			input: collection(point(1, 1), point(2, 2), point(3, 3)),
			want:  []datastructure.Coordinate{a, b, c},
		},
		{
			name:  "start feature moves to the front",
			input: collection(point(1, 1), startPoint(2, 2), point(3, 3)),
			want:  []datastructure.Coordinate{b, a, c},
		},
		{
			name:  "last start feature ends up first",
			input: collection(startPoint(1, 1), startPoint(2, 2), point(3, 3)),
			want:  []datastructure.Coordinate{b, a, c},
		},
		{
			name:  "out of range points are skipped",
			input: collection(point(1, 1), point(200, 2), point(2, 95), point(3, 3)),
			want:  []datastructure.Coordinate{a, c},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadGeoJSON(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ReadGeoJSON(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	testCases := []struct {
		name string
		path string
		want []datastructure.Coordinate
	}{
		{
			name: "csv",
			path: filepath.Join("testdata", "stops.csv"),
			want: []datastructure.Coordinate{
				datastructure.NewCoordinate(10, 20),
				datastructure.NewCoordinate(30, 40),
			},
		},
		{
			name: "geojson skips non point geometries",
			path: filepath.Join("testdata", "stops.geojson"),
			want: []datastructure.Coordinate{
				datastructure.NewCoordinate(51.06, 3.72),
				datastructure.NewCoordinate(51.05, 3.71),
				datastructure.NewCoordinate(51.07, 3.73),
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFile(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ReadFile(filepath.Join("testdata", "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(util.ErrorCode(err), util.ErrInputNotFound))
}
