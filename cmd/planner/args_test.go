package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		want    cliArgs
		wantErr bool
		help    bool
	}{
		{
			name: "defaults",
			args: []string{"stops.csv"},
			want: cliArgs{inputFile: "stops.csv", turnPenalty: 60, profile: "car.shortest"},
		},
		{
			name: "run verb and output file",
			args: []string{"run", "stops.csv", "out.gpx"},
			want: cliArgs{inputFile: "stops.csv", outputFile: "out.gpx", turnPenalty: 60, profile: "car.shortest"},
		},
		{
			name: "flags after the files",
			args: []string{"stops.csv", "out.gpx", "--turn", "120", "--profile", "car"},
			want: cliArgs{inputFile: "stops.csv", outputFile: "out.gpx", turnPenalty: 120, profile: "car"},
		},
		{
			name: "flags between the files",
			args: []string{"stops.geojson", "--turn", "0", "out.gpx"},
			want: cliArgs{inputFile: "stops.geojson", outputFile: "out.gpx", turnPenalty: 0, profile: "car.shortest"},
		},
		{
			name:    "malformed turn penalty",
			args:    []string{"stops.csv", "--turn", "sharp"},
			wantErr: true,
		},
		{
			name:    "turn without value",
			args:    []string{"stops.csv", "--turn"},
			wantErr: true,
		},
		{
			name:    "profile without value",
			args:    []string{"stops.csv", "--profile"},
			wantErr: true,
		},
		{
			name:    "negative turn penalty",
			args:    []string{"stops.csv", "--turn", "-5"},
			wantErr: true,
		},
		{
			name:    "no arguments",
			args:    []string{},
			wantErr: true,
		},
		{
			name:    "too many files",
			args:    []string{"a.csv", "b.gpx", "c.gpx"},
			wantErr: true,
		},
		{
			name: "help",
			args: []string{"help"},
			help: true,
		},
		{
			name: "help flag",
			args: []string{"--help"},
			help: true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args, "car.shortest", 60)
			if tt.help {
				assert.True(t, errors.Is(err, errHelp))
				return
			}
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, errors.Is(err, errHelp))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
