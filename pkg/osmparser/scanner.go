package osmparser

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

// IsPbf reports whether path names an OSM protobuf file.
func IsPbf(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pbf")
}

// NewScanner returns a sequential scanner over r, decoding protobuf when path
// ends in .pbf and OSM XML otherwise.
func NewScanner(ctx context.Context, r io.Reader, path string) osm.Scanner {
	if IsPbf(path) {
		// must not be parallel
		return osmpbf.New(ctx, r, 1)
	}
	return osmxml.New(ctx, r)
}
