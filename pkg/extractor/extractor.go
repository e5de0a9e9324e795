package extractor

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/streetscan/pkg"
	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/lintang-b-s/streetscan/pkg/osmparser"
	"github.com/lintang-b-s/streetscan/pkg/util"
	"github.com/paulmach/osm"
	"go.uber.org/zap"
)

// Extractor cuts regional OSM extracts out of the base source.
type Extractor struct {
	fetcher *Fetcher
	logger  *zap.Logger
}

func NewExtractor(fetcher *Fetcher, logger *zap.Logger) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		logger:  logger,
	}
}

// GetOsmData returns <outputDir>/<name>.osm, creating it from the base source
// when it does not exist yet. An existing extract is never rebuilt so it can
// be edited by hand.
func (ex *Extractor) GetOsmData(ctx context.Context, name, outputDir string, box datastructure.BoundingBox) (string, error) {
	extract, err := filepath.Abs(filepath.Join(outputDir, name+pkg.OSM_FILE_EXTENSION))
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(extract); err == nil {
		ex.logger.Info("Using existing OSM extract", zap.String("extract", extract))
		return extract, nil
	}

	if !box.IsValid() {
		return "", util.WrapErrorf(nil, util.ErrBadParamInput, "invalid bounding box %+v for extract %s", box, extract)
	}

	source, err := ex.fetcher.EnsureSource(ctx)
	if err != nil {
		return "", err
	}

	ex.logger.Warn("OSM extract doesn't exist, creating it",
		zap.String("name", name), zap.String("extract", extract))

	err = writeAtomic(extract, func(w io.Writer) error {
		return FilterBox(ctx, source, w, box.GetMinLon(), box.GetMaxLat(), box.GetMaxLon(), box.GetMinLat(), true)
	})
	if err != nil {
		return "", fmt.Errorf("extract %s from %s: %w", extract, source, err)
	}
	return extract, nil
}

type boxFilter struct {
	left, top, right, bottom float64
	completeWays             bool

	nodes     map[osm.NodeID]struct{}
	ways      map[osm.WayID]struct{}
	relations map[osm.RelationID]struct{}
}

func (bf *boxFilter) inside(n *osm.Node) bool {
	return n.Lat >= bf.bottom && n.Lat <= bf.top && n.Lon >= bf.left && n.Lon <= bf.right
}

// FilterBox writes the part of the OSM file srcPath that lies in the box as
// OSM XML to w. Nodes inside the box are kept, ways with at least one kept
// node and relations with at least one kept member. With completeWays every
// node of a kept way is kept as well, also when it lies outside the box.
func FilterBox(ctx context.Context, srcPath string, w io.Writer, left, top, right, bottom float64, completeWays bool) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	bf := &boxFilter{
		left: left, top: top, right: right, bottom: bottom,
		completeWays: completeWays,
		nodes:        make(map[osm.NodeID]struct{}),
		ways:         make(map[osm.WayID]struct{}),
		relations:    make(map[osm.RelationID]struct{}),
	}

	if err := bf.selectObjects(ctx, f, srcPath); err != nil {
		return err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return bf.write(ctx, f, srcPath, w)
}

// selectObjects relies on the usual file order of nodes, ways then relations.
func (bf *boxFilter) selectObjects(ctx context.Context, r io.Reader, srcPath string) error {
	scanner := osmparser.NewScanner(ctx, r, srcPath)
	defer scanner.Close()

	wayNodes := make(map[osm.NodeID]struct{})
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if bf.inside(o) {
				bf.nodes[o.ID] = struct{}{}
			}
		case *osm.Way:
			keep := false
			for _, wn := range o.Nodes {
				if _, ok := bf.nodes[wn.ID]; ok {
					keep = true
					break
				}
			}
			if !keep {
				continue
			}
			bf.ways[o.ID] = struct{}{}
			if bf.completeWays {
				for _, wn := range o.Nodes {
					wayNodes[wn.ID] = struct{}{}
				}
			}
		case *osm.Relation:
			if bf.keepRelation(o) {
				bf.relations[o.ID] = struct{}{}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	for id := range wayNodes {
		bf.nodes[id] = struct{}{}
	}
	return nil
}

func (bf *boxFilter) keepRelation(r *osm.Relation) bool {
	for _, m := range r.Members {
		var ok bool
		switch m.Type {
		case osm.TypeNode:
			_, ok = bf.nodes[osm.NodeID(m.Ref)]
		case osm.TypeWay:
			_, ok = bf.ways[osm.WayID(m.Ref)]
		case osm.TypeRelation:
			_, ok = bf.relations[osm.RelationID(m.Ref)]
		}
		if ok {
			return true
		}
	}
	return false
}

func (bf *boxFilter) write(ctx context.Context, r io.Reader, srcPath string, w io.Writer) error {
	scanner := osmparser.NewScanner(ctx, r, srcPath)
	defer scanner.Close()

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	root := xml.StartElement{
		Name: xml.Name{Local: "osm"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "version"}, Value: "0.6"},
			{Name: xml.Name{Local: "generator"}, Value: "streetscan"},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	bounds := &osm.Bounds{MinLat: bf.bottom, MaxLat: bf.top, MinLon: bf.left, MaxLon: bf.right}
	if err := enc.EncodeElement(bounds, xml.StartElement{Name: xml.Name{Local: "bounds"}}); err != nil {
		return err
	}

	for scanner.Scan() {
		// an extract only holds current objects
		var keep bool
		switch o := scanner.Object().(type) {
		case *osm.Node:
			_, keep = bf.nodes[o.ID]
			o.Visible = true
		case *osm.Way:
			_, keep = bf.ways[o.ID]
			o.Visible = true
		case *osm.Relation:
			_, keep = bf.relations[o.ID]
			o.Visible = true
		}
		if !keep {
			continue
		}
		if err := enc.Encode(scanner.Object()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
