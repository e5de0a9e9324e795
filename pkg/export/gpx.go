package export

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/lintang-b-s/streetscan/pkg/datastructure"
)

const (
	GPX_NAMESPACE = "http://www.topografix.com/GPX/1/1"
	GPX_CREATOR   = "StreetScan"
)

type gpxDocument struct {
	XMLName  xml.Name    `xml:"gpx"`
	Version  string      `xml:"version,attr"`
	Creator  string      `xml:"creator,attr"`
	Xmlns    string      `xml:"xmlns,attr"`
	Metadata gpxMetadata `xml:"metadata"`
	Wpts     []gpxPoint  `xml:"wpt"`
	Trks     []gpxTrack  `xml:"trk"`
}

type gpxMetadata struct {
	Name string `xml:"name"`
}

type gpxPoint struct {
	Lat  string `xml:"lat,attr"`
	Lon  string `xml:"lon,attr"`
	Name string `xml:"name,omitempty"`
	Desc string `xml:"desc,omitempty"`
}

type gpxTrack struct {
	Name string       `xml:"name,omitempty"`
	Segs []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Pts []gpxPoint `xml:"trkpt"`
}

func formatDegrees(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

// WriteGPX writes the stops of route as waypoints and its shape as a single
// track.
func WriteGPX(w io.Writer, route *datastructure.Route) error {
	doc := gpxDocument{
		Version:  "1.1",
		Creator:  GPX_CREATOR,
		Xmlns:    GPX_NAMESPACE,
		Metadata: gpxMetadata{Name: GPX_CREATOR},
		Wpts:     make([]gpxPoint, 0, len(route.Stops)),
	}

	for _, stop := range route.Stops {
		doc.Wpts = append(doc.Wpts, gpxPoint{
			Lat:  formatDegrees(stop.Coordinate.Lat),
			Lon:  formatDegrees(stop.Coordinate.Lon),
			Name: stop.Attributes[ATTRIBUTE_NAME],
			Desc: stop.Attributes[ATTRIBUTE_DESCRIPTION],
		})
	}

	if len(route.Shape) > 0 {
		seg := gpxSegment{Pts: make([]gpxPoint, 0, len(route.Shape))}
		for _, p := range route.Shape {
			seg.Pts = append(seg.Pts, gpxPoint{Lat: formatDegrees(p.Lat), Lon: formatDegrees(p.Lon)})
		}
		doc.Trks = []gpxTrack{{Name: route.Profile, Segs: []gpxSegment{seg}}}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
