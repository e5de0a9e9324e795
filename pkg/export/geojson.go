package export

import (
	"io"

	"github.com/lintang-b-s/streetscan/pkg/datastructure"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"
)

// ToFeatureCollection returns the route shape as a line string feature
// followed by one point feature per stop carrying the stop attributes.
func ToFeatureCollection(route *datastructure.Route) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := make(orb.LineString, 0, len(route.Shape))
	coords := make([][]float64, 0, len(route.Shape))
	for _, p := range route.Shape {
		line = append(line, orb.Point{p.Lon, p.Lat})
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	shape := geojson.NewFeature(line)
	shape.Properties["profile"] = route.Profile
	shape.Properties["distance"] = route.TotalDistance
	shape.Properties["time"] = route.TotalTime
	shape.Properties["polyline"] = string(polyline.EncodeCoords(coords))
	fc.Append(shape)

	for _, stop := range route.Stops {
		f := geojson.NewFeature(orb.Point{stop.Coordinate.Lon, stop.Coordinate.Lat})
		for k, v := range stop.Attributes {
			f.Properties[k] = v
		}
		f.Properties["distance"] = stop.Distance
		f.Properties["time"] = stop.Time
		fc.Append(f)
	}
	return fc
}

func WriteGeoJSON(w io.Writer, route *datastructure.Route) error {
	data, err := ToFeatureCollection(route).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
