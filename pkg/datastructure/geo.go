package datastructure

import "math"

// Coordinate is an input location in single precision, as read from the
// location files.
type Coordinate struct {
	Lat float32
	Lon float32
}

func NewCoordinate(lat, lon float32) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

func (c Coordinate) GetLat() float64 {
	return float64(c.Lat)
}

func (c Coordinate) GetLon() float64 {
	return float64(c.Lon)
}

type BoundingBox struct {
	minLat, minLon float64
	maxLat, maxLon float64
}

func NewBoundingBox(minLat, minLon, maxLat, maxLon float64) BoundingBox {
	return BoundingBox{minLat: minLat,
		minLon: minLon,
		maxLat: maxLat,
		maxLon: maxLon}
}

// BuildBoundingBox folds coords into their minimal envelope. ok is false for
// an empty sequence.
func BuildBoundingBox(coords []Coordinate) (box BoundingBox, ok bool) {
	for i, c := range coords {
		if i == 0 {
			box = NewBoundingBox(c.GetLat(), c.GetLon(), c.GetLat(), c.GetLon())
			continue
		}
		box = box.ExpandWith(c.GetLat(), c.GetLon())
	}
	return box, len(coords) > 0
}

func (b BoundingBox) ExpandWith(lat, lon float64) BoundingBox {
	return BoundingBox{
		minLat: math.Min(b.minLat, lat),
		minLon: math.Min(b.minLon, lon),
		maxLat: math.Max(b.maxLat, lat),
		maxLon: math.Max(b.maxLon, lon),
	}
}

// Pad returns a copy grown by d degrees on every side.
func (b BoundingBox) Pad(d float64) BoundingBox {
	return BoundingBox{
		minLat: b.minLat - d,
		minLon: b.minLon - d,
		maxLat: b.maxLat + d,
		maxLon: b.maxLon + d,
	}
}

// IsValid reports whether every bound is finite and min does not exceed max.
func (b BoundingBox) IsValid() bool {
	for _, v := range []float64{b.minLat, b.minLon, b.maxLat, b.maxLon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.minLat <= b.maxLat && b.minLon <= b.maxLon
}

func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.minLat && lat <= b.maxLat && lon >= b.minLon && lon <= b.maxLon
}

func (b BoundingBox) GetMinLat() float64 {
	return b.minLat
}

func (b BoundingBox) GetMinLon() float64 {
	return b.minLon
}

func (b BoundingBox) GetMaxLat() float64 {
	return b.maxLat
}

func (b BoundingBox) GetMaxLon() float64 {
	return b.maxLon
}
