package datastructure

import "github.com/lintang-b-s/streetscan/pkg/geo"

// ShapeMeta annotates the shape points from Shape onwards with the profile
// and the road class of the edge they were taken from.
type ShapeMeta struct {
	Shape     int    `json:"shape"`
	Profile   string `json:"profile"`
	RoadClass string `json:"road_class"`
}

// Stop is a visited location. Shape is the index into Route.Shape of the
// point the stop lies on. Distance and Time are cumulative from the start.
type Stop struct {
	Shape      int               `json:"shape"`
	Coordinate geo.Coordinate    `json:"coordinate"`
	Attributes map[string]string `json:"attributes"`
	Distance   float64           `json:"distance"`
	Time       float64           `json:"time"`
}

func NewStop(shape int, coord geo.Coordinate, distance, time float64) *Stop {
	return &Stop{
		Shape:      shape,
		Coordinate: coord,
		Attributes: make(map[string]string),
		Distance:   distance,
		Time:       time,
	}
}

// Route is an ordered path through the road network. TotalDistance is in
// meters, TotalTime in seconds.
type Route struct {
	Profile       string           `json:"profile"`
	Shape         []geo.Coordinate `json:"shape"`
	ShapeMeta     []ShapeMeta      `json:"shape_meta,omitempty"`
	Stops         []*Stop          `json:"stops"`
	TotalDistance float64          `json:"total_distance"`
	TotalTime     float64          `json:"total_time"`
}

func NewRoute(profile string) *Route {
	return &Route{
		Profile:   profile,
		Shape:     make([]geo.Coordinate, 0),
		ShapeMeta: make([]ShapeMeta, 0),
		Stops:     make([]*Stop, 0),
	}
}
