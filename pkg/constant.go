package pkg

const (
	INF_WEIGHT float64 = 1e15

	// a stop whose arriving and departing headings differ by more than this
	// many degrees costs the turn penalty
	TURN_PENALTY_ANGLE_THRESHOLD = 90.0

	// maxspeed tags are not reachable on average
	NERF_MAXSPEED_OSM = 0.9

	TEMP_FILE_SUFFIX = ".tmp"
)

const (
	ROUTERDB_FILE_EXTENSION = ".routerdb"
	OSM_FILE_EXTENSION      = ".osm"
)
