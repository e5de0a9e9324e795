package geo

import (
	"math"

	"github.com/lintang-b-s/streetscan/pkg/util"
)

/*
BearingTo. initial bearing in degrees [0,360) of the great circle from p1 to p2.
https://www.movable-type.co.uk/scripts/latlong.html
*/
func BearingTo(p1Lat, p1Lon, p2Lat, p2Lon float64) float64 {

	dLon := util.DegreeToRadians(p2Lon - p1Lon)

	lat1 := util.DegreeToRadians(p1Lat)
	lat2 := util.DegreeToRadians(p2Lat)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Mod(util.RadiansToDegree(math.Atan2(y, x))+360, 360.0)

	return brng
}

// TurnAngle. absolute heading change in degrees [0,180] when arriving with
// bearing in and leaving with bearing out.
func TurnAngle(in, out float64) float64 {
	d := math.Abs(math.Mod(out-in+360.0, 360.0))
	if d > 180.0 {
		d = 360.0 - d
	}
	return d
}
