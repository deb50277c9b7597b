// Package geodesy provides the spherical-Earth distance and azimuth helpers
// used by station and event selection.
package geodesy

import "math"

// EarthRadiusM is the mean Earth radius used for metric distances.
const EarthRadiusM = 6371000.0

func rad(deg float64) float64 { return deg * math.Pi / 180.0 }
func deg(rad float64) float64 { return rad * 180.0 / math.Pi }

// AngularDistance returns the great-circle distance between two points in
// degrees, always in [0, 180].
func AngularDistance(latA, lonA, latB, lonB float64) float64 {
	la, lb := rad(latA), rad(latB)
	dlon := rad(lonB - lonA)

	// Haversine; numerically stable for small separations.
	sinLat := math.Sin(rad(latB-latA) / 2)
	sinLon := math.Sin(dlon / 2)
	h := sinLat*sinLat + math.Cos(la)*math.Cos(lb)*sinLon*sinLon
	if h > 1 {
		h = 1
	}
	return deg(2 * math.Asin(math.Sqrt(h)))
}

// DistanceAzimuth returns the metric distance in meters between two points
// together with the forward azimuth (A→B) and back azimuth (B→A), both in
// degrees clockwise from north in [0, 360).
func DistanceAzimuth(latA, lonA, latB, lonB float64) (meters, azimuth, backAzimuth float64) {
	meters = rad(AngularDistance(latA, lonA, latB, lonB)) * EarthRadiusM
	azimuth = bearing(latA, lonA, latB, lonB)
	backAzimuth = bearing(latB, lonB, latA, lonA)
	return meters, azimuth, backAzimuth
}

func bearing(latA, lonA, latB, lonB float64) float64 {
	la, lb := rad(latA), rad(latB)
	dlon := rad(lonB - lonA)
	y := math.Sin(dlon) * math.Cos(lb)
	x := math.Cos(la)*math.Sin(lb) - math.Sin(la)*math.Cos(lb)*math.Cos(dlon)
	b := deg(math.Atan2(y, x))
	return math.Mod(b+360.0, 360.0)
}

// BoundingBoxForRadius returns (minLon, minLat, maxLon, maxLat) covering a
// circle of radiusDeg around (lat, lon). The longitude half-span widens as
// 1/cos(lat), floored at cos=0.1 so the box conservatively over-covers near
// the poles rather than collapsing.
func BoundingBoxForRadius(lat, lon, radiusDeg float64) (minLon, minLat, maxLon, maxLat float64) {
	minLat = math.Max(lat-radiusDeg, -90.0)
	maxLat = math.Min(lat+radiusDeg, 90.0)

	cosLat := math.Max(math.Cos(rad(lat)), 0.1)
	halfSpan := math.Min(radiusDeg/cosLat, 180.0)
	minLon = lon - halfSpan
	maxLon = lon + halfSpan
	return minLon, minLat, maxLon, maxLat
}
