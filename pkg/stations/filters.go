package stations

import (
	"time"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/geodesy"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

// FilterByCircle keeps stations within radiusKm of the center, annotating
// each survivor with its distance from the center.
func FilterByCircle(list []models.Station, centerLat, centerLon, radiusKm float64) []models.Station {
	var out []models.Station
	for _, station := range list {
		meters, _, _ := geodesy.DistanceAzimuth(centerLat, centerLon, station.Latitude, station.Longitude)
		km := meters / 1000.0
		if km > radiusKm {
			continue
		}
		station.DistanceFromCenterKm = &km
		out = append(out, station)
	}
	return out
}

// Availability reports, per NET.STA key, whether the station's operational
// window overlaps [start, end]. Stations without a parseable start date are
// assumed available; an absent end date means still operating.
func Availability(list []models.Station, start, end time.Time) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, station := range list {
		out[station.Key()] = operationalOverlap(station, start, end)
	}
	return out
}

func operationalOverlap(station models.Station, start, end time.Time) bool {
	opened, err := parseStationDate(station.StartDate)
	if err == nil && opened.After(end) {
		return false
	}
	if station.EndDate == "" {
		return true
	}
	closed, err := parseStationDate(station.EndDate)
	if err != nil {
		return true
	}
	return !closed.Before(start)
}

func parseStationDate(s string) (time.Time, error) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &time.ParseError{Layout: time.RFC3339, Value: s}
}
