package events

import (
	"sort"
	"strings"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/geodesy"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

// ComputeDistances recomputes DistanceDeg in place against a new reference
// center.
func ComputeDistances(events []models.Event, centerLat, centerLon float64) {
	for i := range events {
		events[i].DistanceDeg = geodesy.AngularDistance(centerLat, centerLon, events[i].Latitude, events[i].Longitude)
	}
}

// Stats summarizes one numeric event attribute.
type Stats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// DistanceStats summarizes the distance distribution of an event set.
func DistanceStats(events []models.Event) Stats {
	values := make([]float64, len(events))
	for i, ev := range events {
		values[i] = ev.DistanceDeg
	}
	return summarize(values)
}

// MagnitudeStats summarizes the magnitude distribution of an event set.
func MagnitudeStats(events []models.Event) Stats {
	values := make([]float64, len(events))
	for i, ev := range events {
		values[i] = ev.Magnitude
	}
	return summarize(values)
}

func summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return Stats{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
		Median: median,
	}
}

// Sort orders events by "time", "magnitude", "distance" or "depth",
// descending when reverse is set. Unknown fields sort by time. The sort is
// stable so equal keys keep their catalog order.
func Sort(events []models.Event, field string, reverse bool) {
	var less func(a, b models.Event) bool
	switch strings.ToLower(field) {
	case "magnitude":
		less = func(a, b models.Event) bool { return a.Magnitude < b.Magnitude }
	case "distance":
		less = func(a, b models.Event) bool { return a.DistanceDeg < b.DistanceDeg }
	case "depth":
		less = func(a, b models.Event) bool { return a.DepthKm < b.DepthKm }
	default:
		less = func(a, b models.Event) bool { return a.Time < b.Time }
	}
	sort.SliceStable(events, func(i, j int) bool {
		if reverse {
			return less(events[j], events[i])
		}
		return less(events[i], events[j])
	})
}
