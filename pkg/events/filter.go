package events

import (
	"math"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

// ComputeCutoff returns the dynamic magnitude cutoff for an event at the
// given epicentral distance and depth. The cutoff rises with distance and
// falls with depth; it is deliberately unclamped, so values below zero or
// above ten are legitimate outputs.
func ComputeCutoff(distanceDeg, depthKm float64) float64 {
	return 5.2 + 1.0*(distanceDeg-30.0)/150.0 - depthKm/700.0
}

// ApplyMagnitudeDepthFilter partitions events into those at or above their
// dynamic cutoff and those below it. The cutoff, rounded to two decimals, is
// attached to every examined event. Input order is preserved in both outputs.
// When disabled, the input is passed through untouched with a nil filtered
// slice.
//
// DistanceDeg and DepthKm must already be populated on every event.
func ApplyMagnitudeDepthFilter(events []models.Event, enabled bool) (passing, filteredOut []models.Event) {
	if !enabled {
		return events, nil
	}
	for _, ev := range events {
		cutoff := math.Round(ComputeCutoff(ev.DistanceDeg, ev.DepthKm)*100) / 100
		ev.DynamicCutoff = &cutoff
		if ev.Magnitude >= cutoff {
			passing = append(passing, ev)
		} else {
			filteredOut = append(filteredOut, ev)
		}
	}
	return passing, filteredOut
}

// CutoffCurve is one cutoff-vs-distance series at a fixed depth, for plotting
// consumers.
type CutoffCurve struct {
	DepthKm   float64   `json:"depth_km"`
	Distances []float64 `json:"distances_deg"`
	Cutoffs   []float64 `json:"cutoffs"`
}

// CutoffPreview samples the cutoff formula over a distance range for each of
// the given depths.
func CutoffPreview(minDistDeg, maxDistDeg, stepDeg float64, depthsKm []float64) []CutoffCurve {
	if stepDeg <= 0 {
		stepDeg = 1
	}
	curves := make([]CutoffCurve, 0, len(depthsKm))
	for _, depth := range depthsKm {
		curve := CutoffCurve{DepthKm: depth}
		for d := minDistDeg; d <= maxDistDeg+1e-9; d += stepDeg {
			curve.Distances = append(curve.Distances, d)
			curve.Cutoffs = append(curve.Cutoffs, ComputeCutoff(d, depth))
		}
		curves = append(curves, curve)
	}
	return curves
}
