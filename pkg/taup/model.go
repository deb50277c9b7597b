// Package taup provides 1-D earth-model travel times for teleseismic phases.
//
// Models are table driven: embedded time grids over (depth, distance) per
// phase, bilinearly interpolated, with the ray parameter taken as the local
// distance derivative of travel time. That is coarse next to full ray
// tracing, but well within the tolerance download windowing needs.
package taup

import (
	"fmt"
	"strings"
	"sync"
)

// Arrival is one predicted phase arrival.
type Arrival struct {
	Phase string
	// TimeS is travel time from origin, in seconds.
	TimeS float64
	// RayParamSecDeg is the horizontal slowness in s/deg.
	RayParamSecDeg float64
	// TakeoffDeg is the takeoff angle at the source, degrees from vertical.
	TakeoffDeg float64
}

// Model predicts travel times for phases at a given source depth and
// epicentral distance.
type Model interface {
	Name() string
	// TravelTimes returns arrivals for the requested phases, in phase
	// order. Phases the model cannot produce at this geometry are simply
	// absent from the result.
	TravelTimes(depthKm, distanceDeg float64, phases []string) []Arrival
}

var (
	modelMu    sync.Mutex
	modelCache = make(map[string]Model)
)

// Load returns the model with the given name ("iasp91" or "ak135"),
// instantiating it on first use and caching it for the rest of the process.
func Load(name string) (Model, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	modelMu.Lock()
	defer modelMu.Unlock()
	if m, ok := modelCache[key]; ok {
		return m, nil
	}

	var m Model
	switch key {
	case "iasp91":
		m = newIASP91()
	case "ak135":
		m = newAK135()
	default:
		return nil, fmt.Errorf("unknown velocity model %q", name)
	}
	modelCache[key] = m
	return m, nil
}
