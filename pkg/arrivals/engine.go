// Package arrivals computes theoretical phase arrival times for
// event-station pairs.
package arrivals

import (
	"math"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/geodesy"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/logging"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/taup"
)

const kmPerDeg = math.Pi * geodesy.EarthRadiusM / 180.0 / 1000.0

// Engine traverses event-station pairs against a velocity model.
type Engine struct {
	logger logging.Logger
	load   func(name string) (taup.Model, error)
}

// NewEngine creates an arrival engine backed by the shared model cache.
func NewEngine(logger logging.Logger) *Engine {
	return &Engine{logger: logger, load: taup.Load}
}

// ComputeTravelTimes returns, per pair key, the phase→seconds table that
// drives download windowing. Only the first arrival per requested phase is
// kept, and pairs yielding no arrivals at all are absent from the result.
func (e *Engine) ComputeTravelTimes(events []models.Event, stations []models.Station, phases []string, modelName string) (models.ArrivalTimes, error) {
	model, err := e.load(modelName)
	if err != nil {
		return nil, err
	}

	out := make(models.ArrivalTimes)
	for _, ev := range events {
		for _, st := range stations {
			dist := geodesy.AngularDistance(ev.Latitude, ev.Longitude, st.Latitude, st.Longitude)
			arrivals := model.TravelTimes(ev.DepthKm, dist, phases)
			if len(arrivals) == 0 {
				continue
			}
			table := make(map[string]float64, len(arrivals))
			for _, arr := range arrivals {
				if _, seen := table[arr.Phase]; !seen {
					table[arr.Phase] = arr.TimeS
				}
			}
			out[models.ArrivalKey(ev.EventID, st.Network, st.Station)] = table
		}
	}
	e.logger.WithFields(logging.Fields{
		"model": model.Name(),
		"pairs": len(out),
	}).Info("Arrival times computed")
	return out, nil
}

// ComputeDetails is the richer traversal for export: distances in degrees and
// kilometers plus takeoff angle and ray parameter per phase when the model
// provides them.
func (e *Engine) ComputeDetails(events []models.Event, stations []models.Station, phases []string, modelName string) (models.ArrivalDetails, error) {
	model, err := e.load(modelName)
	if err != nil {
		return nil, err
	}

	out := make(models.ArrivalDetails)
	for _, ev := range events {
		for _, st := range stations {
			dist := geodesy.AngularDistance(ev.Latitude, ev.Longitude, st.Latitude, st.Longitude)
			arrivals := model.TravelTimes(ev.DepthKm, dist, phases)
			if len(arrivals) == 0 {
				continue
			}
			detail := models.ArrivalDetail{
				EventID:     ev.EventID,
				Network:     st.Network,
				Station:     st.Station,
				DistanceDeg: dist,
				DistanceKm:  dist * kmPerDeg,
				Phases:      make(map[string]models.PhaseArrival, len(arrivals)),
			}
			for _, arr := range arrivals {
				if _, seen := detail.Phases[arr.Phase]; seen {
					continue
				}
				phase := models.PhaseArrival{TimeS: arr.TimeS}
				if arr.TakeoffDeg != 0 {
					takeoff := arr.TakeoffDeg
					phase.TakeoffAngle = &takeoff
				}
				if arr.RayParamSecDeg != 0 {
					rayParam := arr.RayParamSecDeg
					phase.RayParamSecDeg = &rayParam
				}
				detail.Phases[arr.Phase] = phase
			}
			out[models.ArrivalKey(ev.EventID, st.Network, st.Station)] = detail
		}
	}
	return out, nil
}
