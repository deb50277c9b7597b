package models

import "fmt"

// ArrivalKey builds the arrival-table key for an event-station pair,
// "<event_id>-<NET>.<STA>".
func ArrivalKey(eventID, network, station string) string {
	return fmt.Sprintf("%s-%s.%s", eventID, network, station)
}

// PhaseArrival holds the per-phase timing metadata of a theoretical arrival.
// Takeoff angle and ray parameter are only present when the velocity model
// exposes them.
type PhaseArrival struct {
	TimeS          float64  `json:"time_s"`
	TakeoffAngle   *float64 `json:"takeoff_angle_deg,omitempty"`
	RayParamSecDeg *float64 `json:"ray_param_sec_deg,omitempty"`
}

// ArrivalDetail is the rich per-pair arrival record used for JSON export.
type ArrivalDetail struct {
	EventID     string                  `json:"event_id"`
	Network     string                  `json:"network"`
	Station     string                  `json:"station"`
	DistanceDeg float64                 `json:"distance_deg"`
	DistanceKm  float64                 `json:"distance_km"`
	Phases      map[string]PhaseArrival `json:"phases"`
}

// ArrivalTimes maps arrival keys to phase→travel-time (seconds) tables. This
// is the minimal form that drives download windowing.
type ArrivalTimes map[string]map[string]float64

// ArrivalDetails maps arrival keys to full arrival records.
type ArrivalDetails map[string]ArrivalDetail
