package models

// Station represents a normalized seismic station record as returned by a
// provider inventory query. Optional annotations (distance, azimuths) are
// pointers so exports can distinguish "absent" from zero.
type Station struct {
	Network   string   `json:"network"`
	Station   string   `json:"station"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
	SiteName  string   `json:"site_name,omitempty"`

	// Provider is the provider the record originated from; Providers lists
	// additional providers that returned the same network.station.
	Provider  string   `json:"provider"`
	Providers []string `json:"providers,omitempty"`

	// Channels holds the full channel codes seen at this station,
	// ChannelTypes the derived 2-letter band/instrument prefixes (BH, HH, ...).
	Channels     []string `json:"channels,omitempty"`
	ChannelTypes []string `json:"channel_types,omitempty"`

	// Set when the station list was narrowed relative to a reference point.
	DistanceDeg          *float64 `json:"distance_deg,omitempty"`
	Azimuth              *float64 `json:"azimuth,omitempty"`
	BackAzimuth          *float64 `json:"back_azimuth,omitempty"`
	DistanceFromCenterKm *float64 `json:"distance_from_center_km,omitempty"`
}

// Key returns the station identity key "NET.STA".
func (s Station) Key() string {
	return s.Network + "." + s.Station
}
