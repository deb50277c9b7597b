package models

// Event represents a normalized earthquake catalog entry. Uncertainty and
// secondary-magnitude fields are best-effort: absent when the catalog did not
// supply them.
type Event struct {
	EventID       string  `json:"event_id"`
	Time          string  `json:"time"` // origin time, ISO 8601
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	DepthKm       float64 `json:"depth"`
	Magnitude     float64 `json:"magnitude"`
	MagnitudeType string  `json:"magnitude_type,omitempty"`
	CatalogSource string  `json:"catalog_source"`

	DistanceDeg   float64  `json:"distance_deg"`
	DynamicCutoff *float64 `json:"dynamic_cutoff,omitempty"`

	OriginTimeUncertaintyS  *float64 `json:"origin_time_uncertainty_s,omitempty"`
	LatitudeUncertaintyDeg  *float64 `json:"latitude_uncertainty_deg,omitempty"`
	LongitudeUncertaintyDeg *float64 `json:"longitude_uncertainty_deg,omitempty"`
	DepthUncertaintyKm      *float64 `json:"depth_uncertainty_km,omitempty"`

	Mw *SecondaryMagnitude `json:"mw,omitempty"`
	Mb *SecondaryMagnitude `json:"mb,omitempty"`
	Ms *SecondaryMagnitude `json:"ms,omitempty"`

	HasMomentTensor bool `json:"has_moment_tensor"`
	// MomentTensor is the promoted default solution; MomentTensors keeps every
	// solution found, keyed by source catalog.
	MomentTensor  *MomentTensor            `json:"moment_tensor,omitempty"`
	MomentTensors map[string]*MomentTensor `json:"moment_tensors,omitempty"`
}

// SecondaryMagnitude is an additional magnitude estimate (Mw/mb/Ms) with its
// reported type and author when available.
type SecondaryMagnitude struct {
	Value  float64 `json:"value"`
	Type   string  `json:"type,omitempty"`
	Author string  `json:"author,omitempty"`
}

// Tensor holds the six independent moment-tensor components in N·m.
type Tensor struct {
	Mrr *float64 `json:"m_rr,omitempty"`
	Mtt *float64 `json:"m_tt,omitempty"`
	Mpp *float64 `json:"m_pp,omitempty"`
	Mrt *float64 `json:"m_rt,omitempty"`
	Mrp *float64 `json:"m_rp,omitempty"`
	Mtp *float64 `json:"m_tp,omitempty"`
}

// NodalPlane is one of the two fault-plane solutions of a focal mechanism.
type NodalPlane struct {
	Name   string   `json:"name"`
	Strike *float64 `json:"strike,omitempty"`
	Dip    *float64 `json:"dip,omitempty"`
	Rake   *float64 `json:"rake,omitempty"`
}

// MomentTensor is an extracted focal-mechanism payload. Every field is
// optional; an instance exists only if at least one field was extractable.
type MomentTensor struct {
	Tensor        *Tensor      `json:"tensor,omitempty"`
	ScalarMoment  *float64     `json:"scalar_moment,omitempty"`
	NodalPlanes   []NodalPlane `json:"nodal_planes,omitempty"`
	SourceAgency  string       `json:"source_agency,omitempty"`
	SourceAuthor  string       `json:"source_author,omitempty"`
	SourceCatalog string       `json:"source_catalog,omitempty"`
}

// Empty reports whether nothing at all was extracted.
func (m *MomentTensor) Empty() bool {
	return m == nil || (m.Tensor == nil && m.ScalarMoment == nil &&
		len(m.NodalPlanes) == 0 && m.SourceAgency == "" && m.SourceAuthor == "")
}
