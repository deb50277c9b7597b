package fdsn

import (
	"encoding/xml"
	"regexp"
	"strings"
)

// QuakeML parsing. Catalog responses vary a lot between data centers, so
// every leaf is a pointer: absent fields stay nil instead of defaulting to
// zero, and consumers decide what "missing" means.

type quakeMLDoc struct {
	XMLName         xml.Name        `xml:"quakeml"`
	EventParameters eventParameters `xml:"eventParameters"`
}

type eventParameters struct {
	Events []QuakeMLEvent `xml:"event"`
}

// QuakeMLEvent is one catalog event with all origins, magnitudes and focal
// mechanisms the service returned.
type QuakeMLEvent struct {
	PublicID                  string           `xml:"publicID,attr"`
	PreferredOriginID         string           `xml:"preferredOriginID"`
	PreferredMagnitudeID      string           `xml:"preferredMagnitudeID"`
	PreferredFocalMechanismID string           `xml:"preferredFocalMechanismID"`
	Origins                   []Origin         `xml:"origin"`
	Magnitudes                []Magnitude      `xml:"magnitude"`
	FocalMechanisms           []FocalMechanism `xml:"focalMechanism"`
}

// Origin is one origin estimate.
type Origin struct {
	PublicID  string       `xml:"publicID,attr"`
	Time      TimeQuantity `xml:"time"`
	Latitude  RealQuantity `xml:"latitude"`
	Longitude RealQuantity `xml:"longitude"`
	Depth     RealQuantity `xml:"depth"` // meters per QuakeML
}

// Magnitude is one magnitude estimate.
type Magnitude struct {
	PublicID     string        `xml:"publicID,attr"`
	Mag          RealQuantity  `xml:"mag"`
	Type         string        `xml:"type"`
	CreationInfo *CreationInfo `xml:"creationInfo"`
}

// FocalMechanism carries an optional moment tensor and nodal planes.
type FocalMechanism struct {
	PublicID     string            `xml:"publicID,attr"`
	MomentTensor *MomentTensorElem `xml:"momentTensor"`
	NodalPlanes  *NodalPlanesElem  `xml:"nodalPlanes"`
	CreationInfo *CreationInfo     `xml:"creationInfo"`
}

type MomentTensorElem struct {
	ScalarMoment *RealQuantity `xml:"scalarMoment"`
	Tensor       *TensorElem   `xml:"tensor"`
	CreationInfo *CreationInfo `xml:"creationInfo"`
}

type TensorElem struct {
	Mrr *RealQuantity `xml:"Mrr"`
	Mtt *RealQuantity `xml:"Mtt"`
	Mpp *RealQuantity `xml:"Mpp"`
	Mrt *RealQuantity `xml:"Mrt"`
	Mrp *RealQuantity `xml:"Mrp"`
	Mtp *RealQuantity `xml:"Mtp"`
}

type NodalPlanesElem struct {
	NodalPlane1 *NodalPlaneElem `xml:"nodalPlane1"`
	NodalPlane2 *NodalPlaneElem `xml:"nodalPlane2"`
}

type NodalPlaneElem struct {
	Strike *RealQuantity `xml:"strike"`
	Dip    *RealQuantity `xml:"dip"`
	Rake   *RealQuantity `xml:"rake"`
}

type CreationInfo struct {
	AgencyID string `xml:"agencyID"`
	Author   string `xml:"author"`
}

type RealQuantity struct {
	Value       *float64 `xml:"value"`
	Uncertainty *float64 `xml:"uncertainty"`
}

type TimeQuantity struct {
	Value       string   `xml:"value"`
	Uncertainty *float64 `xml:"uncertainty"`
}

// ParseQuakeML parses an event/1 response document.
func ParseQuakeML(data []byte) ([]QuakeMLEvent, error) {
	var doc quakeMLDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.EventParameters.Events, nil
}

// PreferredOrigin returns the origin marked preferred, falling back to the
// first one. Nil when the event has no origins at all.
func (e *QuakeMLEvent) PreferredOrigin() *Origin {
	for i := range e.Origins {
		if e.Origins[i].PublicID != "" && e.Origins[i].PublicID == e.PreferredOriginID {
			return &e.Origins[i]
		}
	}
	if len(e.Origins) > 0 {
		return &e.Origins[0]
	}
	return nil
}

// PreferredMagnitude returns the magnitude marked preferred, falling back to
// the first one.
func (e *QuakeMLEvent) PreferredMagnitude() *Magnitude {
	for i := range e.Magnitudes {
		if e.Magnitudes[i].PublicID != "" && e.Magnitudes[i].PublicID == e.PreferredMagnitudeID {
			return &e.Magnitudes[i]
		}
	}
	if len(e.Magnitudes) > 0 {
		return &e.Magnitudes[0]
	}
	return nil
}

// PreferredFocalMechanism returns the focal mechanism marked preferred,
// falling back to the first one.
func (e *QuakeMLEvent) PreferredFocalMechanism() *FocalMechanism {
	for i := range e.FocalMechanisms {
		if e.FocalMechanisms[i].PublicID != "" && e.FocalMechanisms[i].PublicID == e.PreferredFocalMechanismID {
			return &e.FocalMechanisms[i]
		}
	}
	if len(e.FocalMechanisms) > 0 {
		return &e.FocalMechanisms[0]
	}
	return nil
}

var eventIDParam = regexp.MustCompile(`eventid=([^&\s]+)`)

// ExtractEventID normalizes a catalog resource identifier into a bare event
// id: a "eventid=<value>" query parameter wins, otherwise the last
// '/'-delimited path segment is used.
//
//	smi:service.iris.edu/fdsnws/event/1/query?eventid=755871  → 755871
//	smi:earthquake.usgs.gov/earthquakes/eventpage/usp0009m0p  → usp0009m0p
func ExtractEventID(resourceID string) string {
	if m := eventIDParam.FindStringSubmatch(resourceID); m != nil {
		return m[1]
	}
	if idx := strings.LastIndex(resourceID, "/"); idx >= 0 {
		return resourceID[idx+1:]
	}
	return resourceID
}
