// Package events implements earthquake catalog search, enrichment and the
// magnitude-depth filter.
package events

import (
	"context"
	"strings"
	"time"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/fdsn"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/geodesy"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/logging"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

// Catalog is the slice of the FDSN client the event service depends on.
type Catalog interface {
	Provider() string
	Events(ctx context.Context, q fdsn.EventQuery) ([]fdsn.QuakeMLEvent, error)
}

// CatalogFactory builds a catalog handle for a provider name.
type CatalogFactory func(name string) (Catalog, error)

// Service acquires and enriches earthquake catalog records.
type Service struct {
	logger     logging.Logger
	newCatalog CatalogFactory
}

// Option customizes a Service.
type Option func(*Service)

// WithCatalogFactory replaces the FDSN-backed catalog factory, mainly for
// tests.
func WithCatalogFactory(f CatalogFactory) Option {
	return func(s *Service) { s.newCatalog = f }
}

// NewService creates the event service.
func NewService(logger logging.Logger, opts ...Option) *Service {
	s := &Service{logger: logger}
	s.newCatalog = func(name string) (Catalog, error) {
		return fdsn.NewClient(fdsn.Config{Provider: name, Logger: logger})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchRequest describes a catalog search. Magnitude and depth bounds are
// only sent when their Limits flag is set. Depth bounds are kilometers, the
// FDSN convention.
type SearchRequest struct {
	Catalog   string
	CenterLat float64
	CenterLon float64
	Start     time.Time
	End       time.Time

	MinMagnitude    float64
	MaxMagnitude    float64
	MagnitudeLimits bool
	MinDepthKm      float64
	MaxDepthKm      float64
	DepthLimits     bool

	MinDistanceDeg float64
	MaxDistanceDeg float64
}

// Search queries a single catalog and returns normalized events within the
// closed distance interval from the request center. This layer does not
// retry: a catalog failure fails the whole search.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]models.Event, error) {
	client, err := s.newCatalog(req.Catalog)
	if err != nil {
		return nil, err
	}

	raw, err := client.Events(ctx, fdsn.EventQuery{
		Start:        req.Start,
		End:          req.End,
		MinMagnitude: req.MinMagnitude,
		MaxMagnitude: req.MaxMagnitude,
		MagLimits:    req.MagnitudeLimits,
		MinDepthKm:   req.MinDepthKm,
		MaxDepthKm:   req.MaxDepthKm,
		DepthLimits:  req.DepthLimits,
	})
	if err != nil {
		s.logger.WithFields(logging.Fields{
			"catalog": req.Catalog,
			"error":   err,
		}).Error("Event search failed")
		return nil, err
	}

	var out []models.Event
	for _, q := range raw {
		ev, ok := eventFromQuakeML(q, req.Catalog)
		if !ok {
			continue
		}
		ev.DistanceDeg = geodesy.AngularDistance(req.CenterLat, req.CenterLon, ev.Latitude, ev.Longitude)
		if ev.DistanceDeg < req.MinDistanceDeg || ev.DistanceDeg > req.MaxDistanceDeg {
			continue
		}
		out = append(out, ev)
	}
	s.logger.WithFields(logging.Fields{
		"catalog":  req.Catalog,
		"returned": len(raw),
		"kept":     len(out),
	}).Info("Event search complete")
	return out, nil
}

// DetailRequest asks for confirmation and moment-tensor enrichment of one
// event.
type DetailRequest struct {
	Catalog   string
	EventID   string
	EventTime time.Time
	Window    time.Duration
	// MTCatalogs overrides the catalogs tried after the primary one;
	// defaults to ISC then USGS.
	MTCatalogs []string
}

// GetEventDetails confirms an event by closest-in-time match within the
// window and collects moment tensors from every catalog in the prioritized
// list. Catalog failures are logged and skipped; the result is nil only when
// no catalog matched at all.
func (s *Service) GetEventDetails(ctx context.Context, req DetailRequest) (*models.Event, error) {
	if req.Window <= 0 {
		req.Window = time.Minute
	}
	extra := req.MTCatalogs
	if extra == nil {
		extra = []string{"ISC", "USGS"}
	}
	catalogs := []string{req.Catalog}
	for _, c := range extra {
		if !strings.EqualFold(c, req.Catalog) {
			catalogs = append(catalogs, c)
		}
	}

	query := fdsn.EventQuery{
		Start: req.EventTime.Add(-req.Window),
		End:   req.EventTime.Add(req.Window),
	}

	var confirmed *models.Event
	tensors := make(map[string]*models.MomentTensor)
	var tensorOrder []string

	for _, catalog := range catalogs {
		client, err := s.newCatalog(catalog)
		if err != nil {
			s.logger.WithFields(logging.Fields{"catalog": catalog, "error": err}).Warn("Skipping unknown detail catalog")
			continue
		}
		raw, err := client.Events(ctx, query)
		if err != nil {
			s.logger.WithFields(logging.Fields{"catalog": catalog, "error": err}).Warn("Detail lookup failed for catalog")
			continue
		}
		match, ok := closestInTime(raw, req.EventTime)
		if !ok {
			continue
		}
		if confirmed == nil {
			if ev, ok := eventFromQuakeML(match, catalog); ok {
				confirmed = &ev
			}
		}
		if mt := extractMomentTensor(match); !mt.Empty() {
			mt.SourceCatalog = catalog
			tensors[catalog] = mt
			tensorOrder = append(tensorOrder, catalog)
		}
	}

	if confirmed == nil {
		return nil, nil
	}
	if len(tensors) > 0 {
		confirmed.HasMomentTensor = true
		confirmed.MomentTensors = tensors
		confirmed.MomentTensor = tensors[tensorOrder[0]]
	}
	return confirmed, nil
}

// eventFromQuakeML normalizes one catalog event. Events without a usable
// origin are dropped.
func eventFromQuakeML(q fdsn.QuakeMLEvent, catalog string) (models.Event, bool) {
	origin := q.PreferredOrigin()
	if origin == nil || origin.Latitude.Value == nil || origin.Longitude.Value == nil {
		return models.Event{}, false
	}

	ev := models.Event{
		EventID:       fdsn.ExtractEventID(q.PublicID),
		Time:          origin.Time.Value,
		Latitude:      *origin.Latitude.Value,
		Longitude:     *origin.Longitude.Value,
		CatalogSource: catalog,
	}
	if origin.Depth.Value != nil {
		ev.DepthKm = *origin.Depth.Value / 1000.0
	}
	if mag := q.PreferredMagnitude(); mag != nil && mag.Mag.Value != nil {
		ev.Magnitude = *mag.Mag.Value
		ev.MagnitudeType = mag.Type
	}

	ev.OriginTimeUncertaintyS = origin.Time.Uncertainty
	ev.LatitudeUncertaintyDeg = origin.Latitude.Uncertainty
	ev.LongitudeUncertaintyDeg = origin.Longitude.Uncertainty
	if origin.Depth.Uncertainty != nil {
		km := *origin.Depth.Uncertainty / 1000.0
		ev.DepthUncertaintyKm = &km
	}

	ev.Mw, ev.Mb, ev.Ms = secondaryMagnitudes(q.Magnitudes)
	return ev, true
}

// secondaryMagnitudes picks the first Mw-, mb- and Ms-family magnitude from
// the event's full magnitude list.
func secondaryMagnitudes(mags []fdsn.Magnitude) (mw, mb, ms *models.SecondaryMagnitude) {
	for _, m := range mags {
		if m.Mag.Value == nil {
			continue
		}
		sec := &models.SecondaryMagnitude{Value: *m.Mag.Value, Type: m.Type}
		if m.CreationInfo != nil {
			sec.Author = m.CreationInfo.Author
			if sec.Author == "" {
				sec.Author = m.CreationInfo.AgencyID
			}
		}
		switch family := strings.ToLower(m.Type); {
		case strings.HasPrefix(family, "mw"):
			if mw == nil {
				mw = sec
			}
		case strings.HasPrefix(family, "mb"):
			if mb == nil {
				mb = sec
			}
		case strings.HasPrefix(family, "ms"):
			if ms == nil {
				ms = sec
			}
		}
	}
	return mw, mb, ms
}

// extractMomentTensor pulls whatever focal-mechanism data the event carries.
// Missing sub-fields are skipped; the result is Empty when nothing at all was
// extractable.
func extractMomentTensor(q fdsn.QuakeMLEvent) *models.MomentTensor {
	fm := q.PreferredFocalMechanism()
	if fm == nil {
		return nil
	}
	out := &models.MomentTensor{}
	if fm.MomentTensor != nil {
		if sm := fm.MomentTensor.ScalarMoment; sm != nil && sm.Value != nil {
			out.ScalarMoment = sm.Value
		}
		if t := fm.MomentTensor.Tensor; t != nil {
			tensor := &models.Tensor{
				Mrr: quantityValue(t.Mrr),
				Mtt: quantityValue(t.Mtt),
				Mpp: quantityValue(t.Mpp),
				Mrt: quantityValue(t.Mrt),
				Mrp: quantityValue(t.Mrp),
				Mtp: quantityValue(t.Mtp),
			}
			if tensor.Mrr != nil || tensor.Mtt != nil || tensor.Mpp != nil ||
				tensor.Mrt != nil || tensor.Mrp != nil || tensor.Mtp != nil {
				out.Tensor = tensor
			}
		}
		if ci := fm.MomentTensor.CreationInfo; ci != nil {
			out.SourceAgency = ci.AgencyID
			out.SourceAuthor = ci.Author
		}
	}
	if out.SourceAgency == "" && out.SourceAuthor == "" && fm.CreationInfo != nil {
		out.SourceAgency = fm.CreationInfo.AgencyID
		out.SourceAuthor = fm.CreationInfo.Author
	}
	if planes := fm.NodalPlanes; planes != nil {
		out.NodalPlanes = appendNodalPlane(out.NodalPlanes, "nodal_plane_1", planes.NodalPlane1)
		out.NodalPlanes = appendNodalPlane(out.NodalPlanes, "nodal_plane_2", planes.NodalPlane2)
	}
	return out
}

func appendNodalPlane(planes []models.NodalPlane, name string, p *fdsn.NodalPlaneElem) []models.NodalPlane {
	if p == nil {
		return planes
	}
	plane := models.NodalPlane{
		Name:   name,
		Strike: quantityValue(p.Strike),
		Dip:    quantityValue(p.Dip),
		Rake:   quantityValue(p.Rake),
	}
	if plane.Strike == nil && plane.Dip == nil && plane.Rake == nil {
		return planes
	}
	return append(planes, plane)
}

func quantityValue(q *fdsn.RealQuantity) *float64 {
	if q == nil {
		return nil
	}
	return q.Value
}

// closestInTime returns the raw event whose preferred origin time is nearest
// the target.
func closestInTime(raw []fdsn.QuakeMLEvent, target time.Time) (fdsn.QuakeMLEvent, bool) {
	best := -1
	var bestDiff time.Duration
	for i := range raw {
		origin := raw[i].PreferredOrigin()
		if origin == nil {
			continue
		}
		t, err := ParseTime(origin.Time.Value)
		if err != nil {
			continue
		}
		diff := target.Sub(t)
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	if best < 0 {
		return fdsn.QuakeMLEvent{}, false
	}
	return raw[best], true
}

// ParseTime parses the origin-time formats catalogs actually emit.
func ParseTime(s string) (time.Time, error) {
	return models.ParseEventTime(s)
}
