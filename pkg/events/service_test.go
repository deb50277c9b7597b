package events

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/fdsn"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/logging"
)

type fakeCatalog struct {
	name   string
	events []fdsn.QuakeMLEvent
	err    error
	calls  int
}

func (f *fakeCatalog) Provider() string { return f.name }

func (f *fakeCatalog) Events(ctx context.Context, q fdsn.EventQuery) ([]fdsn.QuakeMLEvent, error) {
	f.calls++
	return f.events, f.err
}

func fp(v float64) *float64 { return &v }

func quakeEvent(id, timeStr string, lat, lon, depthM, mag float64) fdsn.QuakeMLEvent {
	return fdsn.QuakeMLEvent{
		PublicID: id,
		Origins: []fdsn.Origin{{
			PublicID:  id + "/origin",
			Time:      fdsn.TimeQuantity{Value: timeStr},
			Latitude:  fdsn.RealQuantity{Value: fp(lat)},
			Longitude: fdsn.RealQuantity{Value: fp(lon)},
			Depth:     fdsn.RealQuantity{Value: fp(depthM)},
		}},
		Magnitudes: []fdsn.Magnitude{{
			Mag:  fdsn.RealQuantity{Value: fp(mag)},
			Type: "MW",
		}},
	}
}

func testService(catalogs map[string]*fakeCatalog) *Service {
	logger := logging.NewLogger()
	return NewService(logger, WithCatalogFactory(func(name string) (Catalog, error) {
		if c, ok := catalogs[name]; ok {
			return c, nil
		}
		return nil, errors.New("no such catalog")
	}))
}

func TestSearchNormalizesAndFiltersByDistance(t *testing.T) {
	catalog := &fakeCatalog{name: "IRIS", events: []fdsn.QuakeMLEvent{
		quakeEvent("smi:service.iris.edu/fdsnws/event/1/query?eventid=755871",
			"2011-03-11T05:46:24", 38.3, 142.5, 19700, 9.1),
		// Roughly 3 degrees from the center, below the distance floor.
		quakeEvent("smi:local/near", "2011-03-12T01:00:00", 37.0, 141.0, 10000, 6.0),
	}}
	svc := testService(map[string]*fakeCatalog{"IRIS": catalog})

	got, err := svc.Search(context.Background(), SearchRequest{
		Catalog:        "IRIS",
		CenterLat:      35.0,
		CenterLon:      139.7,
		MinDistanceDeg: 10,
		MaxDistanceDeg: 100,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("both events sit inside 10 deg of Tokyo; expected none kept, got %d", len(got))
	}

	got, err = svc.Search(context.Background(), SearchRequest{
		Catalog:        "IRIS",
		CenterLat:      35.0,
		CenterLon:      139.7,
		MinDistanceDeg: 0,
		MaxDistanceDeg: 100,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	ev := got[0]
	if ev.EventID != "755871" {
		t.Errorf("event id not normalized: %q", ev.EventID)
	}
	if ev.DepthKm != 19.7 {
		t.Errorf("depth = %v km, want 19.7", ev.DepthKm)
	}
	if ev.Magnitude != 9.1 || ev.MagnitudeType != "MW" {
		t.Errorf("magnitude = %v %q", ev.Magnitude, ev.MagnitudeType)
	}
	if ev.CatalogSource != "IRIS" {
		t.Errorf("catalog source = %q", ev.CatalogSource)
	}
	if ev.HasMomentTensor {
		t.Error("search results must not claim moment tensors")
	}
	if ev.DistanceDeg <= 0 {
		t.Errorf("distance not computed: %v", ev.DistanceDeg)
	}
}

func TestSearchPropagatesCatalogFailure(t *testing.T) {
	catalog := &fakeCatalog{name: "IRIS", err: errors.New("boom")}
	svc := testService(map[string]*fakeCatalog{"IRIS": catalog})
	if _, err := svc.Search(context.Background(), SearchRequest{Catalog: "IRIS", MaxDistanceDeg: 180}); err == nil {
		t.Fatal("expected the single-catalog failure to propagate")
	}
}

func TestSecondaryMagnitudes(t *testing.T) {
	mags := []fdsn.Magnitude{
		{Mag: fdsn.RealQuantity{Value: fp(6.1)}, Type: "mb", CreationInfo: &fdsn.CreationInfo{Author: "NEIC"}},
		{Mag: fdsn.RealQuantity{Value: fp(6.4)}, Type: "Mww", CreationInfo: &fdsn.CreationInfo{AgencyID: "GCMT"}},
		{Mag: fdsn.RealQuantity{Value: fp(6.0)}, Type: "Ms_20"},
		// Second mb must not displace the first.
		{Mag: fdsn.RealQuantity{Value: fp(5.9)}, Type: "mB"},
	}
	mw, mb, ms := secondaryMagnitudes(mags)
	if mw == nil || mw.Value != 6.4 || mw.Author != "GCMT" {
		t.Errorf("mw = %+v", mw)
	}
	if mb == nil || mb.Value != 6.1 || mb.Author != "NEIC" {
		t.Errorf("mb = %+v", mb)
	}
	if ms == nil || ms.Value != 6.0 || ms.Type != "Ms_20" {
		t.Errorf("ms = %+v", ms)
	}
}

func momentTensorEvent(id string, timeStr string) fdsn.QuakeMLEvent {
	ev := quakeEvent(id, timeStr, 38.3, 142.5, 19700, 9.1)
	ev.FocalMechanisms = []fdsn.FocalMechanism{{
		PublicID: id + "/fm",
		MomentTensor: &fdsn.MomentTensorElem{
			ScalarMoment: &fdsn.RealQuantity{Value: fp(5.31e22)},
			Tensor: &fdsn.TensorElem{
				Mrr: &fdsn.RealQuantity{Value: fp(1.73e22)},
				Mtt: &fdsn.RealQuantity{Value: fp(-2.81e21)},
			},
			CreationInfo: &fdsn.CreationInfo{AgencyID: "GCMT"},
		},
		NodalPlanes: &fdsn.NodalPlanesElem{
			NodalPlane1: &fdsn.NodalPlaneElem{Strike: &fdsn.RealQuantity{Value: fp(203)}, Dip: &fdsn.RealQuantity{Value: fp(10)}},
		},
	}}
	return ev
}

func TestGetEventDetailsMergesTensors(t *testing.T) {
	eventTime := time.Date(2011, 3, 11, 5, 46, 24, 0, time.UTC)
	primary := &fakeCatalog{name: "IRIS", events: []fdsn.QuakeMLEvent{
		quakeEvent("smi:x/query?eventid=755871", "2011-03-11T05:46:24", 38.3, 142.5, 19700, 9.1),
	}}
	isc := &fakeCatalog{name: "ISC", events: []fdsn.QuakeMLEvent{
		momentTensorEvent("smi:isc/859", "2011-03-11T05:46:26"),
	}}
	usgs := &fakeCatalog{name: "USGS", events: []fdsn.QuakeMLEvent{
		momentTensorEvent("smi:usgs/usp123", "2011-03-11T05:46:25"),
	}}
	svc := testService(map[string]*fakeCatalog{"IRIS": primary, "ISC": isc, "USGS": usgs})

	ev, err := svc.GetEventDetails(context.Background(), DetailRequest{
		Catalog:   "IRIS",
		EventID:   "755871",
		EventTime: eventTime,
		Window:    time.Minute,
	})
	if err != nil {
		t.Fatalf("GetEventDetails failed: %v", err)
	}
	if ev == nil {
		t.Fatal("expected a confirmed event")
	}
	if ev.EventID != "755871" || ev.CatalogSource != "IRIS" {
		t.Errorf("confirmed event should come from the primary catalog: %q from %q", ev.EventID, ev.CatalogSource)
	}
	if !ev.HasMomentTensor {
		t.Fatal("expected moment tensors from the secondary catalogs")
	}
	if len(ev.MomentTensors) != 2 {
		t.Fatalf("expected tensors from ISC and USGS, got %v", reflect.ValueOf(ev.MomentTensors).MapKeys())
	}
	// The first catalog in priority order that produced a tensor is promoted.
	if ev.MomentTensor == nil || ev.MomentTensor.SourceCatalog != "ISC" {
		t.Errorf("promoted tensor = %+v", ev.MomentTensor)
	}
	if ev.MomentTensors["USGS"].SourceAgency != "GCMT" {
		t.Errorf("tensor provenance lost: %+v", ev.MomentTensors["USGS"])
	}
	if primary.calls != 1 || isc.calls != 1 || usgs.calls != 1 {
		t.Errorf("each catalog should be queried once: %d/%d/%d", primary.calls, isc.calls, usgs.calls)
	}
}

func TestGetEventDetailsPartialSuccess(t *testing.T) {
	eventTime := time.Date(2011, 3, 11, 5, 46, 24, 0, time.UTC)
	primary := &fakeCatalog{name: "IRIS", events: []fdsn.QuakeMLEvent{
		quakeEvent("smi:x/query?eventid=755871", "2011-03-11T05:46:24", 38.3, 142.5, 19700, 9.1),
	}}
	isc := &fakeCatalog{name: "ISC", err: errors.New("down")}
	usgs := &fakeCatalog{name: "USGS"}
	svc := testService(map[string]*fakeCatalog{"IRIS": primary, "ISC": isc, "USGS": usgs})

	ev, err := svc.GetEventDetails(context.Background(), DetailRequest{
		Catalog: "IRIS", EventTime: eventTime, Window: time.Minute,
	})
	if err != nil {
		t.Fatalf("GetEventDetails failed: %v", err)
	}
	if ev == nil {
		t.Fatal("event found without tensors must still return a record")
	}
	if ev.HasMomentTensor || ev.MomentTensor != nil {
		t.Error("no tensor data should be claimed")
	}
}

func TestGetEventDetailsNoMatchAnywhere(t *testing.T) {
	svc := testService(map[string]*fakeCatalog{
		"IRIS": {name: "IRIS"},
		"ISC":  {name: "ISC"},
		"USGS": {name: "USGS"},
	})
	ev, err := svc.GetEventDetails(context.Background(), DetailRequest{
		Catalog: "IRIS", EventTime: time.Now(), Window: time.Minute,
	})
	if err != nil {
		t.Fatalf("GetEventDetails failed: %v", err)
	}
	if ev != nil {
		t.Fatalf("expected nil when no catalog matched, got %+v", ev)
	}
}

func TestClosestInTime(t *testing.T) {
	target := time.Date(2011, 3, 11, 5, 46, 24, 0, time.UTC)
	raw := []fdsn.QuakeMLEvent{
		quakeEvent("smi:a", "2011-03-11T05:45:00", 0, 0, 0, 5),
		quakeEvent("smi:b", "2011-03-11T05:46:30", 0, 0, 0, 5),
		quakeEvent("smi:c", "2011-03-11T05:50:00", 0, 0, 0, 5),
	}
	match, ok := closestInTime(raw, target)
	if !ok || match.PublicID != "smi:b" {
		t.Errorf("closest match = %v (%v)", match.PublicID, ok)
	}
	if _, ok := closestInTime(nil, target); ok {
		t.Error("empty input must not match")
	}
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{
		"2011-03-11T05:46:24",
		"2011-03-11T05:46:24.120000",
		"2011-03-11T05:46:24Z",
		"2011-03-11T05:46:24.12Z",
	} {
		ts, err := ParseTime(s)
		if err != nil {
			t.Errorf("ParseTime(%q) failed: %v", s, err)
			continue
		}
		if ts.Year() != 2011 || ts.Second() != 24 {
			t.Errorf("ParseTime(%q) = %v", s, ts)
		}
	}
	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("expected an error for junk input")
	}
}
