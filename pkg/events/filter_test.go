package events

import (
	"math"
	"testing"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

func TestComputeCutoffBenchmarks(t *testing.T) {
	cases := []struct {
		dist, depth, want float64
	}{
		{30, 700, 4.2},
		{30, 0, 5.2},
		{105, 0, 5.7},
		{180, 0, 6.2},
	}
	for _, tc := range cases {
		got := ComputeCutoff(tc.dist, tc.depth)
		if math.Abs(got-tc.want) > 0.05 {
			t.Errorf("ComputeCutoff(%v, %v) = %v, want %v", tc.dist, tc.depth, got, tc.want)
		}
	}
}

func TestComputeCutoffUnclamped(t *testing.T) {
	if got := ComputeCutoff(0, 700); got >= 4 {
		t.Errorf("expected a low cutoff for near deep events, got %v", got)
	}
	if got := ComputeCutoff(1000, 0); got <= 10 {
		t.Errorf("cutoff must not be clamped above, got %v", got)
	}
}

func TestApplyMagnitudeDepthFilterDisabled(t *testing.T) {
	events := []models.Event{
		{EventID: "a", Magnitude: 1, DistanceDeg: 90},
		{EventID: "b", Magnitude: 9, DistanceDeg: 30},
	}
	passing, filtered := ApplyMagnitudeDepthFilter(events, false)
	if len(passing) != 2 || len(filtered) != 0 {
		t.Fatalf("disabled filter must pass everything: %d/%d", len(passing), len(filtered))
	}
	if passing[0].EventID != "a" || passing[1].EventID != "b" {
		t.Error("disabled filter must preserve order")
	}
	for _, ev := range passing {
		if ev.DynamicCutoff != nil {
			t.Errorf("disabled filter must not annotate cutoffs: %v", *ev.DynamicCutoff)
		}
	}
}

func TestApplyMagnitudeDepthFilterPartitions(t *testing.T) {
	// Cutoff at 60 deg / 100 km is 5.2 + 0.2 - 0.142857... = 5.2571...
	boundary := math.Round(ComputeCutoff(60, 100)*100) / 100
	events := []models.Event{
		{EventID: "below", Magnitude: boundary - 0.01, DistanceDeg: 60, DepthKm: 100},
		{EventID: "exact", Magnitude: boundary, DistanceDeg: 60, DepthKm: 100},
		{EventID: "above", Magnitude: boundary + 1, DistanceDeg: 60, DepthKm: 100},
	}
	passing, filtered := ApplyMagnitudeDepthFilter(events, true)
	if len(passing) != 2 {
		t.Fatalf("expected 2 passing, got %d", len(passing))
	}
	// The boundary is inclusive.
	if passing[0].EventID != "exact" || passing[1].EventID != "above" {
		t.Errorf("unexpected passing set: %v, %v", passing[0].EventID, passing[1].EventID)
	}
	if len(filtered) != 1 || filtered[0].EventID != "below" {
		t.Fatalf("unexpected filtered set: %+v", filtered)
	}
	for _, ev := range append(passing, filtered...) {
		if ev.DynamicCutoff == nil {
			t.Fatalf("event %s missing cutoff annotation", ev.EventID)
		}
		if *ev.DynamicCutoff != boundary {
			t.Errorf("event %s cutoff = %v, want %v", ev.EventID, *ev.DynamicCutoff, boundary)
		}
	}
}

func TestCutoffPreview(t *testing.T) {
	curves := CutoffPreview(30, 90, 30, []float64{0, 700})
	if len(curves) != 2 {
		t.Fatalf("expected 2 curves, got %d", len(curves))
	}
	if len(curves[0].Distances) != 3 {
		t.Fatalf("expected samples at 30/60/90, got %v", curves[0].Distances)
	}
	if curves[0].Cutoffs[0] != 5.2 {
		t.Errorf("surface curve at 30 deg = %v, want 5.2", curves[0].Cutoffs[0])
	}
	if curves[1].Cutoffs[0] >= curves[0].Cutoffs[0] {
		t.Error("deeper curve must sit below the surface curve")
	}
}
