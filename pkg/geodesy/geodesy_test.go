package geodesy

import (
	"math"
	"math/rand"
	"testing"
)

func TestAngularDistanceKnownPoints(t *testing.T) {
	// Pole to equator is exactly 90 degrees.
	if d := AngularDistance(90, 0, 0, 0); math.Abs(d-90) > 1e-9 {
		t.Fatalf("pole→equator = %v, want 90", d)
	}
	// Antipodes.
	if d := AngularDistance(0, 0, 0, 180); math.Abs(d-180) > 1e-9 {
		t.Fatalf("antipodes = %v, want 180", d)
	}
	// Zero distance.
	if d := AngularDistance(35.5, -120.2, 35.5, -120.2); d != 0 {
		t.Fatalf("same point = %v, want 0", d)
	}
}

func TestAngularDistanceRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		d := AngularDistance(rng.Float64()*180-90, rng.Float64()*360-180,
			rng.Float64()*180-90, rng.Float64()*360-180)
		if d < 0 || d > 180 {
			t.Fatalf("distance %v outside [0,180]", d)
		}
	}
}

func TestDistanceAzimuthCardinal(t *testing.T) {
	m, az, baz := DistanceAzimuth(0, 0, 10, 0)
	wantM := rad10 * EarthRadiusM
	if math.Abs(m-wantM) > 1 {
		t.Fatalf("meters = %v, want %v", m, wantM)
	}
	if math.Abs(az-0) > 1e-6 {
		t.Fatalf("azimuth due north = %v, want 0", az)
	}
	if math.Abs(baz-180) > 1e-6 {
		t.Fatalf("back azimuth = %v, want 180", baz)
	}

	_, az, baz = DistanceAzimuth(0, 0, 0, 10)
	if math.Abs(az-90) > 1e-6 || math.Abs(baz-270) > 1e-6 {
		t.Fatalf("east: az=%v baz=%v, want 90/270", az, baz)
	}
}

const rad10 = 10 * math.Pi / 180

func TestBoundingBoxContainsCenterAndCardinalPoints(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		lat := rng.Float64()*160 - 80
		lon := rng.Float64()*360 - 180
		r := rng.Float64()*20 + 0.1

		minLon, minLat, maxLon, maxLat := BoundingBoxForRadius(lat, lon, r)

		if lat < minLat || lat > maxLat || lon < minLon || lon > maxLon {
			t.Fatalf("center (%v,%v) outside box (%v,%v,%v,%v)", lat, lon, minLon, minLat, maxLon, maxLat)
		}
		// North/south cardinal points, clamped at the poles.
		if n := math.Min(lat+r, 90); n > maxLat+1e-9 {
			t.Fatalf("north point %v above maxLat %v", n, maxLat)
		}
		if s := math.Max(lat-r, -90); s < minLat-1e-9 {
			t.Fatalf("south point %v below minLat %v", s, minLat)
		}
		// East/west points at the center latitude: longitude offset is
		// r/cos(lat), which the half-span guard must cover.
		dlon := r / math.Max(math.Cos(lat*math.Pi/180), 0.1)
		if dlon <= 180 {
			if lon+dlon > maxLon+1e-9 || lon-dlon < minLon-1e-9 {
				t.Fatalf("east/west points outside box at lat=%v r=%v", lat, r)
			}
		}
	}
}

func TestBoundingBoxPolarGuard(t *testing.T) {
	minLon, _, maxLon, maxLat := BoundingBoxForRadius(89, 0, 5)
	if maxLat != 90 {
		t.Fatalf("maxLat = %v, want clamp to 90", maxLat)
	}
	if maxLon-minLon > 360 {
		t.Fatalf("longitude span %v exceeds 360", maxLon-minLon)
	}
}
