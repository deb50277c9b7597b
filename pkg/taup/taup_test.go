package taup

import (
	"math"
	"testing"
)

func TestLoadCachesPerName(t *testing.T) {
	a, err := Load("iasp91")
	if err != nil {
		t.Fatalf("Load(iasp91) failed: %v", err)
	}
	b, err := Load("IASP91")
	if err != nil {
		t.Fatalf("Load(IASP91) failed: %v", err)
	}
	if a != b {
		t.Error("expected the same cached instance regardless of case")
	}
	other, err := Load("ak135")
	if err != nil {
		t.Fatalf("Load(ak135) failed: %v", err)
	}
	if other == a {
		t.Error("different model names must not share an instance")
	}
	if _, err := Load("prem-ocean"); err == nil {
		t.Error("expected an error for an unknown model")
	}
}

func TestTravelTimesGridNodes(t *testing.T) {
	m, err := Load("iasp91")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	arrivals := m.TravelTimes(0, 30, []string{"P", "S"})
	if len(arrivals) != 2 {
		t.Fatalf("expected P and S, got %d arrivals", len(arrivals))
	}
	if arrivals[0].Phase != "P" || arrivals[1].Phase != "S" {
		t.Errorf("arrivals not in requested phase order: %+v", arrivals)
	}
	if math.Abs(arrivals[0].TimeS-372.4) > 1e-9 {
		t.Errorf("P at 30 deg surface = %v, want grid value 372.4", arrivals[0].TimeS)
	}
	if math.Abs(arrivals[1].TimeS-672.2) > 1e-9 {
		t.Errorf("S at 30 deg surface = %v, want grid value 672.2", arrivals[1].TimeS)
	}
}

func TestTravelTimesInterpolation(t *testing.T) {
	m, _ := Load("iasp91")

	// Distance midpoint at the surface sits between the bracketing nodes.
	mid := m.TravelTimes(0, 35, []string{"P"})
	if len(mid) != 1 {
		t.Fatalf("expected one arrival, got %d", len(mid))
	}
	if mid[0].TimeS <= 372.4 || mid[0].TimeS >= 458.1 {
		t.Errorf("interpolated time %v outside node bracket (372.4, 458.1)", mid[0].TimeS)
	}

	// Deeper sources arrive earlier at teleseismic distance.
	shallow := m.TravelTimes(10, 60, []string{"P"})[0].TimeS
	deep := m.TravelTimes(600, 60, []string{"P"})[0].TimeS
	if deep >= shallow {
		t.Errorf("depth should shorten the path: shallow=%v deep=%v", shallow, deep)
	}

	// Travel time grows monotonically with distance.
	prev := 0.0
	for d := 10.0; d <= 100; d += 5 {
		arr := m.TravelTimes(50, d, []string{"P"})
		if len(arr) != 1 {
			t.Fatalf("no P arrival at %v deg", d)
		}
		if arr[0].TimeS <= prev {
			t.Errorf("time not increasing at %v deg: %v <= %v", d, arr[0].TimeS, prev)
		}
		prev = arr[0].TimeS
	}
}

func TestTravelTimesOutOfRange(t *testing.T) {
	m, _ := Load("iasp91")
	if arr := m.TravelTimes(0, 130, []string{"P"}); len(arr) != 0 {
		t.Errorf("expected no arrivals beyond the table, got %+v", arr)
	}
	if arr := m.TravelTimes(900, 40, []string{"P"}); len(arr) != 0 {
		t.Errorf("expected no arrivals below the deepest row, got %+v", arr)
	}
	if arr := m.TravelTimes(0, 40, []string{"PKiKP"}); len(arr) != 0 {
		t.Errorf("unknown phases must be skipped, got %+v", arr)
	}
}

func TestRayParamAndTakeoff(t *testing.T) {
	m, _ := Load("iasp91")
	arr := m.TravelTimes(100, 50, []string{"P"})
	if len(arr) != 1 {
		t.Fatal("expected a P arrival")
	}
	p := arr[0].RayParamSecDeg
	// Teleseismic P slowness sits in single-digit s/deg and falls off with
	// distance.
	if p <= 0 || p > 15 {
		t.Errorf("implausible ray parameter %v s/deg", p)
	}
	far := m.TravelTimes(100, 90, []string{"P"})[0].RayParamSecDeg
	if far >= p {
		t.Errorf("slowness should decrease with distance: %v >= %v", far, p)
	}
	if arr[0].TakeoffDeg <= 0 || arr[0].TakeoffDeg >= 90 {
		t.Errorf("takeoff angle %v outside (0, 90)", arr[0].TakeoffDeg)
	}
}

func TestModelsDiffer(t *testing.T) {
	iasp, _ := Load("iasp91")
	ak, _ := Load("ak135")
	ti := iasp.TravelTimes(0, 60, []string{"P"})[0].TimeS
	ta := ak.TravelTimes(0, 60, []string{"P"})[0].TimeS
	if ti == ta {
		t.Error("expected the models to disagree slightly")
	}
	if math.Abs(ti-ta) > 5 {
		t.Errorf("models disagree too much: %v vs %v", ti, ta)
	}
}
