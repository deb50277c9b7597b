package taup

import (
	"math"
	"sort"
)

const (
	earthRadiusKm = 6371.0
	degToRad      = math.Pi / 180.0
)

// phaseTable is a travel-time grid for one phase: times[i][j] is the travel
// time in seconds for a source at depths[i] km observed at distances[j]
// degrees. A zero time off the diagonal marks a geometry the phase does not
// reach (core shadow), except at distance zero where zero is the real value.
type phaseTable struct {
	distances []float64
	depths    []float64
	times     [][]float64
}

// velocityLayer is one layer of the model's compressional/shear profile,
// used for takeoff angles at the source.
type velocityLayer struct {
	topKm float64
	vp    float64
	vs    float64
}

// TableModel is a table-driven Model implementation.
type TableModel struct {
	name   string
	phases map[string]*phaseTable
	layers []velocityLayer
}

// Name returns the model name.
func (m *TableModel) Name() string { return m.name }

// TravelTimes interpolates the phase tables at the requested geometry.
func (m *TableModel) TravelTimes(depthKm, distanceDeg float64, phases []string) []Arrival {
	var out []Arrival
	for _, phase := range phases {
		table, ok := m.phases[phase]
		if !ok {
			continue
		}
		timeS, ok := table.interpolate(depthKm, distanceDeg)
		if !ok {
			continue
		}
		rayParam := table.rayParam(depthKm, distanceDeg)
		out = append(out, Arrival{
			Phase:          phase,
			TimeS:          timeS,
			RayParamSecDeg: rayParam,
			TakeoffDeg:     m.takeoffAngle(phase, depthKm, rayParam),
		})
	}
	return out
}

// interpolate bilinearly evaluates the grid. The second return is false when
// the geometry is outside the table or inside a shadow zone.
func (t *phaseTable) interpolate(depthKm, distanceDeg float64) (float64, bool) {
	if distanceDeg < t.distances[0] || distanceDeg > t.distances[len(t.distances)-1] {
		return 0, false
	}
	if depthKm < t.depths[0] {
		depthKm = t.depths[0]
	}
	if depthKm > t.depths[len(t.depths)-1] {
		return 0, false
	}

	di := cellIndex(t.depths, depthKm)
	ji := cellIndex(t.distances, distanceDeg)

	t00 := t.times[di][ji]
	t01 := t.times[di][ji+1]
	t10 := t.times[di+1][ji]
	t11 := t.times[di+1][ji+1]
	// Shadow zones are encoded as zero cells.
	if distanceDeg > 0 && (t01 == 0 || t11 == 0 || (ji > 0 && (t00 == 0 || t10 == 0))) {
		return 0, false
	}

	fd := frac(t.depths[di], t.depths[di+1], depthKm)
	fj := frac(t.distances[ji], t.distances[ji+1], distanceDeg)

	lower := t00 + (t01-t00)*fj
	upper := t10 + (t11-t10)*fj
	return lower + (upper-lower)*fd, true
}

// rayParam estimates dT/dDelta in s/deg by central difference on the grid.
func (t *phaseTable) rayParam(depthKm, distanceDeg float64) float64 {
	const h = 0.5 // degrees
	lo := distanceDeg - h
	hi := distanceDeg + h
	if lo < t.distances[0] {
		lo = t.distances[0]
	}
	if hi > t.distances[len(t.distances)-1] {
		hi = t.distances[len(t.distances)-1]
	}
	if hi <= lo {
		return 0
	}
	tLo, okLo := t.interpolate(depthKm, lo)
	tHi, okHi := t.interpolate(depthKm, hi)
	if !okLo || !okHi {
		return 0
	}
	return (tHi - tLo) / (hi - lo)
}

// takeoffAngle converts the ray parameter to a takeoff angle by sin(i) =
// p * v(z) / r(z), with p in s/rad and the source velocity read from the
// model's layer profile.
func (m *TableModel) takeoffAngle(phase string, depthKm, rayParamSecDeg float64) float64 {
	if rayParamSecDeg <= 0 {
		return 0
	}
	v := m.sourceVelocity(phase, depthKm)
	if v <= 0 {
		return 0
	}
	pRad := rayParamSecDeg / degToRad
	sinI := pRad * v / (earthRadiusKm - depthKm)
	if sinI > 1 {
		sinI = 1
	}
	return math.Asin(sinI) / degToRad
}

func (m *TableModel) sourceVelocity(phase string, depthKm float64) float64 {
	var v float64
	for _, layer := range m.layers {
		if depthKm >= layer.topKm {
			if len(phase) > 0 && (phase[0] == 'S' || phase[0] == 's') {
				v = layer.vs
			} else {
				v = layer.vp
			}
		}
	}
	return v
}

// cellIndex finds i so grid[i] <= x <= grid[i+1], clamped to the last cell.
func cellIndex(grid []float64, x float64) int {
	i := sort.SearchFloat64s(grid, x)
	if i > 0 {
		i--
	}
	if i > len(grid)-2 {
		i = len(grid) - 2
	}
	return i
}

func frac(a, b, x float64) float64 {
	if b == a {
		return 0
	}
	return (x - a) / (b - a)
}
