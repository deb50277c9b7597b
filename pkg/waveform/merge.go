package waveform

import (
	"math"
	"sort"
)

// Merge folds co-identified traces (same stream, same event tag) into single
// traces, filling gaps with fillValue and accumulating the filled duration.
// Overlapping samples from a later fragment are dropped in favor of the
// earlier one. Traces with mismatched sample rates within a group are merged
// conservatively: the first fragment's rate wins and later fragments with a
// different rate are kept as separate traces.
func Merge(traces []Trace, fillValue float64) []Trace {
	type groupKey struct {
		stream  string
		eventID string
	}
	groups := make(map[groupKey][]Trace)
	var order []groupKey
	for _, tr := range traces {
		key := groupKey{stream: tr.SourceID(), eventID: tr.EventID}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], tr)
	}

	var out []Trace
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Start.Before(group[j].Start)
		})

		merged := group[0]
		merged.Samples = append([]float64(nil), merged.Samples...)
		for _, fragment := range group[1:] {
			if fragment.SampleRate != merged.SampleRate {
				out = append(out, fragment)
				continue
			}
			gapSamples := int(math.Round(fragment.Start.Sub(merged.End()).Seconds() * merged.SampleRate))
			switch {
			case gapSamples > 0:
				for i := 0; i < gapSamples; i++ {
					merged.Samples = append(merged.Samples, fillValue)
				}
				merged.GapFilledS += float64(gapSamples) / merged.SampleRate
				merged.Samples = append(merged.Samples, fragment.Samples...)
			case gapSamples < 0:
				// Overlap: keep the earlier samples, append the remainder.
				skip := -gapSamples
				if skip < len(fragment.Samples) {
					merged.Samples = append(merged.Samples, fragment.Samples[skip:]...)
				}
			default:
				merged.Samples = append(merged.Samples, fragment.Samples...)
			}
		}
		out = append(out, merged)
	}
	return out
}

// CleanGaps drops merged traces whose total filled-gap duration exceeds
// maxGapS. This is a data-quality gate: a trace that gappy is discarded
// rather than repaired.
func CleanGaps(traces []Trace, maxGapS float64) []Trace {
	var out []Trace
	for _, tr := range traces {
		if tr.GapFilledS > maxGapS {
			continue
		}
		out = append(out, tr)
	}
	return out
}
