// Package waveform implements bulk waveform downloading, gap cleanup and
// persistence.
package waveform

import (
	"fmt"
	"time"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/mseed"
)

// Trace is one contiguous channel of samples tagged with the event it was
// requested for. GapFilledS accumulates the total gap duration that merging
// had to fill.
type Trace struct {
	Network    string
	Station    string
	Location   string
	Channel    string
	Start      time.Time
	SampleRate float64
	Samples    []float64

	EventID    string
	GapFilledS float64
}

// SourceID is the NET.STA.LOC.CHA stream identifier.
func (t *Trace) SourceID() string {
	return fmt.Sprintf("%s.%s.%s.%s", t.Network, t.Station, t.Location, t.Channel)
}

// End returns the time just past the last sample.
func (t *Trace) End() time.Time {
	if t.SampleRate <= 0 || len(t.Samples) == 0 {
		return t.Start
	}
	span := float64(len(t.Samples)) / t.SampleRate
	return t.Start.Add(time.Duration(span * float64(time.Second)))
}

// Collection is the result of one download run.
type Collection struct {
	Traces []Trace
}

// Add appends a trace.
func (c *Collection) Add(t Trace) { c.Traces = append(c.Traces, t) }

// Len returns the trace count.
func (c *Collection) Len() int { return len(c.Traces) }

// tracesFromRecords folds consecutive records of the same stream into
// traces, preserving record order. Positional event tagging depends on this
// order being the response order.
func tracesFromRecords(records []mseed.Record) []Trace {
	var out []Trace
	for _, rec := range records {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.SourceID() == rec.SourceID() && last.SampleRate == rec.SampleRate && sameInstant(last.End(), rec.Start) {
				last.Samples = append(last.Samples, rec.Samples...)
				continue
			}
		}
		out = append(out, Trace{
			Network:    rec.Network,
			Station:    rec.Station,
			Location:   rec.Location,
			Channel:    rec.Channel,
			Start:      rec.Start,
			SampleRate: rec.SampleRate,
			Samples:    append([]float64(nil), rec.Samples...),
		})
	}
	return out
}

// sameInstant tolerates sub-sample rounding between record boundaries.
func sameInstant(a, b time.Time) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff < time.Millisecond
}
