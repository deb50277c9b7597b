package waveform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/mseed"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/sac"
)

// Format selects the on-disk trace format.
type Format string

const (
	FormatSAC      Format = "sac"
	FormatMiniSEED Format = "mseed"
)

// Save writes every trace of the collection under
// outputDir/waveforms/<bucket>/NET.STA.LOC.CHA.<ext>, where bucket is the
// trace's event id, falling back to a start-time bucket for untagged traces.
// Per-trace failures are logged by the caller via the returned error list;
// the count of files written is returned.
func Save(collection *Collection, outputDir string, format Format) (int, []error) {
	saved := 0
	var errs []error
	for i := range collection.Traces {
		tr := &collection.Traces[i]
		bucket := tr.EventID
		if bucket == "" {
			bucket = tr.Start.UTC().Format("20060102T150405")
		}
		dir := filepath.Join(outputDir, "waveforms", sanitize(bucket))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := writeTrace(tr, dir, format); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", tr.SourceID(), err))
			continue
		}
		saved++
	}
	return saved, errs
}

func writeTrace(tr *Trace, dir string, format Format) error {
	name := sanitize(tr.SourceID())
	switch format {
	case FormatMiniSEED:
		data, err := mseed.EncodeFloat32(mseed.Record{
			Network:    tr.Network,
			Station:    tr.Station,
			Location:   tr.Location,
			Channel:    tr.Channel,
			Start:      tr.Start,
			SampleRate: tr.SampleRate,
			Samples:    tr.Samples,
		})
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, name+".mseed"), data, 0o644)
	case FormatSAC, "":
		f, err := os.Create(filepath.Join(dir, name+".sac"))
		if err != nil {
			return err
		}
		defer f.Close()
		return sac.Write(f, sac.Trace{
			Network:    tr.Network,
			Station:    tr.Station,
			Location:   tr.Location,
			Channel:    tr.Channel,
			Start:      tr.Start,
			SampleRate: tr.SampleRate,
			Samples:    tr.Samples,
		})
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// sanitize replaces filesystem-unsafe runes in bucket and file names.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
