package waveform

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func traceAt(start time.Time, samples int, value float64) Trace {
	data := make([]float64, samples)
	for i := range data {
		data[i] = value
	}
	return Trace{
		Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ",
		Start: start, SampleRate: 20, Samples: data, EventID: "755871",
	}
}

func TestMergeFillsGaps(t *testing.T) {
	start := time.Date(2011, 3, 11, 5, 46, 0, 0, time.UTC)
	a := traceAt(start, 100, 1)                    // 5 s of data
	b := traceAt(start.Add(7*time.Second), 100, 2) // 2 s gap

	merged := Merge([]Trace{a, b}, -999)
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged trace, got %d", len(merged))
	}
	tr := merged[0]
	// 100 + 40 fill + 100.
	if len(tr.Samples) != 240 {
		t.Fatalf("merged length = %d, want 240", len(tr.Samples))
	}
	if tr.GapFilledS != 2 {
		t.Errorf("gap duration = %v s, want 2", tr.GapFilledS)
	}
	if tr.Samples[100] != -999 || tr.Samples[139] != -999 {
		t.Errorf("gap not filled with fill value: %v, %v", tr.Samples[100], tr.Samples[139])
	}
	if tr.Samples[140] != 2 {
		t.Errorf("post-gap samples wrong: %v", tr.Samples[140])
	}
	if !tr.End().Equal(start.Add(12 * time.Second)) {
		t.Errorf("merged end = %v, want start+12s", tr.End())
	}
}

func TestMergeHandlesOverlap(t *testing.T) {
	start := time.Date(2011, 3, 11, 5, 46, 0, 0, time.UTC)
	a := traceAt(start, 100, 1)                    // ends at +5 s
	b := traceAt(start.Add(4*time.Second), 40, 2)  // 1 s overlap, 1 s new

	merged := Merge([]Trace{a, b}, 0)
	if len(merged) != 1 {
		t.Fatalf("expected 1 merged trace, got %d", len(merged))
	}
	tr := merged[0]
	if len(tr.Samples) != 120 {
		t.Fatalf("merged length = %d, want 120 (overlap dropped)", len(tr.Samples))
	}
	if tr.GapFilledS != 0 {
		t.Errorf("overlap must not count as gap: %v", tr.GapFilledS)
	}
}

func TestMergeKeepsSeparateGroups(t *testing.T) {
	start := time.Date(2011, 3, 11, 5, 46, 0, 0, time.UTC)
	a := traceAt(start, 10, 1)
	b := traceAt(start, 10, 1)
	b.Channel = "BHN"
	c := traceAt(start, 10, 1)
	c.EventID = "other"

	merged := Merge([]Trace{a, b, c}, 0)
	if len(merged) != 3 {
		t.Fatalf("different streams/events must not merge, got %d traces", len(merged))
	}
}

func TestCleanGapsThreshold(t *testing.T) {
	good := Trace{Network: "IU", Station: "A", GapFilledS: 4.9}
	bad := Trace{Network: "IU", Station: "B", GapFilledS: 5.1}
	exact := Trace{Network: "IU", Station: "C", GapFilledS: 5.0}

	cleaned := CleanGaps([]Trace{good, bad, exact}, 5.0)
	if len(cleaned) != 2 {
		t.Fatalf("expected 2 surviving traces, got %d", len(cleaned))
	}
	for _, tr := range cleaned {
		if tr.Station == "B" {
			t.Error("trace exceeding the gap threshold must be dropped")
		}
	}
}

func TestSave(t *testing.T) {
	start := time.Date(2011, 3, 11, 5, 46, 0, 0, time.UTC)
	tagged := traceAt(start, 50, 1)
	untagged := traceAt(start, 50, 1)
	untagged.EventID = ""
	untagged.Channel = "BHN"
	weird := traceAt(start, 50, 1)
	weird.EventID = "smi:org/path?x=1"
	weird.Channel = "BHE"

	dir := t.TempDir()
	col := &Collection{Traces: []Trace{tagged, untagged, weird}}
	saved, errs := Save(col, dir, FormatSAC)
	if len(errs) != 0 {
		t.Fatalf("Save errors: %v", errs)
	}
	if saved != 3 {
		t.Fatalf("saved = %d, want 3", saved)
	}

	if _, err := os.Stat(filepath.Join(dir, "waveforms", "755871", "IU.ANMO.00.BHZ.sac")); err != nil {
		t.Errorf("tagged trace file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "waveforms", "20110311T054600", "IU.ANMO.00.BHN.sac")); err != nil {
		t.Errorf("untagged trace must use the start-time bucket: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "waveforms", "smi_org_path_x_1", "IU.ANMO.00.BHE.sac")); err != nil {
		t.Errorf("unsafe runes must be sanitized: %v", err)
	}
}

func TestSaveMiniSEED(t *testing.T) {
	start := time.Date(2011, 3, 11, 5, 46, 0, 0, time.UTC)
	dir := t.TempDir()
	col := &Collection{Traces: []Trace{traceAt(start, 50, 1)}}
	saved, errs := Save(col, dir, FormatMiniSEED)
	if len(errs) != 0 || saved != 1 {
		t.Fatalf("saved = %d, errs = %v", saved, errs)
	}
	data, err := os.ReadFile(filepath.Join(dir, "waveforms", "755871", "IU.ANMO.00.BHZ.mseed"))
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if len(data)%512 != 0 {
		t.Errorf("miniSEED output length %d not record aligned", len(data))
	}
}
