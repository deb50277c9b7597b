package project

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/logging"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(logging.NewLogger())
}

func sampleStations() []models.Station {
	elev := 1850.0
	return []models.Station{
		{
			Network:   "IU",
			Station:   "ANMO",
			Latitude:  34.946,
			Longitude: -106.457,
			Elevation: &elev,
			SiteName:  "Albuquerque, New Mexico",
			StartDate: "1989-08-29T00:00:00",
			Channels:  []string{"BHZ", "BHN", "BHE"},
			Provider:  "IRIS",
		},
		{
			Network:   "II",
			Station:   "KDAK",
			Latitude:  57.783,
			Longitude: -152.583,
			Provider:  "IRIS",
		},
	}
}

func sampleEvents() []models.Event {
	cutoff := 5.59
	return []models.Event{
		{
			EventID:       "official20110311054624120_30",
			Time:          "2011-03-11T05:46:24",
			Latitude:      38.297,
			Longitude:     142.373,
			DepthKm:       29.0,
			Magnitude:     9.1,
			MagnitudeType: "MW",
			CatalogSource: "IRIS",
			DistanceDeg:   85.3,
			DynamicCutoff: &cutoff,
			Mw:            &models.SecondaryMagnitude{Value: 9.1, Type: "Mww", Author: "US"},
		},
		{
			EventID:       "usp000hvnu",
			Time:          "2011-03-11T06:15:40",
			Latitude:      36.281,
			Longitude:     141.111,
			DepthKm:       42.0,
			Magnitude:     7.9,
			CatalogSource: "USGS",
		},
	}
}

func TestInitCreatesLayoutAndRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	s := testStore(t)
	if err := s.Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	for _, sub := range []string{"waveforms", "metadata", "exports", "logs"} {
		if fi, err := os.Stat(filepath.Join(dir, sub)); err != nil || !fi.IsDir() {
			t.Errorf("missing layout dir %s: %v", sub, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "project.json")); err != nil {
		t.Fatalf("project file not written: %v", err)
	}
	if err := testStore(t).Init(dir); err == nil {
		t.Fatal("expected error initializing over an existing project")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := testStore(t)
	if err := s.Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.SetStations(sampleStations())
	s.SetEvents(sampleEvents())
	s.SetArrivals(
		models.ArrivalTimes{"usp000hvnu-IU.ANMO": {"P": 731.2}},
		models.ArrivalDetails{"usp000hvnu-IU.ANMO": {
			EventID: "usp000hvnu", Network: "IU", Station: "ANMO",
			DistanceDeg: 85.3,
			Phases:      map[string]models.PhaseArrival{"P": {TimeS: 731.2}},
		}},
	)
	s.SetDownloadConfig(DownloadConfig{ChannelSpec: "BH?", TimeBeforeS: 60, TimeAfterS: 600, Bulk: true, ChunkSize: 50})
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := testStore(t)
	if err := loaded.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.Stations(); len(got) != 2 || got[0].Key() != "IU.ANMO" {
		t.Fatalf("stations did not round-trip: %+v", got)
	}
	evs := loaded.Events()
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	if evs[0].DynamicCutoff == nil || *evs[0].DynamicCutoff != 5.59 {
		t.Errorf("dynamic cutoff lost in round trip: %+v", evs[0].DynamicCutoff)
	}
	if evs[0].Mw == nil || evs[0].Mw.Author != "US" {
		t.Errorf("secondary magnitude lost: %+v", evs[0].Mw)
	}
	if tt := loaded.ArrivalTimes()["usp000hvnu-IU.ANMO"]["P"]; tt != 731.2 {
		t.Errorf("arrival time = %v, want 731.2", tt)
	}
	if cfg := loaded.DownloadConfig(); cfg.ChannelSpec != "BH?" || cfg.ChunkSize != 50 {
		t.Errorf("download config did not round-trip: %+v", cfg)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "project.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := testStore(t).Load(dir); err == nil {
		t.Fatal("expected error on corrupt project file")
	}
}

func TestHistoryEntriesAreStamped(t *testing.T) {
	s := testStore(t)
	s.SetStations(sampleStations())
	s.SetEvents(sampleEvents())
	hist := s.History()
	if len(hist) != 2 {
		t.Fatalf("got %d history entries, want 2", len(hist))
	}
	seen := map[string]bool{}
	for _, h := range hist {
		if h.ID == "" || h.Timestamp.IsZero() || h.Action == "" {
			t.Errorf("incomplete history entry: %+v", h)
		}
		if seen[h.ID] {
			t.Errorf("duplicate history id %s", h.ID)
		}
		seen[h.ID] = true
	}
	if hist[0].Action != "stations_set" || hist[1].Action != "events_set" {
		t.Errorf("unexpected action order: %s, %s", hist[0].Action, hist[1].Action)
	}
}

func TestUpdateEvent(t *testing.T) {
	s := testStore(t)
	s.SetEvents(sampleEvents())
	enriched := sampleEvents()[1]
	enriched.HasMomentTensor = true
	enriched.MomentTensors = map[string]*models.MomentTensor{"ISC": {SourceAgency: "ISC"}}
	if !s.UpdateEvent(enriched) {
		t.Fatal("UpdateEvent reported no match")
	}
	if got := s.Events()[1]; !got.HasMomentTensor {
		t.Error("update not applied")
	}
	if s.UpdateEvent(models.Event{EventID: "nope"}) {
		t.Error("UpdateEvent matched a missing id")
	}
}

func TestExportSummary(t *testing.T) {
	s := testStore(t)
	s.SetStations(sampleStations())
	s.SetEvents(sampleEvents())
	sum := s.ExportSummary()
	if sum.StationCount != 2 || sum.EventCount != 2 || sum.HistoryCount != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestStationCSVRoundTrip(t *testing.T) {
	s := testStore(t)
	s.SetStations(sampleStations())
	var buf bytes.Buffer
	if err := s.ExportStationsCSV(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d CSV lines, want header + 2 rows", len(lines))
	}
	if lines[0] != strings.Join(stationHeader, ",") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "BHZ|BHN|BHE") {
		t.Errorf("channels not joined: %q", lines[1])
	}

	dst := testStore(t)
	n, err := dst.ImportStationsCSV(&buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d stations, want 2", n)
	}
	got := dst.Stations()
	if got[0].Elevation == nil || *got[0].Elevation != 1850.0 {
		t.Errorf("elevation lost: %+v", got[0].Elevation)
	}
	if len(got[0].Channels) != 3 || got[0].Channels[2] != "BHE" {
		t.Errorf("channels lost: %+v", got[0].Channels)
	}
	if got[1].Elevation != nil {
		t.Errorf("empty elevation should stay nil, got %v", *got[1].Elevation)
	}
}

func TestEventCSVColumns(t *testing.T) {
	s := testStore(t)
	s.SetEvents(sampleEvents())
	var buf bytes.Buffer
	if err := s.ExportEventsCSV(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d CSV lines, want 3", len(lines))
	}
	first := strings.Split(lines[1], ",")
	if len(first) != len(eventHeader) {
		t.Fatalf("row has %d columns, want %d", len(first), len(eventHeader))
	}
	if first[9] != "5.59" {
		t.Errorf("dynamic_cutoff column = %q, want 5.59", first[9])
	}
	if first[10] != "9.1" {
		t.Errorf("mw column = %q, want 9.1", first[10])
	}
	second := strings.Split(lines[2], ",")
	if second[9] != "" || second[10] != "" {
		t.Errorf("absent optionals should be empty, got cutoff=%q mw=%q", second[9], second[10])
	}
}

func TestEventJSONRoundTripKeepsTensors(t *testing.T) {
	s := testStore(t)
	evs := sampleEvents()
	mrr := 1.9e22
	evs[0].HasMomentTensor = true
	evs[0].MomentTensor = &models.MomentTensor{
		Tensor:       &models.Tensor{Mrr: &mrr},
		SourceAgency: "GCMT",
	}
	s.SetEvents(evs)
	var buf bytes.Buffer
	if err := s.ExportEventsJSON(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	dst := testStore(t)
	n, err := dst.ImportEventsJSON(&buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d events, want 2", n)
	}
	mt := dst.Events()[0].MomentTensor
	if mt == nil || mt.Tensor == nil || mt.Tensor.Mrr == nil || *mt.Tensor.Mrr != 1.9e22 {
		t.Fatalf("moment tensor lost in round trip: %+v", mt)
	}
}

func TestArrivalCSVRows(t *testing.T) {
	s := testStore(t)
	s.SetArrivals(nil, models.ArrivalDetails{
		"usp000hvnu-IU.ANMO": {
			EventID: "usp000hvnu", Network: "IU", Station: "ANMO",
			DistanceDeg: 85.3, DistanceKm: 9483.2,
			Phases: map[string]models.PhaseArrival{
				"P": {TimeS: 731.2},
				"S": {TimeS: 1340.5},
			},
		},
	})
	var buf bytes.Buffer
	if err := s.ExportArrivalsCSV(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 phase rows", len(lines))
	}
	if !strings.Contains(buf.String(), "usp000hvnu,IU,ANMO,85.3,9483.2,P,731.2") {
		t.Errorf("missing P row in:\n%s", buf.String())
	}
}
