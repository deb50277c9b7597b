// Package project holds the mutable session state of an acquisition run and
// its on-disk project layout. The store is an explicit value handed to
// collaborators, not process-global state.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/logging"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

const projectFile = "project.json"

// Layout subdirectories created by Init.
var layoutDirs = []string{"waveforms", "metadata", "exports", "logs"}

// DownloadConfig is the persisted download parameter set.
type DownloadConfig struct {
	ChannelSpec string   `json:"channel_spec"`
	Location    string   `json:"location"`
	TimeBeforeS float64  `json:"time_before_s"`
	TimeAfterS  float64  `json:"time_after_s"`
	Bulk        bool     `json:"bulk"`
	ChunkSize   int      `json:"chunk_size"`
	Format      string   `json:"format"`
	CleanGaps   bool     `json:"clean_gaps"`
	FillValue   float64  `json:"fill_value"`
	MaxGapS     float64  `json:"max_gap_s"`
	Model       string   `json:"model"`
	Phases      []string `json:"phases"`
}

// HistoryEntry records one session action.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details,omitempty"`
}

// state is the serialized form of a project.
type state struct {
	Stations       []models.Station      `json:"stations,omitempty"`
	Events         []models.Event        `json:"events,omitempty"`
	ArrivalTimes   models.ArrivalTimes   `json:"arrival_times,omitempty"`
	ArrivalDetails models.ArrivalDetails `json:"arrival_details,omitempty"`
	Download       DownloadConfig        `json:"download"`
	History        []HistoryEntry        `json:"history,omitempty"`
}

// Store is a thread-safe session state container bound to a project
// directory after Init or Load.
type Store struct {
	logger logging.Logger

	mu    sync.RWMutex
	dir   string
	state state
}

// NewStore creates an unbound store.
func NewStore(logger logging.Logger) *Store {
	return &Store{logger: logger}
}

// Dir returns the bound project directory, empty when unbound.
func (s *Store) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Init creates the project layout under dir and binds the store to it. An
// existing project file is an error; use Load for that.
func (s *Store) Init(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, projectFile)); err == nil {
		return fmt.Errorf("project already exists at %s", dir)
	}
	for _, sub := range layoutDirs {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.dir = dir
	s.state = state{}
	s.mu.Unlock()
	s.Record("project_init", dir)
	return s.Save()
}

// Load reads an existing project file and binds the store.
func (s *Store) Load(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, projectFile))
	if err != nil {
		return err
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("corrupt project file: %w", err)
	}
	s.mu.Lock()
	s.dir = dir
	s.state = st
	s.mu.Unlock()
	s.logger.WithFields(logging.Fields{
		"dir":      dir,
		"stations": len(st.Stations),
		"events":   len(st.Events),
	}).Info("Project loaded")
	return nil
}

// Save writes the project file. A no-op error on an unbound store.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dir == "" {
		return fmt.Errorf("store not bound to a project directory")
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, projectFile), data, 0o644)
}

// Record appends a uuid-stamped history entry.
func (s *Store) Record(action, details string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.History = append(s.state.History, HistoryEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		Details:   details,
	})
}

// History returns a copy of the history log.
func (s *Store) History() []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]HistoryEntry(nil), s.state.History...)
}

// SetStations replaces the station set.
func (s *Store) SetStations(list []models.Station) {
	s.mu.Lock()
	s.state.Stations = list
	s.mu.Unlock()
	s.Record("stations_set", fmt.Sprintf("%d stations", len(list)))
}

// Stations returns a copy of the station set.
func (s *Store) Stations() []models.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Station(nil), s.state.Stations...)
}

// SetEvents replaces the event set.
func (s *Store) SetEvents(list []models.Event) {
	s.mu.Lock()
	s.state.Events = list
	s.mu.Unlock()
	s.Record("events_set", fmt.Sprintf("%d events", len(list)))
}

// Events returns a copy of the event set.
func (s *Store) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Event(nil), s.state.Events...)
}

// UpdateEvent merges an enriched event record over the stored one with the
// same id, if present.
func (s *Store) UpdateEvent(ev models.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Events {
		if s.state.Events[i].EventID == ev.EventID {
			s.state.Events[i] = ev
			return true
		}
	}
	return false
}

// SetArrivals stores both arrival tables.
func (s *Store) SetArrivals(times models.ArrivalTimes, details models.ArrivalDetails) {
	s.mu.Lock()
	s.state.ArrivalTimes = times
	s.state.ArrivalDetails = details
	s.mu.Unlock()
	s.Record("arrivals_set", fmt.Sprintf("%d pairs", len(times)))
}

// ArrivalTimes returns the stored arrival table.
func (s *Store) ArrivalTimes() models.ArrivalTimes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ArrivalTimes
}

// ArrivalDetails returns the stored detail table.
func (s *Store) ArrivalDetails() models.ArrivalDetails {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ArrivalDetails
}

// SetDownloadConfig stores the download parameter set.
func (s *Store) SetDownloadConfig(cfg DownloadConfig) {
	s.mu.Lock()
	s.state.Download = cfg
	s.mu.Unlock()
}

// DownloadConfig returns the stored download parameter set.
func (s *Store) DownloadConfig() DownloadConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Download
}

// Summary is the project overview used by exports and the CLI.
type Summary struct {
	Dir          string `json:"dir"`
	StationCount int    `json:"station_count"`
	EventCount   int    `json:"event_count"`
	ArrivalPairs int    `json:"arrival_pairs"`
	HistoryCount int    `json:"history_count"`
}

// ExportSummary returns the current project overview.
func (s *Store) ExportSummary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summary{
		Dir:          s.dir,
		StationCount: len(s.state.Stations),
		EventCount:   len(s.state.Events),
		ArrivalPairs: len(s.state.ArrivalTimes),
		HistoryCount: len(s.state.History),
	}
}
