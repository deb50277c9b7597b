package project

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

// stationHeader is the flat station CSV schema. Loaders accept the same
// column set back.
var stationHeader = []string{
	"network", "station", "latitude", "longitude", "elevation",
	"site_name", "start_date", "end_date", "channels", "provider",
}

// eventHeader is the flat event CSV schema. Moment-tensor payloads do not
// flatten; use the JSON export to round-trip them.
var eventHeader = []string{
	"event_id", "time", "latitude", "longitude", "depth_km",
	"magnitude", "magnitude_type", "catalog", "distance_deg",
	"dynamic_cutoff", "mw", "mb", "ms", "has_moment_tensor",
}

// ExportStationsCSV writes the station set as flat CSV.
func (s *Store) ExportStationsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stationHeader); err != nil {
		return err
	}
	for _, st := range s.Stations() {
		row := []string{
			st.Network,
			st.Station,
			formatFloat(st.Latitude),
			formatFloat(st.Longitude),
			formatOptFloat(st.Elevation),
			st.SiteName,
			st.StartDate,
			st.EndDate,
			strings.Join(st.Channels, "|"),
			st.Provider,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportStationsCSV replaces the station set from a CSV produced by
// ExportStationsCSV. The header row is validated by column count only so
// trailing additions stay loadable.
func (s *Store) ImportStationsCSV(r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read station header: %w", err)
	}
	if len(header) < len(stationHeader) {
		return 0, fmt.Errorf("station CSV has %d columns, want at least %d", len(header), len(stationHeader))
	}
	var list []models.Station
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		st := models.Station{
			Network:   row[0],
			Station:   row[1],
			SiteName:  row[5],
			StartDate: row[6],
			EndDate:   row[7],
			Provider:  row[9],
		}
		if st.Latitude, err = strconv.ParseFloat(row[2], 64); err != nil {
			return 0, fmt.Errorf("station %s.%s: bad latitude %q", row[0], row[1], row[2])
		}
		if st.Longitude, err = strconv.ParseFloat(row[3], 64); err != nil {
			return 0, fmt.Errorf("station %s.%s: bad longitude %q", row[0], row[1], row[3])
		}
		if row[4] != "" {
			elev, err := strconv.ParseFloat(row[4], 64)
			if err != nil {
				return 0, fmt.Errorf("station %s.%s: bad elevation %q", row[0], row[1], row[4])
			}
			st.Elevation = &elev
		}
		if row[8] != "" {
			st.Channels = strings.Split(row[8], "|")
		}
		list = append(list, st)
	}
	s.SetStations(list)
	return len(list), nil
}

// ExportEventsCSV writes the event set as flat CSV.
func (s *Store) ExportEventsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(eventHeader); err != nil {
		return err
	}
	for _, ev := range s.Events() {
		row := []string{
			ev.EventID,
			ev.Time,
			formatFloat(ev.Latitude),
			formatFloat(ev.Longitude),
			formatFloat(ev.DepthKm),
			formatFloat(ev.Magnitude),
			ev.MagnitudeType,
			ev.CatalogSource,
			formatFloat(ev.DistanceDeg),
			formatOptFloat(ev.DynamicCutoff),
			formatSecondary(ev.Mw),
			formatSecondary(ev.Mb),
			formatSecondary(ev.Ms),
			strconv.FormatBool(ev.HasMomentTensor),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportEventsJSON writes the event set, moment tensors included.
func (s *Store) ExportEventsJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Events())
}

// ImportEventsJSON replaces the event set from an ExportEventsJSON payload.
func (s *Store) ImportEventsJSON(r io.Reader) (int, error) {
	var list []models.Event
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return 0, fmt.Errorf("decode events: %w", err)
	}
	s.SetEvents(list)
	return len(list), nil
}

// ExportArrivalsJSON writes the rich arrival table.
func (s *Store) ExportArrivalsJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.ArrivalDetails())
}

// ExportArrivalsCSV writes one row per event-station-phase triple.
func (s *Store) ExportArrivalsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"event_id", "network", "station", "distance_deg", "distance_km", "phase", "time_s"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, det := range s.ArrivalDetails() {
		for phase, arr := range det.Phases {
			row := []string{
				det.EventID,
				det.Network,
				det.Station,
				formatFloat(det.DistanceDeg),
				formatFloat(det.DistanceKm),
				phase,
				formatFloat(arr.TimeS),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatSecondary(m *models.SecondaryMagnitude) string {
	if m == nil {
		return ""
	}
	return formatFloat(m.Value)
}
