package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/stations"
)

func newStationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stations",
		Short: "Discover and manage seismic stations",
	}
	cmd.AddCommand(newStationsSearchCmd(a))
	cmd.AddCommand(newStationsAroundCmd(a))
	cmd.AddCommand(newStationsSaveXMLCmd(a))
	cmd.AddCommand(newStationsListCmd(a))
	return cmd
}

type stationSearchFlags struct {
	providers []string
	networks  string
	stations  string
	channels  string
	start     string
	end       string
}

func (f *stationSearchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.providers, "providers", []string{"IRIS"}, "FDSN providers to query")
	cmd.Flags().StringVar(&f.networks, "networks", "*", "network code filter")
	cmd.Flags().StringVar(&f.stations, "stations", "*", "station code filter")
	cmd.Flags().StringVar(&f.channels, "channels", "*", "channel code filter")
	cmd.Flags().StringVar(&f.start, "start", "", "operational window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "operational window end (YYYY-MM-DD)")
}

func (f *stationSearchFlags) window() (start, end time.Time, err error) {
	if f.start != "" {
		if start, err = parseDate(f.start); err != nil {
			return
		}
	}
	if f.end != "" {
		end, err = parseDate(f.end)
	}
	return
}

func newStationsSearchCmd(a *app) *cobra.Command {
	var f stationSearchFlags
	var minLat, maxLat, minLon, maxLon float64
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search stations inside a geographic bounding box",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProject(); err != nil {
				return err
			}
			start, end, err := f.window()
			if err != nil {
				return err
			}
			svc := stations.NewService(a.logger)
			found, err := svc.SearchByROI(cmd.Context(), stations.SearchRequest{
				Providers: f.providers,
				MinLat:    minLat,
				MaxLat:    maxLat,
				MinLon:    minLon,
				MaxLon:    maxLon,
				Networks:  f.networks,
				Stations:  f.stations,
				Channels:  f.channels,
				Start:     start,
				End:       end,
			})
			if err != nil {
				return err
			}
			a.store.SetStations(found)
			a.saveProject()
			printStations(cmd, found)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().Float64Var(&minLat, "min-lat", -90, "minimum latitude")
	cmd.Flags().Float64Var(&maxLat, "max-lat", 90, "maximum latitude")
	cmd.Flags().Float64Var(&minLon, "min-lon", -180, "minimum longitude")
	cmd.Flags().Float64Var(&maxLon, "max-lon", 180, "maximum longitude")
	return cmd
}

func newStationsAroundCmd(a *app) *cobra.Command {
	var f stationSearchFlags
	var lat, lon, minDist, maxDist float64
	cmd := &cobra.Command{
		Use:   "around",
		Short: "Search stations by distance ring around a point",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProject(); err != nil {
				return err
			}
			start, end, err := f.window()
			if err != nil {
				return err
			}
			svc := stations.NewService(a.logger)
			found, err := svc.SearchByEventDistance(cmd.Context(), stations.EventDistanceRequest{
				Providers:  f.providers,
				EventLat:   lat,
				EventLon:   lon,
				MinDistDeg: minDist,
				MaxDistDeg: maxDist,
				Networks:   f.networks,
				Stations:   f.stations,
				Channels:   f.channels,
				Start:      start,
				End:        end,
			})
			if err != nil {
				return err
			}
			a.store.SetStations(found)
			a.saveProject()
			printStations(cmd, found)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().Float64Var(&lat, "lat", 0, "reference latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "reference longitude")
	cmd.Flags().Float64Var(&minDist, "min-dist", 30, "minimum distance in degrees")
	cmd.Flags().Float64Var(&maxDist, "max-dist", 90, "maximum distance in degrees")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func newStationsSaveXMLCmd(a *app) *cobra.Command {
	var level, channels string
	cmd := &cobra.Command{
		Use:   "save-xml",
		Short: "Fetch and save StationXML metadata for the project's stations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProject(); err != nil {
				return err
			}
			list := a.store.Stations()
			if len(list) == 0 {
				return fmt.Errorf("no stations in project; run 'quakefetch stations search' first")
			}
			svc := stations.NewService(a.logger)
			saved, err := svc.SaveStationXML(cmd.Context(), list, stations.SaveRequest{
				OutputDir: filepath.Join(a.projDir, "metadata"),
				Level:     level,
				Channels:  channels,
			})
			if err != nil {
				return err
			}
			a.store.Record("stationxml_saved", fmt.Sprintf("%d files", saved))
			a.saveProject()
			fmt.Fprintf(cmd.OutOrStdout(), "%s saved %d StationXML files\n", okMark("✓"), saved)
			return nil
		},
	}
	cmd.Flags().StringVar(&level, "level", "response", "StationXML detail level")
	cmd.Flags().StringVar(&channels, "channels", "*", "channel filter for the metadata request")
	return cmd
}

func newStationsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stations stored in the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProject(); err != nil {
				return err
			}
			printStations(cmd, a.store.Stations())
			return nil
		},
	}
}

func printStations(cmd *cobra.Command, list []models.Station) {
	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintf(out, "%s no stations found\n", warnMark("!"))
		return
	}
	for _, st := range list {
		line := fmt.Sprintf("%-10s %8.3f %9.3f  %s", st.Key(), st.Latitude, st.Longitude, st.Provider)
		if st.DistanceDeg != nil {
			line += fmt.Sprintf("  %.1f°", *st.DistanceDeg)
		}
		if len(st.ChannelTypes) > 0 {
			line += "  " + strings.Join(st.ChannelTypes, ",")
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "%s %d stations\n", okMark("✓"), len(list))
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD)", s)
}
