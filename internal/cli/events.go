package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/events"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/models"
)

func newEventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Search earthquake catalogs and enrich events",
	}
	cmd.AddCommand(newEventsSearchCmd(a))
	cmd.AddCommand(newEventsDetailCmd(a))
	cmd.AddCommand(newEventsListCmd(a))
	return cmd
}

func newEventsSearchCmd(a *app) *cobra.Command {
	var (
		catalog            string
		lat, lon           float64
		startStr, endStr   string
		minMag, maxMag     float64
		minDepth, maxDepth float64
		magLimits          bool
		depthLimits        bool
		minDist, maxDist   float64
		dynamicCutoff      bool
		sortBy             string
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search a catalog for events around a reference point",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProject(); err != nil {
				return err
			}
			start, err := parseDate(startStr)
			if err != nil {
				return err
			}
			end, err := parseDate(endStr)
			if err != nil {
				return err
			}
			svc := events.NewService(a.logger)
			found, err := svc.Search(cmd.Context(), events.SearchRequest{
				Catalog:         catalog,
				CenterLat:       lat,
				CenterLon:       lon,
				Start:           start,
				End:             end,
				MinMagnitude:    minMag,
				MaxMagnitude:    maxMag,
				MagnitudeLimits: magLimits,
				MinDepthKm:      minDepth,
				MaxDepthKm:      maxDepth,
				DepthLimits:     depthLimits,
				MinDistanceDeg:  minDist,
				MaxDistanceDeg:  maxDist,
			})
			if err != nil {
				return err
			}
			passing, rejected := events.ApplyMagnitudeDepthFilter(found, dynamicCutoff)
			if dynamicCutoff && len(rejected) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d events below the dynamic magnitude cutoff\n", warnMark("!"), len(rejected))
			}
			events.Sort(passing, sortBy, false)
			a.store.SetEvents(passing)
			a.saveProject()
			printEvents(cmd, passing)
			return nil
		},
	}
	cmd.Flags().StringVar(&catalog, "catalog", "IRIS", "event catalog provider")
	cmd.Flags().Float64Var(&lat, "lat", 0, "reference latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "reference longitude")
	cmd.Flags().StringVar(&startStr, "start", "", "search window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endStr, "end", "", "search window end (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&minMag, "min-mag", 5.5, "minimum magnitude")
	cmd.Flags().Float64Var(&maxMag, "max-mag", 10, "maximum magnitude")
	cmd.Flags().BoolVar(&magLimits, "mag-limits", false, "send magnitude limits to the catalog")
	cmd.Flags().Float64Var(&minDepth, "min-depth", 0, "minimum depth in km")
	cmd.Flags().Float64Var(&maxDepth, "max-depth", 700, "maximum depth in km")
	cmd.Flags().BoolVar(&depthLimits, "depth-limits", false, "send depth limits to the catalog")
	cmd.Flags().Float64Var(&minDist, "min-dist", 30, "minimum distance in degrees")
	cmd.Flags().Float64Var(&maxDist, "max-dist", 90, "maximum distance in degrees")
	cmd.Flags().BoolVar(&dynamicCutoff, "dynamic-cutoff", false, "apply the distance/depth magnitude cutoff")
	cmd.Flags().StringVar(&sortBy, "sort", "time", "sort field: time|magnitude|distance|depth")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newEventsDetailCmd(a *app) *cobra.Command {
	var (
		catalog    string
		mtCatalogs []string
		window     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "detail <event-id>",
		Short: "Confirm an event and collect moment-tensor solutions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProject(); err != nil {
				return err
			}
			var target *models.Event
			for _, ev := range a.store.Events() {
				if ev.EventID == args[0] {
					target = &ev
					break
				}
			}
			if target == nil {
				return fmt.Errorf("event %s not found in project", args[0])
			}
			evTime, err := events.ParseTime(target.Time)
			if err != nil {
				return fmt.Errorf("stored event has unparseable time %q: %w", target.Time, err)
			}
			if catalog == "" {
				catalog = target.CatalogSource
			}
			svc := events.NewService(a.logger)
			detail, err := svc.GetEventDetails(cmd.Context(), events.DetailRequest{
				Catalog:    catalog,
				EventID:    target.EventID,
				EventTime:  evTime,
				Window:     window,
				MTCatalogs: mtCatalogs,
			})
			if err != nil {
				return err
			}
			if detail == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s no catalog confirmed event %s\n", warnMark("!"), args[0])
				return nil
			}
			detail.EventID = target.EventID
			detail.DistanceDeg = target.DistanceDeg
			detail.DynamicCutoff = target.DynamicCutoff
			if a.store.UpdateEvent(*detail) {
				a.saveProject()
			}
			printEventDetail(cmd, detail)
			return nil
		},
	}
	cmd.Flags().StringVar(&catalog, "catalog", "", "primary catalog (default: the event's source)")
	cmd.Flags().StringSliceVar(&mtCatalogs, "mt-catalogs", nil, "catalogs to try for moment tensors (default ISC,USGS)")
	cmd.Flags().DurationVar(&window, "window", time.Minute, "time window for the closest-in-time match")
	return cmd
}

func newEventsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the events stored in the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProject(); err != nil {
				return err
			}
			printEvents(cmd, a.store.Events())
			return nil
		},
	}
}

func printEvents(cmd *cobra.Command, list []models.Event) {
	out := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintf(out, "%s no events found\n", warnMark("!"))
		return
	}
	for _, ev := range list {
		mt := " "
		if ev.HasMomentTensor {
			mt = okMark("T")
		}
		fmt.Fprintf(out, "%-28s %s M%.1f %-3s %6.1f km %6.1f° %s [%s]\n",
			ev.EventID, ev.Time, ev.Magnitude, ev.MagnitudeType,
			ev.DepthKm, ev.DistanceDeg, mt, ev.CatalogSource)
	}
	fmt.Fprintf(out, "%s %d events\n", okMark("✓"), len(list))
}

func printEventDetail(cmd *cobra.Command, ev *models.Event) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s confirmed %s from %s\n", okMark("✓"), ev.EventID, ev.CatalogSource)
	fmt.Fprintf(out, "  origin  %s  %.3f°N %.3f°E  %.1f km  M%.1f %s\n",
		ev.Time, ev.Latitude, ev.Longitude, ev.DepthKm, ev.Magnitude, ev.MagnitudeType)
	for _, sm := range []struct {
		name string
		m    *models.SecondaryMagnitude
	}{{"Mw", ev.Mw}, {"mb", ev.Mb}, {"Ms", ev.Ms}} {
		if sm.m != nil {
			fmt.Fprintf(out, "  %-3s %.1f (%s)\n", sm.name, sm.m.Value, sm.m.Author)
		}
	}
	if len(ev.MomentTensors) == 0 {
		fmt.Fprintf(out, "  %s no moment-tensor solutions\n", warnMark("!"))
		return
	}
	for catalog, mt := range ev.MomentTensors {
		agency := mt.SourceAgency
		if agency == "" {
			agency = mt.SourceAuthor
		}
		fmt.Fprintf(out, "  tensor from %s (%s), %d nodal planes\n", catalog, agency, len(mt.NodalPlanes))
	}
}
