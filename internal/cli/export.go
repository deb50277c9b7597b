package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export project data to the exports directory",
	}
	cmd.AddCommand(newExportRunCmd(a, "stations", "stations.csv", "Export the station set as CSV",
		func(f *os.File) error { return a.store.ExportStationsCSV(f) }))
	cmd.AddCommand(newExportRunCmd(a, "events", "events.csv", "Export the event set as CSV",
		func(f *os.File) error { return a.store.ExportEventsCSV(f) }))
	cmd.AddCommand(newExportRunCmd(a, "events-json", "events.json", "Export the event set with moment tensors as JSON",
		func(f *os.File) error { return a.store.ExportEventsJSON(f) }))
	cmd.AddCommand(newExportRunCmd(a, "arrivals", "arrivals.csv", "Export the arrival table as CSV",
		func(f *os.File) error { return a.store.ExportArrivalsCSV(f) }))
	cmd.AddCommand(newExportRunCmd(a, "arrivals-json", "arrivals.json", "Export the rich arrival records as JSON",
		func(f *os.File) error { return a.store.ExportArrivalsJSON(f) }))
	cmd.AddCommand(newExportSummaryCmd(a))
	return cmd
}

func newExportRunCmd(a *app, use, filename, short string, write func(*os.File) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProject(); err != nil {
				return err
			}
			path := filepath.Join(a.projDir, "exports", filename)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := write(f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", okMark("✓"), path)
			return nil
		},
	}
}

func newExportSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print a project overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProject(); err != nil {
				return err
			}
			sum := a.store.ExportSummary()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "project   %s\n", sum.Dir)
			fmt.Fprintf(out, "stations  %d\n", sum.StationCount)
			fmt.Fprintf(out, "events    %d\n", sum.EventCount)
			fmt.Fprintf(out, "arrivals  %d pairs\n", sum.ArrivalPairs)
			fmt.Fprintf(out, "history   %d entries\n", sum.HistoryCount)
			return nil
		},
	}
}
