package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/arrivals"
)

func newArrivalsCmd(a *app) *cobra.Command {
	var (
		phases    []string
		modelName string
		details   bool
	)
	cmd := &cobra.Command{
		Use:   "arrivals",
		Short: "Compute theoretical phase arrivals for every event-station pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProject(); err != nil {
				return err
			}
			evs, sts := a.store.Events(), a.store.Stations()
			if len(evs) == 0 || len(sts) == 0 {
				return fmt.Errorf("project needs both events and stations before computing arrivals")
			}
			engine := arrivals.NewEngine(a.logger)
			times, err := engine.ComputeTravelTimes(evs, sts, phases, modelName)
			if err != nil {
				return err
			}
			var pairCount int
			if details {
				det, err := engine.ComputeDetails(evs, sts, phases, modelName)
				if err != nil {
					return err
				}
				a.store.SetArrivals(times, det)
				pairCount = len(det)
			} else {
				a.store.SetArrivals(times, nil)
				pairCount = len(times)
			}
			a.saveProject()
			fmt.Fprintf(cmd.OutOrStdout(), "%s computed arrivals for %d event-station pairs (%s, phases %v)\n",
				okMark("✓"), pairCount, modelName, phases)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&phases, "phases", []string{"P"}, "seismic phases to compute")
	cmd.Flags().StringVar(&modelName, "model", "iasp91", "1-D velocity model: iasp91|ak135")
	cmd.Flags().BoolVar(&details, "details", false, "also store ray parameter and takeoff angle per pair")
	return cmd
}
