package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/project"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/waveform"
)

func newDownloadCmd(a *app) *cobra.Command {
	var (
		channelSpec string
		location    string
		before      float64
		after       float64
		bulk        bool
		chunkSize   int
		retries     int
		retryDelay  time.Duration
		fallback    string
		format      string
		username    string
		askPassword bool
		cleanGaps   bool
		fillValue   float64
		maxGapS     float64
	)
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Bulk-download event waveforms for the project's stations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadProject(); err != nil {
				return err
			}
			evs, sts := a.store.Events(), a.store.Stations()
			if len(evs) == 0 || len(sts) == 0 {
				return fmt.Errorf("project needs both events and stations before downloading")
			}

			var creds *waveform.Credentials
			if username != "" {
				pass := os.Getenv("FDSN_PASSWORD")
				if askPassword || pass == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "password for %s: ", username)
					raw, err := term.ReadPassword(int(os.Stdin.Fd()))
					fmt.Fprintln(cmd.OutOrStdout())
					if err != nil {
						return fmt.Errorf("read password: %w", err)
					}
					pass = string(raw)
				}
				creds = &waveform.Credentials{Username: username, Password: pass}
			}

			a.store.SetDownloadConfig(project.DownloadConfig{
				ChannelSpec: channelSpec,
				Location:    location,
				TimeBeforeS: before,
				TimeAfterS:  after,
				Bulk:        bulk,
				ChunkSize:   chunkSize,
				Format:      format,
				CleanGaps:   cleanGaps,
				FillValue:   fillValue,
				MaxGapS:     maxGapS,
			})

			dl := waveform.NewDownloader(a.logger)
			collection, err := dl.Download(cmd.Context(), waveform.Request{
				Events:           evs,
				Stations:         sts,
				ArrivalTimes:     a.store.ArrivalTimes(),
				TimeBefore:       before,
				TimeAfter:        after,
				ChannelSpec:      channelSpec,
				Location:         location,
				Bulk:             bulk,
				ChunkSize:        chunkSize,
				MaxRetries:       retries,
				RetryDelay:       retryDelay,
				FallbackProvider: fallback,
				Credentials:      creds,
				CleanGaps:        cleanGaps,
				FillValue:        fillValue,
				MaxGapS:          maxGapS,
			})
			if err != nil {
				return err
			}

			saved, errs := waveform.Save(collection, a.projDir, waveform.Format(format))
			for _, e := range errs {
				a.logger.WithError(e).Warn("Failed to write trace")
			}
			a.store.Record("waveforms_downloaded", fmt.Sprintf("%d traces saved, %d write failures", saved, len(errs)))
			a.saveProject()

			if len(errs) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s saved %d traces, %d failed to write\n", warnMark("!"), saved, len(errs))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s saved %d traces under %s\n", okMark("✓"), saved, filepath.Join(a.projDir, "waveforms"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&channelSpec, "channels", "BH?", "channel pattern, comma-separated (BH?,HH?)")
	cmd.Flags().StringVar(&location, "location", "", "location code, empty for any")
	cmd.Flags().Float64Var(&before, "before", 60, "seconds before the P arrival (or origin) to start")
	cmd.Flags().Float64Var(&after, "after", 600, "seconds after the P arrival (or origin) to end")
	cmd.Flags().BoolVar(&bulk, "bulk", true, "use bulk dataselect requests")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 50, "bulk request chunk size")
	cmd.Flags().IntVar(&retries, "retries", 3, "attempts per request")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", 2*time.Second, "delay between attempts")
	cmd.Flags().StringVar(&fallback, "fallback-provider", "IRIS", "provider for stations without one")
	cmd.Flags().StringVar(&format, "format", "sac", "output format: sac|mseed")
	cmd.Flags().StringVar(&username, "username", "", "FDSN username for restricted data")
	cmd.Flags().BoolVar(&askPassword, "ask-password", false, "always prompt for the password")
	cmd.Flags().BoolVar(&cleanGaps, "clean-gaps", false, "drop merged traces with gaps above the threshold")
	cmd.Flags().Float64Var(&fillValue, "fill-value", 0, "sample value used to fill gaps when merging")
	cmd.Flags().Float64Var(&maxGapS, "max-gap", 10, "maximum tolerated filled gap in seconds")
	return cmd
}
