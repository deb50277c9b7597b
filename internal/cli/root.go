// Package cli implements the quakefetch command tree: station discovery,
// catalog search, travel-time computation and bulk waveform download driven
// from a project directory.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/config"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/logging"
	"github.com/QuakeRider/Teleseismic-Download-GUI/pkg/project"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
)

// app carries the shared state every subcommand needs.
type app struct {
	logger  logging.Logger
	store   *project.Store
	projDir string
	verbose bool
}

// loadProject binds the store to the project directory, which must exist,
// and tees log output into the project's session log.
func (a *app) loadProject() error {
	if a.projDir == "" {
		a.projDir = "."
	}
	if err := a.store.Load(a.projDir); err != nil {
		return fmt.Errorf("no project at %s (run 'quakefetch init'): %w", a.projDir, err)
	}
	logPath := filepath.Join(a.projDir, "logs", "session.log")
	if _, err := logging.AddFileOutput(a.logger, logPath); err != nil {
		a.logger.WithError(err).Warn("Session log unavailable")
	}
	return nil
}

// saveProject persists the store and reports write failures without masking
// the command's own result.
func (a *app) saveProject() {
	if err := a.store.Save(); err != nil {
		a.logger.WithError(err).Error("Failed to persist project state")
	}
}

// NewRootCmd returns the root command for the quakefetch CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "quakefetch",
		Short:         "quakefetch — teleseismic station, event and waveform acquisition",
		Long:          "quakefetch discovers seismic stations, searches earthquake catalogs, computes theoretical arrivals and bulk-downloads event waveforms from FDSN web services.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = logging.NewLoggerWithComponent("cli")
			if a.verbose {
				a.logger.SetLevel(logging.DebugLevel)
			}
			config.LoadEnv(a.logger)
			a.store = project.NewStore(a.logger)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.projDir, "project", "p", ".", "project directory")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newStationsCmd(a))
	rootCmd.AddCommand(newEventsCmd(a))
	rootCmd.AddCommand(newArrivalsCmd(a))
	rootCmd.AddCommand(newDownloadCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command, printing the failure to stderr.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", failMark("error:"), err)
		os.Exit(1)
	}
}
