package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new project directory layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Init(a.projDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s project initialized at %s\n", okMark("✓"), a.projDir)
			return nil
		},
	}
}
