package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	multipole "github.com/njchilds90/gomultipole"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version of this CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", multipole.Version)
			return err
		},
	}
}
