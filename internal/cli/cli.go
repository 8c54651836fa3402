// Package cli provides the multipole cobra commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/njchilds90/gomultipole/internal/config"
)

const multipoleLongDesc string = `multipole derives closed-form electrostatic multipole expressions.

Build tensors and potential terms using:
  multipole q <n>              Symmetric-traceless source tensor Q
  multipole deriv <n>          n-th Cartesian derivative of 1/r
  multipole pairings <n> <k>   Index pairings behind the trace terms
  multipole phi <n>            Contracted order-n potential term
  multipole verify <n>         Check symmetry, tracelessness and agreement
  multipole serve              Run the HTTP tool server

Settings come from multipole.toml, MULTIPOLE_* environment variables and
flags, in increasing order of precedence.`

const multipoleShortDesc string = "multipole - symbolic multipole expansions"

// NewMultipoleCmd returns the root command.
func NewMultipoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "multipole",
		Short:         multipoleShortDesc,
		Long:          multipoleLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringP("config", "c", "", "Config file or directory holding multipole.toml")
	config.AddPersistentBoolFlag(cmd, config.Flags, config.FlagDebug)

	// Add subcommands
	cmd.AddCommand(newQCmd())
	cmd.AddCommand(newDerivCmd())
	cmd.AddCommand(newPairingsCmd())
	cmd.AddCommand(newPhiCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
