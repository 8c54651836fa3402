package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gomultipole/symbolic"
)

const qLongDesc string = `Build the rank-n symmetric-traceless source tensor Q.

Index labels default to i1..in; --indices supplies distinct labels instead.

Examples:
  multipole q 2
  multipole q 3 --indices a,b,c -o latex`

const derivLongDesc string = `Build the n-th Cartesian derivative of 1/r with respect to the field
point, written in x(i) and r0.

Examples:
  multipole deriv 2
  multipole deriv 3 -o json`

type tensorCommander struct {
	flags   engineFlags
	indices []string
	build   func(r *run, n int, labels []string) (symbolic.Expr, error)
}

func newQCmd() *cobra.Command {
	cmder := &tensorCommander{build: func(r *run, n int, labels []string) (symbolic.Expr, error) {
		return r.service.Q(n, labels)
	}}
	return cmder.command("q <order>", "Build the symmetric-traceless tensor Q", qLongDesc)
}

func newDerivCmd() *cobra.Command {
	cmder := &tensorCommander{build: func(r *run, n int, labels []string) (symbolic.Expr, error) {
		return r.service.Derivative(n, labels)
	}}
	return cmder.command("deriv <order>", "Build the n-th derivative of 1/r", derivLongDesc)
}

func (c *tensorCommander) command(use, short, long string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseOrder(args[0])
			if err != nil {
				return err
			}
			r, err := newRun(cmd)
			if err != nil {
				return err
			}
			var labels []string
			if cmd.Flags().Changed("indices") {
				labels = c.indices
			}
			e, err := c.build(r, n, labels)
			if err != nil {
				return err
			}
			r.logger.Debug("built expression", "order", n, "terms", len(symbolic.TermsOf(e)))
			return renderExpr(cmd.OutOrStdout(), r.cfg.Output.Format, e)
		},
	}
	addEngineFlags(cmd, &c.flags)
	cmd.Flags().StringSliceVar(&c.indices, "indices", nil, "Comma-separated index labels, one per slot")
	return cmd
}

func parseOrder(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("order %q is not an integer", arg)
	}
	if n < 0 {
		return 0, fmt.Errorf("order %d is negative", n)
	}
	return n, nil
}
