package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	multipole "github.com/njchilds90/gomultipole"
	"github.com/njchilds90/gomultipole/symbolic"
)

const phiLongDesc string = `Build the contracted order-n term of the exterior expansion of
1/|x - xa|, as a scalar in ra0, r0 and dot(xa, n).

  taylor  ((-1)^n / n!) xa(i1)..xa(in) d^n(1/r), with x(i) = n(i) r0
  moment  (1/n!) Q n(i1)..n(in) / r0^(n+1)

With --series the terms of orders 0..n are summed.

Examples:
  multipole phi 2
  multipole phi 3 --form moment --series -o latex`

type phiCommander struct {
	flags  engineFlags
	form   string
	series bool
}

func newPhiCmd() *cobra.Command {
	cmder := &phiCommander{}

	cmd := &cobra.Command{
		Use:   "phi <order>",
		Short: "Build a contracted potential term",
		Long:  phiLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseOrder(args[0])
			if err != nil {
				return err
			}
			return cmder.run(cmd, n)
		},
	}
	addEngineFlags(cmd, &cmder.flags)
	cmd.Flags().StringVar(&cmder.form, "form", multipole.FormTaylor, "Formulation: taylor or moment")
	cmd.Flags().BoolVar(&cmder.series, "series", false, "Sum the terms of orders 0..n")

	return cmd
}

func (c *phiCommander) run(cmd *cobra.Command, n int) error {
	r, err := newRun(cmd)
	if err != nil {
		return err
	}

	var e symbolic.Expr
	switch {
	case c.series:
		e, err = r.service.Series(n, c.form)
	case c.form == multipole.FormTaylor:
		e, err = r.service.TaylorTerm(n)
	case c.form == multipole.FormMoment:
		e, err = r.service.MomentTerm(n)
	default:
		err = fmt.Errorf("unknown form %q", c.form)
	}
	if err != nil {
		return err
	}
	return renderExpr(cmd.OutOrStdout(), r.cfg.Output.Format, e)
}
