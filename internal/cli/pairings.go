package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	multipole "github.com/njchilds90/gomultipole"
)

const pairingsLongDesc string = `List every set of k disjoint unordered index pairs over positions
0..n-1, followed by their count n! / (2^k k! (n-2k)!).

Examples:
  multipole pairings 4 2
  multipole pairings 6 1 -o yaml`

type pairingsCommander struct {
	flags engineFlags
}

func newPairingsCmd() *cobra.Command {
	cmder := &pairingsCommander{}

	cmd := &cobra.Command{
		Use:   "pairings <n> <k>",
		Short: "List index pairings",
		Long:  pairingsLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("n %q is not an integer", args[0])
			}
			k, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("k %q is not an integer", args[1])
			}
			return cmder.run(cmd, n, k)
		},
	}
	addEngineFlags(cmd, &cmder.flags)

	return cmd
}

func (c *pairingsCommander) run(cmd *cobra.Command, n, k int) error {
	r, err := newRun(cmd)
	if err != nil {
		return err
	}
	ps, count, err := r.service.Pairings(n, k)
	if err != nil {
		return err
	}

	var b strings.Builder
	for _, p := range ps {
		b.WriteString(p.Key())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "count %s", count)
	return renderValue(cmd.OutOrStdout(), r.cfg.Output.Format, b.String(), multipole.NewPairingsResult(ps, count))
}
