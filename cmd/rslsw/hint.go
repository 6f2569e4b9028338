package main

import (
	"fmt"

	"github.com/goplus/rslsw/ide/hints"
	"github.com/spf13/cobra"
)

func newHintCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hint FILE LINE:COL",
		Short: "Print the parameter hint of the argument list at a position",
		Long: "Print the parameter hint of the innermost type argument list or call argument\n" +
			"list at a position. The current parameter is marked with brackets.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, offset, err := loadIndex(args[0], args[1])
			if err != nil {
				return err
			}
			hint, ok := hints.Find(idx, offset, hints.Policy{
				ExpandSupertraits: a.opts.Hints.ExpandSupertraits,
			})
			if !ok {
				return fmt.Errorf("no argument list at %s:%s", args[0], args[1])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), markCurrent(hint))
			return err
		},
	}
	cmd.Flags().Bool("expand-supertraits", false, "list the supertraits implied by each bound")
	return cmd
}

// markCurrent returns the hint text with the current parameter enclosed in
// brackets.
func markCurrent(hint hints.Hint) string {
	p := hint.Presentation
	r := p.RangeOf(hint.Current)
	if r.IsEmpty() {
		return p.Text
	}
	return p.Text[:r.Start] + "[" + p.Text[r.Start:r.End] + "]" + p.Text[r.End:]
}
