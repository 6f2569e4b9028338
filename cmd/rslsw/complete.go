package main

import (
	"fmt"
	"strings"

	"github.com/goplus/rslsw/ide/completion"
	"github.com/spf13/cobra"
)

func newCompleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete FILE LINE:COL",
		Short: "List the smart completion candidates at a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, offset, err := loadIndex(args[0], args[1])
			if err != nil {
				return err
			}
			content := idx.File.Content
			res, err := completion.Complete(cmd.Context(), args[0], content, offset)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, v := range res.Variants {
				if limit := a.opts.Completion.MaxItems; limit > 0 && i >= limit {
					break
				}
				ins := completion.AfterInsert(res.Index, v, content, res.Start, res.End)
				text := strings.ReplaceAll(ins.Text, "\n", `\n`)
				if _, err := fmt.Fprintf(out, "%s\t%s\n", v.Label, text); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("max-items", 0, "maximum number of candidates, 0 for no limit")
	return cmd
}
