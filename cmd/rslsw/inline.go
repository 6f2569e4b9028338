package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goplus/rslsw/ide/inline"
	"github.com/goplus/rslsw/rust"
	"github.com/goplus/rslsw/rust/resolve"
	"github.com/spf13/cobra"
)

func newInlineCmd(a *app) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "inline FILE LINE:COL",
		Short: "Inline the local variable at a position and print the diff",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, offset, err := loadIndex(args[0], args[1])
			if err != nil {
				return err
			}
			out, err := inline.Inline(cmd.Context(), idx, offset, inline.Options{
				ThisOnly:        a.opts.Inline.ThisOnly,
				KeepDeclaration: a.opts.Inline.KeepDeclaration,
			})
			if err != nil {
				if errors.Is(err, inline.ErrNotApplicable) {
					return fmt.Errorf("no local variable at %s:%s", args[0], args[1])
				}
				if errors.Is(err, context.Canceled) {
					return err
				}
				return errors.New(inline.Message(err))
			}
			if write {
				return os.WriteFile(args[0], out, 0o644)
			}
			d, err := unifiedDiff(args[0], idx.File.Content, out)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(d)
			return err
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the result to the file instead of printing a diff")
	cmd.Flags().Bool("this-only", false, "inline only the reference at the position")
	cmd.Flags().Bool("keep-declaration", false, "keep the variable declaration")
	return cmd
}

// loadIndex reads the Rust file at path and returns its index and the
// byte offset of pos, a 1-based "LINE:COL" with COL counted in UTF-16
// units.
func loadIndex(path, pos string) (*resolve.Index, int, error) {
	line, col, err := parsePosition(pos)
	if err != nil {
		return nil, 0, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	proj := rust.NewProject(map[string]*rust.File{path: {Content: content}}, rust.FeatAll)
	idx, err := proj.Index(path)
	if err != nil {
		return nil, 0, err
	}
	return idx, idx.File.Offset(line-1, col-1), nil
}

// parsePosition parses a 1-based "LINE:COL" position.
func parsePosition(pos string) (line, col int, err error) {
	l, c, ok := strings.Cut(pos, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid position %q: want LINE:COL", pos)
	}
	if line, err = strconv.Atoi(l); err != nil || line < 1 {
		return 0, 0, fmt.Errorf("invalid line in position %q", pos)
	}
	if col, err = strconv.Atoi(c); err != nil || col < 1 {
		return 0, 0, fmt.Errorf("invalid column in position %q", pos)
	}
	return line, col, nil
}
