// Command rslsw is a Rust language server. It serves LSP over stdio or TCP
// and runs its refactorings and hints from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/goplus/rslsw/internal/config"
	"github.com/goplus/rslsw/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	cmd := newRootCmd()
	err := cmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by subcommands.
type app struct {
	configFile string
	viper      *viper.Viper
	opts       *config.Options
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "rslsw",
		Short:         "Rust language server with smart completion, generic hints and inline variable",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: rslsw.toml in the working directory)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "log in JSON")

	root.AddCommand(
		newServeCmd(a),
		newInlineCmd(a),
		newHintCmd(a),
		newCompleteCmd(a),
	)
	return root
}

// flagKeys maps command line flags to the option keys they override.
var flagKeys = map[string]string{
	"log-level":          "log.level",
	"log-json":           "log.json",
	"metrics-addr":       "metrics.addr",
	"expand-supertraits": "hints.expandSupertraits",
	"this-only":          "inline.thisOnly",
	"keep-declaration":   "inline.keepDeclaration",
	"max-items":          "completion.maxItems",
}

// load reads the options and sets up logging. Flags set on the command
// line take precedence over the config file and environment.
func (a *app) load(cmd *cobra.Command) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	v, err := config.New(a.configFile, wd)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}
	opts, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := logger.Initialize(opts.Log.JSON, opts.Log.Level); err != nil {
		return err
	}
	a.viper, a.opts = v, opts
	return nil
}
