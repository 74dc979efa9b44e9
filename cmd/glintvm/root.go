package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "glintvm",
		Short:         "Run and inspect compiled glint bytecode buffers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("no-color", false, "disable colored panic output")
	if err := viper.BindPFlags(root.PersistentFlags()); err != nil {
		panic(err)
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return applyLogLevel(viper.GetString("log-level"))
	}

	root.AddCommand(newRunCmd(), newDebugCmd())
	return root
}

// applyLogLevel validates and installs the requested zerolog level.
func applyLogLevel(raw string) error {
	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", raw, err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Logger.Level(level)
	return nil
}
