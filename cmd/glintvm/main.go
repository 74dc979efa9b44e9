// Command glintvm is the reference CLI host for the glint virtual
// machine: it loads a compiled bytecode buffer from disk, wires the
// native module stack into it, and either runs it to completion or
// single-steps it interactively.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configureLogging()
	if err := newRootCmd().Execute(); err != nil {
		if err != errReported {
			log.Error().Err(err).Msg("glintvm failed")
		}
		os.Exit(1)
	}
}

func configureLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}
