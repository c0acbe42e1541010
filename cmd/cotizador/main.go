// Command cotizador classifies Spanish branding briefs into service modules
// and prices them.
package main

import (
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/cotizador/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := newRootCmd().Execute(); err != nil {
		reportError(log.Logger, err)
		os.Exit(exitCode(err))
	}
}

// reportError logs a failed run. ErrNoModules is left out since the command
// has already printed its result.
func reportError(logger zerolog.Logger, err error) {
	if err == nil || errors.Is(err, app.ErrNoModules) {
		return
	}
	logger.Error().Err(err).Msg("run failed")
}

// exitCode maps errors to the exit code policy: 2 when no billable module
// was detected, 1 for anything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrNoModules):
		return 2
	default:
		return 1
	}
}
