package actor

import (
	"io"

	"github.com/btcsuite/btclog/v2"

	"github.com/wrenlabs/actorgraph/internal/build"
)

// Subsystem is the logging subsystem tag used when registering this
// package's logger with a parent btclog.Handler.
const Subsystem = "ACTR"

// log is the package-level logger used by the actor runtime. It defaults to
// a disabled logger so that callers who never wire up a real logger via
// UseLogger don't pay for or see any output.
var log btclog.Logger = btclog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// UseLoggerFromConfig applies cfg.LogLevel to logger and wires it up as the
// package logger, so RuntimeConfig can drive the verbosity of this
// package's own logging without callers hand-parsing level names.
func UseLoggerFromConfig(logger btclog.Logger, cfg RuntimeConfig) {
	if level, ok := btclog.LevelFromString(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	log = logger
}

// NewConsoleLogger builds a btclog.Logger writing to w through a
// build.HandlerSet. Callers that want dual console+file output can pass
// additional handlers (e.g. one built over a rotating log file) alongside
// the console handler constructed here.
func NewConsoleLogger(w io.Writer, extra ...btclog.Handler) btclog.Logger {
	handlers := append([]btclog.Handler{btclog.NewDefaultHandler(w)}, extra...)
	combined := build.NewHandlerSet(handlers...)

	return btclog.NewSLogger(combined)
}
