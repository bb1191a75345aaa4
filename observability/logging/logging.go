// Package logging wires the process-wide structured logger for namechaind.
// Local runs get readable text output at debug level; every other environment
// logs JSON suitable for ingestion.
package logging

import (
	"log"
	"log/slog"
	"os"
	"strings"
)

// Setup builds the daemon logger tagged with the service name and
// environment, installs it as the slog default and bridges the standard
// library logger onto it. The returned logger is what the daemon and the RPC
// server log through.
func Setup(service, env string) *slog.Logger {
	env = strings.TrimSpace(env)

	var handler slog.Handler
	if isLocal(env) {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	logger := slog.New(handler).With(slog.String("service", strings.TrimSpace(service)))
	if env != "" {
		logger = logger.With(slog.String("env", env))
	}
	slog.SetDefault(logger)

	// Anything still going through the stdlib logger lands in the same stream
	// at info level.
	bridge := slog.NewLogLogger(logger.Handler(), slog.LevelInfo)
	bridge.SetFlags(0)
	log.SetOutput(bridge.Writer())
	log.SetFlags(0)
	log.SetPrefix("")

	return logger
}

func isLocal(env string) bool {
	switch strings.ToLower(env) {
	case "", "local", "dev", "development":
		return true
	}
	return false
}
