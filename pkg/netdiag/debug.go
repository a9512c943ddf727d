// Package netdiag: Debug logging support.
package netdiag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DebugLevel represents the verbosity level for debug logging.
type DebugLevel int

const (
	// DebugOff disables all debug logging.
	DebugOff DebugLevel = iota
	// DebugBasic logs operation outcomes and failures.
	DebugBasic
	// DebugVerbose logs candidates, addresses and timings.
	DebugVerbose
)

// ParseDebugLevel maps "off", "basic" and "verbose" to a DebugLevel.
func ParseDebugLevel(s string) (DebugLevel, error) {
	switch s {
	case "", "off":
		return DebugOff, nil
	case "basic":
		return DebugBasic, nil
	case "verbose":
		return DebugVerbose, nil
	default:
		return DebugOff, fmt.Errorf("unknown debug level %q", s)
	}
}

// DebugLogger is a callback function for debug logging.
// The op parameter names the operation that generated the message.
type DebugLogger func(op Operation, format string, args ...interface{})

var (
	debugLogger DebugLogger
	debugLevel  DebugLevel
	debugMu     sync.RWMutex
)

// SetDebugLogger sets a custom debug logger callback.
// Pass nil to disable debug logging.
func SetDebugLogger(logger DebugLogger) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugLogger = logger
}

// SetDebugLevel sets the debug verbosity level.
func SetDebugLevel(level DebugLevel) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugLevel = level
}

// GetDebugLevel returns the current debug level.
func GetDebugLevel() DebugLevel {
	debugMu.RLock()
	defer debugMu.RUnlock()
	return debugLevel
}

// SlogDebugLogger returns a DebugLogger writing debug records to logger,
// with the operation attached as the "op" attribute.
func SlogDebugLogger(logger *slog.Logger) DebugLogger {
	return func(op Operation, format string, args ...interface{}) {
		logger.LogAttrs(context.Background(), slog.LevelDebug,
			fmt.Sprintf(format, args...), slog.String("op", string(op)))
	}
}

func debugLog(op Operation, format string, args ...interface{}) {
	debugMu.RLock()
	logger := debugLogger
	level := debugLevel
	debugMu.RUnlock()

	if logger != nil && level >= DebugBasic {
		logger(op, format, args...)
	}
}

func debugLogVerbose(op Operation, format string, args ...interface{}) {
	debugMu.RLock()
	logger := debugLogger
	level := debugLevel
	debugMu.RUnlock()

	if logger != nil && level >= DebugVerbose {
		logger(op, format, args...)
	}
}
