// Package logger provides a thin wrapper around Uber's Zap logger with a
// simplified field-map API.
//
// Every other package in this module consumes logging through its own narrow
// Logger interface (Info/Debug/Warn/Error/Fatal); this package provides the
// production implementation of those interfaces.
package logger
