// Package logger configures structured logging for remotebean.
//
// It builds *slog.Logger values with a process-wide dynamic level, so the
// level can be changed at runtime (the server does this on config reload).
// Context helpers carry a request ID from the RPC layer into log entries.
package logger
