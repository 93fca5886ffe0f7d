// Package logging provides structured logging for session and codec
// internals.
//
// # Overview
//
// The logging package provides a structured logging interface with support for:
//
//   - Multiple log levels (debug, info, warn, error)
//   - Text and JSON output formats
//   - Request ID tracking for distributed tracing
//   - Field-based contextual logging
//
// # Creating a Logger
//
// Create a logger with configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "/var/log/x690/session.log",
//	})
//
// Or use defaults:
//
//	logger := logging.NewDefault() // Info level, text format, stdout
//
// For testing, use a no-op logger:
//
//	logger := logging.NewNop()
//
// # Log Levels
//
// Four log levels are supported:
//
//	logger.Debug("detailed debugging info", "key", "value")
//	logger.Info("informational message", "key", "value")
//	logger.Warn("warning message", "key", "value")
//	logger.Error("error message", "key", "value")
//
// Parse level from string:
//
//	level := logging.ParseLevel("debug") // Returns LevelDebug
//
// # Structured Logging
//
// Add key-value pairs to log entries:
//
//	logger.Info("session established",
//	    "remote", "192.168.1.100:54321",
//	    "tls", true,
//	    "session_id", 7,
//	)
//
// Output (JSON format, one line, keys in sorted order):
//
//	{"level":"info","msg":"session established","remote":"192.168.1.100:54321","session_id":7,"tls":true,"ts":"2026-02-18T10:30:00Z"}
//
// # Request ID Tracking
//
// Add request ID for tracing:
//
//	requestID := logging.GenerateRequestID()
//	connLogger := logger.WithRequestID(requestID)
//
//	connLogger.Info("processing request") // Includes request_id field
//
// # Session ID Tracking
//
// Tag every log line a Session emits with its numeric session ID:
//
//	sessionLogger := logger.WithSessionID(session.ID)
//	sessionLogger.Info("message received") // Includes session_id field
//
// # Contextual Fields
//
// Create loggers with persistent fields:
//
//	sessionLogger := logger.WithFields(
//	    "remote", conn.RemoteAddr().String(),
//	)
//
//	// All subsequent logs include these fields
//	sessionLogger.Info("message received")
//	sessionLogger.Info("session closed")
//
// # Output Formats
//
// Text format (human-readable):
//
//	2026-02-18T10:30:00Z [info] session established remote=192.168.1.100:54321 tls=true
//
// JSON format (machine-parseable):
//
//	{"level":"info","msg":"session established",...,"ts":"2026-02-18T10:30:00Z"}
//
// # Output Destinations
//
// Configure output destination:
//
//	logging.Config{Output: "stdout"}            // Standard output
//	logging.Config{Output: "stderr"}             // Standard error
//	logging.Config{Output: "/var/log/session.log"} // File path
package logging
