// Package logging provides structured logging for the arcticspa CLIs.
//
// This package wraps the zap logger with convenience functions for common
// logging patterns. Library packages (client, discovery, sim) take their
// own *zap.Logger via options instead of calling the global; the CLIs wire
// this package's logger into them.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps, frame traffic, probes)
//   - Info: Normal operations (connections, scans, state changes)
//   - Warn: Non-fatal issues (connection drops, retries)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Controller connected",
//	    zap.String("host", "192.168.1.100"),
//	    zap.String("serial", "A123456"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
//	logging.LogFrame("recv", frame)
//	logging.LogRawBytes("unparsed tail", data)
//
// # Configuration
//
// Logging is silent by default. The CLIs initialize it from the --log-level
// flag or the ARCTICSPA_LOG_LEVEL environment variable:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Output Format
//
// Logs are written to stdout in console format (human-readable):
//
//	2025-11-25T10:30:45.123-0800  DEBUG  frame
//	  direction=recv type=Live seq=42 payload_bytes=31
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
