// Package ui provides terminal UI components for the arcticspa CLI.
//
// This package uses Lipgloss to render polished terminal output for
// commands that run once and exit. It has no interactive components of
// its own; the watch dashboard builds its Bubble Tea model directly on
// these styles.
//
// # Components
//
//   - RenderHeader / PrintHeader: command banner with title and parameters
//   - RenderKeyValues / PrintKeyValues: ordered key-value sections for
//     status, info, and settings output
//   - RenderSuccessBox / PrintSuccess and RenderErrorBox / PrintFailure:
//     result boxes with styled details and troubleshooting tips
//   - ConfirmDangerousOperation: typed confirmation gate for destructive
//     commands such as pack reset
//
// All render functions take an explicit width; the Print wrappers use the
// detected terminal width, clamped between MinTerminalWidth and
// MaxContentWidth. Commands with a --json flag bypass this package
// entirely and write plain JSON to stdout.
//
// # Logging Integration
//
// This package expects logging to be controlled via the ARCTICSPA_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly. Set ARCTICSPA_LOG_LEVEL to
// "debug", "info", "warn", or "error" to enable logging output.
package ui
