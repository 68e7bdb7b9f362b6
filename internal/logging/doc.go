// Package logger provides leveled logging for envault CLI commands.
//
// Verbosity is controlled by two flags:
//
//   - --verbose: shows info messages
//   - --debug: shows all messages including debug details
//
// Warnings and errors are always shown and go to stderr. Resolution warnings
// collected on a run report (missing expansion variables, skipped lines) are
// surfaced through Warnf so they remain visible when a spinner owns stdout.
package logger
