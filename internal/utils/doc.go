// Package utils provides shared utility functions for the envault CLI.
//
// # String Utilities
//
// Functions for formatting command output:
//   - FormatPaths: formats file paths for human-readable output
//
// # Terminal Utilities
//
// Functions for terminal detection:
//   - IsTerminal: checks if stdout is a terminal
package utils
