package utils

import (
	"os"
	"strings"

	"github.com/avelline/envault/internal/ui"
	"golang.org/x/term"
)

// FormatPaths formats a slice of paths into a readable string.
func FormatPaths(paths []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, path := range paths {
		b.WriteString("    - ")
		b.WriteString(ui.Path.Sprint(path))
		b.WriteString("\n")
	}
	return b.String()
}

// IsTerminal returns true if stdout is a terminal. Spinners and progress
// output are suppressed when it isn't.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
