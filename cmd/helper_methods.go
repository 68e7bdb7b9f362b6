package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/avelline/envault/internal/resolve"
	"github.com/avelline/envault/internal/ui"
	"github.com/avelline/envault/internal/utils"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
// This ensures consistent output formatting across all commands.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	err := s.Color("cyan")
	if err != nil {
		// If we can't set spinner color, just continue without it.
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	if !verbose && !debug {
		// Animating over a pipe just fills it with escape codes.
		if utils.IsTerminal() {
			Logger.Debugf("Starting spinner in non-verbose mode")
			s.Start()
		}
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		// Restore log output first.
		if !verbose && !debug {
			Logger.Debugf("Restoring log output")
			log.SetOutput(os.Stdout)
		}

		// Ensure final message ends with a newline.
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		// Stop the spinner first to clear the spinner line.
		if !verbose && !debug {
			Logger.Debugf("Stopping spinner")
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// parseSources turns the run/get command flags into an ordered source list.
// Flag groups keep their relative order within the group; files come first,
// then vaults, then inline values.
func parseSources(files, vaults, inlines []string) []resolve.Source {
	var sources []resolve.Source
	for _, f := range files {
		sources = append(sources, resolve.File(f))
	}
	for _, v := range vaults {
		sources = append(sources, resolve.VaultFile(v))
	}
	for _, i := range inlines {
		sources = append(sources, resolve.Inline(i))
	}
	return sources
}

// reportSummary renders a one-line account of a resolution run for the
// spinner's final message.
func reportSummary(report *resolve.Report) string {
	injected := report.InjectedKeys()
	msg := color.GreenString("✓") + fmt.Sprintf(" Resolved %d sources, injected %d keys", len(report.Sources), len(injected))

	var lines []string
	for _, src := range report.Sources {
		if src.Err == nil {
			continue
		}
		lines = append(lines, color.YellowString("  "+src.Type.String()+" "+src.ID)+": "+src.Err.Error())
	}
	if len(lines) > 0 {
		msg += "\n" + color.RedString("✗") + fmt.Sprintf(" %d sources failed:\n", len(lines)) + strings.Join(lines, "\n")
	}
	return msg
}
