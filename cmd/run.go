package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	kerrors "github.com/avelline/envault/internal/errors"
	"github.com/avelline/envault/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	runFiles    []string
	runVaults   []string
	runInlines  []string
	runOverload bool
	runKey      string

	runCmd = &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Runs a command with its environment resolved from your sources",
		Long: `Resolves the configured sources into an environment and executes the
given command with it. Without any source flags, envault picks a default:
ambient private keys select their env files, an ambient ENVAULT_KEY selects
.env.vault, and otherwise .env is loaded.

Existing environment variables win over loaded values unless --overload is
given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			Logger.Infof("Starting run command")

			result, err := workflows.Run(cmd.Context(), workflows.RunOptions{
				Sources:      parseSources(runFiles, runVaults, runInlines),
				Overload:     runOverload,
				MasterSecret: runKey,
				Environ:      os.Environ(),
				Logger:       Logger,
			})
			if err != nil {
				if errors.Is(err, kerrors.ErrMissingVaultFile) || errors.Is(err, kerrors.ErrMissingMasterSecret) {
					cmd.SilenceUsage = true
				}
				return Logger.ErrorfAndReturn("failed to resolve environment: %v", err)
			}

			for _, warning := range result.Report.Warnings() {
				Logger.Warnf("%s", warning)
			}
			for _, src := range result.Report.Sources {
				if src.Err != nil {
					Logger.Warnf("skipped %s source %s: %v", src.Type, src.ID, src.Err)
				}
			}
			if verbose || debug {
				fmt.Println(reportSummary(result.Report))
			}

			child := exec.Command(args[0], args[1:]...)
			child.Env = result.Environ()
			child.Stdin = os.Stdin
			child.Stdout = os.Stdout
			child.Stderr = os.Stderr

			if err := child.Run(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					// Propagate the child's exit code without extra noise.
					cmd.SilenceUsage = true
					cmd.SilenceErrors = true
					os.Exit(exitErr.ExitCode())
				}
				return Logger.ErrorfAndReturn("failed to run %s: %v", color.YellowString(args[0]), err)
			}
			return nil
		},
	}
)

func init() {
	runCmd.Flags().StringSliceVarP(&runFiles, "file", "f", nil, "env file to load (repeatable)")
	runCmd.Flags().StringSliceVar(&runVaults, "vault", nil, "vault container to load (repeatable)")
	runCmd.Flags().StringSliceVarP(&runInlines, "env", "e", nil, "inline KEY=VALUE source (repeatable)")
	runCmd.Flags().BoolVar(&runOverload, "overload", false, "let loaded values overwrite existing environment variables")
	runCmd.Flags().StringVar(&runKey, "key", "", "vault master secret (defaults to $ENVAULT_KEY)")
}

func resetRunCommandState() {
	runFiles = nil
	runVaults = nil
	runInlines = nil
	runOverload = false
	runKey = ""
}
