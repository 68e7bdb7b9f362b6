package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/avelline/envault/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	getFiles   []string
	getVaults  []string
	getInlines []string
	getKey     string
	getAll     bool

	getCmd = &cobra.Command{
		Use:   "get [KEY]",
		Short: "Prints a resolved value, or every key the sources would inject",
		Long: `Resolves the configured sources exactly like 'envault run' and prints
the value of KEY. With --all (or no KEY), prints every injected key as
KEY=VALUE lines, sorted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			Logger.Infof("Starting get command")
			spinner, cleanup := startSpinner("Resolving environment...", verbose)
			defer cleanup()

			result, err := workflows.Run(cmd.Context(), workflows.RunOptions{
				Sources:      parseSources(getFiles, getVaults, getInlines),
				MasterSecret: getKey,
				Environ:      os.Environ(),
				Logger:       Logger,
			})
			if err != nil {
				spinner.FinalMSG = color.RedString("✗") + " Failed to resolve environment\n" +
					color.RedString("Error: ") + err.Error()
				return nil
			}

			if len(args) == 1 && !getAll {
				key := args[0]
				value, ok := result.Env[key]
				if !ok {
					spinner.FinalMSG = color.RedString("✗") + " " + color.YellowString(key) + " is not set by any source"
					return nil
				}
				spinner.FinalMSG = value
				return nil
			}

			keys := result.Report.InjectedKeys()
			if len(keys) == 0 {
				spinner.FinalMSG = color.RedString("✗") + " No keys were injected\n" +
					color.CyanString("→") + " Check your sources with " + color.YellowString("envault run -v")
				return nil
			}

			sort.Strings(keys)
			output := ""
			for _, key := range keys {
				output += fmt.Sprintf("%s=%s\n", key, result.Env[key])
			}
			spinner.FinalMSG = output
			return nil
		},
	}
)

func init() {
	getCmd.Flags().StringSliceVarP(&getFiles, "file", "f", nil, "env file to load (repeatable)")
	getCmd.Flags().StringSliceVar(&getVaults, "vault", nil, "vault container to load (repeatable)")
	getCmd.Flags().StringSliceVarP(&getInlines, "env", "e", nil, "inline KEY=VALUE source (repeatable)")
	getCmd.Flags().StringVar(&getKey, "key", "", "vault master secret (defaults to $ENVAULT_KEY)")
	getCmd.Flags().BoolVar(&getAll, "all", false, "print every injected key")
}

func resetGetCommandState() {
	getFiles = nil
	getVaults = nil
	getInlines = nil
	getKey = ""
	getAll = false
}
