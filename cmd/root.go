package cmd

import (
	"github.com/avelline/envault/internal/configs"
	logger "github.com/avelline/envault/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	RootCmd = &cobra.Command{
		Use:   "envault",
		Short: "Envault - resolve environment configuration from files, vaults, and inline values",
		Long: `Envault resolves your process environment from prioritized sources:
inline KEY=VALUE strings, plaintext .env files, and encrypted .env.vault
containers.

Features:
  - Run any command with its environment resolved from your sources
  - Encrypt .env files into a single committable .env.vault container
  - Decrypt individual values guarded by local private keys
  - Keep master secrets out of the repository in .env.keys

Run 'envault help <command>' for more details on a specific command.
`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing envault with verbose=%t, debug=%t", verbose, debug)

			if err := configs.InitProjectSettings(); err != nil {
				Logger.Warnf("Failed to discover project root: %v", err)
			}
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(getCmd)
	RootCmd.AddCommand(buildCmd)
	RootCmd.AddCommand(keypairCmd)
	RootCmd.AddCommand(initCmd)
}

// Helper functions for testing

// GetRootCmd returns the RootCmd for testing.
func GetRootCmd() *cobra.Command {
	return RootCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetRunCommandState()
	resetGetCommandState()
	resetBuildCommandState()
	resetKeypairCommandState()
	resetInitCommandState()
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
