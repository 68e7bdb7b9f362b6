package cmd

import (
	"github.com/avelline/envault/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	keypairEnvironment string
	keypairKeysPath    string
	keypairForce       bool

	keypairCmd = &cobra.Command{
		Use:   "keypair",
		Short: "Generates a private key for encrypting individual env-file values",
		Long: `Generates a fresh private key and stores it in the local key store.
Values encrypted with it carry the encrypted: prefix inside a plaintext env
file; envault decrypts them transparently when the key is available.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			Logger.Infof("Starting keypair command")
			spinner, cleanup := startSpinner("Generating private key...", verbose)
			defer cleanup()

			result, err := workflows.Keypair(cmd.Context(), workflows.KeypairOptions{
				Environment: keypairEnvironment,
				KeysPath:    keypairKeysPath,
				Force:       keypairForce,
			})
			if err != nil {
				Logger.Errorf("Keypair generation failed: %v", err)
				spinner.FinalMSG = color.RedString("✗") + " Failed to generate a private key\n" +
					color.RedString("Error: ") + err.Error()
				return nil
			}

			Logger.Infof("Keypair command completed successfully")
			spinner.FinalMSG = color.GreenString("✓") + " Generated " + color.YellowString(result.KeyName) +
				" in " + color.YellowString(result.KeysPath) + "\n" +
				color.CyanString("→") + " Keep " + color.YellowString(result.KeysPath) + " out of version control"
			return nil
		},
	}
)

func init() {
	keypairCmd.Flags().StringVarP(&keypairEnvironment, "environment", "e", "", "environment tag scoping the key name")
	keypairCmd.Flags().StringVar(&keypairKeysPath, "keys", "", "key-store file to write (default .env.keys)")
	keypairCmd.Flags().BoolVar(&keypairForce, "force", false, "replace an existing key")
}

func resetKeypairCommandState() {
	keypairEnvironment = ""
	keypairKeysPath = ""
	keypairForce = false
}
