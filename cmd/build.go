package cmd

import (
	"github.com/avelline/envault/internal/configs"
	"github.com/avelline/envault/internal/utils"
	"github.com/avelline/envault/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	buildFiles       []string
	buildEnvironment string
	buildVaultPath   string
	buildKeysPath    string
	buildDryRun      bool

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Encrypts your .env files into a committable .env.vault container",
		Long: `Encrypts the given env files (default .env) into one environment entry
of the vault container. The entry's master secret is written to .env.keys,
which must never be committed; the container itself is safe to commit.

Rebuilding an environment reuses its existing master secret, so secrets
already distributed keep working.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			environment := buildEnvironment
			if environment == "" {
				if cfg, err := configs.LoadProjectConfig(); err == nil {
					environment = cfg.Project.DefaultEnvironment
				}
			}

			Logger.Infof("Starting build command for environment: %s", environment)
			spinner, cleanup := startSpinner("Building vault container...", verbose)
			defer cleanup()

			result, err := workflows.Build(cmd.Context(), workflows.BuildOptions{
				EnvFiles:    buildFiles,
				Environment: environment,
				VaultPath:   buildVaultPath,
				KeysPath:    buildKeysPath,
				DryRun:      buildDryRun,
			})
			if err != nil {
				Logger.Errorf("Build failed: %v", err)
				spinner.FinalMSG = color.RedString("✗") + " Failed to build the vault container\n" +
					color.RedString("Error: ") + err.Error()
				return nil
			}

			if result.DryRun {
				spinner.FinalMSG = color.GreenString("✓") + " Dry run: would encrypt into " +
					color.YellowString(result.VaultPath) + " for environment " + color.YellowString(result.Environment)
				return nil
			}

			Logger.Infof("Build command completed successfully")
			spinner.FinalMSG = color.GreenString("✓") + " Encrypted into " + color.YellowString(result.VaultPath) +
				" for environment " + color.YellowString(result.Environment) + "\n" +
				"The following files were encrypted: " + utils.FormatPaths(result.SourceFiles) +
				color.CyanString("→") + " Commit " + color.YellowString(result.VaultPath) + ", keep " +
				color.YellowString(result.KeysPath) + " out of version control\n" +
				color.CyanString("→") + " Set " + color.YellowString("ENVAULT_KEY") + " to the master secret in " +
				color.YellowString(result.KeysPath) + " where this environment runs"
			return nil
		},
	}
)

func init() {
	buildCmd.Flags().StringSliceVarP(&buildFiles, "file", "f", nil, "env file to encrypt (repeatable, default .env)")
	buildCmd.Flags().StringVarP(&buildEnvironment, "environment", "e", "", "environment tag for the container entry (default from .envault.toml)")
	buildCmd.Flags().StringVar(&buildVaultPath, "vault", "", "vault container to write (default .env.vault next to the first env file)")
	buildCmd.Flags().StringVar(&buildKeysPath, "keys", "", "key-store file for the master secret (default .env.keys next to the vault)")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "preview the build without writing anything")
}

func resetBuildCommandState() {
	buildFiles = nil
	buildEnvironment = ""
	buildVaultPath = ""
	buildKeysPath = ""
	buildDryRun = false
}
