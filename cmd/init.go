package cmd

import (
	"os"
	"path/filepath"

	"github.com/avelline/envault/internal/configs"
	"github.com/avelline/envault/internal/workflows"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	initName        string
	initEnvironment string
	initAudit       bool

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Creates the project settings file and a private key",
		Long: `Writes .envault.toml in the current directory and generates the default
private key in .env.keys, so value-level encryption works out of the box.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			Logger.Infof("Starting init command")
			spinner, cleanup := startSpinner("Initializing project...", verbose)
			defer cleanup()

			wd, err := os.Getwd()
			if err != nil {
				return Logger.ErrorfAndReturn("failed to get working directory: %v", err)
			}

			if _, err := os.Stat(filepath.Join(wd, configs.ProjectConfigName)); err == nil {
				spinner.FinalMSG = color.RedString("✗") + " Project is already initialized\n" +
					color.CyanString("→") + " Edit " + color.YellowString(configs.ProjectConfigName) + " directly"
				return nil
			}

			name := initName
			if name == "" {
				name = filepath.Base(wd)
			}
			configs.ProjectEnvaultSettings = &configs.ProjectSettings{
				ProjectPath: wd,
				ProjectName: name,
			}

			cfg := configs.DefaultProjectConfig()
			cfg.Project.Name = name
			if initEnvironment != "" {
				cfg.Project.DefaultEnvironment = initEnvironment
			}
			cfg.Audit.Enabled = initAudit

			Logger.Debugf("Writing project config for %s", name)
			if err := configs.SaveProjectConfig(cfg); err != nil {
				Logger.Errorf("Failed to write project config: %v", err)
				spinner.FinalMSG = color.RedString("✗") + " Failed to write " + color.YellowString(configs.ProjectConfigName) + "\n" +
					color.RedString("Error: ") + err.Error()
				return nil
			}

			keypair, err := workflows.Keypair(cmd.Context(), workflows.KeypairOptions{})
			if err != nil {
				Logger.Errorf("Failed to generate default private key: %v", err)
				spinner.FinalMSG = color.GreenString("✓") + " Created " + color.YellowString(configs.ProjectConfigName) + "\n" +
					color.RedString("✗") + " Failed to generate the default private key: " + err.Error()
				return nil
			}

			Logger.Infof("Init command completed successfully")
			spinner.FinalMSG = color.GreenString("✓") + " Created " + color.YellowString(configs.ProjectConfigName) +
				" and " + color.YellowString(keypair.KeyName) + " in " + color.YellowString(keypair.KeysPath) + "\n" +
				color.CyanString("→") + " Keep " + color.YellowString(keypair.KeysPath) + " out of version control"
			return nil
		},
	}
)

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "project name (default: directory name)")
	initCmd.Flags().StringVarP(&initEnvironment, "environment", "e", "", "default environment tag")
	initCmd.Flags().BoolVar(&initAudit, "audit", false, "enable the append-only run log")
}

func resetInitCommandState() {
	initName = ""
	initEnvironment = ""
	initAudit = false
}
