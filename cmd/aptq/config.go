package main

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `The config command prints the configuration aptq would use after merging
the config file, APTKIT_* environment variables and flags. The output is TOML
and can be saved as a config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfig()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(cfg)
	}
	out, err := cfg.MarshalTOML()
	if err != nil {
		return err
	}
	printInfo("%s", out)
	return nil
}
