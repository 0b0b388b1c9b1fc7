package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mediatek86/catalog/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the local catalog configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long: `Print the configuration after .env, ${VAR} expansion and the BDD_*
overrides were applied. The password is masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		shown := *cfg
		if shown.Database.Password != "" {
			shown.Database.Password = "****"
		}
		if shown.Database.ConnectionString != "" {
			if connCfg, err := shown.Connector(); err == nil {
				shown.Database.ConnectionString = connCfg.Redacted()
			}
		}

		data, err := yaml.Marshal(&shown)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter .catalog.yml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveWorkDir()
		if err != nil {
			return err
		}

		path := filepath.Join(dir, config.FileName)
		if _, err := os.Stat(path); err == nil {
			printWarning("%s already exists", config.FileName)
			return nil
		}

		if err := os.WriteFile(path, []byte(config.Template()), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", config.FileName, err)
		}
		printSuccess("Created %s", config.FileName)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
