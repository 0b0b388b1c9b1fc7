package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediatek86/catalog/pkg/engine"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show catalog version",
	Long:  "Display the current version of the catalog CLI and the store drivers it embeds",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("catalog v%s\n", version)

		if verbose {
			fmt.Println("\nDrivers:")
			for _, d := range []engine.Driver{engine.DriverMySQL, engine.DriverPostgres, engine.DriverSQLite, engine.DriverSQLServer} {
				fmt.Printf("  %-10s default port %d\n", d, d.DefaultPort())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
