package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the special routes of the catalog",
	Long: `List every (method, resource) pair with a special route.

Any other resource name is served by the generic single-table builder.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println("Method   Resource                 Category      Description")
		fmt.Println("─────────────────────────────────────────────────────────────────")
		for _, route := range registry.Routes() {
			fmt.Printf("%-8s %-24s %-13s %s\n",
				route.Verb.Method(), route.Resource, route.Category, route.Description)
		}
		fmt.Println()
		if verbose {
			printInfo("Other resources fall back to the generic table builder")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
