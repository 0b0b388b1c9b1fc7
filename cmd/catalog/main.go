package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	workDir     string
	debugFlag   string
	askPassword bool
)

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Library catalog data-access engine",
	Long: `catalog dispatches requests against the library catalog database.

A request is a method (GET, POST, PUT, DELETE), a resource name, an optional
id and an optional JSON object of fields. Catalog resources with a special
route (joined reads, lookups, document orders) are handled by it; any other
resource name is treated as a table.

Configuration is read from .catalog.yml (or .catalog.toml) in the work
directory. The BDD_* variables and DATABASE_URL override it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&workDir, "dir", "", "work directory holding .catalog.yml (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&debugFlag, "debug", "", "engine trace level: off, sql or trace (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&askPassword, "ask-password", false, "prompt for the database password")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// ─────────────────────────────────────────────────────────────
// Output helpers
// ─────────────────────────────────────────────────────────────

func printSuccess(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprint(os.Stdout, "✓ ")
	fmt.Printf(format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	color.New(color.FgCyan).Fprint(os.Stdout, "ℹ ")
	fmt.Printf(format+"\n", args...)
}

func printWarning(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprint(os.Stdout, "⚠ ")
	fmt.Printf(format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	color.New(color.FgRed).Fprint(os.Stderr, "✗ ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
