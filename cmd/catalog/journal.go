package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mediatek86/catalog/internal/journal"
)

var (
	journalLimit  int
	journalFormat string
)

var journalCmd = &cobra.Command{
	Use:   "journal <subcommand>",
	Short: "Query the write journal",
	Long: `View the journal of write requests.

Every POST, PUT and DELETE dispatched by the engine is appended to a daily
file under the configured journal directory.

Subcommands:
  journal last        Show last N requests
  journal errors      Show today's requests that did not succeed`,
	Args: cobra.MinimumNArgs(1),
}

var journalLastCmd = &cobra.Command{
	Use:   "last [n]",
	Short: "Show last N journal entries",
	Long: `Display the most recent journal entries.

Examples:
  catalog journal last        # Last 10 entries
  catalog journal last 20     # Last 20 entries
  catalog journal last 5 --format=json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Resolve limit from flag, optionally overridden by positional arg.
		limit := journalLimit
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid number: %s", args[0])
			}
			limit = n
		}
		if limit <= 0 {
			return fmt.Errorf("limit must be greater than 0")
		}

		j, err := localJournal()
		if err != nil {
			return err
		}

		entries, err := j.Last(limit)
		if err != nil {
			return fmt.Errorf("failed to read journal: %w", err)
		}
		if len(entries) == 0 {
			printInfo("No journal entries found")
			return nil
		}

		return printEntries(entries)
	},
}

var journalErrorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Show failed journal entries",
	Long: `Display today's requests that failed or only partly succeeded.

Examples:
  catalog journal errors
  catalog journal errors --format=json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := localJournal()
		if err != nil {
			return err
		}

		entries, err := j.Errors()
		if err != nil {
			return fmt.Errorf("failed to read journal: %w", err)
		}
		if len(entries) == 0 {
			printSuccess("No errors found")
			return nil
		}

		return printEntries(entries)
	},
}

func init() {
	journalCmd.AddCommand(journalLastCmd)
	journalCmd.AddCommand(journalErrorsCmd)

	journalLastCmd.Flags().IntVar(&journalLimit, "limit", 10, "number of entries to show")
	journalCmd.PersistentFlags().StringVar(&journalFormat, "format", "table", "output format (table|json)")

	rootCmd.AddCommand(journalCmd)
}

// localJournal opens the journal of the work directory configuration
func localJournal() (*journal.Journal, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Engine.Journal.Dir == "" {
		return nil, fmt.Errorf("no journal directory configured")
	}
	return journal.New(cfg.Engine.Journal.Dir)
}

func printEntries(entries []*journal.Entry) error {
	if journalFormat == "json" {
		return printEntriesJSON(entries)
	}
	printEntriesTable(entries)
	return nil
}

// printEntriesTable prints entries in table format
func printEntriesTable(entries []*journal.Entry) {
	fmt.Println()
	fmt.Println("Timestamp            Method  Resource                 Result       Outcome")
	fmt.Println("──────────────────────────────────────────────────────────────────────────────")

	for _, entry := range entries {
		timestamp := entry.Timestamp.Format("2006-01-02 15:04:05")
		fmt.Printf("%-20s %-7s %-24s %-12s %s\n",
			timestamp, entry.Action, truncate(entry.Resource, 24), entry.Result, truncate(entry.Outcome, 40))
	}

	fmt.Println()
}

// printEntriesJSON prints entries in JSON format
func printEntriesJSON(entries []*journal.Entry) error {
	type entryJSON struct {
		Timestamp string `json:"timestamp"`
		Method    string `json:"method"`
		RequestID string `json:"request_id"`
		Resource  string `json:"resource"`
		Category  string `json:"category"`
		Result    string `json:"result"`
		Outcome   string `json:"outcome"`
	}

	out := make([]entryJSON, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entryJSON{
			Timestamp: entry.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Method:    entry.Action,
			RequestID: entry.RequestID,
			Resource:  entry.Resource,
			Category:  entry.Category,
			Result:    entry.Result,
			Outcome:   entry.Outcome,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode journal output as JSON: %w", err)
	}

	fmt.Println(string(data))
	return nil
}

// truncate truncates a string to max length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
