package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mediatek86/catalog/pkg/engine"
	"github.com/mediatek86/catalog/pkg/engine/introspect"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [table]",
	Short: "List the database tables, or the columns of one",
	Long: `List the tables of the connected database.

Tables marked "generic" have no special read route: GET on them runs the
generic single-table builder.

Examples:
  catalog tables
  catalog tables commande`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		connCfg, err := s.cfg.Connector()
		if err != nil {
			return err
		}
		insp, err := introspect.New(s.conn, connCfg.Driver)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			table, err := insp.InspectTable(ctx, args[0])
			if err != nil {
				return err
			}
			printColumns(table)
			return nil
		}

		tables, err := insp.ListTables(ctx)
		if err != nil {
			return err
		}
		if len(tables) == 0 {
			printInfo("No tables found")
			return nil
		}
		printTables(tables, introspect.Generic(tables, s.engine.Registry(), engine.VerbRead))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

func printTables(tables, generic []string) {
	isGeneric := make(map[string]bool, len(generic))
	for _, t := range generic {
		isGeneric[t] = true
	}

	fmt.Println()
	fmt.Println("Table                    Read route")
	fmt.Println("─────────────────────────────────────")
	for _, t := range tables {
		route := "special"
		if isGeneric[t] {
			route = "generic"
		}
		fmt.Printf("%-24s %s\n", t, route)
	}
	fmt.Println()
}

func printColumns(table *introspect.TableInfo) {
	fmt.Println()
	fmt.Printf("%s\n", table.Name)
	fmt.Println("─────────────────────────────────────────────────────")
	for _, col := range table.Columns {
		flags := ""
		if col.PrimaryKey {
			flags += " PK"
		}
		if !col.Nullable {
			flags += " NOT NULL"
		}
		if col.DefaultVal != nil {
			flags += " DEFAULT " + *col.DefaultVal
		}
		fmt.Printf("  %-20s %-14s%s\n", col.Name, col.Type, flags)
	}
	fmt.Println()
}
