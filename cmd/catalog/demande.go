package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mediatek86/catalog/pkg/engine"
)

var (
	demandeID     string
	demandeFields string
)

var demandeCmd = &cobra.Command{
	Use:   "demande <METHOD> <resource>",
	Short: "Dispatch one request and print its result as JSON",
	Long: `Dispatch one request through the engine.

METHOD is GET, POST, PUT or DELETE (exact case). The result is printed as
JSON: an array of rows, a count, a boolean, or null when absent.

Examples:
  catalog demande GET livre
  catalog demande GET exemplaire --fields '{"id":"00017"}'
  catalog demande PUT genre --id 10000 --fields '{"libelle":"Policier"}'
  catalog demande DELETE genre --fields '{"id":"10000"}'
  catalog demande PUT commandeDocSupprimer --fields '{"Id":"00042"}'`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := parseFields(demandeFields)
		if err != nil {
			return err
		}
		var id *string
		if demandeID != "" {
			id = &demandeID
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		res, dispatchErr := s.engine.Demande(ctx, args[0], args[1], id, fields)
		if err := printResult(res); err != nil {
			return err
		}
		return dispatchErr
	},
}

func init() {
	demandeCmd.Flags().StringVar(&demandeID, "id", "", "identifier of the targeted row")
	demandeCmd.Flags().StringVar(&demandeFields, "fields", "", "JSON object of named fields")
	rootCmd.AddCommand(demandeCmd)
}

// parseFields decodes a JSON object; empty input means no fields
func parseFields(raw string) (*engine.FieldMap, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	fields := engine.NewFieldMap()
	if err := json.Unmarshal([]byte(raw), fields); err != nil {
		return nil, fmt.Errorf("invalid --fields: %w", err)
	}
	return fields, nil
}

func printResult(res engine.Result) error {
	data, err := json.MarshalIndent(res.Value(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result as JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
