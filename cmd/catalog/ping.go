package main

import (
	"context"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the database answers",
	Args:  cobra.NoArgs,
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

		if err := s.conn.Ping(ctx); err != nil {
			return err
		}

		connCfg, _ := s.cfg.Connector()
		printSuccess("Connected to %s database %s", connCfg.Driver, connCfg.Database)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
