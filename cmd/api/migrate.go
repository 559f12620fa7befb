package main

import (
	"calendarbot/cmd/internal/config"
	"calendarbot/cmd/internal/domain/sqlite"
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and print the schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := sqlite.Init(cmd.Context(), cfg.DBPath)
			if err != nil {
				return err
			}
			defer sqlite.Close(db)

			v, err := sqlite.Version(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at schema version %d\n", cfg.DBPath, v)
			return nil
		},
	}
}
