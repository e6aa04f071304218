package main

import (
	"github.com/spf13/cobra"

	"github.com/totegamma/i18n-store/internal/log"
)

func (f *commandFactory) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, closeDB, err := f.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			log.Info(cmd.Context(), "migration completed")
			return nil
		},
	}
}
