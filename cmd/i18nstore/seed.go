package main

import (
	"github.com/spf13/cobra"

	"github.com/totegamma/i18n-store/internal/infra/providers"
	"github.com/totegamma/i18n-store/internal/log"
)

func (f *commandFactory) newSeedCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the API user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, closeDB, err := f.open(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			app := providers.NewApp(f.conf.Server, db)

			user, err := app.Seed.SeedUser(ctx, name, email, password)
			if err != nil {
				log.Error(ctx, "failed to seed user", err)
				return err
			}

			cmd.Printf("Seeded user %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Admin User", "display name")
	cmd.Flags().StringVar(&email, "email", "admin@admin.com", "login email")
	cmd.Flags().StringVar(&password, "password", "password", "login password")

	return cmd
}
