package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/totegamma/i18n-store/internal/infra/providers"
)

func (f *commandFactory) newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every translation as locale/group/key JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, closeDB, err := f.open(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			app := providers.NewApp(f.conf.Server, db)

			body, err := app.Export.Render(ctx)
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(append(body, '\n'))
				return err
			}

			if err := os.WriteFile(out, body, 0o644); err != nil {
				return errors.Wrapf(err, "failed to write %s", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	return cmd
}
