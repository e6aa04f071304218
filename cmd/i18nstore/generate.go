package main

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/totegamma/i18n-store/internal/infra/providers"
	"github.com/totegamma/i18n-store/internal/log"
)

const defaultGenerateCount = 100000

func (f *commandFactory) newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [count]",
		Short: "Insert random translations for load testing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			count := defaultGenerateCount
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 0 {
					return errors.Errorf("count must be a non-negative integer, got %q", args[0])
				}
				count = n
			}

			db, closeDB, err := f.open(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			app := providers.NewApp(f.conf.Server, db)

			start := time.Now()
			inserted, err := app.Seed.GenerateTranslations(ctx, count)
			if err != nil {
				log.Error(ctx, "generation aborted", err, slog.Int("inserted", inserted))
				return err
			}

			cmd.Printf("Generated %d translations in %s\n", inserted, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
