package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/totegamma/i18n-store/internal/config"
	"github.com/totegamma/i18n-store/internal/infra/providers"
	"github.com/totegamma/i18n-store/internal/log"
)

var (
	version = "dev"
)

type commandFactory struct {
	configPath string
	conf       config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := &commandFactory{}
	if err := f.newRootCmd(ctx).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func (f *commandFactory) newRootCmd(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "i18nstore",
		Short:         "Translation management service",
		Long:          "i18nstore stores localized strings, serves them over a token protected REST API and exports them as a nested JSON document.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.Load(f.configPath)
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}
			f.conf = conf

			log.Setup(os.Stderr, conf.Server.LogLevel, conf.Server.LogFormat)
			cmd.SetContext(log.InjectCommand(cmd.Context(), cmd.Name()))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&f.configPath, "config", "c", os.Getenv("I18N_CONFIG"), "path to the yaml config file")

	rootCmd.AddCommand(
		f.newServeCmd(),
		f.newMigrateCmd(),
		f.newGenerateCmd(),
		f.newSeedCmd(),
		f.newExportCmd(),
	)

	rootCmd.SetContext(ctx)

	return rootCmd
}

// open connects to the configured database and runs the migrations.
func (f *commandFactory) open(ctx context.Context) (*gorm.DB, func(), error) {
	db, err := providers.NewDatabase(f.conf.Server)
	if err != nil {
		log.Error(ctx, "failed to connect database", err)
		return nil, nil, err
	}

	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	if err := providers.MigrateDatabase(db); err != nil {
		log.Error(ctx, "failed to migrate database", err)
		closeDB()
		return nil, nil, err
	}

	return db, closeDB, nil
}
