package database

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/totegamma/i18n-store/internal/config"
	"github.com/totegamma/i18n-store/internal/infra/database/models"
)

// logOutput keeps gorm's warnings off stdout, which the export command
// writes the document to.
var logOutput io.Writer = os.Stderr

func newLogger() logger.Interface {
	return logger.New(
		log.New(logOutput, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             300 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  false,
		},
	)
}

func NewPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(),
	})
	return db, err
}

// NewSQLite opens an embedded database. Foreign keys are switched on so the
// join table constraints behave like they do on postgres.
func NewSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         newLogger(),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers anyway; one connection also keeps :memory: databases shared
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func Open(conf config.Server) (*gorm.DB, error) {
	switch conf.Driver {
	case config.DriverPostgres:
		return NewPostgres(conf.PostgresDsn)
	case config.DriverSQLite:
		return NewSQLite(conf.SqlitePath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", conf.Driver)
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Translation{},
		&models.Tag{},
		&models.TranslationTag{},
		&models.User{},
	)
}
