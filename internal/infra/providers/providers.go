package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/totegamma/i18n-store/internal/config"
	"github.com/totegamma/i18n-store/internal/infra/database"
	"github.com/totegamma/i18n-store/internal/infra/repository"
	"github.com/totegamma/i18n-store/internal/infra/telemetry"
	"github.com/totegamma/i18n-store/internal/service"
	"github.com/totegamma/i18n-store/internal/usecase"
	"github.com/totegamma/i18n-store/internal/validation"
)

// NewDatabase opens the configured database driver.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.Open(conf)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.Migrate(db)
}

// App holds the usecases shared by the HTTP server and the CLI commands.
type App struct {
	Registry    *prometheus.Registry
	Translation *usecase.TranslationUsecase
	Export      *usecase.ExportUsecase
	Auth        *usecase.AuthUsecase
	Seed        *usecase.SeedUsecase
}

func NewApp(conf config.Server, db *gorm.DB) *App {
	registry := telemetry.NewRegistry()
	metrics := telemetry.NewMetrics(registry)
	validate := validation.New()

	translationRepo := repository.NewTranslationRepository(db)
	exportRepo := repository.NewExportRepository(db)
	userRepo := repository.NewUserRepository(db)

	auth := service.NewAuthService(conf.JwtSecret, conf.TokenAudience, conf.TokenTTL)

	return &App{
		Registry:    registry,
		Translation: usecase.NewTranslationUsecase(translationRepo, validate, metrics),
		Export:      usecase.NewExportUsecase(exportRepo, metrics, conf.ExportBudget),
		Auth:        usecase.NewAuthUsecase(userRepo, auth, validate),
		Seed:        usecase.NewSeedUsecase(translationRepo, userRepo),
	}
}
