package usecase

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/totegamma/i18n-store/internal/domain"
)

var tracer = otel.Tracer("usecase")

// TranslationRepository defines storage operations for translations and
// their tag associations. A nil tags argument leaves associations untouched.
type TranslationRepository interface {
	List(ctx context.Context, filter domain.TranslationFilter, page, perPage int) (domain.Page[domain.Translation], error)
	Get(ctx context.Context, id uint64) (domain.Translation, error)
	Create(ctx context.Context, translation domain.Translation, tags *[]string) (domain.Translation, error)
	Update(ctx context.Context, translation domain.Translation, tags *[]string) (domain.Translation, error)
	Delete(ctx context.Context, id uint64) error
}

// ExportRepository streams the export projection of every translation.
type ExportRepository interface {
	Scan(ctx context.Context, fn func(domain.ExportRow) error) error
}

// SeedRepository bulk loads generated data.
type SeedRepository interface {
	ResolveTags(ctx context.Context, names []string) ([]domain.Tag, error)
	CreateBatch(ctx context.Context, translations []domain.Translation) error
}

// UserRepository defines persistence/lookup for API users.
type UserRepository interface {
	Get(ctx context.Context, id uint64) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	Upsert(ctx context.Context, user domain.User) (domain.User, error)
}
