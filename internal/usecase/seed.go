package usecase

import (
	"context"
	"math/rand/v2"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/totegamma/i18n-store/internal/domain"
)

const (
	seedBatchSize = 1000
	seedTagCount  = 3
	alphanumeric  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

var (
	seedGroups  = []string{"web", "mobile"}
	seedLocales = []string{"en", "fr", "es"}
)

type SeedUsecase struct {
	repo  SeedRepository
	users UserRepository
	rng   *rand.Rand
}

func NewSeedUsecase(repo SeedRepository, users UserRepository) *SeedUsecase {
	now := uint64(time.Now().UnixNano())
	return &SeedUsecase{
		repo:  repo,
		users: users,
		rng:   rand.New(rand.NewPCG(now, now>>1)),
	}
}

// GenerateTranslations inserts count random translations spread over the
// web/mobile groups and en/fr/es locales, each linked to up to three of
// freshly created tags.
func (uc *SeedUsecase) GenerateTranslations(ctx context.Context, count int) (int, error) {
	ctx, span := tracer.Start(ctx, "Seed.Usecase.GenerateTranslations")
	defer span.End()

	if count <= 0 {
		return 0, nil
	}

	names := make([]string, seedTagCount)
	for i := range names {
		suffix, err := gonanoid.Generate(alphanumeric, 8)
		if err != nil {
			return 0, errors.Wrap(err, "failed to generate tag name")
		}
		names[i] = "tag_" + suffix
	}

	tags, err := uc.repo.ResolveTags(ctx, names)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	inserted := 0
	for inserted < count {
		size := min(seedBatchSize, count-inserted)

		batch := make([]domain.Translation, size)
		for i := range batch {
			translation, err := uc.randomTranslation(tags)
			if err != nil {
				return inserted, err
			}
			batch[i] = translation
		}

		if err := uc.repo.CreateBatch(ctx, batch); err != nil {
			span.RecordError(err)
			return inserted, err
		}
		inserted += size
	}

	return inserted, nil
}

func (uc *SeedUsecase) randomTranslation(tags []domain.Tag) (domain.Translation, error) {
	key, err := gonanoid.Generate(alphanumeric, 10)
	if err != nil {
		return domain.Translation{}, errors.Wrap(err, "failed to generate key")
	}
	value, err := gonanoid.Generate(alphanumeric, 20)
	if err != nil {
		return domain.Translation{}, errors.Wrap(err, "failed to generate value")
	}

	group := seedGroups[uc.rng.IntN(len(seedGroups))]

	picked := uc.rng.Perm(len(tags))[:uc.rng.IntN(len(tags)+1)]
	selected := make([]domain.Tag, len(picked))
	for i, idx := range picked {
		selected[i] = tags[idx]
	}

	return domain.Translation{
		Group:  &group,
		Key:    "key_" + key,
		Locale: seedLocales[uc.rng.IntN(len(seedLocales))],
		Value:  "Value " + value,
		Tags:   selected,
	}, nil
}

// SeedUser creates or resets an API user with a bcrypt hashed password.
func (uc *SeedUsecase) SeedUser(ctx context.Context, name, email, password string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, errors.Wrap(err, "failed to hash password")
	}

	return uc.users.Upsert(ctx, domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
}
