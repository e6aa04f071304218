package usecase

import (
	"context"
	"math"

	"github.com/totegamma/i18n-store/internal/domain"
	"github.com/totegamma/i18n-store/internal/infra/telemetry"
	"github.com/totegamma/i18n-store/internal/validation"
)

// TranslationInput is the create/update payload. Tags distinguishes an
// absent field (nil) from an explicit empty list.
type TranslationInput struct {
	Group  *string   `json:"group" validate:"omitempty,max=255"`
	Key    string    `json:"key" validate:"required,notblank,max=255"`
	Locale string    `json:"locale" validate:"required,notblank,max=255"`
	Value  string    `json:"value" validate:"required,notblank"`
	Tags   *[]string `json:"tags" validate:"omitempty,dive,required,notblank,max=255"`
}

func (in TranslationInput) toDomain(id uint64) domain.Translation {
	return domain.Translation{
		ID:     id,
		Group:  in.Group,
		Key:    in.Key,
		Locale: in.Locale,
		Value:  in.Value,
	}
}

type TranslationUsecase struct {
	repo     TranslationRepository
	validate *validation.Validator
	metrics  *telemetry.Metrics
}

func NewTranslationUsecase(repo TranslationRepository, validate *validation.Validator, metrics *telemetry.Metrics) *TranslationUsecase {
	return &TranslationUsecase{
		repo:     repo,
		validate: validate,
		metrics:  metrics,
	}
}

// List returns one page of DefaultPerPage translations. Pages below 1 are
// treated as the first page; pages whose offset would overflow an int are
// clamped to the last representable page, which is always past the end.
func (uc *TranslationUsecase) List(ctx context.Context, filter domain.TranslationFilter, page int) (domain.Page[domain.Translation], error) {
	ctx, span := tracer.Start(ctx, "Translation.Usecase.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / domain.DefaultPerPage; page > maxPage {
		page = maxPage
	}

	return uc.repo.List(ctx, filter, page, domain.DefaultPerPage)
}

func (uc *TranslationUsecase) Get(ctx context.Context, id uint64) (domain.Translation, error) {
	ctx, span := tracer.Start(ctx, "Translation.Usecase.Get")
	defer span.End()

	return uc.repo.Get(ctx, id)
}

func (uc *TranslationUsecase) Create(ctx context.Context, input TranslationInput) (domain.Translation, error) {
	ctx, span := tracer.Start(ctx, "Translation.Usecase.Create")
	defer span.End()

	if err := uc.validate.Validate(input); err != nil {
		return domain.Translation{}, err
	}

	created, err := uc.repo.Create(ctx, input.toDomain(0), input.Tags)
	if err != nil {
		span.RecordError(err)
		return domain.Translation{}, err
	}

	uc.metrics.TranslationWrites.WithLabelValues("create").Inc()
	return created, nil
}

// Update reports a missing translation before validating the payload.
func (uc *TranslationUsecase) Update(ctx context.Context, id uint64, input TranslationInput) (domain.Translation, error) {
	ctx, span := tracer.Start(ctx, "Translation.Usecase.Update")
	defer span.End()

	if _, err := uc.repo.Get(ctx, id); err != nil {
		return domain.Translation{}, err
	}

	if err := uc.validate.Validate(input); err != nil {
		return domain.Translation{}, err
	}

	updated, err := uc.repo.Update(ctx, input.toDomain(id), input.Tags)
	if err != nil {
		span.RecordError(err)
		return domain.Translation{}, err
	}

	uc.metrics.TranslationWrites.WithLabelValues("update").Inc()
	return updated, nil
}

func (uc *TranslationUsecase) Delete(ctx context.Context, id uint64) error {
	ctx, span := tracer.Start(ctx, "Translation.Usecase.Delete")
	defer span.End()

	if err := uc.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}

	uc.metrics.TranslationWrites.WithLabelValues("delete").Inc()
	return nil
}
