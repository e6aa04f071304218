package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/totegamma/i18n-store/internal/domain"
	"github.com/totegamma/i18n-store/internal/service"
	"github.com/totegamma/i18n-store/internal/validation"
)

const (
	principalCacheTTL     = 5 * time.Minute
	principalCacheCleanup = 10 * time.Minute
)

// TokenInput is the credential exchange payload.
type TokenInput struct {
	Email      string `json:"email" validate:"required,notblank,email"`
	Password   string `json:"password" validate:"required"`
	DeviceName string `json:"device_name" validate:"max=255"`
}

type AuthUsecase struct {
	users    UserRepository
	auth     *service.AuthService
	validate *validation.Validator
	cache    *cache.Cache
}

func NewAuthUsecase(users UserRepository, auth *service.AuthService, validate *validation.Validator) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		auth:     auth,
		validate: validate,
		cache:    cache.New(principalCacheTTL, principalCacheCleanup),
	}
}

// IssueToken checks the credentials and returns a bearer token.
func (uc *AuthUsecase) IssueToken(ctx context.Context, input TokenInput) (string, error) {
	ctx, span := tracer.Start(ctx, "Auth.Usecase.IssueToken")
	defer span.End()

	if err := uc.validate.Validate(input); err != nil {
		return "", err
	}

	user, err := uc.users.FindByEmail(ctx, input.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.ErrInvalidCredentials
	}
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		return "", domain.ErrInvalidCredentials
	}

	return uc.auth.Issue(ctx, user.ID)
}

// Authenticate resolves a bearer token to its user. Users are cached for a
// few minutes so authenticated requests skip the lookup.
func (uc *AuthUsecase) Authenticate(ctx context.Context, token string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "Auth.Usecase.Authenticate")
	defer span.End()

	result, err := uc.auth.AuthJwt(ctx, token)
	if err != nil {
		return domain.User{}, err
	}

	key := strconv.FormatUint(result.UserID, 10)
	if cached, found := uc.cache.Get(key); found {
		return cached.(domain.User), nil
	}

	user, err := uc.users.Get(ctx, result.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.ErrUnauthenticated
	}
	if err != nil {
		span.RecordError(err)
		return domain.User{}, err
	}

	uc.cache.Set(key, user, cache.DefaultExpiration)
	return user, nil
}
