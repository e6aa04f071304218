package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/i18n-store/internal/domain"
	"github.com/totegamma/i18n-store/internal/log"
	"github.com/totegamma/i18n-store/internal/present/rest/presenter"
	"github.com/totegamma/i18n-store/internal/usecase"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *usecase.AuthUsecase
}

func NewAuthMiddleware(auth *usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated user in the request context.
func (s *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.RequireAuth")
		defer span.End()

		authType, token, ok := strings.Cut(c.Request().Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(authType, "Bearer") || token == "" {
			span.RecordError(fmt.Errorf("missing bearer token"))
			return presenter.Unauthenticated(c)
		}

		user, err := s.auth.Authenticate(ctx, strings.TrimSpace(token))
		if err != nil {
			span.RecordError(errors.Wrap(err, "AuthMiddleware.RequireAuth: s.auth.Authenticate failed"))
			if errors.Is(err, domain.ErrUnauthenticated) {
				return presenter.Unauthenticated(c)
			}
			return presenter.InternalError(c, err)
		}

		ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, user.ID)
		ctx = context.WithValue(ctx, domain.RequesterUserCtxKey, user)
		ctx = log.InjectRequester(ctx, user.ID)
		span.SetAttributes(attribute.Int64("RequesterId", int64(user.ID)))

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
