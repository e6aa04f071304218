package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/i18n-store/internal/domain"
)

var tracer = otel.Tracer("auth")

type AuthService struct {
	secret   []byte
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService issues HS256 bearer tokens. A zero ttl issues tokens without
// an expiry.
func NewAuthService(secret, audience string, ttl time.Duration) *AuthService {
	return &AuthService{
		secret:   []byte(secret),
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

type AuthResult struct {
	UserID  uint64
	TokenID string
}

func (s *AuthService) Issue(ctx context.Context, userID uint64) (string, error) {
	_, span := tracer.Start(ctx, "Auth.Service.Issue")
	defer span.End()

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:  strconv.FormatUint(userID, 10),
		Audience: jwt.ClaimStrings{s.audience},
		IssuedAt: jwt.NewNumericDate(now),
		ID:       uuid.NewString(),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "failed to sign token")
	}

	return token, nil
}

func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(s.audience),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, errors.Wrap(domain.ErrUnauthenticated, err.Error())
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		err := fmt.Errorf("invalid subject %q", claims.Subject)
		span.RecordError(err)
		return nil, errors.Wrap(domain.ErrUnauthenticated, err.Error())
	}

	return &AuthResult{UserID: userID, TokenID: claims.ID}, nil
}
