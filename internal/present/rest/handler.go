package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zeebo/xxh3"

	"github.com/totegamma/i18n-store/internal/domain"
	"github.com/totegamma/i18n-store/internal/log"
	"github.com/totegamma/i18n-store/internal/present/rest/middleware"
	"github.com/totegamma/i18n-store/internal/present/rest/presenter"
	"github.com/totegamma/i18n-store/internal/usecase"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	translation *usecase.TranslationUsecase
	export      *usecase.ExportUsecase
	auth        *usecase.AuthUsecase
	db          Pinger
	gatherer    prometheus.Gatherer
}

func NewHandler(
	translation *usecase.TranslationUsecase,
	export *usecase.ExportUsecase,
	auth *usecase.AuthUsecase,
	db Pinger,
	gatherer prometheus.Gatherer,
) *Handler {
	return &Handler{
		translation: translation,
		export:      export,
		auth:        auth,
		db:          db,
		gatherer:    gatherer,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	e.POST("/sanctum/token", h.handleIssueToken)

	authMiddleware := middleware.NewAuthMiddleware(h.auth)
	api := e.Group("/api", authMiddleware.RequireAuth)
	api.GET("/translations", h.handleListTranslations)
	api.POST("/translations", h.handleCreateTranslation)
	api.GET("/translations/:id", h.handleGetTranslation)
	api.PUT("/translations/:id", h.handleUpdateTranslation)
	api.DELETE("/translations/:id", h.handleDeleteTranslation)
	api.GET("/export", h.handleExport)
}

func (h *Handler) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		log.Error(ctx, "database ping failed", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

// handleIssueToken answers 200 with the bearer token wrapped in a JSON
// object, {"token": "..."}, rather than a bare string.
func (h *Handler) handleIssueToken(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.TokenInput
	if err := c.Bind(&input); err != nil {
		return bindError(c, err)
	}

	token, err := h.auth.IssueToken(ctx, input)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, echo.Map{"token": token})
}

func (h *Handler) handleListTranslations(c echo.Context) error {
	ctx := c.Request().Context()

	filter := domain.TranslationFilter{
		Tag:     queryParam(c, "tag"),
		Key:     queryParam(c, "key"),
		Content: queryParam(c, "content"),
	}

	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		page = 1
	}

	result, err := h.translation.List(ctx, filter, page)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.Paginated(c, result)
}

func (h *Handler) handleCreateTranslation(c echo.Context) error {
	ctx := c.Request().Context()

	var input usecase.TranslationInput
	if err := c.Bind(&input); err != nil {
		return bindError(c, err)
	}

	created, err := h.translation.Create(ctx, input)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.Created(c, created)
}

func (h *Handler) handleGetTranslation(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := translationID(c)
	if !ok {
		return presenter.NotFound(c)
	}

	translation, err := h.translation.Get(ctx, id)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, translation)
}

func (h *Handler) handleUpdateTranslation(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := translationID(c)
	if !ok {
		return presenter.NotFound(c)
	}

	var input usecase.TranslationInput
	if err := c.Bind(&input); err != nil {
		return bindError(c, err)
	}

	updated, err := h.translation.Update(ctx, id, input)
	if err != nil {
		return presenter.Error(c, err)
	}

	return presenter.OK(c, updated)
}

func (h *Handler) handleDeleteTranslation(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := translationID(c)
	if !ok {
		return presenter.NotFound(c)
	}

	if err := h.translation.Delete(ctx, id); err != nil {
		return presenter.Error(c, err)
	}

	return presenter.NoContent(c)
}

func (h *Handler) handleExport(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := h.export.Render(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	etag := fmt.Sprintf(`"%016x"`, xxh3.Hash(body))
	c.Response().Header().Set("ETag", etag)
	if etagMatches(c.Request().Header.Get("If-None-Match"), etag) {
		return c.NoContent(http.StatusNotModified)
	}

	return c.JSONBlob(http.StatusOK, body)
}

// bindError reports a field of the wrong JSON type as a validation failure
// on that field. Anything else is an undecodable body.
func bindError(c echo.Context, err error) error {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return presenter.BadRequest(c, "malformed request body")
	}

	field := typeErr.Field
	return presenter.Error(c, domain.ValidationError{
		Message: "The given data was invalid.",
		Fields: map[string][]string{
			field: {fmt.Sprintf("The %s field %s.", field, expectedType(typeErr.Type))},
		},
	})
}

func expectedType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "must be a string"
	case reflect.Slice, reflect.Array:
		return "must be an array"
	case reflect.Bool:
		return "must be true or false"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "must be a number"
	default:
		return "is invalid"
	}
}

// queryParam returns nil for absent or empty parameters.
func queryParam(c echo.Context, name string) *string {
	value := c.QueryParam(name)
	if value == "" {
		return nil
	}
	return &value
}

func translationID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
