package presenter

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/totegamma/i18n-store/internal/domain"
	"github.com/totegamma/i18n-store/internal/log"
)

type messageResponse struct {
	Message string `json:"message"`
}

type validationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func BadRequest(c echo.Context, msg string) error {
	log.Warn(c.Request().Context(), "bad request")
	return c.JSON(http.StatusBadRequest, messageResponse{Message: msg})
}

func NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, messageResponse{Message: "Not Found."})
}

func Unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Unauthenticated."})
}

// InternalError hides the cause from the client; it is only logged.
func InternalError(c echo.Context, err error) error {
	ctx := c.Request().Context()
	trace.SpanFromContext(ctx).RecordError(err)
	log.Error(ctx, "request failed", err)
	return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Server Error"})
}

// Error maps a usecase error onto the matching status code.
func Error(c echo.Context, err error) error {
	var verr domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{
			Message: verr.Error(),
			Errors:  verr.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(c)
	case errors.Is(err, domain.ErrUnauthenticated):
		return Unauthenticated(c)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, messageResponse{Message: "Invalid credentials"})
	default:
		return InternalError(c, err)
	}
}

type paginated[T any] struct {
	CurrentPage  int     `json:"current_page"`
	Data         []T     `json:"data"`
	FirstPageURL string  `json:"first_page_url"`
	From         *int    `json:"from"`
	LastPage     int     `json:"last_page"`
	LastPageURL  string  `json:"last_page_url"`
	NextPageURL  *string `json:"next_page_url"`
	Path         string  `json:"path"`
	PerPage      int     `json:"per_page"`
	PrevPageURL  *string `json:"prev_page_url"`
	To           *int    `json:"to"`
	Total        int64   `json:"total"`
}

// Paginated renders a page with navigation links that keep the current
// query string apart from the page number.
func Paginated[T any](c echo.Context, page domain.Page[T]) error {
	req := c.Request()
	path := c.Scheme() + "://" + req.Host + req.URL.Path

	pageURL := func(n int) string {
		query := url.Values{}
		for k, v := range req.URL.Query() {
			query[k] = v
		}
		query.Set("page", strconv.Itoa(n))
		return path + "?" + query.Encode()
	}

	var next, prev *string
	if page.CurrentPage < page.LastPage {
		u := pageURL(page.CurrentPage + 1)
		next = &u
	}
	if page.CurrentPage > 1 {
		u := pageURL(page.CurrentPage - 1)
		prev = &u
	}

	return OK(c, paginated[T]{
		CurrentPage:  page.CurrentPage,
		Data:         page.Data,
		FirstPageURL: pageURL(1),
		From:         page.From,
		LastPage:     page.LastPage,
		LastPageURL:  pageURL(page.LastPage),
		NextPageURL:  next,
		Path:         path,
		PerPage:      page.PerPage,
		PrevPageURL:  prev,
		To:           page.To,
		Total:        page.Total,
	})
}
